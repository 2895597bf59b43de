package model

// Bicicleta is a bicycle owned by a Biciusuario. Serial is unique across all
// bicycles, not only within one owner.
type Bicicleta struct {
	ID            uint    `gorm:"primaryKey"`
	BiciusuarioID uint    `gorm:"column:user_id;not null;index"`
	Serial        string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Marca         *string `gorm:"type:varchar(100)"`
	Modelo        *string `gorm:"type:varchar(100)"`
	Color         *string `gorm:"type:varchar(50)"`
}

func (Bicicleta) TableName() string { return "bicycles" }
