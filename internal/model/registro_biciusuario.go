package model

// RegistroBiciusuario is a registration entry of a Biciusuario. NombreCopia is
// a denormalized copy of the owner's display name at the time of the last write.
// Serial is unique per owner (idx_registro_owner_serial).
type RegistroBiciusuario struct {
	ID            uint   `gorm:"primaryKey"`
	BiciusuarioID uint   `gorm:"column:user_id;not null;uniqueIndex:idx_registro_owner_serial"`
	Serial        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_registro_owner_serial"`
	NombreCopia   string `gorm:"column:display_name_copy;type:varchar(255);not null"`
}

func (RegistroBiciusuario) TableName() string { return "registration_records" }
