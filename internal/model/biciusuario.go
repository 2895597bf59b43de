package model

import "time"

// Biciusuario is a user account together with its bike-user profile.
// It exclusively owns its bicycles and registration records; deleting the
// user cascades to both collections.
type Biciusuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Nombre       string `gorm:"column:display_name;type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Bicicletas []Bicicleta           `gorm:"foreignKey:BiciusuarioID;constraint:OnDelete:CASCADE"`
	Registros  []RegistroBiciusuario `gorm:"foreignKey:BiciusuarioID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the relational schema name independent of the Go type.
func (Biciusuario) TableName() string { return "users" }

// BicicletaPorSerial returns the owned bicycle with the given serial, or nil.
func (b *Biciusuario) BicicletaPorSerial(serial string) *Bicicleta {
	for i := range b.Bicicletas {
		if b.Bicicletas[i].Serial == serial {
			return &b.Bicicletas[i]
		}
	}
	return nil
}

// RegistroPorSerial returns the owned registration record with the given serial, or nil.
func (b *Biciusuario) RegistroPorSerial(serial string) *RegistroBiciusuario {
	for i := range b.Registros {
		if b.Registros[i].Serial == serial {
			return &b.Registros[i]
		}
	}
	return nil
}
