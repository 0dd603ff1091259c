package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proveedor is a parts supplier, identified by its exact name.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	RUT       *string   `gorm:"column:rut"`
	Telefono  *string
	Email     *string
	Direccion *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Compras []Compra `gorm:"foreignKey:ProveedorID"`
}

func (Proveedor) TableName() string { return "proveedores" }

func (p *Proveedor) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
