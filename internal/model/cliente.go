package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente owns vehicles and work orders. RUT and Email are stored normalized
// (see service.NormalizarRUT / NormalizarEmail) and are nil when unknown.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"index;not null"`
	RUT       *string   `gorm:"column:rut;uniqueIndex"`
	Email     *string   `gorm:"uniqueIndex"`
	Telefono  *string
	Direccion *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Vehiculos []Vehiculo     `gorm:"foreignKey:ClienteID"`
	Ordenes   []OrdenTrabajo `gorm:"foreignKey:ClienteID"`
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
