package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehiculo is a physical client vehicle. Once ClienteID is set it is never
// reassigned to another client.
type Vehiculo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Patente     string    `gorm:"uniqueIndex;not null"`
	Marca       string    `gorm:"not null"`
	Modelo      string    `gorm:"not null"`
	Anio        *int
	Kilometraje *int
	ClienteID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (v *Vehiculo) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}
