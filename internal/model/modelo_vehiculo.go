package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModeloVehiculo is a catalog entry (brand, model, year) used to mark which
// products fit which cars. It has no plate and no owner.
type ModeloVehiculo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Marca     string    `gorm:"not null;uniqueIndex:idx_modelo_vehiculo"`
	Modelo    string    `gorm:"not null;uniqueIndex:idx_modelo_vehiculo"`
	Anio      *int      `gorm:"uniqueIndex:idx_modelo_vehiculo"`
	Motor     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Productos []Producto `gorm:"many2many:producto_modelos_vehiculo;"`
}

func (ModeloVehiculo) TableName() string { return "modelos_vehiculo" }

func (m *ModeloVehiculo) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
