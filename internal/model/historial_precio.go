package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistorialPrecio records every change of a product's sale price.
// Rows are immutable.
type HistorialPrecio struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductoID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PrecioAnterior int64      `gorm:"not null"`
	PrecioNuevo    int64      `gorm:"not null"`
	Motivo         string     `gorm:"not null;default:'compra'"` // compra | manual
	ReferenciaID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (h *HistorialPrecio) BeforeCreate(*gorm.DB) error {
	assignID(&h.ID)
	return nil
}
