package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMinimoDefault is the alert threshold of products created without one.
const StockMinimoDefault = 5

// Producto is a spare part held in inventory. StockActual is only ever
// modified through the stock ledger and is never negative after a commit.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU         string    `gorm:"column:sku;uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Marca       *string
	Calidad     *string
	PrecioVenta int64      `gorm:"not null;default:0"`
	StockActual int        `gorm:"not null;default:0"`
	StockMinimo int        `gorm:"not null"`
	CategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Categoria          *Categoria       `gorm:"foreignKey:CategoriaID"`
	ModelosCompatibles []ModeloVehiculo `gorm:"many2many:producto_modelos_vehiculo;"`
}

func (p *Producto) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// StockBajo reports whether the product is at or below its alert threshold.
func (p *Producto) StockBajo() bool { return p.StockActual <= p.StockMinimo }
