package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TipoMovimiento classifies a counter movement of stock.
type TipoMovimiento string

const (
	MovimientoVenta      TipoMovimiento = "VENTA"
	MovimientoPerdida    TipoMovimiento = "PERDIDA"
	MovimientoUsoInterno TipoMovimiento = "USO_INTERNO"
)

// TiposMovimiento lists every valid TipoMovimiento.
var TiposMovimiento = []TipoMovimiento{MovimientoVenta, MovimientoPerdida, MovimientoUsoInterno}

func (t TipoMovimiento) Valido() bool {
	for _, v := range TiposMovimiento {
		if v == t {
			return true
		}
	}
	return false
}

// VentaMeson is a stock exit that is not a work order: a counter sale,
// a loss or internal consumption.
type VentaMeson struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TipoMovimiento TipoMovimiento `gorm:"type:varchar(20);not null;index"`
	Fecha          time.Time      `gorm:"not null;index"`
	TotalVenta     int64          `gorm:"not null;default:0"`
	CostoPerdida   int64          `gorm:"not null;default:0"`
	Comentario     *string
	Comprador      *string
	CreatedByName  string `gorm:"not null;default:'WORKER'"`
	CreatedAt      time.Time

	Detalles []DetalleVentaMeson `gorm:"foreignKey:VentaMesonID;constraint:OnDelete:CASCADE"`
}

func (VentaMeson) TableName() string { return "ventas_meson" }

func (v *VentaMeson) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// DetalleVentaMeson keeps CostoProducto as a snapshot of the product's
// sale price at the time of the movement.
type DetalleVentaMeson struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	VentaMesonID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad            int       `gorm:"not null"`
	PrecioVentaUnitario int64     `gorm:"not null;default:0"`
	CostoProducto       int64     `gorm:"not null;default:0"`
	TotalFila           int64     `gorm:"not null;default:0"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleVentaMeson) TableName() string { return "detalles_venta_meson" }

func (d *DetalleVentaMeson) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
