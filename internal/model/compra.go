package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipo de documento de una compra. Sólo FACTURA genera IVA.
const (
	DocumentoFactura  = "FACTURA"
	DocumentoInformal = "INFORMAL"
	DocumentoBoleta   = "BOLETA"
)

// Compra is a supplier purchase that increased stock.
// MontoTotal = MontoNeto + MontoIVA, and MontoNeto = Σ Detalles.TotalFila.
type Compra struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	NumeroFactura string    `gorm:"not null;default:'S/N'"`
	TipoDocumento string    `gorm:"type:varchar(20);not null"`
	Fecha         time.Time `gorm:"not null;index"`
	MontoNeto     int64     `gorm:"not null"`
	MontoIVA      int64     `gorm:"column:monto_iva;not null;default:0"`
	MontoTotal    int64     `gorm:"not null"`
	ProveedorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByName string    `gorm:"not null;default:'ADMIN'"`
	CreatedAt     time.Time

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Detalles  []DetalleCompra `gorm:"foreignKey:CompraID;constraint:OnDelete:CASCADE"`
}

func (c *Compra) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type DetalleCompra struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompraID            uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad            int       `gorm:"not null"`
	PrecioCostoUnitario int64     `gorm:"not null"`
	TotalFila           int64     `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleCompra) TableName() string { return "detalles_compra" }

func (d *DetalleCompra) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
