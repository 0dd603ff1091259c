package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const EstadoOrdenFinalizada = "FINALIZADA"

// OrdenTrabajo mirrors the shop's pre-printed paper ticket.
// PatenteVehiculo and Kilometraje are snapshots taken when the order is created.
type OrdenTrabajo struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	NumeroOrdenPapel int       `gorm:"uniqueIndex;not null"`
	Estado           string    `gorm:"type:varchar(20);not null;default:'FINALIZADA'"`
	FechaIngreso     time.Time `gorm:"not null;index"`
	TotalCobrado     int64     `gorm:"not null;default:0"`
	RealizadoPor     string    `gorm:"not null"`
	RevisadoPor      *string
	PatenteVehiculo  string `gorm:"index;not null"`
	Kilometraje      *int
	ClienteID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByName    string    `gorm:"not null;default:'WORKER'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Detalles []DetalleOrden `gorm:"foreignKey:OrdenTrabajoID;constraint:OnDelete:CASCADE"`
}

func (OrdenTrabajo) TableName() string { return "ordenes_trabajo" }

func (o *OrdenTrabajo) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// DetalleOrden is one service line; ProductoID is set when a part was consumed.
type DetalleOrden struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrdenTrabajoID uuid.UUID `gorm:"type:uuid;not null;index"`
	ServicioNombre string    `gorm:"not null"`
	Descripcion    *string
	Precio         int64      `gorm:"not null"`
	Cantidad       int        `gorm:"not null;default:1"`
	ProductoID     *uuid.UUID `gorm:"type:uuid;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleOrden) TableName() string { return "detalles_orden" }

func (d *DetalleOrden) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// Subtotal is the amount charged for the line.
func (d DetalleOrden) Subtotal() int64 { return d.Precio * int64(d.Cantidad) }
