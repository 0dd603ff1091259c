package repository

import (
	"context"
	"time"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Totales is a sum and a row count over a time window.
type Totales struct {
	Total    int64
	Cantidad int64
}

// ClienteBusqueda is a client search hit with its number of work orders.
type ClienteBusqueda struct {
	ID              uuid.UUID
	Nombre          string
	RUT             *string `gorm:"column:rut"`
	Telefono        *string
	Email           *string
	CantidadOrdenes int64
}

// ReporteRepository holds the read-only aggregate queries behind the reports.
type ReporteRepository interface {
	// TotalesOrdenes sums total_cobrado of work orders with desde <= fecha_ingreso < hasta.
	TotalesOrdenes(ctx context.Context, desde, hasta time.Time) (Totales, error)
	// TotalesVentasMeson sums total_venta of VENTA counter sales in the window.
	TotalesVentasMeson(ctx context.Context, desde, hasta time.Time) (Totales, error)

	BuscarClientes(ctx context.Context, nombre, rut string, limit int) ([]ClienteBusqueda, error)
	BuscarVehiculos(ctx context.Context, patente string, limit int) ([]model.Vehiculo, error)
	OrdenesPorPatente(ctx context.Context, patente string, limit int) ([]model.OrdenTrabajo, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) TotalesOrdenes(ctx context.Context, desde, hasta time.Time) (Totales, error) {
	var t Totales
	err := r.db.WithContext(ctx).Model(&model.OrdenTrabajo{}).
		Select("COALESCE(SUM(total_cobrado), 0) AS total, COUNT(*) AS cantidad").
		Where("fecha_ingreso >= ? AND fecha_ingreso < ?", desde.UTC(), hasta.UTC()).
		Scan(&t).Error
	return t, err
}

func (r *reporteRepo) TotalesVentasMeson(ctx context.Context, desde, hasta time.Time) (Totales, error) {
	var t Totales
	err := r.db.WithContext(ctx).Model(&model.VentaMeson{}).
		Select("COALESCE(SUM(total_venta), 0) AS total, COUNT(*) AS cantidad").
		Where("tipo_movimiento = ?", model.MovimientoVenta).
		Where("fecha >= ? AND fecha < ?", desde.UTC(), hasta.UTC()).
		Scan(&t).Error
	return t, err
}

// BuscarClientes matches nombre as a case-insensitive substring and rut as a
// substring of the normalized rut. An empty argument disables that match.
func (r *reporteRepo) BuscarClientes(ctx context.Context, nombre, rut string, limit int) ([]ClienteBusqueda, error) {
	q := r.db.WithContext(ctx).Table("clientes").
		Select("clientes.id, clientes.nombre, clientes.rut, clientes.telefono, clientes.email, " +
			"COUNT(ordenes_trabajo.id) AS cantidad_ordenes").
		Joins("LEFT JOIN ordenes_trabajo ON ordenes_trabajo.cliente_id = clientes.id")

	switch {
	case nombre != "" && rut != "":
		q = q.Where("LOWER(clientes.nombre) LIKE ? OR clientes.rut LIKE ?", "%"+nombre+"%", "%"+rut+"%")
	case nombre != "":
		q = q.Where("LOWER(clientes.nombre) LIKE ?", "%"+nombre+"%")
	case rut != "":
		q = q.Where("clientes.rut LIKE ?", "%"+rut+"%")
	default:
		return []ClienteBusqueda{}, nil
	}

	var rows []ClienteBusqueda
	err := q.Group("clientes.id, clientes.nombre, clientes.rut, clientes.telefono, clientes.email").
		Order("clientes.nombre ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) BuscarVehiculos(ctx context.Context, patente string, limit int) ([]model.Vehiculo, error) {
	var vehiculos []model.Vehiculo
	if patente == "" {
		return vehiculos, nil
	}
	err := r.db.WithContext(ctx).
		Where("patente LIKE ?", "%"+patente+"%").
		Order("patente ASC").
		Limit(limit).
		Find(&vehiculos).Error
	return vehiculos, err
}

func (r *reporteRepo) OrdenesPorPatente(ctx context.Context, patente string, limit int) ([]model.OrdenTrabajo, error) {
	var ordenes []model.OrdenTrabajo
	if patente == "" {
		return ordenes, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Where("patente_vehiculo LIKE ?", "%"+patente+"%").
		Order("fecha_ingreso DESC").
		Limit(limit).
		Find(&ordenes).Error
	return ordenes, err
}
