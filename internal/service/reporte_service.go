package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"taller/internal/apperror"
	"taller/internal/config"
	"taller/internal/dto"
	"taller/internal/repository"
)

const (
	limiteClientesBusqueda  = 20
	limiteVehiculosBusqueda = 20
	limiteOrdenesBusqueda   = 10
	cajaDiariaCacheTTL      = 24 * time.Hour
)

type ReporteService interface {
	StockBajo(ctx context.Context) (*dto.StockBajoResponse, error)
	// CajaDiaria totals one local day; an empty fecha means today.
	CajaDiaria(ctx context.Context, fecha string) (*dto.CajaDiariaResponse, error)
	Buscar(ctx context.Context, q string) (*dto.BusquedaResponse, error)
}

type reporteService struct {
	repo      repository.ReporteRepository
	productos repository.ProductoRepository
	cache     Cache
	loc       *time.Location
	now       func() time.Time
}

func NewReporteService(repo repository.ReporteRepository, productos repository.ProductoRepository, cache Cache, cfg *config.Config) ReporteService {
	return &reporteService{
		repo:      repo,
		productos: productos,
		cache:     cache,
		loc:       cfg.Location(),
		now:       time.Now,
	}
}

func (s *reporteService) StockBajo(ctx context.Context) (*dto.StockBajoResponse, error) {
	productos, err := s.productos.ListStockBajo(ctx)
	if err != nil {
		return nil, apperror.Internal("reporte.stock_bajo", "producto", err)
	}
	resp := &dto.StockBajoResponse{
		TotalAlertas:  len(productos),
		FechaConsulta: s.now().In(s.loc).Format(time.RFC3339),
		Productos:     make([]dto.StockBajoItem, 0, len(productos)),
	}
	for _, p := range productos {
		categoria := "Sin categoría"
		if p.Categoria != nil {
			categoria = p.Categoria.Nombre
		}
		resp.Productos = append(resp.Productos, dto.StockBajoItem{
			ID:          p.ID.String(),
			SKU:         p.SKU,
			Nombre:      p.Nombre,
			Marca:       p.Marca,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
			Diferencia:  p.StockMinimo - p.StockActual,
			Categoria:   categoria,
			PrecioVenta: p.PrecioVenta,
		})
	}
	return resp, nil
}

// ── Caja diaria ───────────────────────────────────────────────────────────────
// Window is [00:00, next 00:00) in the shop's timezone. Closed days are cached
// for 24h; today is always computed fresh.

func (s *reporteService) CajaDiaria(ctx context.Context, fecha string) (*dto.CajaDiariaResponse, error) {
	hoy := s.now().In(s.loc)
	inicioHoy := time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, s.loc)

	desde := inicioHoy
	if fecha = strings.TrimSpace(fecha); fecha != "" {
		d, err := time.ParseInLocation("2006-01-02", fecha, s.loc)
		if err != nil {
			return nil, apperror.Validation("Formato de fecha inválido. Use YYYY-MM-DD")
		}
		desde = d
	}
	hasta := desde.AddDate(0, 0, 1)
	dia := desde.Format("2006-01-02")

	cacheable := !hasta.After(inicioHoy)
	key := cajaDiariaCacheKey(dia)
	if cacheable {
		var cached dto.CajaDiariaResponse
		if cacheGet(ctx, s.cache, key, &cached) {
			return &cached, nil
		}
	}

	ordenes, err := s.repo.TotalesOrdenes(ctx, desde, hasta)
	if err != nil {
		return nil, apperror.Internal("reporte.caja_diaria", "orden_trabajo", err)
	}
	meson, err := s.repo.TotalesVentasMeson(ctx, desde, hasta)
	if err != nil {
		return nil, apperror.Internal("reporte.caja_diaria", "venta_meson", err)
	}

	resp := &dto.CajaDiariaResponse{
		Fecha:               dia,
		TotalTaller:         ordenes.Total,
		CantidadOrdenes:     ordenes.Cantidad,
		TotalMeson:          meson.Total,
		CantidadVentasMeson: meson.Cantidad,
		TotalFinal:          ordenes.Total + meson.Total,
	}
	if cacheable {
		cacheSet(ctx, s.cache, key, resp, cajaDiariaCacheTTL)
	}
	return resp, nil
}

// ── Buscar ────────────────────────────────────────────────────────────────────

func (s *reporteService) Buscar(ctx context.Context, q string) (*dto.BusquedaResponse, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < 2 {
		return &dto.BusquedaResponse{
			Mensaje:   "Ingresa al menos 2 caracteres para buscar",
			Clientes:  []dto.ClienteBusquedaItem{},
			Vehiculos: []dto.VehiculoBusquedaItem{},
		}, nil
	}

	nombre := strings.ToLower(q)
	rut := NormalizarRUT(q)
	patente := NormalizarPatente(q)

	clientes, err := s.repo.BuscarClientes(ctx, nombre, rut, limiteClientesBusqueda)
	if err != nil {
		return nil, apperror.Internal("reporte.buscar", "cliente", err)
	}
	vehiculos, err := s.repo.BuscarVehiculos(ctx, patente, limiteVehiculosBusqueda)
	if err != nil {
		return nil, apperror.Internal("reporte.buscar", "vehiculo", err)
	}
	ordenes, err := s.repo.OrdenesPorPatente(ctx, patente, limiteOrdenesBusqueda)
	if err != nil {
		return nil, apperror.Internal("reporte.buscar", "orden_trabajo", err)
	}

	resp := &dto.BusquedaResponse{
		Busqueda:         q,
		Clientes:         make([]dto.ClienteBusquedaItem, 0, len(clientes)),
		Vehiculos:        make([]dto.VehiculoBusquedaItem, 0, len(vehiculos)),
		OrdenesRecientes: make([]dto.OrdenBusquedaItem, 0, len(ordenes)),
	}
	for _, c := range clientes {
		resp.Clientes = append(resp.Clientes, dto.ClienteBusquedaItem{
			ID:              c.ID.String(),
			Nombre:          c.Nombre,
			RUT:             c.RUT,
			Telefono:        c.Telefono,
			Email:           c.Email,
			CantidadOrdenes: c.CantidadOrdenes,
		})
	}
	for _, v := range vehiculos {
		resp.Vehiculos = append(resp.Vehiculos, dto.VehiculoBusquedaItem{
			ID:      v.ID.String(),
			Patente: v.Patente,
			Marca:   v.Marca,
			Modelo:  v.Modelo,
			Anio:    v.Anio,
		})
	}
	for _, o := range ordenes {
		item := dto.OrdenBusquedaItem{
			ID:          o.ID.String(),
			NumeroOrden: o.NumeroOrdenPapel,
			Patente:     o.PatenteVehiculo,
			Fecha:       o.FechaIngreso.In(s.loc).Format(time.RFC3339),
			Total:       o.TotalCobrado,
			Estado:      o.Estado,
		}
		if o.Cliente != nil {
			item.ClienteNombre = o.Cliente.Nombre
		}
		resp.OrdenesRecientes = append(resp.OrdenesRecientes, item)
	}
	resp.TotalResultados = len(resp.Clientes) + len(resp.Vehiculos) + len(resp.OrdenesRecientes)
	return resp, nil
}
