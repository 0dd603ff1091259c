package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type VentaMesonService interface {
	Crear(ctx context.Context, autor string, req dto.CrearVentaMesonRequest) (*dto.CrearVentaMesonResponse, error)
	Listar(ctx context.Context, filter dto.VentaMesonFilter) ([]dto.VentaMesonResponse, error)
}

// lineaMovimiento is the money computed for one counter line.
type lineaMovimiento struct {
	precioUnitario int64
	totalFila      int64
	costoPerdida   int64
}

// reglaMovimiento holds what each movement type requires and how it values a line.
type reglaMovimiento struct {
	requiereComprador bool
	requierePrecio    bool
	linea             func(cantidad int, precioVenta int64, producto *model.Producto) lineaMovimiento
}

var reglasMovimiento = map[model.TipoMovimiento]reglaMovimiento{
	model.MovimientoVenta:      {requiereComprador: true, requierePrecio: true, linea: lineaVenta},
	model.MovimientoPerdida:    {linea: lineaPerdida},
	model.MovimientoUsoInterno: {linea: lineaUsoInterno},
}

// lineaVenta charges the buyer the stated price.
func lineaVenta(cantidad int, precioVenta int64, _ *model.Producto) lineaMovimiento {
	return lineaMovimiento{precioUnitario: precioVenta, totalFila: precioVenta * int64(cantidad)}
}

// lineaPerdida values the lost units at the product's sale price.
func lineaPerdida(cantidad int, _ int64, p *model.Producto) lineaMovimiento {
	return lineaMovimiento{costoPerdida: p.PrecioVenta * int64(cantidad)}
}

func lineaUsoInterno(int, int64, *model.Producto) lineaMovimiento {
	return lineaMovimiento{}
}

type ventaMesonService struct {
	repo      repository.VentaMesonRepository
	productos repository.ProductoRepository
	ledger    *StockLedger
	cache     Cache
	alertas   AlertaDispatcher
}

func NewVentaMesonService(
	repo repository.VentaMesonRepository,
	productos repository.ProductoRepository,
	ledger *StockLedger,
	cache Cache,
	alertas AlertaDispatcher,
) VentaMesonService {
	return &ventaMesonService{
		repo:      repo,
		productos: productos,
		ledger:    ledger,
		cache:     cache,
		alertas:   alertas,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *ventaMesonService) Crear(ctx context.Context, autor string, req dto.CrearVentaMesonRequest) (*dto.CrearVentaMesonResponse, error) {
	tipo := model.TipoMovimiento(strings.ToUpper(strings.TrimSpace(req.TipoMovimiento)))
	regla, ok := reglasMovimiento[tipo]
	if !ok {
		return nil, apperror.Validationf("Tipo de movimiento inválido: %s. Valores permitidos: VENTA, PERDIDA, USO_INTERNO",
			req.TipoMovimiento)
	}
	comprador := derefTrim(req.Comprador)
	if regla.requiereComprador && comprador == "" {
		return nil, apperror.Validation("Las ventas requieren el nombre del comprador")
	}
	if len(req.Items) == 0 {
		return nil, apperror.Validation("Debe incluir al menos un producto")
	}
	if autor == "" {
		autor = model.RolWorker
	}

	venta := &model.VentaMeson{
		ID:             uuid.New(),
		TipoMovimiento: tipo,
		Fecha:          time.Now().UTC(),
		Comentario:     optionalString(derefTrim(req.Comentario)),
		Comprador:      optionalString(comprador),
		CreatedByName:  autor,
	}
	var skus []string
	var tocados []uuid.UUID

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range req.Items {
			sku := strings.TrimSpace(item.SKU)
			if item.Cantidad <= 0 {
				return apperror.Validationf("La cantidad del SKU %s debe ser positiva", sku)
			}
			producto, err := s.productos.FindBySKUTx(tx, sku)
			if err != nil {
				if isNotFound(err) {
					return apperror.NotFoundf("El producto con SKU %s no existe en inventario.", sku)
				}
				return apperror.Internal("venta_meson.crear", "producto", err)
			}

			ref := venta.ID
			if _, err := s.ledger.Ajustar(tx, AjusteStock{
				ProductoID:   producto.ID,
				Delta:        -item.Cantidad,
				Tipo:         model.StockVentaMeson,
				ReferenciaID: &ref,
				Motivo:       fmt.Sprintf("Mesón %s", tipo),
			}); err != nil {
				return err
			}

			var precio int64
			if item.PrecioVenta != nil {
				precio = *item.PrecioVenta
			}
			if regla.requierePrecio && precio <= 0 {
				return apperror.Validationf("El producto %s requiere un precio de venta válido", producto.Nombre)
			}

			l := regla.linea(item.Cantidad, precio, producto)
			venta.TotalVenta += l.totalFila
			venta.CostoPerdida += l.costoPerdida
			venta.Detalles = append(venta.Detalles, model.DetalleVentaMeson{
				ProductoID:          producto.ID,
				Cantidad:            item.Cantidad,
				PrecioVentaUnitario: l.precioUnitario,
				CostoProducto:       producto.PrecioVenta,
				TotalFila:           l.totalFila,
			})
			skus = append(skus, producto.SKU)
			tocados = append(tocados, producto.ID)
		}

		if err := s.repo.CreateTx(tx, venta); err != nil {
			return apperror.Internal("venta_meson.crear", "venta_meson", err)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("tipo", string(tipo)).Msg("movimiento de mesón rechazado")
		return nil, err
	}

	invalidarPrecios(ctx, s.cache, skus)
	alertarStockBajo(ctx, s.productos, s.alertas, "venta_meson", venta.ID, tocados)
	log.Info().
		Str("venta_meson_id", venta.ID.String()).
		Str("tipo", string(tipo)).
		Int64("total_venta", venta.TotalVenta).
		Int64("costo_perdida", venta.CostoPerdida).
		Msg("movimiento de mesón registrado")

	return &dto.CrearVentaMesonResponse{
		Message:         "Movimiento registrado exitosamente",
		ID:              venta.ID.String(),
		Tipo:            string(tipo),
		TotalVenta:      venta.TotalVenta,
		CostoPerdida:    venta.CostoPerdida,
		ItemsProcesados: len(venta.Detalles),
	}, nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *ventaMesonService) Listar(ctx context.Context, filter dto.VentaMesonFilter) ([]dto.VentaMesonResponse, error) {
	tipo := model.TipoMovimiento(strings.ToUpper(strings.TrimSpace(filter.TipoMovimiento)))
	if tipo != "" && !tipo.Valido() {
		return nil, apperror.Validationf("Tipo de movimiento inválido: %s. Valores permitidos: VENTA, PERDIDA, USO_INTERNO",
			filter.TipoMovimiento)
	}
	ventas, err := s.repo.List(ctx, tipo)
	if err != nil {
		return nil, apperror.Internal("venta_meson.listar", "venta_meson", err)
	}
	out := make([]dto.VentaMesonResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, ventaMesonToResponse(&ventas[i]))
	}
	return out, nil
}

func ventaMesonToResponse(v *model.VentaMeson) dto.VentaMesonResponse {
	resp := dto.VentaMesonResponse{
		ID:             v.ID.String(),
		TipoMovimiento: string(v.TipoMovimiento),
		Fecha:          v.Fecha.Format(time.RFC3339),
		TotalVenta:     v.TotalVenta,
		CostoPerdida:   v.CostoPerdida,
		Comentario:     v.Comentario,
		Comprador:      v.Comprador,
		CreatedByName:  v.CreatedByName,
		Detalles:       make([]dto.DetalleVentaMesonResponse, 0, len(v.Detalles)),
	}
	for _, d := range v.Detalles {
		resp.Detalles = append(resp.Detalles, dto.DetalleVentaMesonResponse{
			ID:                  d.ID.String(),
			Cantidad:            d.Cantidad,
			PrecioVentaUnitario: d.PrecioVentaUnitario,
			CostoProducto:       d.CostoProducto,
			TotalFila:           d.TotalFila,
			Producto:            productoResumen(d.Producto),
		})
	}
	return resp
}
