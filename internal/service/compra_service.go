package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taller/internal/apperror"
	"taller/internal/config"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	Crear(ctx context.Context, autor string, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.EliminarCompraResponse, error)
	Listar(ctx context.Context) ([]dto.CompraResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
}

type compraService struct {
	repo        repository.CompraRepository
	proveedores repository.ProveedorRepository
	productos   repository.ProductoRepository
	modelos     repository.ModeloVehiculoRepository
	historial   repository.HistorialPrecioRepository
	ledger      *StockLedger
	cache       Cache
	iva         decimal.Decimal
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedores repository.ProveedorRepository,
	productos repository.ProductoRepository,
	modelos repository.ModeloVehiculoRepository,
	historial repository.HistorialPrecioRepository,
	ledger *StockLedger,
	cache Cache,
	cfg *config.Config,
) CompraService {
	return &compraService{
		repo:        repo,
		proveedores: proveedores,
		productos:   productos,
		modelos:     modelos,
		historial:   historial,
		ledger:      ledger,
		cache:       cache,
		iva:         cfg.IVA(),
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// One transaction:
//   1. Find or create the provider by exact name
//   2. Per item: validate, upsert the product by SKU, merge compatible models,
//      add stock through the ledger, build the detail line
//   3. Net, IVA (FACTURA only) and total
//   4. Persist header + details
// Any failure in the item loop rolls back every earlier item.

func (s *compraService) Crear(ctx context.Context, autor string, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	nombreProveedor := strings.TrimSpace(req.ProveedorNombre)
	if nombreProveedor == "" {
		return nil, apperror.Validation("El nombre del proveedor es obligatorio")
	}
	if len(req.Items) == 0 {
		return nil, apperror.Validation("La compra debe tener al menos un producto")
	}
	if autor == "" {
		autor = model.RolAdmin
	}

	compra := &model.Compra{
		ID:            uuid.New(),
		NumeroFactura: "S/N",
		TipoDocumento: req.TipoDocumento,
		Fecha:         time.Now().UTC(),
		CreatedByName: autor,
	}
	if n := derefTrim(req.NumeroDocumento); n != "" {
		compra.NumeroFactura = n
	}
	var skus []string

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		proveedor, err := s.proveedores.FindOrCreateTx(tx, nombreProveedor)
		if err != nil {
			return apperror.Internal("compra.crear", "proveedor", err)
		}
		compra.ProveedorID = proveedor.ID

		var neto int64
		for _, item := range req.Items {
			detalle, err := s.procesarItem(tx, compra, item)
			if err != nil {
				return err
			}
			neto += detalle.TotalFila
			compra.Detalles = append(compra.Detalles, *detalle)
			skus = append(skus, strings.TrimSpace(item.SKU))
		}

		compra.MontoNeto = neto
		if compra.TipoDocumento == model.DocumentoFactura {
			compra.MontoIVA = decimal.NewFromInt(neto).Mul(s.iva).Round(0).IntPart()
		}
		compra.MontoTotal = compra.MontoNeto + compra.MontoIVA

		if err := s.repo.CreateTx(tx, compra); err != nil {
			return apperror.Internal("compra.crear", "compra", err)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("proveedor", nombreProveedor).Msg("compra rechazada")
		return nil, err
	}

	invalidarPrecios(ctx, s.cache, skus)
	log.Info().
		Str("compra_id", compra.ID.String()).
		Int64("monto_total", compra.MontoTotal).
		Int("items", len(compra.Detalles)).
		Msg("compra registrada")

	return s.ObtenerPorID(ctx, compra.ID)
}

func (s *compraService) procesarItem(tx *gorm.DB, compra *model.Compra, item dto.CompraItemInput) (*model.DetalleCompra, error) {
	sku := strings.TrimSpace(item.SKU)
	if sku == "" {
		return nil, apperror.Validation("El SKU es obligatorio en todos los items")
	}
	if item.Cantidad <= 0 {
		return nil, apperror.Validationf("La cantidad del SKU %s debe ser positiva", sku)
	}
	if item.PrecioCosto.IsNegative() {
		return nil, apperror.Validationf("El costo del SKU %s no puede ser negativo", sku)
	}
	if item.PrecioVentaSugerido.IsNegative() {
		return nil, apperror.Validationf("El precio sugerido del SKU %s no puede ser negativo", sku)
	}
	costo := item.PrecioCosto.Round(0).IntPart()
	precioVenta := item.PrecioVentaSugerido.Round(0).IntPart()

	producto, err := s.upsertProducto(tx, compra.ID, sku, precioVenta, item)
	if err != nil {
		return nil, err
	}

	if len(item.ModelosCompatiblesIDs) > 0 {
		if err := s.agregarModelos(tx, producto, item.ModelosCompatiblesIDs); err != nil {
			return nil, err
		}
	}

	ref := compra.ID
	if _, err := s.ledger.Ajustar(tx, AjusteStock{
		ProductoID:   producto.ID,
		Delta:        item.Cantidad,
		Tipo:         model.StockCompra,
		ReferenciaID: &ref,
		Motivo:       fmt.Sprintf("Compra %s", compra.NumeroFactura),
	}); err != nil {
		return nil, err
	}

	return &model.DetalleCompra{
		ProductoID:          producto.ID,
		Cantidad:            item.Cantidad,
		PrecioCostoUnitario: costo,
		TotalFila:           costo * int64(item.Cantidad),
	}, nil
}

// upsertProducto finds the product by SKU, including soft-deleted ones, which
// a purchase brings back. An existing product takes the suggested sale price
// and gets blank marca/calidad filled; a new one starts with zero stock.
func (s *compraService) upsertProducto(tx *gorm.DB, compraID uuid.UUID, sku string, precioVenta int64, item dto.CompraItemInput) (*model.Producto, error) {
	marca := derefTrim(item.Marca)
	calidad := derefTrim(item.Calidad)

	build := func() *model.Producto {
		nombre := strings.TrimSpace(item.Nombre)
		if nombre == "" {
			nombre = sku
		}
		return &model.Producto{
			SKU:         sku,
			Nombre:      nombre,
			Marca:       optionalString(marca),
			Calidad:     optionalString(calidad),
			PrecioVenta: precioVenta,
			StockMinimo: model.StockMinimoDefault,
		}
	}

	update := func(db *gorm.DB, p *model.Producto) error {
		cambios := map[string]any{}
		if p.DeletedAt.Valid {
			cambios["deleted_at"] = nil
		}
		if p.PrecioVenta != precioVenta {
			ref := compraID
			if err := s.historial.CreateTx(db, &model.HistorialPrecio{
				ProductoID:     p.ID,
				PrecioAnterior: p.PrecioVenta,
				PrecioNuevo:    precioVenta,
				Motivo:         "compra",
				ReferenciaID:   &ref,
			}); err != nil {
				return err
			}
			cambios["precio_venta"] = precioVenta
			p.PrecioVenta = precioVenta
		}
		if marca != "" && derefTrim(p.Marca) == "" {
			cambios["marca"] = marca
			p.Marca = &marca
		}
		if calidad != "" && derefTrim(p.Calidad) == "" {
			cambios["calidad"] = calidad
			p.Calidad = &calidad
		}
		if len(cambios) == 0 {
			return nil
		}
		return db.Model(p).Updates(cambios).Error
	}

	p, _, err := repository.UpsertByNaturalKey(tx.Unscoped(),
		[]repository.NaturalKey{{Column: "sku", Value: sku}}, build, update)
	if err != nil {
		return nil, apperror.Internal("compra.crear", "producto", err)
	}
	return p, nil
}

// agregarModelos merges the referenced vehicle models into the product's
// compatibility set. Unknown ids fail the purchase.
func (s *compraService) agregarModelos(tx *gorm.DB, p *model.Producto, raw []string) error {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return apperror.Validationf("ID de modelo de vehículo inválido: %s", r)
		}
		ids = append(ids, id)
	}
	modelos, err := s.modelos.FindByIDsTx(tx, ids)
	if err != nil {
		return apperror.Internal("compra.crear", "modelo_vehiculo", err)
	}
	encontrados := make(map[uuid.UUID]bool, len(modelos))
	for _, m := range modelos {
		encontrados[m.ID] = true
	}
	for _, id := range ids {
		if !encontrados[id] {
			return apperror.NotFoundf("Modelo de vehículo con ID %s no encontrado", id)
		}
	}
	if err := s.productos.AppendModelosTx(tx, p, modelos); err != nil {
		return apperror.Internal("compra.crear", "producto_modelos_vehiculo", err)
	}
	return nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *compraService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.EliminarCompraResponse, error) {
	var skus []string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if isNotFound(err) {
				return apperror.NotFound("Compra no encontrada")
			}
			return apperror.Internal("compra.eliminar", "compra", err)
		}

		for _, d := range compra.Detalles {
			motivo := fmt.Sprintf("Eliminación compra %s", compra.NumeroFactura)
			if _, err := s.ledger.Revertir(tx, d.ProductoID, d.Cantidad, &compra.ID, motivo); err != nil {
				return err
			}
			if d.Producto != nil {
				skus = append(skus, d.Producto.SKU)
			}
		}

		if err := s.repo.DeleteTx(tx, compra); err != nil {
			return apperror.Internal("compra.eliminar", "compra", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidarPrecios(ctx, s.cache, skus)
	log.Info().Str("compra_id", id.String()).Msg("compra eliminada, stock revertido")
	return &dto.EliminarCompraResponse{Message: "Compra eliminada y stock revertido", ID: id.String()}, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *compraService) Listar(ctx context.Context) ([]dto.CompraResponse, error) {
	compras, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("compra.listar", "compra", err)
	}
	out := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		out = append(out, *compraToResponse(&compras[i]))
	}
	return out, nil
}

func (s *compraService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Compra no encontrada")
		}
		return nil, apperror.Internal("compra.obtener", "compra", err)
	}
	return compraToResponse(c), nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	resp := &dto.CompraResponse{
		ID:            c.ID.String(),
		NumeroFactura: c.NumeroFactura,
		TipoDocumento: c.TipoDocumento,
		Fecha:         c.Fecha.Format(time.RFC3339),
		MontoNeto:     c.MontoNeto,
		MontoIVA:      c.MontoIVA,
		MontoTotal:    c.MontoTotal,
		CreatedByName: c.CreatedByName,
		Detalles:      make([]dto.DetalleCompraResponse, 0, len(c.Detalles)),
	}
	if c.Proveedor != nil {
		resp.Proveedor = dto.ProveedorResumen{ID: c.Proveedor.ID.String(), Nombre: c.Proveedor.Nombre}
	}
	for _, d := range c.Detalles {
		resp.Detalles = append(resp.Detalles, dto.DetalleCompraResponse{
			ID:                  d.ID.String(),
			Cantidad:            d.Cantidad,
			PrecioCostoUnitario: d.PrecioCostoUnitario,
			TotalFila:           d.TotalFila,
			Producto:            productoResumen(d.Producto),
		})
	}
	return resp
}

func productoResumen(p *model.Producto) dto.ProductoResumen {
	if p == nil {
		return dto.ProductoResumen{}
	}
	return dto.ProductoResumen{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Nombre:      p.Nombre,
		StockActual: p.StockActual,
	}
}
