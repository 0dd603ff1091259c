package service

import (
	"context"
	"strings"
	"time"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
// Stock is never written here; see StockLedger.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	ListarEliminados(ctx context.Context) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Restaurar(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error)
	// ConsultarPrecio is the public price check, served from cache when possible.
	ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	categorias repository.CategoriaRepository
	modelos    repository.ModeloVehiculoRepository
	historial  repository.HistorialPrecioRepository
	cache      Cache
	precioTTL  time.Duration
}

func NewProductoService(
	repo repository.ProductoRepository,
	categorias repository.CategoriaRepository,
	modelos repository.ModeloVehiculoRepository,
	historial repository.HistorialPrecioRepository,
	cache Cache,
	precioTTL time.Duration,
) ProductoService {
	return &productoService{
		repo:       repo,
		categorias: categorias,
		modelos:    modelos,
		historial:  historial,
		cache:      cache,
		precioTTL:  precioTTL,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	existe, err := s.repo.ExistsSKU(ctx, sku)
	if err != nil {
		return nil, apperror.Internal("producto.crear", "producto", err)
	}
	if existe {
		return nil, apperror.Conflictf("Ya existe un producto con SKU %s", sku)
	}

	p := &model.Producto{
		SKU:         sku,
		Nombre:      strings.TrimSpace(req.Nombre),
		Marca:       optionalString(derefTrim(req.Marca)),
		Calidad:     optionalString(derefTrim(req.Calidad)),
		PrecioVenta: req.PrecioVenta,
		StockMinimo: model.StockMinimoDefault,
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.CategoriaID != nil && *req.CategoriaID != "" {
		catID, err := s.validarCategoria(ctx, *req.CategoriaID)
		if err != nil {
			return nil, err
		}
		p.CategoriaID = &catID
	}
	if len(req.ModelosCompatiblesIDs) > 0 {
		modelos, err := s.resolverModelos(ctx, req.ModelosCompatiblesIDs)
		if err != nil {
			return nil, err
		}
		p.ModelosCompatibles = modelos
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflictf("Ya existe un producto con SKU %s", sku)
		}
		return nil, apperror.Internal("producto.crear", "producto", err)
	}
	return s.ObtenerPorID(ctx, p.ID)
}

func (s *productoService) validarCategoria(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("categoria_id inválido")
	}
	if _, err := s.categorias.ObtenerPorID(ctx, id); err != nil {
		if isNotFound(err) {
			return uuid.Nil, apperror.NotFound("Categoría no encontrada")
		}
		return uuid.Nil, apperror.Internal("producto.categoria", "categoria", err)
	}
	return id, nil
}

func (s *productoService) resolverModelos(ctx context.Context, raw []string) ([]model.ModeloVehiculo, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperror.Validationf("ID de modelo de vehículo inválido: %s", r)
		}
		ids = append(ids, id)
	}
	modelos, err := s.modelos.FindByIDsTx(s.repo.DB().WithContext(ctx), ids)
	if err != nil {
		return nil, apperror.Internal("producto.modelos", "modelo_vehiculo", err)
	}
	if len(modelos) != len(uniqueIDs(ids)) {
		return nil, apperror.NotFound("Uno o más modelos de vehículo no existen")
	}
	return modelos, nil
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Producto no encontrado")
		}
		return nil, apperror.Internal("producto.obtener", "producto", err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	f := repository.ProductoFilter{Nombre: strings.TrimSpace(filter.Nombre)}
	if filter.CategoriaID != "" {
		id, err := uuid.Parse(filter.CategoriaID)
		if err != nil {
			return nil, apperror.Validation("categoria_id inválido")
		}
		f.CategoriaID = &id
	}
	productos, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal("producto.listar", "producto", err)
	}
	return productosToResponse(productos), nil
}

func (s *productoService) ListarEliminados(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListEliminados(ctx)
	if err != nil {
		return nil, apperror.Internal("producto.listar_eliminados", "producto", err)
	}
	return productosToResponse(productos), nil
}

// Actualizar applies a partial update. A sale price change is recorded in the
// price history in the same transaction and drops the cached price lookup.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Producto no encontrado")
		}
		return nil, apperror.Internal("producto.actualizar", "producto", err)
	}

	precioAnterior := p.PrecioVenta
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Marca != nil {
		p.Marca = optionalString(strings.TrimSpace(*req.Marca))
	}
	if req.Calidad != nil {
		p.Calidad = optionalString(strings.TrimSpace(*req.Calidad))
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.CategoriaID != nil {
		if *req.CategoriaID == "" {
			p.CategoriaID = nil
		} else {
			catID, err := s.validarCategoria(ctx, *req.CategoriaID)
			if err != nil {
				return nil, err
			}
			p.CategoriaID = &catID
		}
		p.Categoria = nil
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return apperror.Internal("producto.actualizar", "producto", err)
		}
		if p.PrecioVenta == precioAnterior {
			return nil
		}
		if err := s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:     p.ID,
			PrecioAnterior: precioAnterior,
			PrecioNuevo:    p.PrecioVenta,
			Motivo:         "manual",
		}); err != nil {
			return apperror.Internal("producto.actualizar", "historial_precio", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidarPrecios(ctx, s.cache, []string{p.SKU})
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Producto no encontrado")
		}
		return apperror.Internal("producto.eliminar", "producto", err)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apperror.Internal("producto.eliminar", "producto", err)
	}
	invalidarPrecios(ctx, s.cache, []string{p.SKU})
	return nil
}

func (s *productoService) Restaurar(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByIDTx(s.repo.DB().WithContext(ctx), id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Producto no encontrado")
		}
		return nil, apperror.Internal("producto.restaurar", "producto", err)
	}
	if !p.DeletedAt.Valid {
		return nil, apperror.Conflict("El producto no está eliminado")
	}
	restaurado, err := s.repo.Restore(ctx, id)
	if err != nil {
		return nil, apperror.Internal("producto.restaurar", "producto", err)
	}
	return productoToResponse(restaurado), nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.repo.FindByIDTx(s.repo.DB().WithContext(ctx), id); err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Producto no encontrado")
		}
		return nil, apperror.Internal("producto.historial", "producto", err)
	}
	rows, total, err := s.historial.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, apperror.Internal("producto.historial", "historial_precio", err)
	}

	resp := &dto.HistorialPrecioListResponse{
		Data:  make([]dto.HistorialPrecioItem, 0, len(rows)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, h := range rows {
		item := dto.HistorialPrecioItem{
			ID:             h.ID.String(),
			ProductoID:     h.ProductoID.String(),
			PrecioAnterior: h.PrecioAnterior,
			PrecioNuevo:    h.PrecioNuevo,
			Motivo:         h.Motivo,
			CreatedAt:      h.CreatedAt.Format(time.RFC3339),
		}
		if h.ReferenciaID != nil {
			ref := h.ReferenciaID.String()
			item.ReferenciaID = &ref
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}

func (s *productoService) ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPreciosResponse, error) {
	sku = strings.TrimSpace(sku)
	key := precioCacheKey(sku)

	var cached dto.ConsultaPreciosResponse
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("El producto con SKU %s no existe en inventario.", sku)
		}
		return nil, apperror.Internal("producto.consultar_precio", "producto", err)
	}
	resp := &dto.ConsultaPreciosResponse{
		SKU:         p.SKU,
		Nombre:      p.Nombre,
		Marca:       p.Marca,
		PrecioVenta: p.PrecioVenta,
		StockActual: p.StockActual,
	}
	cacheSet(ctx, s.cache, key, resp, s.precioTTL)
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:                 p.ID.String(),
		SKU:                p.SKU,
		Nombre:             p.Nombre,
		Marca:              p.Marca,
		Calidad:            p.Calidad,
		PrecioVenta:        p.PrecioVenta,
		StockActual:        p.StockActual,
		StockMinimo:        p.StockMinimo,
		ModelosCompatibles: make([]dto.ModeloVehiculoResponse, 0, len(p.ModelosCompatibles)),
	}
	if p.CategoriaID != nil {
		id := p.CategoriaID.String()
		resp.CategoriaID = &id
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	for _, m := range p.ModelosCompatibles {
		resp.ModelosCompatibles = append(resp.ModelosCompatibles, modeloToResponse(m))
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time.Format(time.RFC3339)
		resp.EliminadoEn = &t
	}
	return resp
}

func productosToResponse(productos []model.Producto) []dto.ProductoResponse {
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out
}
