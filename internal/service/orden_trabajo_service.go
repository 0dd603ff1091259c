package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/infra"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// catalogoServicios is the fixed list of services printed on the paper ticket.
var catalogoServicios = []string{
	"Cambio Pastillas",
	"Cambio Balatas",
	"Cambio Liquido",
	"Cambio Gomas",
	"Rectificado",
	"Sangrado",
	"Cambio Piola",
	"Revision",
	"Otros",
}

type OrdenTrabajoService interface {
	Crear(ctx context.Context, autor string, req dto.CrearOrdenTrabajoRequest) (*dto.CrearOrdenTrabajoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenTrabajoRequest) (*dto.OrdenTrabajoResponse, error)
	Listar(ctx context.Context) ([]dto.OrdenTrabajoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.OrdenTrabajoResponse, error)
	CatalogoServicios() []string
	// GenerarPDF renders the ticket and returns it with the paper order number.
	GenerarPDF(ctx context.Context, id uuid.UUID) ([]byte, int, error)
}

type ordenTrabajoService struct {
	repo      repository.OrdenTrabajoRepository
	clientes  repository.ClienteRepository
	vehiculos repository.VehiculoRepository
	productos repository.ProductoRepository
	ledger    *StockLedger
	cache     Cache
	alertas   AlertaDispatcher
	taller    string
}

func NewOrdenTrabajoService(
	repo repository.OrdenTrabajoRepository,
	clientes repository.ClienteRepository,
	vehiculos repository.VehiculoRepository,
	productos repository.ProductoRepository,
	ledger *StockLedger,
	cache Cache,
	alertas AlertaDispatcher,
	taller string,
) OrdenTrabajoService {
	return &ordenTrabajoService{
		repo:      repo,
		clientes:  clientes,
		vehiculos: vehiculos,
		productos: productos,
		ledger:    ledger,
		cache:     cache,
		alertas:   alertas,
		taller:    taller,
	}
}

func numeroDuplicado(n int) error {
	return apperror.Conflictf("El número de orden %d ya existe en el sistema.", n)
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// One transaction:
//   1. Reject a paper number already in use
//   2. Find or create the client (rut, then email)
//   3. Find or create the vehicle; a plate owned by another client aborts
//   4. Per item: consume stock for linked products, build the detail line
//   5. Persist header + details with the charged total

func (s *ordenTrabajoService) Crear(ctx context.Context, autor string, req dto.CrearOrdenTrabajoRequest) (*dto.CrearOrdenTrabajoResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("La orden debe tener al menos un servicio")
	}
	if autor == "" {
		autor = model.RolWorker
	}

	patente := NormalizarPatente(req.Vehiculo.Patente)
	orden := &model.OrdenTrabajo{
		ID:               uuid.New(),
		NumeroOrdenPapel: req.NumeroOrdenPapel,
		Estado:           model.EstadoOrdenFinalizada,
		FechaIngreso:     time.Now().UTC(),
		RealizadoPor:     strings.TrimSpace(req.RealizadoPor),
		RevisadoPor:      optionalString(derefTrim(req.RevisadoPor)),
		PatenteVehiculo:  patente,
		Kilometraje:      req.Vehiculo.Kilometraje,
		CreatedByName:    autor,
	}
	var skus []string
	var tocados []uuid.UUID

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existe, err := s.repo.ExistsNumeroTx(tx, req.NumeroOrdenPapel)
		if err != nil {
			return apperror.Internal("orden_trabajo.crear", "orden_trabajo", err)
		}
		if existe {
			return numeroDuplicado(req.NumeroOrdenPapel)
		}

		cliente, err := s.clientes.UpsertTx(tx, repository.ClienteUpsert{
			Nombre:   strings.TrimSpace(req.Cliente.Nombre),
			RUT:      NormalizarRUT(derefTrim(req.Cliente.RUT)),
			Email:    NormalizarEmail(derefTrim(req.Cliente.Email)),
			Telefono: derefTrim(req.Cliente.Telefono),
		})
		if err != nil {
			return apperror.Internal("orden_trabajo.crear", "cliente", err)
		}
		orden.ClienteID = cliente.ID

		_, err = s.vehiculos.UpsertTx(tx, repository.VehiculoUpsert{
			Patente:     patente,
			Marca:       strings.TrimSpace(req.Vehiculo.Marca),
			Modelo:      strings.TrimSpace(req.Vehiculo.Modelo),
			Anio:        req.Vehiculo.Anio,
			Kilometraje: req.Vehiculo.Kilometraje,
			ClienteID:   cliente.ID,
		}, func(duenio *model.Cliente) error {
			return apperror.Ownership(patente, duenio.Nombre)
		})
		if err != nil {
			return apperror.Internal("orden_trabajo.crear", "vehiculo", err)
		}

		var total int64
		for _, item := range req.Items {
			detalle, err := s.procesarItem(tx, orden, item)
			if err != nil {
				return err
			}
			if detalle.ProductoID != nil {
				skus = append(skus, derefTrim(item.ProductSKU))
				tocados = append(tocados, *detalle.ProductoID)
			}
			total += detalle.Subtotal()
			orden.Detalles = append(orden.Detalles, *detalle)
		}
		orden.TotalCobrado = total

		if err := s.repo.CreateTx(tx, orden); err != nil {
			if isDuplicate(err) {
				return numeroDuplicado(req.NumeroOrdenPapel)
			}
			return apperror.Internal("orden_trabajo.crear", "orden_trabajo", err)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("numero_orden", req.NumeroOrdenPapel).Msg("orden de trabajo rechazada")
		return nil, err
	}

	invalidarPrecios(ctx, s.cache, skus)
	alertarStockBajo(ctx, s.productos, s.alertas, "orden_trabajo", orden.ID, tocados)
	log.Info().
		Str("orden_id", orden.ID.String()).
		Int("numero_orden", orden.NumeroOrdenPapel).
		Int64("total_cobrado", orden.TotalCobrado).
		Msg("orden de trabajo creada")

	return &dto.CrearOrdenTrabajoResponse{
		Message: "Orden creada exitosamente",
		OrdenID: orden.ID.String(),
		Total:   orden.TotalCobrado,
	}, nil
}

// cantidadItem resolves the consumed quantity: cantidad_producto, then
// cantidad, then one.
func cantidadItem(item dto.OrdenItemInput) int {
	if item.CantidadProducto != nil && *item.CantidadProducto > 0 {
		return *item.CantidadProducto
	}
	if item.Cantidad != nil && *item.Cantidad > 0 {
		return *item.Cantidad
	}
	return 1
}

func (s *ordenTrabajoService) procesarItem(tx *gorm.DB, orden *model.OrdenTrabajo, item dto.OrdenItemInput) (*model.DetalleOrden, error) {
	if item.Precio < 0 {
		return nil, apperror.Validationf("El precio del servicio %s no puede ser negativo", item.ServicioNombre)
	}
	cantidad := cantidadItem(item)
	detalle := &model.DetalleOrden{
		ServicioNombre: strings.TrimSpace(item.ServicioNombre),
		Descripcion:    optionalString(derefTrim(item.Descripcion)),
		Precio:         item.Precio,
		Cantidad:       cantidad,
	}

	sku := derefTrim(item.ProductSKU)
	if sku == "" {
		return detalle, nil
	}

	producto, err := s.productos.FindBySKUTx(tx, sku)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("El producto con SKU %s no existe en inventario.", sku)
		}
		return nil, apperror.Internal("orden_trabajo.crear", "producto", err)
	}

	ref := orden.ID
	_, err = s.ledger.Ajustar(tx, AjusteStock{
		ProductoID:   producto.ID,
		Delta:        -cantidad,
		Tipo:         model.StockOrdenTrabajo,
		ReferenciaID: &ref,
		Motivo:       fmt.Sprintf("Orden de trabajo #%d", orden.NumeroOrdenPapel),
	})
	if err != nil {
		var se *apperror.StockError
		if errors.As(err, &se) {
			se.Message = fmt.Sprintf("Stock insuficiente para el producto \"%s\". Disponible: %d unidades.",
				se.Producto, se.Disponible)
		}
		return nil, err
	}

	detalle.ProductoID = &producto.ID
	return detalle, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Header fields only. Stock and totals are never recomputed.

func (s *ordenTrabajoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenTrabajoRequest) (*dto.OrdenTrabajoResponse, error) {
	orden, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("Orden de trabajo con ID %s no encontrada", id)
		}
		return nil, apperror.Internal("orden_trabajo.actualizar", "orden_trabajo", err)
	}

	cambios := map[string]any{}
	if req.NumeroOrdenPapel != nil && *req.NumeroOrdenPapel != orden.NumeroOrdenPapel {
		existe, err := s.repo.ExistsNumero(ctx, *req.NumeroOrdenPapel, &id)
		if err != nil {
			return nil, apperror.Internal("orden_trabajo.actualizar", "orden_trabajo", err)
		}
		if existe {
			return nil, numeroDuplicado(*req.NumeroOrdenPapel)
		}
		cambios["numero_orden_papel"] = *req.NumeroOrdenPapel
	}
	if req.RealizadoPor != nil {
		if v := strings.TrimSpace(*req.RealizadoPor); v != "" {
			cambios["realizado_por"] = v
		}
	}
	if req.RevisadoPor != nil {
		cambios["revisado_por"] = optionalString(strings.TrimSpace(*req.RevisadoPor))
	}

	if err := s.repo.UpdateHeader(ctx, id, cambios); err != nil {
		if isDuplicate(err) && req.NumeroOrdenPapel != nil {
			return nil, numeroDuplicado(*req.NumeroOrdenPapel)
		}
		return nil, apperror.Internal("orden_trabajo.actualizar", "orden_trabajo", err)
	}
	return s.ObtenerPorID(ctx, id)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ordenTrabajoService) Listar(ctx context.Context) ([]dto.OrdenTrabajoResponse, error) {
	ordenes, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("orden_trabajo.listar", "orden_trabajo", err)
	}
	out := make([]dto.OrdenTrabajoResponse, 0, len(ordenes))
	for i := range ordenes {
		out = append(out, *ordenToResponse(&ordenes[i]))
	}
	return out, nil
}

func (s *ordenTrabajoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.OrdenTrabajoResponse, error) {
	o, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return ordenToResponse(o), nil
}

func (s *ordenTrabajoService) CatalogoServicios() []string {
	out := make([]string, len(catalogoServicios))
	copy(out, catalogoServicios)
	return out
}

func (s *ordenTrabajoService) GenerarPDF(ctx context.Context, id uuid.UUID) ([]byte, int, error) {
	o, err := s.buscar(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	pdf, err := infra.GenerateOrdenPDF(o, s.taller)
	if err != nil {
		return nil, 0, apperror.Internal("orden_trabajo.pdf", "orden_trabajo", err)
	}
	return pdf, o.NumeroOrdenPapel, nil
}

func (s *ordenTrabajoService) buscar(ctx context.Context, id uuid.UUID) (*model.OrdenTrabajo, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("Orden de trabajo con ID %s no encontrada", id)
		}
		return nil, apperror.Internal("orden_trabajo.obtener", "orden_trabajo", err)
	}
	return o, nil
}

func ordenToResponse(o *model.OrdenTrabajo) *dto.OrdenTrabajoResponse {
	resp := &dto.OrdenTrabajoResponse{
		ID:               o.ID.String(),
		NumeroOrdenPapel: o.NumeroOrdenPapel,
		Estado:           o.Estado,
		FechaIngreso:     o.FechaIngreso.Format(time.RFC3339),
		TotalCobrado:     o.TotalCobrado,
		RealizadoPor:     o.RealizadoPor,
		RevisadoPor:      o.RevisadoPor,
		PatenteVehiculo:  o.PatenteVehiculo,
		Kilometraje:      o.Kilometraje,
		CreatedByName:    o.CreatedByName,
		Detalles:         make([]dto.DetalleOrdenResponse, 0, len(o.Detalles)),
	}
	if o.Cliente != nil {
		resp.Cliente = &dto.ClienteResumen{
			ID:       o.Cliente.ID.String(),
			Nombre:   o.Cliente.Nombre,
			RUT:      o.Cliente.RUT,
			Telefono: o.Cliente.Telefono,
			Email:    o.Cliente.Email,
		}
	}
	for _, d := range o.Detalles {
		item := dto.DetalleOrdenResponse{
			ID:             d.ID.String(),
			ServicioNombre: d.ServicioNombre,
			Descripcion:    d.Descripcion,
			Precio:         d.Precio,
			Cantidad:       d.Cantidad,
			Subtotal:       d.Subtotal(),
		}
		if d.Producto != nil {
			p := productoResumen(d.Producto)
			item.Producto = &p
		}
		resp.Detalles = append(resp.Detalles, item)
	}
	return resp
}
