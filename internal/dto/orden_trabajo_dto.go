package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ClienteOrdenInput struct {
	Nombre   string  `json:"nombre"   validate:"required,min=1,max=150"`
	RUT      *string `json:"rut"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Telefono *string `json:"telefono"`
}

type VehiculoOrdenInput struct {
	Patente     string `json:"patente"     validate:"required,min=4,max=12"`
	Marca       string `json:"marca"       validate:"required"`
	Modelo      string `json:"modelo"      validate:"required"`
	Anio        *int   `json:"anio"        validate:"omitempty,min=1900,max=2100"`
	Kilometraje *int   `json:"kilometraje" validate:"omitempty,min=0"`
}

// OrdenItemInput is one service line. cantidad is accepted as an alias of
// cantidad_producto.
type OrdenItemInput struct {
	ServicioNombre   string  `json:"servicio_nombre"   validate:"required"`
	Descripcion      *string `json:"descripcion"`
	Precio           int64   `json:"precio"            validate:"min=0"`
	ProductSKU       *string `json:"product_sku"`
	CantidadProducto *int    `json:"cantidad_producto" validate:"omitempty,min=1"`
	Cantidad         *int    `json:"cantidad"          validate:"omitempty,min=1"`
}

type CrearOrdenTrabajoRequest struct {
	NumeroOrdenPapel int                `json:"numero_orden_papel" validate:"required,gt=0"`
	RealizadoPor     string             `json:"realizado_por"      validate:"required"`
	RevisadoPor      *string            `json:"revisado_por"`
	Cliente          ClienteOrdenInput  `json:"cliente"`
	Vehiculo         VehiculoOrdenInput `json:"vehiculo"`
	Items            []OrdenItemInput   `json:"items"              validate:"required,min=1,dive"`
}

// ActualizarOrdenTrabajoRequest patches header fields only.
type ActualizarOrdenTrabajoRequest struct {
	NumeroOrdenPapel *int    `json:"numero_orden_papel" validate:"omitempty,gt=0"`
	RealizadoPor     *string `json:"realizado_por"      validate:"omitempty,min=1"`
	RevisadoPor      *string `json:"revisado_por"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CrearOrdenTrabajoResponse struct {
	Message string `json:"message"`
	OrdenID string `json:"orden_id"`
	Total   int64  `json:"total"`
}

type DetalleOrdenResponse struct {
	ID             string           `json:"id"`
	ServicioNombre string           `json:"servicio_nombre"`
	Descripcion    *string          `json:"descripcion"`
	Precio         int64            `json:"precio"`
	Cantidad       int              `json:"cantidad"`
	Subtotal       int64            `json:"subtotal"`
	Producto       *ProductoResumen `json:"producto,omitempty"`
}

type ClienteResumen struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	RUT      *string `json:"rut"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"`
}

type OrdenTrabajoResponse struct {
	ID               string                 `json:"id"`
	NumeroOrdenPapel int                    `json:"numero_orden_papel"`
	Estado           string                 `json:"estado"`
	FechaIngreso     string                 `json:"fecha_ingreso"`
	TotalCobrado     int64                  `json:"total_cobrado"`
	RealizadoPor     string                 `json:"realizado_por"`
	RevisadoPor      *string                `json:"revisado_por"`
	PatenteVehiculo  string                 `json:"patente_vehiculo"`
	Kilometraje      *int                   `json:"kilometraje"`
	CreatedByName    string                 `json:"created_by_name"`
	Cliente          *ClienteResumen        `json:"cliente,omitempty"`
	Detalles         []DetalleOrdenResponse `json:"detalles"`
}
