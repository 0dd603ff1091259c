package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VentaMesonItemInput struct {
	SKU         string `json:"sku"          validate:"required"`
	Cantidad    int    `json:"cantidad"     validate:"required,min=1"`
	PrecioVenta *int64 `json:"precio_venta" validate:"omitempty,min=0"`
}

// CrearVentaMesonRequest registers a counter movement. The comprador and item
// rules depend on tipo_movimiento and are checked by the service.
type CrearVentaMesonRequest struct {
	TipoMovimiento string                `json:"tipo_movimiento"`
	Comentario     *string               `json:"comentario"`
	Comprador      *string               `json:"comprador"`
	Items          []VentaMesonItemInput `json:"items" validate:"dive"`
}

type VentaMesonFilter struct {
	TipoMovimiento string `form:"tipo_movimiento"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CrearVentaMesonResponse struct {
	Message         string `json:"message"`
	ID              string `json:"id"`
	Tipo            string `json:"tipo"`
	TotalVenta      int64  `json:"total_venta"`
	CostoPerdida    int64  `json:"costo_perdida"`
	ItemsProcesados int    `json:"items_procesados"`
}

type DetalleVentaMesonResponse struct {
	ID                  string          `json:"id"`
	Cantidad            int             `json:"cantidad"`
	PrecioVentaUnitario int64           `json:"precio_venta_unitario"`
	CostoProducto       int64           `json:"costo_producto"`
	TotalFila           int64           `json:"total_fila"`
	Producto            ProductoResumen `json:"producto"`
}

type VentaMesonResponse struct {
	ID             string                      `json:"id"`
	TipoMovimiento string                      `json:"tipo_movimiento"`
	Fecha          string                      `json:"fecha"`
	TotalVenta     int64                       `json:"total_venta"`
	CostoPerdida   int64                       `json:"costo_perdida"`
	Comentario     *string                     `json:"comentario"`
	Comprador      *string                     `json:"comprador"`
	CreatedByName  string                      `json:"created_by_name"`
	Detalles       []DetalleVentaMesonResponse `json:"detalles"`
}
