package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// Field rules for purchases are checked by the service so that each failure
// names the offending SKU.
type CompraItemInput struct {
	SKU                   string          `json:"sku"`
	Nombre                string          `json:"nombre"`
	Marca                 *string         `json:"marca"`
	Calidad               *string         `json:"calidad"`
	Cantidad              int             `json:"cantidad"`
	PrecioCosto           decimal.Decimal `json:"precio_costo"`
	PrecioVentaSugerido   decimal.Decimal `json:"precio_venta_sugerido"`
	ModelosCompatiblesIDs []string        `json:"modelos_compatibles_ids" validate:"omitempty,dive,uuid"`
}

type CrearCompraRequest struct {
	ProveedorNombre string            `json:"proveedor_nombre"`
	NumeroDocumento *string           `json:"numero_documento"`
	TipoDocumento   string            `json:"tipo_documento" validate:"required,oneof=FACTURA INFORMAL BOLETA"`
	Items           []CompraItemInput `json:"items"          validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResumen struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
}

type DetalleCompraResponse struct {
	ID                  string          `json:"id"`
	Cantidad            int             `json:"cantidad"`
	PrecioCostoUnitario int64           `json:"precio_costo_unitario"`
	TotalFila           int64           `json:"total_fila"`
	Producto            ProductoResumen `json:"producto"`
}

type ProveedorResumen struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type CompraResponse struct {
	ID            string                  `json:"id"`
	NumeroFactura string                  `json:"numero_factura"`
	TipoDocumento string                  `json:"tipo_documento"`
	Fecha         string                  `json:"fecha"`
	MontoNeto     int64                   `json:"monto_neto"`
	MontoIVA      int64                   `json:"monto_iva"`
	MontoTotal    int64                   `json:"monto_total"`
	CreatedByName string                  `json:"created_by_name"`
	Proveedor     ProveedorResumen        `json:"proveedor"`
	Detalles      []DetalleCompraResponse `json:"detalles"`
}

type EliminarCompraResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
