package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	SKU                   string   `json:"sku"          validate:"required,min=1,max=60"`
	Nombre                string   `json:"nombre"       validate:"required,min=2,max=150"`
	Marca                 *string  `json:"marca"`
	Calidad               *string  `json:"calidad"`
	PrecioVenta           int64    `json:"precio_venta" validate:"min=0"`
	StockMinimo           *int     `json:"stock_minimo" validate:"omitempty,min=0"`
	CategoriaID           *string  `json:"categoria_id" validate:"omitempty,uuid"`
	ModelosCompatiblesIDs []string `json:"modelos_compatibles_ids" validate:"omitempty,dive,uuid"`
}

// ActualizarProductoRequest never carries stock; stock moves only through
// purchases, work orders and counter sales.
type ActualizarProductoRequest struct {
	Nombre      *string `json:"nombre"       validate:"omitempty,min=2,max=150"`
	Marca       *string `json:"marca"`
	Calidad     *string `json:"calidad"`
	PrecioVenta *int64  `json:"precio_venta" validate:"omitempty,min=0"`
	StockMinimo *int    `json:"stock_minimo" validate:"omitempty,min=0"`
	CategoriaID *string `json:"categoria_id" validate:"omitempty,uuid"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	Nombre      string `form:"nombre"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                 string                   `json:"id"`
	SKU                string                   `json:"sku"`
	Nombre             string                   `json:"nombre"`
	Marca              *string                  `json:"marca"`
	Calidad            *string                  `json:"calidad"`
	PrecioVenta        int64                    `json:"precio_venta"`
	StockActual        int                      `json:"stock_actual"`
	StockMinimo        int                      `json:"stock_minimo"`
	CategoriaID        *string                  `json:"categoria_id"`
	Categoria          *string                  `json:"categoria"`
	ModelosCompatibles []ModeloVehiculoResponse `json:"modelos_compatibles"`
	EliminadoEn        *string                  `json:"eliminado_en,omitempty"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint (no auth required).
type ConsultaPreciosResponse struct {
	SKU         string  `json:"sku"`
	Nombre      string  `json:"nombre"`
	Marca       *string `json:"marca"`
	PrecioVenta int64   `json:"precio_venta"`
	StockActual int     `json:"stock_actual"`
}
