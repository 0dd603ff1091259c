package dto

// HistorialPrecioItem is one row in the price-history list.
type HistorialPrecioItem struct {
	ID             string  `json:"id"`
	ProductoID     string  `json:"producto_id"`
	PrecioAnterior int64   `json:"precio_anterior"`
	PrecioNuevo    int64   `json:"precio_nuevo"`
	Motivo         string  `json:"motivo"`
	ReferenciaID   *string `json:"referencia_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// HistorialPrecioListResponse is returned by GET /v1/productos/:id/historial-precios.
type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
