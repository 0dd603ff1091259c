package dto

import "encoding/json"

type StockBajoItem struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Nombre      string  `json:"nombre"`
	Marca       *string `json:"marca"`
	StockActual int     `json:"stock_actual"`
	StockMinimo int     `json:"stock_minimo"`
	Diferencia  int     `json:"diferencia"`
	Categoria   string  `json:"categoria"`
	PrecioVenta int64   `json:"precio_venta"`
}

type StockBajoResponse struct {
	TotalAlertas  int             `json:"total_alertas"`
	FechaConsulta string          `json:"fecha_consulta"`
	Productos     []StockBajoItem `json:"productos"`
}

type CajaDiariaResponse struct {
	Fecha               string `json:"fecha"`
	TotalTaller         int64  `json:"total_taller"`
	CantidadOrdenes     int64  `json:"cantidad_ordenes"`
	TotalMeson          int64  `json:"total_meson"`
	CantidadVentasMeson int64  `json:"cantidad_ventas_meson"`
	TotalFinal          int64  `json:"total_final"`
}

type ClienteBusquedaItem struct {
	ID              string  `json:"id"`
	Nombre          string  `json:"nombre"`
	RUT             *string `json:"rut"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"`
	CantidadOrdenes int64   `json:"cantidad_ordenes"`
}

type VehiculoBusquedaItem struct {
	ID      string `json:"id"`
	Patente string `json:"patente"`
	Marca   string `json:"marca"`
	Modelo  string `json:"modelo"`
	Anio    *int   `json:"anio"`
}

type OrdenBusquedaItem struct {
	ID            string `json:"id"`
	NumeroOrden   int    `json:"numero_orden"`
	Patente       string `json:"patente"`
	ClienteNombre string `json:"cliente_nombre"`
	Fecha         string `json:"fecha"`
	Total         int64  `json:"total"`
	Estado        string `json:"estado"`
}

// BusquedaResponse is the global search result. A response carrying Mensaje
// is the short-query answer and serializes only mensaje, clientes and vehiculos.
type BusquedaResponse struct {
	Mensaje          string                 `json:"-"`
	Busqueda         string                 `json:"busqueda"`
	TotalResultados  int                    `json:"total_resultados"`
	Clientes         []ClienteBusquedaItem  `json:"clientes"`
	Vehiculos        []VehiculoBusquedaItem `json:"vehiculos"`
	OrdenesRecientes []OrdenBusquedaItem    `json:"ordenes_recientes"`
}

func (r BusquedaResponse) MarshalJSON() ([]byte, error) {
	if r.Mensaje != "" {
		return json.Marshal(struct {
			Mensaje   string                 `json:"mensaje"`
			Clientes  []ClienteBusquedaItem  `json:"clientes"`
			Vehiculos []VehiculoBusquedaItem `json:"vehiculos"`
		}{r.Mensaje, r.Clientes, r.Vehiculos})
	}
	type full BusquedaResponse
	return json.Marshal(full(r))
}
