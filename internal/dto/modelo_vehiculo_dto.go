package dto

type CrearModeloVehiculoRequest struct {
	Marca  string  `json:"marca"  validate:"required,min=1,max=60"`
	Modelo string  `json:"modelo" validate:"required,min=1,max=60"`
	Anio   *int    `json:"anio"   validate:"omitempty,min=1900,max=2100"`
	Motor  *string `json:"motor"`
}

type ActualizarModeloVehiculoRequest struct {
	Marca  *string `json:"marca"  validate:"omitempty,min=1,max=60"`
	Modelo *string `json:"modelo" validate:"omitempty,min=1,max=60"`
	Anio   *int    `json:"anio"   validate:"omitempty,min=1900,max=2100"`
	Motor  *string `json:"motor"`
}

type ModeloVehiculoResponse struct {
	ID     string  `json:"id"`
	Marca  string  `json:"marca"`
	Modelo string  `json:"modelo"`
	Anio   *int    `json:"anio"`
	Motor  *string `json:"motor"`
}
