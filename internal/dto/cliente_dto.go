package dto

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=1,max=150"`
	RUT       *string `json:"rut"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

type VehiculoResponse struct {
	ID          string `json:"id"`
	Patente     string `json:"patente"`
	Marca       string `json:"marca"`
	Modelo      string `json:"modelo"`
	Anio        *int   `json:"anio"`
	Kilometraje *int   `json:"kilometraje"`
}

type ClienteResponse struct {
	ID        string             `json:"id"`
	Nombre    string             `json:"nombre"`
	RUT       *string            `json:"rut"`
	Email     *string            `json:"email"`
	Telefono  *string            `json:"telefono"`
	Direccion *string            `json:"direccion"`
	Vehiculos []VehiculoResponse `json:"vehiculos"`
}
