package model

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Categoria{},
		&ModeloVehiculo{},
		&Producto{},
		&Proveedor{},
		&Cliente{},
		&Vehiculo{},
		&Usuario{},
		&Compra{},
		&DetalleCompra{},
		&OrdenTrabajo{},
		&DetalleOrden{},
		&VentaMeson{},
		&DetalleVentaMeson{},
		&MovimientoStock{},
		&HistorialPrecio{},
	}
}
