package service

import (
	"context"
	"testing"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compraItem(sku string, cantidad int, costo, venta int64) dto.CompraItemInput {
	return dto.CompraItemInput{
		SKU: sku, Nombre: "Producto " + sku, Cantidad: cantidad,
		PrecioCosto: dec(costo), PrecioVentaSugerido: dec(venta),
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestCompra_FacturaNuevoProducto(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.compras.Crear(context.Background(), "Admin Uno", dto.CrearCompraRequest{
		ProveedorNombre: "Repuestos Sur",
		TipoDocumento:   model.DocumentoFactura,
		Items:           []dto.CompraItemInput{compraItem("NEW-1", 10, 1000, 1800)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), resp.MontoNeto)
	assert.Equal(t, int64(1900), resp.MontoIVA)
	assert.Equal(t, int64(11900), resp.MontoTotal)
	assert.Equal(t, "S/N", resp.NumeroFactura)
	assert.Equal(t, "Admin Uno", resp.CreatedByName)
	assert.Equal(t, "Repuestos Sur", resp.Proveedor.Nombre)
	require.Len(t, resp.Detalles, 1)
	assert.Equal(t, int64(10000), resp.Detalles[0].TotalFila)
	assert.Equal(t, "NEW-1", resp.Detalles[0].Producto.SKU)
	assert.Equal(t, 10, resp.Detalles[0].Producto.StockActual)

	assert.Equal(t, 10, env.stock(t, "NEW-1"))
	p, err := env.productosRepo.FindBySKU(context.Background(), "NEW-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), p.PrecioVenta)
	assert.Equal(t, model.StockMinimoDefault, p.StockMinimo)
}

func TestCompra_InformalSinIVA(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Feria",
		NumeroDocumento: ptr("  B-77 "),
		TipoDocumento:   model.DocumentoInformal,
		Items: []dto.CompraItemInput{
			compraItem("A-1", 2, 1500, 3000),
			compraItem("A-2", 3, 999, 2000),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2*1500+3*999), resp.MontoNeto)
	assert.Equal(t, int64(0), resp.MontoIVA)
	assert.Equal(t, resp.MontoNeto, resp.MontoTotal)
	assert.Equal(t, "B-77", resp.NumeroFactura)
	assert.Equal(t, model.RolAdmin, resp.CreatedByName)
}

func TestCompra_RedondeaMontosDecimales(t *testing.T) {
	env := newTestEnv(t)
	item := compraItem("DEC-1", 3, 0, 0)
	item.PrecioCosto = decimal.RequireFromString("100.5")
	item.PrecioVentaSugerido = decimal.RequireFromString("199.49")

	resp, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov", TipoDocumento: model.DocumentoFactura,
		Items: []dto.CompraItemInput{item},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), resp.Detalles[0].PrecioCostoUnitario)
	assert.Equal(t, int64(303), resp.MontoNeto)
	assert.Equal(t, int64(58), resp.MontoIVA) // 303 × 0.19 = 57.57
	p, _ := env.productosRepo.FindBySKU(context.Background(), "DEC-1")
	assert.Equal(t, int64(199), p.PrecioVenta)
}

func TestCompra_ProductoExistenteSumaStockYRegistraHistorial(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProducto(t, "F-001", "Filtro aceite", 5000, 4)
	env.cache.data[precioCacheKey("F-001")] = []byte(`{}`)

	_, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov",
		TipoDocumento:   model.DocumentoBoleta,
		Items: []dto.CompraItemInput{{
			SKU: "F-001", Cantidad: 6, Marca: ptr("Bosch"),
			PrecioCosto: dec(3000), PrecioVentaSugerido: dec(5500),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, env.stock(t, "F-001"))
	actualizado, err := env.productosRepo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5500), actualizado.PrecioVenta)
	assert.Equal(t, "Filtro aceite", actualizado.Nombre, "existing name is kept")
	require.NotNil(t, actualizado.Marca)
	assert.Equal(t, "Bosch", *actualizado.Marca)

	hist, err := env.productos.HistorialPrecios(context.Background(), p.ID, 1, 50)
	require.NoError(t, err)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, int64(5000), hist.Data[0].PrecioAnterior)
	assert.Equal(t, int64(5500), hist.Data[0].PrecioNuevo)
	assert.Equal(t, "compra", hist.Data[0].Motivo)

	assert.False(t, env.cache.has(precioCacheKey("F-001")), "committed purchase invalidates the price cache")
}

func TestCompra_RestauraProductoEliminado(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProducto(t, "DEL-1", "Correa", 9000, 0)
	require.NoError(t, env.productos.Eliminar(context.Background(), p.ID))

	_, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov", TipoDocumento: model.DocumentoBoleta,
		Items: []dto.CompraItemInput{compraItem("DEL-1", 2, 4000, 9000)},
	})
	require.NoError(t, err)

	got, err := env.productosRepo.FindBySKU(context.Background(), "DEL-1")
	require.NoError(t, err, "purchase brings a deleted product back")
	assert.Equal(t, 2, got.StockActual)
}

func TestCompra_ReutilizaProveedorPorNombre(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 2; i++ {
		_, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
			ProveedorNombre: "Mismo Proveedor", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem("P-1", 1, 100, 200)},
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), env.count(t, &model.Proveedor{}))
	assert.Equal(t, int64(2), env.count(t, &model.Compra{}))
	assert.Equal(t, 2, env.stock(t, "P-1"))
}

func TestCompra_ModelosCompatiblesSeUnen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m1, err := env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "Toyota", Modelo: "Yaris", Anio: ptr(2015)})
	require.NoError(t, err)
	m2, err := env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "Nissan", Modelo: "Versa", Anio: ptr(2018)})
	require.NoError(t, err)

	for _, ids := range [][]string{{m1.ID}, {m1.ID, m2.ID}} {
		item := compraItem("PAST-1", 1, 100, 200)
		item.ModelosCompatiblesIDs = ids
		_, err := env.compras.Crear(ctx, "", dto.CrearCompraRequest{
			ProveedorNombre: "Prov", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{item},
		})
		require.NoError(t, err)
	}

	p, err := env.productosRepo.FindBySKU(ctx, "PAST-1")
	require.NoError(t, err)
	full, err := env.productos.ObtenerPorID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, full.ModelosCompatibles, 2)
}

func TestCompra_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		req  dto.CrearCompraRequest
		msg  string
	}{
		{"sin proveedor", dto.CrearCompraRequest{ProveedorNombre: "  ", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem("X", 1, 1, 1)}}, "El nombre del proveedor es obligatorio"},
		{"sin items", dto.CrearCompraRequest{ProveedorNombre: "P", TipoDocumento: model.DocumentoBoleta},
			"La compra debe tener al menos un producto"},
		{"sku vacio", dto.CrearCompraRequest{ProveedorNombre: "P", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem(" ", 1, 1, 1)}}, "El SKU es obligatorio en todos los items"},
		{"cantidad cero", dto.CrearCompraRequest{ProveedorNombre: "P", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem("X", 0, 1, 1)}}, "La cantidad del SKU X debe ser positiva"},
		{"costo negativo", dto.CrearCompraRequest{ProveedorNombre: "P", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem("X", 1, -1, 1)}}, "El costo del SKU X no puede ser negativo"},
		{"precio negativo", dto.CrearCompraRequest{ProveedorNombre: "P", TipoDocumento: model.DocumentoBoleta,
			Items: []dto.CompraItemInput{compraItem("X", 1, 1, -5)}}, "El precio sugerido del SKU X no puede ser negativo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.compras.Crear(context.Background(), "", tc.req)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tc.msg, err.Error())
			assert.Equal(t, int64(0), env.count(t, &model.Compra{}))
		})
	}
}

func TestCompra_ItemInvalidoRevierteItemsAnteriores(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov Nuevo", TipoDocumento: model.DocumentoFactura,
		Items: []dto.CompraItemInput{
			compraItem("OK-1", 5, 100, 200),
			compraItem("BAD", 0, 100, 200),
		},
	})
	require.Error(t, err)

	assert.Equal(t, int64(0), env.count(t, &model.Compra{}))
	assert.Equal(t, int64(0), env.count(t, &model.Producto{}), "first item's product must roll back")
	assert.Equal(t, int64(0), env.count(t, &model.Proveedor{}))
	assert.Equal(t, int64(0), env.count(t, &model.MovimientoStock{}))
}

func TestCompra_ModeloInexistente(t *testing.T) {
	env := newTestEnv(t)
	item := compraItem("M-1", 1, 100, 200)
	item.ModelosCompatiblesIDs = []string{uuid.NewString()}

	_, err := env.compras.Crear(context.Background(), "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov", TipoDocumento: model.DocumentoBoleta,
		Items: []dto.CompraItemInput{item},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, int64(0), env.count(t, &model.Producto{}))
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func TestCompra_EliminarRevierteStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "R-1", "Rodamiento", 8000, 3)

	compra, err := env.compras.Crear(ctx, "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov", TipoDocumento: model.DocumentoBoleta,
		Items: []dto.CompraItemInput{compraItem("R-1", 5, 4000, 8000)},
	})
	require.NoError(t, err)
	require.Equal(t, 8, env.stock(t, "R-1"))

	id := uuid.MustParse(compra.ID)
	resp, err := env.compras.Eliminar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Compra eliminada y stock revertido", resp.Message)
	assert.Equal(t, 3, env.stock(t, "R-1"))
	assert.Equal(t, int64(0), env.count(t, &model.Compra{}))
	assert.Equal(t, int64(0), env.count(t, &model.DetalleCompra{}))

	_, err = env.compras.ObtenerPorID(ctx, id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCompra_EliminarConStockConsumidoQuedaEnCero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	compra, err := env.compras.Crear(ctx, "", dto.CrearCompraRequest{
		ProveedorNombre: "Prov", TipoDocumento: model.DocumentoBoleta,
		Items: []dto.CompraItemInput{compraItem("C-1", 5, 100, 1000)},
	})
	require.NoError(t, err)

	_, err = env.ventas.Crear(ctx, "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "VENTA", Comprador: ptr("Ana"),
		Items: []dto.VentaMesonItemInput{{SKU: "C-1", Cantidad: 3, PrecioVenta: ptr(int64(1000))}},
	})
	require.NoError(t, err)

	_, err = env.compras.Eliminar(ctx, uuid.MustParse(compra.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, env.stock(t, "C-1"), "reversal clamps at zero")

	movs, err := env.inventario.ListarMovimientos(ctx, dto.MovimientoStockFilter{Tipo: model.StockReversaCompra, Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, -2, movs.Data[0].Cantidad)
}

func TestCompra_EliminarInexistente(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.compras.Eliminar(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "Compra no encontrada", err.Error())
}
