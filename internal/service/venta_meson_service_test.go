package service

import (
	"context"
	"sync"
	"testing"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaItem(sku string, cantidad int, precio *int64) dto.VentaMesonItemInput {
	return dto.VentaMesonItemInput{SKU: sku, Cantidad: cantidad, PrecioVenta: precio}
}

func TestVentaMeson_VentaDescuentaStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "F-001", "Filtro aceite", 9000, 10)

	resp, err := env.ventas.Crear(ctx, "Caja", dto.CrearVentaMesonRequest{
		TipoMovimiento: "VENTA",
		Comprador:      ptr("Ana"),
		Items:          []dto.VentaMesonItemInput{ventaItem("F-001", 2, ptr(int64(10000)))},
	})
	require.NoError(t, err)
	assert.Equal(t, "Movimiento registrado exitosamente", resp.Message)
	assert.Equal(t, "VENTA", resp.Tipo)
	assert.Equal(t, int64(20000), resp.TotalVenta)
	assert.Equal(t, int64(0), resp.CostoPerdida)
	assert.Equal(t, 1, resp.ItemsProcesados)
	assert.Equal(t, 8, env.stock(t, "F-001"))

	ventas, err := env.ventas.Listar(ctx, dto.VentaMesonFilter{})
	require.NoError(t, err)
	require.Len(t, ventas, 1)
	v := ventas[0]
	assert.Equal(t, "Caja", v.CreatedByName)
	require.NotNil(t, v.Comprador)
	assert.Equal(t, "Ana", *v.Comprador)
	require.Len(t, v.Detalles, 1)
	assert.Equal(t, int64(10000), v.Detalles[0].PrecioVentaUnitario)
	assert.Equal(t, int64(9000), v.Detalles[0].CostoProducto)
	assert.Equal(t, int64(20000), v.Detalles[0].TotalFila)
	assert.Equal(t, "F-001", v.Detalles[0].Producto.SKU)
}

func TestVentaMeson_StockInsuficienteNoPersiste(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "F-001", "Filtro aceite", 9000, 3)

	_, err := env.ventas.Crear(context.Background(), "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "VENTA",
		Comprador:      ptr("Ana"),
		Items:          []dto.VentaMesonItemInput{ventaItem("F-001", 5, ptr(int64(10000)))},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Equal(t, "Stock insuficiente para Filtro aceite. Disponible: 3, Solicitado: 5", err.Error())

	assert.Equal(t, 3, env.stock(t, "F-001"))
	assert.Equal(t, int64(0), env.count(t, &model.VentaMeson{}))
	assert.Equal(t, int64(0), env.count(t, &model.MovimientoStock{}))
}

func TestVentaMeson_PerdidaValoraAPrecioVenta(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "F-002", "Amortiguador", 25000, 10)

	resp, err := env.ventas.Crear(context.Background(), "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "perdida",
		Comentario:     ptr("Caja dañada"),
		Items:          []dto.VentaMesonItemInput{ventaItem("F-002", 3, nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, "PERDIDA", resp.Tipo)
	assert.Equal(t, int64(75000), resp.CostoPerdida)
	assert.Equal(t, int64(0), resp.TotalVenta)
	assert.Equal(t, 7, env.stock(t, "F-002"))
}

func TestVentaMeson_UsoInternoSinMontos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "UI-1", "Trapos", 500, 10)

	resp, err := env.ventas.Crear(ctx, "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "USO_INTERNO",
		Items:          []dto.VentaMesonItemInput{ventaItem("UI-1", 4, ptr(int64(999)))},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.TotalVenta)
	assert.Equal(t, int64(0), resp.CostoPerdida)
	assert.Equal(t, 6, env.stock(t, "UI-1"))

	ventas, err := env.ventas.Listar(ctx, dto.VentaMesonFilter{TipoMovimiento: "USO_INTERNO"})
	require.NoError(t, err)
	require.Len(t, ventas, 1)
	assert.Equal(t, "WORKER", ventas[0].CreatedByName)
	assert.Equal(t, int64(0), ventas[0].Detalles[0].PrecioVentaUnitario)
}

func TestVentaMeson_VariosItemsYJournal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "M-1", "Ampolleta", 1500, 10)
	env.seedProducto(t, "M-2", "Fusible", 300, 10)

	resp, err := env.ventas.Crear(ctx, "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "VENTA",
		Comprador:      ptr("Luis"),
		Items: []dto.VentaMesonItemInput{
			ventaItem("M-1", 2, ptr(int64(2000))),
			ventaItem("M-2", 5, ptr(int64(500))),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2*2000+5*500), resp.TotalVenta)
	assert.Equal(t, 2, resp.ItemsProcesados)

	movs, err := env.inventario.ListarMovimientos(ctx, dto.MovimientoStockFilter{
		ReferenciaID: resp.ID, Tipo: model.StockVentaMeson, Page: 1, Limit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), movs.Total)
	for _, m := range movs.Data {
		assert.Negative(t, m.Cantidad)
		assert.Equal(t, m.StockAnterior+m.Cantidad, m.StockNuevo)
	}
}

func TestVentaMeson_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "V-1", "Bujía", 4000, 10)

	cases := []struct {
		name string
		req  dto.CrearVentaMesonRequest
		kind apperror.Kind
		msg  string
	}{
		{
			name: "tipo invalido",
			req:  dto.CrearVentaMesonRequest{TipoMovimiento: "REGALO", Items: []dto.VentaMesonItemInput{ventaItem("V-1", 1, nil)}},
			kind: apperror.KindValidation,
			msg:  "Tipo de movimiento inválido: REGALO. Valores permitidos: VENTA, PERDIDA, USO_INTERNO",
		},
		{
			name: "venta sin comprador",
			req:  dto.CrearVentaMesonRequest{TipoMovimiento: "VENTA", Comprador: ptr("  "), Items: []dto.VentaMesonItemInput{ventaItem("V-1", 1, ptr(int64(1)))}},
			kind: apperror.KindValidation,
			msg:  "Las ventas requieren el nombre del comprador",
		},
		{
			name: "sin items",
			req:  dto.CrearVentaMesonRequest{TipoMovimiento: "PERDIDA"},
			kind: apperror.KindValidation,
			msg:  "Debe incluir al menos un producto",
		},
		{
			name: "venta sin precio",
			req:  dto.CrearVentaMesonRequest{TipoMovimiento: "VENTA", Comprador: ptr("Ana"), Items: []dto.VentaMesonItemInput{ventaItem("V-1", 1, ptr(int64(0)))}},
			kind: apperror.KindValidation,
			msg:  "El producto Bujía requiere un precio de venta válido",
		},
		{
			name: "sku inexistente",
			req:  dto.CrearVentaMesonRequest{TipoMovimiento: "PERDIDA", Items: []dto.VentaMesonItemInput{ventaItem("NOPE", 1, nil)}},
			kind: apperror.KindNotFound,
			msg:  "El producto con SKU NOPE no existe en inventario.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ventas.Crear(context.Background(), "", tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
	assert.Equal(t, 10, env.stock(t, "V-1"))
	assert.Equal(t, int64(0), env.count(t, &model.VentaMeson{}))
}

func TestVentaMeson_ListarFiltraPorTipo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "L-1", "Aceite", 8000, 20)

	for _, req := range []dto.CrearVentaMesonRequest{
		{TipoMovimiento: "VENTA", Comprador: ptr("Ana"), Items: []dto.VentaMesonItemInput{ventaItem("L-1", 1, ptr(int64(9000)))}},
		{TipoMovimiento: "VENTA", Comprador: ptr("Beto"), Items: []dto.VentaMesonItemInput{ventaItem("L-1", 1, ptr(int64(9000)))}},
		{TipoMovimiento: "PERDIDA", Items: []dto.VentaMesonItemInput{ventaItem("L-1", 1, nil)}},
	} {
		_, err := env.ventas.Crear(ctx, "", req)
		require.NoError(t, err)
	}

	todas, err := env.ventas.Listar(ctx, dto.VentaMesonFilter{})
	require.NoError(t, err)
	assert.Len(t, todas, 3)

	ventas, err := env.ventas.Listar(ctx, dto.VentaMesonFilter{TipoMovimiento: "venta"})
	require.NoError(t, err)
	assert.Len(t, ventas, 2)

	_, err = env.ventas.Listar(ctx, dto.VentaMesonFilter{TipoMovimiento: "otro"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestVentaMeson_InvalidaPrecioYAlerta(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "C-1", "Refrigerante", 7000, 3) // minimo 2
	require.NoError(t, env.cache.Set(ctx, "precio:C-1", []byte(`{}`), 0))

	resp, err := env.ventas.Crear(ctx, "", dto.CrearVentaMesonRequest{
		TipoMovimiento: "USO_INTERNO",
		Items:          []dto.VentaMesonItemInput{ventaItem("C-1", 1, nil)},
	})
	require.NoError(t, err)
	assert.False(t, env.cache.has("precio:C-1"))

	alertas := env.alertas.all()
	require.Len(t, alertas, 1)
	assert.Equal(t, "venta_meson", alertas[0].Origen)
	assert.Equal(t, resp.ID, alertas[0].ReferenciaID)
}

// Concurrent sales against limited stock never oversell.
func TestVentaMeson_ConcurrenciaNoSobrevende(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "RACE-1", "Pastillas", 10000, 7)

	const intentos = 12
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		oks, faltas int
	)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ventas.Crear(context.Background(), "", dto.CrearVentaMesonRequest{
				TipoMovimiento: "VENTA",
				Comprador:      ptr("Cliente"),
				Items:          []dto.VentaMesonItemInput{ventaItem("RACE-1", 2, ptr(int64(12000)))},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if apperror.KindOf(err) == apperror.KindInsufficientStock {
				faltas++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, oks)
	assert.Equal(t, intentos-3, faltas)
	assert.Equal(t, 1, env.stock(t, "RACE-1"))
	assert.Equal(t, int64(3), env.count(t, &model.VentaMeson{}))
}
