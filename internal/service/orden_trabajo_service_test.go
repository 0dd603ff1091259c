package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clienteA() dto.ClienteOrdenInput {
	return dto.ClienteOrdenInput{Nombre: "Cliente A", RUT: ptr("12.345.678-5"), Telefono: ptr("+56911111111")}
}

func clienteB() dto.ClienteOrdenInput {
	return dto.ClienteOrdenInput{Nombre: "Cliente B", RUT: ptr("9.876.543-2")}
}

func itemConRepuesto(servicio string, precio int64, sku string, cantidad int) dto.OrdenItemInput {
	return dto.OrdenItemInput{ServicioNombre: servicio, Precio: precio, ProductSKU: ptr(sku), CantidadProducto: ptr(cantidad)}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestOrden_CrearDescuentaStockYCalculaTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "PAS-1", "Pastillas freno", 25000, 10)

	resp, err := env.ordenes.Crear(ctx, "Juan", ordenBasica(1001, clienteA(), "ab-cd 12",
		itemConRepuesto("Cambio Pastillas", 30000, "PAS-1", 2),
		dto.OrdenItemInput{ServicioNombre: "Revision", Precio: 10000},
	))
	require.NoError(t, err)
	assert.Equal(t, "Orden creada exitosamente", resp.Message)
	assert.Equal(t, int64(2*30000+10000), resp.Total)
	assert.Equal(t, 8, env.stock(t, "PAS-1"))

	orden, err := env.ordenes.ObtenerPorID(ctx, uuid.MustParse(resp.OrdenID))
	require.NoError(t, err)
	assert.Equal(t, model.EstadoOrdenFinalizada, orden.Estado)
	assert.Equal(t, "ABCD12", orden.PatenteVehiculo)
	assert.Equal(t, "Juan", orden.CreatedByName)
	require.NotNil(t, orden.Cliente)
	require.NotNil(t, orden.Cliente.RUT)
	assert.Equal(t, "123456785", *orden.Cliente.RUT)
	require.Len(t, orden.Detalles, 2)

	movs, err := env.inventario.ListarMovimientos(ctx, dto.MovimientoStockFilter{
		ReferenciaID: resp.OrdenID, Page: 1, Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, model.StockOrdenTrabajo, movs.Data[0].Tipo)
	assert.Equal(t, -2, movs.Data[0].Cantidad)
	assert.Equal(t, 10, movs.Data[0].StockAnterior)
	assert.Equal(t, 8, movs.Data[0].StockNuevo)
}

func TestOrden_CantidadAliasYPorDefecto(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "LIQ-1", "Liquido frenos", 6000, 10)

	_, err := env.ordenes.Crear(context.Background(), "", ordenBasica(1, clienteA(), "AAAA11",
		dto.OrdenItemInput{ServicioNombre: "Cambio Liquido", Precio: 1000, ProductSKU: ptr("LIQ-1"), Cantidad: ptr(3)},
		dto.OrdenItemInput{ServicioNombre: "Sangrado", Precio: 1000, ProductSKU: ptr("LIQ-1")},
	))
	require.NoError(t, err)
	assert.Equal(t, 10-3-1, env.stock(t, "LIQ-1"))
}

func TestOrden_ClienteIdempotentePorRUT(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ordenes.Crear(ctx, "", ordenBasica(1, clienteA(), "AAAA11"))
	require.NoError(t, err)

	// Same rut written differently, new phone: same client, phone updated.
	otra := dto.ClienteOrdenInput{Nombre: "Cliente A", RUT: ptr("12345678-5"), Telefono: ptr("+56922222222")}
	_, err = env.ordenes.Crear(ctx, "", ordenBasica(2, otra, "AAAA11"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), env.count(t, &model.Cliente{}))
	assert.Equal(t, int64(1), env.count(t, &model.Vehiculo{}))
	clientes, err := env.clientes.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, clientes, 1)
	require.NotNil(t, clientes[0].Telefono)
	assert.Equal(t, "+56922222222", *clientes[0].Telefono)
}

func TestOrden_ClientePorEmailCuandoNoHayRUT(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := dto.ClienteOrdenInput{Nombre: "Sin Rut", Email: ptr("  Cliente@Mail.CL ")}

	_, err := env.ordenes.Crear(ctx, "", ordenBasica(1, c, "BBBB22"))
	require.NoError(t, err)
	c.Email = ptr("cliente@mail.cl")
	_, err = env.ordenes.Crear(ctx, "", ordenBasica(2, c, "BBBB22"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), env.count(t, &model.Cliente{}))
}

func TestOrden_PatenteDeOtroClienteFalla(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "GOM-1", "Gomas", 3000, 5)

	_, err := env.ordenes.Crear(ctx, "", ordenBasica(1, clienteA(), "ABCD12"))
	require.NoError(t, err)

	_, err = env.ordenes.Crear(ctx, "", ordenBasica(2, clienteB(), "ABCD12",
		itemConRepuesto("Cambio Gomas", 5000, "GOM-1", 2)))
	require.Error(t, err)
	assert.Equal(t, apperror.KindOwnership, apperror.KindOf(err))
	assert.Equal(t, "La patente ABCD12 ya está registrada para otro cliente (Cliente A). No se puede reasignar.", err.Error())

	assert.Equal(t, int64(1), env.count(t, &model.OrdenTrabajo{}))
	assert.Equal(t, int64(1), env.count(t, &model.Cliente{}), "client B rolls back with the order")
	assert.Equal(t, 5, env.stock(t, "GOM-1"))
}

func TestOrden_StockInsuficienteRevierteTodo(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "S-1", "Balatas", 1000, 5)
	env.seedProducto(t, "S-2", "Piola", 1000, 1)

	_, err := env.ordenes.Crear(context.Background(), "", ordenBasica(1, clienteA(), "CCCC33",
		itemConRepuesto("Cambio Balatas", 1000, "S-1", 3),
		itemConRepuesto("Cambio Piola", 1000, "S-2", 2),
	))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Equal(t, `Stock insuficiente para el producto "Piola". Disponible: 1 unidades.`, err.Error())

	assert.Equal(t, 5, env.stock(t, "S-1"), "earlier item rolls back")
	assert.Equal(t, 1, env.stock(t, "S-2"))
	assert.Equal(t, int64(0), env.count(t, &model.OrdenTrabajo{}))
	assert.Equal(t, int64(0), env.count(t, &model.Cliente{}))
	assert.Equal(t, int64(0), env.count(t, &model.MovimientoStock{}))
}

func TestOrden_SKUInexistente(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ordenes.Crear(context.Background(), "", ordenBasica(1, clienteA(), "DDDD44",
		itemConRepuesto("Otros", 1000, "NOPE", 1)))
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "El producto con SKU NOPE no existe en inventario.", err.Error())
}

func TestOrden_NumeroDuplicado(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.ordenes.Crear(ctx, "", ordenBasica(500, clienteA(), "EEEE55"))
	require.NoError(t, err)

	_, err = env.ordenes.Crear(ctx, "", ordenBasica(500, clienteA(), "EEEE55"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "El número de orden 500 ya existe en el sistema.", err.Error())
}

func TestOrden_AlertaStockBajoTrasCommit(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "ALR-1", "Filtro aire", 1000, 4) // minimo 2

	resp, err := env.ordenes.Crear(context.Background(), "", ordenBasica(1, clienteA(), "FFFF66",
		itemConRepuesto("Otros", 1000, "ALR-1", 2)))
	require.NoError(t, err)

	alertas := env.alertas.all()
	require.Len(t, alertas, 1)
	assert.Equal(t, "orden_trabajo", alertas[0].Origen)
	assert.Equal(t, resp.OrdenID, alertas[0].ReferenciaID)
	require.Len(t, alertas[0].Productos, 1)
	assert.Equal(t, "ALR-1", alertas[0].Productos[0].SKU)
	assert.Equal(t, 2, alertas[0].Productos[0].StockActual)
}

func TestOrden_SinAlertaCuandoFalla(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "ALR-2", "Filtro", 1000, 1)

	_, err := env.ordenes.Crear(context.Background(), "", ordenBasica(1, clienteA(), "GGGG77",
		itemConRepuesto("Otros", 1000, "ALR-2", 5)))
	require.Error(t, err)
	assert.Empty(t, env.alertas.all())
}

// Concurrent orders over the same product never oversell it.
func TestOrden_ConcurrenciaNoSobrevende(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducto(t, "CON-1", "Aceite", 1000, 5)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.ordenes.Crear(context.Background(), "", ordenBasica(n, clienteA(), "HHHH88",
				itemConRepuesto("Otros", 1000, "CON-1", 1)))
			if err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, oks)
	assert.Equal(t, 0, env.stock(t, "CON-1"))
	assert.Equal(t, int64(5), env.count(t, &model.OrdenTrabajo{}))
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func TestOrden_ActualizarCabecera(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "UPD-1", "Gomas", 1000, 10)
	resp, err := env.ordenes.Crear(ctx, "", ordenBasica(10, clienteA(), "IIII99",
		itemConRepuesto("Cambio Gomas", 2000, "UPD-1", 2)))
	require.NoError(t, err)
	_, err = env.ordenes.Crear(ctx, "", ordenBasica(11, clienteA(), "IIII99"))
	require.NoError(t, err)
	id := uuid.MustParse(resp.OrdenID)

	got, err := env.ordenes.Actualizar(ctx, id, dto.ActualizarOrdenTrabajoRequest{
		NumeroOrdenPapel: ptr(12), RevisadoPor: ptr("Supervisor"),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, got.NumeroOrdenPapel)
	require.NotNil(t, got.RevisadoPor)
	assert.Equal(t, "Supervisor", *got.RevisadoPor)
	assert.Equal(t, int64(4000), got.TotalCobrado)
	assert.Equal(t, 8, env.stock(t, "UPD-1"), "header update never touches stock")

	_, err = env.ordenes.Actualizar(ctx, id, dto.ActualizarOrdenTrabajoRequest{NumeroOrdenPapel: ptr(11)})
	require.Error(t, err)
	assert.Equal(t, "El número de orden 11 ya existe en el sistema.", err.Error())

	_, err = env.ordenes.Actualizar(ctx, uuid.New(), dto.ActualizarOrdenTrabajoRequest{})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestOrden_CatalogoServiciosEsCopia(t *testing.T) {
	env := newTestEnv(t)
	c := env.ordenes.CatalogoServicios()
	require.Len(t, c, 9)
	assert.Equal(t, "Cambio Pastillas", c[0])
	assert.Equal(t, "Otros", c[len(c)-1])

	c[0] = "mutado"
	assert.Equal(t, "Cambio Pastillas", env.ordenes.CatalogoServicios()[0])
}

func TestOrden_GenerarPDF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "PDF-1", "Pastillas", 1000, 3)
	resp, err := env.ordenes.Crear(ctx, "", ordenBasica(4321, clienteA(), "JJJJ10",
		itemConRepuesto("Cambio Pastillas", 25000, "PDF-1", 1)))
	require.NoError(t, err)

	pdf, numero, err := env.ordenes.GenerarPDF(ctx, uuid.MustParse(resp.OrdenID))
	require.NoError(t, err)
	assert.Equal(t, 4321, numero)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, _, err = env.ordenes.GenerarPDF(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestOrden_Listar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for n := 1; n <= 3; n++ {
		_, err := env.ordenes.Crear(ctx, "", ordenBasica(n, clienteA(), "KKKK11"))
		require.NoError(t, err)
	}
	ordenes, err := env.ordenes.Listar(ctx)
	require.NoError(t, err)
	assert.Len(t, ordenes, 3)
	for _, o := range ordenes {
		assert.NotNil(t, o.Cliente)
		assert.Len(t, o.Detalles, 1)
	}
}
