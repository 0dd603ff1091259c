package service

import (
	"context"
	"testing"

	"taller/internal/apperror"
	"taller/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducto_CrearStockMinimo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	porDefecto, err := env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: " P-1 ", Nombre: "Pastillas", PrecioVenta: 1000})
	require.NoError(t, err)
	assert.Equal(t, "P-1", porDefecto.SKU)
	assert.Equal(t, 5, porDefecto.StockMinimo)
	assert.Equal(t, 0, porDefecto.StockActual)

	cero, err := env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: "P-2", Nombre: "Piola", StockMinimo: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, cero.StockMinimo)

	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: "P-1", Nombre: "Otro"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestProducto_CrearConCategoriaYModelos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat, err := env.categorias.Crear(ctx, dto.CrearCategoriaRequest{Nombre: "Frenos"})
	require.NoError(t, err)
	m, err := env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "Nissan", Modelo: "V16"})
	require.NoError(t, err)

	p, err := env.productos.Crear(ctx, dto.CrearProductoRequest{
		SKU: "CM-1", Nombre: "Disco", CategoriaID: ptr(cat.ID.String()),
		ModelosCompatiblesIDs: []string{m.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Categoria)
	assert.Equal(t, "Frenos", *p.Categoria)
	require.Len(t, p.ModelosCompatibles, 1)
	assert.Equal(t, "V16", p.ModelosCompatibles[0].Modelo)

	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{
		SKU: "CM-2", Nombre: "Disco", CategoriaID: ptr(uuid.NewString()),
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{
		SKU: "CM-3", Nombre: "Disco", ModelosCompatiblesIDs: []string{uuid.NewString()},
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestProducto_ActualizarPrecioRegistraHistorial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProducto(t, "H-1", "Aceite 10W40", 10000, 6)
	require.NoError(t, env.cache.Set(ctx, "precio:H-1", []byte(`{}`), 0))

	got, err := env.productos.Actualizar(ctx, p.ID, dto.ActualizarProductoRequest{
		PrecioVenta: ptr(int64(12000)), Nombre: ptr(" Aceite 10W-40 "),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), got.PrecioVenta)
	assert.Equal(t, "Aceite 10W-40", got.Nombre)
	assert.Equal(t, 6, got.StockActual, "stock is never written by a catalog update")
	assert.False(t, env.cache.has("precio:H-1"))

	// Same price again: no new history row.
	_, err = env.productos.Actualizar(ctx, p.ID, dto.ActualizarProductoRequest{PrecioVenta: ptr(int64(12000))})
	require.NoError(t, err)

	hist, err := env.productos.HistorialPrecios(ctx, p.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), hist.Total)
	assert.Equal(t, int64(10000), hist.Data[0].PrecioAnterior)
	assert.Equal(t, int64(12000), hist.Data[0].PrecioNuevo)
	assert.Equal(t, "manual", hist.Data[0].Motivo)

	_, err = env.productos.Actualizar(ctx, uuid.New(), dto.ActualizarProductoRequest{})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestProducto_EliminarYRestaurar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProducto(t, "D-1", "Correa", 15000, 4)

	require.NoError(t, env.productos.Eliminar(ctx, p.ID))

	lista, err := env.productos.Listar(ctx, dto.ProductoFilter{})
	require.NoError(t, err)
	assert.Empty(t, lista)

	eliminados, err := env.productos.ListarEliminados(ctx)
	require.NoError(t, err)
	require.Len(t, eliminados, 1)
	assert.NotNil(t, eliminados[0].EliminadoEn)

	_, err = env.productos.ConsultarPrecio(ctx, "D-1")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	restaurado, err := env.productos.Restaurar(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, restaurado.EliminadoEn)
	assert.Equal(t, 4, restaurado.StockActual)

	_, err = env.productos.Restaurar(ctx, p.ID)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(env.productos.Eliminar(ctx, uuid.New())))
}

func TestProducto_ListarFiltra(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat, err := env.categorias.Crear(ctx, dto.CrearCategoriaRequest{Nombre: "Filtros"})
	require.NoError(t, err)
	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: "LF-1", Nombre: "Filtro aire", CategoriaID: ptr(cat.ID.String())})
	require.NoError(t, err)
	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: "LF-2", Nombre: "Bujía"})
	require.NoError(t, err)

	porCategoria, err := env.productos.Listar(ctx, dto.ProductoFilter{CategoriaID: cat.ID.String()})
	require.NoError(t, err)
	require.Len(t, porCategoria, 1)
	assert.Equal(t, "LF-1", porCategoria[0].SKU)

	porNombre, err := env.productos.Listar(ctx, dto.ProductoFilter{Nombre: "buj"})
	require.NoError(t, err)
	require.Len(t, porNombre, 1)
	assert.Equal(t, "LF-2", porNombre[0].SKU)
}

func TestProducto_ConsultarPrecioUsaCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProducto(t, "CP-1", "Radiador", 90000, 2)

	first, err := env.productos.ConsultarPrecio(ctx, "CP-1")
	require.NoError(t, err)
	assert.Equal(t, int64(90000), first.PrecioVenta)
	assert.True(t, env.cache.has("precio:CP-1"))

	// A direct write bypasses invalidation, so the cached value is served.
	require.NoError(t, env.db.Exec("UPDATE productos SET precio_venta = 1 WHERE sku = ?", "CP-1").Error)
	second, err := env.productos.ConsultarPrecio(ctx, "CP-1")
	require.NoError(t, err)
	assert.Equal(t, int64(90000), second.PrecioVenta)

	_, err = env.productos.ConsultarPrecio(ctx, "NOPE")
	require.Error(t, err)
	assert.Equal(t, "El producto con SKU NOPE no existe en inventario.", err.Error())
}
