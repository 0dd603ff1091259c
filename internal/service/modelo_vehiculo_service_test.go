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

func seedModelos(t *testing.T, env *testEnv) []*dto.ModeloVehiculoResponse {
	t.Helper()
	var out []*dto.ModeloVehiculoResponse
	for _, req := range []dto.CrearModeloVehiculoRequest{
		{Marca: "Toyota", Modelo: "Yaris", Anio: ptr(2015)},
		{Marca: "Toyota", Modelo: "Yaris", Anio: ptr(2018)},
		{Marca: "Toyota", Modelo: "Corolla"},
		{Marca: "Chevrolet", Modelo: "Sail", Motor: ptr("1.4")},
	} {
		m, err := env.modelos.Crear(context.Background(), req)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestModelo_ClaveUnica(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedModelos(t, env)

	_, err := env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "toyota", Modelo: "YARIS", Anio: ptr(2015)})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Ya existe el modelo toyota YARIS 2015", err.Error())

	_, err = env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "Toyota", Modelo: "Corolla"})
	assert.Equal(t, "Ya existe el modelo Toyota Corolla", err.Error())

	// Same marca/modelo with a new year is a different model.
	_, err = env.modelos.Crear(ctx, dto.CrearModeloVehiculoRequest{Marca: "Toyota", Modelo: "Corolla", Anio: ptr(2020)})
	require.NoError(t, err)
}

func TestModelo_MarcasYModelos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedModelos(t, env)

	marcas, err := env.modelos.Marcas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chevrolet", "Toyota"}, marcas)

	modelos, err := env.modelos.ModelosPorMarca(ctx, "toyota")
	require.NoError(t, err)
	assert.Equal(t, []string{"Corolla", "Yaris"}, modelos)

	vacio, err := env.modelos.ModelosPorMarca(ctx, "Ford")
	require.NoError(t, err)
	assert.NotNil(t, vacio)
	assert.Empty(t, vacio)
}

func TestModelo_Buscar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedModelos(t, env)

	corta, err := env.modelos.Buscar(ctx, "y")
	require.NoError(t, err)
	assert.Empty(t, corta)

	yaris, err := env.modelos.Buscar(ctx, "yar")
	require.NoError(t, err)
	require.Len(t, yaris, 2)
	require.NotNil(t, yaris[0].Anio)
	assert.Equal(t, 2018, *yaris[0].Anio)

	porMarca, err := env.modelos.Buscar(ctx, "chev")
	require.NoError(t, err)
	assert.Len(t, porMarca, 1)
}

func TestModelo_ActualizarYEliminar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ms := seedModelos(t, env)
	id := uuid.MustParse(ms[0].ID)

	_, err := env.modelos.Actualizar(ctx, id, dto.ActualizarModeloVehiculoRequest{Anio: ptr(2018)})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	got, err := env.modelos.Actualizar(ctx, id, dto.ActualizarModeloVehiculoRequest{Motor: ptr("1.5 VVT-i")})
	require.NoError(t, err)
	require.NotNil(t, got.Motor)
	assert.Equal(t, "1.5 VVT-i", *got.Motor)

	// A model linked to a product can still be removed; the link goes with it.
	_, err = env.productos.Crear(ctx, dto.CrearProductoRequest{SKU: "MD-1", Nombre: "Filtro", ModelosCompatiblesIDs: []string{ms[0].ID}})
	require.NoError(t, err)
	require.NoError(t, env.modelos.Eliminar(ctx, id))

	p, err := env.productosRepo.FindBySKU(ctx, "MD-1")
	require.NoError(t, err)
	full, err := env.productos.ObtenerPorID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, full.ModelosCompatibles)

	_, err = env.modelos.ObtenerPorID(ctx, id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(env.modelos.Eliminar(ctx, id)))
}
