package service

import (
	"context"
	"testing"

	"taller/internal/apperror"
	"taller/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCliente_CrearNormaliza(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.clientes.Crear(ctx, dto.CrearClienteRequest{
		Nombre: " María Soto ", RUT: ptr("11.111.111-k"), Email: ptr(" Maria@Correo.CL"),
	})
	require.NoError(t, err)
	assert.Equal(t, "María Soto", c.Nombre)
	require.NotNil(t, c.RUT)
	assert.Equal(t, "11111111K", *c.RUT)
	require.NotNil(t, c.Email)
	assert.Equal(t, "maria@correo.cl", *c.Email)
	assert.Nil(t, c.Telefono)
	assert.NotNil(t, c.Vehiculos)
}

func TestCliente_CrearDuplicado(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: "Uno", RUT: ptr("11111111-K"), Email: ptr("uno@mail.cl")})
	require.NoError(t, err)

	_, err = env.clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: "Dos", RUT: ptr("11.111.111-k")})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Ya existe un cliente con RUT 11111111K", err.Error())

	_, err = env.clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: "Tres", Email: ptr("UNO@mail.cl")})
	assert.Equal(t, "Ya existe un cliente con email uno@mail.cl", err.Error())

	// Several clients without rut or email are fine.
	for i := 0; i < 2; i++ {
		_, err = env.clientes.Crear(ctx, dto.CrearClienteRequest{Nombre: "Anónimo"})
		require.NoError(t, err)
	}
}

func TestCliente_ListarIncluyeVehiculos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.ordenes.Crear(ctx, "", ordenBasica(1, clienteA(), "LLLL22"))
	require.NoError(t, err)
	_, err = env.ordenes.Crear(ctx, "", ordenBasica(2, clienteA(), "MMMM33"))
	require.NoError(t, err)

	list, err := env.clientes.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Vehiculos, 2)
}
