package service

import (
	"context"
	"strings"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

// Crear registers a client directly. RUT and email are normalized and must
// not belong to another client.
func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	rut := NormalizarRUT(derefTrim(req.RUT))
	email := NormalizarEmail(derefTrim(req.Email))

	if rut != "" {
		existe, err := s.repo.ExistsRUT(ctx, rut)
		if err != nil {
			return nil, apperror.Internal("cliente.crear", "cliente", err)
		}
		if existe {
			return nil, apperror.Conflictf("Ya existe un cliente con RUT %s", rut)
		}
	}
	if email != "" {
		existe, err := s.repo.ExistsEmail(ctx, email)
		if err != nil {
			return nil, apperror.Internal("cliente.crear", "cliente", err)
		}
		if existe {
			return nil, apperror.Conflictf("Ya existe un cliente con email %s", email)
		}
	}

	c := &model.Cliente{
		Nombre:    strings.TrimSpace(req.Nombre),
		RUT:       optionalString(rut),
		Email:     optionalString(email),
		Telefono:  optionalString(derefTrim(req.Telefono)),
		Direccion: optionalString(derefTrim(req.Direccion)),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("Ya existe un cliente con ese RUT o email")
		}
		return nil, apperror.Internal("cliente.crear", "cliente", err)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("cliente.listar", "cliente", err)
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	resp := &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		RUT:       c.RUT,
		Email:     c.Email,
		Telefono:  c.Telefono,
		Direccion: c.Direccion,
		Vehiculos: make([]dto.VehiculoResponse, 0, len(c.Vehiculos)),
	}
	for _, v := range c.Vehiculos {
		resp.Vehiculos = append(resp.Vehiculos, dto.VehiculoResponse{
			ID:          v.ID.String(),
			Patente:     v.Patente,
			Marca:       v.Marca,
			Modelo:      v.Modelo,
			Anio:        v.Anio,
			Kilometraje: v.Kilometraje,
		})
	}
	return resp
}
