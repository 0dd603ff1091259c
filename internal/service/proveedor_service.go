package service

import (
	"context"
	"strings"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	// Eliminar refuses providers that still have purchases.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func proveedorDuplicado(nombre string) error {
	return apperror.Conflictf("Ya existe un proveedor con nombre %s", nombre)
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if _, err := s.repo.FindByNombre(ctx, nombre); err == nil {
		return nil, proveedorDuplicado(nombre)
	} else if !isNotFound(err) {
		return nil, apperror.Internal("proveedor.crear", "proveedor", err)
	}

	p := &model.Proveedor{
		Nombre:    nombre,
		RUT:       optionalString(NormalizarRUT(derefTrim(req.RUT))),
		Telefono:  optionalString(derefTrim(req.Telefono)),
		Email:     optionalString(NormalizarEmail(derefTrim(req.Email))),
		Direccion: optionalString(derefTrim(req.Direccion)),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if isDuplicate(err) {
			return nil, proveedorDuplicado(nombre)
		}
		return nil, apperror.Internal("proveedor.crear", "proveedor", err)
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("proveedor.listar", "proveedor", err)
	}
	out := make([]dto.ProveedorResponse, 0, len(list))
	for i := range list {
		out = append(out, *proveedorToResponse(&list[i]))
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre != p.Nombre {
			otro, err := s.repo.FindByNombre(ctx, nombre)
			if err == nil && otro.ID != id {
				return nil, proveedorDuplicado(nombre)
			}
			if err != nil && !isNotFound(err) {
				return nil, apperror.Internal("proveedor.actualizar", "proveedor", err)
			}
		}
		p.Nombre = nombre
	}
	if req.RUT != nil {
		p.RUT = optionalString(NormalizarRUT(*req.RUT))
	}
	if req.Telefono != nil {
		p.Telefono = optionalString(strings.TrimSpace(*req.Telefono))
	}
	if req.Email != nil {
		p.Email = optionalString(NormalizarEmail(*req.Email))
	}
	if req.Direccion != nil {
		p.Direccion = optionalString(strings.TrimSpace(*req.Direccion))
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if isDuplicate(err) {
			return nil, proveedorDuplicado(p.Nombre)
		}
		return nil, apperror.Internal("proveedor.actualizar", "proveedor", err)
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountCompras(ctx, id)
	if err != nil {
		return apperror.Internal("proveedor.eliminar", "compra", err)
	}
	if n > 0 {
		return apperror.Conflictf("El proveedor tiene %d compras registradas y no puede eliminarse", n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Proveedor no encontrado")
		}
		return apperror.Internal("proveedor.eliminar", "proveedor", err)
	}
	return nil
}

func (s *proveedorService) buscar(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Proveedor no encontrado")
		}
		return nil, apperror.Internal("proveedor.obtener", "proveedor", err)
	}
	return p, nil
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		RUT:       p.RUT,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
	}
}
