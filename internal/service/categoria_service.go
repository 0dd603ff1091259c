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

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	// Eliminar removes the category; its products stay, uncategorized.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
	}
}

func categoriaDuplicada(nombre string) error {
	return apperror.Conflictf("Ya existe una categoría con nombre %s", nombre)
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)

	// Check for duplicate name
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !isNotFound(err) {
		return dto.CategoriaResponse{}, apperror.Internal("categoria.crear", "categoria", err)
	}
	if existing != nil {
		return dto.CategoriaResponse{}, categoriaDuplicada(nombre)
	}

	c := &model.Categoria{
		Nombre:      nombre,
		Descripcion: optionalString(derefTrim(req.Descripcion)),
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		if isDuplicate(err) {
			return dto.CategoriaResponse{}, categoriaDuplicada(nombre)
		}
		return dto.CategoriaResponse{}, apperror.Internal("categoria.crear", "categoria", err)
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, apperror.Internal("categoria.listar", "categoria", err)
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.CategoriaResponse, error) {
	c, err := s.buscar(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.buscar(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, err
	}

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		// Check uniqueness if name is changing
		if !strings.EqualFold(nombre, c.Nombre) {
			existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
			if err != nil && !isNotFound(err) {
				return dto.CategoriaResponse{}, apperror.Internal("categoria.actualizar", "categoria", err)
			}
			if existing != nil && existing.ID != id {
				return dto.CategoriaResponse{}, categoriaDuplicada(nombre)
			}
		}
		c.Nombre = nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = optionalString(strings.TrimSpace(*req.Descripcion))
	}

	if err := s.repo.Actualizar(ctx, c); err != nil {
		if isDuplicate(err) {
			return dto.CategoriaResponse{}, categoriaDuplicada(c.Nombre)
		}
		return dto.CategoriaResponse{}, apperror.Internal("categoria.actualizar", "categoria", err)
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Eliminar(ctx, id); err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Categoría no encontrada")
		}
		return apperror.Internal("categoria.eliminar", "categoria", err)
	}
	return nil
}

func (s *categoriaService) buscar(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Categoría no encontrada")
		}
		return nil, apperror.Internal("categoria.obtener", "categoria", err)
	}
	return c, nil
}
