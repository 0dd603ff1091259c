package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
)

const limiteBusquedaModelos = 20

type ModeloVehiculoService interface {
	Crear(ctx context.Context, req dto.CrearModeloVehiculoRequest) (*dto.ModeloVehiculoResponse, error)
	Listar(ctx context.Context) ([]dto.ModeloVehiculoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ModeloVehiculoResponse, error)
	Buscar(ctx context.Context, q string) ([]dto.ModeloVehiculoResponse, error)
	Marcas(ctx context.Context) ([]string, error)
	ModelosPorMarca(ctx context.Context, marca string) ([]string, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarModeloVehiculoRequest) (*dto.ModeloVehiculoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type modeloVehiculoService struct {
	repo repository.ModeloVehiculoRepository
}

func NewModeloVehiculoService(repo repository.ModeloVehiculoRepository) ModeloVehiculoService {
	return &modeloVehiculoService{repo: repo}
}

func modeloDuplicado(marca, modelo string, anio *int) error {
	if anio == nil {
		return apperror.Conflictf("Ya existe el modelo %s %s", marca, modelo)
	}
	return apperror.Conflictf("Ya existe el modelo %s %s %d", marca, modelo, *anio)
}

// verificarClave fails when another model already has (marca, modelo, anio).
func (s *modeloVehiculoService) verificarClave(ctx context.Context, marca, modelo string, anio *int, excluir uuid.UUID) error {
	existente, err := s.repo.FindByClave(ctx, marca, modelo, anio)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return apperror.Internal("modelo_vehiculo.clave", "modelo_vehiculo", err)
	}
	if existente.ID != excluir {
		return modeloDuplicado(marca, modelo, anio)
	}
	return nil
}

func (s *modeloVehiculoService) Crear(ctx context.Context, req dto.CrearModeloVehiculoRequest) (*dto.ModeloVehiculoResponse, error) {
	m := &model.ModeloVehiculo{
		Marca:  strings.TrimSpace(req.Marca),
		Modelo: strings.TrimSpace(req.Modelo),
		Anio:   req.Anio,
		Motor:  optionalString(derefTrim(req.Motor)),
	}
	if err := s.verificarClave(ctx, m.Marca, m.Modelo, m.Anio, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if isDuplicate(err) {
			return nil, modeloDuplicado(m.Marca, m.Modelo, m.Anio)
		}
		return nil, apperror.Internal("modelo_vehiculo.crear", "modelo_vehiculo", err)
	}
	resp := modeloToResponse(*m)
	return &resp, nil
}

func (s *modeloVehiculoService) Listar(ctx context.Context) ([]dto.ModeloVehiculoResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("modelo_vehiculo.listar", "modelo_vehiculo", err)
	}
	return modelosToResponse(list), nil
}

func (s *modeloVehiculoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ModeloVehiculoResponse, error) {
	m, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := modeloToResponse(*m)
	return &resp, nil
}

// Buscar answers an empty list for queries shorter than two characters.
func (s *modeloVehiculoService) Buscar(ctx context.Context, q string) ([]dto.ModeloVehiculoResponse, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < 2 {
		return []dto.ModeloVehiculoResponse{}, nil
	}
	list, err := s.repo.Buscar(ctx, q, limiteBusquedaModelos)
	if err != nil {
		return nil, apperror.Internal("modelo_vehiculo.buscar", "modelo_vehiculo", err)
	}
	return modelosToResponse(list), nil
}

func (s *modeloVehiculoService) Marcas(ctx context.Context) ([]string, error) {
	marcas, err := s.repo.Marcas(ctx)
	if err != nil {
		return nil, apperror.Internal("modelo_vehiculo.marcas", "modelo_vehiculo", err)
	}
	if marcas == nil {
		marcas = []string{}
	}
	return marcas, nil
}

func (s *modeloVehiculoService) ModelosPorMarca(ctx context.Context, marca string) ([]string, error) {
	modelos, err := s.repo.ModelosPorMarca(ctx, strings.TrimSpace(marca))
	if err != nil {
		return nil, apperror.Internal("modelo_vehiculo.modelos", "modelo_vehiculo", err)
	}
	if modelos == nil {
		modelos = []string{}
	}
	return modelos, nil
}

func (s *modeloVehiculoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarModeloVehiculoRequest) (*dto.ModeloVehiculoResponse, error) {
	m, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Marca != nil {
		m.Marca = strings.TrimSpace(*req.Marca)
	}
	if req.Modelo != nil {
		m.Modelo = strings.TrimSpace(*req.Modelo)
	}
	if req.Anio != nil {
		m.Anio = req.Anio
	}
	if req.Motor != nil {
		m.Motor = optionalString(strings.TrimSpace(*req.Motor))
	}
	if err := s.verificarClave(ctx, m.Marca, m.Modelo, m.Anio, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if isDuplicate(err) {
			return nil, modeloDuplicado(m.Marca, m.Modelo, m.Anio)
		}
		return nil, apperror.Internal("modelo_vehiculo.actualizar", "modelo_vehiculo", err)
	}
	resp := modeloToResponse(*m)
	return &resp, nil
}

func (s *modeloVehiculoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Modelo de vehículo no encontrado")
		}
		return apperror.Internal("modelo_vehiculo.eliminar", "modelo_vehiculo", err)
	}
	return nil
}

func (s *modeloVehiculoService) buscar(ctx context.Context, id uuid.UUID) (*model.ModeloVehiculo, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Modelo de vehículo no encontrado")
		}
		return nil, apperror.Internal("modelo_vehiculo.obtener", "modelo_vehiculo", err)
	}
	return m, nil
}

func modeloToResponse(m model.ModeloVehiculo) dto.ModeloVehiculoResponse {
	return dto.ModeloVehiculoResponse{
		ID:     m.ID.String(),
		Marca:  m.Marca,
		Modelo: m.Modelo,
		Anio:   m.Anio,
		Motor:  m.Motor,
	}
}

func modelosToResponse(list []model.ModeloVehiculo) []dto.ModeloVehiculoResponse {
	out := make([]dto.ModeloVehiculoResponse, 0, len(list))
	for _, m := range list {
		out = append(out, modeloToResponse(m))
	}
	return out
}
