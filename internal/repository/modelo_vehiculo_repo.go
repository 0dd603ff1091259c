package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModeloVehiculoRepository interface {
	Create(ctx context.Context, m *model.ModeloVehiculo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ModeloVehiculo, error)
	FindByClave(ctx context.Context, marca, modelo string, anio *int) (*model.ModeloVehiculo, error)
	List(ctx context.Context) ([]model.ModeloVehiculo, error)
	Buscar(ctx context.Context, q string, limit int) ([]model.ModeloVehiculo, error)
	Marcas(ctx context.Context) ([]string, error)
	ModelosPorMarca(ctx context.Context, marca string) ([]string, error)
	Update(ctx context.Context, m *model.ModeloVehiculo) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.ModeloVehiculo, error)
}

type modeloVehiculoRepo struct{ db *gorm.DB }

func NewModeloVehiculoRepository(db *gorm.DB) ModeloVehiculoRepository {
	return &modeloVehiculoRepo{db: db}
}

func (r *modeloVehiculoRepo) Create(ctx context.Context, m *model.ModeloVehiculo) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *modeloVehiculoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ModeloVehiculo, error) {
	var m model.ModeloVehiculo
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

// FindByClave matches (marca, modelo, anio) case-insensitively; a nil anio
// matches only rows without a year.
func (r *modeloVehiculoRepo) FindByClave(ctx context.Context, marca, modelo string, anio *int) (*model.ModeloVehiculo, error) {
	q := r.db.WithContext(ctx).
		Where("LOWER(marca) = LOWER(?) AND LOWER(modelo) = LOWER(?)", marca, modelo)
	if anio == nil {
		q = q.Where("anio IS NULL")
	} else {
		q = q.Where("anio = ?", *anio)
	}
	var m model.ModeloVehiculo
	err := q.First(&m).Error
	return &m, err
}

func (r *modeloVehiculoRepo) List(ctx context.Context) ([]model.ModeloVehiculo, error) {
	var list []model.ModeloVehiculo
	err := r.db.WithContext(ctx).
		Order("marca ASC").Order("modelo ASC").Order("anio DESC").
		Find(&list).Error
	return list, err
}

func (r *modeloVehiculoRepo) Buscar(ctx context.Context, q string, limit int) ([]model.ModeloVehiculo, error) {
	pattern := "%" + q + "%"
	var list []model.ModeloVehiculo
	err := r.db.WithContext(ctx).
		Where("LOWER(marca) LIKE LOWER(?) OR LOWER(modelo) LIKE LOWER(?)", pattern, pattern).
		Order("marca ASC").Order("modelo ASC").Order("anio DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *modeloVehiculoRepo) Marcas(ctx context.Context) ([]string, error) {
	var marcas []string
	err := r.db.WithContext(ctx).Model(&model.ModeloVehiculo{}).
		Distinct("marca").Order("marca ASC").Pluck("marca", &marcas).Error
	return marcas, err
}

func (r *modeloVehiculoRepo) ModelosPorMarca(ctx context.Context, marca string) ([]string, error) {
	var modelos []string
	err := r.db.WithContext(ctx).Model(&model.ModeloVehiculo{}).
		Where("LOWER(marca) = LOWER(?)", marca).
		Distinct("modelo").Order("modelo ASC").Pluck("modelo", &modelos).Error
	return modelos, err
}

func (r *modeloVehiculoRepo) Update(ctx context.Context, m *model.ModeloVehiculo) error {
	return r.db.WithContext(ctx).Model(m).Select("marca", "modelo", "anio", "motor").Updates(m).Error
}

func (r *modeloVehiculoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM producto_modelos_vehiculo WHERE modelo_vehiculo_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.ModeloVehiculo{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *modeloVehiculoRepo) FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.ModeloVehiculo, error) {
	var list []model.ModeloVehiculo
	if len(ids) == 0 {
		return list, nil
	}
	err := tx.Where("id IN ?", ids).Find(&list).Error
	return list, err
}
