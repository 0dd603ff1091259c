package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaMesonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.VentaMeson, error)
	// List returns movements newest first; an empty tipo lists every type.
	List(ctx context.Context, tipo model.TipoMovimiento) ([]model.VentaMeson, error)

	CreateTx(tx *gorm.DB, v *model.VentaMeson) error

	DB() *gorm.DB
}

type ventaMesonRepo struct{ db *gorm.DB }

func NewVentaMesonRepository(db *gorm.DB) VentaMesonRepository { return &ventaMesonRepo{db: db} }

func (r *ventaMesonRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VentaMeson, error) {
	var v model.VentaMeson
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaMesonRepo) List(ctx context.Context, tipo model.TipoMovimiento) ([]model.VentaMeson, error) {
	q := r.db.WithContext(ctx).
		Preload("Detalles.Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	if tipo != "" {
		q = q.Where("tipo_movimiento = ?", tipo)
	}
	var ventas []model.VentaMeson
	err := q.Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaMesonRepo) CreateTx(tx *gorm.DB, v *model.VentaMeson) error {
	if err := tx.Omit(clause.Associations).Create(v).Error; err != nil {
		return err
	}
	if len(v.Detalles) == 0 {
		return nil
	}
	for i := range v.Detalles {
		v.Detalles[i].VentaMesonID = v.ID
	}
	return tx.Omit(clause.Associations).Create(&v.Detalles).Error
}

func (r *ventaMesonRepo) DB() *gorm.DB { return r.db }
