package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdenTrabajoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenTrabajo, error)
	List(ctx context.Context) ([]model.OrdenTrabajo, error)
	// ExistsNumero reports whether another order already uses numero.
	ExistsNumero(ctx context.Context, numero int, excluir *uuid.UUID) (bool, error)
	UpdateHeader(ctx context.Context, id uuid.UUID, cambios map[string]any) error

	CreateTx(tx *gorm.DB, o *model.OrdenTrabajo) error
	ExistsNumeroTx(tx *gorm.DB, numero int) (bool, error)

	DB() *gorm.DB
}

type ordenTrabajoRepo struct{ db *gorm.DB }

func NewOrdenTrabajoRepository(db *gorm.DB) OrdenTrabajoRepository {
	return &ordenTrabajoRepo{db: db}
}

func conCliente(db *gorm.DB) *gorm.DB {
	return db.Preload("Cliente").
		Preload("Detalles.Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *ordenTrabajoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenTrabajo, error) {
	var o model.OrdenTrabajo
	err := conCliente(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *ordenTrabajoRepo) List(ctx context.Context) ([]model.OrdenTrabajo, error) {
	var ordenes []model.OrdenTrabajo
	err := conCliente(r.db.WithContext(ctx)).Order("fecha_ingreso DESC").Find(&ordenes).Error
	return ordenes, err
}

func (r *ordenTrabajoRepo) ExistsNumero(ctx context.Context, numero int, excluir *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.OrdenTrabajo{}).Where("numero_orden_papel = ?", numero)
	if excluir != nil {
		q = q.Where("id <> ?", *excluir)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *ordenTrabajoRepo) UpdateHeader(ctx context.Context, id uuid.UUID, cambios map[string]any) error {
	if len(cambios) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.OrdenTrabajo{}).Where("id = ?", id).Updates(cambios).Error
}

func (r *ordenTrabajoRepo) CreateTx(tx *gorm.DB, o *model.OrdenTrabajo) error {
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	if len(o.Detalles) == 0 {
		return nil
	}
	for i := range o.Detalles {
		o.Detalles[i].OrdenTrabajoID = o.ID
	}
	return tx.Omit(clause.Associations).Create(&o.Detalles).Error
}

func (r *ordenTrabajoRepo) ExistsNumeroTx(tx *gorm.DB, numero int) (bool, error) {
	var n int64
	err := tx.Model(&model.OrdenTrabajo{}).Where("numero_orden_papel = ?", numero).Count(&n).Error
	return n > 0, err
}

func (r *ordenTrabajoRepo) DB() *gorm.DB { return r.db }
