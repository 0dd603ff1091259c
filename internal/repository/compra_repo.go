package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompraRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context) ([]model.Compra, error)

	CreateTx(tx *gorm.DB, c *model.Compra) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error)
	// DeleteTx removes the purchase together with its details.
	DeleteTx(tx *gorm.DB, c *model.Compra) error

	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

// conDetalles preloads what a purchase response shows. Products are loaded
// unscoped so that history survives a product soft delete.
func conDetalles(db *gorm.DB) *gorm.DB {
	return db.Preload("Proveedor").
		Preload("Detalles.Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := conDetalles(r.db.WithContext(ctx)).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *compraRepo) List(ctx context.Context) ([]model.Compra, error) {
	var compras []model.Compra
	err := conDetalles(r.db.WithContext(ctx)).Order("fecha DESC").Find(&compras).Error
	return compras, err
}

func (r *compraRepo) CreateTx(tx *gorm.DB, c *model.Compra) error {
	if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
		return err
	}
	if len(c.Detalles) == 0 {
		return nil
	}
	for i := range c.Detalles {
		c.Detalles[i].CompraID = c.ID
	}
	return tx.Omit(clause.Associations).Create(&c.Detalles).Error
}

func (r *compraRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := tx.Preload("Detalles.Producto", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *compraRepo) DeleteTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Select("Detalles").Delete(c).Error
}

func (r *compraRepo) DB() *gorm.DB { return r.db }
