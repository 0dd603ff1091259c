package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoFilter narrows product listings.
type ProductoFilter struct {
	CategoriaID *uuid.UUID
	Nombre      string
}

// ProductoRepository defines the data access contract for products.
// stock_actual is only written through AjustarStockTx and RevertirStockTx.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
	// ExistsSKU also sees soft-deleted products, which still hold their SKU.
	ExistsSKU(ctx context.Context, sku string) (bool, error)
	List(ctx context.Context, filter ProductoFilter) ([]model.Producto, error)
	ListEliminados(ctx context.Context) ([]model.Producto, error)
	ListStockBajo(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*model.Producto, error)

	// Used inside transactions; callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	FindBySKUTx(tx *gorm.DB, sku string) (*model.Producto, error)
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	FindStockBajoTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error)
	AppendModelosTx(tx *gorm.DB, p *model.Producto, modelos []model.ModeloVehiculo) error

	// AjustarStockTx applies delta only if the result stays >= 0 and reports
	// whether the row was updated.
	AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error)
	// RevertirStockTx subtracts cantidad, clamping the result at zero.
	RevertirStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit("ModelosCompatibles.*").Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Preload("ModelosCompatibles").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productoRepo) ExistsSKU(ctx context.Context, sku string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Producto{}).Where("sku = ?", sku).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) List(ctx context.Context, filter ProductoFilter) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Model(&model.Producto{}).Preload("Categoria")
	if filter.CategoriaID != nil {
		q = q.Where("categoria_id = ?", *filter.CategoriaID)
	}
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	var productos []model.Producto
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListEliminados(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Categoria").
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListStockBajo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Where("stock_actual <= stock_minimo").
		Order("stock_actual ASC").
		Order("nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.UpdateTx(r.db.WithContext(ctx), p)
}

// UpdateTx writes the catalog columns only. Stock is never touched here.
func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Model(p).
		Select("nombre", "marca", "calidad", "precio_venta", "stock_minimo", "categoria_id").
		Updates(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Producto{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) Restore(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	db := r.db.WithContext(ctx)
	if err := db.Unscoped().Model(&model.Producto{}).Where("id = ?", id).
		Update("deleted_at", nil).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Unscoped().First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindBySKUTx(tx *gorm.DB, sku string) (*model.Producto, error) {
	var p model.Producto
	err := tx.Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindStockBajoTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := tx.Where("id IN ? AND stock_actual <= stock_minimo", ids).
		Order("stock_actual ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) AppendModelosTx(tx *gorm.DB, p *model.Producto, modelos []model.ModeloVehiculo) error {
	if len(modelos) == 0 {
		return nil
	}
	return tx.Model(p).Association("ModelosCompatibles").Append(modelos)
}

func (r *productoRepo) AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual + ? >= 0", id, delta).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	return res.RowsAffected == 1, res.Error
}

func (r *productoRepo) RevertirStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Unscoped().Model(&model.Producto{}).
		Where("id = ?", id).
		Update("stock_actual", gorm.Expr(
			"CASE WHEN stock_actual >= ? THEN stock_actual - ? ELSE 0 END", cantidad, cantidad)).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
