package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteUpsert carries already normalized client data for find-or-create.
type ClienteUpsert struct {
	Nombre   string
	RUT      string
	Email    string
	Telefono string
}

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context) ([]model.Cliente, error)
	ExistsRUT(ctx context.Context, rut string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)

	// UpsertTx finds the client by rut, then by email, else creates it.
	// An existing client gets its telefono updated when one is supplied.
	UpsertTx(tx *gorm.DB, in ClienteUpsert) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Preload("Vehiculos").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).Preload("Vehiculos").Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) ExistsRUT(ctx context.Context, rut string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("rut = ?", rut).Count(&n).Error
	return n > 0, err
}

func (r *clienteRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *clienteRepo) UpsertTx(tx *gorm.DB, in ClienteUpsert) (*model.Cliente, error) {
	c, _, err := UpsertByNaturalKey(tx,
		[]NaturalKey{{Column: "rut", Value: in.RUT}, {Column: "email", Value: in.Email}},
		func() *model.Cliente {
			return &model.Cliente{
				Nombre:   in.Nombre,
				RUT:      optional(in.RUT),
				Email:    optional(in.Email),
				Telefono: optional(in.Telefono),
			}
		},
		func(db *gorm.DB, c *model.Cliente) error {
			if in.Telefono == "" {
				return nil
			}
			c.Telefono = &in.Telefono
			return db.Model(c).Update("telefono", in.Telefono).Error
		},
	)
	return c, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
