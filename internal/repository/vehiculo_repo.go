package repository

import (
	"context"

	"taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehiculoUpsert carries a normalized plate and the data reported on the ticket.
type VehiculoUpsert struct {
	Patente     string
	Marca       string
	Modelo      string
	Anio        *int
	Kilometraje *int
	ClienteID   uuid.UUID
}

type VehiculoRepository interface {
	FindByPatente(ctx context.Context, patente string) (*model.Vehiculo, error)

	// UpsertTx finds the vehicle by plate or creates it for the client. An
	// unowned vehicle is assigned to the client; one owned by somebody else
	// is rejected with the error returned by onAjeno.
	UpsertTx(tx *gorm.DB, in VehiculoUpsert, onAjeno func(duenio *model.Cliente) error) (*model.Vehiculo, error)
}

type vehiculoRepo struct{ db *gorm.DB }

func NewVehiculoRepository(db *gorm.DB) VehiculoRepository { return &vehiculoRepo{db: db} }

func (r *vehiculoRepo) FindByPatente(ctx context.Context, patente string) (*model.Vehiculo, error) {
	var v model.Vehiculo
	err := r.db.WithContext(ctx).Preload("Cliente").Where("patente = ?", patente).First(&v).Error
	return &v, err
}

func (r *vehiculoRepo) UpsertTx(tx *gorm.DB, in VehiculoUpsert, onAjeno func(duenio *model.Cliente) error) (*model.Vehiculo, error) {
	v, _, err := UpsertByNaturalKey(tx,
		[]NaturalKey{{Column: "patente", Value: in.Patente}},
		func() *model.Vehiculo {
			clienteID := in.ClienteID
			return &model.Vehiculo{
				Patente:     in.Patente,
				Marca:       in.Marca,
				Modelo:      in.Modelo,
				Anio:        in.Anio,
				Kilometraje: in.Kilometraje,
				ClienteID:   &clienteID,
			}
		},
		func(db *gorm.DB, v *model.Vehiculo) error {
			if v.ClienteID != nil && *v.ClienteID != in.ClienteID {
				var duenio model.Cliente
				if err := db.First(&duenio, "id = ?", *v.ClienteID).Error; err != nil {
					return err
				}
				return onAjeno(&duenio)
			}
			cambios := map[string]any{}
			if v.ClienteID == nil {
				clienteID := in.ClienteID
				v.ClienteID = &clienteID
				cambios["cliente_id"] = clienteID
			}
			if in.Kilometraje != nil {
				v.Kilometraje = in.Kilometraje
				cambios["kilometraje"] = *in.Kilometraje
			}
			if len(cambios) == 0 {
				return nil
			}
			return db.Model(v).Updates(cambios).Error
		},
	)
	return v, err
}
