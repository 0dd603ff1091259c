package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolAdmin  = "ADMIN"
	RolWorker = "WORKER"
)

// Usuario logs in with its normalized RUT.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RUT          string    `gorm:"column:rut;uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(10);not null;default:'WORKER'"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
