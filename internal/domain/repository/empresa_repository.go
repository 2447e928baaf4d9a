package repository

import (
	"context"
	"time"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// EmpresaRepository define el puerto de persistencia para Empresa (DIP).
// La implementación vive en infrastructure.
type EmpresaRepository interface {
	Create(ctx context.Context, empresa *entity.Empresa) error
	GetByID(ctx context.Context, id string) (*entity.Empresa, error)
	// GetForUpdate lee la empresa bloqueando su fila; solo tiene sentido dentro
	// de una transacción. Serializa todas las mutaciones de cupos por empresa.
	GetForUpdate(ctx context.Context, id string) (*entity.Empresa, error)
	SetSuspended(ctx context.Context, id string, suspended bool, at time.Time) error
	UpdateDevicesCount(ctx context.Context, id string, count int) error
	Update(ctx context.Context, empresa *entity.Empresa) error
}
