package repository

import (
	"context"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// VentaRepository define el puerto de persistencia para Venta (DIP).
type VentaRepository interface {
	// Create persiste la venta con todos sus renglones.
	Create(ctx context.Context, v *entity.Venta) error
	GetByID(ctx context.Context, id string) (*entity.Venta, error)
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Venta, error)
}
