package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// ProductoRepository define el puerto de persistencia para Producto (DIP).
type ProductoRepository interface {
	Create(ctx context.Context, p *entity.Producto) error
	GetByID(ctx context.Context, id string) (*entity.Producto, error)
	// GetForUpdate bloquea la fila del producto; usar solo dentro de una transacción
	// (descuento de stock al registrar una venta).
	GetForUpdate(ctx context.Context, id string) (*entity.Producto, error)
	Update(ctx context.Context, p *entity.Producto) error
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Producto, error)
	Delete(ctx context.Context, id string) error
}
