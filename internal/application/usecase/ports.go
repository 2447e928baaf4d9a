package usecase

import (
	"context"

	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// VentaTxRunner ejecuta un callback con repos de catálogo y ventas atados a una
// misma transacción. El descuento de stock y el alta de la venta deben ser
// atómicos: o se escriben ambos o ninguno. El cuerpo puede re-ejecutarse ante
// conflictos de serialización, así que debe ser función pura de sus lecturas.
type VentaTxRunner interface {
	RunVenta(ctx context.Context, fn func(
		productoRepo repository.ProductoRepository,
		ventaRepo repository.VentaRepository,
	) error) error
}
