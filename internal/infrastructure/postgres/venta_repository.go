package postgres

import (
	"context"
	"fmt"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

var _ repository.VentaRepository = (*VentaRepo)(nil)

// VentaRepo implementación de VentaRepository sobre PostgreSQL
// (usable con pool o tx vía Querier).
type VentaRepo struct {
	q Querier
}

// NewVentaRepository construye el adaptador de ventas.
func NewVentaRepository(q Querier) *VentaRepo {
	return &VentaRepo{q: q}
}

// Create persiste la venta y sus renglones. Debe invocarse dentro de la misma
// transacción que descuenta el stock.
func (r *VentaRepo) Create(ctx context.Context, v *entity.Venta) error {
	query := `
		INSERT INTO ventas (id, empresa_id, user_id, cliente, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, v.ID, v.EmpresaID, v.UserID, v.Cliente, v.Total, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert venta: %w", err)
	}
	for _, it := range v.Items {
		itemQuery := `
			INSERT INTO venta_items (id, venta_id, producto_id, nombre, cantidad, precio, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.VentaID, it.ProductoID, it.Nombre, it.Cantidad, it.Precio, it.Subtotal)
		if err != nil {
			return fmt.Errorf("insert venta item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus renglones. Devuelve nil, nil si no existe.
func (r *VentaRepo) GetByID(ctx context.Context, id string) (*entity.Venta, error) {
	query := `
		SELECT id, empresa_id, user_id, cliente, total, created_at
		FROM ventas WHERE id = $1`
	var v entity.Venta
	err := r.q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.EmpresaID, &v.UserID, &v.Cliente, &v.Total, &v.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	items, err := r.itemsFor(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

// ListByEmpresa devuelve ventas de la empresa, más recientes primero (sin renglones).
func (r *VentaRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Venta, error) {
	query := `
		SELECT id, empresa_id, user_id, cliente, total, created_at
		FROM ventas WHERE empresa_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ventas: %w", err)
	}
	defer rows.Close()

	var list []*entity.Venta
	for rows.Next() {
		var v entity.Venta
		if err := rows.Scan(&v.ID, &v.EmpresaID, &v.UserID, &v.Cliente, &v.Total, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

func (r *VentaRepo) itemsFor(ctx context.Context, ventaID string) ([]entity.VentaItem, error) {
	query := `
		SELECT id, venta_id, producto_id, nombre, cantidad, precio, subtotal
		FROM venta_items WHERE venta_id = $1`
	rows, err := r.q.Query(ctx, query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("list venta items: %w", err)
	}
	defer rows.Close()

	var items []entity.VentaItem
	for rows.Next() {
		var it entity.VentaItem
		if err := rows.Scan(&it.ID, &it.VentaID, &it.ProductoID, &it.Nombre, &it.Cantidad, &it.Precio, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan venta item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
