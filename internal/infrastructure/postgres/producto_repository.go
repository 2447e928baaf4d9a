package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

// ProductoRepo implementación de ProductoRepository sobre PostgreSQL
// (usable con pool o tx vía Querier).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador de catálogo.
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

const productoColumns = `id, empresa_id, nombre, codigo, precio, costo, stock, imagen_url, created_at, updated_at`

// Create persiste un producto. Devuelve ErrDuplicate si el código ya existe en la empresa.
func (r *ProductoRepo) Create(ctx context.Context, p *entity.Producto) error {
	query := `
		INSERT INTO productos (` + productoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.EmpresaID, p.Nombre, p.Codigo, p.Precio, p.Costo, p.Stock,
		p.ImagenURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert producto: %w", err)
	}
	return nil
}

// GetByID obtiene un producto. Devuelve nil, nil si no existe.
func (r *ProductoRepo) GetByID(ctx context.Context, id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetForUpdate obtiene el producto bloqueando su fila (SELECT FOR UPDATE).
func (r *ProductoRepo) GetForUpdate(ctx context.Context, id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *ProductoRepo) scanOne(ctx context.Context, query, id string) (*entity.Producto, error) {
	var p entity.Producto
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.EmpresaID, &p.Nombre, &p.Codigo, &p.Precio, &p.Costo, &p.Stock,
		&p.ImagenURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return &p, nil
}

// Update actualiza los campos editables del producto.
func (r *ProductoRepo) Update(ctx context.Context, p *entity.Producto) error {
	query := `
		UPDATE productos
		SET nombre = $2, codigo = $3, precio = $4, costo = $5, stock = $6, imagen_url = $7, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Nombre, p.Codigo, p.Precio, p.Costo, p.Stock, p.ImagenURL)
	if err != nil {
		return fmt.Errorf("update producto: %w", err)
	}
	return nil
}

// UpdateStock escribe el stock; llamar con la fila bloqueada al descontar ventas.
func (r *ProductoRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE productos SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// ListByEmpresa devuelve el catálogo de la empresa con paginación.
func (r *ProductoRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Producto, error) {
	query := `
		SELECT ` + productoColumns + ` FROM productos
		WHERE empresa_id = $1 ORDER BY nombre LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()

	var list []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(&p.ID, &p.EmpresaID, &p.Nombre, &p.Codigo, &p.Precio, &p.Costo,
			&p.Stock, &p.ImagenURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID.
func (r *ProductoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete producto: %w", err)
	}
	return nil
}
