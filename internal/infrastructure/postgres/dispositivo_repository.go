package postgres

import (
	"context"
	"fmt"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

var _ repository.DispositivoRepository = (*DispositivoRepo)(nil)

// DispositivoRepo implementación de DispositivoRepository sobre PostgreSQL
// (usable con pool o tx vía Querier).
type DispositivoRepo struct {
	q Querier
}

// NewDispositivoRepository construye el adaptador de cupos de dispositivo.
func NewDispositivoRepository(q Querier) *DispositivoRepo {
	return &DispositivoRepo{q: q}
}

// Get obtiene el cupo de (empresaID, deviceID). Devuelve nil, nil si no ocupa cupo.
func (r *DispositivoRepo) Get(ctx context.Context, empresaID, deviceID string) (*entity.Dispositivo, error) {
	query := `
		SELECT empresa_id, device_id, uid, user_email, user_agent, created_at, last_seen
		FROM dispositivos WHERE empresa_id = $1 AND device_id = $2`
	var d entity.Dispositivo
	err := r.q.QueryRow(ctx, query, empresaID, deviceID).Scan(
		&d.EmpresaID, &d.DeviceID, &d.UID, &d.UserEmail, &d.UserAgent,
		&d.CreatedAt, &d.LastSeen,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispositivo: %w", err)
	}
	return &d, nil
}

// Create inserta un cupo nuevo (createdAt = lastSeen en el alta).
func (r *DispositivoRepo) Create(ctx context.Context, d *entity.Dispositivo) error {
	query := `
		INSERT INTO dispositivos (empresa_id, device_id, uid, user_email, user_agent, created_at, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		d.EmpresaID, d.DeviceID, d.UID, d.UserEmail, d.UserAgent, d.CreatedAt, d.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("insert dispositivo: %w", err)
	}
	return nil
}

// Touch refresca lastSeen y los datos de sesión de un cupo existente; createdAt no se toca.
func (r *DispositivoRepo) Touch(ctx context.Context, d *entity.Dispositivo) error {
	query := `
		UPDATE dispositivos
		SET uid = $3, user_email = $4, user_agent = $5, last_seen = $6
		WHERE empresa_id = $1 AND device_id = $2`
	_, err := r.q.Exec(ctx, query,
		d.EmpresaID, d.DeviceID, d.UID, d.UserEmail, d.UserAgent, d.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("touch dispositivo: %w", err)
	}
	return nil
}

// Delete libera el cupo; borrar uno inexistente es no-op.
func (r *DispositivoRepo) Delete(ctx context.Context, empresaID, deviceID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM dispositivos WHERE empresa_id = $1 AND device_id = $2`,
		empresaID, deviceID,
	)
	if err != nil {
		return fmt.Errorf("delete dispositivo: %w", err)
	}
	return nil
}

// ListByEmpresa devuelve los cupos ocupados de la empresa, más recientes primero.
func (r *DispositivoRepo) ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Dispositivo, error) {
	query := `
		SELECT empresa_id, device_id, uid, user_email, user_agent, created_at, last_seen
		FROM dispositivos WHERE empresa_id = $1 ORDER BY last_seen DESC`
	rows, err := r.q.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("list dispositivos: %w", err)
	}
	defer rows.Close()

	var list []*entity.Dispositivo
	for rows.Next() {
		var d entity.Dispositivo
		if err := rows.Scan(&d.EmpresaID, &d.DeviceID, &d.UID, &d.UserEmail, &d.UserAgent, &d.CreatedAt, &d.LastSeen); err != nil {
			return nil, fmt.Errorf("scan dispositivo: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// CountByEmpresa cuenta los cupos ocupados (variante por conteo directo de filas).
func (r *DispositivoRepo) CountByEmpresa(ctx context.Context, empresaID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM dispositivos WHERE empresa_id = $1`, empresaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispositivos: %w", err)
	}
	return n, nil
}
