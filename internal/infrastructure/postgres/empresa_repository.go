package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// Asegura que EmpresaRepo implementa repository.EmpresaRepository.
var _ repository.EmpresaRepository = (*EmpresaRepo)(nil)

// EmpresaRepo implementación del puerto EmpresaRepository sobre PostgreSQL
// (usable con pool o tx vía Querier).
type EmpresaRepo struct {
	q Querier
}

// NewEmpresaRepository construye el adaptador de persistencia para empresas.
func NewEmpresaRepository(q Querier) *EmpresaRepo {
	return &EmpresaRepo{q: q}
}

const empresaColumns = `id, nombre, nit, logo_url, suspended, suspended_updated_at,
		owner_uid, admins, max_dispositivos, devices_count, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *EmpresaRepo) Create(ctx context.Context, e *entity.Empresa) error {
	query := `
		INSERT INTO empresas (` + empresaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Nombre, e.NIT, e.LogoURL, e.Suspended, e.SuspendedUpdatedAt,
		e.OwnerUID, e.Admins, e.MaxDispositivos, e.DevicesCount,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert empresa: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve nil, nil si no existe.
func (r *EmpresaRepo) GetByID(ctx context.Context, id string) (*entity.Empresa, error) {
	query := `SELECT ` + empresaColumns + ` FROM empresas WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetForUpdate obtiene la empresa bloqueando su fila (SELECT FOR UPDATE).
// Toda mutación de devices_count pasa por este bloqueo, de modo que los
// registros concurrentes de dispositivos distintos se serializan aquí.
func (r *EmpresaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Empresa, error) {
	query := `SELECT ` + empresaColumns + ` FROM empresas WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *EmpresaRepo) scanOne(ctx context.Context, query, id string) (*entity.Empresa, error) {
	var e entity.Empresa
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Nombre, &e.NIT, &e.LogoURL, &e.Suspended, &e.SuspendedUpdatedAt,
		&e.OwnerUID, &e.Admins, &e.MaxDispositivos, &e.DevicesCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get empresa: %w", err)
	}
	return &e, nil
}

// SetSuspended actualiza el flag de suspensión y su timestamp.
func (r *EmpresaRepo) SetSuspended(ctx context.Context, id string, suspended bool, at time.Time) error {
	query := `
		UPDATE empresas SET suspended = $2, suspended_updated_at = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, suspended, at)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	return nil
}

// UpdateDevicesCount escribe el contador de cupos; llamar solo con la fila bloqueada.
func (r *EmpresaRepo) UpdateDevicesCount(ctx context.Context, id string, count int) error {
	query := `UPDATE empresas SET devices_count = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("update devices_count: %w", err)
	}
	return nil
}

// Update actualiza los campos descriptivos de la empresa (last-write-wins,
// ningún invariante depende de su atomicidad).
func (r *EmpresaRepo) Update(ctx context.Context, e *entity.Empresa) error {
	query := `
		UPDATE empresas
		SET nombre = $2, nit = $3, logo_url = $4, admins = $5, max_dispositivos = $6, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, e.ID, e.Nombre, e.NIT, e.LogoURL, e.Admins, e.MaxDispositivos)
	if err != nil {
		return fmt.Errorf("update empresa: %w", err)
	}
	return nil
}
