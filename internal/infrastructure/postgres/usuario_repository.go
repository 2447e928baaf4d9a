package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación de UsuarioRepository sobre PostgreSQL
// (usable con pool o tx vía Querier).
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador de persistencia para usuarios.
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

const usuarioColumns = `uid, email, password_hash, nombre, empresa_id, rol,
		email_verified, joined_at, created_at, updated_at`

// Create persiste un nuevo usuario. Devuelve ErrEmailAlreadyExists si el email ya está tomado.
func (r *UsuarioRepo) Create(ctx context.Context, u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (` + usuarioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		u.UID, u.Email, u.PasswordHash, u.Nombre, nullIfEmpty(u.EmpresaID), u.Rol,
		u.EmailVerified, u.JoinedAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// GetByUID obtiene un usuario por uid. Devuelve nil, nil si no existe.
func (r *UsuarioRepo) GetByUID(ctx context.Context, uid string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE uid = $1`
	return r.scanOne(ctx, query, uid)
}

// GetByEmail obtiene un usuario por email. Devuelve nil, nil si no existe.
func (r *UsuarioRepo) GetByEmail(ctx context.Context, email string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`
	return r.scanOne(ctx, query, email)
}

func (r *UsuarioRepo) scanOne(ctx context.Context, query, arg string) (*entity.Usuario, error) {
	var u entity.Usuario
	var empresaID *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.UID, &u.Email, &u.PasswordHash, &u.Nombre, &empresaID, &u.Rol,
		&u.EmailVerified, &u.JoinedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	if empresaID != nil {
		u.EmpresaID = *empresaID
	}
	return &u, nil
}

// SetEmpresa vincula el usuario a la empresa con rol y joined_at.
// La exclusividad de membresía la valida el caso de uso dentro de la transacción.
func (r *UsuarioRepo) SetEmpresa(ctx context.Context, uid, empresaID, rol string, joinedAt time.Time) error {
	query := `
		UPDATE usuarios SET empresa_id = $2, rol = $3, joined_at = $4, updated_at = now()
		WHERE uid = $1`
	cmd, err := r.q.Exec(ctx, query, uid, empresaID, rol, joinedAt)
	if err != nil {
		return fmt.Errorf("set empresa: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListByEmpresa devuelve los miembros de una empresa.
func (r *UsuarioRepo) ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE empresa_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()

	var list []*entity.Usuario
	for rows.Next() {
		var u entity.Usuario
		var eid *string
		if err := rows.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.Nombre, &eid, &u.Rol,
			&u.EmailVerified, &u.JoinedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		if eid != nil {
			u.EmpresaID = *eid
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// CountByEmpresa cuenta los miembros actuales de la empresa.
func (r *UsuarioRepo) CountByEmpresa(ctx context.Context, empresaID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM usuarios WHERE empresa_id = $1`, empresaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count usuarios: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
