package repository

import (
	"context"
	"time"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// UsuarioRepository define el puerto de persistencia para Usuario (DIP).
type UsuarioRepository interface {
	Create(ctx context.Context, user *entity.Usuario) error
	// GetByUID devuelve nil, nil si el usuario no existe.
	GetByUID(ctx context.Context, uid string) (*entity.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*entity.Usuario, error)
	// SetEmpresa vincula el uid a una empresa con rol y momento de vinculación.
	SetEmpresa(ctx context.Context, uid, empresaID, rol string, joinedAt time.Time) error
	ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Usuario, error)
	CountByEmpresa(ctx context.Context, empresaID string) (int, error)
}
