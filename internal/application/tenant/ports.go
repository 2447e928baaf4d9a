package tenant

import (
	"context"
	"time"

	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad entre el contador de cupos de la empresa y
// las filas de dispositivos/membresías que ese contador resume. El cuerpo puede
// re-ejecutarse ante conflictos: debe ser función pura de sus lecturas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		empresaRepo repository.EmpresaRepository,
		dispositivoRepo repository.DispositivoRepository,
		usuarioRepo repository.UsuarioRepository,
	) error) error
}

// SessionRevoker invalida todas las sesiones activas de un uid (corte de emisión).
// Lo implementa el store de revocación en Redis.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, uid string, at time.Time) error
}
