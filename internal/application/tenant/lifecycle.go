package tenant

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
	"github.com/ordexa/ordexa-api/pkg/logger"
)

// Estados de las operaciones privilegiadas (espejo servidor del registro cliente).
const (
	StatusAlreadyRegistered = "already-registered"
	StatusUnregistered      = "unregistered"
	StatusJoined            = "joined"
	StatusAlreadyInCompany  = "already-in-company"
)

// Lifecycle agrupa las operaciones privilegiadas sobre una empresa: registro y
// baja de dispositivos con verificación de membresía, suspensión/reactivación
// con revocación de sesiones, y unirse a la empresa con límite de usuarios.
// Mutan los mismos contadores que el Registrar y mantienen sus invariantes.
type Lifecycle struct {
	txRunner    TxRunner
	empresaRepo repository.EmpresaRepository
	usuarioRepo repository.UsuarioRepository
	revoker     SessionRevoker
	maxUsuarios int
	log         *logger.Logger
}

// NewLifecycle construye las operaciones de ciclo de vida.
// maxUsuarios es el límite de usuarios por empresa del flujo de unirse.
func NewLifecycle(
	txRunner TxRunner,
	empresaRepo repository.EmpresaRepository,
	usuarioRepo repository.UsuarioRepository,
	revoker SessionRevoker,
	maxUsuarios int,
	log *logger.Logger,
) *Lifecycle {
	if log == nil {
		log = logger.Nop()
	}
	return &Lifecycle{
		txRunner:    txRunner,
		empresaRepo: empresaRepo,
		usuarioRepo: usuarioRepo,
		revoker:     revoker,
		maxUsuarios: maxUsuarios,
		log:         log,
	}
}

// assertMembership verifica que el uid pertenece a la empresa objetivo y
// devuelve el usuario verificado.
func (l *Lifecycle) assertMembership(ctx context.Context, uid, empresaID string) (*entity.Usuario, error) {
	usuario, err := l.usuarioRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if usuario == nil || usuario.EmpresaID != empresaID {
		return nil, domain.ErrForbidden
	}
	return usuario, nil
}

// RegisterDevice es el espejo server-trusted del Registrar: exige que el caller
// pertenezca a la empresa y cuenta los cupos por conteo directo de filas en vez
// del contador almacenado (variante de las funciones remotas del diseño original).
// Re-registrar un dispositivo existente solo refresca lastSeen.
func (l *Lifecycle) RegisterDevice(ctx context.Context, callerUID string, in RegisterDeviceInput) (*RegistrationResult, error) {
	if in.EmpresaID == "" || in.DeviceID == "" {
		return nil, domain.ErrInvalidInput
	}
	caller, err := l.assertMembership(ctx, callerUID, in.EmpresaID)
	if err != nil {
		return nil, err
	}
	if in.UserEmail == "" {
		in.UserEmail = caller.Email
	}

	var result RegistrationResult
	err = l.txRunner.Run(ctx, func(
		empresaRepo repository.EmpresaRepository,
		dispositivoRepo repository.DispositivoRepository,
		_ repository.UsuarioRepository,
	) error {
		empresa, err := empresaRepo.GetForUpdate(ctx, in.EmpresaID)
		if err != nil {
			return err
		}
		if empresa == nil {
			return domain.ErrEmpresaNotFound
		}

		existing, err := dispositivoRepo.Get(ctx, in.EmpresaID, in.DeviceID)
		if err != nil {
			return err
		}
		now := time.Now()
		if existing != nil {
			existing.UID = in.UID
			if in.UserAgent != "" {
				existing.UserAgent = truncate(in.UserAgent, maxUserAgentLen)
			}
			existing.LastSeen = now
			if err := dispositivoRepo.Touch(ctx, existing); err != nil {
				return err
			}
			result = RegistrationResult{Status: StatusAlreadyRegistered}
			return nil
		}

		current, err := dispositivoRepo.CountByEmpresa(ctx, in.EmpresaID)
		if err != nil {
			return err
		}
		if current >= empresa.MaxDispositivos {
			return domain.ErrDeviceLimitReached
		}

		d := &entity.Dispositivo{
			EmpresaID: in.EmpresaID,
			DeviceID:  in.DeviceID,
			UID:       in.UID,
			UserEmail: in.UserEmail,
			UserAgent: truncate(in.UserAgent, maxUserAgentLen),
			CreatedAt: now,
			LastSeen:  now,
		}
		if err := dispositivoRepo.Create(ctx, d); err != nil {
			return err
		}
		// Mantener el contador almacenado alineado con el conteo real.
		if err := empresaRepo.UpdateDevicesCount(ctx, in.EmpresaID, current+1); err != nil {
			return err
		}
		result = RegistrationResult{Status: StatusRegistered, Total: current + 1}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UnregisterDevice libera el cupo previa verificación de membresía. Idempotente.
func (l *Lifecycle) UnregisterDevice(ctx context.Context, callerUID, empresaID, deviceID string) error {
	if empresaID == "" || deviceID == "" {
		return domain.ErrInvalidInput
	}
	if _, err := l.assertMembership(ctx, callerUID, empresaID); err != nil {
		return err
	}

	return l.txRunner.Run(ctx, func(
		empresaRepo repository.EmpresaRepository,
		dispositivoRepo repository.DispositivoRepository,
		_ repository.UsuarioRepository,
	) error {
		empresa, err := empresaRepo.GetForUpdate(ctx, empresaID)
		if err != nil {
			return err
		}
		if empresa == nil {
			return domain.ErrEmpresaNotFound
		}
		existing, err := dispositivoRepo.Get(ctx, empresaID, deviceID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if err := dispositivoRepo.Delete(ctx, empresaID, deviceID); err != nil {
			return err
		}
		count := empresa.DevicesCount - 1
		if count < 0 {
			count = 0
		}
		return empresaRepo.UpdateDevicesCount(ctx, empresaID, count)
	})
}

// SetSuspended suspende o reactiva la empresa. Solo owner o admins. Al suspender,
// revoca las sesiones de todos los miembros de forma concurrente y best-effort:
// las fallas individuales se tragan y solo se registra el agregado, porque el
// invariante primario (el flag suspended) ya quedó escrito.
func (l *Lifecycle) SetSuspended(ctx context.Context, callerUID, empresaID string, suspended bool) error {
	if empresaID == "" {
		return domain.ErrInvalidInput
	}
	empresa, err := l.empresaRepo.GetByID(ctx, empresaID)
	if err != nil {
		return err
	}
	if empresa == nil {
		return domain.ErrEmpresaNotFound
	}
	if !empresa.IsOwnerOrAdmin(callerUID) {
		return domain.ErrForbidden
	}

	now := time.Now()
	if err := l.empresaRepo.SetSuspended(ctx, empresaID, suspended, now); err != nil {
		return err
	}

	if !suspended {
		return nil
	}

	miembros, err := l.usuarioRepo.ListByEmpresa(ctx, empresaID)
	if err != nil {
		// La suspensión ya quedó escrita; la revocación masiva es best-effort.
		l.log.Warn().Err(err).Str("empresa_id", empresaID).
			Msg("no se pudieron listar miembros para revocar sesiones")
		return nil
	}

	var g errgroup.Group
	failures := make([]error, len(miembros))
	for i, m := range miembros {
		g.Go(func() error {
			failures[i] = l.revoker.RevokeAll(ctx, m.UID, now)
			return nil // nunca abortamos el batch por una falla individual
		})
	}
	_ = g.Wait()

	failed := 0
	for _, ferr := range failures {
		if ferr != nil {
			failed++
		}
	}
	if failed > 0 {
		l.log.Warn().Int("fallidas", failed).Int("total", len(miembros)).
			Str("empresa_id", empresaID).Msg("revocaciones de sesión fallidas durante la suspensión")
	}
	return nil
}

// JoinCompany vincula al caller a la empresa respetando el límite de usuarios.
// Toda la verificación corre dentro de la transacción con la fila de la empresa
// bloqueada, así dos joins concurrentes se serializan y el conteo nunca rebasa
// el límite configurado.
func (l *Lifecycle) JoinCompany(ctx context.Context, callerUID, empresaID string) (string, error) {
	if empresaID == "" {
		return "", domain.ErrInvalidInput
	}

	var status string
	err := l.txRunner.Run(ctx, func(
		empresaRepo repository.EmpresaRepository,
		_ repository.DispositivoRepository,
		usuarioRepo repository.UsuarioRepository,
	) error {
		empresa, err := empresaRepo.GetForUpdate(ctx, empresaID)
		if err != nil {
			return err
		}
		if empresa == nil {
			return domain.ErrEmpresaNotFound
		}
		if empresa.Suspended {
			return domain.ErrEmpresaSuspended
		}

		usuario, err := usuarioRepo.GetByUID(ctx, callerUID)
		if err != nil {
			return err
		}
		if usuario == nil {
			return domain.ErrUserNotFound
		}
		if usuario.EmpresaID != "" && usuario.EmpresaID != empresaID {
			return domain.ErrAlreadyInCompany
		}
		if usuario.EmpresaID == empresaID {
			status = StatusAlreadyInCompany
			return nil
		}

		current, err := usuarioRepo.CountByEmpresa(ctx, empresaID)
		if err != nil {
			return err
		}
		if current >= l.maxUsuarios {
			return domain.ErrUserLimitReached
		}

		if err := usuarioRepo.SetEmpresa(ctx, callerUID, empresaID, entity.RoleVendedor, time.Now()); err != nil {
			return err
		}
		status = StatusJoined
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}
