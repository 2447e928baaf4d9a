package tenant

import (
	"context"
	"errors"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
	"github.com/ordexa/ordexa-api/pkg/logger"
)

// Estados del contexto de tenant de una sesión.
type State string

const (
	StateAnonymous     State = "ANONYMOUS"      // sin identidad firmada
	StateNoMembership  State = "NO_MEMBERSHIP"  // identidad sin empresa vinculada
	StateNoCompany     State = "NO_COMPANY"     // referencia colgante: la empresa no existe
	StateReady         State = "READY"          // empresa cargada y cupo de dispositivo asegurado
	StateDeviceBlocked State = "DEVICE_BLOCKED" // empresa cargada pero sin cupo para este dispositivo
)

// Mensaje mostrado cuando la empresa agotó sus cupos de dispositivos.
const deviceLimitMessage = "Esta empresa alcanzó el límite de dispositivos activos. Pide a un administrador liberar un cupo."

// TenantContext es lo que la capa de presentación necesita para decidir acceso:
// en DEVICE_BLOCKED la empresa sigue poblada (para mostrar uso de cupos y el
// mensaje de contacto) y la identidad sigue firmada; agotar cupos no desloguea.
type TenantContext struct {
	State       State
	Usuario     *entity.Usuario
	Empresa     *entity.Empresa
	DeviceError string // mensaje para la UI; vacío si no hay bloqueo
}

// Resolver resuelve una identidad firmada a su contexto de tenant: carga la
// membresía, la empresa, y asegura el cupo del dispositivo actual vía Registrar.
type Resolver struct {
	usuarioRepo repository.UsuarioRepository
	empresaRepo repository.EmpresaRepository
	registrar   *Registrar
	log         *logger.Logger
}

// NewResolver construye el resolutor de sesión.
func NewResolver(
	usuarioRepo repository.UsuarioRepository,
	empresaRepo repository.EmpresaRepository,
	registrar *Registrar,
	log *logger.Logger,
) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		usuarioRepo: usuarioRepo,
		empresaRepo: empresaRepo,
		registrar:   registrar,
		log:         log,
	}
}

// Resolve ejecuta la máquina de estados de sesión para la identidad dada.
// No reintenta nada por su cuenta; los reintentos viven en la primitiva transaccional.
func (r *Resolver) Resolve(ctx context.Context, uid, deviceID, userAgent string) (*TenantContext, error) {
	if uid == "" {
		return &TenantContext{State: StateAnonymous}, nil
	}

	usuario, err := r.usuarioRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if usuario == nil || usuario.EmpresaID == "" {
		return &TenantContext{State: StateNoMembership, Usuario: usuario}, nil
	}

	empresa, err := r.empresaRepo.GetByID(ctx, usuario.EmpresaID)
	if err != nil {
		return nil, err
	}
	if empresa == nil {
		// Referencia colgante usuario→empresa: se expone, nunca se repara sola.
		r.log.Error().Str("uid", uid).Str("empresa_id", usuario.EmpresaID).
			Msg("membresía apunta a una empresa inexistente")
		return &TenantContext{State: StateNoCompany, Usuario: usuario}, nil
	}

	result, err := r.registrar.RegisterDevice(ctx, RegisterDeviceInput{
		EmpresaID: empresa.ID,
		DeviceID:  deviceID,
		UID:       uid,
		UserEmail: usuario.Email,
		UserAgent: userAgent,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDeviceLimitReached) {
			return &TenantContext{
				State:       StateDeviceBlocked,
				Usuario:     usuario,
				Empresa:     empresa,
				DeviceError: deviceLimitMessage,
			}, nil
		}
		// Otras fallas de registro no descartan lo ya resuelto: el caller
		// recibe usuario y empresa junto con el error.
		return &TenantContext{
			State:   StateDeviceBlocked,
			Usuario: usuario,
			Empresa: empresa,
		}, err
	}

	if result.Status == StatusRegistered {
		empresa.DevicesCount = result.Total
	}
	return &TenantContext{State: StateReady, Usuario: usuario, Empresa: empresa}, nil
}

// SignOut libera el cupo del dispositivo actual antes de descartar la sesión.
// La empresa se resuelve desde usuarios/{uid}, no desde el token: un claim
// emitido antes de unirse a la empresa quedaría vacío o desactualizado.
// Best-effort: una falla se registra pero nunca bloquea el cierre de sesión.
func (r *Resolver) SignOut(ctx context.Context, uid, deviceID string) {
	if uid == "" || deviceID == "" {
		return
	}
	usuario, err := r.usuarioRepo.GetByUID(ctx, uid)
	if err != nil {
		r.log.Warn().Err(err).Str("uid", uid).
			Msg("no se pudo resolver la membresía al cerrar sesión")
		return
	}
	if usuario == nil || usuario.EmpresaID == "" {
		return
	}
	if err := r.registrar.UnregisterDevice(ctx, usuario.EmpresaID, deviceID); err != nil {
		r.log.Warn().Err(err).Str("uid", uid).Str("device_id", deviceID).
			Msg("no se pudo desvincular el dispositivo al cerrar sesión")
	}
}
