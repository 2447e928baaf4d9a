package tenant

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// Estados de resultado del registro de un dispositivo.
const (
	StatusRegistered = "registered" // dispositivo nuevo, consumió un cupo
	StatusRefreshed  = "refreshed"  // dispositivo ya conocido, solo refrescó lastSeen
)

// maxUserAgentLen largo máximo en bytes del user agent almacenado.
const maxUserAgentLen = 150

// RegistrationResult resultado de RegisterDevice.
type RegistrationResult struct {
	Status string
	Total  int // cupos ocupados tras la operación (solo significativo al registrar)
}

// RegisterDeviceInput datos del dispositivo y la sesión que pide el cupo.
type RegisterDeviceInput struct {
	EmpresaID string
	DeviceID  string
	UID       string
	UserEmail string
	UserAgent string
}

// Registrar es el núcleo transaccional de cupos de dispositivo: registra o
// refresca un cupo respetando max_dispositivos, y ofrece la baja simétrica.
// Toda la secuencia verificar-y-actuar corre dentro de una transacción que
// bloquea la fila de la empresa, así dos registros concurrentes de dispositivos
// distintos se serializan sobre el contador compartido y a lo sumo uno toma el
// último cupo; el otro reevalúa contra el contador ya actualizado.
type Registrar struct {
	txRunner TxRunner
}

// NewRegistrar construye el registrador de dispositivos.
func NewRegistrar(txRunner TxRunner) *Registrar {
	return &Registrar{txRunner: txRunner}
}

// RegisterDevice registra o refresca el cupo de (empresaID, deviceID).
//   - Empresa inexistente: ErrEmpresaNotFound (fatal, sin reintento).
//   - Cupo ya existente: refresca lastSeen/uid sin tocar el contador (idempotente).
//   - Sin cupo disponible: ErrDeviceLimitReached, la transacción aborta sin escribir nada.
//   - Cupo disponible: alta del dispositivo + devices_count+1, atómicos.
func (r *Registrar) RegisterDevice(ctx context.Context, in RegisterDeviceInput) (*RegistrationResult, error) {
	if in.EmpresaID == "" || in.DeviceID == "" {
		return nil, domain.ErrInvalidInput
	}

	var result RegistrationResult
	err := r.txRunner.Run(ctx, func(
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

		// Dispositivo ya conocido: no consume cupo, solo refresca.
		if existing != nil {
			existing.UID = in.UID
			existing.UserEmail = in.UserEmail
			existing.UserAgent = truncate(in.UserAgent, maxUserAgentLen)
			existing.LastSeen = now
			if err := dispositivoRepo.Touch(ctx, existing); err != nil {
				return err
			}
			result = RegistrationResult{Status: StatusRefreshed, Total: empresa.DevicesCount}
			return nil
		}

		if empresa.DevicesCount >= empresa.MaxDispositivos {
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
		if err := empresaRepo.UpdateDevicesCount(ctx, in.EmpresaID, empresa.DevicesCount+1); err != nil {
			return err
		}
		result = RegistrationResult{Status: StatusRegistered, Total: empresa.DevicesCount + 1}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UnregisterDevice libera el cupo de (empresaID, deviceID). Idempotente: si el
// dispositivo no ocupa cupo, o la empresa no existe, no hace nada. El decremento
// del contador queda acotado en 0 por si hubo deriva previa.
func (r *Registrar) UnregisterDevice(ctx context.Context, empresaID, deviceID string) error {
	if empresaID == "" || deviceID == "" {
		return domain.ErrInvalidInput
	}

	return r.txRunner.Run(ctx, func(
		empresaRepo repository.EmpresaRepository,
		dispositivoRepo repository.DispositivoRepository,
		_ repository.UsuarioRepository,
	) error {
		empresa, err := empresaRepo.GetForUpdate(ctx, empresaID)
		if err != nil {
			return err
		}
		if empresa == nil {
			return nil
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

// truncate recorta s a lo sumo a n bytes sin partir una runa: el corte
// retrocede hasta el inicio de runa más cercano para que el valor siga
// siendo UTF-8 válido al insertarse en Postgres.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
