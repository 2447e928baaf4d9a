package repository

import (
	"context"

	"github.com/ordexa/ordexa-api/internal/domain/entity"
)

// DispositivoRepository define el puerto de persistencia para los cupos de dispositivo.
type DispositivoRepository interface {
	// Get devuelve nil, nil si (empresaID, deviceID) no ocupa cupo.
	Get(ctx context.Context, empresaID, deviceID string) (*entity.Dispositivo, error)
	Create(ctx context.Context, d *entity.Dispositivo) error
	// Touch refresca lastSeen/uid/userEmail/userAgent de un cupo existente
	// sin tocar createdAt (escritura tipo merge).
	Touch(ctx context.Context, d *entity.Dispositivo) error
	// Delete es idempotente: borrar un cupo inexistente no es error.
	Delete(ctx context.Context, empresaID, deviceID string) error
	ListByEmpresa(ctx context.Context, empresaID string) ([]*entity.Dispositivo, error)
	CountByEmpresa(ctx context.Context, empresaID string) (int, error)
}
