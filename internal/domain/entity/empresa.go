package entity

import "time"

// Empresa representa una organización/tenant del sistema.
// DevicesCount es el contador de cupos de dispositivos ocupados y debe coincidir
// con la cantidad de filas en dispositivos para esta empresa en todo momento
// de reposo (sin transacción en vuelo). Solo se muta dentro de una transacción
// que también toca la fila de dispositivo correspondiente.
type Empresa struct {
	ID                 string
	Nombre             string
	NIT                string // NIT colombiano (con o sin dígito de verificación)
	LogoURL            string
	Suspended          bool
	SuspendedUpdatedAt *time.Time // nil si nunca se ha (des)suspendido
	OwnerUID           string
	Admins             []string // uids con permiso de administración además del owner
	MaxDispositivos    int      // cupo de dispositivos (default 3)
	DevicesCount       int      // cupos ocupados actualmente
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOwnerOrAdmin informa si el uid puede ejecutar operaciones privilegiadas
// sobre la empresa (suspender, reactivar).
func (e *Empresa) IsOwnerOrAdmin(uid string) bool {
	if uid == "" {
		return false
	}
	if e.OwnerUID == uid {
		return true
	}
	for _, a := range e.Admins {
		if a == uid {
			return true
		}
	}
	return false
}
