package entity

import "time"

// Dispositivo representa un cupo de dispositivo ocupado en una empresa.
// Existe una fila (EmpresaID, DeviceID) si y solo si ese dispositivo ocupa
// uno de los DevicesCount cupos de la empresa; su alta y baja son atómicas
// con el incremento/decremento del contador.
type Dispositivo struct {
	EmpresaID string
	DeviceID  string // identificador estable generado por el cliente
	UID       string // sesión de usuario dueña del cupo
	UserEmail string
	UserAgent string
	CreatedAt time.Time // se fija una vez, inmutable
	LastSeen  time.Time // se refresca en cada re-registro
}
