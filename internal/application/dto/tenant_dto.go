package dto

import "time"

// CrearEmpresaRequest entrada para el alta de una empresa.
type CrearEmpresaRequest struct {
	Nombre  string `json:"nombre" validate:"required,min=1,max=200"`
	NIT     string `json:"nit"`
	LogoURL string `json:"logo_url"`
}

// EmpresaResponse salida de una empresa, incluyendo el uso de cupos de dispositivos.
type EmpresaResponse struct {
	ID                 string     `json:"id"`
	Nombre             string     `json:"nombre"`
	NIT                string     `json:"nit,omitempty"`
	LogoURL            string     `json:"logo_url,omitempty"`
	Suspended          bool       `json:"suspended"`
	SuspendedUpdatedAt *time.Time `json:"suspended_updated_at,omitempty"`
	OwnerUID           string     `json:"owner_uid"`
	Admins             []string   `json:"admins"`
	MaxDispositivos    int        `json:"max_dispositivos"`
	DevicesCount       int        `json:"devices_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

// JoinEmpresaRequest entrada para unirse a una empresa existente.
type JoinEmpresaRequest struct {
	EmpresaID string `json:"empresa_id" validate:"required"`
}

// SuspendRequest entrada para suspender o reactivar la empresa.
type SuspendRequest struct {
	Suspended bool `json:"suspended"`
}

// RegisterDeviceRequest entrada del registro de dispositivo.
type RegisterDeviceRequest struct {
	DeviceID  string `json:"device_id" validate:"required,max=100"`
	UserAgent string `json:"user_agent"`
}

// RegisterDeviceResponse resultado del registro: status y total de cupos ocupados.
type RegisterDeviceResponse struct {
	Status string `json:"status"`
	Total  int    `json:"total,omitempty"`
}

// DispositivoResponse salida de un cupo ocupado.
type DispositivoResponse struct {
	DeviceID  string    `json:"device_id"`
	UID       string    `json:"uid"`
	UserEmail string    `json:"user_email"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// DispositivoListResponse lista de cupos ocupados con el límite de la empresa.
type DispositivoListResponse struct {
	Items []DispositivoResponse `json:"items"`
	Total int                   `json:"total"`
	Max   int                   `json:"max"`
}

// SessionResponse contexto de tenant de la sesión actual.
// En DEVICE_BLOCKED la empresa sigue poblada y device_error lleva el mensaje
// para la UI; la identidad no se desloguea por agotar cupos.
type SessionResponse struct {
	State       string           `json:"state"`
	Usuario     *UsuarioResponse `json:"usuario,omitempty"`
	Empresa     *EmpresaResponse `json:"empresa,omitempty"`
	DeviceError string           `json:"device_error,omitempty"`
}
