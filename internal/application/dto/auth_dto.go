package dto

import "time"

// SignupRequest entrada de registro. El usuario nace sin empresa vinculada.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nombre   string `json:"nombre"`
}

// LoginRequest entrada de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UsuarioResponse salida de un usuario (nunca incluye el hash).
type UsuarioResponse struct {
	UID           string     `json:"uid"`
	Email         string     `json:"email"`
	Nombre        string     `json:"nombre"`
	EmpresaID     string     `json:"empresa_id,omitempty"`
	Rol           string     `json:"rol,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LoginResponse token emitido + usuario autenticado.
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario UsuarioResponse `json:"usuario"`
}
