package entity

import "time"

// Roles válidos para Usuario dentro de una empresa.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// Usuario representa una identidad del sistema y su membresía (a lo sumo una empresa).
// EmpresaID vacío significa sin membresía; una vez vinculado, no se sobreescribe
// en silencio hacia otra empresa: los intentos de unirse a una empresa distinta fallan.
type Usuario struct {
	UID           string
	Email         string
	PasswordHash  string // bcrypt, nunca en claro después de persistir
	Nombre        string
	EmpresaID     string // "" = sin membresía
	Rol           string // admin, vendedor
	EmailVerified bool
	JoinedAt      *time.Time // momento de vinculación a la empresa, nil si no aplica
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
