package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmpresaNotFound    = errors.New("empresa no existe")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Límites por empresa (condiciones de negocio esperadas, recuperables).
	ErrDeviceLimitReached = errors.New("límite de dispositivos alcanzado")
	ErrUserLimitReached   = errors.New("límite de usuarios por empresa alcanzado")

	// Precondiciones del ciclo de vida de la empresa.
	ErrEmpresaSuspended  = errors.New("la empresa está suspendida")
	ErrAlreadyInCompany  = errors.New("la cuenta ya está vinculada a otra empresa")

	// Agotado el presupuesto de reintentos de una transacción por conflictos de escritura.
	ErrTxConflict = errors.New("conflicto de transacción, reintentos agotados")
)
