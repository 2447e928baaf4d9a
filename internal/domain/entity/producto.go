package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto pertenece al catálogo de una empresa.
type Producto struct {
	ID        string
	EmpresaID string
	Nombre    string
	Codigo    string // código interno o de barras, único por empresa
	Precio    decimal.Decimal
	Costo     decimal.Decimal
	Stock     decimal.Decimal
	ImagenURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
