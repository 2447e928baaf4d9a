package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta registra una venta de mostrador con sus renglones.
type Venta struct {
	ID        string
	EmpresaID string
	UserID    string // vendedor que registró la venta
	Cliente   string // nombre libre, opcional
	Total     decimal.Decimal
	Items     []VentaItem
	CreatedAt time.Time
}

// VentaItem es un renglón de venta; Subtotal = PrecioUnitario * Cantidad.
type VentaItem struct {
	ID         string
	VentaID    string
	ProductoID string
	Nombre     string // denormalizado para que el histórico sobreviva a cambios del catálogo
	Cantidad   decimal.Decimal
	Precio     decimal.Decimal
	Subtotal   decimal.Decimal
}
