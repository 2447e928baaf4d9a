package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VentaItemRequest renglón de una venta a registrar.
type VentaItemRequest struct {
	ProductoID string          `json:"producto_id" validate:"required"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

// CreateVentaRequest entrada para registrar una venta de mostrador.
type CreateVentaRequest struct {
	Cliente string             `json:"cliente"`
	Items   []VentaItemRequest `json:"items" validate:"required,min=1"`
}

// VentaItemResponse renglón persistido; subtotal = precio * cantidad.
type VentaItemResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// VentaResponse salida de una venta.
type VentaResponse struct {
	ID        string              `json:"id"`
	EmpresaID string              `json:"empresa_id"`
	UserID    string              `json:"user_id"`
	Cliente   string              `json:"cliente,omitempty"`
	Total     decimal.Decimal     `json:"total"`
	Items     []VentaItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
}

// VentaListResponse lista paginada de ventas.
type VentaListResponse struct {
	Items []VentaResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
