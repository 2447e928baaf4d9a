package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductoRequest entrada para crear un producto.
type CreateProductoRequest struct {
	Nombre    string          `json:"nombre" validate:"required,min=1,max=200"`
	Codigo    string          `json:"codigo" validate:"required,min=1,max=100"`
	Precio    decimal.Decimal `json:"precio"`
	Costo     decimal.Decimal `json:"costo"`
	Stock     decimal.Decimal `json:"stock"`
	ImagenURL string          `json:"imagen_url"`
}

// UpdateProductoRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductoRequest struct {
	Nombre    *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Codigo    *string          `json:"codigo" validate:"omitempty,min=1,max=100"`
	Precio    *decimal.Decimal `json:"precio"`
	Costo     *decimal.Decimal `json:"costo"`
	Stock     *decimal.Decimal `json:"stock"`
	ImagenURL *string          `json:"imagen_url"`
}

// ProductoResponse salida de un producto.
type ProductoResponse struct {
	ID        string          `json:"id"`
	EmpresaID string          `json:"empresa_id"`
	Nombre    string          `json:"nombre"`
	Codigo    string          `json:"codigo"`
	Precio    decimal.Decimal `json:"precio"`
	Costo     decimal.Decimal `json:"costo"`
	Stock     decimal.Decimal `json:"stock"`
	ImagenURL string          `json:"imagen_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductoListResponse lista paginada de productos.
type ProductoListResponse struct {
	Items []ProductoResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
