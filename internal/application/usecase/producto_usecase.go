package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// ProductoUseCase casos de uso CRUD para el catálogo de una empresa.
// El stock solo se descuenta al registrar ventas; acá solo se fija el inicial
// o se corrige manualmente vía Update.
type ProductoUseCase struct {
	repo repository.ProductoRepository
}

// NewProductoUseCase construye el caso de uso.
func NewProductoUseCase(repo repository.ProductoRepository) *ProductoUseCase {
	return &ProductoUseCase{repo: repo}
}

// Create crea un producto en el catálogo de la empresa.
func (uc *ProductoUseCase) Create(ctx context.Context, empresaID string, in dto.CreateProductoRequest) (*dto.ProductoResponse, error) {
	nombre := strings.TrimSpace(in.Nombre)
	codigo := strings.TrimSpace(in.Codigo)
	if empresaID == "" || nombre == "" || codigo == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Precio.IsNegative() || in.Costo.IsNegative() || in.Stock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	producto := &entity.Producto{
		ID:        uuid.New().String(),
		EmpresaID: empresaID,
		Nombre:    nombre,
		Codigo:    codigo,
		Precio:    in.Precio,
		Costo:     in.Costo,
		Stock:     in.Stock,
		ImagenURL: in.ImagenURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, producto); err != nil {
		return nil, err
	}
	return toProductoResponse(producto), nil
}

// GetByID obtiene un producto, verificando que pertenezca a la empresa del caller.
func (uc *ProductoUseCase) GetByID(ctx context.Context, empresaID, id string) (*dto.ProductoResponse, error) {
	producto, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if producto == nil || producto.EmpresaID != empresaID {
		return nil, domain.ErrNotFound
	}
	return toProductoResponse(producto), nil
}

// Update actualiza campos opcionales de un producto.
func (uc *ProductoUseCase) Update(ctx context.Context, empresaID, id string, in dto.UpdateProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if producto == nil || producto.EmpresaID != empresaID {
		return nil, domain.ErrNotFound
	}
	if in.Nombre != nil {
		if strings.TrimSpace(*in.Nombre) == "" {
			return nil, domain.ErrInvalidInput
		}
		producto.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Codigo != nil {
		if strings.TrimSpace(*in.Codigo) == "" {
			return nil, domain.ErrInvalidInput
		}
		producto.Codigo = strings.TrimSpace(*in.Codigo)
	}
	if in.Precio != nil {
		if in.Precio.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		producto.Precio = *in.Precio
	}
	if in.Costo != nil {
		if in.Costo.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		producto.Costo = *in.Costo
	}
	if in.Stock != nil {
		if in.Stock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		producto.Stock = *in.Stock
	}
	if in.ImagenURL != nil {
		producto.ImagenURL = *in.ImagenURL
	}
	producto.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, producto); err != nil {
		return nil, err
	}
	return toProductoResponse(producto), nil
}

// List lista el catálogo de la empresa con paginación.
func (uc *ProductoUseCase) List(ctx context.Context, empresaID string, limit, offset int) (*dto.ProductoListResponse, error) {
	list, err := uc.repo.ListByEmpresa(ctx, empresaID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductoResponse(p))
	}
	return &dto.ProductoListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto del catálogo de la empresa.
func (uc *ProductoUseCase) Delete(ctx context.Context, empresaID, id string) error {
	producto, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if producto == nil || producto.EmpresaID != empresaID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toProductoResponse(p *entity.Producto) *dto.ProductoResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductoResponse{
		ID:        p.ID,
		EmpresaID: p.EmpresaID,
		Nombre:    p.Nombre,
		Codigo:    p.Codigo,
		Precio:    p.Precio,
		Costo:     p.Costo,
		Stock:     p.Stock,
		ImagenURL: p.ImagenURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
