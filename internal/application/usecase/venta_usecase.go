package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordexa/ordexa-api/internal/application/dto"
	"github.com/ordexa/ordexa-api/internal/domain"
	"github.com/ordexa/ordexa-api/internal/domain/entity"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// VentaUseCase registra ventas de mostrador descontando stock atómicamente.
type VentaUseCase struct {
	txRunner  VentaTxRunner
	ventaRepo repository.VentaRepository
}

// NewVentaUseCase construye el caso de uso. ventaRepo se usa para las lecturas
// fuera de transacción (consultas e históricos).
func NewVentaUseCase(txRunner VentaTxRunner, ventaRepo repository.VentaRepository) *VentaUseCase {
	return &VentaUseCase{txRunner: txRunner, ventaRepo: ventaRepo}
}

// Registrar persiste la venta y descuenta el stock de cada producto dentro de
// una sola transacción. Cada fila de producto se bloquea antes de leer su stock,
// así dos ventas concurrentes del mismo producto se serializan y el stock nunca
// queda negativo; si algún renglón no alcanza, nada se escribe.
func (uc *VentaUseCase) Registrar(ctx context.Context, empresaID, userID string, in dto.CreateVentaRequest) (*dto.VentaResponse, error) {
	if empresaID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductoID == "" || !item.Cantidad.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	}

	var venta *entity.Venta
	err := uc.txRunner.RunVenta(ctx, func(
		productoRepo repository.ProductoRepository,
		ventaRepo repository.VentaRepository,
	) error {
		ventaID := uuid.New().String()
		total := decimal.Zero
		items := make([]entity.VentaItem, 0, len(in.Items))

		for _, reqItem := range in.Items {
			producto, err := productoRepo.GetForUpdate(ctx, reqItem.ProductoID)
			if err != nil {
				return err
			}
			if producto == nil || producto.EmpresaID != empresaID {
				return domain.ErrNotFound
			}
			if producto.Stock.LessThan(reqItem.Cantidad) {
				return domain.ErrInsufficientStock
			}
			if err := productoRepo.UpdateStock(ctx, producto.ID, producto.Stock.Sub(reqItem.Cantidad)); err != nil {
				return err
			}

			subtotal := producto.Precio.Mul(reqItem.Cantidad)
			total = total.Add(subtotal)
			items = append(items, entity.VentaItem{
				ID:         uuid.New().String(),
				VentaID:    ventaID,
				ProductoID: producto.ID,
				Nombre:     producto.Nombre,
				Cantidad:   reqItem.Cantidad,
				Precio:     producto.Precio,
				Subtotal:   subtotal,
			})
		}

		venta = &entity.Venta{
			ID:        ventaID,
			EmpresaID: empresaID,
			UserID:    userID,
			Cliente:   in.Cliente,
			Total:     total,
			Items:     items,
			CreatedAt: time.Now(),
		}
		return ventaRepo.Create(ctx, venta)
	})
	if err != nil {
		return nil, err
	}
	return toVentaResponse(venta), nil
}

// GetByID obtiene una venta, verificando que pertenezca a la empresa del caller.
func (uc *VentaUseCase) GetByID(ctx context.Context, empresaID, id string) (*dto.VentaResponse, error) {
	venta, err := uc.ventaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venta == nil || venta.EmpresaID != empresaID {
		return nil, domain.ErrNotFound
	}
	return toVentaResponse(venta), nil
}

// List lista las ventas de la empresa con paginación.
func (uc *VentaUseCase) List(ctx context.Context, empresaID string, limit, offset int) (*dto.VentaListResponse, error) {
	list, err := uc.ventaRepo.ListByEmpresa(ctx, empresaID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toVentaResponse(v))
	}
	return &dto.VentaListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toVentaResponse(v *entity.Venta) *dto.VentaResponse {
	if v == nil {
		return nil
	}
	items := make([]dto.VentaItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.VentaItemResponse{
			ProductoID: item.ProductoID,
			Nombre:     item.Nombre,
			Cantidad:   item.Cantidad,
			Precio:     item.Precio,
			Subtotal:   item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:        v.ID,
		EmpresaID: v.EmpresaID,
		UserID:    v.UserID,
		Cliente:   v.Cliente,
		Total:     v.Total,
		Items:     items,
		CreatedAt: v.CreatedAt,
	}
}
