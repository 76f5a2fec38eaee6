package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// OrderItemRepository puerto de persistencia para líneas de órdenes de servicio.
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.ServiceOrderItem) error
	GetByID(ctx context.Context, id string) (*entity.ServiceOrderItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.ServiceOrderItem, error)
	Delete(ctx context.Context, id string) error
}
