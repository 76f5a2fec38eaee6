package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
)

// ServiceOrderRepository puerto de persistencia para órdenes de servicio.
type ServiceOrderRepository interface {
	Create(ctx context.Context, order *entity.ServiceOrder) error
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	GetByCode(ctx context.Context, code string) (*entity.ServiceOrder, error)
	// GetForUpdate bloquea la fila de la orden para serializar transiciones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	Update(ctx context.Context, order *entity.ServiceOrder) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.ServiceOrder, error)
	// ListStuckSince devuelve órdenes en el estado dado cuya última actualización
	// es anterior a cutoff (para el escaneo de vencimientos).
	ListStuckSince(ctx context.Context, status workflow.Status, cutoff time.Time) ([]*entity.ServiceOrder, error)
	CountOpenByClient(ctx context.Context, clientID string) (int, error)
	// NextCode reserva el siguiente consecutivo para el código de orden (OS-000123).
	NextCode(ctx context.Context) (string, error)
}

// OrderFilter filtros de listado de órdenes.
type OrderFilter struct {
	Status       workflow.Status // vacío = todos
	ClientID     string
	TechnicianID string
	Limit        int
	Offset       int
}
