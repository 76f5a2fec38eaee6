package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// EquipmentRepository puerto de persistencia para equipos de clientes.
type EquipmentRepository interface {
	Create(ctx context.Context, eq *entity.Equipment) error
	GetByID(ctx context.Context, id string) (*entity.Equipment, error)
	Update(ctx context.Context, eq *entity.Equipment) error
	ListByClient(ctx context.Context, clientID string) ([]*entity.Equipment, error)
	SoftDelete(ctx context.Context, id string) error
}
