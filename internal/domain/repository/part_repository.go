package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// PartRepository puerto de persistencia para repuestos.
// La cantidad en stock solo se muta dentro de transacciones del libro de stock.
type PartRepository interface {
	Create(ctx context.Context, part *entity.Part) error
	GetByID(ctx context.Context, id string) (*entity.Part, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Part, error)
	// GetForUpdate bloquea la fila del repuesto (SELECT FOR UPDATE) para serializar
	// movimientos concurrentes sobre el mismo saldo.
	GetForUpdate(ctx context.Context, id string) (*entity.Part, error)
	Update(ctx context.Context, part *entity.Part) error
	UpdateStockQuantity(ctx context.Context, id string, quantity int) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Part, error)
	ListBelowMinStock(ctx context.Context) ([]*entity.Part, error)
	// HasHistory indica si el repuesto tiene movimientos o líneas de orden asociadas.
	HasHistory(ctx context.Context, id string) (bool, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}
