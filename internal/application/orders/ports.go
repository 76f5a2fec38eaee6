package orders

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los repositorios
// de órdenes y de stock atados a esa tx. El cambio de estado, las líneas y los
// movimientos de stock dependientes confirman juntos o ninguno.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.ServiceOrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error) error
}
