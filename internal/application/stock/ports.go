package stock

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que la entrada del libro y la actualización del saldo
// se confirmen juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error) error
}
