package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del libro de movimientos.
// Solo inserta y consulta: las entradas son inmutables (no hay Update ni Delete).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByPart devuelve movimientos en orden cronológico inverso.
	ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StockMovement, error)
	// SignedSum devuelve Σ(IN) − Σ(OUT) de todos los movimientos del repuesto.
	SignedSum(ctx context.Context, partID string) (int, error)
}
