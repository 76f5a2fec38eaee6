package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, part_id, type, quantity, stock_type, reason,
	unit_cost, service_order_id, user_id, created_at`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Solo inserta y consulta: el libro es inmutable.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del libro.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	orderID := (*string)(nil)
	if m.ServiceOrderID != "" {
		orderID = &m.ServiceOrderID
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.PartID, m.Type, m.Quantity, m.StockType, m.Reason,
		m.UnitCost, orderID, m.UserID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	var orderID *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.PartID, &m.Type, &m.Quantity, &m.StockType, &m.Reason,
		&m.UnitCost, &orderID, &m.UserID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	if orderID != nil {
		m.ServiceOrderID = *orderID
	}
	return &m, nil
}

// ListByPart lista movimientos de un repuesto en orden cronológico inverso,
// con rango de fechas opcional.
func (r *StockMovementRepo) ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE part_id = $1`
	args := []any{partID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by part: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByOrder lista los movimientos causados por una orden de servicio.
func (r *StockMovementRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE service_order_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list movements by order: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// SignedSum devuelve Σ(IN) − Σ(OUT) de todos los movimientos del repuesto.
func (r *StockMovementRepo) SignedSum(ctx context.Context, partID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE part_id = $1`
	var sum int
	if err := r.q.QueryRow(ctx, query, partID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("signed sum: %w", err)
	}
	return sum, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var orderID *string
		if err := rows.Scan(
			&m.ID, &m.PartID, &m.Type, &m.Quantity, &m.StockType, &m.Reason,
			&m.UnitCost, &orderID, &m.UserID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if orderID != nil {
			m.ServiceOrderID = *orderID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
