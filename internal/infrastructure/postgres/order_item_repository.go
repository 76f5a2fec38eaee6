package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

var _ repository.OrderItemRepository = (*OrderItemRepo)(nil)

const itemColumns = `id, order_id, kind, part_id, service_id, description, quantity, unit_price, created_at`

// OrderItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type OrderItemRepo struct {
	q Querier
}

// NewOrderItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderItemRepository(q Querier) *OrderItemRepo {
	return &OrderItemRepo{q: q}
}

// Create persiste una línea de orden.
func (r *OrderItemRepo) Create(ctx context.Context, it *entity.ServiceOrderItem) error {
	query := `
		INSERT INTO service_order_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.OrderID, it.Kind, nilIfEmpty(it.PartID), nilIfEmpty(it.ServiceID),
		it.Description, it.Quantity, it.UnitPrice, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

// GetByID obtiene una línea por ID. Devuelve nil si no existe.
func (r *OrderItemRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM service_order_items WHERE id = $1`
	var it entity.ServiceOrderItem
	var partID, serviceID *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.OrderID, &it.Kind, &partID, &serviceID,
		&it.Description, &it.Quantity, &it.UnitPrice, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if partID != nil {
		it.PartID = *partID
	}
	if serviceID != nil {
		it.ServiceID = *serviceID
	}
	return &it, nil
}

// ListByOrder lista las líneas de una orden en orden de creación.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.ServiceOrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM service_order_items WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var list []*entity.ServiceOrderItem
	for rows.Next() {
		var it entity.ServiceOrderItem
		var partID, serviceID *string
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.Kind, &partID, &serviceID,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if partID != nil {
			it.PartID = *partID
		}
		if serviceID != nil {
			it.ServiceID = *serviceID
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Delete elimina una línea de orden.
func (r *OrderItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM service_order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	return nil
}
