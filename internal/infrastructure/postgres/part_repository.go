package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, sku, name, description, usage_type, stock_quantity,
	min_stock, max_stock, unit_price, unit_cost, is_active, created_at, updated_at`

// PartRepo implementación de PartRepository sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

// Create persiste un repuesto nuevo. Violación de SKU único -> domain.ConflictError.
func (r *PartRepo) Create(ctx context.Context, p *entity.Part) error {
	query := `
		INSERT INTO parts (` + partColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.UsageType, p.StockQuantity,
		p.MinStock, p.MaxStock, p.UnitPrice, p.UnitCost, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapConflict(err, "sku")
		}
		return fmt.Errorf("create part: %w", err)
	}
	return nil
}

// GetByID obtiene un repuesto por ID. Devuelve nil si no existe.
func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetBySKU obtiene un repuesto por SKU. Devuelve nil si no existe.
func (r *PartRepo) GetBySKU(ctx context.Context, sku string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE sku = $1`
	return r.scanOne(ctx, query, sku)
}

// GetForUpdate obtiene el repuesto y bloquea la fila (SELECT FOR UPDATE) para
// serializar movimientos concurrentes sobre el mismo saldo.
func (r *PartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

// Update actualiza los campos editables (no el saldo).
func (r *PartRepo) Update(ctx context.Context, p *entity.Part) error {
	query := `
		UPDATE parts SET name = $2, description = $3, usage_type = $4, min_stock = $5,
			max_stock = $6, unit_price = $7, unit_cost = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.UsageType, p.MinStock,
		p.MaxStock, p.UnitPrice, p.UnitCost, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	return nil
}

// UpdateStockQuantity fija el saldo corriente. Solo se llama con la fila bloqueada,
// dentro de la transacción del libro de movimientos.
func (r *PartRepo) UpdateStockQuantity(ctx context.Context, id string, quantity int) error {
	query := `UPDATE parts SET stock_quantity = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("update stock quantity: %w", err)
	}
	return nil
}

// List lista repuestos con paginación.
func (r *PartRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts`
	if onlyActive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	return scanParts(rows)
}

// ListBelowMinStock lista repuestos activos con saldo bajo el umbral de reposición.
func (r *PartRepo) ListBelowMinStock(ctx context.Context) ([]*entity.Part, error) {
	query := `SELECT ` + partColumns + `
		FROM parts WHERE is_active = true AND min_stock > 0 AND stock_quantity < min_stock
		ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below min stock: %w", err)
	}
	defer rows.Close()
	return scanParts(rows)
}

// HasHistory indica si el repuesto tiene movimientos o líneas de orden asociadas.
func (r *PartRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_movements WHERE part_id = $1)
			OR EXISTS (SELECT 1 FROM service_order_items WHERE part_id = $1)`
	var has bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&has); err != nil {
		return false, fmt.Errorf("part has history: %w", err)
	}
	return has, nil
}

// SoftDelete desactiva el repuesto preservando su historial.
func (r *PartRepo) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE parts SET is_active = false, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete part: %w", err)
	}
	return nil
}

// HardDelete elimina físicamente un repuesto sin historial.
func (r *PartRepo) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM parts WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard delete part: %w", err)
	}
	return nil
}

func (r *PartRepo) scanOne(ctx context.Context, query string, arg any) (*entity.Part, error) {
	var p entity.Part
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.UsageType, &p.StockQuantity,
		&p.MinStock, &p.MaxStock, &p.UnitPrice, &p.UnitCost, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return &p, nil
}

func scanParts(rows pgx.Rows) ([]*entity.Part, error) {
	var list []*entity.Part
	for rows.Next() {
		var p entity.Part
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Description, &p.UsageType, &p.StockQuantity,
			&p.MinStock, &p.MaxStock, &p.UnitPrice, &p.UnitCost, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
