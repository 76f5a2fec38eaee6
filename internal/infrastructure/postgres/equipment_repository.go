package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

var _ repository.EquipmentRepository = (*EquipmentRepo)(nil)

const equipmentColumns = `id, client_id, serial, brand, model, description, is_active, created_at, updated_at`

// EquipmentRepo implementación sobre PostgreSQL.
type EquipmentRepo struct {
	q Querier
}

func NewEquipmentRepository(q Querier) *EquipmentRepo {
	return &EquipmentRepo{q: q}
}

func (r *EquipmentRepo) Create(ctx context.Context, eq *entity.Equipment) error {
	query := `
		INSERT INTO equipment (` + equipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		eq.ID, eq.ClientID, eq.Serial, eq.Brand, eq.Model, eq.Description, eq.IsActive, eq.CreatedAt, eq.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// GetByID obtiene un equipo por ID. Devuelve nil si no existe.
func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (*entity.Equipment, error) {
	var eq entity.Equipment
	err := r.q.QueryRow(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id).Scan(
		&eq.ID, &eq.ClientID, &eq.Serial, &eq.Brand, &eq.Model, &eq.Description, &eq.IsActive, &eq.CreatedAt, &eq.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return &eq, nil
}

func (r *EquipmentRepo) Update(ctx context.Context, eq *entity.Equipment) error {
	query := `
		UPDATE equipment SET serial = $2, brand = $3, model = $4, description = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, eq.ID, eq.Serial, eq.Brand, eq.Model, eq.Description, eq.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return nil
}

// ListByClient lista los equipos activos de un cliente.
func (r *EquipmentRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE client_id = $1 AND is_active = true ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	var list []*entity.Equipment
	for rows.Next() {
		var eq entity.Equipment
		if err := rows.Scan(&eq.ID, &eq.ClientID, &eq.Serial, &eq.Brand, &eq.Model, &eq.Description, &eq.IsActive, &eq.CreatedAt, &eq.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		list = append(list, &eq)
	}
	return list, rows.Err()
}

func (r *EquipmentRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE equipment SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete equipment: %w", err)
	}
	return nil
}
