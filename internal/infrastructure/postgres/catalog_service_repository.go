package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

var _ repository.CatalogServiceRepository = (*CatalogServiceRepo)(nil)

const catalogColumns = `id, name, description, price, is_active, created_at, updated_at`

// CatalogServiceRepo implementación sobre PostgreSQL.
type CatalogServiceRepo struct {
	q Querier
}

func NewCatalogServiceRepository(q Querier) *CatalogServiceRepo {
	return &CatalogServiceRepo{q: q}
}

func (r *CatalogServiceRepo) Create(ctx context.Context, svc *entity.CatalogService) error {
	query := `
		INSERT INTO catalog_services (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		svc.ID, svc.Name, svc.Description, svc.Price, svc.IsActive, svc.CreatedAt, svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create catalog service: %w", err)
	}
	return nil
}

// GetByID obtiene un servicio del catálogo. Devuelve nil si no existe.
func (r *CatalogServiceRepo) GetByID(ctx context.Context, id string) (*entity.CatalogService, error) {
	var svc entity.CatalogService
	err := r.q.QueryRow(ctx, `SELECT `+catalogColumns+` FROM catalog_services WHERE id = $1`, id).Scan(
		&svc.ID, &svc.Name, &svc.Description, &svc.Price, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog service: %w", err)
	}
	return &svc, nil
}

func (r *CatalogServiceRepo) Update(ctx context.Context, svc *entity.CatalogService) error {
	query := `
		UPDATE catalog_services SET name = $2, description = $3, price = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, svc.ID, svc.Name, svc.Description, svc.Price, svc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update catalog service: %w", err)
	}
	return nil
}

func (r *CatalogServiceRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.CatalogService, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_services`
	if onlyActive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list catalog services: %w", err)
	}
	defer rows.Close()

	var list []*entity.CatalogService
	for rows.Next() {
		var svc entity.CatalogService
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Price, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan catalog service: %w", err)
		}
		list = append(list, &svc)
	}
	return list, rows.Err()
}

func (r *CatalogServiceRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE catalog_services SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete catalog service: %w", err)
	}
	return nil
}
