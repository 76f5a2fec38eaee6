package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// CatalogServiceRepository puerto de persistencia para el catálogo de servicios.
type CatalogServiceRepository interface {
	Create(ctx context.Context, svc *entity.CatalogService) error
	GetByID(ctx context.Context, id string) (*entity.CatalogService, error)
	Update(ctx context.Context, svc *entity.CatalogService) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.CatalogService, error)
	SoftDelete(ctx context.Context, id string) error
}
