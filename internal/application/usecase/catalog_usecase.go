package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

// CatalogUseCase CRUD del catálogo de servicios de mano de obra.
type CatalogUseCase struct {
	repo repository.CatalogServiceRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(repo repository.CatalogServiceRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

// Create crea un servicio del catálogo.
func (uc *CatalogUseCase) Create(ctx context.Context, in dto.CreateCatalogServiceRequest) (*dto.CatalogServiceResponse, error) {
	now := time.Now()
	svc := &entity.CatalogService{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return dto.ToCatalogServiceResponse(svc), nil
}

// List lista servicios del catálogo.
func (uc *CatalogUseCase) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*dto.CatalogServiceResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CatalogServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ToCatalogServiceResponse(s))
	}
	return out, nil
}

// Deactivate desactiva un servicio del catálogo (las líneas históricas lo conservan).
func (uc *CatalogUseCase) Deactivate(ctx context.Context, id string) error {
	svc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if svc == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SoftDelete(ctx, id)
}
