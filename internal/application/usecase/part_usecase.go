package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/servitec-api/internal/application/archive"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/pkg/textutil"
)

// PartUseCase CRUD de repuestos. El saldo de stock no se toca por aquí:
// solo el libro de movimientos (application/stock) lo muta.
type PartUseCase struct {
	repo     repository.PartRepository
	archiver *archive.Archiver
}

// NewPartUseCase construye el caso de uso.
func NewPartUseCase(repo repository.PartRepository, archiver *archive.Archiver) *PartUseCase {
	return &PartUseCase{repo: repo, archiver: archiver}
}

// Create crea un repuesto con saldo cero. Devuelve ConflictError si el SKU ya existe.
func (uc *PartUseCase) Create(ctx context.Context, in dto.CreatePartRequest) (*dto.PartResponse, error) {
	existing, _ := uc.repo.GetBySKU(ctx, in.SKU)
	if existing != nil {
		return nil, &domain.ConflictError{Field: "sku"}
	}
	now := time.Now()
	part := &entity.Part{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		UsageType:     in.UsageType,
		StockQuantity: 0,
		MinStock:      in.MinStock,
		MaxStock:      in.MaxStock,
		UnitPrice:     in.UnitPrice,
		UnitCost:      in.UnitCost,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, part); err != nil {
		return nil, err
	}
	return dto.ToPartResponse(part), nil
}

// GetByID obtiene un repuesto por ID.
func (uc *PartUseCase) GetByID(ctx context.Context, id string) (*dto.PartResponse, error) {
	part, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToPartResponse(part), nil
}

// Update actualiza los campos editables de un repuesto.
func (uc *PartUseCase) Update(ctx context.Context, id string, in dto.UpdatePartRequest) (*dto.PartResponse, error) {
	part, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		part.Name = *in.Name
	}
	if in.Description != nil {
		part.Description = *in.Description
	}
	if in.UsageType != nil {
		if !entity.ValidUsageType(*in.UsageType) {
			return nil, domain.ErrInvalidInput
		}
		part.UsageType = *in.UsageType
	}
	if in.MinStock != nil {
		part.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		part.MaxStock = *in.MaxStock
	}
	if in.UnitPrice != nil {
		part.UnitPrice = *in.UnitPrice
	}
	if in.UnitCost != nil {
		part.UnitCost = *in.UnitCost
	}
	part.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, part); err != nil {
		return nil, err
	}
	return dto.ToPartResponse(part), nil
}

// List lista repuestos con paginación y filtro opcional por nombre/SKU
// (búsqueda insensible a mayúsculas y tildes).
func (uc *PartUseCase) List(ctx context.Context, search string, onlyActive bool, limit, offset int) ([]*dto.PartResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PartResponse, 0, len(list))
	for _, p := range list {
		if search != "" && !textutil.ContainsFold(p.Name, search) && !textutil.ContainsFold(p.SKU, search) {
			continue
		}
		out = append(out, dto.ToPartResponse(p))
	}
	return out, nil
}

// LowStock lista los repuestos activos por debajo de su stock mínimo.
func (uc *PartUseCase) LowStock(ctx context.Context) ([]*dto.PartResponse, error) {
	list, err := uc.repo.ListBelowMinStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PartResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ToPartResponse(p))
	}
	return out, nil
}

// Retire retira un repuesto: soft delete si tiene movimientos o líneas de orden
// (el libro jamás queda con claves huérfanas), borrado físico si no.
func (uc *PartUseCase) Retire(ctx context.Context, id string) (archive.Outcome, error) {
	part, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if part == nil {
		return "", domain.ErrNotFound
	}
	return uc.archiver.Retire(ctx, uc.repo, "part", id)
}
