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

// EquipmentUseCase CRUD de equipos de clientes.
type EquipmentUseCase struct {
	repo       repository.EquipmentRepository
	clientRepo repository.ClientRepository
}

// NewEquipmentUseCase construye el caso de uso.
func NewEquipmentUseCase(repo repository.EquipmentRepository, clientRepo repository.ClientRepository) *EquipmentUseCase {
	return &EquipmentUseCase{repo: repo, clientRepo: clientRepo}
}

// Create registra un equipo para un cliente existente.
func (uc *EquipmentUseCase) Create(ctx context.Context, in dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsActive {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	eq := &entity.Equipment{
		ID:          uuid.New().String(),
		ClientID:    in.ClientID,
		Serial:      in.Serial,
		Brand:       in.Brand,
		Model:       in.Model,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, eq); err != nil {
		return nil, err
	}
	return dto.ToEquipmentResponse(eq), nil
}

// GetByID obtiene un equipo por ID.
func (uc *EquipmentUseCase) GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	eq, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToEquipmentResponse(eq), nil
}

// ListByClient lista los equipos de un cliente.
func (uc *EquipmentUseCase) ListByClient(ctx context.Context, clientID string) ([]*dto.EquipmentResponse, error) {
	list, err := uc.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EquipmentResponse, 0, len(list))
	for _, eq := range list {
		out = append(out, dto.ToEquipmentResponse(eq))
	}
	return out, nil
}
