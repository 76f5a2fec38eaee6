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

// ClientUseCase CRUD de clientes.
type ClientUseCase struct {
	repo      repository.ClientRepository
	orderRepo repository.ServiceOrderRepository
	archiver  *archive.Archiver
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(
	repo repository.ClientRepository,
	orderRepo repository.ServiceOrderRepository,
	archiver *archive.Archiver,
) *ClientUseCase {
	return &ClientUseCase{repo: repo, orderRepo: orderRepo, archiver: archiver}
}

// Create crea un cliente. Devuelve ConflictError si el documento ya existe.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	existing, _ := uc.repo.GetByDocument(ctx, in.Document)
	if existing != nil {
		return nil, &domain.ConflictError{Field: "document"}
	}
	now := time.Now()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Document:  in.Document,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return dto.ToClientResponse(client), nil
}

// GetByID obtiene un cliente por ID.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToClientResponse(client), nil
}

// Update actualiza los datos de contacto de un cliente.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Address != nil {
		client.Address = *in.Address
	}
	client.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return dto.ToClientResponse(client), nil
}

// List lista clientes con búsqueda insensible a mayúsculas y tildes por nombre o documento.
func (uc *ClientUseCase) List(ctx context.Context, search string, onlyActive bool, limit, offset int) ([]*dto.ClientResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		if search != "" && !textutil.ContainsFold(c.Name, search) && !textutil.ContainsFold(c.Document, search) {
			continue
		}
		out = append(out, dto.ToClientResponse(c))
	}
	return out, nil
}

// Retire retira un cliente. Un cliente con órdenes abiertas (no terminales) no
// puede retirarse; con historial cerrado se archiva, sin historial se borra.
func (uc *ClientUseCase) Retire(ctx context.Context, id string) (archive.Outcome, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if client == nil {
		return "", domain.ErrNotFound
	}
	open, err := uc.orderRepo.CountOpenByClient(ctx, id)
	if err != nil {
		return "", err
	}
	if open > 0 {
		return "", &domain.PolicyError{Reason: "el cliente tiene órdenes de servicio abiertas"}
	}
	return uc.archiver.Retire(ctx, uc.repo, "client", id)
}
