package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// ClientRepository puerto de persistencia para clientes.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByDocument(ctx context.Context, document string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Client, error)
	// HasHistory indica si el cliente tiene órdenes o equipos asociados.
	HasHistory(ctx context.Context, id string) (bool, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}
