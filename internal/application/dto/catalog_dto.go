package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// CreateCatalogServiceRequest alta de servicio del catálogo.
type CreateCatalogServiceRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// Validate valida el alta de servicio.
func (r *CreateCatalogServiceRequest) Validate() error {
	if r.Name == "" || r.Price.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// CatalogServiceResponse representación de un servicio del catálogo.
type CatalogServiceResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToCatalogServiceResponse convierte la entidad al DTO de salida.
func ToCatalogServiceResponse(s *entity.CatalogService) *CatalogServiceResponse {
	return &CatalogServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}
