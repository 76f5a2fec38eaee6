package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// CreatePartRequest alta de repuesto. El stock inicial se carga con un movimiento
// INITIAL_LOAD, no por este request.
type CreatePartRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UsageType   string          `json:"usage_type"` // SALE, SERVICE, BOTH
	MinStock    int             `json:"min_stock"`
	MaxStock    int             `json:"max_stock"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Validate valida el alta de repuesto.
func (r *CreatePartRequest) Validate() error {
	if r.SKU == "" || r.Name == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidUsageType(r.UsageType) {
		return domain.ErrInvalidInput
	}
	if r.MinStock < 0 || r.MaxStock < 0 || (r.MaxStock > 0 && r.MaxStock < r.MinStock) {
		return domain.ErrInvalidInput
	}
	if r.UnitPrice.IsNegative() || r.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// UpdatePartRequest actualización parcial de repuesto. StockQuantity no se toca
// por aquí: solo el libro de movimientos muta el saldo.
type UpdatePartRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	UsageType   *string          `json:"usage_type,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	MaxStock    *int             `json:"max_stock,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// PartResponse representación de un repuesto.
type PartResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	UsageType     string          `json:"usage_type"`
	StockQuantity int             `json:"stock_quantity"`
	MinStock      int             `json:"min_stock"`
	MaxStock      int             `json:"max_stock"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	IsActive      bool            `json:"is_active"`
	BelowMinStock bool            `json:"below_min_stock"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPartResponse convierte la entidad al DTO de salida.
func ToPartResponse(p *entity.Part) *PartResponse {
	return &PartResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		UsageType:     p.UsageType,
		StockQuantity: p.StockQuantity,
		MinStock:      p.MinStock,
		MaxStock:      p.MaxStock,
		UnitPrice:     p.UnitPrice,
		UnitCost:      p.UnitCost,
		IsActive:      p.IsActive,
		BelowMinStock: p.BelowMinStock(),
		CreatedAt:     p.CreatedAt,
	}
}
