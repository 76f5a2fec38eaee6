package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// ApplyMovementRequest cuerpo para registrar un movimiento de stock manual.
type ApplyMovementRequest struct {
	PartID         string           `json:"part_id"`
	Type           string           `json:"type"`       // IN, OUT
	Quantity       int              `json:"quantity"`   // positivo
	StockType      string           `json:"stock_type"` // SALES, SERVICE
	Reason         string           `json:"reason"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ServiceOrderID string           `json:"service_order_id,omitempty"`
}

// Validate valida el request antes de construir el comando del caso de uso.
func (r *ApplyMovementRequest) Validate() error {
	if r.PartID == "" || r.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if r.Type != entity.MovementTypeIN && r.Type != entity.MovementTypeOUT {
		return domain.ErrInvalidInput
	}
	if r.StockType != entity.StockTypeSales && r.StockType != entity.StockTypeService {
		return domain.ErrInvalidInput
	}
	if r.Reason == "" {
		r.Reason = entity.ReasonManualAdjustment
	}
	return nil
}

// ApplyMovementResponse resultado de registrar un movimiento.
type ApplyMovementResponse struct {
	MovementID string `json:"movement_id"`
	NewBalance int    `json:"new_balance"`
}

// MovementResponse representación de un movimiento en el historial.
type MovementResponse struct {
	ID             string           `json:"id"`
	PartID         string           `json:"part_id"`
	Type           string           `json:"type"`
	Quantity       int              `json:"quantity"`
	StockType      string           `json:"stock_type"`
	Reason         string           `json:"reason"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ServiceOrderID string           `json:"service_order_id,omitempty"`
	UserID         string           `json:"user_id"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		PartID:         m.PartID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		StockType:      m.StockType,
		Reason:         m.Reason,
		UnitCost:       m.UnitCost,
		ServiceOrderID: m.ServiceOrderID,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
	}
}
