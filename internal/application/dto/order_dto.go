package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// CreateOrderRequest intake de una orden de servicio.
type CreateOrderRequest struct {
	ClientID       string     `json:"client_id"`
	EquipmentID    string     `json:"equipment_id,omitempty"`
	TechnicianID   string     `json:"technician_id,omitempty"`
	Priority       string     `json:"priority"`
	Type           string     `json:"type"`
	ReportedDefect string     `json:"reported_defect"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
}

// Validate valida el intake antes de construir el comando.
func (r *CreateOrderRequest) Validate() error {
	if r.ClientID == "" || r.ReportedDefect == "" {
		return domain.ErrInvalidInput
	}
	if r.Priority == "" {
		r.Priority = entity.PriorityMedium
	}
	if !entity.ValidPriority(r.Priority) {
		return domain.ErrInvalidInput
	}
	if r.Type == "" {
		r.Type = entity.OrderTypeCorrective
	}
	if !entity.ValidOrderType(r.Type) {
		return domain.ErrInvalidInput
	}
	return nil
}

// TransitionRequest cambio de estado de una orden.
type TransitionRequest struct {
	Target string `json:"target"` // estado destino
	// RestockParts solo aplica al cancelar: genera movimientos IN compensatorios
	// (ORDER_RETURN) por cada repuesto consumido, en la misma transacción.
	RestockParts bool `json:"restock_parts,omitempty"`
}

// Validate valida el request de transición.
func (r *TransitionRequest) Validate() error {
	if r.Target == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// AddItemRequest agrega una línea (repuesto o servicio) a la orden.
// Exactamente uno de PartID/ServiceID debe venir informado.
type AddItemRequest struct {
	PartID    string           `json:"part_id,omitempty"`
	ServiceID string           `json:"service_id,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // vacío = precio de catálogo
}

// Validate valida la línea.
func (r *AddItemRequest) Validate() error {
	if r.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if (r.PartID == "") == (r.ServiceID == "") {
		return domain.ErrInvalidInput
	}
	if r.UnitPrice != nil && r.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// OrderItemResponse línea de la orden.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	PartID      string          `json:"part_id,omitempty"`
	ServiceID   string          `json:"service_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse representación de una orden de servicio.
type OrderResponse struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	Status         string              `json:"status"`
	Priority       string              `json:"priority"`
	Type           string              `json:"type"`
	ClientID       string              `json:"client_id"`
	EquipmentID    string              `json:"equipment_id,omitempty"`
	TechnicianID   string              `json:"technician_id,omitempty"`
	ReportedDefect string              `json:"reported_defect"`
	Diagnosis      string              `json:"diagnosis,omitempty"`
	ScheduledAt    *time.Time          `json:"scheduled_at,omitempty"`
	FinishedAt     *time.Time          `json:"finished_at,omitempty"`
	Total          decimal.Decimal     `json:"total"`
	TotalParts     decimal.Decimal     `json:"total_parts"`
	TotalServices  decimal.Decimal     `json:"total_services"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ToOrderResponse convierte la entidad al DTO de salida.
func ToOrderResponse(o *entity.ServiceOrder, items []*entity.ServiceOrderItem) *OrderResponse {
	resp := &OrderResponse{
		ID:             o.ID,
		Code:           o.Code,
		Status:         string(o.Status),
		Priority:       o.Priority,
		Type:           o.Type,
		ClientID:       o.ClientID,
		EquipmentID:    o.EquipmentID,
		TechnicianID:   o.TechnicianID,
		ReportedDefect: o.ReportedDefect,
		Diagnosis:      o.Diagnosis,
		ScheduledAt:    o.ScheduledAt,
		FinishedAt:     o.FinishedAt,
		Total:          o.Total,
		TotalParts:     o.TotalParts,
		TotalServices:  o.TotalServices,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, ToOrderItemResponse(it))
	}
	return resp
}

// ToOrderItemResponse convierte una línea al DTO de salida.
func ToOrderItemResponse(it *entity.ServiceOrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          it.ID,
		Kind:        it.Kind,
		PartID:      it.PartID,
		ServiceID:   it.ServiceID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Subtotal:    it.Subtotal(),
	}
}
