package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
)

// Prioridad de la orden.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Tipo de servicio de la orden.
const (
	OrderTypeCorrective = "CORRECTIVE"
	OrderTypePreventive = "PREVENTIVE"
	OrderTypeWarranty   = "WARRANTY"
)

// ServiceOrder orden de servicio (ticket de reparación/mantenimiento).
// Nunca se borra físicamente: la cancelación es un estado, no una eliminación.
type ServiceOrder struct {
	ID             string
	Code           string // único, generado (OS-000123)
	Status         workflow.Status
	Priority       string
	Type           string // CORRECTIVE, PREVENTIVE, WARRANTY
	ClientID       string // obligatorio
	EquipmentID    string // opcional
	TechnicianID   string // opcional hasta la asignación
	ReportedDefect string
	Diagnosis      string
	ScheduledAt    *time.Time
	FinishedAt     *time.Time // se fija al entrar a FINISHED, se limpia al reabrir
	Total          decimal.Decimal
	TotalParts     decimal.Decimal
	TotalServices  decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidPriority indica si el valor es una prioridad reconocida.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidOrderType indica si el valor es un tipo de orden reconocido.
func ValidOrderType(t string) bool {
	switch t {
	case OrderTypeCorrective, OrderTypePreventive, OrderTypeWarranty:
		return true
	}
	return false
}

// ItemsMutable indica si las líneas (repuestos/servicios) de la orden todavía
// pueden modificarse: solo antes de terminar y mientras no esté en un estado final.
func (o *ServiceOrder) ItemsMutable() bool {
	switch o.Status {
	case workflow.StatusFinished, workflow.StatusInvoiced, workflow.StatusCanceled,
		workflow.StatusDispatched, workflow.StatusScrapped, workflow.StatusAbandoned:
		return false
	}
	return true
}
