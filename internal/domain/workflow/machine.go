package workflow

import "github.com/tu-usuario/servitec-api/internal/domain"

// Status estado de una orden de servicio.
type Status string

// Estados del ciclo de vida de una orden de servicio.
const (
	StatusOpen              Status = "OPEN"
	StatusInAnalysis        Status = "IN_ANALYSIS"
	StatusPricing           Status = "PRICING"
	StatusWaitingApproval   Status = "WAITING_APPROVAL"
	StatusNegotiating       Status = "NEGOTIATING"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusWaitingParts      Status = "WAITING_PARTS"
	StatusPaused            Status = "PAUSED"
	StatusTesting           Status = "TESTING"
	StatusRework            Status = "REWORK"
	StatusFinished          Status = "FINISHED"
	StatusInvoiced          Status = "INVOICED"
	StatusWaitingCollection Status = "WAITING_COLLECTION"
	StatusWaitingPickup     Status = "WAITING_PICKUP"
	StatusDispatched        Status = "DISPATCHED"
	StatusScrapped          Status = "SCRAPPED"
	StatusAbandoned         Status = "ABANDONED"
	StatusWarrantyReturn    Status = "WARRANTY_RETURN"
	StatusCanceled          Status = "CANCELED"
)

// StatusInitial estado inicial de toda orden.
const StatusInitial = StatusOpen

// Table tabla de adyacencia: para cada estado, los destinos legales.
type Table map[Status][]Status

// DefaultTable devuelve la tabla de transiciones de la aplicación.
// Regla general: los estados comerciales desembocan en APPROVED/REJECTED,
// los de ejecución en FINISHED, y FINISHED abre la logística post-entrega.
// Reaperturas explícitas: REJECTED->OPEN, FINISHED->OPEN, ABANDONED->OPEN.
func DefaultTable() Table {
	return Table{
		StatusOpen:            {StatusInAnalysis, StatusCanceled},
		StatusInAnalysis:      {StatusPricing, StatusWaitingApproval, StatusInProgress, StatusCanceled},
		StatusPricing:         {StatusWaitingApproval, StatusNegotiating, StatusCanceled},
		StatusNegotiating:     {StatusWaitingApproval, StatusApproved, StatusRejected, StatusCanceled},
		StatusWaitingApproval: {StatusApproved, StatusRejected, StatusNegotiating, StatusCanceled},
		StatusApproved:        {StatusInProgress, StatusCanceled},
		StatusRejected:        {StatusCanceled, StatusOpen},
		StatusInProgress:      {StatusWaitingParts, StatusPaused, StatusTesting, StatusFinished, StatusCanceled},
		StatusWaitingParts:    {StatusInProgress, StatusCanceled},
		StatusPaused:          {StatusInProgress, StatusCanceled},
		StatusTesting:         {StatusRework, StatusFinished, StatusCanceled},
		StatusRework:          {StatusInProgress, StatusCanceled},
		StatusFinished: {
			StatusInvoiced, StatusWaitingCollection, StatusWaitingPickup,
			StatusWarrantyReturn, StatusOpen,
		},
		StatusWaitingCollection: {StatusDispatched, StatusAbandoned, StatusCanceled},
		StatusWaitingPickup:     {StatusDispatched, StatusAbandoned, StatusCanceled},
		StatusWarrantyReturn:    {StatusInProgress, StatusCanceled},
		StatusAbandoned:         {StatusScrapped, StatusOpen},
		// Terminales: sin salidas.
		StatusInvoiced:   {},
		StatusDispatched: {},
		StatusScrapped:   {},
		StatusCanceled:   {},
	}
}

// Machine valida transiciones contra una tabla de adyacencia.
type Machine struct {
	table Table
}

// NewMachine construye el motor con la tabla dada (usar DefaultTable() en producción).
func NewMachine(table Table) *Machine {
	return &Machine{table: table}
}

// Known indica si el estado existe en la tabla.
func (m *Machine) Known(s Status) bool {
	_, ok := m.table[s]
	return ok
}

// CanTransition indica si from -> to está en la tabla.
func (m *Machine) CanTransition(from, to Status) bool {
	for _, next := range m.table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition valida from -> to y devuelve ErrIllegalTransition si no es legal.
func (m *Machine) Transition(from, to Status) error {
	if !m.Known(from) || !m.Known(to) {
		return domain.ErrIllegalTransition
	}
	if !m.CanTransition(from, to) {
		return domain.ErrIllegalTransition
	}
	return nil
}

// Terminal indica si el estado no tiene salidas (fin del flujo normal).
func (m *Machine) Terminal(s Status) bool {
	return m.Known(s) && len(m.table[s]) == 0
}

// Next devuelve los destinos legales desde un estado.
func (m *Machine) Next(from Status) []Status {
	next := m.table[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// States devuelve todos los estados conocidos por la tabla (orden no garantizado).
func (m *Machine) States() []Status {
	out := make([]Status, 0, len(m.table))
	for s := range m.table {
		out = append(out, s)
	}
	return out
}
