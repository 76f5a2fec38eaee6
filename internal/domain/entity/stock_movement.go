package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Clasificación comercial del movimiento (no es un saldo).
const (
	StockTypeSales   = "SALES"
	StockTypeService = "SERVICE"
)

// Motivos conocidos. Reason admite texto libre; estos son los tags usados por la app.
const (
	ReasonManualAdjustment = "MANUAL_ADJUSTMENT"
	ReasonInitialLoad      = "INITIAL_LOAD"
	ReasonOrderConsumption = "ORDER_CONSUMPTION"
	ReasonOrderReturn      = "ORDER_RETURN"
	ReasonPurchase         = "PURCHASE"
)

// StockMovement entrada inmutable del libro de movimientos. Se crea únicamente
// desde el caso de uso de stock, nunca se actualiza ni se borra (auditoría).
type StockMovement struct {
	ID             string
	PartID         string
	Type           string // IN, OUT
	Quantity       int    // siempre positivo; el signo lo da Type
	StockType      string // SALES, SERVICE
	Reason         string
	UnitCost       *decimal.Decimal // opcional, entradas con costo conocido
	ServiceOrderID string           // opcional, orden que causó el movimiento
	UserID         string           // actor
	CreatedAt      time.Time
}

// Signed devuelve la cantidad con signo según el tipo (IN positivo, OUT negativo).
func (m *StockMovement) Signed() int {
	if m.Type == MovementTypeOUT {
		return -m.Quantity
	}
	return m.Quantity
}
