package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de línea de una orden de servicio.
const (
	ItemKindPart    = "PART"
	ItemKindService = "SERVICE"
)

// ServiceOrderItem línea de consumo de una orden: un repuesto o un servicio,
// con precio unitario congelado al momento del uso.
type ServiceOrderItem struct {
	ID          string
	OrderID     string
	Kind        string // PART, SERVICE
	PartID      string // si Kind == PART
	ServiceID   string // si Kind == SERVICE
	Description string // snapshot del nombre al momento de agregar
	Quantity    int    // positivo
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

// Subtotal devuelve quantity × unitPrice.
func (i *ServiceOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
