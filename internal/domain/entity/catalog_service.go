package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogService servicio de mano de obra ofrecido (diagnóstico, mantenimiento, etc.).
// Las líneas de una orden pueden referenciarlo en lugar de un repuesto.
type CatalogService struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
