package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Uso permitido de un repuesto: restringe qué movimientos de stock acepta.
const (
	UsageTypeSale    = "SALE"    // solo venta
	UsageTypeService = "SERVICE" // solo consumo en órdenes de servicio
	UsageTypeBoth    = "BOTH"    // ambos
)

// Part repuesto del inventario. StockQuantity es el saldo autoritativo y nunca
// puede quedar negativo; solo lo muta el libro de movimientos (application/stock).
type Part struct {
	ID            string
	SKU           string // único
	Name          string
	Description   string
	UsageType     string // SALE, SERVICE, BOTH
	StockQuantity int    // saldo corriente, siempre >= 0
	MinStock      int    // umbral informativo de reposición
	MaxStock      int    // umbral informativo
	UnitPrice     decimal.Decimal
	UnitCost      decimal.Decimal
	IsActive      bool // soft-delete
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidUsageType indica si el valor es un uso reconocido.
func ValidUsageType(u string) bool {
	switch u {
	case UsageTypeSale, UsageTypeService, UsageTypeBoth:
		return true
	}
	return false
}

// AcceptsStockType indica si el repuesto acepta movimientos clasificados con el
// tipo de stock dado (segregación por uso: SALE rechaza SERVICE y viceversa).
func (p *Part) AcceptsStockType(stockType string) bool {
	switch p.UsageType {
	case UsageTypeSale:
		return stockType == StockTypeSales
	case UsageTypeService:
		return stockType == StockTypeService
	case UsageTypeBoth:
		return stockType == StockTypeSales || stockType == StockTypeService
	}
	return false
}

// BelowMinStock indica si el saldo está bajo el umbral de reposición.
func (p *Part) BelowMinStock() bool {
	return p.MinStock > 0 && p.StockQuantity < p.MinStock
}
