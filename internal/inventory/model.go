package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item together with its stock level.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Barcode       string          `json:"barcode"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LowStock reports whether the product is at or below its replenishment threshold.
func (p Product) LowStock() bool {
	return p.Quantity <= p.MinStockLevel
}
