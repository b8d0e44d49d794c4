package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomer is recorded when a sale names no customer.
const WalkInCustomer = "Walk-in"

// PaymentMethod is how the customer settled the sale.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// Sale is the header of a committed sale. It never changes after commit.
type Sale struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	EmployeeID    int64           `json:"employee_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleItem is one line of a sale. Price is the unit price at the time of sale.
type SaleItem struct {
	SaleID      int64           `json:"sale_id"`
	Line        int             `json:"line"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleDetail is a sale with its items in line order.
type SaleDetail struct {
	Sale
	EmployeeName string     `json:"employee_name"`
	Items        []SaleItem `json:"items"`
}

// SaleSummary is a row of the sales history.
type SaleSummary struct {
	Sale
	EmployeeName string `json:"employee_name"`
	ItemsCount   int    `json:"items_count"`
}

// SalesMetadata aggregates a sales listing.
type SalesMetadata struct {
	Quantity    int             `json:"quantity"`
	ItemsCount  int             `json:"items_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// DateRange is a half-open [Start, End) interval over creation time.
// The zero value matches every sale.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unbounded.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !t.Before(r.Start) && t.Before(r.End)
}
