package sales

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest is one submitted line. Price and Subtotal are recorded as sent.
type LineRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PostSaleRequest is what the sales-entry surface submits. EmployeeID is
// filled from the authenticated actor, never from the request body.
type PostSaleRequest struct {
	CustomerName  string          `json:"customer_name" binding:"omitempty,max=100"`
	CustomerPhone string          `json:"customer_phone" binding:"omitempty,max=20"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,max=20"`
	EmployeeID    int64           `json:"-"`
	Items         []LineRequest   `json:"items"`
}

// build validates the request and turns it into the records to persist.
func (r PostSaleRequest) build(now time.Time) (Sale, []SaleItem, error) {
	if len(r.Items) == 0 {
		return Sale{}, nil, invalidRequest("at least one item is required")
	}
	if r.EmployeeID <= 0 {
		return Sale{}, nil, invalidRequest("employee id is required")
	}
	if err := checkAmount("total amount", r.TotalAmount); err != nil {
		return Sale{}, nil, err
	}
	if err := checkAmount("discount", r.Discount); err != nil {
		return Sale{}, nil, err
	}

	method := PaymentMethod(strings.ToLower(strings.TrimSpace(r.PaymentMethod)))
	if method == "" {
		method = PaymentCash
	}
	if !method.Valid() {
		return Sale{}, nil, invalidRequest(fmt.Sprintf("unknown payment method %q", r.PaymentMethod))
	}

	customer := strings.TrimSpace(r.CustomerName)
	if customer == "" {
		customer = WalkInCustomer
	}

	items := make([]SaleItem, 0, len(r.Items))
	for i, line := range r.Items {
		if line.ProductID <= 0 {
			return Sale{}, nil, invalidRequest(fmt.Sprintf("item %d: product id is required", i+1))
		}
		if line.Quantity <= 0 || line.Quantity > maxQuantity {
			return Sale{}, nil, invalidRequest(fmt.Sprintf("item %d: quantity must be between 1 and %d", i+1, maxQuantity))
		}
		if err := checkAmount(fmt.Sprintf("item %d: price", i+1), line.Price); err != nil {
			return Sale{}, nil, err
		}
		if err := checkAmount(fmt.Sprintf("item %d: subtotal", i+1), line.Subtotal); err != nil {
			return Sale{}, nil, err
		}
		items = append(items, SaleItem{
			Line:      i + 1,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Subtotal:  line.Subtotal,
		})
	}

	sale := Sale{
		CustomerName:  customer,
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
		TotalAmount:   r.TotalAmount,
		Discount:      r.Discount,
		PaymentMethod: method,
		EmployeeID:    r.EmployeeID,
		CreatedAt:     now,
	}
	return sale, items, nil
}

// Amounts are stored as DECIMAL(10,2) and quantities as INT.
const (
	amountScale = 2
	maxQuantity = math.MaxInt32
)

var maxAmount = decimal.RequireFromString("99999999.99")

// checkAmount accepts non-negative amounts with at most two decimals that fit
// the ledger's money columns.
func checkAmount(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return invalidRequest(field + " must not be negative")
	case d.Exponent() < -amountScale && !d.Equal(d.Truncate(amountScale)):
		return invalidRequest(fmt.Sprintf("%s has more than %d decimals", field, amountScale))
	case d.GreaterThan(maxAmount):
		return invalidRequest(fmt.Sprintf("%s exceeds %s", field, maxAmount.StringFixed(amountScale)))
	}
	return nil
}

const dateLayout = "2006-01-02"

// ParseDateRange turns inclusive start and end dates (YYYY-MM-DD, UTC) into a
// DateRange. The filter applies only when both dates are given.
func ParseDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, nil
	}
	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return DateRange{}, invalidRequest(fmt.Sprintf("invalid start_date %q", start))
	}
	to, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return DateRange{}, invalidRequest(fmt.Sprintf("invalid end_date %q", end))
	}
	if to.Before(from) {
		return DateRange{}, invalidRequest("end_date is before start_date")
	}
	return DateRange{Start: from, End: to.AddDate(0, 0, 1)}, nil
}
