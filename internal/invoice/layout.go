package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"api_pos/internal/sales"

	"github.com/shopspring/decimal"
)

// MaxProductNameLength is how many characters of a product name fit in the items table.
const MaxProductNameLength = 35

const (
	shopTitle      = "OIL SHOP INVOICE"
	dateLayout     = "2006-01-02 15:04"
	billToHeading  = "BILL TO:"
	labelSubtotal  = "Subtotal:"
	labelDiscount  = "Discount:"
	labelTotal     = "TOTAL:"
	invoiceNumber  = "INV-%05d"
	footerThanks   = "Thank you for your business!"
	footerComputer = "This is a computer-generated invoice."
	footerContact  = "For queries, contact: support@.com | www.temp.com"
)

// Row is one line of the items table, already formatted.
type Row struct {
	No       string
	Name     string
	Qty      string
	Price    string
	Subtotal string
}

// Totals is the formatted totals block.
type Totals struct {
	Subtotal string
	Discount string
	Total    string
}

// Layout is everything that ends up on the page, fully formatted. It is
// built fresh for every render and shares nothing with other renders.
type Layout struct {
	Title     string
	Company   [4]string
	Meta      [4]string
	Customer  []string
	Header    [5]string
	Rows      []Row
	Totals    Totals
	Footer    [3]string
	CreatedAt time.Time
}

// Compose lays out the invoice of one sale. The subtotal is summed from the
// items while the total is the amount stored on the sale.
func Compose(sale sales.Sale, items []sales.SaleItem, employeeName string) Layout {
	l := Layout{
		Title: shopTitle,
		Company: [4]string{
			"Oil Shop Management System",
			"123 Business Street",
			"City, State 12345",
			"Phone: (123) 456-7890",
		},
		Meta: [4]string{
			"Invoice #: " + fmt.Sprintf(invoiceNumber, sale.ID),
			"Date: " + sale.CreatedAt.UTC().Format(dateLayout),
			"Cashier: " + employeeName,
			"Payment: " + strings.ToUpper(string(sale.PaymentMethod)),
		},
		Header:    [5]string{"#", "Product Name", "Qty", "Unit Price", "Subtotal"},
		Footer:    [3]string{footerThanks, footerComputer, footerContact},
		CreatedAt: sale.CreatedAt.UTC(),
	}

	if sale.CustomerPhone != "" {
		l.Customer = []string{billToHeading, "Phone: " + sale.CustomerPhone}
	}

	subtotal := decimal.Zero
	l.Rows = make([]Row, 0, len(items))
	for i, item := range items {
		l.Rows = append(l.Rows, Row{
			No:       strconv.Itoa(i + 1),
			Name:     truncate(item.ProductName, MaxProductNameLength),
			Qty:      strconv.Itoa(item.Quantity),
			Price:    currency(item.Price),
			Subtotal: currency(item.Subtotal),
		})
		subtotal = subtotal.Add(item.Subtotal)
	}

	l.Totals = Totals{
		Subtotal: money(subtotal),
		Discount: "-" + money(sale.Discount),
		Total:    money(sale.TotalAmount),
	}
	return l
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// currency is used in the items table; the totals block carries bare amounts.
func currency(d decimal.Decimal) string {
	return "$" + money(d)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
