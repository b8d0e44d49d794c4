package invoice

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"api_pos/internal/sales"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() (sales.Sale, []sales.SaleItem) {
	sale := sales.Sale{
		ID:            12,
		CustomerName:  sales.WalkInCustomer,
		TotalAmount:   decimal.RequireFromString("23.50"),
		Discount:      decimal.RequireFromString("2.00"),
		PaymentMethod: sales.PaymentCard,
		EmployeeID:    7,
		CreatedAt:     time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	items := []sales.SaleItem{
		{SaleID: 12, Line: 1, ProductID: 1, ProductName: "Engine Oil 5W-30", Quantity: 2, Price: decimal.RequireFromString("10.00"), Subtotal: decimal.RequireFromString("20.00")},
		{SaleID: 12, Line: 2, ProductID: 2, ProductName: "Oil Filter", Quantity: 1, Price: decimal.RequireFromString("5.5"), Subtotal: decimal.RequireFromString("5.5")},
	}
	return sale, items
}

func TestCompose_Totals(t *testing.T) {
	sale, items := sampleSale()

	l := Compose(sale, items, "alice")

	assert.Equal(t, "25.50", l.Totals.Subtotal)
	assert.Equal(t, "-2.00", l.Totals.Discount)
	assert.Equal(t, "23.50", l.Totals.Total)
}

func TestCompose_ItemsTableShowsCurrency(t *testing.T) {
	sale, items := sampleSale()

	l := Compose(sale, items, "alice")

	assert.Equal(t, "$10.00", l.Rows[0].Price)
	assert.Equal(t, "$20.00", l.Rows[0].Subtotal)
	assert.False(t, strings.Contains(l.Totals.Subtotal+l.Totals.Discount+l.Totals.Total, "$"))
}

func TestCompose_StoredTotalWins(t *testing.T) {
	sale, items := sampleSale()
	sale.Discount = decimal.RequireFromString("2.00")
	sale.TotalAmount = decimal.RequireFromString("23.50")
	items[1].Subtotal = decimal.RequireFromString("3.50")

	l := Compose(sale, items, "alice")

	assert.Equal(t, "23.50", l.Totals.Subtotal)
	assert.Equal(t, "23.50", l.Totals.Total)
}

func TestCompose_Header(t *testing.T) {
	sale, items := sampleSale()

	l := Compose(sale, items, "alice")

	assert.Equal(t, "OIL SHOP INVOICE", l.Title)
	assert.Equal(t, "Invoice #: INV-00012", l.Meta[0])
	assert.Equal(t, "Date: 2024-03-01 10:30", l.Meta[1])
	assert.Equal(t, "Cashier: alice", l.Meta[2])
	assert.Equal(t, "Payment: CARD", l.Meta[3])
	require.Len(t, l.Rows, 2)
	assert.Equal(t, Row{No: "2", Name: "Oil Filter", Qty: "1", Price: "$5.50", Subtotal: "$5.50"}, l.Rows[1])
}

func TestCompose_CustomerBlockOnlyWithPhone(t *testing.T) {
	sale, items := sampleSale()

	assert.Empty(t, Compose(sale, items, "alice").Customer)

	sale.CustomerPhone = "555-0101"
	assert.Equal(t, []string{"BILL TO:", "Phone: 555-0101"}, Compose(sale, items, "alice").Customer)
}

func TestCompose_TruncatesLongNames(t *testing.T) {
	sale, items := sampleSale()
	items[0].ProductName = strings.Repeat("x", 50)
	items[1].ProductName = strings.Repeat("é", 40)

	l := Compose(sale, items, "alice")

	assert.Equal(t, strings.Repeat("x", MaxProductNameLength), l.Rows[0].Name)
	assert.Equal(t, MaxProductNameLength, len([]rune(l.Rows[1].Name)))
}

func TestRender_ProducesStablePDF(t *testing.T) {
	sale, items := sampleSale()
	sale.CustomerPhone = "555-0101"

	first, err := Render(sale, items, "alice")
	require.NoError(t, err)
	second, err := Render(sale, items, "alice")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second)
}

func TestRender_Latin1NamesAreAccepted(t *testing.T) {
	sale, items := sampleSale()
	items[0].ProductName = "Huile moteur synthétique"

	_, err := Render(sale, items, "José")

	assert.NoError(t, err)
}

func TestRender_UnencodableTextFails(t *testing.T) {
	sale, items := sampleSale()
	items[0].ProductName = "Oil ─ premium"

	_, err := Render(sale, items, "alice")

	assert.ErrorIs(t, err, ErrRender)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice_12.pdf", Filename(12))
}
