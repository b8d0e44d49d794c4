package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"api_pos/internal/inventory"
	"api_pos/internal/sales"
	"api_pos/internal/storage"
	"api_pos/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T, products ...inventory.Product) (*sales.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for _, p := range products {
		_, err := store.AddProduct(p)
		require.NoError(t, err)
	}
	require.NoError(t, store.AddEmployee(7, "alice"))
	svc := sales.NewService(store, zaptest.NewLogger(t), sales.WithClock(func() time.Time { return fixedNow }))
	return svc, store
}

func quantity(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	p, ok := store.Product(id)
	require.True(t, ok)
	return p.Quantity
}

func TestPostSale_CommitsHeaderItemsAndDecrements(t *testing.T) {
	svc, store := newFixture(t,
		inventory.Product{ID: 1, Name: "Engine Oil 5W-30", Quantity: 10, MinStockLevel: 2},
		inventory.Product{ID: 2, Name: "Oil Filter", Quantity: 4, MinStockLevel: 1},
	)

	saleID, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		CustomerPhone: "555-0101",
		TotalAmount:   dec("23.50"),
		Discount:      dec("2.00"),
		PaymentMethod: "card",
		EmployeeID:    7,
		Items: []sales.LineRequest{
			{ProductID: 1, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")},
			{ProductID: 2, Quantity: 1, Price: dec("5.50"), Subtotal: dec("5.50")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), saleID)
	assert.Equal(t, 8, quantity(t, store, 1))
	assert.Equal(t, 3, quantity(t, store, 2))

	detail, err := svc.Get(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, "23.50", detail.TotalAmount.StringFixed(2))
	assert.Equal(t, sales.WalkInCustomer, detail.CustomerName)
	assert.Equal(t, sales.PaymentCard, detail.PaymentMethod)
	assert.Equal(t, "alice", detail.EmployeeName)
	assert.Equal(t, fixedNow, detail.CreatedAt)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, 1, detail.Items[0].Line)
	assert.Equal(t, "Engine Oil 5W-30", detail.Items[0].ProductName)
	assert.Equal(t, 2, detail.Items[1].Line)
	assert.Equal(t, "5.50", detail.Items[1].Subtotal.StringFixed(2))
}

func TestPostSale_InsufficientStockRollsBackEverything(t *testing.T) {
	svc, store := newFixture(t,
		inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 10},
		inventory.Product{ID: 2, Name: "Oil Filter", Quantity: 1},
	)

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		TotalAmount: dec("31.00"),
		EmployeeID:  7,
		Items: []sales.LineRequest{
			{ProductID: 1, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")},
			{ProductID: 2, Quantity: 2, Price: dec("5.50"), Subtotal: dec("11.00")},
		},
	})

	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	var stockErr *inventory.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 0, store.SaleCount())
	assert.Equal(t, 10, quantity(t, store, 1))
	assert.Equal(t, 1, quantity(t, store, 2))
}

func TestPostSale_UnknownProductRollsBack(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 10})

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		TotalAmount: dec("25.00"),
		EmployeeID:  7,
		Items: []sales.LineRequest{
			{ProductID: 1, Quantity: 1, Price: dec("10.00"), Subtotal: dec("10.00")},
			{ProductID: 99, Quantity: 1, Price: dec("15.00"), Subtotal: dec("15.00")},
		},
	})

	require.ErrorIs(t, err, inventory.ErrNotFound)
	assert.Equal(t, 0, store.SaleCount())
	assert.Equal(t, 10, quantity(t, store, 1))
}

func TestPostSale_SameProductOnTwoLines(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 3})

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		TotalAmount: dec("40.00"),
		EmployeeID:  7,
		Items: []sales.LineRequest{
			{ProductID: 1, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")},
			{ProductID: 1, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")},
		},
	})

	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 3, quantity(t, store, 1))
}

// untouchedStorage fails the test if anything reaches storage.
type untouchedStorage struct{ t *testing.T }

func (s untouchedStorage) Get(context.Context, int64) (*sales.SaleDetail, error) {
	s.t.Fatal("storage read")
	return nil, nil
}

func (s untouchedStorage) List(context.Context, sales.DateRange) ([]sales.SaleSummary, error) {
	s.t.Fatal("storage read")
	return nil, nil
}

func (s untouchedStorage) WithinTx(context.Context, func(context.Context, sales.UnitOfWork) error) error {
	s.t.Fatal("unit of work opened")
	return nil
}

func TestPostSale_EmptyItemsRejectedBeforeStorage(t *testing.T) {
	svc := sales.NewService(untouchedStorage{t: t}, zaptest.NewLogger(t))

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{EmployeeID: 7, TotalAmount: dec("1.00")})

	assert.ErrorIs(t, err, sales.ErrInvalidRequest)
}

func TestPostSale_UnstorableAmountsAreInvalid(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 5})

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		TotalAmount: dec("123456789012.345"),
		EmployeeID:  7,
		Items:       []sales.LineRequest{{ProductID: 1, Quantity: 1, Price: dec("10.005"), Subtotal: dec("10.005")}},
	})

	assert.ErrorIs(t, err, sales.ErrInvalidRequest)
	assert.NotErrorIs(t, err, storage.ErrFailure)
	assert.Equal(t, 0, store.SaleCount())
	assert.Equal(t, 5, quantity(t, store, 1))
}

func TestPostSale_LastUnitSoldOnce(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 1})

	req := sales.PostSaleRequest{
		TotalAmount: dec("10.00"),
		EmployeeID:  7,
		Items:       []sales.LineRequest{{ProductID: 1, Quantity: 1, Price: dec("10.00"), Subtotal: dec("10.00")}},
	}

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.PostSale(context.Background(), req)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, inventory.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, quantity(t, store, 1))
	assert.Equal(t, 1, store.SaleCount())
}

func TestPostSale_ManyConcurrentSalesNeverOversell(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 25})

	req := sales.PostSaleRequest{
		TotalAmount: dec("20.00"),
		EmployeeID:  7,
		Items:       []sales.LineRequest{{ProductID: 1, Quantity: 2, Price: dec("10.00"), Subtotal: dec("20.00")}},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PostSale(context.Background(), req); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 12, succeeded)
	assert.Equal(t, 1, quantity(t, store, 1))
	assert.Equal(t, 12, store.SaleCount())
}

func TestPostSale_CancelledContextLeavesNothing(t *testing.T) {
	svc, store := newFixture(t, inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PostSale(ctx, sales.PostSaleRequest{
		TotalAmount: dec("10.00"),
		EmployeeID:  7,
		Items:       []sales.LineRequest{{ProductID: 1, Quantity: 1, Price: dec("10.00"), Subtotal: dec("10.00")}},
	})

	assert.ErrorIs(t, err, storage.ErrFailure)
	assert.Equal(t, 0, store.SaleCount())
	assert.Equal(t, 5, quantity(t, store, 1))
}

// brokenStorage fails every call with a driver-level error.
type brokenStorage struct{}

var errConnectionLost = errors.New("connection lost")

func (brokenStorage) Get(context.Context, int64) (*sales.SaleDetail, error) {
	return nil, errConnectionLost
}

func (brokenStorage) List(context.Context, sales.DateRange) ([]sales.SaleSummary, error) {
	return nil, errConnectionLost
}

func (brokenStorage) WithinTx(context.Context, func(context.Context, sales.UnitOfWork) error) error {
	return errConnectionLost
}

func TestService_StorageErrorsBecomeFailures(t *testing.T) {
	svc := sales.NewService(brokenStorage{}, zaptest.NewLogger(t))

	_, err := svc.PostSale(context.Background(), sales.PostSaleRequest{
		TotalAmount: dec("10.00"),
		EmployeeID:  7,
		Items:       []sales.LineRequest{{ProductID: 1, Quantity: 1, Price: dec("10.00"), Subtotal: dec("10.00")}},
	})
	assert.ErrorIs(t, err, storage.ErrFailure)

	_, err = svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrFailure)

	_, _, err = svc.List(context.Background(), sales.DateRange{})
	assert.ErrorIs(t, err, storage.ErrFailure)
}

func TestGet_UnknownSale(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Get(context.Background(), 42)

	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestList_NewestFirstWithinRange(t *testing.T) {
	store := memory.NewStore()
	_, err := store.AddProduct(inventory.Product{ID: 1, Name: "Engine Oil", Quantity: 100})
	require.NoError(t, err)

	clock := fixedNow
	svc := sales.NewService(store, zaptest.NewLogger(t), sales.WithClock(func() time.Time { return clock }))

	post := func(total string, lines int) int64 {
		items := make([]sales.LineRequest, lines)
		for i := range items {
			items[i] = sales.LineRequest{ProductID: 1, Quantity: 1, Price: dec("1.00"), Subtotal: dec("1.00")}
		}
		id, err := svc.PostSale(context.Background(), sales.PostSaleRequest{TotalAmount: dec(total), EmployeeID: 7, Items: items})
		require.NoError(t, err)
		return id
	}

	first := post("1.00", 1)
	clock = fixedNow.AddDate(0, 0, 1)
	second := post("2.00", 2)
	clock = fixedNow.AddDate(0, 0, 5)
	post("3.00", 3)

	all, meta, err := svc.List(context.Background(), sales.DateRange{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, meta.Quantity)
	assert.Equal(t, 6, meta.ItemsCount)
	assert.Equal(t, "6.00", meta.TotalAmount.StringFixed(2))

	r, err := sales.ParseDateRange("2024-03-01", "2024-03-02")
	require.NoError(t, err)
	inRange, meta, err := svc.List(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, second, inRange[0].ID)
	assert.Equal(t, 2, inRange[0].ItemsCount)
	assert.Equal(t, first, inRange[1].ID)
	assert.Equal(t, "3.00", meta.TotalAmount.StringFixed(2))
}
