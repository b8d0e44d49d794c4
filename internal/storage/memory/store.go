// Package memory is an in-process backend for the sales ledger and the
// inventory store. A unit of work holds the write lock from start to finish
// and stages its changes, so readers only ever see committed state.
// Units of work are serialized even when they touch disjoint products; the
// MySQL backend is the one where such sales run in parallel.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"api_pos/internal/inventory"
	"api_pos/internal/sales"
	"api_pos/internal/storage"
)

// ErrEmptyName is returned when seeding a product or employee without a name.
var ErrEmptyName = errors.New("empty name")

type saleRecord struct {
	sale  sales.Sale
	items []sales.SaleItem
}

// Store keeps products, employees and committed sales in memory.
type Store struct {
	mu        sync.RWMutex
	products  map[int64]inventory.Product
	employees map[int64]string
	sales     []saleRecord
	lastSale  int64
	lastProd  int64
}

// NewStore instantiates an empty Store.
func NewStore() *Store {
	return &Store{
		products:  map[int64]inventory.Product{},
		employees: map[int64]string{},
	}
}

// AddProduct stores p and returns it with its assigned id. A non-zero p.ID is kept.
func (s *Store) AddProduct(p inventory.Product) (inventory.Product, error) {
	if p.Name == "" {
		return inventory.Product{}, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		s.lastProd++
		p.ID = s.lastProd
	} else if p.ID > s.lastProd {
		s.lastProd = p.ID
	}
	s.products[p.ID] = p
	return p, nil
}

// AddEmployee registers the display name used on invoices and listings.
func (s *Store) AddEmployee(id int64, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = name
	return nil
}

// Product returns the committed state of a product.
func (s *Store) Product(id int64) (inventory.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// SaleCount returns the number of committed sales.
func (s *Store) SaleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

// CurrentQuantity returns the committed quantity on hand.
func (s *Store) CurrentQuantity(ctx context.Context, productID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, storage.Failure("current quantity", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, inventory.NotFoundError(productID)
	}
	return p.Quantity, nil
}

// ListBelowThreshold returns products at or below their minimum stock level,
// lowest quantity first and by id on ties.
func (s *Store) ListBelowThreshold(ctx context.Context) ([]inventory.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Failure("list below threshold", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]inventory.Product, 0)
	for _, p := range s.products {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		if low[i].Quantity != low[j].Quantity {
			return low[i].Quantity < low[j].Quantity
		}
		return low[i].ID < low[j].ID
	})
	return low, nil
}

// Get returns a committed sale with its items.
func (s *Store) Get(ctx context.Context, saleID int64) (*sales.SaleDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Failure("get sale", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.sales {
		if rec.sale.ID != saleID {
			continue
		}
		items := make([]sales.SaleItem, len(rec.items))
		for i, item := range rec.items {
			item.ProductName = s.products[item.ProductID].Name
			items[i] = item
		}
		return &sales.SaleDetail{
			Sale:         rec.sale,
			EmployeeName: s.employees[rec.sale.EmployeeID],
			Items:        items,
		}, nil
	}
	return nil, sales.ErrNotFound
}

// List returns committed sales inside r, newest first.
func (s *Store) List(ctx context.Context, r sales.DateRange) ([]sales.SaleSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Failure("list sales", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]sales.SaleSummary, 0, len(s.sales))
	for _, rec := range s.sales {
		if !r.Contains(rec.sale.CreatedAt) {
			continue
		}
		result = append(result, sales.SaleSummary{
			Sale:         rec.sale,
			EmployeeName: s.employees[rec.sale.EmployeeID],
			ItemsCount:   len(rec.items),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// WithinTx runs fn against a staged copy of the state and publishes it only
// when fn succeeds and ctx is still live.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow sales.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return storage.Failure("begin", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{
		store:      s,
		lastSale:   s.lastSale,
		quantities: map[int64]int{},
		pending:    map[int64]*saleRecord{},
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storage.Failure("commit", err)
	}
	t.commit()
	return nil
}

type tx struct {
	store      *Store
	lastSale   int64
	quantities map[int64]int
	order      []int64
	pending    map[int64]*saleRecord
}

func (t *tx) InsertSale(ctx context.Context, sale sales.Sale) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storage.Failure("insert sale", err)
	}
	t.lastSale++
	sale.ID = t.lastSale
	t.pending[sale.ID] = &saleRecord{sale: sale}
	t.order = append(t.order, sale.ID)
	return sale.ID, nil
}

func (t *tx) InsertItem(ctx context.Context, item sales.SaleItem) error {
	if err := ctx.Err(); err != nil {
		return storage.Failure("insert sale item", err)
	}
	rec, ok := t.pending[item.SaleID]
	if !ok {
		return storage.Failure("insert sale item", errors.New("sale header not part of this unit of work"))
	}
	if _, ok := t.store.products[item.ProductID]; !ok {
		return inventory.NotFoundError(item.ProductID)
	}
	item.ProductName = ""
	rec.items = append(rec.items, item)
	return nil
}

func (t *tx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	if err := ctx.Err(); err != nil {
		return storage.Failure("decrement stock", err)
	}
	p, ok := t.store.products[productID]
	if !ok {
		return inventory.NotFoundError(productID)
	}
	current, staged := t.quantities[productID]
	if !staged {
		current = p.Quantity
	}
	if current < quantity {
		return &inventory.InsufficientStockError{ProductID: productID, Requested: quantity, Available: current}
	}
	t.quantities[productID] = current - quantity
	return nil
}

func (t *tx) commit() {
	s := t.store
	for id, qty := range t.quantities {
		p := s.products[id]
		p.Quantity = qty
		s.products[id] = p
	}
	for _, id := range t.order {
		s.sales = append(s.sales, *t.pending[id])
	}
	s.lastSale = t.lastSale
}
