package sales

import "context"

// UnitOfWork is the set of writes a sale is made of. Every call made through
// one UnitOfWork commits together or not at all.
type UnitOfWork interface {
	// InsertSale appends the sale header and returns its new id.
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	// InsertItem appends one line bound to item.SaleID.
	InsertItem(ctx context.Context, item SaleItem) error
	// DecrementStock subtracts quantity from the product in a single
	// conditional step. It fails with inventory.ErrNotFound or an
	// *inventory.InsufficientStockError and never leaves stock below zero.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// Ledger is the read side of committed sales.
type Ledger interface {
	// Get returns the sale and its items in line order, or ErrNotFound.
	Get(ctx context.Context, saleID int64) (*SaleDetail, error)
	// List returns sales in r ordered by creation time, newest first.
	List(ctx context.Context, r DateRange) ([]SaleSummary, error)
}

// Storage is the main interface for our sales storage layer.
type Storage interface {
	Ledger
	// WithinTx runs fn inside a fresh unit of work. The unit commits when fn
	// returns nil and is rolled back on any error, panic or cancellation.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
