package mysql

import (
	"context"
	"database/sql"
	"errors"

	"api_pos/internal/inventory"
	"api_pos/internal/sales"
	"api_pos/internal/storage"
)

// WithinTx runs fn in a READ COMMITTED transaction. Deadlocks and lock wait
// timeouts raised before commit restart the whole unit of work.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow sales.UnitOfWork) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isTransientError(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil && isTransientError(err) {
		return storage.Failure("unit of work", err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, uow sales.UnitOfWork) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return storage.Failure("begin", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return storage.Failure("commit", err)
	}
	return nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) InsertSale(ctx context.Context, sale sales.Sale) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `INSERT INTO sales (customer_name, customer_phone, total_amount, discount, payment_method, employee_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.CustomerName, sale.CustomerPhone, sale.TotalAmount, sale.Discount,
		string(sale.PaymentMethod), sale.EmployeeID, sale.CreatedAt.UTC())
	if err != nil {
		return 0, t.fail("insert sale", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, t.fail("insert sale", err)
	}
	return id, nil
}

func (t *tx) InsertItem(ctx context.Context, item sales.SaleItem) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO sale_items (sale_id, line_no, product_id, quantity, price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.SaleID, item.Line, item.ProductID, item.Quantity, item.Price, item.Subtotal)
	if err != nil {
		if isMySQLError(err, errNoReferencedRow) {
			return inventory.NotFoundError(item.ProductID)
		}
		return t.fail("insert sale item", err)
	}
	return nil
}

// DecrementStock checks and writes in one guarded UPDATE; the follow-up
// SELECT only explains a refusal.
func (t *tx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		quantity, productID, quantity)
	if err != nil {
		return t.fail("decrement stock", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return t.fail("decrement stock", err)
	}
	if affected == 1 {
		return nil
	}

	var available int
	err = t.tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, productID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.NotFoundError(productID)
	}
	if err != nil {
		return t.fail("decrement stock", err)
	}
	return &inventory.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
}

// fail keeps deadlocks recognizable for the retry loop and wraps the rest.
func (t *tx) fail(op string, err error) error {
	if isTransientError(err) {
		return err
	}
	return storage.Failure(op, err)
}
