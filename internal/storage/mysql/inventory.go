package mysql

import (
	"context"
	"database/sql"
	"errors"

	"api_pos/internal/inventory"
)

// CurrentQuantity returns the committed quantity on hand.
func (s *Store) CurrentQuantity(ctx context.Context, productID int64) (int, error) {
	var qty int
	err := s.db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, inventory.NotFoundError(productID)
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// ListBelowThreshold returns products at or below their minimum stock level,
// lowest quantity first.
func (s *Store) ListBelowThreshold(ctx context.Context) ([]inventory.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, barcode, category, price, cost_price,
			quantity, min_stock_level, supplier_id, COALESCE(description, ''), created_at
		FROM products
		WHERE quantity <= min_stock_level
		ORDER BY quantity ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]inventory.Product, 0, 16)
	for rows.Next() {
		var (
			p        inventory.Product
			supplier sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Barcode, &p.Category, &p.Price, &p.CostPrice,
			&p.Quantity, &p.MinStockLevel, &supplier, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		if supplier.Valid {
			id := supplier.Int64
			p.SupplierID = &id
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
