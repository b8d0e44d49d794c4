package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"api_pos/internal/sales"
)

const saleColumns = `s.id, s.customer_name, s.customer_phone, s.total_amount, s.discount,
	s.payment_method, s.employee_id, s.created_at, COALESCE(e.username, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner, sale *sales.Sale, employee *string, extra ...any) error {
	var method string
	dest := []any{
		&sale.ID, &sale.CustomerName, &sale.CustomerPhone, &sale.TotalAmount, &sale.Discount,
		&method, &sale.EmployeeID, &sale.CreatedAt, employee,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	sale.PaymentMethod = sales.PaymentMethod(method)
	sale.CreatedAt = sale.CreatedAt.UTC()
	return nil
}

// Get returns a committed sale with its items ordered by line number.
func (s *Store) Get(ctx context.Context, saleID int64) (*sales.SaleDetail, error) {
	detail := &sales.SaleDetail{}
	row := s.db.QueryRowContext(ctx, `SELECT `+saleColumns+`
		FROM sales s
		LEFT JOIN employees e ON s.employee_id = e.id
		WHERE s.id = ?`, saleID)
	if err := scanSale(row, &detail.Sale, &detail.EmployeeName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sales.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT si.sale_id, si.line_no, si.product_id, p.name, si.quantity, si.price, si.subtotal
		FROM sale_items si
		JOIN products p ON si.product_id = p.id
		WHERE si.sale_id = ?
		ORDER BY si.line_no ASC`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	detail.Items = make([]sales.SaleItem, 0, 8)
	for rows.Next() {
		var item sales.SaleItem
		if err := rows.Scan(&item.SaleID, &item.Line, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns committed sales inside r with their item counts, newest first.
func (s *Store) List(ctx context.Context, r sales.DateRange) ([]sales.SaleSummary, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + saleColumns + `, COUNT(si.id)
		FROM sales s
		LEFT JOIN employees e ON s.employee_id = e.id
		LEFT JOIN sale_items si ON s.id = si.sale_id`)
	if !r.IsZero() {
		query.WriteString(` WHERE s.created_at >= ? AND s.created_at < ?`)
		args = append(args, r.Start.UTC(), r.End.UTC())
	}
	query.WriteString(` GROUP BY s.id, e.username ORDER BY s.created_at DESC, s.id DESC`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]sales.SaleSummary, 0, 32)
	for rows.Next() {
		var sum sales.SaleSummary
		if err := scanSale(rows, &sum.Sale, &sum.EmployeeName, &sum.ItemsCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
