// Package mysql is the durable backend for the sales ledger and the
// inventory store, built on database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the store reacts to.
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errNoReferencedRow = 1452
)

// Store implements sales.Storage and inventory.Repository on MySQL.
type Store struct {
	db          *sql.DB
	maxAttempts int
}

// NewStore wraps an already opened handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, maxAttempts: 3}
}

// Open connects to dsn, forcing UTC time parsing, and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("build connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewStore(db), nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'cashier',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		barcode VARCHAR(100) NOT NULL UNIQUE,
		category VARCHAR(100) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		cost_price DECIMAL(10,2) NOT NULL DEFAULT 0,
		quantity INT NOT NULL DEFAULT 0,
		min_stock_level INT NOT NULL DEFAULT 10,
		supplier_id BIGINT NULL,
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_products_quantity CHECK (quantity >= 0),
		CONSTRAINT chk_products_min_stock CHECK (min_stock_level >= 0)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(100) NOT NULL DEFAULT 'Walk-in',
		customer_phone VARCHAR(20) NOT NULL DEFAULT '',
		total_amount DECIMAL(10,2) NOT NULL,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0,
		payment_method ENUM('cash','card','other') NOT NULL DEFAULT 'cash',
		employee_id BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_sales_created_at (created_at)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sale_id BIGINT NOT NULL,
		line_no INT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		UNIQUE KEY uq_sale_items_line (sale_id, line_no),
		CONSTRAINT fk_sale_items_sale FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE RESTRICT,
		CONSTRAINT fk_sale_items_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT,
		CONSTRAINT chk_sale_items_quantity CHECK (quantity > 0)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates the tables the store needs when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// isTransientError reports MySQL errors after which InnoDB has already rolled
// the transaction back and the whole unit of work may run again.
func isTransientError(err error) bool {
	var driverErr *mysql.MySQLError
	if !errors.As(err, &driverErr) {
		return false
	}
	switch driverErr.Number {
	case errLockWaitTimeout, errDeadlock:
		return true
	}
	return false
}

func isMySQLError(err error, number uint16) bool {
	var driverErr *mysql.MySQLError
	return errors.As(err, &driverErr) && driverErr.Number == number
}
