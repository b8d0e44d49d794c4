package inventory

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a product id does not resolve to a product.
var ErrNotFound = errors.New("product not found")

// ErrInsufficientStock is matched by every *InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError carries the offending product and what was left of it.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError names the product id that could not be resolved.
func NotFoundError(productID int64) error {
	return fmt.Errorf("%w: %d", ErrNotFound, productID)
}
