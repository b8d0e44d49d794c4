package sales

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when a request fails structural validation.
// Nothing has been written when it is returned.
var ErrInvalidRequest = errors.New("invalid sale request")

// ErrNotFound is returned when a sale id does not resolve to a committed sale.
var ErrNotFound = errors.New("sale not found")

func invalidRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
