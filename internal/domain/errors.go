package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUserAlreadyExists  = errors.New("user_already_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrStockAlreadyExists = errors.New("stock_already_exists")
	ErrStockNotFound      = errors.New("stock_not_found")

	// ErrVersionConflict is returned by stores when a save loses a race
	// against a concurrent writer. The trade engine retries on it; it is
	// never surfaced to callers as a distinct outcome.
	ErrVersionConflict = errors.New("version_conflict")
)

// ValidationError represents a business-rule precondition failure:
// non-positive amounts, insufficient funds/supply/holdings, blank
// required fields, unknown operation types.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
