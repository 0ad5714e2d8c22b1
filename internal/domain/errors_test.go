package domain

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Message: "amount must be positive"}
	if err.Error() != "amount must be positive" {
		t.Errorf("Error() = %q, want %q", err.Error(), "amount must be positive")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrUserAlreadyExists,
		ErrUserNotFound,
		ErrStockAlreadyExists,
		ErrStockNotFound,
		ErrVersionConflict,
	}
	for i := 0; i < len(errs); i++ {
		for j := i + 1; j < len(errs); j++ {
			if errors.Is(errs[i], errs[j]) {
				t.Errorf("sentinel errors %d and %d should be distinct", i, j)
			}
		}
	}
}
