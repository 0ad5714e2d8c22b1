package store

import (
	"context"

	"github.com/aserdiukov/stockledger/internal/domain"
)

// EntityStore is the persistence contract consumed by the services.
// Implementations enforce uniqueness of logins and stock indexes, and
// provide optimistic concurrency: every record carries a version that
// saves must match, and that successful saves bump. A save against a
// stale version fails with domain.ErrVersionConflict and leaves the
// record unchanged.
type EntityStore interface {
	// CreateUser persists a new user. It returns
	// domain.ErrUserAlreadyExists if the login is taken.
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)

	// FindUserByLogin retrieves a user. It returns
	// domain.ErrUserNotFound if the login is unknown.
	FindUserByLogin(ctx context.Context, login string) (*domain.User, error)

	// SaveUser updates an existing user under its version guard.
	SaveUser(ctx context.Context, u *domain.User) (*domain.User, error)

	// CreateStock persists a new stock. It returns
	// domain.ErrStockAlreadyExists if the index is taken.
	CreateStock(ctx context.Context, s *domain.Stock) (*domain.Stock, error)

	// FindStockByIndex retrieves a stock. It returns
	// domain.ErrStockNotFound if the index is unknown.
	FindStockByIndex(ctx context.Context, index string) (*domain.Stock, error)

	// SaveStock updates an existing stock under its version guard.
	SaveStock(ctx context.Context, s *domain.Stock) (*domain.Stock, error)

	// SaveTrade updates a user and a stock as a single atomic unit:
	// either both version guards pass and both records commit, or
	// neither changes and domain.ErrVersionConflict is returned.
	SaveTrade(ctx context.Context, u *domain.User, s *domain.Stock) (*domain.User, *domain.Stock, error)
}
