package service

import (
	"context"
	"strings"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/store"
)

// UserService handles user registration, balance top-ups, and net
// worth valuation.
type UserService struct {
	store store.EntityStore
}

// NewUserService creates a new UserService.
func NewUserService(store store.EntityStore) *UserService {
	return &UserService{store: store}
}

// Register creates a user with an empty portfolio and zero balance.
// It returns domain.ErrUserAlreadyExists if the login is taken.
func (s *UserService) Register(ctx context.Context, login, name string) (*domain.User, error) {
	if strings.TrimSpace(login) == "" {
		return nil, &domain.ValidationError{Message: "login cannot be blank"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Message: "name cannot be blank"}
	}

	return s.store.CreateUser(ctx, &domain.User{
		Login:     login,
		Name:      name,
		Portfolio: make(map[string]int64),
	})
}

// Get retrieves a user by login.
func (s *UserService) Get(ctx context.Context, login string) (*domain.User, error) {
	return s.store.FindUserByLogin(ctx, login)
}

// TopUp adds cash to the user's balance.
func (s *UserService) TopUp(ctx context.Context, login string, amount int64) (*domain.User, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{Message: "top-up amount must be positive"}
	}

	var updated *domain.User
	err := withConflictRetry(func() error {
		user, err := s.store.FindUserByLogin(ctx, login)
		if err != nil {
			return err
		}
		user.Balance += amount
		updated, err = s.store.SaveUser(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TotalNetWorth returns the user's cash balance plus the market value
// of every held stock at its current price. Prices are re-read live at
// call time; there is no cost-basis snapshotting.
func (s *UserService) TotalNetWorth(ctx context.Context, login string) (int64, error) {
	user, err := s.store.FindUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	total := user.Balance
	for index, qty := range user.Portfolio {
		stock, err := s.store.FindStockByIndex(ctx, index)
		if err != nil {
			return 0, err
		}
		total += stock.Price * qty
	}
	return total, nil
}
