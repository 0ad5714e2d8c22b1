package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/store"
)

// StockService handles catalog operations: listing stocks, adjusting
// prices, and increasing available supply. These are independent
// single-stock mutations; buy/sell flows live in TradeService.
type StockService struct {
	store store.EntityStore
}

// NewStockService creates a new StockService.
func NewStockService(store store.EntityStore) *StockService {
	return &StockService{store: store}
}

// Create lists a new stock with the given price and zero available
// supply. It returns domain.ErrStockAlreadyExists if the index is
// already listed.
func (s *StockService) Create(ctx context.Context, index, name string, price int64) (*domain.Stock, error) {
	if strings.TrimSpace(index) == "" {
		return nil, &domain.ValidationError{Message: "stock index cannot be blank"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Message: "stock name cannot be blank"}
	}
	if price <= 0 {
		return nil, &domain.ValidationError{Message: "stock price must be positive"}
	}

	return s.store.CreateStock(ctx, &domain.Stock{
		Index: index,
		Name:  name,
		Price: price,
	})
}

// Get retrieves a stock by index.
func (s *StockService) Get(ctx context.Context, index string) (*domain.Stock, error) {
	return s.store.FindStockByIndex(ctx, index)
}

// UpdatePrice sets a new unit price for the stock. Supply and user
// portfolios are untouched; valuation is always computed live.
func (s *StockService) UpdatePrice(ctx context.Context, index string, newPrice int64) (*domain.Stock, error) {
	if newPrice <= 0 {
		return nil, &domain.ValidationError{Message: "stock price must be positive"}
	}

	var updated *domain.Stock
	err := withConflictRetry(func() error {
		stock, err := s.store.FindStockByIndex(ctx, index)
		if err != nil {
			return err
		}
		stock.Price = newPrice
		updated, err = s.store.SaveStock(ctx, stock)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// IncreaseAmount adds units to the stock's available supply. There is
// no decrease operation; supply only shrinks through buys.
func (s *StockService) IncreaseAmount(ctx context.Context, index string, amount int64) (*domain.Stock, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("cannot increase stock amount by %d, must be positive", amount),
		}
	}

	var updated *domain.Stock
	err := withConflictRetry(func() error {
		stock, err := s.store.FindStockByIndex(ctx, index)
		if err != nil {
			return err
		}
		stock.Available += amount
		updated, err = s.store.SaveStock(ctx, stock)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
