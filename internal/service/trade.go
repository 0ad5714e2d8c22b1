package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/store"
)

// TradeService executes buy and sell operations against the ledger.
// The service itself is stateless and safe for concurrent use; all
// shared state lives in the EntityStore, whose version guards serialize
// overlapping operations. On a version conflict the whole
// read-compute-commit sequence is retried against fresh state.
type TradeService struct {
	store store.EntityStore
}

// NewTradeService creates a new TradeService.
func NewTradeService(store store.EntityStore) *TradeService {
	return &TradeService{store: store}
}

// Perform validates and executes a single buy or sell operation,
// returning the post-operation user and stock snapshots. Either every
// delta (balance, portfolio, supply) commits together, or nothing
// changes and the violated precondition is reported.
func (s *TradeService) Perform(ctx context.Context, op domain.Operation) (*domain.OperationResult, error) {
	if op.Type != domain.OperationBuy && op.Type != domain.OperationSell {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown operation type: %q", string(op.Type)),
		}
	}
	if op.Amount <= 0 {
		return nil, &domain.ValidationError{Message: "amount must be positive"}
	}

	var result *domain.OperationResult
	err := withConflictRetry(func() error {
		user, err := s.store.FindUserByLogin(ctx, op.Login)
		if err != nil {
			return err
		}
		stock, err := s.store.FindStockByIndex(ctx, op.Index)
		if err != nil {
			return err
		}

		// Deltas are applied to the store's clones; nothing is
		// visible until SaveTrade commits both records.
		switch op.Type {
		case domain.OperationBuy:
			err = buy(user, stock, op.Amount)
		case domain.OperationSell:
			err = sell(user, stock, op.Amount)
		}
		if err != nil {
			return err
		}

		savedUser, savedStock, err := s.store.SaveTrade(ctx, user, stock)
		if err != nil {
			return err
		}

		result = &domain.OperationResult{
			OperationID: uuid.New().String(),
			Type:        op.Type,
			Amount:      op.Amount,
			User:        savedUser,
			Stock:       savedStock,
			Timestamp:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buy moves amount units from available supply into the user's
// portfolio at the stock's current price.
func buy(user *domain.User, stock *domain.Stock, amount int64) error {
	cost := stock.Price * amount
	if cost > user.Balance {
		return &domain.ValidationError{
			Message: fmt.Sprintf(
				"cannot buy %d of stock %s: requires %d while only %d is available for user %s",
				amount, stock.Index, cost, user.Balance, user.Login,
			),
		}
	}
	if amount > stock.Available {
		return &domain.ValidationError{
			Message: fmt.Sprintf(
				"requested amount of stock %s is not available for purchase, at most %d can be bought",
				stock.Index, stock.Available,
			),
		}
	}

	stock.Available -= amount
	user.Portfolio[stock.Index] += amount
	user.Balance -= cost
	return nil
}

// sell moves amount units from the user's portfolio back into
// available supply, crediting the proceeds at the current price.
// A position that reaches zero is removed from the portfolio entirely.
func sell(user *domain.User, stock *domain.Stock, amount int64) error {
	held, ok := user.Portfolio[stock.Index]
	if !ok {
		return &domain.ValidationError{
			Message: fmt.Sprintf(
				"cannot sell stock %s: user %s does not own it",
				stock.Index, user.Login,
			),
		}
	}
	if held < amount {
		return &domain.ValidationError{
			Message: fmt.Sprintf(
				"cannot sell %d of stock %s: user %s owns only %d",
				amount, stock.Index, user.Login, held,
			),
		}
	}

	if held == amount {
		delete(user.Portfolio, stock.Index)
	} else {
		user.Portfolio[stock.Index] = held - amount
	}
	user.Balance += stock.Price * amount
	stock.Available += amount
	return nil
}
