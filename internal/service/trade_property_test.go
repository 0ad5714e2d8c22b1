package service

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/store"
)

// TestProperty_BuyDeltas verifies that for any valid buy with sufficient
// funds and supply, the post-state deltas are exactly
// balance' = balance - price*amount, supply' = supply - amount, and
// held' = held + amount.
func TestProperty_BuyDeltas(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := store.NewMemoryStore()

		price := rapid.Int64Range(1, 10_000).Draw(t, "price")
		supply := rapid.Int64Range(1, 10_000).Draw(t, "supply")
		amount := rapid.Int64Range(1, supply).Draw(t, "amount")
		// Balance at least the cost, sometimes strictly more.
		slack := rapid.Int64Range(0, 10_000).Draw(t, "slack")
		balance := price*amount + slack

		if _, err := s.CreateUser(ctx, &domain.User{
			Login: "alice", Name: "Alice", Balance: balance, Portfolio: make(map[string]int64),
		}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		if _, err := s.CreateStock(ctx, &domain.Stock{
			Index: "AAPL", Name: "Apple", Price: price, Available: supply,
		}); err != nil {
			t.Fatalf("seed stock: %v", err)
		}

		res, err := NewTradeService(s).Perform(ctx, domain.Operation{
			Type: domain.OperationBuy, Login: "alice", Index: "AAPL", Amount: amount,
		})
		if err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		if got, want := res.User.Balance, balance-price*amount; got != want {
			t.Fatalf("balance = %d, want %d", got, want)
		}
		if got, want := res.Stock.Available, supply-amount; got != want {
			t.Fatalf("supply = %d, want %d", got, want)
		}
		if got := res.User.Portfolio["AAPL"]; got != amount {
			t.Fatalf("held = %d, want %d", got, amount)
		}
	})
}

// TestProperty_ConservationUnderTrades runs a random sequence of buys and
// sells by two users and checks that available supply plus all holdings
// always equals the units ever issued, and that failed operations change
// nothing.
func TestProperty_ConservationUnderTrades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := store.NewMemoryStore()

		price := rapid.Int64Range(1, 100).Draw(t, "price")
		issued := rapid.Int64Range(1, 500).Draw(t, "issued")

		logins := []string{"alice", "bob"}
		for _, login := range logins {
			if _, err := s.CreateUser(ctx, &domain.User{
				Login: login, Name: login,
				Balance:   rapid.Int64Range(0, 100_000).Draw(t, "balance-"+login),
				Portfolio: make(map[string]int64),
			}); err != nil {
				t.Fatalf("seed user: %v", err)
			}
		}
		if _, err := s.CreateStock(ctx, &domain.Stock{
			Index: "AAPL", Name: "Apple", Price: price, Available: issued,
		}); err != nil {
			t.Fatalf("seed stock: %v", err)
		}

		svc := NewTradeService(s)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			opType := domain.OperationBuy
			if rapid.Bool().Draw(t, "sell") {
				opType = domain.OperationSell
			}
			op := domain.Operation{
				Type:   opType,
				Login:  rapid.SampledFrom(logins).Draw(t, "login"),
				Index:  "AAPL",
				Amount: rapid.Int64Range(1, issued).Draw(t, "amount"),
			}

			// Failures (insufficient funds/supply/holdings) are fine;
			// they must simply leave state untouched, which the final
			// conservation check would catch.
			_, _ = svc.Perform(ctx, op)

			stock, err := s.FindStockByIndex(ctx, "AAPL")
			if err != nil {
				t.Fatalf("find stock: %v", err)
			}
			if stock.Available < 0 {
				t.Fatalf("supply went negative: %d", stock.Available)
			}

			var held int64
			for _, login := range logins {
				u, err := s.FindUserByLogin(ctx, login)
				if err != nil {
					t.Fatalf("find user: %v", err)
				}
				if u.Balance < 0 {
					t.Fatalf("balance of %s went negative: %d", login, u.Balance)
				}
				for _, qty := range u.Portfolio {
					if qty <= 0 {
						t.Fatalf("portfolio of %s holds a non-positive entry: %d", login, qty)
					}
				}
				held += u.Holding("AAPL")
			}

			if stock.Available+held != issued {
				t.Fatalf("conservation violated after step %d: available=%d held=%d issued=%d",
					i, stock.Available, held, issued)
			}
		}
	})
}

// TestProperty_SellRoundTrip verifies that buying then fully selling at an
// unchanged price restores the exact pre-trade state, with the portfolio
// entry removed rather than zeroed.
func TestProperty_SellRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := store.NewMemoryStore()

		price := rapid.Int64Range(1, 10_000).Draw(t, "price")
		amount := rapid.Int64Range(1, 1_000).Draw(t, "amount")
		balance := price * amount

		if _, err := s.CreateUser(ctx, &domain.User{
			Login: "alice", Name: "Alice", Balance: balance, Portfolio: make(map[string]int64),
		}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		if _, err := s.CreateStock(ctx, &domain.Stock{
			Index: "AAPL", Name: "Apple", Price: price, Available: amount,
		}); err != nil {
			t.Fatalf("seed stock: %v", err)
		}

		svc := NewTradeService(s)

		if _, err := svc.Perform(ctx, domain.Operation{
			Type: domain.OperationBuy, Login: "alice", Index: "AAPL", Amount: amount,
		}); err != nil {
			t.Fatalf("buy failed: %v", err)
		}
		res, err := svc.Perform(ctx, domain.Operation{
			Type: domain.OperationSell, Login: "alice", Index: "AAPL", Amount: amount,
		})
		if err != nil {
			t.Fatalf("sell failed: %v", err)
		}

		if res.User.Balance != balance {
			t.Fatalf("balance = %d, want %d", res.User.Balance, balance)
		}
		if res.Stock.Available != amount {
			t.Fatalf("supply = %d, want %d", res.Stock.Available, amount)
		}
		if _, held := res.User.Portfolio["AAPL"]; held {
			t.Fatal("portfolio entry should be removed after full sell")
		}
	})
}

// TestProperty_NetWorthComposition verifies that net worth equals balance
// plus the live market value of the portfolio after an arbitrary buy.
func TestProperty_NetWorthComposition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := store.NewMemoryStore()

		price := rapid.Int64Range(1, 1_000).Draw(t, "price")
		supply := rapid.Int64Range(1, 1_000).Draw(t, "supply")
		amount := rapid.Int64Range(1, supply).Draw(t, "amount")
		balance := price*amount + rapid.Int64Range(0, 10_000).Draw(t, "slack")

		if _, err := s.CreateUser(ctx, &domain.User{
			Login: "alice", Name: "Alice", Balance: balance, Portfolio: make(map[string]int64),
		}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		if _, err := s.CreateStock(ctx, &domain.Stock{
			Index: "AAPL", Name: "Apple", Price: price, Available: supply,
		}); err != nil {
			t.Fatalf("seed stock: %v", err)
		}

		if _, err := NewTradeService(s).Perform(ctx, domain.Operation{
			Type: domain.OperationBuy, Login: "alice", Index: "AAPL", Amount: amount,
		}); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		// A later price move must be reflected live.
		newPrice := rapid.Int64Range(1, 2_000).Draw(t, "newPrice")
		if _, err := NewStockService(s).UpdatePrice(ctx, "AAPL", newPrice); err != nil {
			t.Fatalf("update price: %v", err)
		}

		total, err := NewUserService(s).TotalNetWorth(ctx, "alice")
		if err != nil {
			t.Fatalf("net worth failed: %v", err)
		}
		want := (balance - price*amount) + newPrice*amount
		if total != want {
			t.Fatalf("net worth = %d, want %d", total, want)
		}
	})
}
