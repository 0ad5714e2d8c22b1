package domain

import (
	"testing"
	"time"
)

func TestUser_Holding(t *testing.T) {
	u := &User{
		Login: "alice",
		Portfolio: map[string]int64{
			"AAPL": 500,
			"GOOG": 100,
		},
	}

	if got := u.Holding("AAPL"); got != 500 {
		t.Errorf("Holding(AAPL) = %d, want 500", got)
	}
	if got := u.Holding("MSFT"); got != 0 {
		t.Errorf("Holding(MSFT) = %d, want 0", got)
	}
}

func TestUser_Clone_DeepCopiesPortfolio(t *testing.T) {
	u := &User{
		Login:     "alice",
		Name:      "Alice",
		Balance:   1000,
		Portfolio: map[string]int64{"AAPL": 5},
		Version:   3,
		CreatedAt: time.Now(),
	}

	c := u.Clone()
	c.Portfolio["AAPL"] = 99
	c.Balance = 0

	if u.Portfolio["AAPL"] != 5 {
		t.Errorf("original portfolio mutated: got %d, want 5", u.Portfolio["AAPL"])
	}
	if u.Balance != 1000 {
		t.Errorf("original balance mutated: got %d, want 1000", u.Balance)
	}
	if c.Version != 3 || c.Login != "alice" {
		t.Error("clone did not carry over scalar fields")
	}
}

func TestUser_Equal_IdentityBased(t *testing.T) {
	a := &User{Login: "alice", Balance: 100}
	b := &User{Login: "alice", Balance: 999} // same identity, different state
	c := &User{Login: "bob", Balance: 100}

	if !a.Equal(b) {
		t.Error("users with the same login should be equal")
	}
	if a.Equal(c) {
		t.Error("users with different logins should not be equal")
	}
	if a.Equal(nil) {
		t.Error("non-nil user should not equal nil")
	}
}

func TestStock_Equal_IdentityBased(t *testing.T) {
	a := &Stock{Index: "AAPL", Price: 100}
	b := &Stock{Index: "AAPL", Price: 200}
	c := &Stock{Index: "GOOG", Price: 100}

	if !a.Equal(b) {
		t.Error("stocks with the same index should be equal")
	}
	if a.Equal(c) {
		t.Error("stocks with different indexes should not be equal")
	}
}

func TestStock_Clone(t *testing.T) {
	s := &Stock{Index: "AAPL", Name: "Apple", Price: 100, Available: 10, Version: 2}

	c := s.Clone()
	c.Price = 500
	c.Available = 0

	if s.Price != 100 || s.Available != 10 {
		t.Error("original stock mutated through clone")
	}
}
