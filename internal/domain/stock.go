package domain

import "time"

// Stock represents a listed stock on the exchange.
type Stock struct {
	Index     string // unique ticker, e.g. "AAPL"
	Name      string
	Price     int64 // unit price in currency minor units, always > 0
	Available int64 // units not held by any user, always >= 0
	Version   int64 // bumped by the store on every save
	CreatedAt time.Time
}

// Clone returns a copy of the stock.
func (s *Stock) Clone() *Stock {
	c := *s
	return &c
}

// Equal reports whether two stocks are the same entity. Equality is
// identity-based (same index), never structural.
func (s *Stock) Equal(other *Stock) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Index == other.Index
}
