package domain

import "time"

// User represents a registered exchange participant.
type User struct {
	Login     string
	Name      string
	Balance   int64            // cash in currency minor units
	Portfolio map[string]int64 // stock index → quantity held (always > 0)
	Version   int64            // bumped by the store on every save
	CreatedAt time.Time
}

// Holding returns the quantity of the given stock the user holds,
// or 0 if the user has no position in it.
func (u *User) Holding(index string) int64 {
	return u.Portfolio[index]
}

// Clone returns a deep copy of the user. Stores hand out clones so
// callers never share mutable state with persisted records.
func (u *User) Clone() *User {
	c := *u
	c.Portfolio = make(map[string]int64, len(u.Portfolio))
	for index, qty := range u.Portfolio {
		c.Portfolio[index] = qty
	}
	return &c
}

// Equal reports whether two users are the same entity. Equality is
// identity-based (same login), never structural.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.Login == other.Login
}
