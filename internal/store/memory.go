package store

import (
	"context"
	"sync"
	"time"

	"github.com/aserdiukov/stockledger/internal/domain"
)

// MemoryStore is a thread-safe in-memory EntityStore, keyed by login
// and stock index. Records are cloned on every read and write, so
// callers never hold references into the store's own state; the only
// way to change a persisted record is a versioned save.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	stocks map[string]*domain.Stock
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*domain.User),
		stocks: make(map[string]*domain.Stock),
	}
}

// CreateUser adds a user to the store. It returns
// domain.ErrUserAlreadyExists if the login is taken.
func (s *MemoryStore) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Login]; exists {
		return nil, domain.ErrUserAlreadyExists
	}

	rec := u.Clone()
	rec.Version = 1
	rec.CreatedAt = time.Now()
	s.users[u.Login] = rec
	return rec.Clone(), nil
}

// FindUserByLogin retrieves a user by login. It returns
// domain.ErrUserNotFound if the user does not exist.
func (s *MemoryStore) FindUserByLogin(_ context.Context, login string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// SaveUser updates an existing user under its version guard.
func (s *MemoryStore) SaveUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.saveUserLocked(u)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// CreateStock adds a stock to the store. It returns
// domain.ErrStockAlreadyExists if the index is taken.
func (s *MemoryStore) CreateStock(_ context.Context, st *domain.Stock) (*domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stocks[st.Index]; exists {
		return nil, domain.ErrStockAlreadyExists
	}

	rec := st.Clone()
	rec.Version = 1
	rec.CreatedAt = time.Now()
	s.stocks[st.Index] = rec
	return rec.Clone(), nil
}

// FindStockByIndex retrieves a stock by index. It returns
// domain.ErrStockNotFound if the stock does not exist.
func (s *MemoryStore) FindStockByIndex(_ context.Context, index string) (*domain.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stocks[index]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	return st.Clone(), nil
}

// SaveStock updates an existing stock under its version guard.
func (s *MemoryStore) SaveStock(_ context.Context, st *domain.Stock) (*domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.saveStockLocked(st)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// SaveTrade updates a user and a stock under one lock acquisition.
// Both version guards are checked before either record is touched, so
// a conflict on either side leaves both unchanged.
func (s *MemoryStore) SaveTrade(_ context.Context, u *domain.User, st *domain.Stock) (*domain.User, *domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	curUser, ok := s.users[u.Login]
	if !ok {
		return nil, nil, domain.ErrUserNotFound
	}
	curStock, ok := s.stocks[st.Index]
	if !ok {
		return nil, nil, domain.ErrStockNotFound
	}
	if curUser.Version != u.Version || curStock.Version != st.Version {
		return nil, nil, domain.ErrVersionConflict
	}

	userRec, err := s.saveUserLocked(u)
	if err != nil {
		return nil, nil, err
	}
	stockRec, err := s.saveStockLocked(st)
	if err != nil {
		return nil, nil, err
	}
	return userRec.Clone(), stockRec.Clone(), nil
}

func (s *MemoryStore) saveUserLocked(u *domain.User) (*domain.User, error) {
	cur, ok := s.users[u.Login]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if cur.Version != u.Version {
		return nil, domain.ErrVersionConflict
	}

	rec := u.Clone()
	rec.Version = cur.Version + 1
	rec.CreatedAt = cur.CreatedAt
	s.users[u.Login] = rec
	return rec, nil
}

func (s *MemoryStore) saveStockLocked(st *domain.Stock) (*domain.Stock, error) {
	cur, ok := s.stocks[st.Index]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	if cur.Version != st.Version {
		return nil, domain.ErrVersionConflict
	}

	rec := st.Clone()
	rec.Version = cur.Version + 1
	rec.CreatedAt = cur.CreatedAt
	s.stocks[st.Index] = rec
	return rec, nil
}
