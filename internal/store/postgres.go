package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aserdiukov/stockledger/internal/config"
	"github.com/aserdiukov/stockledger/internal/domain"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	login      TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	balance    BIGINT NOT NULL CHECK (balance >= 0),
	portfolio  JSONB NOT NULL,
	version    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS stocks (
	ticker     TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	price      BIGINT NOT NULL CHECK (price > 0),
	available  BIGINT NOT NULL CHECK (available >= 0),
	version    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// PostgresStore is a Postgres-backed EntityStore. Optimistic
// concurrency uses the version column: updates carry a
// WHERE version = $n guard and bump the column on success.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// NewPostgresStore connects to Postgres, verifies the connection, and
// bootstraps the schema.
func NewPostgresStore(ctx context.Context, cfg config.DBConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the connection is healthy.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser inserts a new user row.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	rec := u.Clone()
	rec.Version = 1

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (login, name, balance, portfolio, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING created_at`,
		rec.Login, rec.Name, rec.Balance, rec.Portfolio, rec.Version,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return rec, nil
}

// FindUserByLogin retrieves a user row by login.
func (s *PostgresStore) FindUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT login, name, balance, portfolio, version, created_at
		 FROM users WHERE login = $1`,
		login,
	))
}

// SaveUser updates an existing user row under its version guard.
func (s *PostgresStore) SaveUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	return s.saveUser(ctx, s.pool, u)
}

// CreateStock inserts a new stock row.
func (s *PostgresStore) CreateStock(ctx context.Context, st *domain.Stock) (*domain.Stock, error) {
	rec := st.Clone()
	rec.Version = 1

	err := s.pool.QueryRow(ctx,
		`INSERT INTO stocks (ticker, name, price, available, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING created_at`,
		rec.Index, rec.Name, rec.Price, rec.Available, rec.Version,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrStockAlreadyExists
		}
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	return rec, nil
}

// FindStockByIndex retrieves a stock row by ticker.
func (s *PostgresStore) FindStockByIndex(ctx context.Context, index string) (*domain.Stock, error) {
	return scanStock(s.pool.QueryRow(ctx,
		`SELECT ticker, name, price, available, version, created_at
		 FROM stocks WHERE ticker = $1`,
		index,
	))
}

// SaveStock updates an existing stock row under its version guard.
func (s *PostgresStore) SaveStock(ctx context.Context, st *domain.Stock) (*domain.Stock, error) {
	return s.saveStock(ctx, s.pool, st)
}

// SaveTrade updates the user and stock rows in one transaction, so a
// version conflict on either row rolls back both.
func (s *PostgresStore) SaveTrade(ctx context.Context, u *domain.User, st *domain.Stock) (*domain.User, *domain.Stock, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin trade: %w", err)
	}
	defer tx.Rollback(ctx)

	userRec, err := s.saveUser(ctx, tx, u)
	if err != nil {
		return nil, nil, err
	}
	stockRec, err := s.saveStock(ctx, tx, st)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit trade: %w", err)
	}
	return userRec, stockRec, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) saveUser(ctx context.Context, q querier, u *domain.User) (*domain.User, error) {
	rec := u.Clone()

	err := q.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, balance = $3, portfolio = $4, version = version + 1
		 WHERE login = $1 AND version = $5
		 RETURNING version, created_at`,
		rec.Login, rec.Name, rec.Balance, rec.Portfolio, u.Version,
	).Scan(&rec.Version, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.userMissOrConflict(ctx, rec.Login)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) saveStock(ctx context.Context, q querier, st *domain.Stock) (*domain.Stock, error) {
	rec := st.Clone()

	err := q.QueryRow(ctx,
		`UPDATE stocks
		 SET name = $2, price = $3, available = $4, version = version + 1
		 WHERE ticker = $1 AND version = $5
		 RETURNING version, created_at`,
		rec.Index, rec.Name, rec.Price, rec.Available, st.Version,
	).Scan(&rec.Version, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.stockMissOrConflict(ctx, rec.Index)
		}
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return rec, nil
}

// userMissOrConflict distinguishes a missing row from a stale version
// after a guarded update matched nothing.
func (s *PostgresStore) userMissOrConflict(ctx context.Context, login string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE login = $1)`, login,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return domain.ErrVersionConflict
}

func (s *PostgresStore) stockMissOrConflict(ctx context.Context, index string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stocks WHERE ticker = $1)`, index,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check stock: %w", err)
	}
	if !exists {
		return domain.ErrStockNotFound
	}
	return domain.ErrVersionConflict
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.Login, &u.Name, &u.Balance, &u.Portfolio, &u.Version, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.Portfolio == nil {
		u.Portfolio = make(map[string]int64)
	}
	return u, nil
}

func scanStock(row pgx.Row) (*domain.Stock, error) {
	st := &domain.Stock{}
	err := row.Scan(&st.Index, &st.Name, &st.Price, &st.Available, &st.Version, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStockNotFound
		}
		return nil, fmt.Errorf("scan stock: %w", err)
	}
	return st, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
