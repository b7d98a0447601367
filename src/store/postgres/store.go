package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements store.LedgerStore on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
