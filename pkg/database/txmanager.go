package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager lets services run multi-statement sequences atomically
// without holding the pool themselves. Tests substitute a fake that runs
// the function without a real transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn TxFunc) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) WithinTransaction(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, m.pool, fn)
}
