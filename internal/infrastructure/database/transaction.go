package database

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v5"

	"gigmarket-backend/pkg/logger"
)

// ExecuteInTransaction runs fn inside a transaction, committing on success
// and rolling back on error. Rollback after commit is a no-op.
func (db *PostgresDB) ExecuteInTransaction(
	ctx context.Context,
	opts pgx.TxOptions,
	fn func(pgx.Tx) error,
) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	tx, err := db.Pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error("transaction rollback failed", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}
