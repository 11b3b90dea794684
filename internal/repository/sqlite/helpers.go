package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vytor/triviaflash/internal/logger"
)

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// fails or panics and committed otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			logger.FromContext(ctx).WithPrefix("result_repo").Debug("rolled back: %v", err)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
