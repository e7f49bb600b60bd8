// Package dbx holds the small database/sql helpers shared by the local store:
// DBTX, satisfied by both *sql.DB and *sql.Tx, and WithTx, which runs several
// statements as one unit. The identity wipe uses it so the persisted session
// and the legacy Google record disappear together or not at all.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX lets a repository run on a plain connection or inside WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back when fn fails or panics; a panic is re-raised after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := metadata.NewSQLiteRepository(tx)
//	    return repo.Delete(ctx, common.SessionStorageKey)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
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
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
