package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gymrecord/internal/client/migrations"
	"github.com/dmitrijs2005/gymrecord/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under concurrent listeners
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// ForgetIdentity deletes the persisted session and the legacy cached user.
func (r *Repositories) ForgetIdentity(ctx context.Context) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.SessionStorageKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.LegacyUserStorageKey)
	})
}
