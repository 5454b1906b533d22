// Package db opens and migrates the Postgres database.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/mediakeeper/internal/server/migrations"
)

// Open dials Postgres via the pgx stdlib driver, verifies the connection
// with a ping and applies pending migrations. The returned handle is ready
// for use.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return conn, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.UpContext(ctx, conn, ".")
}

// NewDialer binds Open to a DSN for use by the reconnecting repository.
func NewDialer(dsn string) func(ctx context.Context) (*sql.DB, error) {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, dsn)
	}
}
