package database

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/juantovo/task-manager-api/internal/database/migrations"
)

// Migrate runs the embedded goose migrations against the given connection.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
