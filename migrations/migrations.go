// AngelaMos | 2026
// migrations.go

// Package migrations carries the Postgres schema inside the binary.
package migrations

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/catclube/registry/internal/core"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Apply.
func Schema() string {
	return schema
}

// Apply creates every table and index that does not exist yet. It is safe
// to run on each deploy.
func Apply(ctx context.Context, db *sqlx.DB) error {
	err := core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	slog.InfoContext(ctx, "schema applied")
	return nil
}
