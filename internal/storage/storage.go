// AngelaMos | 2026
// storage.go

// Package storage selects the repositories behind the services: Postgres
// through sqlx, or the in-memory store.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/storage/memory"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
	"github.com/catclube/registry/migrations"
)

type Backend struct {
	Driver      string
	Users       user.Repository
	Cats        cat.Repository
	Taxonomy    taxonomy.Repository
	ResetTokens reset.Repository
	ResetTx     reset.Transactor

	// DB is nil for the memory driver.
	DB *core.Database

	pinger interface{ Ping(ctx context.Context) error }
}

// Open connects the configured driver. With migrate set, the Postgres
// schema is applied before returning.
func Open(ctx context.Context, cfg config.DatabaseConfig, migrate bool) (*Backend, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return Memory(memory.New()), nil
	case config.StorageDriverPostgres:
		db, err := core.NewDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := migrations.Apply(ctx, db.DB); err != nil {
				_ = db.Close() //nolint:errcheck // cleanup on migration failure
				return nil, err
			}
		}
		return Postgres(db), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func Postgres(db *core.Database) *Backend {
	return &Backend{
		Driver:      config.StorageDriverPostgres,
		Users:       user.NewRepository(db.DB),
		Cats:        cat.NewRepository(db.DB),
		Taxonomy:    taxonomy.NewRepository(db.DB),
		ResetTokens: reset.NewRepository(db.DB),
		ResetTx:     reset.NewTransactor(db.DB),
		DB:          db,
		pinger:      db,
	}
}

func Memory(store *memory.Store) *Backend {
	return &Backend{
		Driver:      config.StorageDriverMemory,
		Users:       store.Users(),
		Cats:        store.Cats(),
		Taxonomy:    store.Taxonomy(),
		ResetTokens: store.ResetTokens(),
		ResetTx:     store.ResetTransactor(),
		pinger:      store,
	}
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.pinger.Ping(ctx)
}

// PoolStats is nil for the memory driver.
func (b *Backend) PoolStats() func() sql.DBStats {
	if b.DB == nil {
		return nil
	}
	return b.DB.Stats
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
