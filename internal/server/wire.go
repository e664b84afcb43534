// AngelaMos | 2026
// wire.go

package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/catclube/registry/internal/admin"
	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/storage"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

// NewValidator returns the shared validator with every domain tag.
func NewValidator() (*validator.Validate, error) {
	v := core.NewValidator()
	if err := user.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("register user validators: %w", err)
	}
	if err := cat.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("register cat validators: %w", err)
	}
	return v, nil
}

type Deps struct {
	Backend  *storage.Backend
	Redis    *core.Redis
	Sessions *auth.JWTManager
	Validate *validator.Validate
	Notifier reset.Notifier

	Session      config.SessionConfig
	Reset        config.ResetConfig
	ResetOptions []reset.Option
}

// NewRoutes builds every service and handler on top of d.Backend.
func NewRoutes(d Deps) Routes {
	users := user.NewService(d.Backend.Users, d.Validate)
	cats := cat.NewService(d.Backend.Cats, d.Validate)
	breeds := taxonomy.NewService(d.Backend.Taxonomy, d.Validate)
	resets := reset.NewService(
		d.Backend.ResetTx,
		d.Backend.ResetTokens,
		d.Backend.Users,
		d.Notifier,
		d.Reset,
		d.ResetOptions...,
	)

	adminCfg := admin.HandlerConfig{
		UserStats: users.Stats,
		CatStats:  cats.Stats,
		DBStats:   d.Backend.PoolStats(),
		DBPing:    d.Backend.Ping,
	}
	if d.Redis.Enabled() {
		adminCfg.RedisStats = d.Redis.PoolStats
		adminCfg.RedisPing = d.Redis.Ping
	}

	return Routes{
		Sessions:   d.Sessions,
		Identities: users,
		Auth:       auth.NewHandler(auth.NewService(users, d.Sessions, d.Validate), d.Session),
		Users:      user.NewHandler(users),
		Reset:      reset.NewHandler(resets),
		Cats:       cat.NewHandler(cats),
		Taxonomy:   taxonomy.NewHandler(breeds),
		Admin:      admin.NewHandler(adminCfg),
	}
}
