// AngelaMos | 2026
// handler.go

// Package admin serves the administrator dashboard counters.
package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/user"
)

// HandlerConfig wires the counters shown on the admin dashboard. Pool and
// ping hooks are optional; the in-memory backend leaves them nil.
type HandlerConfig struct {
	UserStats  func(ctx context.Context) (user.Stats, error)
	CatStats   func(ctx context.Context) (cat.Stats, error)
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
}

type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

// RegisterRoutes mounts under an already gated /admin router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.GetClubStats)
		r.Get("/system", h.GetSystemStats)
	})
}

// GetClubStats reports member and cat counts by moderation status.
func (h *Handler) GetClubStats(w http.ResponseWriter, r *http.Request) {
	var resp ClubStatsResponse

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		members, err := h.cfg.UserStats(ctx)
		resp.Members = MemberStats(members)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Cats, err = h.cfg.CatStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, resp)
}

// GetSystemStats reports backend reachability, pool usage and process
// memory. A backend without a ping hook counts as healthy.
func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := SystemStatsResponse{
		Database: DatabaseStatus{Healthy: reachable(ctx, h.cfg.DBPing)},
		Redis:    RedisStatus{Healthy: reachable(ctx, h.cfg.RedisPing)},
		Runtime:  readRuntimeStats(),
	}
	if h.cfg.DBStats != nil {
		resp.Database.Stats = newDBPoolStats(h.cfg.DBStats())
	}
	if h.cfg.RedisStats != nil {
		resp.Redis.Stats = newRedisPoolStats(h.cfg.RedisStats())
	}

	core.OK(w, resp)
}

func reachable(ctx context.Context, ping func(context.Context) error) bool {
	return ping == nil || ping(ctx) == nil
}

func readRuntimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		HeapAlloc:    mem.HeapAlloc,
		NumGC:        mem.NumGC,
	}
}
