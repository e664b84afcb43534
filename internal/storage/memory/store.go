// AngelaMos | 2026
// store.go

// Package memory is a process-local backend implementing every repository.
// It serves development without Postgres and the service tests. Each write
// works on a copy of the state that replaces the original only on success,
// so a failed operation or transaction leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

type state struct {
	users  map[string]user.User
	breeds map[string]taxonomy.Breed
	colors map[string]taxonomy.Color
	cats   map[string]cat.Cat
	tokens map[string]reset.Token
}

func newState() *state {
	return &state{
		users:  map[string]user.User{},
		breeds: map[string]taxonomy.Breed{},
		colors: map[string]taxonomy.Color{},
		cats:   map[string]cat.Cat{},
		tokens: map[string]reset.Token{},
	}
}

func (s *state) clone() *state {
	return &state{
		users:  maps.Clone(s.users),
		breeds: maps.Clone(s.breeds),
		colors: maps.Clone(s.colors),
		cats:   maps.Clone(s.cats),
		tokens: maps.Clone(s.tokens),
	}
}

// access is how repositories reach the state: through the store's lock, or
// directly on a transaction's private copy.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	now() time.Time
}

type Store struct {
	mu    sync.RWMutex
	state *state
	clock func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps the store assigns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.clock = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		state: newState(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func (s *Store) Users() user.Repository            { return &userRepo{db: s} }
func (s *Store) Taxonomy() taxonomy.Repository     { return &taxonomyRepo{db: s} }
func (s *Store) Cats() cat.Repository              { return &catRepo{db: s} }
func (s *Store) ResetTokens() reset.Repository     { return &tokenRepo{db: s} }
func (s *Store) ResetTransactor() reset.Transactor { return s }

// Ping always succeeds; it lets the store stand in for a database in
// readiness checks.
func (s *Store) Ping(context.Context) error {
	return nil
}

type txAccess struct {
	st    *state
	clock func() time.Time
}

func (t *txAccess) read(fn func(st *state) error) error  { return fn(t.st) }
func (t *txAccess) write(fn func(st *state) error) error { return fn(t.st) }
func (t *txAccess) now() time.Time                       { return t.clock().UTC() }

type resetTx struct {
	db access
}

func (t resetTx) Tokens() reset.Repository { return &tokenRepo{db: t.db} }
func (t resetTx) Users() user.Repository   { return &userRepo{db: t.db} }

// WithTx holds the write lock for the whole of fn and publishes its changes
// only if fn succeeds.
func (s *Store) WithTx(_ context.Context, fn func(tx reset.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(resetTx{db: &txAccess{st: next, clock: s.clock}}); err != nil {
		return err
	}
	s.state = next
	return nil
}

func containsFold(text string, fields ...string) bool {
	if text == "" {
		return true
	}
	text = strings.ToLower(text)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), text) {
			return true
		}
	}
	return false
}

// newestFirst orders by creation time descending with the id as tiebreaker,
// the same order the SQL listings use.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func page[T any](ctx context.Context, params query.Params, items []T) ([]T, query.PageInfo, error) {
	return query.Paginate(ctx, params,
		func(context.Context) (int, error) { return len(items), nil },
		func(_ context.Context, limit, offset int) ([]T, error) {
			info := query.PageInfo{Page: offset/limit + 1, PerPage: limit}
			return query.Slice(items, info), nil
		},
	)
}

var (
	_ reset.Transactor = (*Store)(nil)
	_ access           = (*Store)(nil)
)
