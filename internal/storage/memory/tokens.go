// AngelaMos | 2026
// tokens.go

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/reset"
)

type tokenRepo struct {
	db access
}

func (st *state) tokenByHash(hash string) (reset.Token, bool) {
	for _, t := range st.tokens {
		if t.TokenHash == hash {
			return t, true
		}
	}
	return reset.Token{}, false
}

func (r *tokenRepo) Create(_ context.Context, token *reset.Token) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.users[token.UserID]; !ok {
			return fmt.Errorf("create reset token: %w", core.ErrNotFound)
		}
		if _, taken := st.tokenByHash(token.TokenHash); taken {
			return fmt.Errorf("create reset token: %w", core.ErrDuplicateKey)
		}
		token.CreatedAt = r.db.now()
		st.tokens[token.ID] = *token
		return nil
	})
}

func (r *tokenRepo) FindByHash(_ context.Context, tokenHash string) (*reset.Token, error) {
	var out reset.Token
	err := r.db.read(func(st *state) error {
		t, ok := st.tokenByHash(tokenHash)
		if !ok {
			return fmt.Errorf("find reset token: %w", core.ErrNotFound)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByHashForUpdate needs no row lock here: a transaction already holds
// the store's write lock.
func (r *tokenRepo) FindByHashForUpdate(ctx context.Context, tokenHash string) (*reset.Token, error) {
	return r.FindByHash(ctx, tokenHash)
}

func (r *tokenRepo) MarkUsed(_ context.Context, id string, at time.Time) error {
	return r.db.write(func(st *state) error {
		t, ok := st.tokens[id]
		if !ok || t.Used {
			return fmt.Errorf("mark reset token used: %w", core.ErrTokenExpired)
		}
		t.MarkUsed(at)
		st.tokens[id] = t
		return nil
	})
}

func (r *tokenRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.db.write(func(st *state) error {
		for id, t := range st.tokens {
			if t.ExpiresAt.Before(cutoff) {
				delete(st.tokens, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

var _ reset.Repository = (*tokenRepo)(nil)
