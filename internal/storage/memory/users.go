// AngelaMos | 2026
// users.go

package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/user"
)

type userRepo struct {
	db access
}

func (st *state) userByEmail(email string) (user.User, bool) {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return user.User{}, false
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	return r.db.write(func(st *state) error {
		if _, taken := st.userByEmail(u.Email); taken {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}

		now := r.db.now()
		u.CreatedAt = now
		u.UpdatedAt = now
		u.TokenVersion = 1
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	var out user.User
	err := r.db.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("get user: %w", core.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	var out user.User
	err := r.db.read(func(st *state) error {
		u, ok := st.userByEmail(email)
		if !ok {
			return fmt.Errorf("get user by email: %w", core.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	return r.db.write(func(st *state) error {
		current, ok := st.users[u.ID]
		if !ok {
			return fmt.Errorf("update user: %w", core.ErrNotFound)
		}
		if other, taken := st.userByEmail(u.Email); taken && other.ID != u.ID {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}

		u.PasswordHash = current.PasswordHash
		u.TokenVersion = current.TokenVersion
		u.CreatedAt = current.CreatedAt
		u.UpdatedAt = r.db.now()
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) modify(op, id string, fn func(u *user.User)) error {
	return r.db.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("%s: %w", op, core.ErrNotFound)
		}
		fn(&u)
		u.UpdatedAt = r.db.now()
		st.users[id] = u
		return nil
	})
}

func (r *userRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.modify("update password", id, func(u *user.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *userRepo) IncrementTokenVersion(_ context.Context, id string) error {
	return r.modify("increment token version", id, func(u *user.User) {
		u.TokenVersion++
	})
}

func (r *userRepo) SetAdmin(_ context.Context, email string, isAdmin bool) (*user.User, error) {
	var out user.User
	err := r.db.write(func(st *state) error {
		u, ok := st.userByEmail(email)
		if !ok {
			return fmt.Errorf("set admin: %w", core.ErrNotFound)
		}
		u.IsAdmin = isAdmin
		u.UpdatedAt = r.db.now()
		st.users[u.ID] = u
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) CountOwnedCats(_ context.Context, id string) (int, error) {
	var n int
	err := r.db.read(func(st *state) error {
		for _, c := range st.cats {
			if c.OwnerID == id {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Delete mirrors the schema: owned cats block the delete, reset tokens
// cascade.
func (r *userRepo) Delete(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return fmt.Errorf("delete user: %w", core.ErrNotFound)
		}
		for _, c := range st.cats {
			if c.OwnerID == id {
				return fmt.Errorf("delete user: %w", core.ErrIntegrity)
			}
		}

		for tokenID, t := range st.tokens {
			if t.UserID == id {
				delete(st.tokens, tokenID)
			}
		}
		delete(st.users, id)
		return nil
	})
}

func (r *userRepo) List(ctx context.Context, params user.ListUsersParams) ([]user.User, query.PageInfo, error) {
	var matched []user.User
	err := r.db.read(func(st *state) error {
		search := strings.TrimSpace(params.Search)
		for _, u := range st.users {
			if !containsFold(search, u.Name, u.Email) {
				continue
			}
			if params.Admin != nil && u.IsAdmin != *params.Admin {
				continue
			}
			matched = append(matched, u)
		}
		return nil
	})
	if err != nil {
		return nil, query.PageInfo{}, err
	}

	newestFirst(matched,
		func(u user.User) time.Time { return u.CreatedAt },
		func(u user.User) string { return u.ID },
	)

	return page(ctx, params.Params, matched)
}

func (r *userRepo) Stats(_ context.Context) (user.Stats, error) {
	var s user.Stats
	err := r.db.read(func(st *state) error {
		for _, u := range st.users {
			s.Total++
			if u.IsAdmin {
				s.Admins++
			}
		}
		return nil
	})
	return s, err
}

var _ user.Repository = (*userRepo)(nil)
