// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SetAdmin(ctx context.Context, email string, isAdmin bool) (*User, error)
	CountOwnedCats(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, query.PageInfo, error)
	Stats(ctx context.Context) (Stats, error)
}

const (
	colName    query.Column = "name"
	colEmail   query.Column = "email"
	colIsAdmin query.Column = "is_admin"
)

const userColumns = `
	id, email, password_hash, name, birth_date, sex, national_id, phone,
	address, address2, district, city, state, postal_code, country,
	is_admin, token_version, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, name, birth_date, sex, national_id,
			phone, address, address2, district, city, state, postal_code,
			country, is_admin
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING created_at, updated_at, token_version`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.BirthDate,
		user.Sex,
		user.NationalID,
		user.Phone,
		user.Address,
		user.Address2,
		user.District,
		user.City,
		user.State,
		user.PostalCode,
		user.Country,
		user.IsAdmin,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.TokenVersion)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, birth_date = $4, sex = $5,
		    national_id = $6, phone = $7, address = $8, address2 = $9,
		    district = $10, city = $11, state = $12, postal_code = $13,
		    country = $14, is_admin = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Email,
		user.Name,
		user.BirthDate,
		user.Sex,
		user.NationalID,
		user.Phone,
		user.Address,
		user.Address2,
		user.District,
		user.City,
		user.State,
		user.PostalCode,
		user.Country,
		user.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment token version", query, id)
}

func (r *repository) SetAdmin(
	ctx context.Context,
	email string,
	isAdmin bool,
) (*User, error) {
	query := `
		UPDATE users
		SET is_admin = $2, updated_at = NOW()
		WHERE lower(email) = lower($1)
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, email, isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set admin: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}

	return &user, nil
}

func (r *repository) CountOwnedCats(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM cats WHERE owner_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count owned cats: %w", err)
	}
	return n, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete user: %w", core.ErrIntegrity)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, query.PageInfo, error) {
	filter := query.NewFilter(query.ContainsFold(params.Search, colName, colEmail))
	if params.Admin != nil {
		filter.Where(query.IsTrue(colIsAdmin, *params.Admin))
	}

	where, args := filter.Build(1)

	users, info, err := query.Paginate(ctx, params.Params,
		func(ctx context.Context) (int, error) {
			var total int
			err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users `+where, args...)
			return total, err
		},
		func(ctx context.Context, limit, offset int) ([]User, error) {
			n := len(args)
			stmt := fmt.Sprintf(`SELECT %s FROM users %s
				ORDER BY created_at DESC, id DESC
				LIMIT $%d OFFSET $%d`, userColumns, where, n+1, n+2)

			var users []User
			err := r.db.SelectContext(ctx, &users, stmt, append(args, limit, offset)...)
			return users, err
		},
	)
	if err != nil {
		return nil, query.PageInfo{}, fmt.Errorf("list users: %w", err)
	}

	return users, info, nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_admin) AS admins
		FROM users`)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	return s, nil
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
