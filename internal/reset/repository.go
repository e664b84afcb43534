// AngelaMos | 2026
// repository.go

package reset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/user"
)

type Repository interface {
	Create(ctx context.Context, token *Token) error
	FindByHash(ctx context.Context, tokenHash string) (*Token, error)
	// FindByHashForUpdate locks the row until the surrounding transaction
	// ends. Outside a transaction it behaves like FindByHash.
	FindByHashForUpdate(ctx context.Context, tokenHash string) (*Token, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Tx exposes the repositories that share one transaction.
type Tx interface {
	Tokens() Repository
	Users() user.Repository
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

const tokenColumns = `id, user_id, token_hash, expires_at, used, used_at, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *Token) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &token.CreatedAt, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
	)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create reset token: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create reset token: %w", err)
	}

	return nil
}

func (r *repository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*Token, error) {
	return r.find(ctx, `SELECT `+tokenColumns+`
		FROM password_reset_tokens
		WHERE token_hash = $1`, tokenHash)
}

func (r *repository) FindByHashForUpdate(
	ctx context.Context,
	tokenHash string,
) (*Token, error) {
	return r.find(ctx, `SELECT `+tokenColumns+`
		FROM password_reset_tokens
		WHERE token_hash = $1
		FOR UPDATE`, tokenHash)
}

func (r *repository) find(ctx context.Context, query, tokenHash string) (*Token, error) {
	var token Token
	err := r.db.GetContext(ctx, &token, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	return &token, nil
}

// MarkUsed flips the used flag only if it is still false. Losing that race
// reports ErrTokenExpired.
func (r *repository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE password_reset_tokens
		SET used = true, used_at = $2
		WHERE id = $1 AND used = false`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark reset token used: %w", core.ErrTokenExpired)
	}

	return nil
}

func (r *repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}

	return rows, nil
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t pgTx) Tokens() Repository     { return NewRepository(t.tx) }
func (t pgTx) Users() user.Repository { return user.NewRepository(t.tx) }

type pgTransactor struct {
	db *sqlx.DB
}

// NewTransactor runs reset work inside core.InTx on db.
func NewTransactor(db *sqlx.DB) Transactor {
	return &pgTransactor{db: db}
}

func (p *pgTransactor) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return core.InTx(ctx, p.db, func(tx *sqlx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}
