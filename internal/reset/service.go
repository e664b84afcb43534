// AngelaMos | 2026
// service.go

package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/catclube/registry/internal/config"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/metrics"
	"github.com/catclube/registry/internal/user"
)

const (
	MinPasswordLength = 6
	DefaultTokenTTL   = 24 * time.Hour
	purgeGrace        = 24 * time.Hour
)

type Notifier interface {
	Dispatch(ctx context.Context, to, subject, body string)
}

type Service struct {
	tx       Transactor
	tokens   Repository
	users    user.Repository
	notifier Notifier
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	tx Transactor,
	tokens Repository,
	users user.Repository,
	notifier Notifier,
	cfg config.ResetConfig,
	opts ...Option,
) *Service {
	s := &Service{
		tx:       tx,
		tokens:   tokens,
		users:    users,
		notifier: notifier,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		ttl:      cfg.TokenTTL,
		now:      time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issued is returned once to the administrator who triggered the reset.
type Issued struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
}

// Issue creates a fresh reset token for userID. Earlier tokens for the same
// member stay valid until they expire or are used.
func (s *Service) Issue(ctx context.Context, userID string) (issued *Issued, err error) {
	defer func() {
		metrics.ResetTokensTotal.WithLabelValues("issue", metrics.Result(err)).Inc()
	}()

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	raw, err := core.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	token := &Token{
		ID:        uuid.New().String(),
		UserID:    target.ID,
		TokenHash: core.HashToken(raw),
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	issued = &Issued{
		Token:     raw,
		URL:       s.baseURL + "/reset/" + url.PathEscape(raw),
		ExpiresAt: token.ExpiresAt,
		UserID:    target.ID,
		Email:     target.Email,
	}

	s.notifier.Dispatch(ctx, target.Email, "Password reset", resetMessage(target.Name, issued))

	slog.InfoContext(ctx, "password reset token issued",
		"user_id", target.ID,
		"expires_at", issued.ExpiresAt,
	)

	return issued, nil
}

// Check reports whether raw can still be redeemed, without consuming it.
func (s *Service) Check(ctx context.Context, raw string) error {
	_, err := s.lookup(ctx, raw)
	return err
}

// Redeem sets a new password using raw. The checks run in order: unknown
// token, used or expired token, then the password itself. Marking the token
// used and storing the new hash commit together.
func (s *Service) Redeem(ctx context.Context, raw, password, confirm string) (err error) {
	ctx, span := core.StartSpan(ctx, "reset.Redeem")
	defer span.End()

	defer func() {
		metrics.ResetTokensTotal.WithLabelValues("redeem", metrics.Result(err)).Inc()
		if err != nil {
			core.SetSpanError(ctx, err)
		}
	}()

	token, err := s.lookup(ctx, raw)
	if err != nil {
		slog.WarnContext(ctx, "password reset redemption refused", "error", err)
		return err
	}

	if len(password) < MinPasswordLength {
		return core.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if password != confirm {
		return core.Invalid("password_confirm", "passwords do not match")
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("redeem reset token: hash password: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx Tx) error {
		locked, err := tx.Tokens().FindByHashForUpdate(ctx, token.TokenHash)
		if err != nil {
			return err
		}

		now := s.now()
		if !locked.Redeemable(now) {
			return fmt.Errorf("redeem reset token: %w", core.ErrTokenExpired)
		}

		if err := tx.Tokens().MarkUsed(ctx, locked.ID, now); err != nil {
			return err
		}

		if err := tx.Users().UpdatePassword(ctx, locked.UserID, passwordHash); err != nil {
			return err
		}

		return tx.Users().IncrementTokenVersion(ctx, locked.UserID)
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("redeem reset token: %w", core.ErrTokenInvalid)
		}
		return err
	}

	core.AddSpanEvent(ctx, "password_reset.redeemed", attribute.String("user_id", token.UserID))
	slog.InfoContext(ctx, "password reset completed", "user_id", token.UserID)

	return nil
}

// Purge removes tokens that expired more than a day ago.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now().Add(-purgeGrace))
}

func (s *Service) lookup(ctx context.Context, raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("reset token: %w", core.ErrTokenInvalid)
	}

	token, err := s.tokens.FindByHash(ctx, core.HashToken(raw))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("reset token: %w", core.ErrTokenInvalid)
		}
		return nil, err
	}

	if !token.Redeemable(s.now()) {
		return nil, fmt.Errorf("reset token: %w", core.ErrTokenExpired)
	}

	return token, nil
}

func resetMessage(name string, issued *Issued) string {
	return fmt.Sprintf(
		"Hello %s,\n\nUse the link below to choose a new password:\n%s\n\nThe link expires at %s.\n",
		name,
		issued.URL,
		issued.ExpiresAt.UTC().Format(time.RFC1123),
	)
}
