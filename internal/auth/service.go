// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/metrics"
	"github.com/catclube/registry/internal/middleware"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", core.ErrUnauthorized)
	ErrEmailExists        = fmt.Errorf("email already registered: %w", core.ErrDuplicateKey)
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	TokenVersion int
}

// NewAccount is everything needed to store a new member.
type NewAccount struct {
	Email        string
	PasswordHash string
	Name         string
	BirthDate    *time.Time
	Sex          string
	NationalID   string
	Phone        string
	Address      string
	Address2     string
	District     string
	City         string
	State        string
	PostalCode   string
	Country      string
	IsAdmin      bool
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, account NewAccount) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	users    UserProvider
	sessions *JWTManager
	validate *validator.Validate
}

func NewService(
	users UserProvider,
	sessions *JWTManager,
	validate *validator.Validate,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		validate: validate,
	}
}

// Register validates the form, stores an argon2id hash of the password and
// opens a session for the new member. An e-mail already taken in any letter
// case yields ErrEmailExists.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (resp *AuthResponse, err error) {
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	birth, err := core.ParseDate("birth_date", req.BirthDate)
	if err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewAccount{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		BirthDate:    birth,
		Sex:          strings.TrimSpace(req.Sex),
		NationalID:   strings.TrimSpace(req.NationalID),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Address2:     strings.TrimSpace(req.Address2),
		District:     strings.TrimSpace(req.District),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Country:      strings.TrimSpace(req.Country),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "member registered", "user_id", user.ID)

	return s.createAuthResponse(user)
}

// Login answers unknown e-mails and wrong passwords identically, and spends
// the same argon2 work on both.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (resp *AuthResponse, err error) {
	defer func() {
		metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // same argon2 cost as a real account
			_, _ = core.CheckPassword(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	check, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !check.Valid {
		return nil, ErrInvalidCredentials
	}

	if check.Rehash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, check.Rehash)
	}

	return s.createAuthResponse(user)
}

// Logout revokes the presented session until it would have expired.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.SessionClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	session, err := s.sessions.CreateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("create session token: %w", err)
	}

	return &AuthResponse{
		User: UserResponse{
			ID:      user.ID,
			Email:   user.Email,
			Name:    user.Name,
			IsAdmin: user.IsAdmin,
		},
		Session: SessionResponse{
			Token:     session.Token,
			TokenType: "Bearer",
			ExpiresIn: int(time.Until(session.ExpiresAt).Seconds()),
			ExpiresAt: session.ExpiresAt,
		},
	}, nil
}
