// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/middleware"
	"github.com/catclube/registry/internal/query"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	account auth.NewAccount,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(account.Email),
		PasswordHash: account.PasswordHash,
		Profile: Profile{
			Name:       account.Name,
			BirthDate:  account.BirthDate,
			Sex:        account.Sex,
			NationalID: account.NationalID,
			Phone:      account.Phone,
			Address:    account.Address,
			Address2:   account.Address2,
			District:   account.District,
			City:       account.City,
			State:      account.State,
			PostalCode: account.PostalCode,
			Country:    account.Country,
		},
		IsAdmin: account.IsAdmin,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// ResolveIdentity loads the acting user for the request guard.
func (s *Service) ResolveIdentity(
	ctx context.Context,
	userID string,
) (*middleware.Identity, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &middleware.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		IsAdmin:      user.IsAdmin,
		TokenVersion: user.TokenVersion,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, query.PageInfo, error) {
	return s.repo.List(ctx, params)
}

// UpdateUser overwrites the profile, e-mail and admin flag. The e-mail is
// normalized and must stay unique.
func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	req.normalize()
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	profile, err := req.ToProfile()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	user.Profile = profile
	user.IsAdmin = req.IsAdmin

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes targetID on behalf of actorID. Members that still own
// cats are kept, and nobody can delete their own account.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return fmt.Errorf("delete user: cannot delete own account: %w", core.ErrForbidden)
	}

	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return err
	}

	owned, err := s.repo.CountOwnedCats(ctx, targetID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return fmt.Errorf("delete user: owns %d cats: %w", owned, core.ErrIntegrity)
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user deleted", "user_id", targetID, "actor_id", actorID)
	return nil
}

// SetAdmin promotes the member registered under email.
func (s *Service) SetAdmin(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.SetAdmin(ctx, NormalizeEmail(email), true)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user promoted to admin", "user_id", user.ID)
	return user, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		TokenVersion: u.TokenVersion,
	}
}

var (
	_ auth.UserProvider           = (*Service)(nil)
	_ middleware.IdentityResolver = (*Service)(nil)
)
