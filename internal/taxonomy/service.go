// AngelaMos | 2026
// service.go

package taxonomy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (s *Service) CreateBreed(ctx context.Context, req BreedRequest) (*Breed, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	breed := &Breed{
		ID:   uuid.New().String(),
		Name: req.Name,
	}
	if err := s.repo.CreateBreed(ctx, breed); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "breed created", "breed_id", breed.ID, "name", breed.Name)
	return breed, nil
}

func (s *Service) GetBreed(ctx context.Context, id string) (*Breed, error) {
	return s.repo.GetBreed(ctx, id)
}

func (s *Service) UpdateBreed(ctx context.Context, id string, req BreedRequest) (*Breed, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	breed, err := s.repo.GetBreed(ctx, id)
	if err != nil {
		return nil, err
	}

	breed.Name = req.Name
	if err := s.repo.UpdateBreed(ctx, breed); err != nil {
		return nil, err
	}

	return breed, nil
}

// DeleteBreed refuses while any cat still points at the breed or one of its
// colors; otherwise the colors go with it.
func (s *Service) DeleteBreed(ctx context.Context, id string) error {
	if err := s.repo.DeleteBreed(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "breed deleted", "breed_id", id)
	return nil
}

func (s *Service) ListBreeds(
	ctx context.Context,
	params ListBreedsParams,
) ([]Breed, query.PageInfo, error) {
	return s.repo.ListBreeds(ctx, params)
}

func (s *Service) AllBreeds(ctx context.Context) ([]Breed, error) {
	return s.repo.AllBreeds(ctx)
}

func (s *Service) CreateColor(
	ctx context.Context,
	breedID string,
	req ColorRequest,
) (*Color, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.EMSCode = strings.TrimSpace(req.EMSCode)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBreed(ctx, breedID); err != nil {
		return nil, err
	}

	color := &Color{
		ID:      uuid.New().String(),
		BreedID: breedID,
		Name:    req.Name,
		EMSCode: req.EMSCode,
	}
	if err := s.repo.CreateColor(ctx, color); err != nil {
		return nil, err
	}

	return color, nil
}

func (s *Service) GetColor(ctx context.Context, id string) (*Color, error) {
	return s.repo.GetColor(ctx, id)
}

func (s *Service) UpdateColor(ctx context.Context, id string, req ColorRequest) (*Color, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.EMSCode = strings.TrimSpace(req.EMSCode)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	color, err := s.repo.GetColor(ctx, id)
	if err != nil {
		return nil, err
	}

	color.Name = req.Name
	color.EMSCode = req.EMSCode
	if err := s.repo.UpdateColor(ctx, color); err != nil {
		return nil, err
	}

	return color, nil
}

func (s *Service) DeleteColor(ctx context.Context, id string) error {
	if err := s.repo.DeleteColor(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "color deleted", "color_id", id)
	return nil
}

// ListColorsForBreed feeds the dependent color picker. A blank, malformed or
// unknown breed id yields an empty list rather than an error.
func (s *Service) ListColorsForBreed(ctx context.Context, breedID string) ([]Color, error) {
	breedID = strings.TrimSpace(breedID)
	if _, err := uuid.Parse(breedID); err != nil {
		return []Color{}, nil
	}

	colors, err := s.repo.ListColors(ctx, breedID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return []Color{}, nil
		}
		return nil, err
	}

	return colors, nil
}
