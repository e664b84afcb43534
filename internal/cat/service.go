// AngelaMos | 2026
// service.go

package cat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/metrics"
	"github.com/catclube/registry/internal/query"
)

var errUnknownReference = core.Invalid("", "owner, breed or color does not exist")

// ErrColorBreedMismatch rejects a color that belongs to another breed than
// the one chosen in the same slot.
var ErrColorBreedMismatch = core.Invalid("color_id", "color does not belong to the selected breed")

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Create registers a cat for ownerID. The only required field is the name;
// the record always starts pending.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateCatRequest) (*Cat, error) {
	req.normalize()
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	cat := &Cat{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Status:  StatusPending,
	}
	if err := req.apply(cat); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "cat registered",
		"cat_id", cat.ID,
		"owner_id", ownerID,
	)

	return cat, nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	return s.repo.GetView(ctx, id)
}

// GetOwned returns the cat only when ownerID owns it. Other members see
// core.ErrNotFound.
func (s *Service) GetOwned(ctx context.Context, ownerID, id string) (*View, error) {
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.OwnerID != ownerID {
		return nil, fmt.Errorf("get cat: %w", core.ErrNotFound)
	}
	return view, nil
}

// Update is the admin edit. Every field is overwritten as submitted; no
// workflow rule applies, so a terminal status can be changed here.
func (s *Service) Update(ctx context.Context, id string, req UpdateCatRequest) (*Cat, error) {
	req.normalize()
	req.Status = strings.TrimSpace(req.Status)
	if err := core.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.apply(cat); err != nil {
		return nil, err
	}
	cat.OwnerID = req.OwnerID
	cat.Status = Status(req.Status)

	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "cat updated", "cat_id", cat.ID, "status", cat.Status)
	return cat, nil
}

// ParseAction maps a moderation action onto the status it produces.
func ParseAction(action string) (Status, error) {
	switch action {
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("moderation action %q: %w", action, core.ErrInvalidAction)
}

// Transition applies approve or reject to a pending cat. Repeating the
// action that produced the current status succeeds without a write; the
// opposite action on a decided cat fails with core.ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id, action string) (cat *Cat, err error) {
	ctx, span := core.StartSpan(ctx, "cat.Transition",
		attribute.String("cat.id", id),
		attribute.String("cat.action", action),
	)
	defer span.End()

	defer func() {
		label := action
		if label != ActionApprove && label != ActionReject {
			label = "invalid"
		}
		metrics.CatTransitionsTotal.WithLabelValues(label, metrics.Result(err)).Inc()
		if err != nil {
			core.SetSpanError(ctx, err)
		}
	}()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := ParseAction(action)
	if err != nil {
		return nil, err
	}

	if current.Status == target {
		return current, nil
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%s cat in status %s: %w", action, current.Status, core.ErrInvalidTransition)
	}

	cat, err = s.repo.TransitionStatus(ctx, id, current.Status, target)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidTransition) {
			return nil, err
		}
		// Another admin decided first; agreeing with them is still a no-op.
		latest, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status != target {
			return nil, err
		}
		return latest, nil
	}

	core.AddSpanEvent(ctx, "cat.status_changed",
		attribute.String("cat.from", string(current.Status)),
		attribute.String("cat.to", string(target)),
	)
	slog.InfoContext(ctx, "cat status changed",
		"cat_id", id,
		"from", current.Status,
		"to", target,
	)

	return cat, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "cat deleted", "cat_id", id)
	return nil
}

// Dashboard lists the member's own cats, newest first.
func (s *Service) Dashboard(ctx context.Context, ownerID string) ([]View, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Pending is the moderation queue, newest first.
func (s *Service) Pending(ctx context.Context) ([]View, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

func (s *Service) List(ctx context.Context, params ListCatsParams) ([]View, query.PageInfo, error) {
	params.Search = strings.TrimSpace(params.Search)
	params.Status = strings.TrimSpace(params.Status)

	if _, err := uuid.Parse(params.BreedID); err != nil {
		params.BreedID = ""
	}
	if _, err := uuid.Parse(params.OwnerID); err != nil {
		params.OwnerID = ""
	}

	return s.repo.List(ctx, params)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
