// AngelaMos | 2026
// handler.go

package reset

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catclube/registry/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RedeemRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type CheckResponse struct {
	Valid bool `json:"valid"`
}

// RegisterRoutes mounts the public redemption endpoints.
func (h *Handler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Route("/password-reset", func(r chi.Router) {
		r.Use(limiter)
		r.Get("/{token}", h.Check)
		r.Post("/{token}", h.Redeem)
	})
}

// RegisterUserRoutes mounts issuance under an admin /users router.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Post("/{userID}/password-reset", h.Issue)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Check(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeTokenError(w, r, err)
		return
	}

	core.OK(w, CheckResponse{Valid: true})
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	err := h.service.Redeem(
		r.Context(),
		chi.URLParam(r, "token"),
		req.Password,
		req.PasswordConfirm,
	)
	if err != nil {
		writeTokenError(w, r, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	issued, err := h.service.Issue(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.WriteError(w, r, err)
		return
	}

	core.Created(w, issued)
}

func writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.NewAppError(
			core.ErrTokenInvalid,
			"reset link is invalid",
			http.StatusBadRequest,
			"TOKEN_INVALID",
		))
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.NewAppError(
			core.ErrTokenExpired,
			"reset link has expired or was already used",
			http.StatusGone,
			"TOKEN_EXPIRED",
		))
	default:
		core.WriteError(w, r, err)
	}
}
