// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/middleware"
	"github.com/catclube/registry/internal/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts member management; the caller applies the
// authenticator and admin gate. Each extension is mounted inside /users so
// other packages can hang routes off a member.
func (h *Handler) RegisterAdminRoutes(r chi.Router, extensions ...func(chi.Router)) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/promote", h.Promote)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)

		for _, extend := range extensions {
			extend(r)
		}
	})
}

// ListUsers returns a page of members filtered by ?search= and ?admin=.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListUsersParams{
		Params: query.FromRequest(r),
		Search: q.Get("search"),
	}
	if raw := q.Get("admin"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			params.Admin = &v
		}
	}

	users, info, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), info)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("email"))
		default:
			core.WriteError(w, r, err)
		}
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentIdentity(r.Context())
	if actor == nil {
		core.Unauthorized(w, "")
		return
	}

	err := h.service.DeleteUser(r.Context(), actor.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "you cannot delete your own account")
		case errors.Is(err, core.ErrIntegrity):
			core.JSONError(w, core.IntegrityError("user still owns registered cats"))
		default:
			core.WriteError(w, r, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	var req PromoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := core.ValidateStruct(h.service.validate, req); err != nil {
		core.WriteError(w, r, err)
		return
	}

	user, err := h.service.SetAdmin(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}
