// AngelaMos | 2026
// handler.go

package cat

import (
	"encoding/json"
	"errors"
	"net/http"

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

// RegisterRoutes mounts the member endpoints. The caller applies the
// authenticator.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cats", func(r chi.Router) {
		r.Get("/", h.Dashboard)
		r.Post("/", h.Create)
		r.Get("/{catID}", h.GetOwned)
	})
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/cats", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/pending", h.Pending)
		r.Get("/{catID}", h.Get)
		r.Put("/{catID}", h.Update)
		r.Delete("/{catID}", h.Delete)
		r.Post("/{catID}/{action}", h.Transition)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		core.Unauthorized(w, "")
		return
	}

	views, err := h.service.Dashboard(r.Context(), identity.UserID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToViewResponseList(views))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		core.Unauthorized(w, "")
		return
	}

	var req CreateCatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	cat, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Created(w, ToCatResponse(cat))
}

func (h *Handler) GetOwned(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r.Context())
	if identity == nil {
		core.Unauthorized(w, "")
		return
	}

	view, err := h.service.GetOwned(r.Context(), identity.UserID, chi.URLParam(r, "catID"))
	if err != nil {
		writeCatError(w, r, err)
		return
	}

	core.OK(w, ToViewResponse(view))
}

// List is the admin listing: ?search= over cat name, microchip, registry
// number and owner name, plus ?status=, ?breed_id= and ?owner_id=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListCatsParams{
		Params:  query.FromRequest(r),
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		BreedID: q.Get("breed_id"),
		OwnerID: q.Get("owner_id"),
	}

	views, info, err := h.service.List(r.Context(), params)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Paginated(w, ToViewResponseList(views), info)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Pending(r.Context())
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToViewResponseList(views))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "catID"))
	if err != nil {
		writeCatError(w, r, err)
		return
	}

	core.OK(w, ToViewResponse(view))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	cat, err := h.service.Update(r.Context(), chi.URLParam(r, "catID"), req)
	if err != nil {
		writeCatError(w, r, err)
		return
	}

	core.OK(w, ToCatResponse(cat))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "catID")); err != nil {
		writeCatError(w, r, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	cat, err := h.service.Transition(
		r.Context(),
		chi.URLParam(r, "catID"),
		chi.URLParam(r, "action"),
	)
	if err != nil {
		writeCatError(w, r, err)
		return
	}

	core.OK(w, ToCatResponse(cat))
}

func writeCatError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "cat")
	case errors.Is(err, core.ErrInvalidAction):
		core.JSONError(w, core.InvalidActionError("action must be approve or reject"))
	case errors.Is(err, core.ErrInvalidTransition):
		core.JSONError(w, core.InvalidTransitionError("cat registration was already decided"))
	default:
		core.WriteError(w, r, err)
	}
}
