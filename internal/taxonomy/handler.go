// AngelaMos | 2026
// handler.go

package taxonomy

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type BreedDetail struct {
	BreedResponse
	Colors []ColorResponse `json:"colors"`
}

// RegisterRoutes mounts the read-only lookups used by the cat form.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/breeds", h.AllBreeds)
	r.Get("/colors", h.ColorsForBreed)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/breeds", func(r chi.Router) {
		r.Get("/", h.ListBreeds)
		r.Post("/", h.CreateBreed)
		r.Get("/{breedID}", h.GetBreed)
		r.Put("/{breedID}", h.UpdateBreed)
		r.Delete("/{breedID}", h.DeleteBreed)
		r.Get("/{breedID}/colors", h.BreedColors)
		r.Post("/{breedID}/colors", h.CreateColor)
	})

	r.Route("/colors", func(r chi.Router) {
		r.Get("/{colorID}", h.GetColor)
		r.Put("/{colorID}", h.UpdateColor)
		r.Delete("/{colorID}", h.DeleteColor)
	})
}

func (h *Handler) AllBreeds(w http.ResponseWriter, r *http.Request) {
	breeds, err := h.service.AllBreeds(r.Context())
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToBreedResponseList(breeds))
}

// ColorsForBreed answers ?breed_id= with the breed's colors, or an empty
// list when the id is missing or unknown.
func (h *Handler) ColorsForBreed(w http.ResponseWriter, r *http.Request) {
	colors, err := h.service.ListColorsForBreed(r.Context(), r.URL.Query().Get("breed_id"))
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToColorResponseList(colors))
}

func (h *Handler) ListBreeds(w http.ResponseWriter, r *http.Request) {
	params := ListBreedsParams{
		Params: query.FromRequest(r),
		Search: r.URL.Query().Get("search"),
	}

	breeds, info, err := h.service.ListBreeds(r.Context(), params)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.Paginated(w, ToBreedResponseList(breeds), info)
}

func (h *Handler) CreateBreed(w http.ResponseWriter, r *http.Request) {
	var req BreedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	breed, err := h.service.CreateBreed(r.Context(), req)
	if err != nil {
		writeBreedError(w, r, err)
		return
	}

	core.Created(w, ToBreedResponse(breed))
}

func (h *Handler) GetBreed(w http.ResponseWriter, r *http.Request) {
	breedID := chi.URLParam(r, "breedID")

	breed, err := h.service.GetBreed(r.Context(), breedID)
	if err != nil {
		writeBreedError(w, r, err)
		return
	}

	colors, err := h.service.ListColorsForBreed(r.Context(), breedID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, BreedDetail{
		BreedResponse: ToBreedResponse(breed),
		Colors:        ToColorResponseList(colors),
	})
}

func (h *Handler) UpdateBreed(w http.ResponseWriter, r *http.Request) {
	var req BreedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	breed, err := h.service.UpdateBreed(r.Context(), chi.URLParam(r, "breedID"), req)
	if err != nil {
		writeBreedError(w, r, err)
		return
	}

	core.OK(w, ToBreedResponse(breed))
}

func (h *Handler) DeleteBreed(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBreed(r.Context(), chi.URLParam(r, "breedID")); err != nil {
		writeBreedError(w, r, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) BreedColors(w http.ResponseWriter, r *http.Request) {
	breedID := chi.URLParam(r, "breedID")

	if _, err := h.service.GetBreed(r.Context(), breedID); err != nil {
		writeBreedError(w, r, err)
		return
	}

	colors, err := h.service.ListColorsForBreed(r.Context(), breedID)
	if err != nil {
		core.WriteError(w, r, err)
		return
	}

	core.OK(w, ToColorResponseList(colors))
}

func (h *Handler) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	color, err := h.service.CreateColor(r.Context(), chi.URLParam(r, "breedID"), req)
	if err != nil {
		writeBreedError(w, r, err)
		return
	}

	core.Created(w, ToColorResponse(color))
}

func (h *Handler) GetColor(w http.ResponseWriter, r *http.Request) {
	color, err := h.service.GetColor(r.Context(), chi.URLParam(r, "colorID"))
	if err != nil {
		writeColorError(w, r, err)
		return
	}

	core.OK(w, ToColorResponse(color))
}

func (h *Handler) UpdateColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	color, err := h.service.UpdateColor(r.Context(), chi.URLParam(r, "colorID"), req)
	if err != nil {
		writeColorError(w, r, err)
		return
	}

	core.OK(w, ToColorResponse(color))
}

func (h *Handler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteColor(r.Context(), chi.URLParam(r, "colorID")); err != nil {
		writeColorError(w, r, err)
		return
	}

	core.NoContent(w)
}

func writeBreedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "breed")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("breed name"))
	case errors.Is(err, core.ErrIntegrity):
		core.JSONError(w, core.IntegrityError("breed is still used by registered cats"))
	default:
		core.WriteError(w, r, err)
	}
}

func writeColorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "color")
	case errors.Is(err, core.ErrIntegrity):
		core.JSONError(w, core.IntegrityError("color is still used by registered cats"))
	default:
		core.WriteError(w, r, err)
	}
}
