// AngelaMos | 2026
// dto.go

package taxonomy

import (
	"time"

	"github.com/catclube/registry/internal/query"
)

type BreedRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type ColorRequest struct {
	Name    string `json:"name"     validate:"required,max=120"`
	EMSCode string `json:"ems_code" validate:"max=32"`
}

type BreedResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ColorResponse struct {
	ID      string `json:"id"`
	BreedID string `json:"breed_id"`
	Name    string `json:"name"`
	EMSCode string `json:"ems_code"`
}

type ListBreedsParams struct {
	query.Params
	Search string
}

func ToBreedResponse(b *Breed) BreedResponse {
	return BreedResponse{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
	}
}

func ToBreedResponseList(breeds []Breed) []BreedResponse {
	out := make([]BreedResponse, 0, len(breeds))
	for i := range breeds {
		out = append(out, ToBreedResponse(&breeds[i]))
	}
	return out
}

func ToColorResponse(c *Color) ColorResponse {
	return ColorResponse{
		ID:      c.ID,
		BreedID: c.BreedID,
		Name:    c.Name,
		EMSCode: c.EMSCode,
	}
}

func ToColorResponseList(colors []Color) []ColorResponse {
	out := make([]ColorResponse, 0, len(colors))
	for i := range colors {
		out = append(out, ToColorResponse(&colors[i]))
	}
	return out
}
