// AngelaMos | 2026
// taxonomy.go

package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/taxonomy"
)

type taxonomyRepo struct {
	db access
}

func (st *state) breedNameTaken(name, exceptID string) bool {
	for _, b := range st.breeds {
		if b.ID != exceptID && strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

// catReferences reports whether any cat points at one of the breeds or
// colors, in its own slot or its parents'.
func (st *state) catReferences(breedIDs, colorIDs []string) bool {
	for _, c := range st.cats {
		breeds, colors := c.References()
		for _, id := range breeds {
			if slices.Contains(breedIDs, id) {
				return true
			}
		}
		for _, id := range colors {
			if slices.Contains(colorIDs, id) {
				return true
			}
		}
	}
	return false
}

func byName[T any](items []T, name func(T) string, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ni, nj := name(items[i]), name(items[j])
		if ni != nj {
			return ni < nj
		}
		return id(items[i]) < id(items[j])
	})
}

func sortBreeds(breeds []taxonomy.Breed) {
	byName(breeds,
		func(b taxonomy.Breed) string { return b.Name },
		func(b taxonomy.Breed) string { return b.ID },
	)
}

func (r *taxonomyRepo) CreateBreed(_ context.Context, breed *taxonomy.Breed) error {
	return r.db.write(func(st *state) error {
		if st.breedNameTaken(breed.Name, "") {
			return fmt.Errorf("create breed: %w", core.ErrDuplicateKey)
		}
		breed.CreatedAt = r.db.now()
		st.breeds[breed.ID] = *breed
		return nil
	})
}

func (r *taxonomyRepo) GetBreed(_ context.Context, id string) (*taxonomy.Breed, error) {
	var out taxonomy.Breed
	err := r.db.read(func(st *state) error {
		b, ok := st.breeds[id]
		if !ok {
			return fmt.Errorf("get breed: %w", core.ErrNotFound)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *taxonomyRepo) UpdateBreed(_ context.Context, breed *taxonomy.Breed) error {
	return r.db.write(func(st *state) error {
		current, ok := st.breeds[breed.ID]
		if !ok {
			return fmt.Errorf("update breed: %w", core.ErrNotFound)
		}
		if st.breedNameTaken(breed.Name, breed.ID) {
			return fmt.Errorf("update breed: %w", core.ErrDuplicateKey)
		}
		current.Name = breed.Name
		st.breeds[breed.ID] = current
		return nil
	})
}

func (r *taxonomyRepo) DeleteBreed(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.breeds[id]; !ok {
			return fmt.Errorf("delete breed: %w", core.ErrNotFound)
		}

		var colorIDs []string
		for _, c := range st.colors {
			if c.BreedID == id {
				colorIDs = append(colorIDs, c.ID)
			}
		}

		if st.catReferences([]string{id}, colorIDs) {
			return fmt.Errorf("delete breed: %w", core.ErrIntegrity)
		}

		for _, colorID := range colorIDs {
			delete(st.colors, colorID)
		}
		delete(st.breeds, id)
		return nil
	})
}

func (r *taxonomyRepo) ListBreeds(
	ctx context.Context,
	params taxonomy.ListBreedsParams,
) ([]taxonomy.Breed, query.PageInfo, error) {
	var matched []taxonomy.Breed
	err := r.db.read(func(st *state) error {
		search := strings.TrimSpace(params.Search)
		for _, b := range st.breeds {
			if containsFold(search, b.Name) {
				matched = append(matched, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, query.PageInfo{}, err
	}

	sortBreeds(matched)
	return page(ctx, params.Params, matched)
}

func (r *taxonomyRepo) AllBreeds(_ context.Context) ([]taxonomy.Breed, error) {
	breeds := []taxonomy.Breed{}
	err := r.db.read(func(st *state) error {
		for _, b := range st.breeds {
			breeds = append(breeds, b)
		}
		return nil
	})
	sortBreeds(breeds)
	return breeds, err
}

func (r *taxonomyRepo) CreateColor(_ context.Context, color *taxonomy.Color) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.breeds[color.BreedID]; !ok {
			return fmt.Errorf("create color: breed: %w", core.ErrNotFound)
		}
		color.CreatedAt = r.db.now()
		st.colors[color.ID] = *color
		return nil
	})
}

func (r *taxonomyRepo) GetColor(_ context.Context, id string) (*taxonomy.Color, error) {
	var out taxonomy.Color
	err := r.db.read(func(st *state) error {
		c, ok := st.colors[id]
		if !ok {
			return fmt.Errorf("get color: %w", core.ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *taxonomyRepo) UpdateColor(_ context.Context, color *taxonomy.Color) error {
	return r.db.write(func(st *state) error {
		current, ok := st.colors[color.ID]
		if !ok {
			return fmt.Errorf("update color: %w", core.ErrNotFound)
		}
		current.Name = color.Name
		current.EMSCode = color.EMSCode
		st.colors[color.ID] = current
		return nil
	})
}

func (r *taxonomyRepo) DeleteColor(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.colors[id]; !ok {
			return fmt.Errorf("delete color: %w", core.ErrNotFound)
		}
		if st.catReferences(nil, []string{id}) {
			return fmt.Errorf("delete color: %w", core.ErrIntegrity)
		}
		delete(st.colors, id)
		return nil
	})
}

func (r *taxonomyRepo) ListColors(_ context.Context, breedID string) ([]taxonomy.Color, error) {
	colors := []taxonomy.Color{}
	err := r.db.read(func(st *state) error {
		for _, c := range st.colors {
			if c.BreedID == breedID {
				colors = append(colors, c)
			}
		}
		return nil
	})
	byName(colors,
		func(c taxonomy.Color) string { return c.Name },
		func(c taxonomy.Color) string { return c.ID },
	)
	return colors, err
}

var _ taxonomy.Repository = (*taxonomyRepo)(nil)
