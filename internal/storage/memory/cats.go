// AngelaMos | 2026
// cats.go

package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type catRepo struct {
	db access
}

var errUnknownReference = core.Invalid("", "owner, breed or color does not exist")

// checkReferences stands in for the foreign keys on cats, the composite
// breed/color keys included.
func (st *state) checkReferences(c *cat.Cat) error {
	if _, ok := st.users[c.OwnerID]; !ok {
		return errUnknownReference
	}
	breeds, colors := c.References()
	for _, id := range breeds {
		if _, ok := st.breeds[id]; !ok {
			return errUnknownReference
		}
	}
	for _, id := range colors {
		if _, ok := st.colors[id]; !ok {
			return errUnknownReference
		}
	}
	for _, pair := range c.BreedColors() {
		if st.colors[pair.ColorID].BreedID != pair.BreedID {
			return cat.ErrColorBreedMismatch
		}
	}
	return nil
}

func (st *state) view(c cat.Cat) cat.View {
	v := cat.View{Cat: c}
	if u, ok := st.users[c.OwnerID]; ok {
		v.OwnerName = u.Name
	}
	if c.BreedID != nil {
		v.BreedName = st.breeds[*c.BreedID].Name
	}
	if c.ColorID != nil {
		color := st.colors[*c.ColorID]
		v.ColorName = color.Name
		v.EMSCode = color.EMSCode
	}
	return v
}

func (r *catRepo) Create(_ context.Context, c *cat.Cat) error {
	return r.db.write(func(st *state) error {
		if err := st.checkReferences(c); err != nil {
			return fmt.Errorf("create cat: %w", err)
		}
		now := r.db.now()
		c.CreatedAt = now
		c.UpdatedAt = now
		st.cats[c.ID] = *c
		return nil
	})
}

func (r *catRepo) GetByID(_ context.Context, id string) (*cat.Cat, error) {
	var out cat.Cat
	err := r.db.read(func(st *state) error {
		c, ok := st.cats[id]
		if !ok {
			return fmt.Errorf("get cat: %w", core.ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catRepo) GetView(_ context.Context, id string) (*cat.View, error) {
	var out cat.View
	err := r.db.read(func(st *state) error {
		c, ok := st.cats[id]
		if !ok {
			return fmt.Errorf("get cat: %w", core.ErrNotFound)
		}
		out = st.view(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catRepo) Update(_ context.Context, c *cat.Cat) error {
	return r.db.write(func(st *state) error {
		current, ok := st.cats[c.ID]
		if !ok {
			return fmt.Errorf("update cat: %w", core.ErrNotFound)
		}
		if err := st.checkReferences(c); err != nil {
			return fmt.Errorf("update cat: %w", err)
		}
		c.CreatedAt = current.CreatedAt
		c.UpdatedAt = r.db.now()
		st.cats[c.ID] = *c
		return nil
	})
}

func (r *catRepo) TransitionStatus(
	_ context.Context,
	id string,
	from, to cat.Status,
) (*cat.Cat, error) {
	var out cat.Cat
	err := r.db.write(func(st *state) error {
		c, ok := st.cats[id]
		if !ok || c.Status != from {
			return fmt.Errorf("transition cat: %w", core.ErrInvalidTransition)
		}
		c.Status = to
		c.UpdatedAt = r.db.now()
		st.cats[id] = c
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catRepo) Delete(_ context.Context, id string) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.cats[id]; !ok {
			return fmt.Errorf("delete cat: %w", core.ErrNotFound)
		}
		delete(st.cats, id)
		return nil
	})
}

func (r *catRepo) collect(keep func(v cat.View) bool) ([]cat.View, error) {
	views := []cat.View{}
	err := r.db.read(func(st *state) error {
		for _, c := range st.cats {
			if v := st.view(c); keep(v) {
				views = append(views, v)
			}
		}
		return nil
	})
	newestFirst(views,
		func(v cat.View) time.Time { return v.CreatedAt },
		func(v cat.View) string { return v.ID },
	)
	return views, err
}

func (r *catRepo) List(ctx context.Context, params cat.ListCatsParams) ([]cat.View, query.PageInfo, error) {
	search := strings.TrimSpace(params.Search)
	status := cat.Status(params.Status)

	views, err := r.collect(func(v cat.View) bool {
		if !containsFold(search, v.Name, v.Microchip, v.RegistryNumber, v.OwnerName) {
			return false
		}
		if status.Valid() && v.Status != status {
			return false
		}
		if params.BreedID != "" && (v.BreedID == nil || *v.BreedID != params.BreedID) {
			return false
		}
		if params.OwnerID != "" && v.OwnerID != params.OwnerID {
			return false
		}
		return true
	})
	if err != nil {
		return nil, query.PageInfo{}, err
	}

	return page(ctx, params.Params, views)
}

func (r *catRepo) ListByOwner(_ context.Context, ownerID string) ([]cat.View, error) {
	return r.collect(func(v cat.View) bool { return v.OwnerID == ownerID })
}

func (r *catRepo) ListByStatus(_ context.Context, status cat.Status) ([]cat.View, error) {
	return r.collect(func(v cat.View) bool { return v.Status == status })
}

func (r *catRepo) Stats(_ context.Context) (cat.Stats, error) {
	var s cat.Stats
	err := r.db.read(func(st *state) error {
		for _, c := range st.cats {
			s.Total++
			switch c.Status {
			case cat.StatusPending:
				s.Pending++
			case cat.StatusApproved:
				s.Approved++
			case cat.StatusRejected:
				s.Rejected++
			}
		}
		return nil
	})
	return s, err
}

var _ cat.Repository = (*catRepo)(nil)
