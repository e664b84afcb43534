// AngelaMos | 2026
// service_test.go

package cat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/storage/memory"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

type fixture struct {
	store   *memory.Store
	service *cat.Service
	owner   *user.User
	breed   *taxonomy.Breed
	color   *taxonomy.Color
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	tick := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := memory.New(memory.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))

	v := core.NewValidator()
	if err := cat.RegisterValidators(v); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	owner := &user.User{
		ID:      "3f6c2a80-9a51-4f0e-b9b8-6f2d4c1a0e11",
		Email:   "ana@example.com",
		Profile: user.Profile{Name: "Ana Souza"},
	}
	if err := store.Users().Create(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	breed := &taxonomy.Breed{ID: "b7a1e2d3-0000-4000-8000-0000000000aa", Name: "Ragdoll"}
	if err := store.Taxonomy().CreateBreed(ctx, breed); err != nil {
		t.Fatalf("create breed: %v", err)
	}
	color := &taxonomy.Color{
		ID:      "c7a1e2d3-0000-4000-8000-0000000000bb",
		BreedID: breed.ID,
		Name:    "Seal Point",
		EMSCode: "RAG n",
	}
	if err := store.Taxonomy().CreateColor(ctx, color); err != nil {
		t.Fatalf("create color: %v", err)
	}

	return &fixture{
		store:   store,
		service: cat.NewService(store.Cats(), v),
		owner:   owner,
		breed:   breed,
		color:   color,
	}
}

func (f *fixture) create(t *testing.T, name string) *cat.Cat {
	t.Helper()
	c, err := f.service.Create(context.Background(), f.owner.ID, cat.CreateCatRequest{
		CatFields: cat.CatFields{Name: name},
	})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return c
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	c, err := f.service.Create(context.Background(), f.owner.ID, cat.CreateCatRequest{
		CatFields: cat.CatFields{
			Name:      "  Mimi ",
			BirthDate: "2024-02-10",
			Sex:       cat.SexFemale,
			BreedID:   f.breed.ID,
			ColorID:   f.color.ID,
			Sire:      cat.ParentFields{Name: "Zeus", BreedID: f.breed.ID},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.Name != "Mimi" {
		t.Errorf("Name = %q, want trimmed", c.Name)
	}
	if c.Status != cat.StatusPending {
		t.Errorf("Status = %q, want pending", c.Status)
	}
	if c.OwnerID != f.owner.ID {
		t.Errorf("OwnerID = %q, want %q", c.OwnerID, f.owner.ID)
	}
	if c.SireName != "Zeus" || c.SireBreedID == nil || *c.SireBreedID != f.breed.ID {
		t.Errorf("sire = %+v", c.Sire())
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields cat.CatFields
	}{
		{"blank name", cat.CatFields{Name: "   "}},
		{"unknown sex", cat.CatFields{Name: "Mimi", Sex: "female"}},
		{"bad birth date", cat.CatFields{Name: "Mimi", BirthDate: "10/02/2024"}},
		{"malformed breed id", cat.CatFields{Name: "Mimi", BreedID: "7"}},
		{"unknown breed", cat.CatFields{Name: "Mimi", BreedID: "00000000-0000-4000-8000-000000000000"}},
		{"unknown dam color", cat.CatFields{
			Name: "Mimi",
			Dam:  cat.ParentFields{ColorID: "00000000-0000-4000-8000-000000000001"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Create(context.Background(), f.owner.ID, cat.CreateCatRequest{CatFields: tt.fields})
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateAcceptsNameOnly(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, "Bolinha")

	if c.BreedID != nil || c.ColorID != nil || c.Sex != "" {
		t.Errorf("optional fields set: %+v", c)
	}
}

func TestColorMustBelongToItsBreed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	persian := &taxonomy.Breed{ID: "b7a1e2d3-0000-4000-8000-0000000000cc", Name: "Persa"}
	if err := f.store.Taxonomy().CreateBreed(ctx, persian); err != nil {
		t.Fatalf("create breed: %v", err)
	}

	tests := []struct {
		name   string
		fields cat.CatFields
		want   error
	}{
		{"own slot", cat.CatFields{Name: "Mimi", BreedID: persian.ID, ColorID: f.color.ID}, cat.ErrColorBreedMismatch},
		{"sire slot", cat.CatFields{
			Name: "Mimi",
			Sire: cat.ParentFields{BreedID: persian.ID, ColorID: f.color.ID},
		}, cat.ErrColorBreedMismatch},
		{"dam slot", cat.CatFields{
			Name: "Mimi",
			Dam:  cat.ParentFields{BreedID: persian.ID, ColorID: f.color.ID},
		}, cat.ErrColorBreedMismatch},
		{"matching pair", cat.CatFields{Name: "Mimi", BreedID: f.breed.ID, ColorID: f.color.ID}, nil},
		{"color without breed", cat.CatFields{Name: "Mimi", ColorID: f.color.ID}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, f.owner.ID, cat.CreateCatRequest{CatFields: tt.fields})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
			if tt.want != nil && !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("mismatch is not a validation error: %v", err)
			}
		})
	}

	c := f.create(t, "Tom")
	_, err := f.service.Update(ctx, c.ID, cat.UpdateCatRequest{
		CatFields: cat.CatFields{Name: "Tom", BreedID: persian.ID, ColorID: f.color.ID},
		OwnerID:   f.owner.ID,
		Status:    string(cat.StatusPending),
	})
	if !errors.Is(err, cat.ErrColorBreedMismatch) {
		t.Errorf("Update() error = %v, want ErrColorBreedMismatch", err)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		second  string
		want    cat.Status
		wantErr error
	}{
		{"approve pending", cat.ActionApprove, "", cat.StatusApproved, nil},
		{"reject pending", cat.ActionReject, "", cat.StatusRejected, nil},
		{"approve twice is a no-op", cat.ActionApprove, cat.ActionApprove, cat.StatusApproved, nil},
		{"reject twice is a no-op", cat.ActionReject, cat.ActionReject, cat.StatusRejected, nil},
		{"reject after approve", cat.ActionApprove, cat.ActionReject, cat.StatusApproved, core.ErrInvalidTransition},
		{"approve after reject", cat.ActionReject, cat.ActionApprove, cat.StatusRejected, core.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.create(t, "Mimi")

			if _, err := f.service.Transition(ctx, c.ID, tt.first); err != nil {
				t.Fatalf("first Transition() error = %v", err)
			}

			if tt.second != "" {
				_, err := f.service.Transition(ctx, c.ID, tt.second)
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("second Transition() error = %v, want %v", err, tt.wantErr)
				}
			}

			got, err := f.service.Get(ctx, c.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("Status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestTransitionInvalidAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, "Mimi")

	for _, action := range []string{"", "pending", "APPROVE", "delete"} {
		_, err := f.service.Transition(ctx, c.ID, action)
		if !errors.Is(err, core.ErrInvalidAction) {
			t.Errorf("Transition(%q) error = %v, want ErrInvalidAction", action, err)
		}
	}

	got, _ := f.service.Get(ctx, c.ID)
	if got.Status != cat.StatusPending {
		t.Errorf("Status = %q after invalid actions, want pending", got.Status)
	}
}

func TestTransitionUnknownCat(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Transition(context.Background(), "11111111-1111-4111-8111-111111111111", cat.ActionApprove)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Transition() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateOverwritesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, "Mimi")

	if _, err := f.service.Transition(ctx, c.ID, cat.ActionReject); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	updated, err := f.service.Update(ctx, c.ID, cat.UpdateCatRequest{
		CatFields: cat.CatFields{
			Name:     "Mimi II",
			Neutered: true,
			BreedID:  f.breed.ID,
		},
		OwnerID: f.owner.ID,
		Status:  string(cat.StatusApproved),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "Mimi II" || !updated.Neutered || updated.Status != cat.StatusApproved {
		t.Errorf("Update() = %+v", updated)
	}
	if !updated.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", c.CreatedAt, updated.CreatedAt)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, "Mimi")

	_, err := f.service.Update(context.Background(), c.ID, cat.UpdateCatRequest{
		CatFields: cat.CatFields{Name: "Mimi"},
		OwnerID:   f.owner.ID,
		Status:    "archived",
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Update() error = %v, want ErrInvalidInput", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.create(t, "Mimi")

	if err := f.service.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := f.service.Delete(ctx, c.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDashboardAndPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, "Mimi")
	second := f.create(t, "Tom")
	if _, err := f.service.Transition(ctx, first.ID, cat.ActionApprove); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	dash, err := f.service.Dashboard(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if len(dash) != 2 || dash[0].ID != second.ID {
		t.Fatalf("Dashboard() = %+v, want newest first", dash)
	}
	if dash[1].Status != cat.StatusApproved {
		t.Errorf("Mimi status = %q, want approved", dash[1].Status)
	}
	if dash[0].OwnerName != "Ana Souza" {
		t.Errorf("OwnerName = %q", dash[0].OwnerName)
	}

	pending, err := f.service.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("Pending() = %+v, want only Tom", pending)
	}
}

func TestListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := range 45 {
		c, err := f.service.Create(ctx, f.owner.ID, cat.CreateCatRequest{
			CatFields: cat.CatFields{
				Name:      fmt.Sprintf("Cat %02d", i),
				Microchip: fmt.Sprintf("982000%04d", i),
			},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if i%3 == 0 {
			if _, err := f.service.Transition(ctx, c.ID, cat.ActionApprove); err != nil {
				t.Fatalf("Transition() error = %v", err)
			}
		}
	}

	tests := []struct {
		name      string
		params    cat.ListCatsParams
		wantTotal int
		wantPage  int
		wantItems int
	}{
		{"first page", cat.ListCatsParams{Params: query.Params{Page: 1}}, 45, 1, 20},
		{"page past the end clamps", cat.ListCatsParams{Params: query.Params{Page: 100}}, 45, 3, 5},
		{"status filter", cat.ListCatsParams{Status: "approved"}, 15, 1, 15},
		{"unknown status ignored", cat.ListCatsParams{Status: "lost"}, 45, 1, 20},
		{"search microchip", cat.ListCatsParams{Search: "9820000007"}, 1, 1, 1},
		{"search owner name", cat.ListCatsParams{Search: "souza"}, 45, 1, 20},
		{"owner filter", cat.ListCatsParams{OwnerID: f.owner.ID}, 45, 1, 20},
		{"malformed owner ignored", cat.ListCatsParams{OwnerID: "abc"}, 45, 1, 20},
		{"breed filter", cat.ListCatsParams{BreedID: f.breed.ID}, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, info, err := f.service.List(ctx, tt.params)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if info.Total != tt.wantTotal || info.Page != tt.wantPage || len(views) != tt.wantItems {
				t.Errorf("List() total=%d page=%d items=%d, want %d/%d/%d",
					info.Total, info.Page, len(views), tt.wantTotal, tt.wantPage, tt.wantItems)
			}
		})
	}
}

func TestGetOwnedHidesOtherMembersCats(t *testing.T) {
	f := newFixture(t)
	c := f.create(t, "Mimi")

	if _, err := f.service.GetOwned(context.Background(), f.owner.ID, c.ID); err != nil {
		t.Fatalf("GetOwned(owner) error = %v", err)
	}
	_, err := f.service.GetOwned(context.Background(), "99999999-9999-4999-8999-999999999999", c.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetOwned(stranger) error = %v, want ErrNotFound", err)
	}
}
