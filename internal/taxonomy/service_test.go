// AngelaMos | 2026
// service_test.go

package taxonomy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/storage/memory"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

func newService(t *testing.T) (*taxonomy.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return taxonomy.NewService(store.Taxonomy(), core.NewValidator()), store
}

func mustBreed(t *testing.T, s *taxonomy.Service, name string) *taxonomy.Breed {
	t.Helper()
	b, err := s.CreateBreed(context.Background(), taxonomy.BreedRequest{Name: name})
	if err != nil {
		t.Fatalf("CreateBreed(%q) error = %v", name, err)
	}
	return b
}

func mustColor(t *testing.T, s *taxonomy.Service, breedID, name, ems string) *taxonomy.Color {
	t.Helper()
	c, err := s.CreateColor(context.Background(), breedID, taxonomy.ColorRequest{Name: name, EMSCode: ems})
	if err != nil {
		t.Fatalf("CreateColor(%q) error = %v", name, err)
	}
	return c
}

func addOwner(t *testing.T, store *memory.Store) string {
	t.Helper()
	owner := &user.User{
		ID:      "5b0f3c1e-3d1a-4c55-9a7e-8d9c0b1a2f30",
		Email:   "owner@example.com",
		Profile: user.Profile{Name: "Owner"},
	}
	if err := store.Users().Create(context.Background(), owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return owner.ID
}

func addCat(t *testing.T, store *memory.Store, c *cat.Cat) {
	t.Helper()
	if err := store.Cats().Create(context.Background(), c); err != nil {
		t.Fatalf("create cat: %v", err)
	}
}

func TestCreateBreedRejectsDuplicateNameAnyCase(t *testing.T) {
	s, _ := newService(t)
	mustBreed(t, s, "Maine Coon")

	_, err := s.CreateBreed(context.Background(), taxonomy.BreedRequest{Name: "  maine coon "})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("CreateBreed() error = %v, want ErrDuplicateKey", err)
	}
}

func TestCreateBreedRequiresName(t *testing.T) {
	s, _ := newService(t)

	_, err := s.CreateBreed(context.Background(), taxonomy.BreedRequest{Name: "   "})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("CreateBreed() error = %v, want ErrInvalidInput", err)
	}
}

func TestColorsMayRepeatAcrossBreeds(t *testing.T) {
	s, _ := newService(t)
	persian := mustBreed(t, s, "Persian")
	sphynx := mustBreed(t, s, "Sphynx")

	mustColor(t, s, persian.ID, "Black", "PER n")
	mustColor(t, s, sphynx.ID, "Black", "SPH n")
}

func TestCreateColorUnknownBreed(t *testing.T) {
	s, _ := newService(t)

	_, err := s.CreateColor(context.Background(),
		"8c5e8f0a-4b9b-4f55-8f3c-0c8f0a4b9b4f", taxonomy.ColorRequest{Name: "Blue"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("CreateColor() error = %v, want ErrNotFound", err)
	}
}

func TestListColorsForBreed(t *testing.T) {
	s, _ := newService(t)
	ragdoll := mustBreed(t, s, "Ragdoll")
	mustColor(t, s, ragdoll.ID, "Seal Point", "RAG n")
	mustColor(t, s, ragdoll.ID, "Blue Point", "RAG a")
	mustColor(t, s, ragdoll.ID, "Chocolate Point", "RAG b")

	colors, err := s.ListColorsForBreed(context.Background(), ragdoll.ID)
	if err != nil {
		t.Fatalf("ListColorsForBreed() error = %v", err)
	}

	want := []string{"Blue Point", "Chocolate Point", "Seal Point"}
	if len(colors) != len(want) {
		t.Fatalf("got %d colors, want %d", len(colors), len(want))
	}
	for i, name := range want {
		if colors[i].Name != name {
			t.Errorf("colors[%d] = %q, want %q", i, colors[i].Name, name)
		}
	}
}

func TestListColorsForBreedUnknownIsEmpty(t *testing.T) {
	s, _ := newService(t)

	for _, id := range []string{"", "not-a-uuid", "42", "0f9e8d7c-6b5a-4321-8fed-cba987654321"} {
		colors, err := s.ListColorsForBreed(context.Background(), id)
		if err != nil {
			t.Errorf("ListColorsForBreed(%q) error = %v", id, err)
			continue
		}
		if colors == nil || len(colors) != 0 {
			t.Errorf("ListColorsForBreed(%q) = %v, want empty list", id, colors)
		}
	}
}

func TestDeleteBreedWithoutCatsRemovesColors(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	bengal := mustBreed(t, s, "Bengal")
	color := mustColor(t, s, bengal.ID, "Snow Lynx", "BEN n 33")

	if err := s.DeleteBreed(ctx, bengal.ID); err != nil {
		t.Fatalf("DeleteBreed() error = %v", err)
	}

	if _, err := s.GetBreed(ctx, bengal.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("breed still present: %v", err)
	}
	if _, err := s.GetColor(ctx, color.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("color still present: %v", err)
	}
}

func TestDeleteReferencedTaxonomyIsRejected(t *testing.T) {
	ptr := func(s string) *string { return &s }

	tests := []struct {
		name string
		link func(c *cat.Cat, breedID, colorID string)
	}{
		{"own breed", func(c *cat.Cat, b, _ string) { c.BreedID = ptr(b) }},
		{"own color", func(c *cat.Cat, _, col string) { c.ColorID = ptr(col) }},
		{"sire breed", func(c *cat.Cat, b, _ string) { c.SireBreedID = ptr(b) }},
		{"sire color", func(c *cat.Cat, _, col string) { c.SireColorID = ptr(col) }},
		{"dam breed", func(c *cat.Cat, b, _ string) { c.DamBreedID = ptr(b) }},
		{"dam color", func(c *cat.Cat, _, col string) { c.DamColorID = ptr(col) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newService(t)
			ctx := context.Background()
			breed := mustBreed(t, s, "Devon Rex")
			color := mustColor(t, s, breed.ID, "Blue", "DRX a")

			c := &cat.Cat{
				ID:      "c0ffee00-0000-4000-8000-000000000001",
				OwnerID: addOwner(t, store),
				Name:    "Mimi",
				Status:  cat.StatusPending,
			}
			tt.link(c, breed.ID, color.ID)
			addCat(t, store, c)

			if err := s.DeleteBreed(ctx, breed.ID); !errors.Is(err, core.ErrIntegrity) {
				t.Fatalf("DeleteBreed() error = %v, want ErrIntegrity", err)
			}
			if _, err := s.GetColor(ctx, color.ID); err != nil {
				t.Errorf("rejected delete removed a color: %v", err)
			}
		})
	}
}

func TestDeleteReferencedColorIsRejected(t *testing.T) {
	s, store := newService(t)
	ctx := context.Background()
	breed := mustBreed(t, s, "British Shorthair")
	used := mustColor(t, s, breed.ID, "Blue", "BSH a")
	unused := mustColor(t, s, breed.ID, "Lilac", "BSH c")

	addCat(t, store, &cat.Cat{
		ID:         "c0ffee00-0000-4000-8000-000000000002",
		OwnerID:    addOwner(t, store),
		Name:       "Thor",
		DamName:    "Luna",
		DamColorID: &used.ID,
		Status:     cat.StatusPending,
	})

	if err := s.DeleteColor(ctx, used.ID); !errors.Is(err, core.ErrIntegrity) {
		t.Errorf("DeleteColor(used) error = %v, want ErrIntegrity", err)
	}
	if err := s.DeleteColor(ctx, unused.ID); err != nil {
		t.Errorf("DeleteColor(unused) error = %v", err)
	}
}

func TestListBreedsSearchAndOrder(t *testing.T) {
	s, _ := newService(t)
	for _, name := range []string{"Sphynx", "Oriental Shorthair", "British Shorthair", "Persian"} {
		mustBreed(t, s, name)
	}

	breeds, info, err := s.ListBreeds(context.Background(), taxonomy.ListBreedsParams{
		Params: query.Params{Page: 1},
		Search: "SHORT",
	})
	if err != nil {
		t.Fatalf("ListBreeds() error = %v", err)
	}

	if info.Total != 2 {
		t.Fatalf("Total = %d, want 2", info.Total)
	}
	if breeds[0].Name != "British Shorthair" || breeds[1].Name != "Oriental Shorthair" {
		t.Errorf("order = %q, %q", breeds[0].Name, breeds[1].Name)
	}
}

func TestUpdateBreedKeepsUniqueness(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	mustBreed(t, s, "Persian")
	other := mustBreed(t, s, "Exotic")

	if _, err := s.UpdateBreed(ctx, other.ID, taxonomy.BreedRequest{Name: "PERSIAN"}); !errors.Is(err, core.ErrDuplicateKey) {
		t.Errorf("UpdateBreed() error = %v, want ErrDuplicateKey", err)
	}
	if _, err := s.UpdateBreed(ctx, other.ID, taxonomy.BreedRequest{Name: "Exotic Shorthair"}); err != nil {
		t.Errorf("UpdateBreed() error = %v", err)
	}
}
