// AngelaMos | 2026
// service_test.go

package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/catclube/registry/internal/cat"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
	"github.com/catclube/registry/internal/storage/memory"
	"github.com/catclube/registry/internal/user"
)

func newService(t *testing.T) (*user.Service, *memory.Store) {
	t.Helper()

	v := core.NewValidator()
	if err := user.RegisterValidators(v); err != nil {
		t.Fatalf("RegisterValidators() error = %v", err)
	}
	store := memory.New()
	return user.NewService(store.Users(), v), store
}

func addMember(t *testing.T, store *memory.Store, id, email, name string) {
	t.Helper()
	u := &user.User{ID: id, Email: email, Profile: user.Profile{Name: name}}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
}

func TestSetAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	addMember(t, store, "u1", "ana@example.com", "Ana")

	promoted, err := svc.SetAdmin(ctx, "  ANA@example.com ")
	if err != nil {
		t.Fatalf("SetAdmin() error = %v", err)
	}
	if !promoted.IsAdmin {
		t.Error("member not promoted")
	}

	id, err := svc.ResolveIdentity(ctx, "u1")
	if err != nil || !id.IsAdmin {
		t.Errorf("ResolveIdentity() = %+v, %v", id, err)
	}

	if _, err := svc.SetAdmin(ctx, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SetAdmin(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	addMember(t, store, "admin", "admin@example.com", "Admin")
	addMember(t, store, "owner", "owner@example.com", "Owner")
	addMember(t, store, "idle", "idle@example.com", "Idle")

	kitten := &cat.Cat{ID: "k1", OwnerID: "owner", Name: "Mimi", Status: cat.StatusPending}
	if err := store.Cats().Create(ctx, kitten); err != nil {
		t.Fatalf("create cat: %v", err)
	}

	tests := []struct {
		name   string
		actor  string
		target string
		want   error
	}{
		{"own account", "admin", "admin", core.ErrForbidden},
		{"owns cats", "admin", "owner", core.ErrIntegrity},
		{"missing", "admin", "ghost", core.ErrNotFound},
		{"no cats", "admin", "idle", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteUser(ctx, tt.actor, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("DeleteUser() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.GetUser(ctx, "idle"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted user still present: %v", err)
	}
	if _, err := svc.GetUser(ctx, "owner"); err != nil {
		t.Errorf("cat owner removed: %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	addMember(t, store, "u1", "ana@example.com", "Ana")
	addMember(t, store, "u2", "bia@example.com", "Bia")

	req := user.UpdateUserRequest{
		Email:         " Ana.Souza@Example.com ",
		ProfileFields: user.ProfileFields{Name: " Ana Souza ", PostalCode: "01310-100"},
		IsAdmin:       true,
	}
	updated, err := svc.UpdateUser(ctx, "u1", req)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Email != "ana.souza@example.com" || updated.Name != "Ana Souza" || !updated.IsAdmin {
		t.Errorf("updated = %+v", updated)
	}

	req.Email = "BIA@example.com"
	if _, err := svc.UpdateUser(ctx, "u1", req); !errors.Is(err, core.ErrDuplicateKey) {
		t.Errorf("UpdateUser(taken email) error = %v, want ErrDuplicateKey", err)
	}

	req.Email = "ana@example.com"
	req.Name = "   "
	if _, err := svc.UpdateUser(ctx, "u1", req); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("UpdateUser(blank name) error = %v, want ErrInvalidInput", err)
	}
	if stored, _ := svc.GetUser(ctx, "u1"); stored.Name != "Ana Souza" {
		t.Errorf("stored name = %q after rejected edit", stored.Name)
	}

	req.Name = "Ana Souza"
	req.NationalID = "111.111.111-11"
	if _, err := svc.UpdateUser(ctx, "u1", req); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("UpdateUser(bad national id) error = %v, want ErrInvalidInput", err)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	addMember(t, store, "u1", "ana@example.com", "Ana Lima")
	addMember(t, store, "u2", "bia@example.com", "Bia Costa")
	addMember(t, store, "u3", "carla@lima.com", "Carla")
	if _, err := svc.SetAdmin(ctx, "bia@example.com"); err != nil {
		t.Fatalf("SetAdmin() error = %v", err)
	}

	admins := true
	tests := []struct {
		name   string
		params user.ListUsersParams
		want   int
	}{
		{"everyone", user.ListUsersParams{}, 3},
		{"name or email", user.ListUsersParams{Search: "LIMA"}, 2},
		{"admins only", user.ListUsersParams{Admin: &admins}, 1},
		{"no match", user.ListUsersParams{Search: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Params = query.Params{Page: 1, PerPage: 20}
			users, info, err := svc.ListUsers(ctx, tt.params)
			if err != nil {
				t.Fatalf("ListUsers() error = %v", err)
			}
			if len(users) != tt.want || info.Total != tt.want {
				t.Errorf("got %d users, total %d, want %d", len(users), info.Total, tt.want)
			}
		})
	}
}
