// AngelaMos | 2026
// seed.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/catclube/registry/internal/auth"
	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/reset"
	"github.com/catclube/registry/internal/storage"
	"github.com/catclube/registry/internal/taxonomy"
	"github.com/catclube/registry/internal/user"
)

const (
	defaultAdminEmail    = "admin@riocatclub.test"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "Admin Demo"
)

type sampleColor struct {
	name string
	ems  string
}

type sampleBreed struct {
	name   string
	colors []sampleColor
}

// EMS codes are illustrative, not an official table.
var sampleTaxonomy = []sampleBreed{
	{"Ragdoll", []sampleColor{{"Seal Point", "RAG n"}, {"Blue Point", "RAG a"}, {"Chocolate Point", "RAG b"}}},
	{"Persian", []sampleColor{{"Black", "PER n"}, {"Blue", "PER a"}, {"Red", "PER d"}}},
	{"Maine Coon", []sampleColor{{"Brown Tabby", "MCO n 22"}, {"Blue Tabby", "MCO a 22"}}},
	{"Sphynx", []sampleColor{{"Black", "SPH n"}, {"Blue", "SPH a"}}},
	{"Devon Rex", []sampleColor{{"Black", "DRX n"}, {"Blue", "DRX a"}}},
	{"Bengal", []sampleColor{{"Brown Spotted", "BEN n 24"}, {"Snow Lynx", "BEN n 33"}}},
	{"British Shorthair", []sampleColor{{"Blue", "BSH a"}, {"Lilac", "BSH c"}}},
	{"Oriental Shorthair", []sampleColor{{"Black", "OSH n"}, {"Chestnut", "OSH b"}}},
}

type seedOptions struct {
	AdminEmail    string
	AdminPassword string
	SkipAdmin     bool
}

type seedReport struct {
	Breeds       int
	Colors       int
	AdminCreated bool
}

// seed inserts whatever part of the sample data is missing. Running it
// twice changes nothing.
func seed(
	ctx context.Context,
	backend *storage.Backend,
	validate *validator.Validate,
	opts seedOptions,
) (seedReport, error) {
	var report seedReport

	breeds, colors, err := seedTaxonomy(ctx, taxonomy.NewService(backend.Taxonomy, validate))
	if err != nil {
		return report, err
	}
	report.Breeds, report.Colors = breeds, colors

	if opts.SkipAdmin {
		return report, nil
	}

	report.AdminCreated, err = seedAdmin(
		ctx,
		user.NewService(backend.Users, validate),
		opts.AdminEmail,
		opts.AdminPassword,
	)
	return report, err
}

func seedTaxonomy(ctx context.Context, svc *taxonomy.Service) (int, int, error) {
	existing, err := svc.AllBreeds(ctx)
	if err != nil {
		return 0, 0, err
	}

	byName := make(map[string]string, len(existing))
	for _, b := range existing {
		byName[strings.ToLower(b.Name)] = b.ID
	}

	var breedsAdded, colorsAdded int
	for _, sample := range sampleTaxonomy {
		breedID, ok := byName[strings.ToLower(sample.name)]
		if !ok {
			created, createErr := svc.CreateBreed(ctx, taxonomy.BreedRequest{Name: sample.name})
			if createErr != nil {
				return breedsAdded, colorsAdded, fmt.Errorf("breed %s: %w", sample.name, createErr)
			}
			breedID = created.ID
			breedsAdded++
		}

		known, listErr := svc.ListColorsForBreed(ctx, breedID)
		if listErr != nil {
			return breedsAdded, colorsAdded, listErr
		}
		present := make(map[string]bool, len(known))
		for _, c := range known {
			present[strings.ToLower(c.Name)] = true
		}

		for _, color := range sample.colors {
			if present[strings.ToLower(color.name)] {
				continue
			}
			_, createErr := svc.CreateColor(ctx, breedID, taxonomy.ColorRequest{
				Name:    color.name,
				EMSCode: color.ems,
			})
			if createErr != nil {
				return breedsAdded, colorsAdded, fmt.Errorf(
					"color %s/%s: %w", sample.name, color.name, createErr,
				)
			}
			colorsAdded++
		}
	}

	slog.InfoContext(ctx, "taxonomy seeded", "breeds", breedsAdded, "colors", colorsAdded)
	return breedsAdded, colorsAdded, nil
}

func seedAdmin(ctx context.Context, users *user.Service, email, password string) (bool, error) {
	_, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, core.ErrNotFound):
		return false, err
	}

	if len(password) < reset.MinPasswordLength {
		return false, fmt.Errorf(
			"admin password must have at least %d characters: %w",
			reset.MinPasswordLength, core.ErrInvalidInput,
		)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return false, err
	}

	created, err := users.Create(ctx, auth.NewAccount{
		Email:        email,
		PasswordHash: hash,
		Name:         defaultAdminName,
		IsAdmin:      true,
	})
	if err != nil {
		return false, err
	}

	slog.InfoContext(ctx, "demo administrator created", "user_id", created.ID)
	return true, nil
}
