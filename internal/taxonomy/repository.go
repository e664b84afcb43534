// AngelaMos | 2026
// repository.go

package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type Repository interface {
	CreateBreed(ctx context.Context, breed *Breed) error
	GetBreed(ctx context.Context, id string) (*Breed, error)
	UpdateBreed(ctx context.Context, breed *Breed) error
	// DeleteBreed removes the breed and its colors together. It fails with
	// core.ErrIntegrity while any cat references either.
	DeleteBreed(ctx context.Context, id string) error
	ListBreeds(ctx context.Context, params ListBreedsParams) ([]Breed, query.PageInfo, error)
	AllBreeds(ctx context.Context) ([]Breed, error)

	CreateColor(ctx context.Context, color *Color) error
	GetColor(ctx context.Context, id string) (*Color, error)
	UpdateColor(ctx context.Context, color *Color) error
	DeleteColor(ctx context.Context, id string) error
	ListColors(ctx context.Context, breedID string) ([]Color, error)
}

const (
	colBreedName query.Column = "name"

	breedColumns = `id, name, created_at`
	colorColumns = `id, breed_id, name, ems_code, created_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBreed(ctx context.Context, breed *Breed) error {
	err := r.db.GetContext(ctx, &breed.CreatedAt, `
		INSERT INTO breeds (id, name)
		VALUES ($1, $2)
		RETURNING created_at`,
		breed.ID, breed.Name,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create breed: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create breed: %w", err)
	}
	return nil
}

func (r *repository) GetBreed(ctx context.Context, id string) (*Breed, error) {
	var breed Breed
	err := r.db.GetContext(ctx, &breed,
		`SELECT `+breedColumns+` FROM breeds WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get breed: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get breed: %w", err)
	}
	return &breed, nil
}

func (r *repository) UpdateBreed(ctx context.Context, breed *Breed) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE breeds SET name = $2 WHERE id = $1`, breed.ID, breed.Name)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update breed: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update breed: %w", err)
	}
	return expectRow(result, "update breed")
}

func (r *repository) DeleteBreed(ctx context.Context, id string) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var referenced bool
		err := tx.GetContext(ctx, &referenced, `
			SELECT EXISTS (
				SELECT 1 FROM cats
				WHERE $1 IN (breed_id, sire_breed_id, dam_breed_id)
				   OR color_id      IN (SELECT id FROM colors WHERE breed_id = $1)
				   OR sire_color_id IN (SELECT id FROM colors WHERE breed_id = $1)
				   OR dam_color_id  IN (SELECT id FROM colors WHERE breed_id = $1)
			)`, id)
		if err != nil {
			return err
		}
		if referenced {
			return core.ErrIntegrity
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM colors WHERE breed_id = $1`, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM breeds WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(result, "breed")
	})
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete breed: %w", core.ErrIntegrity)
		}
		return fmt.Errorf("delete breed: %w", err)
	}
	return nil
}

func (r *repository) ListBreeds(
	ctx context.Context,
	params ListBreedsParams,
) ([]Breed, query.PageInfo, error) {
	where, args := query.NewFilter(
		query.ContainsFold(params.Search, colBreedName),
	).Build(1)

	breeds, info, err := query.Paginate(ctx, params.Params,
		func(ctx context.Context) (int, error) {
			var total int
			err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM breeds `+where, args...)
			return total, err
		},
		func(ctx context.Context, limit, offset int) ([]Breed, error) {
			n := len(args)
			stmt := fmt.Sprintf(`SELECT %s FROM breeds %s
				ORDER BY name ASC, id ASC
				LIMIT $%d OFFSET $%d`, breedColumns, where, n+1, n+2)

			var breeds []Breed
			err := r.db.SelectContext(ctx, &breeds, stmt, append(args, limit, offset)...)
			return breeds, err
		},
	)
	if err != nil {
		return nil, query.PageInfo{}, fmt.Errorf("list breeds: %w", err)
	}
	return breeds, info, nil
}

func (r *repository) AllBreeds(ctx context.Context) ([]Breed, error) {
	breeds := []Breed{}
	err := r.db.SelectContext(ctx, &breeds,
		`SELECT `+breedColumns+` FROM breeds ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all breeds: %w", err)
	}
	return breeds, nil
}

func (r *repository) CreateColor(ctx context.Context, color *Color) error {
	err := r.db.GetContext(ctx, &color.CreatedAt, `
		INSERT INTO colors (id, breed_id, name, ems_code)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		color.ID, color.BreedID, color.Name, color.EMSCode,
	)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create color: breed: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create color: %w", err)
	}
	return nil
}

func (r *repository) GetColor(ctx context.Context, id string) (*Color, error) {
	var color Color
	err := r.db.GetContext(ctx, &color,
		`SELECT `+colorColumns+` FROM colors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get color: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get color: %w", err)
	}
	return &color, nil
}

func (r *repository) UpdateColor(ctx context.Context, color *Color) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE colors SET name = $2, ems_code = $3 WHERE id = $1`,
		color.ID, color.Name, color.EMSCode)
	if err != nil {
		return fmt.Errorf("update color: %w", err)
	}
	return expectRow(result, "update color")
}

func (r *repository) DeleteColor(ctx context.Context, id string) error {
	var referenced bool
	err := r.db.GetContext(ctx, &referenced, `
		SELECT EXISTS (
			SELECT 1 FROM cats
			WHERE $1 IN (color_id, sire_color_id, dam_color_id)
		)`, id)
	if err != nil {
		return fmt.Errorf("delete color: %w", err)
	}
	if referenced {
		return fmt.Errorf("delete color: %w", core.ErrIntegrity)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM colors WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete color: %w", core.ErrIntegrity)
		}
		return fmt.Errorf("delete color: %w", err)
	}
	return expectRow(result, "delete color")
}

func (r *repository) ListColors(ctx context.Context, breedID string) ([]Color, error) {
	colors := []Color{}
	err := r.db.SelectContext(ctx, &colors, `
		SELECT `+colorColumns+`
		FROM colors
		WHERE breed_id = $1
		ORDER BY name ASC, id ASC`, breedID)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	return colors, nil
}

func expectRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
