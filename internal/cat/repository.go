// AngelaMos | 2026
// repository.go

package cat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/catclube/registry/internal/core"
	"github.com/catclube/registry/internal/query"
)

type Repository interface {
	Create(ctx context.Context, cat *Cat) error
	GetByID(ctx context.Context, id string) (*Cat, error)
	GetView(ctx context.Context, id string) (*View, error)
	// Update overwrites every editable column, owner and status included.
	Update(ctx context.Context, cat *Cat) error
	// TransitionStatus moves the cat from one status to another in a single
	// conditional write. A cat that is no longer in from reports
	// core.ErrInvalidTransition.
	TransitionStatus(ctx context.Context, id string, from, to Status) (*Cat, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListCatsParams) ([]View, query.PageInfo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]View, error)
	ListByStatus(ctx context.Context, status Status) ([]View, error)
	Stats(ctx context.Context) (Stats, error)
}

const (
	colCatName        query.Column = "c.name"
	colMicrochip      query.Column = "c.microchip"
	colRegistryNumber query.Column = "c.registry_number"
	colOwnerName      query.Column = "u.name"
	colStatus         query.Column = "c.status"
	colBreedID        query.Column = "c.breed_id"
	colOwnerID        query.Column = "c.owner_id"
)

const catColumns = `
	id, owner_id, name, birth_date, sex, neutered, microchip,
	registry_number, registry_entity, breeder_type, breeder_name,
	breed_id, color_id, sire_name, sire_breed_id, sire_color_id,
	dam_name, dam_breed_id, dam_color_id, status, created_at, updated_at`

const viewSelect = `
	SELECT c.id, c.owner_id, c.name, c.birth_date, c.sex, c.neutered,
	       c.microchip, c.registry_number, c.registry_entity,
	       c.breeder_type, c.breeder_name, c.breed_id, c.color_id,
	       c.sire_name, c.sire_breed_id, c.sire_color_id,
	       c.dam_name, c.dam_breed_id, c.dam_color_id,
	       c.status, c.created_at, c.updated_at,
	       COALESCE(u.name, '')      AS owner_name,
	       COALESCE(b.name, '')      AS breed_name,
	       COALESCE(co.name, '')     AS color_name,
	       COALESCE(co.ems_code, '') AS ems_code`

const viewFrom = `
	FROM cats c
	LEFT JOIN users u   ON u.id = c.owner_id
	LEFT JOIN breeds b  ON b.id = c.breed_id
	LEFT JOIN colors co ON co.id = c.color_id`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, cat *Cat) error {
	query := `
		INSERT INTO cats (
			id, owner_id, name, birth_date, sex, neutered, microchip,
			registry_number, registry_entity, breeder_type, breeder_name,
			breed_id, color_id, sire_name, sire_breed_id, sire_color_id,
			dam_name, dam_breed_id, dam_color_id, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		cat.ID,
		cat.OwnerID,
		cat.Name,
		cat.BirthDate,
		cat.Sex,
		cat.Neutered,
		cat.Microchip,
		cat.RegistryNumber,
		cat.RegistryEntity,
		cat.BreederType,
		cat.BreederName,
		cat.BreedID,
		cat.ColorID,
		cat.SireName,
		cat.SireBreedID,
		cat.SireColorID,
		cat.DamName,
		cat.DamBreedID,
		cat.DamColorID,
		cat.Status,
	).Scan(&cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create cat: %w", referenceError(err))
		}
		return fmt.Errorf("create cat: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Cat, error) {
	var cat Cat
	err := r.db.GetContext(ctx, &cat, `SELECT `+catColumns+` FROM cats WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get cat: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cat: %w", err)
	}

	return &cat, nil
}

func (r *repository) GetView(ctx context.Context, id string) (*View, error) {
	var view View
	err := r.db.GetContext(ctx, &view, viewSelect+viewFrom+` WHERE c.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get cat: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cat: %w", err)
	}

	return &view, nil
}

func (r *repository) Update(ctx context.Context, cat *Cat) error {
	query := `
		UPDATE cats
		SET owner_id = $2, name = $3, birth_date = $4, sex = $5,
		    neutered = $6, microchip = $7, registry_number = $8,
		    registry_entity = $9, breeder_type = $10, breeder_name = $11,
		    breed_id = $12, color_id = $13, sire_name = $14,
		    sire_breed_id = $15, sire_color_id = $16, dam_name = $17,
		    dam_breed_id = $18, dam_color_id = $19, status = $20,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &cat.UpdatedAt, query,
		cat.ID,
		cat.OwnerID,
		cat.Name,
		cat.BirthDate,
		cat.Sex,
		cat.Neutered,
		cat.Microchip,
		cat.RegistryNumber,
		cat.RegistryEntity,
		cat.BreederType,
		cat.BreederName,
		cat.BreedID,
		cat.ColorID,
		cat.SireName,
		cat.SireBreedID,
		cat.SireColorID,
		cat.DamName,
		cat.DamBreedID,
		cat.DamColorID,
		cat.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update cat: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("update cat: %w", referenceError(err))
		}
		return fmt.Errorf("update cat: %w", err)
	}

	return nil
}

func (r *repository) TransitionStatus(
	ctx context.Context,
	id string,
	from, to Status,
) (*Cat, error) {
	query := `
		UPDATE cats
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + catColumns

	var cat Cat
	err := r.db.GetContext(ctx, &cat, query, id, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition cat: %w", core.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("transition cat: %w", err)
	}

	return &cat, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cat: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cat: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete cat: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListCatsParams,
) ([]View, query.PageInfo, error) {
	where, args := listFilter(params).Build(1)

	views, info, err := query.Paginate(ctx, params.Params,
		func(ctx context.Context) (int, error) {
			var total int
			err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+viewFrom+` `+where, args...)
			return total, err
		},
		func(ctx context.Context, limit, offset int) ([]View, error) {
			n := len(args)
			stmt := fmt.Sprintf(`%s %s %s
				ORDER BY c.created_at DESC, c.id DESC
				LIMIT $%d OFFSET $%d`, viewSelect, viewFrom, where, n+1, n+2)

			var views []View
			err := r.db.SelectContext(ctx, &views, stmt, append(args, limit, offset)...)
			return views, err
		},
	)
	if err != nil {
		return nil, query.PageInfo{}, fmt.Errorf("list cats: %w", err)
	}

	return views, info, nil
}

// listFilter ignores a status outside the known set, matching how the admin
// listing treats unknown query values.
func listFilter(params ListCatsParams) *query.Filter {
	filter := query.NewFilter(query.ContainsFold(params.Search,
		colCatName, colMicrochip, colRegistryNumber, colOwnerName))

	if s := Status(params.Status); s.Valid() {
		filter.Where(query.Eq(colStatus, s))
	}
	if params.BreedID != "" {
		filter.Where(query.Eq(colBreedID, params.BreedID))
	}
	if params.OwnerID != "" {
		filter.Where(query.Eq(colOwnerID, params.OwnerID))
	}

	return filter
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]View, error) {
	views := []View{}
	err := r.db.SelectContext(ctx, &views, viewSelect+viewFrom+`
		WHERE c.owner_id = $1
		ORDER BY c.created_at DESC, c.id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cats by owner: %w", err)
	}
	return views, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]View, error) {
	views := []View{}
	err := r.db.SelectContext(ctx, &views, viewSelect+viewFrom+`
		WHERE c.status = $1
		ORDER BY c.created_at DESC, c.id DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list cats by status: %w", err)
	}
	return views, nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'pending')  AS pending,
		       COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		       COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM cats`)
	if err != nil {
		return Stats{}, fmt.Errorf("cat stats: %w", err)
	}
	return s, nil
}

// referenceError tells a color filed under the wrong breed apart from a
// reference to a missing row. The composite keys are named *_breed_color_fkey.
func referenceError(err error) error {
	if strings.HasSuffix(core.ConstraintName(err), "_breed_color_fkey") {
		return ErrColorBreedMismatch
	}
	return errUnknownReference
}
