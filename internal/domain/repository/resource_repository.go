package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// ResourceRepository serves the three identically-shaped intervention
// catalogs (strategies, supports, accommodations). The kind picks the table.
type ResourceRepository interface {
	Create(ctx context.Context, kind model.ResourceKind, resource *model.Resource) error
	FindByID(ctx context.Context, kind model.ResourceKind, id string) (*model.Resource, error)
	List(ctx context.Context, kind model.ResourceKind) ([]model.Resource, error)
	Update(ctx context.Context, kind model.ResourceKind, resource *model.Resource) error
	Delete(ctx context.Context, kind model.ResourceKind, id string) error
}

type pgResourceRepository struct {
	db *sql.DB
}

func NewPgResourceRepository(db *sql.DB) ResourceRepository {
	return &pgResourceRepository{db: db}
}

const resourceColumns = `id, name, slug, category, type, short_description, long_description,
	created_by, created_by_name, updated_by, updated_by_name, created_at, updated_at`

func scanResource(row interface{ Scan(...interface{}) error }) (*model.Resource, error) {
	res := &model.Resource{}
	err := row.Scan(
		&res.ID, &res.Name, &res.Slug, &res.Category, &res.Type,
		&res.ShortDescription, &res.LongDescription,
		&res.CreatedByID, &res.CreatedByName, &res.UpdatedByID, &res.UpdatedByName,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *pgResourceRepository) Create(ctx context.Context, kind model.ResourceKind, res *model.Resource) error {
	query := `INSERT INTO ` + kind.Table() + ` (id, name, slug, category, type, short_description,
	            long_description, created_by, created_by_name)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.Name, res.Slug, res.Category, res.Type, res.ShortDescription,
		res.LongDescription, res.CreatedByID, res.CreatedByName,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%s with this name already exists: %w", kind, common.ErrConflict)
		}
		return fmt.Errorf("pgResourceRepository.Create %s: %w", kind, err)
	}
	return nil
}

func (r *pgResourceRepository) FindByID(ctx context.Context, kind model.ResourceKind, id string) (*model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM ` + kind.Table() + ` WHERE id = $1`
	res, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgResourceRepository.FindByID %s: %w", kind, err)
	}
	return res, nil
}

func (r *pgResourceRepository) List(ctx context.Context, kind model.ResourceKind) ([]model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM ` + kind.Table() + ` ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgResourceRepository.List %s: %w", kind, err)
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("pgResourceRepository.List %s scan: %w", kind, err)
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgResourceRepository.List %s rows: %w", kind, err)
	}
	return resources, nil
}

func (r *pgResourceRepository) Update(ctx context.Context, kind model.ResourceKind, res *model.Resource) error {
	query := `UPDATE ` + kind.Table() + ` SET
	            name = $1, slug = $2, category = $3, type = $4, short_description = $5,
	            long_description = $6, updated_by = $7, updated_by_name = $8,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		res.Name, res.Slug, res.Category, res.Type, res.ShortDescription,
		res.LongDescription, res.UpdatedByID, res.UpdatedByName, res.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%s with this name already exists: %w", kind, common.ErrConflict)
		}
		return fmt.Errorf("pgResourceRepository.Update %s: %w", kind, err)
	}
	return rowsAffectedOrNotFound(result)
}

func (r *pgResourceRepository) Delete(ctx context.Context, kind model.ResourceKind, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM `+kind.Table()+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgResourceRepository.Delete %s: %w", kind, err)
	}
	return rowsAffectedOrNotFound(result)
}
