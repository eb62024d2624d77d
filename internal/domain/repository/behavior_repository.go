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

type BehaviorRepository interface {
	Create(ctx context.Context, behavior *model.Behavior) error
	FindByID(ctx context.Context, id string) (*model.Behavior, error)
	FindBySlug(ctx context.Context, slug string) (*model.Behavior, error)
	List(ctx context.Context, category model.BehaviorCategory) ([]model.Behavior, error)
	Update(ctx context.Context, behavior *model.Behavior) error
	Delete(ctx context.Context, id string) error
}

type pgBehaviorRepository struct {
	db *sql.DB
}

func NewPgBehaviorRepository(db *sql.DB) BehaviorRepository {
	return &pgBehaviorRepository{db: db}
}

const behaviorColumns = `id, name, slug, category, type, short_description, long_description,
	created_by, updated_by, updated_by_name, created_at, updated_at`

func scanBehavior(row interface{ Scan(...interface{}) error }) (*model.Behavior, error) {
	b := &model.Behavior{}
	err := row.Scan(
		&b.ID, &b.Name, &b.Slug, &b.Category, &b.Type, &b.ShortDescription, &b.LongDescription,
		&b.CreatedByID, &b.UpdatedByID, &b.UpdatedByName, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgBehaviorRepository) Create(ctx context.Context, b *model.Behavior) error {
	query := `INSERT INTO behaviors (id, name, slug, category, type, short_description, long_description, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Slug, b.Category, b.Type, b.ShortDescription, b.LongDescription, b.CreatedByID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("behavior with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBehaviorRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBehaviorRepository) FindByID(ctx context.Context, id string) (*model.Behavior, error) {
	query := `SELECT ` + behaviorColumns + ` FROM behaviors WHERE id = $1`
	b, err := scanBehavior(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBehaviorRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBehaviorRepository) FindBySlug(ctx context.Context, slug string) (*model.Behavior, error) {
	query := `SELECT ` + behaviorColumns + ` FROM behaviors WHERE slug = $1`
	b, err := scanBehavior(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBehaviorRepository.FindBySlug: %w", err)
	}
	return b, nil
}

func (r *pgBehaviorRepository) List(ctx context.Context, category model.BehaviorCategory) ([]model.Behavior, error) {
	query := `SELECT ` + behaviorColumns + ` FROM behaviors`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgBehaviorRepository.List: %w", err)
	}
	defer rows.Close()

	var behaviors []model.Behavior
	for rows.Next() {
		b, err := scanBehavior(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBehaviorRepository.List scan: %w", err)
		}
		behaviors = append(behaviors, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBehaviorRepository.List rows: %w", err)
	}
	return behaviors, nil
}

func (r *pgBehaviorRepository) Update(ctx context.Context, b *model.Behavior) error {
	query := `UPDATE behaviors SET
	            name = $1, slug = $2, category = $3, type = $4, short_description = $5,
	            long_description = $6, updated_by = $7, updated_by_name = $8,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query,
		b.Name, b.Slug, b.Category, b.Type, b.ShortDescription,
		b.LongDescription, b.UpdatedByID, b.UpdatedByName, b.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("behavior with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBehaviorRepository.Update: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgBehaviorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM behaviors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgBehaviorRepository.Delete: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}
