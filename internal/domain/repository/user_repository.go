package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByResetToken(ctx context.Context, token string) (*model.User, error)

	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error

	// Approve and Reject flip the account's approval state in a single
	// atomic UPDATE; each clears the other state's fields.
	Approve(ctx context.Context, id string, role model.Role, actorID string, notes *string, at time.Time) error
	Reject(ctx context.Context, id string, actorID string, reason string, at time.Time) error

	SetResetToken(ctx context.Context, id, token string, expires, requestedAt time.Time) error
	// UpdatePasswordAndClearReset installs a new credential hash and clears
	// the reset ticket fields in one statement, so a partial update can
	// never persist.
	UpdatePasswordAndClearReset(ctx context.Context, id, hashedPassword string) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	SetActive(ctx context.Context, id string, active bool) error

	ListPending(ctx context.Context) ([]model.User, error)
	ListApprovedSince(ctx context.Context, since time.Time) ([]model.User, error)
	ListApprovedByRoles(ctx context.Context, roles ...model.Role) ([]model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, email, username, hashed_password, first_name, last_name, desired_name,
	phone, timezone, role, is_active, is_approved, approved_at, approved_by, approval_notes,
	registered_date, is_rejected, rejected_at, rejected_by, rejection_reason,
	password_reset_token, password_reset_expires, password_reset_requested_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.HashedPassword,
		&user.FirstName, &user.LastName, &user.DesiredName,
		&user.Phone, &user.Timezone, &user.Role, &user.IsActive,
		&user.IsApproved, &user.ApprovedAt, &user.ApprovedByID, &user.ApprovalNotes,
		&user.RegisteredDate, &user.IsRejected, &user.RejectedAt, &user.RejectedByID, &user.RejectionReason,
		&user.PasswordResetToken, &user.PasswordResetExpires, &user.PasswordResetRequestedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, email, username, hashed_password, first_name, last_name,
	            desired_name, phone, timezone, role, is_active, is_approved, is_rejected,
	            approved_at, approved_by, registered_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.HashedPassword,
		user.FirstName, user.LastName, user.DesiredName, user.Phone, user.Timezone,
		user.Role, user.IsActive, user.IsApproved, user.IsRejected,
		user.ApprovedAt, user.ApprovedByID, user.RegisteredDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findBy(ctx context.Context, column, value string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.findBy %s: %w", column, err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findBy(ctx, "id", id)
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findBy(ctx, "username", username)
}

func (r *pgUserRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.findBy(ctx, "password_reset_token", token)
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET
	            email = $1, username = $2, first_name = $3, last_name = $4, desired_name = $5,
	            phone = $6, timezone = $7, role = $8, hashed_password = $9,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $10`
	res, err := r.db.ExecContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, user.DesiredName,
		user.Phone, user.Timezone, user.Role, user.HashedPassword, user.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) Approve(ctx context.Context, id string, role model.Role, actorID string, notes *string, at time.Time) error {
	query := `UPDATE users SET
	            role = $1, is_approved = TRUE, approved_at = $2, approved_by = $3,
	            approval_notes = $4, registered_date = $2,
	            is_rejected = FALSE, rejected_at = NULL, rejected_by = NULL, rejection_reason = NULL,
	            is_active = TRUE, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, role, at, actorID, notes, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Approve: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) Reject(ctx context.Context, id string, actorID string, reason string, at time.Time) error {
	query := `UPDATE users SET
	            is_rejected = TRUE, rejected_at = $1, rejected_by = $2, rejection_reason = $3,
	            is_active = FALSE, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, at, actorID, reason, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Reject: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) SetResetToken(ctx context.Context, id, token string, expires, requestedAt time.Time) error {
	query := `UPDATE users SET
	            password_reset_token = $1, password_reset_expires = $2,
	            password_reset_requested_at = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, token, expires, requestedAt, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetToken: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) UpdatePasswordAndClearReset(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET
	            hashed_password = $1, password_reset_token = NULL,
	            password_reset_expires = NULL, password_reset_requested_at = NULL,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePasswordAndClearReset: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetActive: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgUserRepository) ListPending(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE role = $1 AND is_approved = FALSE AND is_rejected = FALSE
	          ORDER BY created_at ASC`
	return r.list(ctx, query, model.RolePending)
}

func (r *pgUserRepository) ListApprovedSince(ctx context.Context, since time.Time) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE is_approved = TRUE AND registered_date IS NOT NULL AND registered_date >= $1
	          ORDER BY registered_date DESC`
	return r.list(ctx, query, since)
}

func (r *pgUserRepository) ListApprovedByRoles(ctx context.Context, roles ...model.Role) ([]model.User, error) {
	placeholders := make([]string, len(roles))
	args := make([]interface{}, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE is_approved = TRUE AND role IN (` + strings.Join(placeholders, ", ") + `)
	          ORDER BY last_name ASC NULLS LAST, first_name ASC NULLS LAST`
	return r.list(ctx, query, args...)
}

func (r *pgUserRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.list: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.list scan: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.list rows: %w", err)
	}
	return users, nil
}

func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
