package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"andromeda/internal/domain/model"
)

type TrackingRepository interface {
	// UpsertCounter adds delta to the counter for (student, behavior, day),
	// creating the row when absent, and returns the resulting counter.
	// Counts never go below zero. Must run inside the caller's transaction.
	UpsertCounter(ctx context.Context, tx *sql.Tx, counter *model.TrackingCounter, delta int) (*model.TrackingCounter, error)
	InsertLog(ctx context.Context, tx *sql.Tx, entry *model.TrackingLog) error

	ListCountersByDate(ctx context.Context, studentID string, date time.Time) ([]model.TrackingCounter, error)
	ListLogs(ctx context.Context, studentID string, limit int) ([]model.TrackingLog, error)
}

type pgTrackingRepository struct {
	db *sql.DB
}

func NewPgTrackingRepository(db *sql.DB) TrackingRepository {
	return &pgTrackingRepository{db: db}
}

func (r *pgTrackingRepository) UpsertCounter(ctx context.Context, tx *sql.Tx, c *model.TrackingCounter, delta int) (*model.TrackingCounter, error) {
	query := `INSERT INTO student_tracking_counters
	            (id, student_id, behavior_id, tracking_date, behavior_category, behavior_subtype,
	             count, updated_by, updated_by_name)
	          VALUES ($1, $2, $3, $4, $5, $6, GREATEST($7, 0), $8, $9)
	          ON CONFLICT (student_id, behavior_id, tracking_date)
	          DO UPDATE SET count = GREATEST(student_tracking_counters.count + $7, 0),
	                        updated_by = $8, updated_by_name = $9, updated_at = CURRENT_TIMESTAMP
	          RETURNING id, student_id, behavior_id, tracking_date, behavior_category,
	                    behavior_subtype, count, updated_by, updated_by_name, created_at, updated_at`

	row := tx.QueryRowContext(ctx, query,
		c.ID, c.StudentID, c.BehaviorID, c.TrackingDate, c.BehaviorCategory, c.BehaviorSubtype,
		delta, c.UpdatedByID, c.UpdatedByName,
	)

	out := &model.TrackingCounter{}
	err := row.Scan(
		&out.ID, &out.StudentID, &out.BehaviorID, &out.TrackingDate, &out.BehaviorCategory,
		&out.BehaviorSubtype, &out.Count, &out.UpdatedByID, &out.UpdatedByName,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("pgTrackingRepository.UpsertCounter: %w", err)
	}
	return out, nil
}

func (r *pgTrackingRepository) InsertLog(ctx context.Context, tx *sql.Tx, e *model.TrackingLog) error {
	query := `INSERT INTO student_tracking_logs
	            (id, student_id, behavior_id, counter_id, behavior_category, behavior_subtype,
	             behavior_name, action_type, occurred_at, logged_at, logged_by, logged_by_name, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := tx.ExecContext(ctx, query,
		e.ID, e.StudentID, e.BehaviorID, e.CounterID, e.BehaviorCategory, e.BehaviorSubtype,
		e.BehaviorName, e.ActionType, e.OccurredAt, e.LoggedAt, e.LoggedByID, e.LoggedByName, e.Notes,
	)
	if err != nil {
		return fmt.Errorf("pgTrackingRepository.InsertLog: %w", err)
	}
	return nil
}

func (r *pgTrackingRepository) ListCountersByDate(ctx context.Context, studentID string, date time.Time) ([]model.TrackingCounter, error) {
	query := `SELECT id, student_id, behavior_id, tracking_date, behavior_category, behavior_subtype,
	            count, updated_by, updated_by_name, created_at, updated_at
	          FROM student_tracking_counters
	          WHERE student_id = $1 AND tracking_date = $2
	          ORDER BY behavior_category, behavior_subtype`
	rows, err := r.db.QueryContext(ctx, query, studentID, date)
	if err != nil {
		return nil, fmt.Errorf("pgTrackingRepository.ListCountersByDate: %w", err)
	}
	defer rows.Close()

	var counters []model.TrackingCounter
	for rows.Next() {
		var c model.TrackingCounter
		err := rows.Scan(
			&c.ID, &c.StudentID, &c.BehaviorID, &c.TrackingDate, &c.BehaviorCategory,
			&c.BehaviorSubtype, &c.Count, &c.UpdatedByID, &c.UpdatedByName,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("pgTrackingRepository.ListCountersByDate scan: %w", err)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTrackingRepository.ListCountersByDate rows: %w", err)
	}
	return counters, nil
}

func (r *pgTrackingRepository) ListLogs(ctx context.Context, studentID string, limit int) ([]model.TrackingLog, error) {
	query := `SELECT id, student_id, behavior_id, counter_id, behavior_category, behavior_subtype,
	            behavior_name, action_type, occurred_at, logged_at, logged_by, logged_by_name, notes
	          FROM student_tracking_logs
	          WHERE student_id = $1
	          ORDER BY logged_at DESC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgTrackingRepository.ListLogs: %w", err)
	}
	defer rows.Close()

	var logs []model.TrackingLog
	for rows.Next() {
		var e model.TrackingLog
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.BehaviorID, &e.CounterID, &e.BehaviorCategory, &e.BehaviorSubtype,
			&e.BehaviorName, &e.ActionType, &e.OccurredAt, &e.LoggedAt, &e.LoggedByID, &e.LoggedByName, &e.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("pgTrackingRepository.ListLogs scan: %w", err)
		}
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTrackingRepository.ListLogs rows: %w", err)
	}
	return logs, nil
}
