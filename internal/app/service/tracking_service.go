package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"

	"github.com/google/uuid"
)

// TrackingService records behavior occurrences. Every recorded action writes
// two rows atomically: the daily counter upsert and an audit log entry.
type TrackingService struct {
	db           *sql.DB
	trackingRepo repository.TrackingRepository
	studentRepo  repository.StudentRepository
	behaviorRepo repository.BehaviorRepository
}

func NewTrackingService(db *sql.DB, trackingRepo repository.TrackingRepository, studentRepo repository.StudentRepository, behaviorRepo repository.BehaviorRepository) *TrackingService {
	return &TrackingService{
		db:           db,
		trackingRepo: trackingRepo,
		studentRepo:  studentRepo,
		behaviorRepo: behaviorRepo,
	}
}

type RecordTrackingRequest struct {
	BehaviorID   string     `json:"behavior_id"`
	Action       string     `json:"-"` // Set from the route, not the body
	TrackingDate *string    `json:"tracking_date,omitempty"` // YYYY-MM-DD, defaults to today
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
	ActorName    *string    `json:"actor_name,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type RecordTrackingResponse struct {
	Counter *model.TrackingCounter `json:"counter"`
	Log     *model.TrackingLog     `json:"log"`
}

func (s *TrackingService) Record(ctx context.Context, studentID, actorID string, req RecordTrackingRequest) (*RecordTrackingResponse, error) {
	action := model.TrackingAction(req.Action)
	var delta int
	switch action {
	case model.ActionIncrement:
		delta = 1
	case model.ActionDecrement:
		delta = -1
	default:
		return nil, fmt.Errorf("action must be %q or %q: %w", model.ActionIncrement, model.ActionDecrement, common.ErrBadRequest)
	}

	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", studentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	behavior, err := s.behaviorRepo.FindByID(ctx, req.BehaviorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("behavior with ID %s not found: %w", req.BehaviorID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load behavior: %w", err)
	}

	now := time.Now().UTC()
	trackingDate := now.Truncate(24 * time.Hour)
	if req.TrackingDate != nil {
		trackingDate, err = time.Parse("2006-01-02", *req.TrackingDate)
		if err != nil {
			return nil, fmt.Errorf("tracking_date must be YYYY-MM-DD: %w", common.ErrBadRequest)
		}
	}
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tracking transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("ERROR: tracking transaction rollback failed: %v", err)
		}
	}()

	counter, err := s.trackingRepo.UpsertCounter(ctx, tx, &model.TrackingCounter{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		BehaviorID:       behavior.ID,
		TrackingDate:     trackingDate,
		BehaviorCategory: behavior.Category,
		BehaviorSubtype:  behavior.Type,
		UpdatedByID:      actorID,
		UpdatedByName:    req.ActorName,
	}, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to update tracking counter: %w", err)
	}

	entry := &model.TrackingLog{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		BehaviorID:       behavior.ID,
		CounterID:        counter.ID,
		BehaviorCategory: behavior.Category,
		BehaviorSubtype:  behavior.Type,
		BehaviorName:     behavior.Name,
		ActionType:       action,
		OccurredAt:       occurredAt,
		LoggedAt:         now,
		LoggedByID:       actorID,
		LoggedByName:     req.ActorName,
		Notes:            req.Notes,
	}
	if err := s.trackingRepo.InsertLog(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to write tracking log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tracking transaction: %w", err)
	}
	return &RecordTrackingResponse{Counter: counter, Log: entry}, nil
}

// DailyCounters returns the counters for one student on one calendar day.
// The date string defaults to today when empty.
func (s *TrackingService) DailyCounters(ctx context.Context, studentID, date string) ([]model.TrackingCounter, error) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if date != "" {
		var err error
		day, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", common.ErrBadRequest)
		}
	}
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", studentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	counters, err := s.trackingRepo.ListCountersByDate(ctx, studentID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking counters: %w", err)
	}
	return counters, nil
}

const defaultLogLimit = 100

func (s *TrackingService) Logs(ctx context.Context, studentID string, limit int) ([]model.TrackingLog, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultLogLimit
	}
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", studentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	logs, err := s.trackingRepo.ListLogs(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking logs: %w", err)
	}
	return logs, nil
}
