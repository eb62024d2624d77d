package model

import (
	"time"
)

type TrackingAction string

const (
	ActionIncrement TrackingAction = "increment"
	ActionDecrement TrackingAction = "decrement"
)

// TrackingCounter holds the occurrence count for one student, behavior and
// calendar day. One row per (student, behavior, tracking_date).
type TrackingCounter struct {
	ID               string           `json:"id"`
	StudentID        string           `json:"student_id"`
	BehaviorID       string           `json:"behavior_id"`
	TrackingDate     time.Time        `json:"tracking_date"`
	BehaviorCategory BehaviorCategory `json:"behavior_category"`
	BehaviorSubtype  BehaviorType     `json:"behavior_subtype"`
	Count            int              `json:"count"`
	UpdatedByID      string           `json:"updated_by_id"`
	UpdatedByName    *string          `json:"updated_by_name,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TrackingLog records a single increment or decrement against a counter.
type TrackingLog struct {
	ID               string           `json:"id"`
	StudentID        string           `json:"student_id"`
	BehaviorID       string           `json:"behavior_id"`
	CounterID        string           `json:"counter_id"`
	BehaviorCategory BehaviorCategory `json:"behavior_category"`
	BehaviorSubtype  BehaviorType     `json:"behavior_subtype"`
	BehaviorName     string           `json:"behavior_name"` // Name at time of log
	ActionType       TrackingAction   `json:"action_type"`
	OccurredAt       time.Time        `json:"occurred_at"`
	LoggedAt         time.Time        `json:"logged_at"`
	LoggedByID       string           `json:"logged_by_id"`
	LoggedByName     *string          `json:"logged_by_name,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}
