package model

import (
	"time"
)

type Student struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Age                *int      `json:"age,omitempty"`
	GradeLevel         *string   `json:"grade_level,omitempty"` // "K", "1st", ...
	GenEdTeacher       *string   `json:"gened_teacher,omitempty"`
	SpedTeacher        *string   `json:"sped_teacher,omitempty"`
	Gender             *string   `json:"gender,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	SchoolID           *string   `json:"school_id,omitempty"`
	Email              *string   `json:"email,omitempty"`
	ParentNames        *string   `json:"parent_names,omitempty"` // Comma-separated guardians
	ParentContactPhone *string   `json:"parent_contact_phone,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AssignedBehavior links a student to a catalog behavior being tracked for them.
type AssignedBehavior struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	BehaviorID   string    `json:"behavior_id"`
	AssignedAt   time.Time `json:"assigned_at"`
	AssignedByID string    `json:"assigned_by_id"`
	Notes        *string   `json:"notes,omitempty"`

	BehaviorName *string `json:"behavior_name,omitempty"` // For display
}
