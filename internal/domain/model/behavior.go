package model

import (
	"time"
)

type BehaviorCategory string
type BehaviorType string

const (
	CategoryAntecedentMotivation BehaviorCategory = "antecedent_motivation"
	CategoryProblemBehavior      BehaviorCategory = "problem_behavior"

	// Types for problem_behavior
	TypeMajor   BehaviorType = "major"
	TypeMinor   BehaviorType = "minor"
	TypeGeneral BehaviorType = "general"

	// Types for antecedent_motivation
	TypeGet   BehaviorType = "get"
	TypeAvoid BehaviorType = "avoid"
)

// ValidBehaviorType reports whether the category/type pairing is allowed.
func ValidBehaviorType(category BehaviorCategory, typ BehaviorType) bool {
	switch category {
	case CategoryAntecedentMotivation:
		return typ == TypeGet || typ == TypeAvoid
	case CategoryProblemBehavior:
		return typ == TypeMajor || typ == TypeMinor || typ == TypeGeneral
	}
	return false
}

type Behavior struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Category         BehaviorCategory `json:"category"`
	Type             BehaviorType     `json:"type"`
	ShortDescription string           `json:"short_description"`
	LongDescription  *string          `json:"long_description,omitempty"`
	CreatedByID      string           `json:"created_by_id"`
	UpdatedByID      *string          `json:"updated_by_id,omitempty"`
	UpdatedByName    *string          `json:"updated_by_name,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
