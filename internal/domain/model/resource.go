package model

import (
	"time"
)

// ResourceKind selects one of the three intervention catalogs. Strategies,
// supports and accommodations share the same shape and live in tables of the
// same layout, so one model and one repository serve all three.
type ResourceKind string

const (
	KindStrategy      ResourceKind = "strategy"
	KindSupport       ResourceKind = "support"
	KindAccommodation ResourceKind = "accommodation"
)

func ParseResourceKind(s string) (ResourceKind, bool) {
	switch ResourceKind(s) {
	case KindStrategy, KindSupport, KindAccommodation:
		return ResourceKind(s), true
	}
	return "", false
}

// Table returns the backing table name for the kind.
func (k ResourceKind) Table() string {
	switch k {
	case KindStrategy:
		return "strategies"
	case KindSupport:
		return "supports"
	case KindAccommodation:
		return "accommodations"
	}
	return ""
}

type Resource struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Category         *string   `json:"category,omitempty"`
	Type             *string   `json:"type,omitempty"`
	ShortDescription string    `json:"short_description"`
	LongDescription  *string   `json:"long_description,omitempty"`
	CreatedByID      string    `json:"created_by_id"`
	CreatedByName    *string   `json:"created_by_name,omitempty"`
	UpdatedByID      *string   `json:"updated_by_id,omitempty"`
	UpdatedByName    *string   `json:"updated_by_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
