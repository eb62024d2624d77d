package model

import (
	"time"
)

type Role string

const (
	RolePending      Role = "pending"
	RoleTeacher      Role = "teacher"
	RoleParaeducator Role = "paraeducator"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"

	// RoleSuperuser is the bootstrap bypass role. It satisfies every role
	// check and is never a valid approval target.
	RoleSuperuser Role = "superuser"
)

// ParseRole validates a role string against the closed enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePending, RoleTeacher, RoleParaeducator, RoleAdmin, RoleSuperAdmin, RoleSuperuser:
		return Role(s), true
	}
	return "", false
}

// AssignableRoles are the roles an admin may grant when approving an account
// or creating an educator. Pending and superuser are excluded.
func AssignableRoles() []Role {
	return []Role{RoleTeacher, RoleParaeducator, RoleAdmin, RoleSuperAdmin}
}

func (r Role) Assignable() bool {
	for _, a := range AssignableRoles() {
		if r == a {
			return true
		}
	}
	return false
}

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // Not exposed

	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DesiredName *string `json:"desired_name,omitempty"` // Preferred classroom name
	Phone       *string `json:"phone,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`

	Role     Role `json:"role"`
	IsActive bool `json:"is_active"`

	IsApproved     bool       `json:"is_approved"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ApprovedByID   *string    `json:"approved_by_id,omitempty"`
	ApprovalNotes  *string    `json:"approval_notes,omitempty"`
	RegisteredDate *time.Time `json:"registered_date,omitempty"` // Set when approved

	IsRejected      bool       `json:"is_rejected"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedByID    *string    `json:"rejected_by_id,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`

	PasswordResetToken       *string    `json:"-"`
	PasswordResetExpires     *time.Time `json:"-"`
	PasswordResetRequestedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name used in outbound email, preferring the classroom
// name over the legal first name.
func (u *User) DisplayName() string {
	if u.DesiredName != nil && *u.DesiredName != "" {
		return *u.DesiredName
	}
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Username
}
