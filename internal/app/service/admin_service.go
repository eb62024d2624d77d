package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"

	"github.com/google/uuid"
)

// AdminService owns the approval workflow and administrative account
// management. Callers are assumed to have passed the admin role guard.
type AdminService struct {
	userRepo repository.UserRepository
	mailer   Mailer
}

func NewAdminService(userRepo repository.UserRepository, mailer Mailer) *AdminService {
	return &AdminService{userRepo: userRepo, mailer: mailer}
}

type ApproveUserRequest struct {
	UserID        string  `json:"user_id"`
	Role          string  `json:"role"`
	ApprovalNotes *string `json:"approval_notes,omitempty"`
}

type ApproveUserResponse struct {
	Message    string     `json:"message"`
	UserID     string     `json:"user_id"`
	Role       model.Role `json:"role"`
	IsApproved bool       `json:"is_approved"`
}

type RejectUserRequest struct {
	UserID          string `json:"user_id"`
	RejectionReason string `json:"rejection_reason"`
}

type RejectUserResponse struct {
	Message    string `json:"message"`
	UserID     string `json:"user_id"`
	IsRejected bool   `json:"is_rejected"`
}

// Approve grants a role to an account and marks it approved. Approving a
// previously rejected account clears the rejection state. The target role
// must be one of the assignable roles; pending is never a valid target.
func (s *AdminService) Approve(ctx context.Context, req ApproveUserRequest, actorID string) (*ApproveUserResponse, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok || !role.Assignable() {
		return nil, fmt.Errorf("invalid role %q: %w", req.Role, common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %s not found: %w", req.UserID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user for approval: %w", err)
	}

	if err := s.userRepo.Approve(ctx, user.ID, role, actorID, req.ApprovalNotes, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.DisplayName()); err != nil {
		log.Printf("ERROR: Failed to enqueue welcome mail for %s: %v", user.ID, err)
	}

	log.Printf("User %s (ID: %s) approved as %s by admin %s", user.Email, user.ID, role, actorID)
	return &ApproveUserResponse{
		Message:    fmt.Sprintf("User %s has been approved as %s", user.Email, role),
		UserID:     user.ID,
		Role:       role,
		IsApproved: true,
	}, nil
}

// Reject marks an account rejected and deactivates it. The account remains in
// the system for audit.
func (s *AdminService) Reject(ctx context.Context, req RejectUserRequest, actorID string) (*RejectUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %s not found: %w", req.UserID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user for rejection: %w", err)
	}

	if err := s.userRepo.Reject(ctx, user.ID, actorID, req.RejectionReason, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to reject user: %w", err)
	}

	log.Printf("User %s (ID: %s) rejected by admin %s", user.Email, user.ID, actorID)
	return &RejectUserResponse{
		Message:    fmt.Sprintf("User %s has been rejected", user.Email),
		UserID:     user.ID,
		IsRejected: true,
	}, nil
}

func (s *AdminService) PendingUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

// RecentlyApproved lists accounts approved within the past seven days.
func (s *AdminService) RecentlyApproved(ctx context.Context) ([]model.User, error) {
	since := time.Now().UTC().AddDate(0, 0, -7)
	users, err := s.userRepo.ListApprovedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recently approved users: %w", err)
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

// Educators lists approved teaching staff.
func (s *AdminService) Educators(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.ListApprovedByRoles(ctx, model.RoleTeacher, model.RoleParaeducator)
	if err != nil {
		return nil, fmt.Errorf("failed to list educators: %w", err)
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

type CreateEducatorRequest struct {
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DesiredName *string `json:"desired_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// CreateEducator provisions a staff account directly. Admin-created accounts
// skip the pending queue and are approved on creation.
func (s *AdminService) CreateEducator(ctx context.Context, req CreateEducatorRequest, actorID string) (*model.User, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok || (role != model.RoleTeacher && role != model.RoleParaeducator && role != model.RoleAdmin) {
		return nil, fmt.Errorf("invalid role %q, must be teacher, paraeducator or admin: %w", req.Role, common.ErrBadRequest)
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("email, username and password are required: %w", common.ErrBadRequest)
	}
	if ruleErrors := security.ValidatePassword(req.Password, req.Username); len(ruleErrors) > 0 {
		return nil, common.NewValidationError(
			"Password does not meet security requirements",
			ruleErrors, security.PasswordRequirements(),
		)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DesiredName:    req.DesiredName,
		Phone:          req.Phone,
		Role:           role,
		IsActive:       true,
		IsApproved:     true,
		ApprovedAt:     &now,
		ApprovedByID:   &actorID,
		RegisteredDate: &now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create educator: %w", err)
	}

	log.Printf("Educator %s (ID: %s) created by admin %s", user.Email, user.ID, actorID)
	user.HashedPassword = ""
	return user, nil
}

type UpdateEducatorRequest struct {
	Email       *string `json:"email,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	Role        *string `json:"role,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DesiredName *string `json:"desired_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

func (s *AdminService) UpdateEducator(ctx context.Context, educatorID string, req UpdateEducatorRequest, actorID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, educatorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("educator with ID %s not found: %w", educatorID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load educator: %w", err)
	}

	if req.Role != nil {
		role, ok := model.ParseRole(*req.Role)
		if !ok || (role != model.RoleTeacher && role != model.RoleParaeducator && role != model.RoleAdmin) {
			return nil, fmt.Errorf("invalid role %q, must be teacher, paraeducator or admin: %w", *req.Role, common.ErrBadRequest)
		}
		user.Role = role
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", common.ErrConflict)
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email availability: %w", err)
		}
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(ctx, *req.Username); err == nil {
			return nil, fmt.Errorf("username already taken: %w", common.ErrConflict)
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check username availability: %w", err)
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		if ruleErrors := security.ValidatePassword(*req.Password, user.Username); len(ruleErrors) > 0 {
			return nil, common.NewValidationError(
				"Password does not meet security requirements",
				ruleErrors, security.PasswordRequirements(),
			)
		}
		hashedPassword, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashedPassword
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.DesiredName != nil {
		user.DesiredName = req.DesiredName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update educator: %w", err)
	}

	log.Printf("Educator %s (ID: %s) updated by admin %s", user.Email, user.ID, actorID)
	user.HashedPassword = ""
	return user, nil
}

func (s *AdminService) DeleteEducator(ctx context.Context, educatorID, actorID string) error {
	user, err := s.userRepo.FindByID(ctx, educatorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("educator with ID %s not found: %w", educatorID, common.ErrNotFound)
		}
		return fmt.Errorf("failed to load educator: %w", err)
	}

	if err := s.userRepo.Delete(ctx, educatorID); err != nil {
		return fmt.Errorf("failed to delete educator: %w", err)
	}

	log.Printf("Educator %s (ID: %s) deleted by admin %s", user.Email, educatorID, actorID)
	return nil
}
