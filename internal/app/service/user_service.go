package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"andromeda/internal/common"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DesiredName *string `json:"desired_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
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
	if req.Timezone != nil {
		user.Timezone = req.Timezone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current credential before installing the new
// one; the new password runs through the full policy with the username as
// similarity context.
func (s *UserService) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("user with ID %s not found: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if !security.CheckPasswordHash(req.CurrentPassword, user.HashedPassword) {
		return fmt.Errorf("current password is incorrect: %w", common.ErrUnauthorized)
	}

	if ruleErrors := security.ValidatePassword(req.NewPassword, user.Username); len(ruleErrors) > 0 {
		return common.NewValidationError(
			"New password does not meet security requirements",
			ruleErrors, security.PasswordRequirements(),
		)
	}

	hashedPassword, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hashedPassword); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	log.Printf("Password changed for user: %s", id)
	return nil
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update active flag: %w", err)
	}
	return s.Get(ctx, id)
}
