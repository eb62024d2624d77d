package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo         repository.UserRepository
	issuer           *security.TokenIssuer
	mailer           Mailer
	resetExpiryHours int
}

func NewAuthService(userRepo repository.UserRepository, issuer *security.TokenIssuer, mailer Mailer, resetExpiryHours int) *AuthService {
	if resetExpiryHours <= 0 {
		resetExpiryHours = 1
	}
	return &AuthService{
		userRepo:         userRepo,
		issuer:           issuer,
		mailer:           mailer,
		resetExpiryHours: resetExpiryHours,
	}
}

type RegisterRequest struct {
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DesiredName *string `json:"desired_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"` // Email or username; email wins if both set
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         *model.User `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ForgotPasswordResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type ResetPasswordResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Register creates a new pending account. Approval is a separate
// administrative step; no email is sent at registration.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("email, username and password are required: %w", common.ErrBadRequest)
	}

	// Username-similarity context is the local part of the email.
	localPart := req.Email
	if at := strings.Index(req.Email, "@"); at > 0 {
		localPart = req.Email[:at]
	}
	if ruleErrors := security.ValidatePassword(req.Password, localPart); len(ruleErrors) > 0 {
		return nil, common.NewValidationError(
			"Password does not meet security requirements",
			ruleErrors, security.PasswordRequirements(),
		)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered, please login or reset your password: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken, please choose a different username: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DesiredName:    req.DesiredName,
		Phone:          req.Phone,
		Role:           model.RolePending,
		IsActive:       true,
		IsApproved:     false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on a unique-index race
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("New user registered: %s", user.Email)
	user.HashedPassword = ""
	return user, nil
}

// Login authenticates by email or username and issues an access/refresh
// token pair. Approval state is deliberately not checked here; unapproved
// accounts hold pending-role tokens that the role guard rejects downstream,
// and the refresh path re-checks approval.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	loginField := req.Email
	if loginField == "" {
		loginField = req.Username
	}
	if loginField == "" || req.Password == "" {
		return nil, fmt.Errorf("either email or username must be provided along with a password: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, loginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByUsername(ctx, loginField)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Indistinguishable from a wrong password
			return nil, fmt.Errorf("invalid email/username or password: %w", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, fmt.Errorf("invalid email/username or password: %w", common.ErrUnauthorized)
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.HashedPassword = ""
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		User:         user,
	}, nil
}

// Refresh redeems a refresh token for a new access token. The account is
// reloaded so the new token reflects the current role, and accounts that are
// no longer approved are refused.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.issuer.VerifyToken(refreshToken, security.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired refresh token: %w", common.ErrUnauthorized)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired refresh token: %w", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}
	if !user.IsApproved || !user.IsActive {
		return nil, fmt.Errorf("account is not approved: %w", common.ErrUnauthorized)
	}

	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	log.Printf("Access token refreshed for user: %s", user.ID)
	return &RefreshResponse{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// Me returns the account behind a verified token's subject claim.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

const forgotPasswordMessage = "If this email is registered, you will receive a password reset link shortly."

// ForgotPassword issues a reset ticket when the email is registered. The
// response is identical whether or not the account exists, and persistence or
// mail failures are logged without changing it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) *ForgotPasswordResponse {
	resp := &ForgotPasswordResponse{Message: forgotPasswordMessage, Email: email}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.Printf("ERROR: Failed to look up account for password reset: %v", err)
		}
		return resp
	}

	token, err := security.NewResetToken()
	if err != nil {
		log.Printf("ERROR: Failed to generate reset token for %s: %v", user.ID, err)
		return resp
	}

	now := time.Now().UTC()
	expires := now.Add(time.Duration(s.resetExpiryHours) * time.Hour)
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, expires, now); err != nil {
		log.Printf("ERROR: Failed to store reset token for %s: %v", user.ID, err)
		return resp
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.DisplayName(), token, s.resetExpiryHours); err != nil {
		log.Printf("ERROR: Failed to enqueue password reset mail for %s: %v", user.ID, err)
	}

	log.Printf("Password reset requested for user: %s", user.ID)
	return resp
}

// ResetPassword redeems a reset ticket. An unknown ticket and an expired one
// produce the same generic failure. An expired ticket is left in place; every
// later attempt fails the same expiry check until a new request overwrites it.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*ResetPasswordResponse, error) {
	if ruleErrors := security.ValidatePassword(newPassword, ""); len(ruleErrors) > 0 {
		return nil, common.NewValidationError(
			"New password does not meet security requirements",
			ruleErrors, security.PasswordRequirements(),
		)
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired password reset link, please request a new one: %w", common.ErrBadRequest)
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if user.PasswordResetExpires == nil || !user.PasswordResetExpires.After(time.Now().UTC()) {
		return nil, fmt.Errorf("invalid or expired password reset link, please request a new one: %w", common.ErrBadRequest)
	}

	hashedPassword, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordAndClearReset(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	log.Printf("Password reset successful for user: %s", user.ID)
	return &ResetPasswordResponse{
		Message: "Your password has been successfully reset. You can now login with your new password.",
		Email:   user.Email,
	}, nil
}
