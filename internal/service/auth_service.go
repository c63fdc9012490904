package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/dto"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

// AuthService authenticates users and manages their credentials.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenResponse, error)
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, payload dto.ChangePasswordRequest) (dto.TokenResponse, error)
}

type authService struct {
	users      repository.UserRepository
	issuer     *auth.Issuer
	validator  *validator.Validate
	audit      AuditRecorder
	bcryptCost int
	logger     zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, issuer *auth.Issuer, validate *validator.Validate, audit AuditRecorder, bcryptCost int, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		issuer:     issuer,
		validator:  validate,
		audit:      audit,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, payload.Password) {
		s.logger.Info().Uint("user_id", user.ID).Msg("rejected login with wrong password")
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	claims, err := s.issuer.ParseRefresh(payload.RefreshToken)
	if err != nil {
		return dto.TokenResponse{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrInvalidRefreshToken
		}
		return dto.TokenResponse{}, err
	}

	return s.issueTokens(user)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

// ChangePassword replaces the caller's password and clears the forced-change
// flag. Fresh tokens are returned so the client drops the restricted ones.
func (s *authService) ChangePassword(ctx context.Context, userID uint, payload dto.ChangePasswordRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}
	if err := checkPasswordBytes("new_password", payload.NewPassword); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrUserNotFound
		}
		return dto.TokenResponse{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, payload.CurrentPassword) {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(payload.NewPassword, s.bcryptCost)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrUserNotFound
		}
		return dto.TokenResponse{}, err
	}
	user.PasswordHash = hash
	user.MustChangePassword = false

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      Actor{ID: user.ID, Role: user.Role},
		Action:     "auth.password_changed",
		EntityType: "user",
		EntityID:   &user.ID,
	})

	return s.issueTokens(user)
}

func (s *authService) issueTokens(user models.User) (dto.TokenResponse, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Role, user.MustChangePassword)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	return dto.TokenResponse{
		AccessToken:        access.Token,
		RefreshToken:       refresh.Token,
		ExpiresAt:          access.ExpiresAt,
		ID:                 user.ID,
		Username:           user.Username,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}, nil
}
