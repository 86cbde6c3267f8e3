package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils"
)

// authService verifies credentials and issues access tokens.
type authService struct {
	userRepo  portsrepo.UserReader
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo portsrepo.UserReader, jwtSecret string, jwtExpiry time.Duration, jwtIssuer string) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		jwtIssuer: jwtIssuer,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the password and mints a JWT carrying workspace and roles.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same failure as a wrong password; do not leak account existence.
			return nil, apperrors.ErrUnauthorized
		}
		logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("Password mismatch on login", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}

	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}
	token, err := utils.GenerateJWT(user.UserID, user.Email, user.WorkspaceID, roles, s.jwtSecret, s.jwtExpiry, s.jwtIssuer)
	if err != nil {
		logger.Error("Failed to sign access token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		UserID:    user.UserID,
		Workspace: user.WorkspaceID,
		Roles:     roles,
	}, nil
}

// Refresh exchanges a still-valid token for a fresh one. Claims are re-read
// from the account so role changes take effect on refresh.
func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	claims, err := utils.ParseAndValidateJWT(req.Token, s.jwtSecret)
	if err != nil {
		logger.Warn("Refresh token validation failed", slog.String("error", err.Error()))
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		logger.Error("Failed to look up user for refresh", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}
	token, err := utils.GenerateJWT(user.UserID, user.Email, user.WorkspaceID, roles, s.jwtSecret, s.jwtExpiry, s.jwtIssuer)
	if err != nil {
		logger.Error("Failed to sign refreshed token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.LoginResponse{
		Token:     token,
		UserID:    user.UserID,
		Workspace: user.WorkspaceID,
		Roles:     roles,
	}, nil
}
