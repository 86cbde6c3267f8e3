package services

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// AuthSvcFacade exposes password login and token refresh.
type AuthSvcFacade interface {
	// Login verifies credentials and issues a signed access token carrying the
	// user's workspace and role claims.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// Refresh re-issues a token for a still-valid one, picking up the user's
	// current roles.
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
}
