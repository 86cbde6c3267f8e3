package repositories

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// UserReader defines read operations for user accounts.
type UserReader interface {
	// FindUserByID retrieves a user by id.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email (case-insensitive).
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WorkspaceReader defines read operations for workspaces.
type WorkspaceReader interface {
	// FindWorkspaceByID retrieves a workspace by id.
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)
}
