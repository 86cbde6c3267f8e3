package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
)

// PgxUserRepository reads user accounts and workspaces.
type PgxUserRepository struct {
	BaseRepository
}

// NewUserRepository creates a new repository for user and workspace data.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.UserReader      = (*PgxUserRepository)(nil)
	_ portsrepo.WorkspaceReader = (*PgxUserRepository)(nil)
)

const userColumns = `
	user_id, workspace_id, email, name, password_hash, roles,
	created_at, created_by, last_updated_at, last_updated_by`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var roles []string
	err := row.Scan(
		&u.UserID, &u.WorkspaceID, &u.Email, &u.Name, &u.PasswordHash, &roles,
		&u.CreatedAt, &u.CreatedBy, &u.LastUpdatedAt, &u.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Roles = make([]domain.Role, len(roles))
	for i, r := range roles {
		u.Roles[i] = domain.Role(r)
	}
	return &u, nil
}

// FindUserByID retrieves a user by id.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.Pool.QueryRow(ctx, query, userID))
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.Pool.QueryRow(ctx, query, email))
}

// FindWorkspaceByID retrieves a workspace by id.
func (r *PgxUserRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.Pool.QueryRow(ctx, `
		SELECT workspace_id, name, parent_id, created_at, created_by, last_updated_at, last_updated_by
		FROM workspaces WHERE workspace_id = $1`,
		workspaceID,
	).Scan(&ws.WorkspaceID, &ws.Name, &ws.ParentID, &ws.CreatedAt, &ws.CreatedBy, &ws.LastUpdatedAt, &ws.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}
	return &ws, nil
}
