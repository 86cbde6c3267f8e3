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

// PgxIndividualRepository persists the performer identity directory.
type PgxIndividualRepository struct {
	BaseRepository
}

// NewIndividualRepository creates a new repository for individual data.
func NewIndividualRepository(pool *pgxpool.Pool) portsrepo.IndividualRepositoryFacade {
	return &PgxIndividualRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.IndividualRepositoryFacade = (*PgxIndividualRepository)(nil)

const individualColumns = `
	individual_id, workspace_id, name,
	inn, passport, address, email, external_id,
	source, status,
	user_id, user_email, user_role,
	is_approval_manager, approval_manager_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanIndividual(row pgx.Row) (*domain.Individual, error) {
	var ind domain.Individual
	err := row.Scan(
		&ind.IndividualID, &ind.WorkspaceID, &ind.Name,
		&ind.INN, &ind.Passport, &ind.Address, &ind.Email, &ind.ExternalID,
		&ind.Source, &ind.Status,
		&ind.UserID, &ind.UserEmail, &ind.UserRole,
		&ind.IsApprovalManager, &ind.ApprovalManagerID,
		&ind.CreatedAt, &ind.CreatedBy, &ind.LastUpdatedAt, &ind.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan individual: %w", err)
	}
	return &ind, nil
}

// FindIndividualByID retrieves a single performer record.
func (r *PgxIndividualRepository) FindIndividualByID(ctx context.Context, individualID string) (*domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE individual_id = $1`
	return scanIndividual(r.Pool.QueryRow(ctx, query, individualID))
}

// ListIndividuals retrieves the full directory for a workspace in insertion
// order, which the reconciler relies on for deterministic grouping.
func (r *PgxIndividualRepository) ListIndividuals(ctx context.Context, workspaceID string) ([]domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE workspace_id = $1 ORDER BY created_at, individual_id`
	rows, err := r.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query individuals: %w", err)
	}
	defer rows.Close()

	var individuals []domain.Individual
	for rows.Next() {
		ind, err := scanIndividual(rows)
		if err != nil {
			return nil, err
		}
		individuals = append(individuals, *ind)
	}
	return individuals, rows.Err()
}

// SaveIndividual persists a new performer record.
func (r *PgxIndividualRepository) SaveIndividual(ctx context.Context, individual domain.Individual) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO individuals (`+individualColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		individual.IndividualID, individual.WorkspaceID, individual.Name,
		individual.INN, individual.Passport, individual.Address, individual.Email, individual.ExternalID,
		individual.Source, individual.Status,
		individual.UserID, individual.UserEmail, individual.UserRole,
		individual.IsApprovalManager, individual.ApprovalManagerID,
		individual.CreatedAt, individual.CreatedBy, individual.LastUpdatedAt, individual.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert individual: %w", err)
	}
	return nil
}

// UpdateIndividual replaces an existing performer record.
func (r *PgxIndividualRepository) UpdateIndividual(ctx context.Context, individual domain.Individual) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE individuals SET
			name = $2, inn = $3, passport = $4, address = $5, email = $6, external_id = $7,
			source = $8, status = $9,
			user_id = $10, user_email = $11, user_role = $12,
			is_approval_manager = $13, approval_manager_id = $14,
			last_updated_at = $15, last_updated_by = $16
		WHERE individual_id = $1`,
		individual.IndividualID,
		individual.Name, individual.INN, individual.Passport, individual.Address, individual.Email, individual.ExternalID,
		individual.Source, individual.Status,
		individual.UserID, individual.UserEmail, individual.UserRole,
		individual.IsApprovalManager, individual.ApprovalManagerID,
		individual.LastUpdatedAt, individual.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update individual %s: %w", individual.IndividualID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteIndividual removes a performer record.
func (r *PgxIndividualRepository) DeleteIndividual(ctx context.Context, individualID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM individuals WHERE individual_id = $1`, individualID)
	if err != nil {
		return fmt.Errorf("failed to delete individual %s: %w", individualID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
