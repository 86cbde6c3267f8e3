package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
)

// PgxContractRepository persists contracts and their client counterparties.
type PgxContractRepository struct {
	BaseRepository
}

// NewContractRepository creates a new repository for contract data.
func NewContractRepository(pool *pgxpool.Pool) portsrepo.ContractRepositoryFacade {
	return &PgxContractRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ContractRepositoryFacade = (*PgxContractRepository)(nil)

// FindContractByID retrieves a contract by id.
func (r *PgxContractRepository) FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	var c domain.Contract
	err := r.Pool.QueryRow(ctx, `
		SELECT contract_id, workspace_id, number, client_id, contractor_id, hourly_rate, rate_type, active,
			created_at, created_by, last_updated_at, last_updated_by
		FROM contracts WHERE contract_id = $1`,
		contractID,
	).Scan(
		&c.ContractID, &c.WorkspaceID, &c.Number, &c.ClientID, &c.ContractorID, &c.HourlyRate, &c.RateType, &c.Active,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}
	return &c, nil
}

// FindClientByID retrieves a client by id.
func (r *PgxContractRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	var c domain.Client
	err := r.Pool.QueryRow(ctx, `
		SELECT client_id, workspace_id, name, inn, address,
			created_at, created_by, last_updated_at, last_updated_by
		FROM clients WHERE client_id = $1`,
		clientID,
	).Scan(
		&c.ClientID, &c.WorkspaceID, &c.Name, &c.INN, &c.Address,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

// ListContractorReferences maps contractor ids to the ids of contracts that
// reference them, for one workspace.
func (r *PgxContractRepository) ListContractorReferences(ctx context.Context, workspaceID string) (map[string][]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT contractor_id, contract_id FROM contracts WHERE workspace_id = $1`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contractor references: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]string)
	for rows.Next() {
		var contractorID, contractID string
		if err := rows.Scan(&contractorID, &contractID); err != nil {
			return nil, fmt.Errorf("failed to scan contractor reference: %w", err)
		}
		refs[contractorID] = append(refs[contractorID], contractID)
	}
	return refs, rows.Err()
}

// ReassignContractor re-points a contract at a different Individual.
func (r *PgxContractRepository) ReassignContractor(ctx context.Context, contractID string, contractorID string, updatedBy string, updatedAt time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE contracts SET contractor_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE contract_id = $1`,
		contractID, contractorID, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to reassign contractor on contract %s: %w", contractID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
