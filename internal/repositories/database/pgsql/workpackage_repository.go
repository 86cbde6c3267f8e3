package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
)

// PgxWorkPackageRepository persists assembled work packages. Task snapshots
// and metadata are stored as JSONB since they are frozen at assembly time and
// never queried field-by-field.
type PgxWorkPackageRepository struct {
	BaseRepository
}

// NewWorkPackageRepository creates a new repository for work package data.
func NewWorkPackageRepository(pool *pgxpool.Pool) portsrepo.WorkPackageRepositoryFacade {
	return &PgxWorkPackageRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WorkPackageRepositoryFacade = (*PgxWorkPackageRepository)(nil)

const workPackageColumns = `
	work_package_id, workspace_id, period, contract_id, client_id, contractor_id,
	total_hours, total_amount, hourly_rate, base_rate, rate_type,
	vat_included, vat_percent, vat_amount,
	include_timesheet, performer_type,
	task_snapshots, metadata,
	created_at, created_by, last_updated_at, last_updated_by`

func scanWorkPackage(row pgx.Row) (*domain.WorkPackage, error) {
	var wp domain.WorkPackage
	var snapshotsJSON, metadataJSON []byte
	err := row.Scan(
		&wp.WorkPackageID, &wp.WorkspaceID, &wp.Period, &wp.ContractID, &wp.ClientID, &wp.ContractorID,
		&wp.TotalHours, &wp.TotalAmount, &wp.HourlyRate, &wp.BaseRate, &wp.RateType,
		&wp.VATIncluded, &wp.VATPercent, &wp.VATAmount,
		&wp.IncludeTimesheet, &wp.PerformerType,
		&snapshotsJSON, &metadataJSON,
		&wp.CreatedAt, &wp.CreatedBy, &wp.LastUpdatedAt, &wp.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan work package: %w", err)
	}
	if err := json.Unmarshal(snapshotsJSON, &wp.TaskSnapshots); err != nil {
		return nil, fmt.Errorf("failed to decode task snapshots: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &wp.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode package metadata: %w", err)
	}
	return &wp, nil
}

// FindWorkPackageByID retrieves a package with its task snapshots.
func (r *PgxWorkPackageRepository) FindWorkPackageByID(ctx context.Context, workPackageID string) (*domain.WorkPackage, error) {
	query := `SELECT ` + workPackageColumns + ` FROM work_packages WHERE work_package_id = $1`
	return scanWorkPackage(r.Pool.QueryRow(ctx, query, workPackageID))
}

// ListWorkPackagesByWorkspace retrieves all packages for a workspace.
func (r *PgxWorkPackageRepository) ListWorkPackagesByWorkspace(ctx context.Context, workspaceID string) ([]domain.WorkPackage, error) {
	query := `SELECT ` + workPackageColumns + ` FROM work_packages WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work packages: %w", err)
	}
	defer rows.Close()

	var packages []domain.WorkPackage
	for rows.Next() {
		wp, err := scanWorkPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *wp)
	}
	return packages, rows.Err()
}

// SaveWorkPackage persists the package and locks all snapshotted tasks in one
// transaction. The lock update only touches tasks that are still unassigned,
// so a competing assembly that already claimed any of them makes the affected
// row count come up short; the whole write then rolls back.
func (r *PgxWorkPackageRepository) SaveWorkPackage(ctx context.Context, pkg domain.WorkPackage) error {
	snapshotsJSON, err := json.Marshal(pkg.TaskSnapshots)
	if err != nil {
		return fmt.Errorf("failed to encode task snapshots: %w", err)
	}
	metadataJSON, err := json.Marshal(pkg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode package metadata: %w", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO work_packages (`+workPackageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		pkg.WorkPackageID, pkg.WorkspaceID, pkg.Period, pkg.ContractID, pkg.ClientID, pkg.ContractorID,
		pkg.TotalHours, pkg.TotalAmount, pkg.HourlyRate, pkg.BaseRate, pkg.RateType,
		pkg.VATIncluded, pkg.VATPercent, pkg.VATAmount,
		pkg.IncludeTimesheet, pkg.PerformerType,
		snapshotsJSON, metadataJSON,
		pkg.CreatedAt, pkg.CreatedBy, pkg.LastUpdatedAt, pkg.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work package: %w", err)
	}

	taskIDs := pkg.TaskIDs()
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET work_package_id = $1, force_included = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE task_id = ANY($2) AND work_package_id IS NULL`,
		pkg.WorkPackageID, taskIDs, pkg.CreatedAt, pkg.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to lock tasks for work package: %w", err)
	}
	if tag.RowsAffected() != int64(len(taskIDs)) {
		return apperrors.ErrConflict
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit work package: %w", err)
	}
	return nil
}

// UpdateWorkPackageMetadata replaces the package's mutable metadata block.
func (r *PgxWorkPackageRepository) UpdateWorkPackageMetadata(ctx context.Context, workPackageID string, metadata domain.PackageMetadata, updatedBy string, updatedAt time.Time) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode package metadata: %w", err)
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE work_packages SET metadata = $2, last_updated_at = $3, last_updated_by = $4
		WHERE work_package_id = $1`,
		workPackageID, metadataJSON, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update work package metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWorkPackage removes the package row.
func (r *PgxWorkPackageRepository) DeleteWorkPackage(ctx context.Context, workPackageID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM work_packages WHERE work_package_id = $1`, workPackageID)
	if err != nil {
		return fmt.Errorf("failed to delete work package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
