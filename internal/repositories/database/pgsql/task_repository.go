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

// PgxTaskRepository persists the task ledger.
type PgxTaskRepository struct {
	BaseRepository
}

// NewTaskRepository creates a new repository for task data.
func NewTaskRepository(pool *pgxpool.Pool) portsrepo.TaskRepositoryFacade {
	return &PgxTaskRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TaskRepositoryFacade = (*PgxTaskRepository)(nil)

const taskColumns = `
	task_id, key, project_key, project_id, workspace_id, title, status, period,
	client_id, contractor_id, contract_id,
	hours, seconds_spent, billed_seconds,
	billable, force_included, work_package_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.TaskID, &t.Key, &t.ProjectKey, &t.ProjectID, &t.WorkspaceID, &t.Title, &t.Status, &t.Period,
		&t.ClientID, &t.ContractorID, &t.ContractID,
		&t.Hours, &t.SecondsSpent, &t.BilledSeconds,
		&t.Billable, &t.ForceIncluded, &t.WorkPackageID,
		&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &t, nil
}

// FindTaskByID retrieves a single task.
func (r *PgxTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1`
	return scanTask(r.Pool.QueryRow(ctx, query, taskID))
}

// FindTasksByIDs retrieves multiple tasks keyed by id.
func (r *PgxTaskRepository) FindTasksByIDs(ctx context.Context, taskIDs []string) (map[string]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = ANY($1)`
	rows, err := r.Pool.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Task, len(taskIDs))
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result[task.TaskID] = *task
	}
	return result, rows.Err()
}

// ListEligibleTasks returns the unlocked assembly pool for a workspace.
func (r *PgxTaskRepository) ListEligibleTasks(ctx context.Context, workspaceID string, filters domain.TaskFilters) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE workspace_id = $1
		  AND work_package_id IS NULL
		  AND hours > 0
		  AND (billable OR force_included)`
	args := []any{workspaceID}

	if filters.ProjectKey != "" {
		args = append(args, filters.ProjectKey)
		query += fmt.Sprintf(" AND project_key = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Period != "" {
		args = append(args, filters.Period)
		query += fmt.Sprintf(" AND period = $%d", len(args))
	}
	if filters.BillableOnly {
		query += " AND billable"
	}
	query += " ORDER BY project_key, key"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpsertTasks inserts or updates tasks keyed by (workspace, projectKey, key).
// Assignment and override flags of existing rows are left untouched by the
// update branch.
func (r *PgxTaskRepository) UpsertTasks(ctx context.Context, workspaceID string, tasks []domain.Task) ([]domain.Task, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (workspace_id, project_key, key) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			period = EXCLUDED.period,
			client_id = COALESCE(EXCLUDED.client_id, tasks.client_id),
			contractor_id = COALESCE(EXCLUDED.contractor_id, tasks.contractor_id),
			contract_id = COALESCE(EXCLUDED.contract_id, tasks.contract_id),
			hours = EXCLUDED.hours,
			seconds_spent = EXCLUDED.seconds_spent,
			billed_seconds = EXCLUDED.billed_seconds,
			billable = EXCLUDED.billable,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + taskColumns

	result := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		row := tx.QueryRow(ctx, query,
			t.TaskID, t.Key, t.ProjectKey, t.ProjectID, workspaceID, t.Title, t.Status, t.Period,
			t.ClientID, t.ContractorID, t.ContractID,
			t.Hours, t.SecondsSpent, t.BilledSeconds,
			t.Billable, t.ForceIncluded, t.WorkPackageID,
			t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy,
		)
		saved, err := scanTask(row)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert task %s/%s: %w", t.ProjectKey, t.Key, err)
		}
		result = append(result, *saved)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit task upsert: %w", err)
	}
	return result, nil
}

// UpdateForceInclude sets the manual override flag on a task.
func (r *PgxTaskRepository) UpdateForceInclude(ctx context.Context, taskID string, value bool, updatedBy string, updatedAt time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE tasks SET force_included = $2, last_updated_at = $3, last_updated_by = $4
		WHERE task_id = $1`,
		taskID, value, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update force-include for task %s: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UnlockTasks clears the package assignment and override on the given tasks.
// Ids that no longer exist are silently skipped.
func (r *PgxTaskRepository) UnlockTasks(ctx context.Context, taskIDs []string, updatedBy string, updatedAt time.Time) error {
	if len(taskIDs) == 0 {
		return nil
	}
	_, err := r.Pool.Exec(ctx, `
		UPDATE tasks SET work_package_id = NULL, force_included = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE task_id = ANY($1)`,
		taskIDs, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to unlock tasks: %w", err)
	}
	return nil
}
