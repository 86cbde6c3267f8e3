package repositories

import (
	"context"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// TaskReader defines read operations for the task ledger.
type TaskReader interface {
	// FindTaskByID retrieves a single task by its unique identifier.
	FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error)

	// FindTasksByIDs retrieves multiple tasks keyed by id. Missing ids are
	// simply absent from the result.
	FindTasksByIDs(ctx context.Context, taskIDs []string) (map[string]domain.Task, error)

	// ListEligibleTasks returns the unlocked assembly pool for a workspace,
	// narrowed by the optional filters.
	ListEligibleTasks(ctx context.Context, workspaceID string, filters domain.TaskFilters) ([]domain.Task, error)
}

// TaskWriter defines write operations for the task ledger.
type TaskWriter interface {
	// UpsertTasks inserts or updates tasks keyed by their (projectKey, key)
	// fingerprint. Assignment and override flags of existing rows survive.
	UpsertTasks(ctx context.Context, workspaceID string, tasks []domain.Task) ([]domain.Task, error)

	// UpdateForceInclude sets the manual override flag on a task.
	UpdateForceInclude(ctx context.Context, taskID string, value bool, updatedBy string, updatedAt time.Time) error

	// UnlockTasks clears workPackageID and forceIncluded on the given tasks.
	// Unknown ids are ignored, not errors.
	UnlockTasks(ctx context.Context, taskIDs []string, updatedBy string, updatedAt time.Time) error
}

// TaskRepositoryFacade combines all task repository interfaces.
type TaskRepositoryFacade interface {
	TaskReader
	TaskWriter
}
