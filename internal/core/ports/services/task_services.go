package services

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// TaskSvcFacade exposes the task ledger: the pool of billable tasks from
// which work packages are assembled.
type TaskSvcFacade interface {
	// SetForceInclude toggles the manual override that pulls a non-billable
	// task into the eligible pool.
	SetForceInclude(ctx context.Context, workspaceID, taskID string, value bool, userID string) (*domain.Task, error)

	// ListEligible returns unlocked tasks with billable hours.
	ListEligible(ctx context.Context, workspaceID string, filters domain.TaskFilters) ([]domain.Task, error)

	// UpsertImported applies a normalized tracker upsert stream, deduplicated
	// by (projectKey, key) fingerprint.
	UpsertImported(ctx context.Context, workspaceID string, reqs []dto.ImportTaskRequest, importerID string) ([]domain.Task, error)
}
