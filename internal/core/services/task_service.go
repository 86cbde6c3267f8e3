package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils/billing"
)

// taskService owns the ledger of billable tasks. Callers may toggle the
// force-include override and read the eligible pool; assignment itself is
// only ever written by the assembler and release paths.
type taskService struct {
	taskRepo portsrepo.TaskRepositoryFacade
}

// NewTaskService creates a new task ledger service.
func NewTaskService(taskRepo portsrepo.TaskRepositoryFacade) portssvc.TaskSvcFacade {
	return &taskService{taskRepo: taskRepo}
}

var _ portssvc.TaskSvcFacade = (*taskService)(nil)

// SetForceInclude sets the manual override flag. It never touches the task's
// package assignment.
func (s *taskService) SetForceInclude(ctx context.Context, workspaceID, taskID string, value bool, userID string) (*domain.Task, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find task for force-include toggle", slog.String("task_id", taskID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find task %s: %w", taskID, err)
	}
	if task.WorkspaceID != workspaceID {
		// Obscure existence across workspaces.
		return nil, apperrors.ErrNotFound
	}

	if task.ForceIncluded == value {
		return task, nil
	}

	now := time.Now().UTC()
	if err := s.taskRepo.UpdateForceInclude(ctx, taskID, value, userID, now); err != nil {
		logger.Error("Failed to update force-include flag", slog.String("task_id", taskID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update force-include: %w", err)
	}

	task.ForceIncluded = value
	task.LastUpdatedAt = now
	task.LastUpdatedBy = userID
	logger.Info("Task force-include updated", slog.String("task_id", taskID), slog.Bool("value", value))
	return task, nil
}

// ListEligible returns the exclusive pool from which work packages are
// assembled: (billable OR forceIncluded) AND unlocked AND hours > 0.
func (s *taskService) ListEligible(ctx context.Context, workspaceID string, filters domain.TaskFilters) ([]domain.Task, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tasks, err := s.taskRepo.ListEligibleTasks(ctx, workspaceID, filters)
	if err != nil {
		logger.Error("Failed to list eligible tasks", slog.String("workspace_id", workspaceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list eligible tasks: %w", err)
	}

	// The repository applies the pool predicate in SQL; re-check here so an
	// index drifting out of date can never leak a locked task into assembly.
	eligible := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEligible() {
			eligible = append(eligible, t)
		}
	}

	logger.Debug("Eligible tasks listed", slog.String("workspace_id", workspaceID), slog.Int("count", len(eligible)))
	return eligible, nil
}

// UpsertImported applies a normalized tracker import stream. Rows are keyed by
// (projectKey, key) so re-imports update instead of duplicating; existing
// assignment and override flags survive the update.
func (s *taskService) UpsertImported(ctx context.Context, workspaceID string, reqs []dto.ImportTaskRequest, importerID string) ([]domain.Task, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(reqs) == 0 {
		return []domain.Task{}, nil
	}

	now := time.Now().UTC()
	tasks := make([]domain.Task, len(reqs))
	for i, req := range reqs {
		if req.SecondsSpent < 0 || req.BilledSeconds < 0 {
			return nil, fmt.Errorf("%w: negative tracked time for %s/%s", apperrors.ErrValidation, req.ProjectKey, req.Key)
		}
		tasks[i] = domain.Task{
			TaskID:        uuid.NewString(), // Ignored by the upsert when the fingerprint already exists
			Key:           req.Key,
			ProjectKey:    req.ProjectKey,
			ProjectID:     req.ProjectID,
			WorkspaceID:   workspaceID,
			Title:         req.Title,
			Status:        req.Status,
			Period:        req.Period,
			ClientID:      req.ClientID,
			ContractorID:  req.ContractorID,
			ContractID:    req.ContractID,
			Hours:         billing.DeriveTaskHours(req.Hours, req.SecondsSpent, req.BilledSeconds),
			SecondsSpent:  req.SecondsSpent,
			BilledSeconds: req.BilledSeconds,
			Billable:      req.Billable,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     importerID,
				LastUpdatedAt: now,
				LastUpdatedBy: importerID,
			},
		}
	}

	upserted, err := s.taskRepo.UpsertTasks(ctx, workspaceID, tasks)
	if err != nil {
		logger.Error("Failed to upsert imported tasks", slog.String("workspace_id", workspaceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert imported tasks: %w", err)
	}

	logger.Info("Tracker tasks upserted", slog.String("workspace_id", workspaceID), slog.Int("count", len(upserted)))
	return upserted, nil
}
