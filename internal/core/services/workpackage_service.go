package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils/billing"
)

// workPackageService assembles selected tasks into immutable costed packages
// and releases them back to the ledger.
type workPackageService struct {
	workPackageRepo portsrepo.WorkPackageRepositoryFacade
	taskRepo        portsrepo.TaskRepositoryFacade
	contractRepo    portsrepo.ContractRepositoryFacade
	individualRepo  portsrepo.IndividualReader
}

// NewWorkPackageService creates a new work package service.
func NewWorkPackageService(
	workPackageRepo portsrepo.WorkPackageRepositoryFacade,
	taskRepo portsrepo.TaskRepositoryFacade,
	contractRepo portsrepo.ContractRepositoryFacade,
	individualRepo portsrepo.IndividualReader,
) portssvc.WorkPackageSvcFacade {
	return &workPackageService{
		workPackageRepo: workPackageRepo,
		taskRepo:        taskRepo,
		contractRepo:    contractRepo,
		individualRepo:  individualRepo,
	}
}

var _ portssvc.WorkPackageSvcFacade = (*workPackageService)(nil)

// Assemble validates the request, freezes per-task cost snapshots at the
// package's hourly rate and persists the package while locking every included
// task in a single transaction. Locking is all-or-nothing: any task already
// held by another package rolls the whole write back with ErrConflict.
func (s *workPackageService) Assemble(ctx context.Context, workspaceID string, req dto.AssembleWorkPackageRequest, userID string) (*domain.WorkPackage, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.HourlyRate.IsNegative() || req.BaseRate.IsNegative() {
		return nil, fmt.Errorf("%w: rates must not be negative", apperrors.ErrValidation)
	}
	rateType := domain.RateType(req.RateType)
	if rateType != domain.RateHour && rateType != domain.RateMonth {
		return nil, fmt.Errorf("%w: unknown rate type %q", apperrors.ErrValidation, req.RateType)
	}
	vatPercent := decimal.Zero
	if req.VATIncluded {
		if req.VATPercent == nil || req.VATPercent.IsNegative() {
			return nil, fmt.Errorf("%w: vatPercent required when VAT is included", apperrors.ErrValidation)
		}
		vatPercent = *req.VATPercent
	}

	// Resolve the contract and both counterparties before touching any task.
	contract, err := s.contractRepo.FindContractByID(ctx, req.ContractID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: contract %s", apperrors.ErrInvalidReference, req.ContractID)
		}
		logger.Error("Failed to fetch contract for assembly", slog.String("contract_id", req.ContractID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch contract: %w", err)
	}
	if contract.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("%w: contract %s", apperrors.ErrInvalidReference, req.ContractID)
	}
	if _, err := s.contractRepo.FindClientByID(ctx, contract.ClientID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s on contract %s", apperrors.ErrInvalidReference, contract.ClientID, contract.ContractID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	if _, err := s.individualRepo.FindIndividualByID(ctx, contract.ContractorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: contractor %s on contract %s", apperrors.ErrInvalidReference, contract.ContractorID, contract.ContractID)
		}
		return nil, fmt.Errorf("failed to fetch contractor: %w", err)
	}

	// Fetch the tasks and verify every one of them is present and unlocked.
	// The repository re-checks the lock condition inside the transaction, but
	// failing early gives the caller a precise error.
	tasksByID, err := s.taskRepo.FindTasksByIDs(ctx, req.TaskIDs)
	if err != nil {
		logger.Error("Failed to fetch tasks for assembly", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	snapshots := make([]domain.TaskSnapshot, 0, len(req.TaskIDs))
	seen := make(map[string]struct{}, len(req.TaskIDs))
	for _, taskID := range req.TaskIDs {
		if _, dup := seen[taskID]; dup {
			return nil, fmt.Errorf("%w: task %s listed twice", apperrors.ErrValidation, taskID)
		}
		seen[taskID] = struct{}{}

		task, found := tasksByID[taskID]
		if !found || task.WorkspaceID != workspaceID {
			return nil, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, taskID)
		}
		if task.WorkPackageID != nil {
			return nil, fmt.Errorf("%w: task %s is already locked into package %s", apperrors.ErrConflict, taskID, *task.WorkPackageID)
		}
		snapshots = append(snapshots, billing.SnapshotTask(task, req.HourlyRate))
	}

	totalHours := billing.TotalHours(snapshots)
	totalAmount := billing.TotalAmount(req.HourlyRate, totalHours)
	vatAmount := decimal.Zero
	if req.VATIncluded {
		vatAmount = billing.VATAmount(totalAmount, vatPercent)
	}

	audience := req.Audience
	if len(audience) == 0 {
		audience = domain.DefaultAudience
	}

	now := time.Now().UTC()
	pkg := domain.WorkPackage{
		WorkPackageID:    uuid.NewString(),
		WorkspaceID:      workspaceID,
		Period:           req.Period,
		ContractID:       contract.ContractID,
		ClientID:         contract.ClientID,
		ContractorID:     contract.ContractorID,
		TotalHours:       totalHours,
		TotalAmount:      totalAmount,
		HourlyRate:       req.HourlyRate,
		BaseRate:         req.BaseRate,
		RateType:         rateType,
		VATIncluded:      req.VATIncluded,
		VATPercent:       vatPercent,
		VATAmount:        vatAmount,
		IncludeTimesheet: req.IncludeTimesheet,
		PerformerType:    req.PerformerType,
		TaskSnapshots:    snapshots,
		Metadata: domain.PackageMetadata{
			PreparedFor: audience,
			Tags:        req.Tags,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// Persist package and lock tasks atomically; a concurrent assembly of any
	// of these tasks makes the whole write fail with ErrConflict.
	if err := s.workPackageRepo.SaveWorkPackage(ctx, pkg); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Assembly lost task lock race", slog.String("work_package_id", pkg.WorkPackageID))
			return nil, fmt.Errorf("%w: one or more tasks were locked concurrently", apperrors.ErrConflict)
		}
		logger.Error("Failed to save work package", slog.String("work_package_id", pkg.WorkPackageID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save work package: %w", err)
	}

	logger.Info("Work package assembled",
		slog.String("work_package_id", pkg.WorkPackageID),
		slog.Int("tasks", len(snapshots)),
		slog.String("total_hours", totalHours.String()),
		slog.String("total_amount", totalAmount.String()),
	)
	return &pkg, nil
}

// GetWorkPackage retrieves one package with its snapshots.
func (s *workPackageService) GetWorkPackage(ctx context.Context, workspaceID, workPackageID string) (*domain.WorkPackage, error) {
	pkg, err := s.workPackageRepo.FindWorkPackageByID(ctx, workPackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find work package %s: %w", workPackageID, err)
	}
	if pkg.WorkspaceID != workspaceID {
		return nil, apperrors.ErrNotFound
	}
	return pkg, nil
}

// ListWorkPackages retrieves all packages for a workspace.
func (s *workPackageService) ListWorkPackages(ctx context.Context, workspaceID string) ([]domain.WorkPackage, error) {
	pkgs, err := s.workPackageRepo.ListWorkPackagesByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work packages: %w", err)
	}
	return pkgs, nil
}

// UpdateMetadata mutates the metadata block, the only mutable part of a
// package after assembly.
func (s *workPackageService) UpdateMetadata(ctx context.Context, workspaceID, workPackageID string, req dto.UpdatePackageMetadataRequest, userID string) (*domain.WorkPackage, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	pkg, err := s.GetWorkPackage(ctx, workspaceID, workPackageID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Tags != nil {
		pkg.Metadata.Tags = *req.Tags
		updated = true
	}
	if req.TaxCategory != nil {
		pkg.Metadata.TaxCategory = *req.TaxCategory
		updated = true
	}
	if req.BenefitCategory != nil {
		pkg.Metadata.BenefitCategory = *req.BenefitCategory
		updated = true
	}
	if !updated {
		return pkg, nil
	}

	now := time.Now().UTC()
	if err := s.workPackageRepo.UpdateWorkPackageMetadata(ctx, workPackageID, pkg.Metadata, userID, now); err != nil {
		logger.Error("Failed to update package metadata", slog.String("work_package_id", workPackageID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update package metadata: %w", err)
	}
	pkg.LastUpdatedAt = now
	pkg.LastUpdatedBy = userID
	return pkg, nil
}

// Release is the compensating operation for Assemble: it unlocks every task
// recorded in the package's snapshots and removes the package. Unknown task
// ids are skipped, and releasing an already-released package is a no-op.
func (s *workPackageService) Release(ctx context.Context, workspaceID, workPackageID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	pkg, err := s.workPackageRepo.FindWorkPackageByID(ctx, workPackageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Already released.
			logger.Debug("Release of unknown package ignored", slog.String("work_package_id", workPackageID))
			return nil
		}
		return fmt.Errorf("failed to find work package %s: %w", workPackageID, err)
	}
	if pkg.WorkspaceID != workspaceID {
		return apperrors.ErrNotFound
	}

	now := time.Now().UTC()
	// Unlock is tolerant of ledger drift: ids missing from the live snapshot
	// are ignored rather than failing the release.
	if err := s.taskRepo.UnlockTasks(ctx, pkg.TaskIDs(), userID, now); err != nil {
		logger.Error("Failed to unlock tasks on release", slog.String("work_package_id", workPackageID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to unlock tasks: %w", err)
	}

	if err := s.workPackageRepo.DeleteWorkPackage(ctx, workPackageID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to delete released package", slog.String("work_package_id", workPackageID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete work package: %w", err)
	}

	logger.Info("Work package released", slog.String("work_package_id", workPackageID), slog.Int("tasks", len(pkg.TaskSnapshots)))
	return nil
}
