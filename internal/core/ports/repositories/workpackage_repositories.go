package repositories

import (
	"context"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// WorkPackageReader defines read operations for work packages.
type WorkPackageReader interface {
	// FindWorkPackageByID retrieves a package with its task snapshots.
	FindWorkPackageByID(ctx context.Context, workPackageID string) (*domain.WorkPackage, error)

	// ListWorkPackagesByWorkspace retrieves all packages for a workspace.
	ListWorkPackagesByWorkspace(ctx context.Context, workspaceID string) ([]domain.WorkPackage, error)
}

// WorkPackageWriter defines write operations for work packages.
type WorkPackageWriter interface {
	// SaveWorkPackage persists the package and locks all snapshotted tasks in
	// one transaction. If any task is already locked the whole write rolls
	// back and apperrors.ErrConflict is returned; no partial locking.
	SaveWorkPackage(ctx context.Context, pkg domain.WorkPackage) error

	// UpdateWorkPackageMetadata replaces the package's mutable metadata block.
	UpdateWorkPackageMetadata(ctx context.Context, workPackageID string, metadata domain.PackageMetadata, updatedBy string, updatedAt time.Time) error

	// DeleteWorkPackage removes the package row. Task unlocking is driven by
	// the release flow, not by this call.
	DeleteWorkPackage(ctx context.Context, workPackageID string) error
}

// WorkPackageRepositoryFacade combines all work package repository interfaces.
type WorkPackageRepositoryFacade interface {
	WorkPackageReader
	WorkPackageWriter
}
