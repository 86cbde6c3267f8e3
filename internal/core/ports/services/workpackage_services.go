package services

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// WorkPackageSvcFacade exposes assembly and release of costed work packages.
type WorkPackageSvcFacade interface {
	// Assemble locks the selected tasks into a new immutable costed package.
	Assemble(ctx context.Context, workspaceID string, req dto.AssembleWorkPackageRequest, userID string) (*domain.WorkPackage, error)

	// GetWorkPackage retrieves one package with its snapshots.
	GetWorkPackage(ctx context.Context, workspaceID, workPackageID string) (*domain.WorkPackage, error)

	// ListWorkPackages retrieves all packages of a workspace.
	ListWorkPackages(ctx context.Context, workspaceID string) ([]domain.WorkPackage, error)

	// UpdateMetadata mutates the only mutable part of a package.
	UpdateMetadata(ctx context.Context, workspaceID, workPackageID string, req dto.UpdatePackageMetadataRequest, userID string) (*domain.WorkPackage, error)

	// Release unlocks the package's tasks back into the ledger and removes the
	// package. Idempotent; unknown task ids are tolerated.
	Release(ctx context.Context, workspaceID, workPackageID string, userID string) error
}
