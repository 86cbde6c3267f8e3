package services

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// ReconcilerSvcFacade deduplicates and maintains the performer directory.
type ReconcilerSvcFacade interface {
	// Reconcile runs the dedup batch over the workspace directory and returns
	// the directory as it stands afterwards: canonical records merged,
	// removed duplicates gone, everything else untouched.
	Reconcile(ctx context.Context, workspaceID string, userID string) ([]domain.Individual, error)

	// GetIndividual retrieves one performer record.
	GetIndividual(ctx context.Context, workspaceID, individualID string) (*domain.Individual, error)

	// UpdateIndividual patches a record's identity fields and recomputes its
	// completeness status.
	UpdateIndividual(ctx context.Context, workspaceID, individualID string, req dto.UpdateIndividualRequest, userID string) (*domain.Individual, error)
}
