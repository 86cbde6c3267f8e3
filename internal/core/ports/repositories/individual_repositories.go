package repositories

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// IndividualReader defines read operations for the performer directory.
type IndividualReader interface {
	// FindIndividualByID retrieves a single performer record.
	FindIndividualByID(ctx context.Context, individualID string) (*domain.Individual, error)

	// ListIndividuals retrieves the full directory for a workspace.
	ListIndividuals(ctx context.Context, workspaceID string) ([]domain.Individual, error)
}

// IndividualWriter defines write operations for the performer directory.
type IndividualWriter interface {
	// SaveIndividual persists a new performer record.
	SaveIndividual(ctx context.Context, individual domain.Individual) error

	// UpdateIndividual replaces an existing performer record.
	UpdateIndividual(ctx context.Context, individual domain.Individual) error

	// DeleteIndividual removes a performer record.
	DeleteIndividual(ctx context.Context, individualID string) error
}

// IndividualRepositoryFacade combines all individual repository interfaces.
type IndividualRepositoryFacade interface {
	IndividualReader
	IndividualWriter
}
