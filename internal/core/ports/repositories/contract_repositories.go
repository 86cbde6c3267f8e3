package repositories

import (
	"context"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// ContractReader defines read operations for contracts and clients.
type ContractReader interface {
	// FindContractByID retrieves a contract by id.
	FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error)

	// FindClientByID retrieves a client by id.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// ListContractorReferences maps contractor (Individual) ids to the ids of
	// contracts that reference them, for one workspace.
	ListContractorReferences(ctx context.Context, workspaceID string) (map[string][]string, error)
}

// ContractWriter defines write operations for contracts.
type ContractWriter interface {
	// ReassignContractor re-points a contract at a different Individual.
	ReassignContractor(ctx context.Context, contractID string, contractorID string, updatedBy string, updatedAt time.Time) error
}

// ContractRepositoryFacade combines all contract repository interfaces.
type ContractRepositoryFacade interface {
	ContractReader
	ContractWriter
}
