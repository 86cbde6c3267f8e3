package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository against one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	userRepo := NewUserRepository(pool)
	return &portsrepo.RepositoryProvider{
		TaskRepo:        NewTaskRepository(pool),
		WorkPackageRepo: NewWorkPackageRepository(pool),
		DocumentRepo:    NewDocumentRepository(pool),
		IndividualRepo:  NewIndividualRepository(pool),
		ContractRepo:    NewContractRepository(pool),
		UserRepo:        userRepo,
		WorkspaceRepo:   userRepo,
	}
}
