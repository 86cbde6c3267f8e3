package services

import (
	"time"

	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
)

// Container holds all the services and manages their dependencies.
type Container struct {
	Task        portssvc.TaskSvcFacade
	WorkPackage portssvc.WorkPackageSvcFacade
	Document    portssvc.DocumentSvcFacade
	Reconciler  portssvc.ReconcilerSvcFacade
	Auth        portssvc.AuthSvcFacade
}

// AuthConfig carries the token-signing parameters for the auth service.
type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string
}

// NewContainer creates a new service container with properly initialized
// dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, renderer portssvc.DocumentRenderer, authCfg AuthConfig) *Container {
	container := &Container{}

	container.Task = NewTaskService(repos.TaskRepo)

	container.WorkPackage = NewWorkPackageService(
		repos.WorkPackageRepo,
		repos.TaskRepo,
		repos.ContractRepo,
		repos.IndividualRepo,
	)

	resolver := NewUserAssigneeResolver(repos.UserRepo)
	container.Document = NewDocumentService(
		repos.DocumentRepo,
		container.WorkPackage,
		repos.WorkPackageRepo,
		repos.ContractRepo,
		repos.IndividualRepo,
		repos.WorkspaceRepo,
		resolver,
		renderer,
	)

	container.Reconciler = NewReconcilerService(repos.IndividualRepo, repos.ContractRepo)
	container.Auth = NewAuthService(repos.UserRepo, authCfg.JWTSecret, authCfg.JWTExpiry, authCfg.JWTIssuer)

	return container
}
