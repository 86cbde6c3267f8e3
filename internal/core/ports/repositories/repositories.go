package repositories

// RepositoryProvider bundles every repository facade the service layer needs.
type RepositoryProvider struct {
	TaskRepo        TaskRepositoryFacade
	WorkPackageRepo WorkPackageRepositoryFacade
	DocumentRepo    DocumentRepositoryFacade
	IndividualRepo  IndividualRepositoryFacade
	ContractRepo    ContractRepositoryFacade
	UserRepo        UserReader
	WorkspaceRepo   WorkspaceReader
}
