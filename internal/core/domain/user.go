package domain

// User is an account that can sign in and act on documents.
type User struct {
	UserID       string `json:"userID"`
	WorkspaceID  string `json:"workspaceID"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Roles        []Role `json:"roles"`
	AuditFields
}

// Workspace is a tenant. A workspace may have a parent; approved documents can
// be shared read-only up the chain.
type Workspace struct {
	WorkspaceID string  `json:"workspaceID"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parentID,omitempty"`
	AuditFields
}
