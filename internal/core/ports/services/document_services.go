package services

import (
	"context"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// DocumentSvcFacade exposes document derivation and the approval workflow.
type DocumentSvcFacade interface {
	// CreateFromWorkPackage derives a billing document from a work package.
	CreateFromWorkPackage(ctx context.Context, workspaceID string, req dto.CreateDocumentRequest, userID string) (*domain.DocumentRecord, error)

	// GetDocument retrieves one document with notes and files.
	GetDocument(ctx context.Context, workspaceID, documentID string) (*domain.DocumentRecord, error)

	// ListDocuments retrieves documents owned by the workspace plus documents
	// shared into it by child workspaces.
	ListDocuments(ctx context.Context, workspaceID string) ([]domain.DocumentRecord, error)

	// AssignPerformer resolves ref (user id or email) and sets the performer
	// assignee.
	AssignPerformer(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller) (*domain.DocumentRecord, error)

	// AssignManager resolves ref and sets the manager assignee.
	AssignManager(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller) (*domain.DocumentRecord, error)

	// Transition applies one approval action with an optional free-text note.
	Transition(ctx context.Context, workspaceID, documentID string, action domain.ApprovalAction, message string, caller domain.Caller) (*domain.DocumentRecord, error)

	// Share exposes an approved document read-only to the parent workspace.
	Share(ctx context.Context, workspaceID, documentID string, caller domain.Caller) (*domain.DocumentRecord, error)

	// Revoke clears the parent-workspace sharing flag.
	Revoke(ctx context.Context, workspaceID, documentID string, caller domain.Caller) (*domain.DocumentRecord, error)

	// Delete removes the document, releasing its work package best-effort.
	Delete(ctx context.Context, workspaceID, documentID string, caller domain.Caller) error
}
