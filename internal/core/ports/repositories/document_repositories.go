package repositories

import (
	"context"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// DocumentReader defines read operations for document records.
type DocumentReader interface {
	// FindDocumentByID retrieves a document with its approval notes and files.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// ListDocumentsByWorkspace retrieves all documents owned by a workspace.
	ListDocumentsByWorkspace(ctx context.Context, workspaceID string) ([]domain.DocumentRecord, error)

	// ListDocumentsSharedWith retrieves documents child workspaces exposed to
	// the given parent workspace.
	ListDocumentsSharedWith(ctx context.Context, parentWorkspaceID string) ([]domain.DocumentRecord, error)
}

// DocumentWriter defines write operations for document records.
type DocumentWriter interface {
	// SaveDocument persists a new document with its initial notes and files.
	SaveDocument(ctx context.Context, doc domain.DocumentRecord) error

	// ApplyApprovalTransition conditionally moves a document from one approval
	// status to another, stamps the stage reached by action and appends the
	// audit note, all in one transaction. If the document is no longer in
	// fromStatus the write is abandoned and apperrors.ErrInvalidTransition is
	// returned.
	ApplyApprovalTransition(ctx context.Context, documentID string, fromStatus, toStatus domain.ApprovalStatus, action domain.ApprovalAction, note domain.ApprovalNote, actorID string, at time.Time) error

	// UpdateAssignees replaces the performer/manager assignees.
	UpdateAssignees(ctx context.Context, documentID string, performer, manager *domain.Assignee, updatedBy string, updatedAt time.Time) error

	// UpdateSharing sets or clears the parent-workspace sharing block.
	UpdateSharing(ctx context.Context, documentID string, shared bool, parentID *string, sharedBy *string, sharedAt *time.Time) error

	// UpdateFiles replaces the rendered file handles.
	UpdateFiles(ctx context.Context, documentID string, files []domain.DocumentFile, updatedBy string, updatedAt time.Time) error

	// DeleteDocument removes the document, its notes and file handles.
	DeleteDocument(ctx context.Context, documentID string) error
}

// DocumentRepositoryFacade combines all document repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}
