package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
)

// documentService derives billing documents from work packages and drives
// them through the approval state machine.
type documentService struct {
	documentRepo    portsrepo.DocumentRepositoryFacade
	workPackageSvc  portssvc.WorkPackageSvcFacade
	workPackageRepo portsrepo.WorkPackageReader
	contractRepo    portsrepo.ContractReader
	individualRepo  portsrepo.IndividualReader
	workspaceRepo   portsrepo.WorkspaceReader
	resolver        portssvc.AssigneeResolver
	renderer        portssvc.DocumentRenderer
}

// NewDocumentService creates a new document approval service.
func NewDocumentService(
	documentRepo portsrepo.DocumentRepositoryFacade,
	workPackageSvc portssvc.WorkPackageSvcFacade,
	workPackageRepo portsrepo.WorkPackageReader,
	contractRepo portsrepo.ContractReader,
	individualRepo portsrepo.IndividualReader,
	workspaceRepo portsrepo.WorkspaceReader,
	resolver portssvc.AssigneeResolver,
	renderer portssvc.DocumentRenderer,
) portssvc.DocumentSvcFacade {
	return &documentService{
		documentRepo:    documentRepo,
		workPackageSvc:  workPackageSvc,
		workPackageRepo: workPackageRepo,
		contractRepo:    contractRepo,
		individualRepo:  individualRepo,
		workspaceRepo:   workspaceRepo,
		resolver:        resolver,
		renderer:        renderer,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// CreateFromWorkPackage derives a document record from a package and asks the
// external renderer for file handles. Rendering failures never fail the
// creation; files stay pending for a later retry.
func (s *documentService) CreateFromWorkPackage(ctx context.Context, workspaceID string, req dto.CreateDocumentRequest, userID string) (*domain.DocumentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	docType := domain.DocumentType(req.Type)
	switch docType {
	case domain.DocTypeAct, domain.DocTypeInvoice, domain.DocTypeTimesheet, domain.DocTypePackage, domain.DocTypeCustom:
	default:
		return nil, fmt.Errorf("%w: unknown document type %q", apperrors.ErrValidation, req.Type)
	}

	pkg, err := s.workPackageRepo.FindWorkPackageByID(ctx, req.WorkPackageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: work package %s", apperrors.ErrInvalidReference, req.WorkPackageID)
		}
		return nil, fmt.Errorf("failed to fetch work package: %w", err)
	}
	if pkg.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("%w: work package %s", apperrors.ErrInvalidReference, req.WorkPackageID)
	}

	now := time.Now().UTC()
	workPackageID := pkg.WorkPackageID
	doc := domain.DocumentRecord{
		DocumentID:     uuid.NewString(),
		WorkspaceID:    workspaceID,
		Period:         pkg.Period,
		Type:           docType,
		WorkPackageID:  &workPackageID,
		ClientID:       pkg.ClientID,
		ContractorID:   pkg.ContractorID,
		ContractID:     pkg.ContractID,
		ApprovalStatus: domain.ApprovalDraft,
		ApprovalNotes:  []domain.ApprovalNote{},
		Files:          []domain.DocumentFile{},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	doc.Files = s.renderFiles(ctx, pkg, docType)

	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		logger.Error("Failed to save document", slog.String("document_id", doc.DocumentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	logger.Info("Document created from work package",
		slog.String("document_id", doc.DocumentID),
		slog.String("work_package_id", pkg.WorkPackageID),
		slog.String("type", string(docType)),
	)
	return &doc, nil
}

// renderFiles invokes the external rendering collaborator. On failure the
// document gets a single pending handle instead of an error.
func (s *documentService) renderFiles(ctx context.Context, pkg *domain.WorkPackage, docType domain.DocumentType) []domain.DocumentFile {
	logger := middleware.GetLoggerFromCtx(ctx)

	var contractor domain.Individual
	if ind, err := s.individualRepo.FindIndividualByID(ctx, pkg.ContractorID); err == nil {
		contractor = *ind
	}
	var client domain.Client
	if cl, err := s.contractRepo.FindClientByID(ctx, pkg.ClientID); err == nil {
		client = *cl
	}

	files, err := s.renderer.Render(ctx, portssvc.RenderRequest{
		DocumentType:  docType,
		Period:        pkg.Period,
		TaskSnapshots: pkg.TaskSnapshots,
		Contractor:    contractor,
		Client:        client,
		TotalHours:    pkg.TotalHours,
		TotalAmount:   pkg.TotalAmount,
	})
	if err != nil {
		logger.Warn("Document rendering failed, files left pending", slog.String("error", err.Error()))
		return []domain.DocumentFile{{
			Label:  string(docType),
			Type:   string(docType),
			Format: "pdf",
			Status: domain.FilePending,
		}}
	}
	return files
}

// GetDocument retrieves one document. Documents shared by a child workspace
// are visible to the parent.
func (s *documentService) GetDocument(ctx context.Context, workspaceID, documentID string) (*domain.DocumentRecord, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.WorkspaceID != workspaceID {
		sharedToCaller := doc.SharedWithParent && doc.SharedParentID != nil && *doc.SharedParentID == workspaceID
		if !sharedToCaller {
			return nil, apperrors.ErrNotFound
		}
	}
	return doc, nil
}

// ListDocuments returns documents owned by the workspace plus documents shared
// into it by child workspaces.
func (s *documentService) ListDocuments(ctx context.Context, workspaceID string) ([]domain.DocumentRecord, error) {
	owned, err := s.documentRepo.ListDocumentsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	shared, err := s.documentRepo.ListDocumentsSharedWith(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared documents: %w", err)
	}
	return append(owned, shared...), nil
}

// AssignPerformer resolves ref and sets the performer assignee.
func (s *documentService) AssignPerformer(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller) (*domain.DocumentRecord, error) {
	return s.assign(ctx, workspaceID, documentID, ref, caller, false)
}

// AssignManager resolves ref and sets the manager assignee.
func (s *documentService) AssignManager(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller) (*domain.DocumentRecord, error) {
	return s.assign(ctx, workspaceID, documentID, ref, caller, true)
}

func (s *documentService) assign(ctx context.Context, workspaceID, documentID, ref string, caller domain.Caller, manager bool) (*domain.DocumentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.GetDocument(ctx, workspaceID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.WorkspaceID != workspaceID {
		// Shared-in documents are read-only for the receiving workspace.
		return nil, apperrors.ErrForbidden
	}

	assignee, err := s.resolver.ResolveAssignee(ctx, ref)
	if err != nil {
		logger.Error("Assignee resolution failed", slog.String("ref", ref), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve assignee: %w", err)
	}
	if assignee == nil {
		return nil, fmt.Errorf("%w: assignee %q did not resolve to an account", apperrors.ErrInvalidReference, ref)
	}

	if manager {
		doc.ManagerAssignee = assignee
	} else {
		doc.PerformerAssignee = assignee
	}

	now := time.Now().UTC()
	if err := s.documentRepo.UpdateAssignees(ctx, documentID, doc.PerformerAssignee, doc.ManagerAssignee, caller.UserID, now); err != nil {
		logger.Error("Failed to update assignees", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update assignees: %w", err)
	}
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = caller.UserID
	return doc, nil
}

// Transition applies one approval action against the document. The target
// status is computed from the pure transition table; persistence is
// conditional on the status the document was read at, so a concurrent
// transition makes the second writer fail with ErrInvalidTransition. Failed
// actions change neither status nor the note log.
func (s *documentService) Transition(ctx context.Context, workspaceID, documentID string, action domain.ApprovalAction, message string, caller domain.Caller) (*domain.DocumentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.GetDocument(ctx, workspaceID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.WorkspaceID != workspaceID {
		return nil, apperrors.ErrForbidden
	}

	fromStatus := doc.ApprovalStatus
	toStatus, err := domain.NextApprovalStatus(*doc, action, caller)
	if err != nil {
		logger.Warn("Approval action refused",
			slog.String("document_id", documentID),
			slog.String("action", string(action)),
			slog.String("status", string(fromStatus)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	now := time.Now().UTC()
	note := domain.ApprovalNote{
		Timestamp: now,
		Author:    caller.UserID,
		Role:      domain.RoleLabelFor(caller),
		Status:    toStatus,
		Message:   message,
	}

	if err := s.documentRepo.ApplyApprovalTransition(ctx, documentID, fromStatus, toStatus, action, note, caller.UserID, now); err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Warn("Approval transition lost status race", slog.String("document_id", documentID), slog.String("from", string(fromStatus)))
			return nil, apperrors.ErrInvalidTransition
		}
		logger.Error("Failed to apply approval transition", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to apply approval transition: %w", err)
	}

	doc.ApprovalStatus = toStatus
	doc.ApprovalNotes = append(doc.ApprovalNotes, note)
	s.stamp(doc, action, caller.UserID, now)
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = caller.UserID

	logger.Info("Approval transition applied",
		slog.String("document_id", documentID),
		slog.String("action", string(action)),
		slog.String("from", string(fromStatus)),
		slog.String("to", string(toStatus)),
	)
	return doc, nil
}

// stamp records the per-stage timestamp/actor for the applied action.
func (s *documentService) stamp(doc *domain.DocumentRecord, action domain.ApprovalAction, userID string, at time.Time) {
	switch action {
	case domain.ActionSubmit:
		doc.SubmittedAt = &at
		doc.SubmittedBy = userID
	case domain.ActionPerformerApprove:
		doc.PerformerApprovedAt = &at
		doc.PerformerApprovedBy = userID
	case domain.ActionManagerApprove:
		doc.ManagerApprovedAt = &at
		doc.ManagerApprovedBy = userID
	case domain.ActionFinalize:
		doc.FinalizedAt = &at
		doc.FinalizedBy = userID
	}
}

// Share exposes an approved document read-only to the parent workspace.
// Gated by approval state, ownership and the existence of a parent.
func (s *documentService) Share(ctx context.Context, workspaceID, documentID string, caller domain.Caller) (*domain.DocumentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.GetDocument(ctx, workspaceID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.WorkspaceID != workspaceID {
		// A document received from a child workspace cannot be shared further
		// upward.
		return nil, apperrors.ErrForbidden
	}
	if !doc.Shareable() {
		return nil, fmt.Errorf("%w: document must be manager-approved or final to share", apperrors.ErrInvalidTransition)
	}

	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspace: %w", err)
	}
	if workspace.ParentID == nil {
		return nil, fmt.Errorf("%w: workspace has no parent to share with", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	sharedBy := caller.UserID
	if err := s.documentRepo.UpdateSharing(ctx, documentID, true, workspace.ParentID, &sharedBy, &now); err != nil {
		logger.Error("Failed to share document", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to share document: %w", err)
	}

	doc.SharedWithParent = true
	doc.SharedParentID = workspace.ParentID
	doc.SharedAt = &now
	doc.SharedByUserID = &sharedBy
	logger.Info("Document shared with parent workspace", slog.String("document_id", documentID), slog.String("parent_id", *workspace.ParentID))
	return doc, nil
}

// Revoke clears the sharing flag. Approval state is untouched.
func (s *documentService) Revoke(ctx context.Context, workspaceID, documentID string, caller domain.Caller) (*domain.DocumentRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.GetDocument(ctx, workspaceID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.WorkspaceID != workspaceID {
		return nil, apperrors.ErrForbidden
	}
	if !doc.SharedWithParent {
		return doc, nil
	}

	if err := s.documentRepo.UpdateSharing(ctx, documentID, false, nil, nil, nil); err != nil {
		logger.Error("Failed to revoke document sharing", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to revoke sharing: %w", err)
	}

	doc.SharedWithParent = false
	doc.SharedParentID = nil
	doc.SharedAt = nil
	doc.SharedByUserID = nil
	return doc, nil
}

// Delete removes the document. A linked work package is released first,
// best-effort: a release failure is logged for reconciliation but does not
// block the user-visible delete.
func (s *documentService) Delete(ctx context.Context, workspaceID, documentID string, caller domain.Caller) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.GetDocument(ctx, workspaceID, documentID)
	if err != nil {
		return err
	}
	if doc.WorkspaceID != workspaceID {
		return apperrors.ErrForbidden
	}

	if doc.WorkPackageID != nil {
		if err := s.workPackageSvc.Release(ctx, workspaceID, *doc.WorkPackageID, caller.UserID); err != nil {
			logger.Error("Work package release failed during document delete; needs reconciliation",
				slog.String("document_id", documentID),
				slog.String("work_package_id", *doc.WorkPackageID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.documentRepo.DeleteDocument(ctx, documentID); err != nil {
		logger.Error("Failed to delete document", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.Info("Document deleted", slog.String("document_id", documentID))
	return nil
}
