package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
)

// PgxDocumentRepository persists document records. Assignees and file handles
// live as JSONB on the document row; approval notes are an append-only child
// table so the audit trail survives any document update.
type PgxDocumentRepository struct {
	BaseRepository
}

// NewDocumentRepository creates a new repository for document data.
func NewDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

const documentColumns = `
	document_id, workspace_id, period, type,
	work_package_id, client_id, contractor_id, contract_id,
	approval_status, performer_assignee, manager_assignee,
	submitted_at, submitted_by,
	performer_approved_at, performer_approved_by,
	manager_approved_at, manager_approved_by,
	finalized_at, finalized_by,
	shared_with_parent, shared_parent_id, shared_at, shared_by_user_id,
	files,
	created_at, created_by, last_updated_at, last_updated_by`

func scanDocument(row pgx.Row) (*domain.DocumentRecord, error) {
	var d domain.DocumentRecord
	var performerJSON, managerJSON, filesJSON []byte
	err := row.Scan(
		&d.DocumentID, &d.WorkspaceID, &d.Period, &d.Type,
		&d.WorkPackageID, &d.ClientID, &d.ContractorID, &d.ContractID,
		&d.ApprovalStatus, &performerJSON, &managerJSON,
		&d.SubmittedAt, &d.SubmittedBy,
		&d.PerformerApprovedAt, &d.PerformerApprovedBy,
		&d.ManagerApprovedAt, &d.ManagerApprovedBy,
		&d.FinalizedAt, &d.FinalizedBy,
		&d.SharedWithParent, &d.SharedParentID, &d.SharedAt, &d.SharedByUserID,
		&filesJSON,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	if len(performerJSON) > 0 {
		if err := json.Unmarshal(performerJSON, &d.PerformerAssignee); err != nil {
			return nil, fmt.Errorf("failed to decode performer assignee: %w", err)
		}
	}
	if len(managerJSON) > 0 {
		if err := json.Unmarshal(managerJSON, &d.ManagerAssignee); err != nil {
			return nil, fmt.Errorf("failed to decode manager assignee: %w", err)
		}
	}
	if len(filesJSON) > 0 {
		if err := json.Unmarshal(filesJSON, &d.Files); err != nil {
			return nil, fmt.Errorf("failed to decode document files: %w", err)
		}
	}
	return &d, nil
}

func (r *PgxDocumentRepository) loadNotes(ctx context.Context, documentID string) ([]domain.ApprovalNote, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT timestamp, author, role, status, message
		FROM approval_notes WHERE document_id = $1 ORDER BY timestamp, id`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.ApprovalNote
	for rows.Next() {
		var n domain.ApprovalNote
		if err := rows.Scan(&n.Timestamp, &n.Author, &n.Role, &n.Status, &n.Message); err != nil {
			return nil, fmt.Errorf("failed to scan approval note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// FindDocumentByID retrieves a document with its approval notes and files.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1`
	doc, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		return nil, err
	}
	doc.ApprovalNotes, err = r.loadNotes(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PgxDocumentRepository) listDocuments(ctx context.Context, query string, args ...any) ([]domain.DocumentRecord, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Notes are loaded per document; list sizes stay small enough that the
	// extra round trips have not mattered.
	for i := range docs {
		docs[i].ApprovalNotes, err = r.loadNotes(ctx, docs[i].DocumentID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// ListDocumentsByWorkspace retrieves all documents owned by a workspace.
func (r *PgxDocumentRepository) ListDocumentsByWorkspace(ctx context.Context, workspaceID string) ([]domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE workspace_id = $1 ORDER BY created_at DESC`
	return r.listDocuments(ctx, query, workspaceID)
}

// ListDocumentsSharedWith retrieves documents child workspaces exposed to the
// given parent workspace.
func (r *PgxDocumentRepository) ListDocumentsSharedWith(ctx context.Context, parentWorkspaceID string) ([]domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE shared_with_parent AND shared_parent_id = $1 ORDER BY created_at DESC`
	return r.listDocuments(ctx, query, parentWorkspaceID)
}

// SaveDocument persists a new document with its initial notes and files.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.DocumentRecord) error {
	performerJSON, err := marshalAssignee(doc.PerformerAssignee)
	if err != nil {
		return err
	}
	managerJSON, err := marshalAssignee(doc.ManagerAssignee)
	if err != nil {
		return err
	}
	filesJSON, err := json.Marshal(doc.Files)
	if err != nil {
		return fmt.Errorf("failed to encode document files: %w", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28)`,
		doc.DocumentID, doc.WorkspaceID, doc.Period, doc.Type,
		doc.WorkPackageID, doc.ClientID, doc.ContractorID, doc.ContractID,
		doc.ApprovalStatus, performerJSON, managerJSON,
		doc.SubmittedAt, doc.SubmittedBy,
		doc.PerformerApprovedAt, doc.PerformerApprovedBy,
		doc.ManagerApprovedAt, doc.ManagerApprovedBy,
		doc.FinalizedAt, doc.FinalizedBy,
		doc.SharedWithParent, doc.SharedParentID, doc.SharedAt, doc.SharedByUserID,
		filesJSON,
		doc.CreatedAt, doc.CreatedBy, doc.LastUpdatedAt, doc.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for _, note := range doc.ApprovalNotes {
		if err := insertNote(ctx, tx, doc.DocumentID, note); err != nil {
			return err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// ApplyApprovalTransition conditionally moves a document between approval
// statuses, stamps the stage the action reached and appends the audit note in
// one transaction. The status check rides on the UPDATE itself; a concurrent
// transition that got there first makes the row count zero and the whole write
// is abandoned.
func (r *PgxDocumentRepository) ApplyApprovalTransition(ctx context.Context, documentID string, fromStatus, toStatus domain.ApprovalStatus, action domain.ApprovalAction, note domain.ApprovalNote, actorID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	stamp := stampColumns(action)
	query := `UPDATE documents SET approval_status = $2, last_updated_at = $3, last_updated_by = $4` + stamp + `
		WHERE document_id = $1 AND approval_status = $5`
	tag, err := tx.Exec(ctx, query, documentID, toStatus, at, actorID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to apply approval transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}

	if err := insertNote(ctx, tx, documentID, note); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit approval transition: %w", err)
	}
	return nil
}

// stampColumns returns the extra SET clauses for the stage an action reaches.
// The actor and timestamp parameters are already bound as $4 and $3.
func stampColumns(action domain.ApprovalAction) string {
	switch action {
	case domain.ActionSubmit:
		return `, submitted_at = $3, submitted_by = $4`
	case domain.ActionPerformerApprove:
		return `, performer_approved_at = $3, performer_approved_by = $4`
	case domain.ActionManagerApprove:
		return `, manager_approved_at = $3, manager_approved_by = $4`
	case domain.ActionFinalize:
		return `, finalized_at = $3, finalized_by = $4`
	}
	// Rejections only move the status; the note carries the audit detail.
	return ""
}

func insertNote(ctx context.Context, tx pgx.Tx, documentID string, note domain.ApprovalNote) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO approval_notes (document_id, timestamp, author, role, status, message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		documentID, note.Timestamp, note.Author, note.Role, note.Status, note.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval note: %w", err)
	}
	return nil
}

func marshalAssignee(a *domain.Assignee) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode assignee: %w", err)
	}
	return data, nil
}

// UpdateAssignees replaces the performer/manager assignees.
func (r *PgxDocumentRepository) UpdateAssignees(ctx context.Context, documentID string, performer, manager *domain.Assignee, updatedBy string, updatedAt time.Time) error {
	performerJSON, err := marshalAssignee(performer)
	if err != nil {
		return err
	}
	managerJSON, err := marshalAssignee(manager)
	if err != nil {
		return err
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE documents SET performer_assignee = $2, manager_assignee = $3, last_updated_at = $4, last_updated_by = $5
		WHERE document_id = $1`,
		documentID, performerJSON, managerJSON, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignees: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSharing sets or clears the parent-workspace sharing block.
func (r *PgxDocumentRepository) UpdateSharing(ctx context.Context, documentID string, shared bool, parentID *string, sharedBy *string, sharedAt *time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE documents SET shared_with_parent = $2, shared_parent_id = $3, shared_by_user_id = $4, shared_at = $5
		WHERE document_id = $1`,
		documentID, shared, parentID, sharedBy, sharedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document sharing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateFiles replaces the rendered file handles.
func (r *PgxDocumentRepository) UpdateFiles(ctx context.Context, documentID string, files []domain.DocumentFile, updatedBy string, updatedAt time.Time) error {
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode document files: %w", err)
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE documents SET files = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1`,
		documentID, filesJSON, updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update document files: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDocument removes the document, its notes and file handles.
func (r *PgxDocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM approval_notes WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to delete approval notes: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit document delete: %w", err)
	}
	return nil
}
