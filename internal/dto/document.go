package dto

import (
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// CreateDocumentRequest derives a document from a work package.
type CreateDocumentRequest struct {
	WorkPackageID string `json:"workPackageID" binding:"required"`
	Type          string `json:"type" binding:"required,doctype"`
}

// AssignRequest resolves and sets an approval-stage assignee.
// Ref may be a user id or an email.
type AssignRequest struct {
	Ref string `json:"ref" binding:"required"`
}

// TransitionRequest carries the optional free-text note for an approval action.
type TransitionRequest struct {
	Message string `json:"message"`
}

// ApprovalNoteResponse is one audit-trail entry.
type ApprovalNoteResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// DocumentFileResponse is one rendered artifact handle.
type DocumentFileResponse struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	Format string `json:"format"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// DocumentResponse defines the data returned for a document record.
type DocumentResponse struct {
	DocumentID        string                 `json:"documentID"`
	Period            string                 `json:"period"`
	Type              string                 `json:"type"`
	WorkPackageID     *string                `json:"workPackageID,omitempty"`
	ApprovalStatus    string                 `json:"approvalStatus"`
	PerformerAssignee *domain.Assignee       `json:"performerAssignee,omitempty"`
	ManagerAssignee   *domain.Assignee       `json:"managerAssignee,omitempty"`
	SharedWithParent  bool                   `json:"sharedWithParent"`
	ApprovalNotes     []ApprovalNoteResponse `json:"approvalNotes"`
	Files             []DocumentFileResponse `json:"files"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// ToDocumentResponse converts a domain.DocumentRecord to DocumentResponse DTO.
func ToDocumentResponse(d *domain.DocumentRecord) DocumentResponse {
	notes := make([]ApprovalNoteResponse, len(d.ApprovalNotes))
	for i, n := range d.ApprovalNotes {
		notes[i] = ApprovalNoteResponse{
			Timestamp: n.Timestamp,
			Author:    n.Author,
			Role:      n.Role,
			Status:    string(n.Status),
			Message:   n.Message,
		}
	}
	files := make([]DocumentFileResponse, len(d.Files))
	for i, f := range d.Files {
		files[i] = DocumentFileResponse{
			Label:  f.Label,
			Type:   f.Type,
			Format: f.Format,
			Status: string(f.Status),
			URL:    f.URL,
		}
	}
	return DocumentResponse{
		DocumentID:        d.DocumentID,
		Period:            d.Period,
		Type:              string(d.Type),
		WorkPackageID:     d.WorkPackageID,
		ApprovalStatus:    string(d.ApprovalStatus),
		PerformerAssignee: d.PerformerAssignee,
		ManagerAssignee:   d.ManagerAssignee,
		SharedWithParent:  d.SharedWithParent,
		ApprovalNotes:     notes,
		Files:             files,
		CreatedAt:         d.CreatedAt,
	}
}

// ToDocumentResponses converts a slice of domain.DocumentRecord to DTOs.
func ToDocumentResponses(docs []domain.DocumentRecord) []DocumentResponse {
	responses := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = ToDocumentResponse(&d)
	}
	return responses
}
