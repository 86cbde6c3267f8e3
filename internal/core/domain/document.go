package domain

import "time"

// DocumentType classifies the billing artifact derived from a work package.
type DocumentType string

const (
	DocTypeAct       DocumentType = "act"
	DocTypeInvoice   DocumentType = "invoice"
	DocTypeTimesheet DocumentType = "timesheet"
	DocTypePackage   DocumentType = "package"
	DocTypeCustom    DocumentType = "custom"
)

// Assignee is the account resolved to act at a given approval stage.
type Assignee struct {
	UserID   string `json:"userID"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// ApprovalNote is a single append-only audit entry. The note log is the
// authoritative trail and must never be edited or truncated.
type ApprovalNote struct {
	Timestamp time.Time      `json:"timestamp"`
	Author    string         `json:"author"`
	Role      string         `json:"role"`
	Status    ApprovalStatus `json:"status"`
	Message   string         `json:"message,omitempty"`
}

// FileStatus tracks the rendering state of a generated artifact.
type FileStatus string

const (
	FilePending FileStatus = "pending"
	FileReady   FileStatus = "ready"
	FileFailed  FileStatus = "failed"
)

// DocumentFile is a handle to an artifact produced by the external
// document-rendering service.
type DocumentFile struct {
	Label  string     `json:"label"`
	Type   string     `json:"type"`
	Format string     `json:"format"`
	Status FileStatus `json:"status"`
	URL    string     `json:"url,omitempty"`
}

// DocumentRecord is a billing artifact derived from a work package, carrying
// the approval workflow state.
type DocumentRecord struct {
	DocumentID  string       `json:"documentID"`
	WorkspaceID string       `json:"workspaceID"`
	Period      string       `json:"period"`
	Type        DocumentType `json:"type"`

	WorkPackageID *string `json:"workPackageID,omitempty"`
	ClientID      string  `json:"clientID"`
	ContractorID  string  `json:"contractorID"`
	ContractID    string  `json:"contractID"`

	ApprovalStatus    ApprovalStatus `json:"approvalStatus"`
	PerformerAssignee *Assignee      `json:"performerAssignee,omitempty"`
	ManagerAssignee   *Assignee      `json:"managerAssignee,omitempty"`

	SubmittedAt         *time.Time `json:"submittedAt,omitempty"`
	SubmittedBy         string     `json:"submittedBy,omitempty"`
	PerformerApprovedAt *time.Time `json:"performerApprovedAt,omitempty"`
	PerformerApprovedBy string     `json:"performerApprovedBy,omitempty"`
	ManagerApprovedAt   *time.Time `json:"managerApprovedAt,omitempty"`
	ManagerApprovedBy   string     `json:"managerApprovedBy,omitempty"`
	FinalizedAt         *time.Time `json:"finalizedAt,omitempty"`
	FinalizedBy         string     `json:"finalizedBy,omitempty"`

	ApprovalNotes []ApprovalNote `json:"approvalNotes"`

	SharedWithParent bool       `json:"sharedWithParent"`
	SharedParentID   *string    `json:"sharedParentID,omitempty"`
	SharedAt         *time.Time `json:"sharedAt,omitempty"`
	SharedByUserID   *string    `json:"sharedByUserID,omitempty"`

	Files []DocumentFile `json:"files"`

	AuditFields
}

// Shareable reports whether the document's approval state permits exposing it
// read-only to an ancestor workspace. Ownership and parent checks are applied
// by the service on top of this.
func (d DocumentRecord) Shareable() bool {
	return d.ApprovalStatus == ApprovalManagerApproved || d.ApprovalStatus == ApprovalFinal
}
