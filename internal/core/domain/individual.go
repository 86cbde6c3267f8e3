package domain

// IndividualStatus indicates whether a performer record carries the full set
// of identity fields needed on billing documents.
type IndividualStatus string

const (
	IndividualComplete   IndividualStatus = "complete"
	IndividualIncomplete IndividualStatus = "incomplete"
)

// IndividualSource records where a performer record came from.
type IndividualSource string

const (
	SourceManual  IndividualSource = "manual"
	SourceTracker IndividualSource = "tracker"
	SourceImport  IndividualSource = "import"
)

// Individual is a performer identity record. The directory accumulates
// duplicates across re-imports and manual entry; the reconciler keeps at most
// one canonical record per identity key.
type Individual struct {
	IndividualID string `json:"individualID"`
	WorkspaceID  string `json:"workspaceID"`
	Name         string `json:"name"`

	INN        string `json:"inn,omitempty"`
	Passport   string `json:"passport,omitempty"`
	Address    string `json:"address,omitempty"`
	Email      string `json:"email,omitempty"`
	ExternalID string `json:"externalID,omitempty"`

	Source IndividualSource `json:"source"`
	Status IndividualStatus `json:"status"`

	// Optional linked account.
	UserID    string `json:"userID,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	UserRole  string `json:"userRole,omitempty"`

	IsApprovalManager bool   `json:"isApprovalManager"`
	ApprovalManagerID string `json:"approvalManagerID,omitempty"`

	AuditFields
}

// ComputeStatus derives the completeness status from the identity fields.
func (ind Individual) ComputeStatus() IndividualStatus {
	if ind.Name != "" && ind.INN != "" && ind.Passport != "" && ind.Address != "" {
		return IndividualComplete
	}
	return IndividualIncomplete
}
