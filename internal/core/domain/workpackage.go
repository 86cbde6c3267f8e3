package domain

import "github.com/shopspring/decimal"

// RateType indicates how the package's base rate is interpreted.
type RateType string

const (
	RateHour  RateType = "hour"
	RateMonth RateType = "month"
)

// DefaultAudience is applied when a package is assembled without explicit
// preparedFor tags.
var DefaultAudience = []string{"act", "invoice", "tax-report"}

// TaskSnapshot is a frozen per-task cost record captured at assembly time.
// It is never recomputed, even if the source task changes afterwards.
type TaskSnapshot struct {
	TaskID     string          `json:"taskID"`
	Key        string          `json:"key"`
	Hours      decimal.Decimal `json:"hours"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	Amount     decimal.Decimal `json:"amount"`
}

// PackageMetadata is the only mutable part of a work package after creation.
type PackageMetadata struct {
	PreparedFor     []string `json:"preparedFor"`
	Tags            []string `json:"tags"`
	TaxCategory     string   `json:"taxCategory,omitempty"`
	BenefitCategory string   `json:"benefitCategory,omitempty"`
}

// WorkPackage is an immutable-at-creation costed bundle of tasks for one
// billing period and contract.
type WorkPackage struct {
	WorkPackageID string `json:"workPackageID"`
	WorkspaceID   string `json:"workspaceID"`
	Period        string `json:"period"`
	ContractID    string `json:"contractID"`
	ClientID      string `json:"clientID"`
	ContractorID  string `json:"contractorID"`

	TotalHours  decimal.Decimal `json:"totalHours"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	HourlyRate  decimal.Decimal `json:"hourlyRate"`
	BaseRate    decimal.Decimal `json:"baseRate"`
	RateType    RateType        `json:"rateType"`

	VATIncluded bool            `json:"vatIncluded"`
	VATPercent  decimal.Decimal `json:"vatPercent"`
	VATAmount   decimal.Decimal `json:"vatAmount"`

	IncludeTimesheet bool   `json:"includeTimesheet"`
	PerformerType    string `json:"performerType,omitempty"`

	TaskSnapshots []TaskSnapshot  `json:"taskSnapshots"`
	Metadata      PackageMetadata `json:"metadata"`

	AuditFields
}

// TaskIDs returns the ids of every task frozen into the package.
func (wp WorkPackage) TaskIDs() []string {
	ids := make([]string, len(wp.TaskSnapshots))
	for i, snap := range wp.TaskSnapshots {
		ids[i] = snap.TaskID
	}
	return ids
}
