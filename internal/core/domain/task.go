package domain

import "github.com/shopspring/decimal"

// Task is a unit of billable work imported from the external issue tracker.
// Its WorkPackageID is set if and only if the task is currently locked into
// exactly one work package; only the assembler and release paths may touch it.
type Task struct {
	TaskID      string `json:"taskID"`
	Key         string `json:"key"` // Human tracker reference, e.g. "PRJ-142"
	ProjectKey  string `json:"projectKey"`
	ProjectID   string `json:"projectID"`
	WorkspaceID string `json:"workspaceID"`
	Title       string `json:"title"`
	Status      string `json:"status"` // Tracker status as imported
	Period      string `json:"period"` // Billing period, e.g. "2025-07"

	// Linkage, nullable until set by directory maintenance.
	ClientID     *string `json:"clientID,omitempty"`
	ContractorID *string `json:"contractorID,omitempty"`
	ContractID   *string `json:"contractID,omitempty"`

	// Economics. Hours is the derived value actually billed; the raw seconds
	// are kept so a re-import can re-derive it.
	Hours         decimal.Decimal `json:"hours"`
	SecondsSpent  int64           `json:"secondsSpent"`
	BilledSeconds int64           `json:"billedSeconds"`

	Billable      bool `json:"billable"`
	ForceIncluded bool `json:"forceIncluded"`

	WorkPackageID *string `json:"workPackageID,omitempty"`

	AuditFields
}

// IsEligible reports whether the task belongs to the assembly pool:
// billable (or manually force-included), unlocked, with billable hours.
func (t Task) IsEligible() bool {
	return (t.Billable || t.ForceIncluded) && t.WorkPackageID == nil && t.Hours.IsPositive()
}

// Fingerprint identifies a task across tracker re-imports.
func (t Task) Fingerprint() string {
	return t.ProjectKey + "/" + t.Key
}

// TaskFilters narrows the eligible-task pool.
type TaskFilters struct {
	ProjectKey   string
	Status       string
	Period       string
	BillableOnly bool
}
