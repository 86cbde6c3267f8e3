package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// ImportTaskRequest is one normalized task in a tracker upsert stream.
type ImportTaskRequest struct {
	Key           string           `json:"key" binding:"required"`
	ProjectKey    string           `json:"projectKey" binding:"required"`
	ProjectID     string           `json:"projectID"`
	Title         string           `json:"title"`
	Status        string           `json:"status"`
	Period        string           `json:"period"`
	Hours         *decimal.Decimal `json:"hours"` // Explicit hours override
	SecondsSpent  int64            `json:"secondsSpent"`
	BilledSeconds int64            `json:"billedSeconds"`
	Billable      bool             `json:"billable"`
	ClientID      *string          `json:"clientID"`
	ContractorID  *string          `json:"contractorID"`
	ContractID    *string          `json:"contractID"`
}

// ImportTasksRequest wraps a batch of tracker tasks.
type ImportTasksRequest struct {
	Tasks []ImportTaskRequest `json:"tasks" binding:"required,dive"`
}

// SetForceIncludeRequest toggles the manual include override on a task.
type SetForceIncludeRequest struct {
	Value bool `json:"value"`
}

// ListEligibleTasksParams narrows the eligible pool via query parameters.
type ListEligibleTasksParams struct {
	ProjectKey   string `form:"projectKey"`
	Status       string `form:"status"`
	Period       string `form:"period"`
	BillableOnly bool   `form:"billableOnly"`
}

// ToTaskFilters converts query params to domain filters.
func (p ListEligibleTasksParams) ToTaskFilters() domain.TaskFilters {
	return domain.TaskFilters{
		ProjectKey:   p.ProjectKey,
		Status:       p.Status,
		Period:       p.Period,
		BillableOnly: p.BillableOnly,
	}
}

// TaskResponse defines the data returned for a task.
type TaskResponse struct {
	TaskID        string          `json:"taskID"`
	Key           string          `json:"key"`
	ProjectKey    string          `json:"projectKey"`
	Title         string          `json:"title"`
	Status        string          `json:"status"`
	Period        string          `json:"period"`
	Hours         decimal.Decimal `json:"hours"`
	Billable      bool            `json:"billable"`
	ForceIncluded bool            `json:"forceIncluded"`
	WorkPackageID *string         `json:"workPackageID,omitempty"`
}

// ToTaskResponse converts a domain.Task to TaskResponse DTO.
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:        t.TaskID,
		Key:           t.Key,
		ProjectKey:    t.ProjectKey,
		Title:         t.Title,
		Status:        t.Status,
		Period:        t.Period,
		Hours:         t.Hours,
		Billable:      t.Billable,
		ForceIncluded: t.ForceIncluded,
		WorkPackageID: t.WorkPackageID,
	}
}

// ToTaskResponses converts a slice of domain.Task to []TaskResponse.
func ToTaskResponses(tasks []domain.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		responses[i] = ToTaskResponse(&t)
	}
	return responses
}
