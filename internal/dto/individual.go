package dto

import (
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// UpdateIndividualRequest patches a performer record's identity fields.
// Pointers distinguish omitted fields from explicit clears.
type UpdateIndividualRequest struct {
	Name              *string `json:"name"`
	INN               *string `json:"inn"`
	Passport          *string `json:"passport"`
	Address           *string `json:"address"`
	Email             *string `json:"email"`
	IsApprovalManager *bool   `json:"isApprovalManager"`
	ApprovalManagerID *string `json:"approvalManagerID"`
}

// IndividualResponse defines the data returned for a performer record.
type IndividualResponse struct {
	IndividualID      string `json:"individualID"`
	Name              string `json:"name"`
	INN               string `json:"inn,omitempty"`
	Passport          string `json:"passport,omitempty"`
	Address           string `json:"address,omitempty"`
	Email             string `json:"email,omitempty"`
	ExternalID        string `json:"externalID,omitempty"`
	Source            string `json:"source"`
	Status            string `json:"status"`
	IsApprovalManager bool   `json:"isApprovalManager"`
}

// ToIndividualResponse converts a domain.Individual to IndividualResponse DTO.
func ToIndividualResponse(ind *domain.Individual) IndividualResponse {
	return IndividualResponse{
		IndividualID:      ind.IndividualID,
		Name:              ind.Name,
		INN:               ind.INN,
		Passport:          ind.Passport,
		Address:           ind.Address,
		Email:             ind.Email,
		ExternalID:        ind.ExternalID,
		Source:            string(ind.Source),
		Status:            string(ind.Status),
		IsApprovalManager: ind.IsApprovalManager,
	}
}

// ToIndividualResponses converts a slice of domain.Individual to DTOs.
func ToIndividualResponses(inds []domain.Individual) []IndividualResponse {
	responses := make([]IndividualResponse, len(inds))
	for i, ind := range inds {
		responses[i] = ToIndividualResponse(&ind)
	}
	return responses
}
