package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// AssembleWorkPackageRequest defines the input for assembling a work package.
type AssembleWorkPackageRequest struct {
	TaskIDs          []string         `json:"taskIDs" binding:"required,min=1"`
	ContractID       string           `json:"contractID" binding:"required"`
	Period           string           `json:"period" binding:"required"`
	HourlyRate       decimal.Decimal  `json:"hourlyRate" binding:"required"`
	BaseRate         decimal.Decimal  `json:"baseRate"`
	RateType         string           `json:"rateType" binding:"required,ratetype"`
	IncludeTimesheet bool             `json:"includeTimesheet"`
	VATIncluded      bool             `json:"vatIncluded"`
	VATPercent       *decimal.Decimal `json:"vatPercent"`
	Audience         []string         `json:"audience"`
	Tags             []string         `json:"tags"`
	PerformerType    string           `json:"performerType"`
}

// UpdatePackageMetadataRequest replaces the mutable metadata of a package.
// Pointers distinguish omitted fields from explicit clears.
type UpdatePackageMetadataRequest struct {
	Tags            *[]string `json:"tags"`
	TaxCategory     *string   `json:"taxCategory"`
	BenefitCategory *string   `json:"benefitCategory"`
}

// TaskSnapshotResponse is one frozen per-task cost line.
type TaskSnapshotResponse struct {
	TaskID     string          `json:"taskID"`
	Key        string          `json:"key"`
	Hours      decimal.Decimal `json:"hours"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	Amount     decimal.Decimal `json:"amount"`
}

// WorkPackageResponse defines the data returned for a work package.
type WorkPackageResponse struct {
	WorkPackageID string                 `json:"workPackageID"`
	Period        string                 `json:"period"`
	ContractID    string                 `json:"contractID"`
	ClientID      string                 `json:"clientID"`
	ContractorID  string                 `json:"contractorID"`
	TotalHours    decimal.Decimal        `json:"totalHours"`
	TotalAmount   decimal.Decimal        `json:"totalAmount"`
	HourlyRate    decimal.Decimal        `json:"hourlyRate"`
	RateType      string                 `json:"rateType"`
	VATIncluded   bool                   `json:"vatIncluded"`
	VATPercent    decimal.Decimal        `json:"vatPercent"`
	VATAmount     decimal.Decimal        `json:"vatAmount"`
	TaskSnapshots []TaskSnapshotResponse `json:"taskSnapshots"`
	PreparedFor   []string               `json:"preparedFor"`
	Tags          []string               `json:"tags"`
}

// ToWorkPackageResponse converts a domain.WorkPackage to WorkPackageResponse DTO.
func ToWorkPackageResponse(wp *domain.WorkPackage) WorkPackageResponse {
	snaps := make([]TaskSnapshotResponse, len(wp.TaskSnapshots))
	for i, s := range wp.TaskSnapshots {
		snaps[i] = TaskSnapshotResponse{
			TaskID:     s.TaskID,
			Key:        s.Key,
			Hours:      s.Hours,
			HourlyRate: s.HourlyRate,
			Amount:     s.Amount,
		}
	}
	return WorkPackageResponse{
		WorkPackageID: wp.WorkPackageID,
		Period:        wp.Period,
		ContractID:    wp.ContractID,
		ClientID:      wp.ClientID,
		ContractorID:  wp.ContractorID,
		TotalHours:    wp.TotalHours,
		TotalAmount:   wp.TotalAmount,
		HourlyRate:    wp.HourlyRate,
		RateType:      string(wp.RateType),
		VATIncluded:   wp.VATIncluded,
		VATPercent:    wp.VATPercent,
		VATAmount:     wp.VATAmount,
		TaskSnapshots: snaps,
		PreparedFor:   wp.Metadata.PreparedFor,
		Tags:          wp.Metadata.Tags,
	}
}

// ToWorkPackageResponses converts a slice of domain.WorkPackage to DTOs.
func ToWorkPackageResponses(pkgs []domain.WorkPackage) []WorkPackageResponse {
	responses := make([]WorkPackageResponse, len(pkgs))
	for i, wp := range pkgs {
		responses[i] = ToWorkPackageResponse(&wp)
	}
	return responses
}
