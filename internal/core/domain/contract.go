package domain

import "github.com/shopspring/decimal"

// Client is the paying counterparty on a contract.
type Client struct {
	ClientID    string `json:"clientID"`
	WorkspaceID string `json:"workspaceID"`
	Name        string `json:"name"`
	INN         string `json:"inn,omitempty"`
	Address     string `json:"address,omitempty"`
	AuditFields
}

// Contract links a client to a contractor (Individual) and fixes the default
// billing rate for assembled work packages.
type Contract struct {
	ContractID   string          `json:"contractID"`
	WorkspaceID  string          `json:"workspaceID"`
	Number       string          `json:"number"`
	ClientID     string          `json:"clientID"`
	ContractorID string          `json:"contractorID"` // Individual reference
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	RateType     RateType        `json:"rateType"`
	Active       bool            `json:"active"`
	AuditFields
}
