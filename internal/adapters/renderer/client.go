package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
)

// Client calls the external document-rendering service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a renderer client. An empty baseURL yields a client whose
// Render always fails, which the document service tolerates by leaving files
// pending.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ portssvc.DocumentRenderer = (*Client)(nil)

type renderPayload struct {
	DocumentType string                `json:"documentType"`
	Period       string                `json:"period"`
	Tasks        []domain.TaskSnapshot `json:"tasks"`
	Contractor   renderParty           `json:"contractor"`
	Client       renderParty           `json:"client"`
	TotalHours   string                `json:"totalHours"`
	TotalAmount  string                `json:"totalAmount"`
}

type renderParty struct {
	Name    string `json:"name"`
	INN     string `json:"inn,omitempty"`
	Address string `json:"address,omitempty"`
}

type renderResult struct {
	Files []struct {
		Label  string `json:"label"`
		Type   string `json:"type"`
		Format string `json:"format"`
		URL    string `json:"url"`
	} `json:"files"`
}

// Render posts the frozen package data and returns the produced file handles.
func (c *Client) Render(ctx context.Context, req portssvc.RenderRequest) ([]domain.DocumentFile, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("renderer is not configured")
	}

	payload := renderPayload{
		DocumentType: string(req.DocumentType),
		Period:       req.Period,
		Tasks:        req.TaskSnapshots,
		Contractor: renderParty{
			Name:    req.Contractor.Name,
			INN:     req.Contractor.INN,
			Address: req.Contractor.Address,
		},
		Client: renderParty{
			Name:    req.Client.Name,
			INN:     req.Client.INN,
			Address: req.Client.Address,
		},
		TotalHours:  req.TotalHours.String(),
		TotalAmount: req.TotalAmount.String(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	var result renderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}

	files := make([]domain.DocumentFile, len(result.Files))
	for i, f := range result.Files {
		files[i] = domain.DocumentFile{
			Label:  f.Label,
			Type:   f.Type,
			Format: f.Format,
			Status: domain.FileReady,
			URL:    f.URL,
		}
	}
	return files, nil
}
