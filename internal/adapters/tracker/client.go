package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// Config carries the tracker endpoint and OAuth2 client credentials.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client pulls normalized tasks from an external issue tracker. Requests are
// authenticated via the OAuth2 client-credentials flow; token refresh is
// handled by the oauth2 transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a tracker client, or nil when the tracker is unconfigured.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" || cfg.TokenURL == "" || cfg.ClientID == "" {
		return nil
	}
	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: oauthCfg.Client(context.Background()),
	}
}

// trackerIssue mirrors the tracker's wire shape for one issue.
type trackerIssue struct {
	Key          string  `json:"key"`
	ProjectKey   string  `json:"projectKey"`
	ProjectID    string  `json:"projectId"`
	Summary      string  `json:"summary"`
	Status       string  `json:"status"`
	SpentSeconds int64   `json:"spentSeconds"`
	Billable     bool    `json:"billable"`
	Hours        *string `json:"hours"`
}

// FetchTasks retrieves the tracker issues for one billing period, normalized
// into the import request shape.
func (c *Client) FetchTasks(ctx context.Context, period string) ([]dto.ImportTaskRequest, error) {
	endpoint := fmt.Sprintf("%s/issues?period=%s", c.baseURL, url.QueryEscape(period))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracker request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	var issues []trackerIssue
	if err := json.NewDecoder(resp.Body).Decode(&issues); err != nil {
		return nil, fmt.Errorf("failed to decode tracker response: %w", err)
	}

	tasks := make([]dto.ImportTaskRequest, 0, len(issues))
	for _, issue := range issues {
		task := dto.ImportTaskRequest{
			Key:          issue.Key,
			ProjectKey:   issue.ProjectKey,
			ProjectID:    issue.ProjectID,
			Title:        issue.Summary,
			Status:       issue.Status,
			Period:       period,
			SecondsSpent: issue.SpentSeconds,
			Billable:     issue.Billable,
		}
		if issue.Hours != nil {
			hours, err := decimal.NewFromString(*issue.Hours)
			if err != nil {
				return nil, fmt.Errorf("tracker issue %s carries malformed hours %q: %w", issue.Key, *issue.Hours, err)
			}
			task.Hours = &hours
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
