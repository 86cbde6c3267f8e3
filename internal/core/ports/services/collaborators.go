package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
)

// RenderRequest is the snapshot handed to the external document-rendering
// service.
type RenderRequest struct {
	DocumentType  domain.DocumentType
	Period        string
	TaskSnapshots []domain.TaskSnapshot
	Contractor    domain.Individual
	Client        domain.Client
	TotalHours    decimal.Decimal
	TotalAmount   decimal.Decimal
}

// DocumentRenderer is the external rendering collaborator. Rendering failures
// never block document creation; files simply stay pending.
type DocumentRenderer interface {
	Render(ctx context.Context, req RenderRequest) ([]domain.DocumentFile, error)
}

// TaskSource pulls normalized tasks for one billing period from an external
// issue tracker.
type TaskSource interface {
	FetchTasks(ctx context.Context, period string) ([]dto.ImportTaskRequest, error)
}

// AssigneeResolver resolves a raw performer/manager reference (user id or
// email) to an account identity. A nil result with nil error means the
// reference did not resolve.
type AssigneeResolver interface {
	ResolveAssignee(ctx context.Context, ref string) (*domain.Assignee, error)
}
