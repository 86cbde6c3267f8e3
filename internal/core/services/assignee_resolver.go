package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
)

// userAssigneeResolver resolves performer/manager references against the
// local account store. A reference may be a user id or an email.
type userAssigneeResolver struct {
	userRepo portsrepo.UserReader
}

// NewUserAssigneeResolver creates an account-backed assignee resolver.
func NewUserAssigneeResolver(userRepo portsrepo.UserReader) portssvc.AssigneeResolver {
	return &userAssigneeResolver{userRepo: userRepo}
}

var _ portssvc.AssigneeResolver = (*userAssigneeResolver)(nil)

// ResolveAssignee returns the resolved account identity, or nil when the
// reference matches no account.
func (r *userAssigneeResolver) ResolveAssignee(ctx context.Context, ref string) (*domain.Assignee, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	var user *domain.User
	var err error
	if strings.Contains(ref, "@") {
		user, err = r.userRepo.FindUserByEmail(ctx, ref)
	} else {
		user, err = r.userRepo.FindUserByID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve assignee %q: %w", ref, err)
	}

	return &domain.Assignee{
		UserID:   user.UserID,
		Email:    user.Email,
		FullName: user.Name,
	}, nil
}
