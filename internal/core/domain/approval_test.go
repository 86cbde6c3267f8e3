package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

var (
	performer = domain.Assignee{UserID: "u-performer", Email: "performer@example.com"}
	manager   = domain.Assignee{UserID: "u-manager", Email: "manager@example.com"}

	performerCaller = domain.Caller{UserID: "u-performer", Email: "performer@example.com", Roles: []domain.Role{domain.RolePerformer}}
	managerCaller   = domain.Caller{UserID: "u-manager", Email: "manager@example.com", Roles: []domain.Role{domain.RoleManager}}
	adminCaller     = domain.Caller{UserID: "u-admin", Email: "admin@example.com", Roles: []domain.Role{domain.RoleAdmin}}
	strangerCaller  = domain.Caller{UserID: "u-stranger", Email: "stranger@example.com", Roles: []domain.Role{domain.RoleMember}}
)

func docWith(status domain.ApprovalStatus, withPerformer, withManager bool) domain.DocumentRecord {
	doc := domain.DocumentRecord{ApprovalStatus: status}
	if withPerformer {
		p := performer
		doc.PerformerAssignee = &p
	}
	if withManager {
		m := manager
		doc.ManagerAssignee = &m
	}
	return doc
}

func TestNextApprovalStatus(t *testing.T) {
	tests := []struct {
		name    string
		doc     domain.DocumentRecord
		action  domain.ApprovalAction
		caller  domain.Caller
		want    domain.ApprovalStatus
		wantErr error
	}{
		// Submit
		{"submit draft", docWith(domain.ApprovalDraft, true, true), domain.ActionSubmit, strangerCaller, domain.ApprovalPendingPerformer, nil},
		{"submit draft without performer assignee", docWith(domain.ApprovalDraft, false, true), domain.ActionSubmit, strangerCaller, "", apperrors.ErrForbidden},
		{"resubmit after performer reject", docWith(domain.ApprovalRejectedPerformer, true, true), domain.ActionSubmit, strangerCaller, domain.ApprovalPendingPerformer, nil},
		{"resubmit after manager reject goes to manager", docWith(domain.ApprovalRejectedManager, true, true), domain.ActionSubmit, strangerCaller, domain.ApprovalPendingManager, nil},
		{"resubmit after manager reject without manager assignee", docWith(domain.ApprovalRejectedManager, true, false), domain.ActionSubmit, strangerCaller, "", apperrors.ErrForbidden},
		{"submit final", docWith(domain.ApprovalFinal, true, true), domain.ActionSubmit, adminCaller, "", apperrors.ErrInvalidTransition},
		{"submit pending", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionSubmit, strangerCaller, "", apperrors.ErrInvalidTransition},

		// Performer approve
		{"performer approves own stage", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionPerformerApprove, performerCaller, domain.ApprovalPendingManager, nil},
		{"admin approves performer stage", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionPerformerApprove, adminCaller, domain.ApprovalPendingManager, nil},
		{"stranger cannot approve performer stage", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionPerformerApprove, strangerCaller, "", apperrors.ErrForbidden},
		{"performer approve out of stage", docWith(domain.ApprovalDraft, true, true), domain.ActionPerformerApprove, performerCaller, "", apperrors.ErrInvalidTransition},

		// Manager approve
		{"manager approves own stage", docWith(domain.ApprovalPendingManager, true, true), domain.ActionManagerApprove, managerCaller, domain.ApprovalManagerApproved, nil},
		{"performer cannot approve manager stage", docWith(domain.ApprovalPendingManager, true, true), domain.ActionManagerApprove, performerCaller, "", apperrors.ErrForbidden},
		{"manager approve out of stage", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionManagerApprove, managerCaller, "", apperrors.ErrInvalidTransition},

		// Reject
		{"performer rejects own stage", docWith(domain.ApprovalPendingPerformer, true, true), domain.ActionReject, performerCaller, domain.ApprovalRejectedPerformer, nil},
		{"manager rejects own stage", docWith(domain.ApprovalPendingManager, true, true), domain.ActionReject, managerCaller, domain.ApprovalRejectedManager, nil},
		{"stranger cannot reject", docWith(domain.ApprovalPendingManager, true, true), domain.ActionReject, strangerCaller, "", apperrors.ErrForbidden},
		{"reject draft", docWith(domain.ApprovalDraft, true, true), domain.ActionReject, adminCaller, "", apperrors.ErrInvalidTransition},
		{"reject final", docWith(domain.ApprovalFinal, true, true), domain.ActionReject, adminCaller, "", apperrors.ErrInvalidTransition},

		// Finalize
		{"manager finalizes approved document", docWith(domain.ApprovalManagerApproved, true, true), domain.ActionFinalize, managerCaller, domain.ApprovalFinal, nil},
		{"admin finalizes approved document", docWith(domain.ApprovalManagerApproved, true, true), domain.ActionFinalize, adminCaller, domain.ApprovalFinal, nil},
		{"member cannot finalize", docWith(domain.ApprovalManagerApproved, true, true), domain.ActionFinalize, strangerCaller, "", apperrors.ErrForbidden},
		{"admin override finalizes from draft", docWith(domain.ApprovalDraft, true, true), domain.ActionFinalize, adminCaller, domain.ApprovalFinal, nil},
		{"manager cannot skip stages", docWith(domain.ApprovalDraft, true, true), domain.ActionFinalize, managerCaller, "", apperrors.ErrForbidden},
		{"finalize final", docWith(domain.ApprovalFinal, true, true), domain.ActionFinalize, adminCaller, "", apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NextApprovalStatus(tt.doc, tt.action, tt.caller)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextApprovalStatusMatchesByEmail(t *testing.T) {
	doc := domain.DocumentRecord{
		ApprovalStatus:    domain.ApprovalPendingPerformer,
		PerformerAssignee: &domain.Assignee{Email: "performer@example.com"},
	}
	caller := domain.Caller{UserID: "other-id", Email: "performer@example.com"}

	got, err := domain.NextApprovalStatus(doc, domain.ActionPerformerApprove, caller)

	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPendingManager, got)
}

func TestRoleLabelFor(t *testing.T) {
	assert.Equal(t, "admin", domain.RoleLabelFor(adminCaller))
	assert.Equal(t, "admin", domain.RoleLabelFor(domain.Caller{Roles: []domain.Role{domain.RoleOwner}}))
	assert.Equal(t, "manager", domain.RoleLabelFor(managerCaller))
	assert.Equal(t, "performer", domain.RoleLabelFor(performerCaller))
	assert.Equal(t, "member", domain.RoleLabelFor(strangerCaller))
}
