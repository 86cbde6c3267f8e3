package domain

import (
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
)

// ApprovalStatus is the workflow state of a document record.
type ApprovalStatus string

const (
	ApprovalDraft             ApprovalStatus = "draft"
	ApprovalPendingPerformer  ApprovalStatus = "pending_performer"
	ApprovalPendingManager    ApprovalStatus = "pending_manager"
	ApprovalRejectedPerformer ApprovalStatus = "rejected_performer"
	ApprovalRejectedManager   ApprovalStatus = "rejected_manager"
	ApprovalManagerApproved   ApprovalStatus = "manager_approved"
	ApprovalFinal             ApprovalStatus = "final"
)

// ApprovalAction is an operation attempted against the workflow.
type ApprovalAction string

const (
	ActionSubmit           ApprovalAction = "submit"
	ActionPerformerApprove ApprovalAction = "performer_approve"
	ActionManagerApprove   ApprovalAction = "manager_approve"
	ActionReject           ApprovalAction = "reject"
	ActionFinalize         ApprovalAction = "finalize"
)

// assigneeMatches reports whether the caller is the resolved assignee.
// Either the linked account id or the account email may match.
func assigneeMatches(a *Assignee, caller Caller) bool {
	if a == nil {
		return false
	}
	if a.UserID != "" && a.UserID == caller.UserID {
		return true
	}
	return a.Email != "" && a.Email == caller.Email
}

// NextApprovalStatus evaluates one workflow action against the document's
// current state and the caller's identity. It returns the resulting status,
// or apperrors.ErrInvalidTransition when the action is illegal for the current
// state, or apperrors.ErrForbidden when the state allows it but the caller
// (or a missing assignee) fails the guard. It never mutates the document.
func NextApprovalStatus(doc DocumentRecord, action ApprovalAction, caller Caller) (ApprovalStatus, error) {
	switch action {
	case ActionSubmit:
		switch doc.ApprovalStatus {
		case ApprovalDraft, ApprovalRejectedPerformer:
			if doc.PerformerAssignee == nil {
				return "", apperrors.ErrForbidden
			}
			return ApprovalPendingPerformer, nil
		case ApprovalRejectedManager:
			if doc.ManagerAssignee == nil {
				return "", apperrors.ErrForbidden
			}
			return ApprovalPendingManager, nil
		}
		return "", apperrors.ErrInvalidTransition

	case ActionPerformerApprove:
		if doc.ApprovalStatus != ApprovalPendingPerformer {
			return "", apperrors.ErrInvalidTransition
		}
		if !caller.IsAdminLike() && !assigneeMatches(doc.PerformerAssignee, caller) {
			return "", apperrors.ErrForbidden
		}
		return ApprovalPendingManager, nil

	case ActionManagerApprove:
		if doc.ApprovalStatus != ApprovalPendingManager {
			return "", apperrors.ErrInvalidTransition
		}
		if !caller.IsAdminLike() && !assigneeMatches(doc.ManagerAssignee, caller) {
			return "", apperrors.ErrForbidden
		}
		return ApprovalManagerApproved, nil

	case ActionReject:
		// Symmetric to the approve guards: whoever may approve a stage may
		// send it back instead.
		switch doc.ApprovalStatus {
		case ApprovalPendingPerformer:
			if !caller.IsAdminLike() && !assigneeMatches(doc.PerformerAssignee, caller) {
				return "", apperrors.ErrForbidden
			}
			return ApprovalRejectedPerformer, nil
		case ApprovalPendingManager:
			if !caller.IsAdminLike() && !assigneeMatches(doc.ManagerAssignee, caller) {
				return "", apperrors.ErrForbidden
			}
			return ApprovalRejectedManager, nil
		}
		return "", apperrors.ErrInvalidTransition

	case ActionFinalize:
		if doc.ApprovalStatus == ApprovalFinal {
			return "", apperrors.ErrInvalidTransition
		}
		if doc.ApprovalStatus == ApprovalManagerApproved {
			if !caller.IsAdminLike() && !caller.HasRole(RoleManager) {
				return "", apperrors.ErrForbidden
			}
			return ApprovalFinal, nil
		}
		// Admin override: finalize from any non-final state.
		if !caller.IsAdminLike() {
			return "", apperrors.ErrForbidden
		}
		return ApprovalFinal, nil
	}
	return "", apperrors.ErrInvalidTransition
}

// RoleLabelFor returns the audit-trail role label recorded with a note.
func RoleLabelFor(caller Caller) string {
	switch {
	case caller.IsAdminLike():
		return "admin"
	case caller.HasRole(RoleManager):
		return "manager"
	case caller.HasRole(RolePerformer):
		return "performer"
	default:
		return "member"
	}
}
