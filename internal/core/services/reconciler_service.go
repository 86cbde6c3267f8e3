package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/apperrors"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	portsrepo "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/repositories"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/dto"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
)

// reconcilerService deduplicates the performer directory. The directory
// accumulates duplicate Individual records across tracker re-imports and
// manual re-entry; reconciliation runs deterministically over the full set
// whenever it is loaded.
type reconcilerService struct {
	individualRepo portsrepo.IndividualRepositoryFacade
	contractRepo   portsrepo.ContractRepositoryFacade
}

// NewReconcilerService creates a new identity reconciler.
func NewReconcilerService(individualRepo portsrepo.IndividualRepositoryFacade, contractRepo portsrepo.ContractRepositoryFacade) portssvc.ReconcilerSvcFacade {
	return &reconcilerService{
		individualRepo: individualRepo,
		contractRepo:   contractRepo,
	}
}

var _ portssvc.ReconcilerSvcFacade = (*reconcilerService)(nil)

// normalizeKey lowercases and strips all whitespace for case/space-insensitive
// grouping fields.
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// GroupingKey computes the identity key an individual is deduplicated under,
// in priority order: externalId, email, inn, passport, name, then its own id
// (ungroupable).
func GroupingKey(ind domain.Individual) string {
	if k := normalizeKey(ind.ExternalID); k != "" {
		return "ext:" + k
	}
	if k := strings.ToLower(strings.TrimSpace(ind.Email)); k != "" {
		return "email:" + k
	}
	if k := strings.TrimSpace(ind.INN); k != "" {
		return "inn:" + k
	}
	if k := strings.TrimSpace(ind.Passport); k != "" {
		return "passport:" + k
	}
	if k := normalizeKey(ind.Name); k != "" {
		return "name:" + k
	}
	return "id:" + ind.IndividualID
}

// ScoreIndividual ranks a duplicate-group member for the canonical vote.
// Contract-referenced records weigh heaviest so merges never orphan a
// contract's link.
func ScoreIndividual(ind domain.Individual, contractReferenced bool) int {
	score := 0
	if contractReferenced {
		score += 10
	}
	if strings.TrimSpace(ind.ExternalID) != "" {
		score += 6
	}
	if strings.TrimSpace(ind.Email) != "" {
		score += 4
	}
	if strings.TrimSpace(ind.INN) != "" {
		score += 3
	}
	if strings.TrimSpace(ind.Passport) != "" {
		score += 3
	}
	if strings.TrimSpace(ind.Address) != "" {
		score += 1
	}
	if ind.Status == domain.IndividualComplete {
		score += 2
	}
	return score
}

// mergeInto fills only the canonical record's blank identity fields from the
// candidate and upgrades status and source. It reports whether anything
// changed.
func mergeInto(canonical *domain.Individual, candidate domain.Individual) bool {
	changed := false
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
			*dst = src
			changed = true
		}
	}
	fill(&canonical.INN, candidate.INN)
	fill(&canonical.Passport, candidate.Passport)
	fill(&canonical.Address, candidate.Address)
	fill(&canonical.Email, candidate.Email)
	fill(&canonical.ExternalID, candidate.ExternalID)

	if canonical.Status != domain.IndividualComplete &&
		(candidate.Status == domain.IndividualComplete || canonical.ComputeStatus() == domain.IndividualComplete) {
		canonical.Status = domain.IndividualComplete
		changed = true
	}
	if canonical.Source == domain.SourceManual && candidate.Source != domain.SourceManual && candidate.Source != "" {
		canonical.Source = candidate.Source
		changed = true
	}
	return changed
}

// Reconcile runs the dedup batch: group, score, merge, persist, delete.
// Persistence failures of individual merges/deletes are logged and skipped so
// the remaining groups still converge; re-running is always safe because
// grouping and scoring are deterministic over the same snapshot.
func (s *reconcilerService) Reconcile(ctx context.Context, workspaceID string, userID string) ([]domain.Individual, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	individuals, err := s.individualRepo.ListIndividuals(ctx, workspaceID)
	if err != nil {
		logger.Error("Failed to list individuals for reconciliation", slog.String("workspace_id", workspaceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list individuals: %w", err)
	}

	references, err := s.contractRepo.ListContractorReferences(ctx, workspaceID)
	if err != nil {
		logger.Error("Failed to list contractor references", slog.String("workspace_id", workspaceID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list contractor references: %w", err)
	}
	referenced := func(id string) bool { return len(references[id]) > 0 }

	// Group in first-encountered order so tie-breaking stays deterministic.
	groups := make(map[string][]int)
	order := make([]string, 0, len(individuals))
	for i, ind := range individuals {
		key := GroupingKey(ind)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	now := time.Now().UTC()
	result := make([]domain.Individual, 0, len(individuals))
	removed := make(map[string]bool)

	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}

		// Pick the canonical member: highest score, first encountered on ties.
		canonicalIdx := members[0]
		bestScore := ScoreIndividual(individuals[canonicalIdx], referenced(individuals[canonicalIdx].IndividualID))
		for _, idx := range members[1:] {
			score := ScoreIndividual(individuals[idx], referenced(individuals[idx].IndividualID))
			if score > bestScore {
				bestScore = score
				canonicalIdx = idx
			}
		}

		canonical := individuals[canonicalIdx]
		original := canonical
		for _, idx := range members {
			if idx == canonicalIdx {
				continue
			}
			mergeInto(&canonical, individuals[idx])
		}

		if canonical != original {
			canonical.LastUpdatedAt = now
			canonical.LastUpdatedBy = userID
			if err := s.individualRepo.UpdateIndividual(ctx, canonical); err != nil {
				// Best-effort batch: keep going with the snapshot record.
				logger.Warn("Failed to persist merged individual, skipping",
					slog.String("individual_id", canonical.IndividualID), slog.String("error", err.Error()))
				canonical = original
			}
		}
		individuals[canonicalIdx] = canonical

		for _, idx := range members {
			if idx == canonicalIdx {
				continue
			}
			dup := individuals[idx]
			if referenced(dup.IndividualID) {
				// Never break a contract's link, even for a losing duplicate.
				// Re-point those contracts at the canonical record instead,
				// best-effort.
				for _, contractID := range references[dup.IndividualID] {
					if err := s.contractRepo.ReassignContractor(ctx, contractID, canonical.IndividualID, userID, now); err != nil {
						logger.Warn("Failed to re-point contract at canonical individual",
							slog.String("contract_id", contractID), slog.String("error", err.Error()))
					}
				}
				continue
			}
			if err := s.individualRepo.DeleteIndividual(ctx, dup.IndividualID); err != nil {
				logger.Warn("Failed to delete duplicate individual, skipping",
					slog.String("individual_id", dup.IndividualID), slog.String("error", err.Error()))
				continue
			}
			removed[dup.IndividualID] = true
		}
	}

	for _, ind := range individuals {
		if !removed[ind.IndividualID] {
			result = append(result, ind)
		}
	}

	logger.Info("Directory reconciled",
		slog.String("workspace_id", workspaceID),
		slog.Int("records", len(individuals)),
		slog.Int("removed", len(removed)),
	)
	return result, nil
}

// GetIndividual retrieves one performer record, scoped to the workspace.
func (s *reconcilerService) GetIndividual(ctx context.Context, workspaceID, individualID string) (*domain.Individual, error) {
	ind, err := s.individualRepo.FindIndividualByID(ctx, individualID)
	if err != nil {
		return nil, fmt.Errorf("failed to find individual %s: %w", individualID, err)
	}
	if ind.WorkspaceID != workspaceID {
		return nil, apperrors.ErrNotFound
	}
	return ind, nil
}

// UpdateIndividual patches the record's identity fields. Status is recomputed
// from the resulting fields, never set directly by the caller.
func (s *reconcilerService) UpdateIndividual(ctx context.Context, workspaceID, individualID string, req dto.UpdateIndividualRequest, userID string) (*domain.Individual, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ind, err := s.GetIndividual(ctx, workspaceID, individualID)
	if err != nil {
		return nil, err
	}

	updated := false
	apply := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			updated = true
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", apperrors.ErrValidation)
	}
	apply(&ind.Name, req.Name)
	apply(&ind.INN, req.INN)
	apply(&ind.Passport, req.Passport)
	apply(&ind.Address, req.Address)
	apply(&ind.Email, req.Email)
	apply(&ind.ApprovalManagerID, req.ApprovalManagerID)
	if req.IsApprovalManager != nil && ind.IsApprovalManager != *req.IsApprovalManager {
		ind.IsApprovalManager = *req.IsApprovalManager
		updated = true
	}
	if !updated {
		return ind, nil
	}

	ind.Status = ind.ComputeStatus()
	ind.LastUpdatedAt = time.Now().UTC()
	ind.LastUpdatedBy = userID
	if err := s.individualRepo.UpdateIndividual(ctx, *ind); err != nil {
		logger.Error("Failed to update individual", slog.String("individual_id", individualID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update individual: %w", err)
	}

	logger.Info("Individual updated", slog.String("individual_id", individualID))
	return ind, nil
}
