// Package audit reconciles an expected inventory list against the items found
// in a later re-photograph of the same room.
package audit

import "roomproof/internal/domain"

// Reconcile pairs every expected item against found items by exact,
// case-sensitive name equality and derives a verdict for each. The output
// preserves expected order; items present only in found are not surfaced —
// reconciliation verifies the expected inventory, it does not discover new
// items.
//
// When duplicate names exist on the found side, the first occurrence wins for
// every expected entry with that name. This is a known limitation carried
// over from the original matching policy, not fuzzy-matchable without product
// guidance.
func Reconcile(expected, found []domain.InventoryItem) []domain.AuditOutcome {
	outcomes := make([]domain.AuditOutcome, 0, len(expected))
	for _, want := range expected {
		foundCount := 0
		for _, got := range found {
			if got.Name == want.Name {
				foundCount = got.Count
				break
			}
		}
		outcomes = append(outcomes, domain.AuditOutcome{
			Item:          want.Name,
			ExpectedCount: want.Count,
			FoundCount:    foundCount,
			Status:        statusFor(want.Count, foundCount),
		})
	}
	return outcomes
}

// AdjustFound applies a manual correction to the outcome at index, returning
// a new slice; the input is never mutated, so callers holding the prior slice
// observe no change. The found count saturates at zero and the status is
// recomputed. An out-of-range index returns the input unchanged.
func AdjustFound(outcomes []domain.AuditOutcome, index, delta int) []domain.AuditOutcome {
	if index < 0 || index >= len(outcomes) {
		return outcomes
	}

	adjusted := make([]domain.AuditOutcome, len(outcomes))
	copy(adjusted, outcomes)

	next := adjusted[index].FoundCount + delta
	if next < 0 {
		next = 0
	}
	adjusted[index].FoundCount = next
	adjusted[index].Status = statusFor(adjusted[index].ExpectedCount, next)
	return adjusted
}

// statusFor derives the verdict: Match when counts agree, Missing when an
// expected item was not found at all, Mismatch otherwise.
func statusFor(expected, found int) domain.AuditStatus {
	switch {
	case found == expected:
		return domain.StatusMatch
	case found == 0 && expected > 0:
		return domain.StatusMissing
	default:
		return domain.StatusMismatch
	}
}
