package workflow

import (
	"strings"

	"github.com/claimsight/claimsight/internal/model"
)

// Finalize converts a recommendation into the final claim decision. The rule
// is deterministic and involves no inference: the claim counts as covered
// when the summary mentions "covered" or a positive settlement amount is
// present, missing amounts become zero, and the summary is carried into the
// notes verbatim.
func Finalize(claimID string, rec model.Recommendation) model.Decision {
	covered := strings.Contains(strings.ToLower(rec.Summary), "covered")
	if rec.SettlementAmount != nil && *rec.SettlementAmount > 0 {
		covered = true
	}

	deductible := 0.0
	if rec.Deductible != nil {
		deductible = *rec.Deductible
	}

	payout := 0.0
	if rec.SettlementAmount != nil && *rec.SettlementAmount != 0 {
		payout = *rec.SettlementAmount
	}

	return model.Decision{
		ClaimID:           claimID,
		Covered:           covered,
		Deductible:        deductible,
		RecommendedPayout: payout,
		Notes:             rec.Summary,
	}
}
