package score

import (
	"testing"

	"oraclerepair/internal/candidate"
)

func TestRiskTable(t *testing.T) {
	cases := map[string]candidate.Risk{
		"fixMissingImport":      candidate.RiskLow,
		"removeUnusedImport":    candidate.RiskLow,
		"declareUndeclaredName": candidate.RiskMedium,
		"fixSpelling":           candidate.RiskMedium,
		"addCatchAllOverload":   candidate.RiskHigh,
		"somethingNeverSeen":    candidate.RiskHigh,
	}
	for name, want := range cases {
		if got := Risk(name); got != want {
			t.Errorf("Risk(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestScoreDeltaIsErrorsBeforeMinusAfter(t *testing.T) {
	got := Score(Delta, Result{ErrorsBefore: 5, ErrorsAfter: 3}, Weights{})
	if got != 2 {
		t.Errorf("Score(Delta) = %v, want 2", got)
	}
}

func TestScoreWeightedPenalizesIntroducedRiskAndSize(t *testing.T) {
	w := DefaultWeights()
	clean := Score(Weighted, Result{ResolvedWeight: 1, Risk: candidate.RiskLow}, w)
	risky := Score(Weighted, Result{ResolvedWeight: 1, Risk: candidate.RiskHigh}, w)
	if !(clean > risky) {
		t.Errorf("expected low risk to score higher than high risk: clean=%v risky=%v", clean, risky)
	}

	withIntroduced := Score(Weighted, Result{ResolvedWeight: 1, IntroducedWeight: 1, Risk: candidate.RiskLow}, w)
	if !(clean > withIntroduced) {
		t.Errorf("expected introduced diagnostics to reduce score: clean=%v withIntroduced=%v", clean, withIntroduced)
	}

	bigEdit := Score(Weighted, Result{ResolvedWeight: 1, EditSize: 10000, Risk: candidate.RiskLow}, w)
	if !(clean > bigEdit) {
		t.Errorf("expected large edit size to reduce score: clean=%v bigEdit=%v", clean, bigEdit)
	}
}
