// Package classify labels residual diagnostics after the planner loop
// ends: what could have been fixed automatically, what needs a human,
// and why.
package classify

import "oraclerepair/internal/host"

// Disposition is the classifier's verdict on a diagnostic that was not
// committed.
type Disposition string

const (
	AutoFixable          Disposition = "AutoFixable"
	AutoFixableHighRisk  Disposition = "AutoFixableHighRisk"
	NeedsJudgment        Disposition = "NeedsJudgment"
	NoGeneratedCandidate Disposition = "NoGeneratedCandidate"
	NoVerifiedCandidate  Disposition = "NoVerifiedCandidate"
)

// Classified extends a Diagnostic with its disposition and the number
// of verified candidates that qualified for it (0 when none qualified
// or the budget was exhausted).
type Classified struct {
	host.Diagnostic
	Disposition    Disposition
	CandidateCount int
}

// VerifiedCandidate is the minimal shape classify needs about one of a
// diagnostic's candidate verification outcomes.
type VerifiedCandidate struct {
	TargetFixed    bool
	Score          float64
	ResolvedWeight float64
	RiskHigh       bool
}

// Classify labels a single remaining diagnostic. hadCandidates reports
// whether any candidate at all -- native code fix or synthetic builder
// fix -- was generated for d before pruning.
// verifiedAmongTop are the outcomes for up to maxCandidates candidates
// considered for d (native + synthetic, pruned exactly as the planner
// prunes).
func Classify(hadCandidates bool, verifiedAmongTop []VerifiedCandidate, budgetExhausted bool) (Disposition, int) {
	if budgetExhausted {
		return NeedsJudgment, 0
	}
	if !hadCandidates {
		return NoGeneratedCandidate, 0
	}
	var qualifying []VerifiedCandidate
	for _, v := range verifiedAmongTop {
		if v.TargetFixed && v.Score > 0 && v.ResolvedWeight > 0 {
			qualifying = append(qualifying, v)
		}
	}
	switch {
	case len(qualifying) == 0:
		return NoVerifiedCandidate, 0
	case len(qualifying) > 1:
		return NeedsJudgment, len(qualifying)
	case qualifying[0].RiskHigh:
		return AutoFixableHighRisk, 1
	default:
		return AutoFixable, 1
	}
}
