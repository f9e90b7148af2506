// Package score implements two scoring strategies (delta, weighted)
// plus a closed risk-tagging table keyed by fix name, in the style of
// gopls/internal/golang/fix.go's fixer table.
package score

import "oraclerepair/internal/candidate"

// Risk tags a fix name as low/medium/high via a closed table. Unknown
// fix names default to high.
func Risk(fixName string) candidate.Risk {
	switch fixName {
	case "fixMissingImport", "addAsync", "addAwait", "removeUnusedImport", "removeUnused":
		return candidate.RiskLow
	case "declareUndeclaredName", "addMissingMember", "fixSpelling", "inferFromUsage":
		return candidate.RiskMedium
	default:
		return candidate.RiskHigh
	}
}

// Weight is a diagnostic severity's contribution to resolved/introduced
// weight sums.
type Weight float64

const (
	WeightError      Weight = 1.0
	WeightWarning    Weight = 0.5
	WeightSuggestion Weight = 0.25
	WeightMessage    Weight = 0.1
)

// Result is the measured effect of verifying one candidate, the input
// to both scoring strategies.
type Result struct {
	ResolvedWeight   float64
	IntroducedWeight float64
	EditSize         int
	Risk             candidate.Risk
	ErrorsBefore     int
	ErrorsAfter      int
}

// Strategy is a scoring function name.
type Strategy string

const (
	Delta    Strategy = "delta"
	Weighted Strategy = "weighted"
)

// Weights parameterizes the weighted strategy.
type Weights struct {
	K           float64
	Alpha       float64
	RiskPenalty map[candidate.Risk]float64
}

// DefaultWeights returns K=4, α=0.0015, riskPenalty={low:0,medium:0.75,high:2.0}.
func DefaultWeights() Weights {
	return Weights{
		K:     4,
		Alpha: 0.0015,
		RiskPenalty: map[candidate.Risk]float64{
			candidate.RiskLow:    0,
			candidate.RiskMedium: 0.75,
			candidate.RiskHigh:   2.0,
		},
	}
}

// Score computes r's score under strategy s.
func Score(s Strategy, r Result, w Weights) float64 {
	switch s {
	case Weighted:
		return r.ResolvedWeight - w.K*r.IntroducedWeight - w.Alpha*float64(r.EditSize) - w.RiskPenalty[r.Risk]
	default: // Delta
		return float64(r.ErrorsBefore - r.ErrorsAfter)
	}
}
