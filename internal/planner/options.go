// Package planner implements the iterative best-first repair loop:
// enumerate diagnostics, generate native+synthetic candidates, prune
// cheaply, speculatively apply, verify, score, commit the best
// improving candidate per iteration, under a global verification
// budget. It is an offline closed loop standing in for gopls' LSP
// request/response cycle: diagnose, offer a fix, re-diagnose, except
// that here the loop drives itself instead of waiting on an editor.
package planner

import (
	"oraclerepair/internal/policy"
	"oraclerepair/internal/score"
	"oraclerepair/internal/telemetry"
)

// Options configures one Plan invocation.
type Options struct {
	MaxCandidates             int
	MaxCandidatesPerIteration int
	MaxVerifications          int
	AllowRegressions          bool
	IncludeHighRisk           bool
	MaxIterations             int
	Strategy                  score.Strategy
	Weights                   score.Weights
	Policy                    policy.Policy
	Logger                    telemetry.Logger
	// Cancel, if non-nil, is checked at the top of each iteration and
	// between per-diagnostic verifications.
	Cancel <-chan struct{}
}

// DefaultOptions returns the engine's documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxCandidates:             10,
		MaxCandidatesPerIteration: 100,
		MaxVerifications:          500,
		AllowRegressions:          false,
		IncludeHighRisk:           false,
		MaxIterations:             50,
		Strategy:                  score.Delta,
		Weights:                   score.DefaultWeights(),
		Policy:                    policy.Default(),
		Logger:                    telemetry.Discard,
	}
}

func (o Options) cancelled() bool {
	if o.Cancel == nil {
		return false
	}
	select {
	case <-o.Cancel:
		return true
	default:
		return false
	}
}
