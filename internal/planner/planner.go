package planner

import (
	"go/ast"
	"go/token"
	"sort"
	"strconv"

	"oraclerepair/internal/builder"
	"oraclerepair/internal/candidate"
	"oraclerepair/internal/classify"
	"oraclerepair/internal/cone"
	"oraclerepair/internal/guard"
	"oraclerepair/internal/host"
	"oraclerepair/internal/plan"
	"oraclerepair/internal/policy"
	"oraclerepair/internal/score"
	"oraclerepair/internal/telemetry"
)

// Planner owns the host, registry, cache, logger, and guard for one
// plan invocation; nothing here is shared across concurrent Plan calls.
type Planner struct {
	host     host.TypeCheckHost
	registry *builder.Registry
	opts     Options

	cache           *cone.DiagnosticCache
	guard           *guard.Guard
	iteration       int
	filesWithErrors map[string]int

	// outcomeCache remembers each diagnostic's best verified candidate
	// across iterations so that committing a fix only forces
	// re-verification of diagnostics whose files were actually touched,
	// keeping per-iteration verification cost proportional to the files
	// a commit actually changes rather than the whole remaining set. A stored nil
	// means the diagnostic was evaluated and had no qualifying
	// candidate; a missing key means it has not been evaluated since
	// its last invalidation.
	outcomeCache map[host.Diagnostic]*candidateOutcome

	budgetExhausted     bool
	candidatesGenerated int
	candidatesVerified  int
}

// New returns a Planner ready to run Plan once. A nil logger and a
// zero-valued policy fall back to their defaults.
func New(h host.TypeCheckHost, registry *builder.Registry, opts Options) *Planner {
	if opts.Logger == nil {
		opts.Logger = telemetry.Discard
	}
	if opts.Policy == (policy.Policy{}) {
		opts.Policy = policy.Default()
	}
	return &Planner{
		host:         h,
		registry:     registry,
		opts:         opts,
		cache:        cone.NewDiagnosticCache(1024),
		guard:        guard.New(50, opts.Logger),
		outcomeCache: make(map[host.Diagnostic]*candidateOutcome),
	}
}

// invalidateOutcomeCache drops cached outcomes for every diagnostic
// whose file is in touched, since a just-committed fix may have
// changed what candidates apply there.
func (p *Planner) invalidateOutcomeCache(touched map[string]struct{}) {
	for d := range p.outcomeCache {
		if _, ok := touched[d.File]; ok {
			delete(p.outcomeCache, d)
		}
	}
}

// candidateOutcome bundles one candidate's verification for scoring
// and, later, classification.
type candidateOutcome struct {
	diag   host.Diagnostic
	fix    candidate.Fix
	result verifyResult
	risk   candidate.Risk
	score  float64
}

func (p *Planner) updateFilesWithErrors(diags []host.Diagnostic) {
	m := make(map[string]int)
	for _, d := range diags {
		m[d.File]++
	}
	p.filesWithErrors = m
}

func (p *Planner) ctxFor(diag host.Diagnostic, current []host.Diagnostic) builder.Context {
	return builder.Context{
		Diagnostic:         diag,
		Host:               p.host,
		FilesWithErrors:    p.filesWithErrors,
		CurrentDiagnostics: current,
		Options:            p.host.GetOptions(),
		GetSourceFile: func(path string) (string, bool) {
			return p.host.GetVFS().GetContent(path)
		},
		GetNodeAtPosition: func() ([]ast.Node, *token.FileSet, bool) {
			text, ok := p.host.GetVFS().GetContent(diag.File)
			if !ok {
				return nil, nil, false
			}
			return builder.NodeAtPosition(diag.File, text, diag.Start)
		},
	}
}

func (p *Planner) riskOf(fix candidate.Fix) candidate.Risk {
	if fix.RiskHint != "" {
		return fix.RiskHint
	}
	return score.Risk(fix.FixName)
}

// Plan runs the best-first repair loop to completion (or until a budget,
// iteration, or cancellation limit is hit) and returns the result.
func (p *Planner) Plan() (plan.Plan, error) {
	initial, err := p.host.GetDiagnostics()
	if err != nil {
		return plan.Plan{}, err
	}
	p.updateFilesWithErrors(initial)
	initialCount := len(initial)

	var steps []plan.VerifiedFix

	for p.iteration < p.opts.MaxIterations {
		if p.opts.cancelled() {
			p.budgetExhausted = true
			break
		}
		p.iteration++
		current, err := p.host.GetDiagnostics()
		if err != nil {
			return plan.Plan{}, err
		}
		if len(current) == 0 {
			break
		}
		p.updateFilesWithErrors(current)

		var best *candidateOutcome
		iterCandidates := 0
		// budgetHit, once set, still lets the current diagnostic's
		// partial result join the best-candidate comparison below;
		// only after that does the outer loop stop, so a candidate
		// already verified before the cap was hit is not discarded.
		budgetHit := false

	diagLoop:
		for _, diag := range current {
			if cached, ok := p.outcomeCache[diag]; ok {
				if cached != nil && (best == nil || betterCandidate(cached.score, cached.risk, cached.result.EditSize, best)) {
					best = cached
				}
				continue diagLoop
			}
			if p.candidatesVerified >= p.opts.MaxVerifications {
				p.budgetExhausted = true
				budgetHit = true
				break diagLoop
			}
			if iterCandidates >= p.opts.MaxCandidatesPerIteration {
				break diagLoop
			}
			if p.opts.cancelled() {
				p.budgetExhausted = true
				budgetHit = true
				break diagLoop
			}

			ctx := p.ctxFor(diag, current)
			native, err := p.host.GetCodeFixes(diag)
			if err != nil {
				native = nil
			}
			var raw []candidate.Fix
			for _, a := range native {
				raw = append(raw, candidate.Fix{
					Kind:         candidate.Native,
					FixName:      a.Name(),
					Description:  a.Description(),
					NativeAction: a,
					ScopeHint:    candidate.ScopeModified,
				})
			}
			raw = append(raw, p.registry.GenerateCandidates(ctx)...)
			p.candidatesGenerated += len(raw)
			p.opts.Logger.Log(telemetry.CandidatesGenerated, map[string]any{
				"diagnostic": diag.Message, "count": len(raw),
			})

			remainingIterBudget := p.opts.MaxCandidatesPerIteration - iterCandidates
			limit := p.opts.MaxCandidates
			if remainingIterBudget < limit {
				limit = remainingIterBudget
			}
			pruned := prune(raw, limit, p.host)
			iterCandidates += len(pruned)

			var found *candidateOutcome
			for _, fix := range pruned {
				if p.candidatesVerified >= p.opts.MaxVerifications {
					p.budgetExhausted = true
					budgetHit = true
					break
				}
				risk := p.riskOf(fix)
				if risk == candidate.RiskHigh && !p.opts.IncludeHighRisk {
					continue
				}
				p.opts.Logger.Log(telemetry.VerificationStart, map[string]any{
					"fixName": fix.FixName, "diagnostic": diag.Message,
				})
				result, err := p.verify(diag, fix)
				p.candidatesVerified++
				p.opts.Logger.Log(telemetry.VerificationEnd, map[string]any{
					"fixName": fix.FixName, "targetFixed": err == nil && result.TargetFixed,
				})
				if p.guard.RecordVerification() {
					p.host.Reset()
				}
				if err != nil {
					continue
				}
				if !result.TargetFixed {
					continue
				}
				if !p.opts.AllowRegressions && len(result.NewDiagnostics) > 0 {
					continue
				}
				if result.ErrorsBefore-result.ErrorsAfter <= 0 {
					continue
				}
				if result.ResolvedWeight == 0 {
					continue
				}
				s := score.Score(p.opts.Strategy, score.Result{
					ResolvedWeight:   result.ResolvedWeight,
					IntroducedWeight: result.IntroducedWeight,
					EditSize:         result.EditSize,
					Risk:             risk,
					ErrorsBefore:     result.ErrorsBefore,
					ErrorsAfter:      result.ErrorsAfter,
				}, p.opts.Weights)
				if s <= 0 {
					continue
				}
				if found == nil || betterCandidate(s, risk, result.EditSize, found) {
					found = &candidateOutcome{diag: diag, fix: fix, result: result, risk: risk, score: s}
				}
			}
			if !budgetHit {
				p.outcomeCache[diag] = found
			}
			if found != nil && (best == nil || betterCandidate(found.score, found.risk, found.result.EditSize, best)) {
				best = found
			}
			if budgetHit {
				break diagLoop
			}
		}

		if best != nil {
			touched := cone.ModifiedFiles(candidate.GetChanges(best.fix, p.host))
			touched[best.diag.File] = struct{}{}
			if err := p.commit(best); err != nil {
				return plan.Plan{}, err
			}
			delete(p.outcomeCache, best.diag)
			p.invalidateOutcomeCache(touched)
			id := "fix-" + strconv.Itoa(len(steps)+1)
			steps = append(steps, plan.VerifiedFix{
				ID:           id,
				Diagnostic:   best.diag,
				FixName:      best.fix.FixName,
				Description:  best.fix.Description,
				Changes:      candidate.Normalize(candidate.GetChanges(best.fix, p.host)),
				ErrorsBefore: best.result.ErrorsBefore,
				ErrorsAfter:  best.result.ErrorsAfter,
				Risk:         best.risk,
				Dependencies: plan.Dependencies{
					ExclusiveGroup: best.fix.Metadata["exclusiveGroup"],
				},
			})
			p.opts.Logger.Log(telemetry.FixCommitted, map[string]any{"id": id, "fixName": best.fix.FixName})
		}
		if best == nil || budgetHit {
			break
		}
	}

	final, err := p.host.GetDiagnostics()
	if err != nil {
		return plan.Plan{}, err
	}
	remaining := p.classifyRemaining(final)

	conflicts := plan.ConflictsWith(steps, p.host)
	for i := range steps {
		steps[i].Dependencies.ConflictsWith = conflicts[steps[i].ID]
	}

	result := plan.Plan{
		Steps:     steps,
		Remaining: remaining,
		Batches:   plan.Batches(steps, p.host),
		Summary: plan.Summary{
			InitialErrors:  initialCount,
			FinalErrors:    len(final),
			FixedCount:     len(steps),
			RemainingCount: len(remaining),
			Budget: plan.Budget{
				CandidatesGenerated: p.candidatesGenerated,
				CandidatesVerified:  p.candidatesVerified,
				VerificationBudget:  p.opts.MaxVerifications,
				BudgetExhausted:     p.budgetExhausted,
			},
		},
	}
	if p.budgetExhausted {
		p.opts.Logger.Log(telemetry.BudgetExhausted, map[string]any{"candidatesVerified": p.candidatesVerified})
	}
	return result, nil
}

// betterCandidate reports whether a new candidate with the given
// score/risk/editSize improves on best. Ties break risk ascending, then
// edit size ascending, then insertion order ascending -- insertion
// order is preserved by only replacing on strict improvement.
func betterCandidate(s float64, risk candidate.Risk, editSize int, best *candidateOutcome) bool {
	if s != best.score {
		return s > best.score
	}
	if riskOrder(risk) != riskOrder(best.risk) {
		return riskOrder(risk) < riskOrder(best.risk)
	}
	return editSize < best.result.EditSize
}

func (p *Planner) commit(best *candidateOutcome) error {
	return p.apply(best.fix)
}

// classifyRemaining labels every diagnostic still present after the
// loop ends.
func (p *Planner) classifyRemaining(remaining []host.Diagnostic) []classify.Classified {
	out := make([]classify.Classified, 0, len(remaining))
	sorted := make([]host.Diagnostic, len(remaining))
	copy(sorted, remaining)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Code < sorted[j].Code
	})

	for _, d := range sorted {
		if p.budgetExhausted {
			disp, n := classify.Classify(true, nil, true)
			out = append(out, classify.Classified{Diagnostic: d, Disposition: disp, CandidateCount: n})
			continue
		}
		native, _ := p.host.GetCodeFixes(d)
		ctx := p.ctxFor(d, remaining)
		raw := append([]candidate.Fix{}, p.registry.GenerateCandidates(ctx)...)
		for _, a := range native {
			raw = append(raw, candidate.Fix{Kind: candidate.Native, FixName: a.Name(), NativeAction: a, ScopeHint: candidate.ScopeModified})
		}
		pruned := prune(raw, p.opts.MaxCandidates, p.host)

		var outcomes []classify.VerifiedCandidate
		for _, fix := range pruned {
			if p.candidatesVerified >= p.opts.MaxVerifications {
				p.budgetExhausted = true
				break
			}
			risk := p.riskOf(fix)
			result, err := p.verify(d, fix)
			p.candidatesVerified++
			if err != nil {
				continue
			}
			s := score.Score(p.opts.Strategy, score.Result{
				ResolvedWeight:   result.ResolvedWeight,
				IntroducedWeight: result.IntroducedWeight,
				EditSize:         result.EditSize,
				Risk:             risk,
				ErrorsBefore:     result.ErrorsBefore,
				ErrorsAfter:      result.ErrorsAfter,
			}, p.opts.Weights)
			fixedAndClean := result.TargetFixed && (p.opts.AllowRegressions || len(result.NewDiagnostics) == 0)
			outcomes = append(outcomes, classify.VerifiedCandidate{
				TargetFixed:    fixedAndClean,
				Score:          s,
				ResolvedWeight: result.ResolvedWeight,
				RiskHigh:       risk == candidate.RiskHigh,
			})
		}

		disp, n := classify.Classify(len(raw) > 0, outcomes, p.budgetExhausted)
		out = append(out, classify.Classified{Diagnostic: d, Disposition: disp, CandidateCount: n})
	}
	return out
}
