package planner

import (
	"oraclerepair/internal/candidate"
	"oraclerepair/internal/cone"
	"oraclerepair/internal/host"
	"oraclerepair/internal/policy"
	"oraclerepair/internal/score"
)

// verifyResult is one verification cycle's measured effect.
type verifyResult struct {
	TargetFixed         bool
	NewDiagnostics      []host.Diagnostic
	ResolvedDiagnostics []host.Diagnostic
	ResolvedWeight      float64
	IntroducedWeight    float64
	EditSize            int
	ErrorsBefore        int
	ErrorsAfter         int
}

func weightOf(d host.Diagnostic) float64 {
	switch d.Severity {
	case host.Warning:
		return float64(score.WeightWarning)
	case host.Suggestion:
		return float64(score.WeightSuggestion)
	case host.Message:
		return float64(score.WeightMessage)
	default:
		return float64(score.WeightError)
	}
}

func byKey(diags []host.Diagnostic) map[host.DiagKey]host.Diagnostic {
	m := make(map[host.DiagKey]host.Diagnostic, len(diags))
	for _, d := range diags {
		m[d.Key()] = d
	}
	return m
}

func filterByFiles(diags []host.Diagnostic, files map[string]struct{}) []host.Diagnostic {
	var out []host.Diagnostic
	for _, d := range diags {
		if _, ok := files[d.File]; ok {
			out = append(out, d)
		}
	}
	return out
}

// verify snapshots the VFS, measures diagnostics before and after
// speculatively applying fix, restores the snapshot unconditionally,
// and returns the measured effect, scoped to fix's verification cone.
// The snapshot is always released, even on error, so a failed
// verification never leaves the VFS in a speculative state.
func (p *Planner) verify(diag host.Diagnostic, fix candidate.Fix) (verifyResult, error) {
	v := p.host.GetVFS()
	modified := cone.ModifiedFiles(candidate.GetChanges(fix, p.host))
	modified[diag.File] = struct{}{}

	scopeHint := cone.Scope(fix.ScopeHint)
	c := cone.Build(modified, scopeHint, p.opts.Policy, cone.Context{
		FilesWithErrors: p.filesWithErrors,
		ReverseDeps:     nil,
		Iteration:       p.iteration,
	})

	tok, err := v.Snapshot()
	if err != nil {
		return verifyResult{}, err
	}
	defer func() {
		_ = v.Restore(tok)
		p.invalidateHost(modified, c)
	}()

	before, err := p.beforeDiagnostics(c)
	if err != nil {
		return verifyResult{}, err
	}

	if err := p.apply(fix); err != nil {
		return verifyResult{}, err
	}

	allAfter, err := p.host.GetDiagnostics()
	if err != nil {
		return verifyResult{}, err
	}
	after := filterByFiles(allAfter, c.Files)

	beforeByKey := byKey(before)
	afterByKey := byKey(after)

	_, targetStillPresent := afterByKey[diag.Key()]
	result := verifyResult{
		TargetFixed:  !targetStillPresent,
		ErrorsBefore: len(before),
		ErrorsAfter:  len(after),
		EditSize:     candidate.EditSize(fix, p.host),
	}
	for k, d := range afterByKey {
		if _, ok := beforeByKey[k]; !ok {
			result.NewDiagnostics = append(result.NewDiagnostics, d)
			result.IntroducedWeight += weightOf(d)
		}
	}
	for k, d := range beforeByKey {
		if _, ok := afterByKey[k]; !ok {
			result.ResolvedDiagnostics = append(result.ResolvedDiagnostics, d)
			result.ResolvedWeight += weightOf(d)
		}
	}
	return result, nil
}

// invalidateHost tells the host which file versions advanced after a
// speculative apply was rolled back, at the granularity the policy's
// hostInvalidation setting asks for.
func (p *Planner) invalidateHost(modified map[string]struct{}, c cone.Cone) {
	switch p.opts.Policy.HostInvalidation {
	case policy.InvalidateModified:
		for f := range modified {
			p.host.NotifyFileChanged(f)
		}
	case policy.InvalidateCone:
		for f := range c.Files {
			p.host.NotifyFileChanged(f)
		}
	default:
		p.host.NotifyAllFilesChanged()
	}
}

// beforeDiagnostics returns the diagnostics observed in c's files,
// consulting the before-diagnostics cache first when enabled.
func (p *Planner) beforeDiagnostics(c cone.Cone) ([]host.Diagnostic, error) {
	if p.opts.Policy.CacheBeforeDiagnostics {
		if cached, ok := p.cache.Get(c.Signature); ok {
			return cached, nil
		}
	}
	all, err := p.host.GetDiagnostics()
	if err != nil {
		return nil, err
	}
	scoped := filterByFiles(all, c.Files)
	if p.opts.Policy.CacheBeforeDiagnostics {
		p.cache.Put(c.Signature, scoped)
	}
	return scoped, nil
}

// apply applies fix to the VFS via the host: native fixes go through
// host.ApplyFix, synthetic fixes are applied directly and then
// announced to the host per touched file.
func (p *Planner) apply(fix candidate.Fix) error {
	if fix.Kind == candidate.Native {
		return p.host.ApplyFix(fix.NativeAction)
	}
	v := p.host.GetVFS()
	if err := candidate.Apply(v, fix, p.host); err != nil {
		return err
	}
	for f := range candidate.GetModifiedFiles(fix, p.host) {
		p.host.NotifyFileChanged(f)
	}
	return nil
}
