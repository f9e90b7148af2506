package planner

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"oraclerepair/internal/builder"
	"oraclerepair/internal/candidate"
	"oraclerepair/internal/classify"
	"oraclerepair/internal/host"
	"oraclerepair/internal/telemetry"
)

func fmtFile(pkg string) string {
	return "package main\n\nfunc main() {\n\t" + pkg + ".Foo()\n}\n"
}

func TestPlanFixesSingleMissingImport(t *testing.T) {
	files := map[string]string{"a.go": fmtFile("fmt")}
	rules := []diagRule{missingImportRule("a.go", "fmt", "Foo")}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(builder.PackageIndex{"fmt": nil}, nil)

	p := New(h, reg, DefaultOptions())
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.Summary.InitialErrors != 1 {
		t.Errorf("InitialErrors = %d, want 1", result.Summary.InitialErrors)
	}
	if result.Summary.FinalErrors != 0 {
		t.Errorf("FinalErrors = %d, want 0", result.Summary.FinalErrors)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("Steps = %d, want 1", len(result.Steps))
	}
	if result.Steps[0].FixName != "fixMissingImport" {
		t.Errorf("FixName = %q, want fixMissingImport", result.Steps[0].FixName)
	}
	if len(result.Remaining) != 0 {
		t.Errorf("Remaining = %v, want empty", result.Remaining)
	}
}

func TestPlanFixesTenIndependentMissingImportsUnderBudget(t *testing.T) {
	const n = 10
	files := make(map[string]string, n)
	var rules []diagRule
	pkgIndex := builder.PackageIndex{}
	for i := 0; i < n; i++ {
		pkg := fmt.Sprintf("pkg%d", i)
		file := fmt.Sprintf("f%d.go", i)
		files[file] = fmtFile(pkg)
		rules = append(rules, missingImportRule(file, pkg, "Foo"))
		pkgIndex[pkg] = nil
	}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(pkgIndex, nil)

	p := New(h, reg, DefaultOptions())
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != n {
		t.Fatalf("Steps = %d, want %d", len(result.Steps), n)
	}
	if result.Summary.FinalErrors != 0 {
		t.Errorf("FinalErrors = %d, want 0", result.Summary.FinalErrors)
	}
	if result.Summary.Budget.CandidatesVerified >= 30 {
		t.Errorf("CandidatesVerified = %d, want < 30", result.Summary.Budget.CandidatesVerified)
	}
}

func mismatchFile() string {
	return "package main\n\nfunc main() {\n\tvar x int = y\n}\n"
}

func TestPlanSuppressesHighRiskCatchAllByDefault(t *testing.T) {
	files := map[string]string{"b.go": mismatchFile()}
	rules := []diagRule{typeMismatchRule("b.go")}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(nil, nil)

	p := New(h, reg, DefaultOptions())
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("Steps = %v, want none committed with includeHighRisk=false", result.Steps)
	}
	if len(result.Remaining) != 1 {
		t.Fatalf("Remaining = %v, want exactly one entry", result.Remaining)
	}
	if result.Remaining[0].Disposition != classify.AutoFixableHighRisk {
		t.Errorf("Disposition = %v, want AutoFixableHighRisk", result.Remaining[0].Disposition)
	}
	if result.Remaining[0].CandidateCount != 1 {
		t.Errorf("CandidateCount = %d, want 1", result.Remaining[0].CandidateCount)
	}
}

func TestPlanCommitsHighRiskCatchAllWhenIncluded(t *testing.T) {
	files := map[string]string{"b.go": mismatchFile()}
	rules := []diagRule{typeMismatchRule("b.go")}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(nil, nil)

	opts := DefaultOptions()
	opts.IncludeHighRisk = true
	p := New(h, reg, opts)
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("Steps = %d, want 1", len(result.Steps))
	}
	if result.Steps[0].FixName != "addCatchAllOverload" {
		t.Errorf("FixName = %q, want addCatchAllOverload", result.Steps[0].FixName)
	}
	if result.Steps[0].Risk != "high" {
		t.Errorf("Risk = %q, want high", result.Steps[0].Risk)
	}
	if result.Summary.FinalErrors != 0 {
		t.Errorf("FinalErrors = %d, want 0", result.Summary.FinalErrors)
	}
}

func TestPlanStopsAtVerificationBudget(t *testing.T) {
	const n = 200
	files := make(map[string]string, n)
	var rules []diagRule
	pkgIndex := builder.PackageIndex{}
	for i := 0; i < n; i++ {
		pkg := fmt.Sprintf("pkg%d", i)
		file := fmt.Sprintf("f%03d.go", i)
		files[file] = fmtFile(pkg)
		rules = append(rules, missingImportRule(file, pkg, "Foo"))
		pkgIndex[pkg] = nil
	}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(pkgIndex, nil)

	opts := DefaultOptions()
	opts.MaxVerifications = 50
	p := New(h, reg, opts)
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if result.Summary.Budget.CandidatesVerified != 50 {
		t.Errorf("CandidatesVerified = %d, want 50", result.Summary.Budget.CandidatesVerified)
	}
	if !result.Summary.Budget.BudgetExhausted {
		t.Error("expected BudgetExhausted = true")
	}
	if len(result.Steps) == 0 {
		t.Fatal("expected the best candidate found before the cap to still be committed, got no steps")
	}
	if len(result.Steps) > 50 {
		t.Errorf("FixedCount = %d, want <= 50", len(result.Steps))
	}
	if result.Summary.FixedCount != len(result.Steps) {
		t.Errorf("Summary.FixedCount = %d, want %d", result.Summary.FixedCount, len(result.Steps))
	}
	if result.Summary.FinalErrors != n-len(result.Steps) {
		t.Errorf("FinalErrors = %d, want %d", result.Summary.FinalErrors, n-len(result.Steps))
	}
	for _, c := range result.Remaining {
		if c.Disposition != classify.NeedsJudgment {
			t.Errorf("Disposition = %v, want NeedsJudgment for %s", c.Disposition, c.File)
		}
		if c.CandidateCount != 0 {
			t.Errorf("CandidateCount = %d, want 0 for %s", c.CandidateCount, c.File)
		}
	}
}

func unfixableFile() string {
	return "package main\n\nfunc main() {\n\tpanic(\"x\")\n}\n"
}

func TestPlanClassifiesNoGeneratedCandidate(t *testing.T) {
	files := map[string]string{"c.go": unfixableFile()}
	rules := []diagRule{unfixableRule("c.go")}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(nil, nil)

	p := New(h, reg, DefaultOptions())
	result, err := p.Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("Steps = %v, want none", result.Steps)
	}
	if len(result.Remaining) != 1 {
		t.Fatalf("Remaining = %v, want exactly one entry", result.Remaining)
	}
	if result.Remaining[0].Disposition != classify.NoGeneratedCandidate {
		t.Errorf("Disposition = %v, want NoGeneratedCandidate", result.Remaining[0].Disposition)
	}
	if result.Remaining[0].CandidateCount != 0 {
		t.Errorf("CandidateCount = %d, want 0", result.Remaining[0].CandidateCount)
	}
}

// mixedScenario builds a project with one fixable missing import, one
// high-risk-only mismatch, and one unfixable diagnostic, exercising
// commit, suppression, and classification in a single plan.
func mixedScenario() (*fakeHost, *builder.Registry) {
	files := txtarFiles(`
-- a.go --
package main

func main() {
	fmt.Foo()
}
-- b.go --
package main

func main() {
	var x int = y
}
-- c.go --
package main

func main() {
	panic("x")
}
`)
	rules := []diagRule{
		missingImportRule("a.go", "fmt", "Foo"),
		typeMismatchRule("b.go"),
		unfixableRule("c.go"),
	}
	h := newFakeHost(files, rules)
	reg := builder.DefaultRegistry(builder.PackageIndex{"fmt": nil}, nil)
	return h, reg
}

func TestPlanDeterministic(t *testing.T) {
	run := func() any {
		h, reg := mixedScenario()
		p := New(h, reg, DefaultOptions())
		result, err := p.Plan()
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		return result
	}
	first := run()
	second := run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two identical plans differ (-first +second):\n%s", diff)
	}
}

func TestCommittedFixesStrictlyImprove(t *testing.T) {
	h, reg := mixedScenario()
	opts := DefaultOptions()
	opts.IncludeHighRisk = true
	result, err := New(h, reg, opts).Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("Steps = %d, want 2 (import fix + high-risk adapter)", len(result.Steps))
	}
	for _, s := range result.Steps {
		if s.ErrorsBefore <= s.ErrorsAfter {
			t.Errorf("%s: ErrorsBefore=%d ErrorsAfter=%d, want a strict reduction", s.ID, s.ErrorsBefore, s.ErrorsAfter)
		}
		if s.Delta() <= 0 {
			t.Errorf("%s: Delta = %d, want > 0", s.ID, s.Delta())
		}
	}
}

func TestPlanEmitsBudgetEvents(t *testing.T) {
	h, reg := mixedScenario()
	rec := telemetry.NewRecorder()
	opts := DefaultOptions()
	opts.Logger = rec
	if _, err := New(h, reg, opts).Plan(); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	counts := map[telemetry.Kind]int{}
	lastSeq := 0
	for _, e := range rec.Events() {
		counts[e.Kind]++
		if e.Seq <= lastSeq {
			t.Errorf("non-monotonic Seq %d after %d", e.Seq, lastSeq)
		}
		lastSeq = e.Seq
	}
	if counts[telemetry.CandidatesGenerated] == 0 {
		t.Error("expected candidates_generated events")
	}
	if counts[telemetry.VerificationStart] == 0 || counts[telemetry.VerificationStart] != counts[telemetry.VerificationEnd] {
		t.Errorf("verification events unbalanced: start=%d end=%d",
			counts[telemetry.VerificationStart], counts[telemetry.VerificationEnd])
	}
	if counts[telemetry.FixCommitted] != 1 {
		t.Errorf("fix_committed events = %d, want 1", counts[telemetry.FixCommitted])
	}
}

func TestPlanCancellation(t *testing.T) {
	h, reg := mixedScenario()
	cancel := make(chan struct{})
	close(cancel)
	opts := DefaultOptions()
	opts.Cancel = cancel

	result, err := New(h, reg, opts).Plan()
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(result.Steps) != 0 {
		t.Errorf("Steps = %v, want none after pre-cancelled run", result.Steps)
	}
	if !result.Summary.Budget.BudgetExhausted {
		t.Error("cancellation should surface as BudgetExhausted")
	}
	for _, c := range result.Remaining {
		if c.Disposition != classify.NeedsJudgment || c.CandidateCount != 0 {
			t.Errorf("Remaining[%s] = (%v,%d), want (NeedsJudgment,0)", c.File, c.Disposition, c.CandidateCount)
		}
	}
}

func synthetic(name string, risk candidate.Risk, size int) candidate.Fix {
	text := make([]byte, size)
	for i := range text {
		text[i] = 'x'
	}
	return candidate.Fix{
		Kind:     candidate.Synthetic,
		FixName:  name,
		RiskHint: risk,
		Changes:  []host.FileChange{{File: "a.go", Start: 0, End: 0, NewText: string(text)}},
	}
}

func TestPruneOrdersByRiskThenEditSize(t *testing.T) {
	fixes := []candidate.Fix{
		synthetic("bigLow", candidate.RiskLow, 400),
		synthetic("medium", candidate.RiskMedium, 10),
		synthetic("smallLow", candidate.RiskLow, 10),
		synthetic("high", candidate.RiskHigh, 10),
	}
	got := prune(fixes, 3, nil)
	want := []string{"smallLow", "bigLow", "medium"}
	if len(got) != len(want) {
		t.Fatalf("prune returned %d fixes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].FixName != want[i] {
			t.Errorf("prune[%d] = %q, want %q", i, got[i].FixName, want[i])
		}
	}
}

func TestPruneTieBreaksByInsertionOrder(t *testing.T) {
	fixes := []candidate.Fix{
		synthetic("first", candidate.RiskLow, 10),
		synthetic("second", candidate.RiskLow, 10),
	}
	got := prune(fixes, 2, nil)
	if got[0].FixName != "first" || got[1].FixName != "second" {
		t.Errorf("prune tie-break = [%s %s], want insertion order", got[0].FixName, got[1].FixName)
	}
}
