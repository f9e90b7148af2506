package builder

import (
	"regexp"
	"strings"

	"oraclerepair/internal/candidate"
	"oraclerepair/internal/host"
)

var mismatchRE = regexp.MustCompile(`cannot use .* as .* value`)

// CatchAllAdapterBuilder proposes a structural, high-risk fix for an
// argument/value type mismatch the checker has no quick fix for: it
// wraps the text from the diagnostic's start to the end of its line in
// an any(...) conversion. This is deliberately coarse: a registered
// synthetic builder proposing a catch-all overload, suppressed by
// default via risk=high and Options.IncludeHighRisk.
type CatchAllAdapterBuilder struct{}

func (b *CatchAllAdapterBuilder) Name() string           { return "addCatchAllOverload" }
func (b *CatchAllAdapterBuilder) Description() string    { return "Insert a catch-all type adapter" }
func (b *CatchAllAdapterBuilder) DiagnosticCodes() []int { return []int{1007} }
func (b *CatchAllAdapterBuilder) MessagePatterns() []*regexp.Regexp {
	return []*regexp.Regexp{mismatchRE}
}

func (b *CatchAllAdapterBuilder) Matches(ctx Context) bool {
	return mismatchRE.MatchString(ctx.Diagnostic.Message)
}

func (b *CatchAllAdapterBuilder) Generate(ctx Context) ([]candidate.Fix, error) {
	text, ok := ctx.GetSourceFile(ctx.Diagnostic.File)
	if !ok {
		return nil, nil
	}
	start := ctx.Diagnostic.Start
	if start < 0 || start > len(text) {
		return nil, nil
	}
	lineEnd := start + strings.IndexByte(text[start:], '\n')
	if lineEnd < start {
		lineEnd = len(text)
	}
	return []candidate.Fix{{
		Kind:        candidate.Synthetic,
		FixName:     b.Name(),
		Description: "Wrap the mismatched value in a generic adapter",
		Changes: []host.FileChange{
			{File: ctx.Diagnostic.File, Start: start, End: start, NewText: "any("},
			{File: ctx.Diagnostic.File, Start: lineEnd, End: lineEnd, NewText: ")"},
		},
		ScopeHint: candidate.ScopeWide,
		RiskHint:  candidate.RiskHigh,
		Tags:      []string{"structural"},
	}}, nil
}
