// Package builder is the solution-builder registry: it routes a
// diagnostic to the synthesizers willing to propose a fix for it, the
// way gopls/internal/golang/fix.go's fixer table routes a diagnostic
// message to a fix-constructing function, generalized into an open,
// registerable set of builders instead of one closed switch statement.
package builder

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"

	"oraclerepair/internal/candidate"
	"oraclerepair/internal/host"
)

// Context carries what a builder needs to decide whether it applies
// and to construct its candidates.
type Context struct {
	Diagnostic         host.Diagnostic
	Host               host.TypeCheckHost
	FilesWithErrors    map[string]int // file -> error count
	CurrentDiagnostics []host.Diagnostic
	Options            host.CompilerOptions

	// GetSourceFile lazily returns the current text of path.
	GetSourceFile func(path string) (string, bool)

	// GetNodeAtPosition lazily parses Diagnostic.File and returns the
	// enclosing-node path for Diagnostic's position: path[0] is the
	// innermost node containing it, the last element the *ast.File
	// root. See NodeAtPosition for the shared implementation, grounded
	// on astutil.PathEnclosingInterval.
	GetNodeAtPosition func() (path []ast.Node, fset *token.FileSet, ok bool)
}

// SolutionBuilder synthesizes candidate fixes for diagnostics it
// recognizes. Matches must be cheap: string/code checks only, no AST
// work.
type SolutionBuilder interface {
	Name() string
	Description() string
	// DiagnosticCodes, if non-empty, indexes this builder by exact
	// diagnostic code.
	DiagnosticCodes() []int
	// MessagePatterns, if non-empty, indexes this builder by a regex
	// over the diagnostic's flattened message.
	MessagePatterns() []*regexp.Regexp
	Matches(ctx Context) bool
	Generate(ctx Context) ([]candidate.Fix, error)
}

// Registry indexes builders by diagnostic code and message pattern and
// dispatches diagnostics to the ones willing to handle them.
type Registry struct {
	builders  []SolutionBuilder
	byCode    map[int][]SolutionBuilder
	byPattern []SolutionBuilder // builders with message patterns; matched by regex at query time
	catchAll  []SolutionBuilder
	onError   func(builderName string, diag host.Diagnostic, err error)
}

// NewRegistry returns an empty registry. Pass onError to observe
// skipped builders; nil is fine.
func NewRegistry(onError func(builderName string, diag host.Diagnostic, err error)) *Registry {
	return &Registry{
		byCode:  make(map[int][]SolutionBuilder),
		onError: onError,
	}
}

// Register adds b to the registry, in call order. Order is the
// registry's tie-break for candidate_builders' stable ordering.
func (r *Registry) Register(b SolutionBuilder) {
	r.builders = append(r.builders, b)
	codes := b.DiagnosticCodes()
	patterns := b.MessagePatterns()
	if len(codes) == 0 && len(patterns) == 0 {
		r.catchAll = append(r.catchAll, b)
		return
	}
	for _, c := range codes {
		r.byCode[c] = append(r.byCode[c], b)
	}
	if len(patterns) > 0 {
		r.byPattern = append(r.byPattern, b)
	}
}

// CandidateBuilders returns the union of code-indexed, pattern-indexed,
// and catch-all builders for diag, deduplicated, in registration order.
func (r *Registry) CandidateBuilders(diag host.Diagnostic) []SolutionBuilder {
	seen := make(map[SolutionBuilder]bool)
	var out []SolutionBuilder
	add := func(b SolutionBuilder) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, b := range r.byCode[diag.Code] {
		add(b)
	}
	flat := diag.Key().Message // patterns match against the flattened message
	for _, b := range r.byPattern {
		for _, p := range b.MessagePatterns() {
			if p.MatchString(flat) {
				add(b)
				break
			}
		}
	}
	for _, b := range r.catchAll {
		add(b)
	}
	// Preserve overall registration order among the union.
	order := make(map[SolutionBuilder]int, len(r.builders))
	for i, b := range r.builders {
		order[b] = i
	}
	sortStableByOrder(out, order)
	return out
}

func sortStableByOrder(bs []SolutionBuilder, order map[SolutionBuilder]int) {
	for i := 1; i < len(bs); i++ {
		for j := i; j > 0 && order[bs[j-1]] > order[bs[j]]; j-- {
			bs[j-1], bs[j] = bs[j], bs[j-1]
		}
	}
}

// MatchingBuilders filters CandidateBuilders(ctx.Diagnostic) by Matches.
func (r *Registry) MatchingBuilders(ctx Context) []SolutionBuilder {
	var out []SolutionBuilder
	for _, b := range r.CandidateBuilders(ctx.Diagnostic) {
		if func() (matched bool) {
			defer func() {
				if rec := recover(); rec != nil {
					matched = false
					r.reportError(b, ctx.Diagnostic, fmt.Errorf("panic: %v", rec))
				}
			}()
			return b.Matches(ctx)
		}() {
			out = append(out, b)
		}
	}
	return out
}

// GenerateCandidates concatenates Generate(ctx) across every matching
// builder. A builder whose Matches or Generate fails is skipped with a
// logged reason; the rest still contribute.
func (r *Registry) GenerateCandidates(ctx Context) []candidate.Fix {
	var out []candidate.Fix
	for _, b := range r.MatchingBuilders(ctx) {
		fixes, err := r.safeGenerate(b, ctx)
		if err != nil {
			r.reportError(b, ctx.Diagnostic, err)
			continue
		}
		out = append(out, fixes...)
	}
	return out
}

func (r *Registry) safeGenerate(b SolutionBuilder, ctx Context) (fixes []candidate.Fix, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return b.Generate(ctx)
}

func (r *Registry) reportError(b SolutionBuilder, diag host.Diagnostic, err error) {
	if r.onError != nil {
		r.onError(b.Name(), diag, err)
	}
}
