// Package oraclerepair is the consumer API for the oracle-guided
// repair engine: given a project that currently fails
// type-checking, Plan produces a verified repair plan of edits each
// empirically shown, by re-invoking the type checker on a speculatively
// modified workspace, to reduce the diagnostic set without introducing
// new errors.
package oraclerepair

import (
	"go/ast"
	"go/token"
	"path/filepath"

	"oraclerepair/internal/builder"
	"oraclerepair/internal/host"
	"oraclerepair/internal/plan"
	"oraclerepair/internal/planner"
	"oraclerepair/internal/policy"
	"oraclerepair/internal/telemetry"
	"oraclerepair/internal/vfs"
)

// Options configures one Plan/Repair call. It wraps planner.Options
// with the handful of knobs a top-level caller sets directly; anything
// left zero-valued falls back to planner.DefaultOptions().
type Options struct {
	planner.Options
	// PackageIndex seeds the missing-import builder; nil disables
	// missing-import fixes.
	PackageIndex builder.PackageIndex
}

// DefaultOptions returns sensible defaults for a top-level caller.
func DefaultOptions() Options {
	return Options{Options: planner.DefaultOptions()}
}

// Plan type-checks the project at projectPath, runs the planner to
// completion, and returns the resulting RepairPlan.
func Plan(projectPath string, opts Options) (plan.Plan, error) {
	v, err := vfs.FromProject(projectPath)
	if err != nil {
		return plan.Plan{}, err
	}
	dir := projectPath
	if filepath.Ext(projectPath) != "" {
		dir = filepath.Dir(projectPath)
	}
	h := host.NewGoHost(dir, v)
	return planWithHost(h, opts)
}

func planWithHost(h host.TypeCheckHost, opts Options) (plan.Plan, error) {
	if opts.Logger == nil {
		opts.Logger = telemetry.Discard
	}
	if opts.Policy == (policy.Policy{}) {
		opts.Policy = policy.Default()
	}
	def := planner.DefaultOptions()
	if opts.MaxCandidates == 0 {
		opts.MaxCandidates = def.MaxCandidates
	}
	if opts.MaxCandidatesPerIteration == 0 {
		opts.MaxCandidatesPerIteration = def.MaxCandidatesPerIteration
	}
	if opts.MaxVerifications == 0 {
		opts.MaxVerifications = def.MaxVerifications
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Weights.RiskPenalty == nil {
		opts.Weights = def.Weights
	}
	registry := builder.DefaultRegistry(opts.PackageIndex, func(name string, d host.Diagnostic, err error) {
		opts.Logger.Log(telemetry.CandidatePruned, map[string]any{
			"builder": name, "diagnostic": d.Message, "reason": err.Error(),
		})
	})
	return planner.New(h, registry, opts.Options).Plan()
}

// Exit codes for CLI front-ends, pinning the engine's notion of
// success: a plan that leaves no diagnostics behind is a clean exit,
// one that leaves any is not, and failing to produce a plan at all is a
// tool error.
const (
	ExitClean             = 0
	ExitDiagnosticsRemain = 1
	ExitToolError         = 2
)

// ExitCode maps a finished plan to its CLI exit code.
func ExitCode(p plan.Plan) int {
	if p.Summary.FinalErrors == 0 {
		return ExitClean
	}
	return ExitDiagnosticsRemain
}

// Request is Repair's convenience input, aliasing Plan's parameters
// under names a CLI-style caller is more likely to reach for first.
type Request struct {
	ProjectPath string
	Options     Options
}

// Repair is Plan under an alternate call shape for callers that prefer
// passing a single request value plus an explicit logger.
func Repair(req Request, logger telemetry.Logger) (plan.Plan, error) {
	opts := req.Options
	if logger != nil {
		opts.Logger = logger
	}
	return Plan(req.ProjectPath, opts)
}

// BudgetPreview is Preview's result: how many candidates plan would
// consider, without actually verifying any of them.
type BudgetPreview struct {
	InitialErrors       int
	CandidatesGenerated int
}

// Preview type-checks the project and counts the native+synthetic
// candidates its diagnostics would generate, without speculatively
// applying or verifying any of them.
func Preview(projectPath string, opts Options) (BudgetPreview, error) {
	v, err := vfs.FromProject(projectPath)
	if err != nil {
		return BudgetPreview{}, err
	}
	dir := projectPath
	if filepath.Ext(projectPath) != "" {
		dir = filepath.Dir(projectPath)
	}
	h := host.NewGoHost(dir, v)

	diags, err := h.GetDiagnostics()
	if err != nil {
		return BudgetPreview{}, err
	}
	registry := builder.DefaultRegistry(opts.PackageIndex, nil)
	total := 0
	for _, d := range diags {
		native, _ := h.GetCodeFixes(d)
		total += len(native)
		ctx := builder.Context{
			Diagnostic:         d,
			Host:               h,
			CurrentDiagnostics: diags,
			Options:            h.GetOptions(),
			GetSourceFile: func(path string) (string, bool) {
				return h.GetVFS().GetContent(path)
			},
			GetNodeAtPosition: func() ([]ast.Node, *token.FileSet, bool) {
				text, ok := h.GetVFS().GetContent(d.File)
				if !ok {
					return nil, nil, false
				}
				return builder.NodeAtPosition(d.File, text, d.Start)
			},
		}
		total += len(registry.GenerateCandidates(ctx))
	}
	return BudgetPreview{InitialErrors: len(diags), CandidatesGenerated: total}, nil
}
