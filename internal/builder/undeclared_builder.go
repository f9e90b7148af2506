package builder

import (
	"go/ast"
	"regexp"

	"oraclerepair/internal/candidate"
	"oraclerepair/internal/host"
)

var undeclaredNameRE = regexp.MustCompile(`^undeclared name: (\w+)$`)

// UndeclaredNameBuilder proposes declaring a zero-valued variable for
// an "undeclared name: x" diagnostic, inserted at the start of the
// enclosing block. Like gopls/internal/golang/undeclared.go, it
// locates the enclosing node via astutil.PathEnclosingInterval before
// inserting the declaration; the lookup happens in Generate through
// Context.GetNodeAtPosition, keeping Matches cheap and AST-free.
type UndeclaredNameBuilder struct{}

func (b *UndeclaredNameBuilder) Name() string           { return "declareUndeclaredName" }
func (b *UndeclaredNameBuilder) Description() string    { return "Declare the undeclared name" }
func (b *UndeclaredNameBuilder) DiagnosticCodes() []int { return []int{1003} }
func (b *UndeclaredNameBuilder) MessagePatterns() []*regexp.Regexp {
	return []*regexp.Regexp{undeclaredNameRE}
}

func (b *UndeclaredNameBuilder) Matches(ctx Context) bool {
	return undeclaredNameRE.MatchString(ctx.Diagnostic.Message)
}

func (b *UndeclaredNameBuilder) Generate(ctx Context) ([]candidate.Fix, error) {
	m := undeclaredNameRE.FindStringSubmatch(ctx.Diagnostic.Message)
	if m == nil {
		return nil, nil
	}
	name := m[1]
	if ctx.GetNodeAtPosition == nil {
		return nil, nil
	}
	path, fset, ok := ctx.GetNodeAtPosition()
	if !ok {
		return nil, nil
	}
	block := enclosingBlock(path)
	if block == nil {
		return nil, nil
	}
	insertAt := fset.Position(block.Lbrace).Offset + 1
	decl := "\n\tvar " + name + " any"
	return []candidate.Fix{{
		Kind:        candidate.Synthetic,
		FixName:     b.Name(),
		Description: "Declare `" + name + "`",
		Changes: []host.FileChange{
			{File: ctx.Diagnostic.File, Start: insertAt, End: insertAt, NewText: decl},
		},
		ScopeHint: candidate.ScopeModified,
		RiskHint:  candidate.RiskMedium,
		Tags:      []string{"undeclared"},
	}}, nil
}

// enclosingBlock returns the nearest *ast.BlockStmt in path (innermost
// first), the block whose start is the right insertion point for a new
// declaration that the rest of the block can see.
func enclosingBlock(path []ast.Node) *ast.BlockStmt {
	for _, n := range path {
		if blk, ok := n.(*ast.BlockStmt); ok {
			return blk
		}
	}
	return nil
}
