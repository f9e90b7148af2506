package builder

import (
	"go/ast"
	"testing"
)

func TestNodeAtPositionFindsEnclosingBlock(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tuse(x)\n}\n"
	start := len("package main\n\nfunc main() {\n\t") + len("use(")

	path, fset, ok := NodeAtPosition("a.go", src, start)
	if !ok {
		t.Fatal("expected NodeAtPosition to succeed")
	}
	if fset == nil {
		t.Fatal("expected a non-nil FileSet")
	}
	if enclosingBlock(path) == nil {
		t.Fatal("expected the path to contain an enclosing *ast.BlockStmt")
	}
	if _, ok := path[0].(*ast.Ident); !ok {
		t.Errorf("path[0] = %T, want *ast.Ident for the identifier at offset", path[0])
	}
}

func TestNodeAtPositionRejectsBadOffset(t *testing.T) {
	src := "package main\n"
	if _, _, ok := NodeAtPosition("a.go", src, len(src)+10); ok {
		t.Error("expected NodeAtPosition to fail for an out-of-range offset")
	}
	if _, _, ok := NodeAtPosition("a.go", "not valid go{{{", 0); ok {
		t.Error("expected NodeAtPosition to fail for unparsable source")
	}
}
