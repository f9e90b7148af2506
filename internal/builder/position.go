package builder

import (
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// NodeAtPosition parses src and returns the enclosing-node path for
// the byte offset within it: path[0] is the innermost node containing
// offset, the last element the *ast.File root. It is the shared
// implementation behind Context.GetNodeAtPosition, built on
// astutil.PathEnclosingInterval, the same lookup
// gopls/internal/golang's code actions use to find the node a fix
// should edit. ok is false if src fails to parse or offset falls
// outside it.
func NodeAtPosition(filename, src string, offset int) (path []ast.Node, fset *token.FileSet, ok bool) {
	fset = token.NewFileSet()
	file, _ := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if file == nil {
		return nil, nil, false
	}
	tf := fset.File(file.Pos())
	if tf == nil || offset < 0 || offset > tf.Size() {
		return nil, nil, false
	}
	pos := tf.Pos(offset)
	p, _ := astutil.PathEnclosingInterval(file, pos, pos)
	if len(p) == 0 {
		return nil, nil, false
	}
	return p, fset, true
}
