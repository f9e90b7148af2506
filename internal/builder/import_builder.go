package builder

import (
	"bytes"
	"go/format"
	"go/parser"
	"go/token"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"oraclerepair/internal/candidate"
	"oraclerepair/internal/host"
)

var undefinedRE = regexp.MustCompile(`^undefined: (\w+)\.(\w+)$`)

// PackageIndex maps an import path to the identifiers it's known to
// export, so MissingImportBuilder can decide which import resolves an
// "undefined: pkg.Symbol" diagnostic. A real deployment would back
// this with the project's module graph; tests and small projects
// supply a literal table (see candidate scenario fixtures).
type PackageIndex map[string][]string // importPath -> exported identifiers, used only for reverse lookup by package name

// packageNameOf returns the conventional package name for an import
// path (its final path segment), the same heuristic
// gopls/internal/golang/add_import.go's callers use before consulting
// the module cache.
func packageNameOf(importPath string) string {
	if i := strings.LastIndexByte(importPath, '/'); i >= 0 {
		return importPath[i+1:]
	}
	return importPath
}

// MissingImportBuilder proposes adding an import statement when a
// diagnostic reports an undefined `pkg.Symbol` reference and pkg names
// a known import path. Unlike gopls/internal/golang/add_import.go,
// whose caller already has an import path in hand, this builder has to
// search a package index for the qualifier first; the insertion itself
// goes through astutil.AddImport, which handles the existing import
// block's shape.
type MissingImportBuilder struct {
	Index PackageIndex
}

func (b *MissingImportBuilder) Name() string           { return "fixMissingImport" }
func (b *MissingImportBuilder) Description() string    { return "Add a missing import" }
func (b *MissingImportBuilder) DiagnosticCodes() []int { return []int{1002} }
func (b *MissingImportBuilder) MessagePatterns() []*regexp.Regexp {
	return []*regexp.Regexp{undefinedRE}
}

func (b *MissingImportBuilder) Matches(ctx Context) bool {
	m := undefinedRE.FindStringSubmatch(ctx.Diagnostic.Message)
	if m == nil {
		return false
	}
	_, ok := b.resolve(m[1])
	return ok
}

func (b *MissingImportBuilder) resolve(qualifier string) (string, bool) {
	var matches []string
	for path := range b.Index {
		if packageNameOf(path) == qualifier {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

func (b *MissingImportBuilder) Generate(ctx Context) ([]candidate.Fix, error) {
	m := undefinedRE.FindStringSubmatch(ctx.Diagnostic.Message)
	if m == nil {
		return nil, nil
	}
	importPath, ok := b.resolve(m[1])
	if !ok {
		return nil, nil
	}
	text, ok := ctx.GetSourceFile(ctx.Diagnostic.File)
	if !ok {
		return nil, nil
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, ctx.Diagnostic.File, text, parser.ParseComments)
	if err != nil || file == nil {
		return nil, nil
	}
	if !astutil.AddImport(fset, file, importPath) {
		return nil, nil // already imported under some name
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, nil
	}
	newText := buf.String()
	if newText == text {
		return nil, nil
	}
	return []candidate.Fix{{
		Kind:        candidate.Synthetic,
		FixName:     b.Name(),
		Description: "Add import \"" + importPath + "\"",
		Changes:     []host.FileChange{shrinkToDiff(ctx.Diagnostic.File, text, newText)},
		ScopeHint:   candidate.ScopeModified,
		RiskHint:    candidate.RiskLow,
		Tags:        []string{"import"},
		Metadata:    map[string]string{"importPath": importPath},
	}}, nil
}

// shrinkToDiff trims the common prefix and suffix of old and new,
// returning a FileChange that replaces only the span that actually
// differs. format.Node reprints the whole file, but a single added
// import should still look like a small, localized edit rather than a
// whole-file replace once scored alongside line-level fixes.
func shrinkToDiff(file, old, updated string) host.FileChange {
	prefix := 0
	for prefix < len(old) && prefix < len(updated) && old[prefix] == updated[prefix] {
		prefix++
	}
	oldEnd, newEnd := len(old), len(updated)
	for oldEnd > prefix && newEnd > prefix && old[oldEnd-1] == updated[newEnd-1] {
		oldEnd--
		newEnd--
	}
	return host.FileChange{File: file, Start: prefix, End: oldEnd, NewText: updated[prefix:newEnd]}
}
