package host

import (
	"fmt"
	"go/token"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"oraclerepair/internal/vfs"
)

// pseudoCode assigns a stable small integer to a class of compiler
// diagnostic message, standing in for the target language's own
// numeric diagnostic codes (which go/types does not expose). Ordering
// only needs to be stable across re-checks of the same message, not
// globally meaningful.
var pseudoCodePatterns = []struct {
	code int
	re   *regexp.Regexp
}{
	{1001, regexp.MustCompile(`^".*" imported and not used`)},
	{1002, regexp.MustCompile(`^undefined: `)},
	{1003, regexp.MustCompile(`^undeclared name: `)},
	{1004, regexp.MustCompile(`declared (and|but) not used`)},
	{1005, regexp.MustCompile(`not enough arguments in call`)},
	{1006, regexp.MustCompile(`too many arguments in call`)},
	{1007, regexp.MustCompile(`cannot use .* as .* value`)},
	{1008, regexp.MustCompile(`missing return`)},
	{1009, regexp.MustCompile(`not used as value|used as value`)},
}

func pseudoCode(msg string) int {
	for _, p := range pseudoCodePatterns {
		if p.re.MatchString(msg) {
			return p.code
		}
	}
	return 1000
}

// simpleNativeAction is the only NativeAction implementation this
// host produces: a named, described bundle of FileChanges the host
// itself synthesized from a recognized diagnostic message shape. A
// real compiler's opaque code-fix actions would plug in here with a
// richer type; for Go, go/packages does not
// surface quick fixes, so the host offers a small built-in fixer table
// mirroring gopls/internal/golang/fix.go's message-driven dispatch.
type simpleNativeAction struct {
	name    string
	desc    string
	changes []FileChange
}

func (a *simpleNativeAction) Name() string        { return a.name }
func (a *simpleNativeAction) Description() string { return a.desc }

// GoHost is the Go-language instantiation of TypeCheckHost. It wraps
// golang.org/x/tools/go/packages the way gopls/internal/cache wraps it
// for its own Snapshot, using packages.Config.Overlay in place of
// gopls' overlayFS to present the VFS's speculative edits to the
// checker.
type GoHost struct {
	dir     string
	v       *vfs.VFS
	options CompilerOptions

	dirty       bool
	cachedDiags []Diagnostic
	versions    map[vfs.Path]int
	stats       HostStats
}

// NewGoHost constructs a host rooted at dir, backed by v. dir is
// typically the directory containing the project's go.mod.
func NewGoHost(dir string, v *vfs.VFS) *GoHost {
	return &GoHost{
		dir:      dir,
		v:        v,
		options:  CompilerOptions{GoVersion: runtime.Version()},
		dirty:    true,
		versions: make(map[vfs.Path]int),
	}
}

func (h *GoHost) overlay() map[string][]byte {
	names := h.v.GetFileNames()
	ov := make(map[string][]byte, len(names))
	for _, n := range names {
		text, _ := h.v.GetContent(n)
		ov[n] = []byte(text)
	}
	return ov
}

func (h *GoHost) load() ([]*packages.Package, error) {
	// NeedTypes makes the loader run the type checker so Package.Errors
	// carries type errors; NeedSyntax supplies the Fset used to convert
	// error positions to byte offsets. The host never inspects types or
	// syntax beyond that.
	cfg := &packages.Config{
		Dir: h.dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax,
		Overlay: h.overlay(),
	}
	return packages.Load(cfg, "./...")
}

// GetDiagnostics returns error-level diagnostics in deterministic
// order (file, start, code), re-checking only when the host has been
// told (via Notify*) that files changed since the last query.
func (h *GoHost) GetDiagnostics() ([]Diagnostic, error) {
	h.stats.DiagnosticsQueries++
	if !h.dirty && h.cachedDiags != nil {
		return h.cachedDiags, nil
	}
	pkgs, err := h.load()
	if err != nil {
		return nil, fmt.Errorf("host: load: %w", err)
	}
	var diags []Diagnostic
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			d, ok := diagFromPackagesError(pkg, e)
			if !ok {
				continue // skipped: could not be localized to a file
			}
			diags = append(diags, d)
		}
	})
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Code < b.Code
	})
	h.cachedDiags = diags
	h.dirty = false
	return diags, nil
}

func diagFromPackagesError(pkg *packages.Package, e packages.Error) (Diagnostic, bool) {
	file, line, col, ok := parseErrorPos(e.Pos)
	if !ok {
		return Diagnostic{}, false
	}
	start := offsetInFile(pkg, file, line, col)
	return Diagnostic{
		Code:     pseudoCode(e.Msg),
		Message:  e.Msg,
		Severity: Error,
		File:     file,
		Line:     line,
		Column:   col,
		Start:    start,
		Length:   0,
	}, true
}

func parseErrorPos(pos string) (file string, line, col int, ok bool) {
	if pos == "" || pos == "-" {
		return "", 0, 0, false
	}
	parts := strings.Split(pos, ":")
	if len(parts) < 2 {
		return "", 0, 0, false
	}
	col = 1
	var err error
	if len(parts) >= 3 {
		line, err = strconv.Atoi(parts[len(parts)-2])
		if err != nil {
			return "", 0, 0, false
		}
		col, err = strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			col = 1
		}
		file = strings.Join(parts[:len(parts)-2], ":")
	} else {
		line, err = strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return "", 0, 0, false
		}
		file = parts[0]
	}
	return file, line, col, true
}

// offsetInFile converts a 1-based line/column into a byte offset using
// the package's own Fset when the file's syntax was loaded, falling
// back to 0.
func offsetInFile(pkg *packages.Package, file string, line, col int) int {
	if pkg.Fset == nil {
		return 0
	}
	var tf *token.File
	pkg.Fset.Iterate(func(f *token.File) bool {
		if f.Name() == file {
			tf = f
			return false
		}
		return true
	})
	if tf == nil || line < 1 || line > tf.LineCount() {
		return 0
	}
	lineStart := tf.LineStart(line)
	return tf.Offset(lineStart) + (col - 1)
}

// GetCodeFixes returns the host's built-in fixes for d, if its message
// matches a recognized shape. An empty result is expected: most
// repairs for this diagnostic set come from internal/builder's
// synthetic builders instead.
func (h *GoHost) GetCodeFixes(d Diagnostic) ([]NativeAction, error) {
	h.stats.CodeFixQueries++
	switch d.Code {
	case 1001: // "<path>" imported and not used
		text, ok := h.v.GetContent(d.File)
		if !ok {
			return nil, nil
		}
		start, end := lineRange(text, d.Start)
		return []NativeAction{&simpleNativeAction{
			name: "removeUnusedImport",
			desc: "Remove unused import",
			changes: []FileChange{
				{File: d.File, Start: start, End: end, NewText: ""},
			},
		}}, nil
	default:
		return nil, nil
	}
}

// lineRange returns the byte range of the full line (including a
// trailing newline, if any) containing offset.
func lineRange(text string, offset int) (start, end int) {
	start = strings.LastIndexByte(text[:min(offset, len(text))], '\n') + 1
	rel := strings.IndexByte(text[offset:], '\n')
	if rel < 0 {
		end = len(text)
	} else {
		end = offset + rel + 1
	}
	return start, end
}

// ActionToChanges materializes a's FileChanges.
func (h *GoHost) ActionToChanges(a NativeAction) []FileChange {
	if sa, ok := a.(*simpleNativeAction); ok {
		return sa.changes
	}
	return nil
}

// ApplyFix applies a's changes to the VFS and bumps affected files'
// versions. Changes targeting files not in the VFS are skipped
// silently.
func (h *GoHost) ApplyFix(a NativeAction) error {
	h.stats.ApplyCalls++
	for _, c := range h.ActionToChanges(a) {
		if !h.v.FileExists(c.File) {
			continue
		}
		if _, ok := h.v.GetContent(c.File); !ok {
			continue
		}
		if err := h.v.ApplyChange(c.File, c.Start, c.End, c.NewText); err != nil {
			continue
		}
		h.NotifyFileChanged(c.File)
	}
	return nil
}

// NotifyFileChanged informs the host that path's version has advanced;
// the next diagnostics query must re-check at least that file.
func (h *GoHost) NotifyFileChanged(path vfs.Path) {
	h.versions[path]++
	h.dirty = true
}

// NotifyAllFilesChanged marks every file as potentially stale.
func (h *GoHost) NotifyAllFilesChanged() {
	for _, p := range h.v.GetFileNames() {
		h.versions[p]++
	}
	h.dirty = true
}

// Reset discards every cached checker state (diagnostics, file
// versions) and forces the next GetDiagnostics to fully reload from
// the VFS's current content. It leaves the VFS itself untouched: the
// memory guard calls this mid-plan to bound checker memory, and the
// snapshot/restore contract the planner relies on must keep working
// across that call, which it can only do if previously committed
// edits stay in the VFS.
func (h *GoHost) Reset() {
	h.cachedDiags = nil
	h.dirty = true
	h.versions = make(map[vfs.Path]int)
}

func (h *GoHost) GetVFS() *vfs.VFS            { return h.v }
func (h *GoHost) GetFileNames() []vfs.Path    { return h.v.GetFileNames() }
func (h *GoHost) GetOptions() CompilerOptions { return h.options }
func (h *GoHost) GetStats() HostStats         { return h.stats }
func (h *GoHost) ResetStats()                 { h.stats = HostStats{} }
