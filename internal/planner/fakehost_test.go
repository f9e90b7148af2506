package planner

import (
	"sort"
	"strings"

	"golang.org/x/tools/txtar"

	"oraclerepair/internal/host"
	"oraclerepair/internal/vfs"
)

// txtarFiles decodes a txtar archive into the path -> content map
// newFakeHost seeds the VFS with.
func txtarFiles(archive string) map[string]string {
	ar := txtar.Parse([]byte(archive))
	files := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		files[f.Name] = string(f.Data)
	}
	return files
}

// diagRule is one synthetic "type error" the fakeHost can report: it
// fires for a file while present reports true, at the byte offset
// present returns.
type diagRule struct {
	file    string
	code    int
	message string
	present func(content string) (offset int, ok bool)
}

// fakeHost is a minimal host.TypeCheckHost that evaluates a fixed set
// of rules against the current VFS content instead of invoking a real
// type checker, so planner scenarios can run without go/packages.Load.
// It has no native code fixes: every scenario here exercises
// internal/builder's synthetic builders.
type fakeHost struct {
	v     *vfs.VFS
	rules []diagRule
	stats host.HostStats
}

func newFakeHost(files map[string]string, rules []diagRule) *fakeHost {
	v := vfs.New()
	v.Seed(files)
	return &fakeHost{v: v, rules: rules}
}

func (h *fakeHost) GetDiagnostics() ([]host.Diagnostic, error) {
	h.stats.DiagnosticsQueries++
	var diags []host.Diagnostic
	for _, r := range h.rules {
		content, ok := h.v.GetContent(r.file)
		if !ok {
			continue
		}
		offset, present := r.present(content)
		if !present {
			continue
		}
		diags = append(diags, host.Diagnostic{
			Code:    r.code,
			Message: r.message,
			File:    r.file,
			Start:   offset,
		})
	}
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		if diags[i].Start != diags[j].Start {
			return diags[i].Start < diags[j].Start
		}
		return diags[i].Code < diags[j].Code
	})
	return diags, nil
}

func (h *fakeHost) GetCodeFixes(host.Diagnostic) ([]host.NativeAction, error) {
	h.stats.CodeFixQueries++
	return nil, nil
}

func (h *fakeHost) ApplyFix(host.NativeAction) error { return nil }

func (h *fakeHost) ActionToChanges(host.NativeAction) []host.FileChange { return nil }

func (h *fakeHost) NotifyFileChanged(vfs.Path) {}
func (h *fakeHost) NotifyAllFilesChanged()     {}

// Reset mirrors GoHost.Reset: it must not touch the VFS, only force
// the next GetDiagnostics to re-evaluate every rule against whatever
// content is currently there.
func (h *fakeHost) Reset() {}

func (h *fakeHost) GetVFS() *vfs.VFS                 { return h.v }
func (h *fakeHost) GetFileNames() []vfs.Path         { return h.v.GetFileNames() }
func (h *fakeHost) GetOptions() host.CompilerOptions { return host.CompilerOptions{} }
func (h *fakeHost) GetStats() host.HostStats         { return h.stats }
func (h *fakeHost) ResetStats()                      { h.stats = host.HostStats{} }

// missingImportRule builds a diagRule reporting "undefined: pkg.Symbol"
// whenever content references pkg.Symbol without a matching import
// declaration for pkg.
func missingImportRule(file, pkg, symbol string) diagRule {
	usage := pkg + "." + symbol
	importLine := `import "` + pkg + `"`
	return diagRule{
		file:    file,
		code:    1002,
		message: "undefined: " + usage,
		present: func(content string) (int, bool) {
			idx := strings.Index(content, usage)
			if idx < 0 {
				return 0, false
			}
			if strings.Contains(content, importLine) {
				return 0, false
			}
			return idx, true
		},
	}
}

// typeMismatchRule builds a diagRule for a value used where a
// different type is expected, resolved only by wrapping the value in
// an "any(...)" call -- the shape internal/builder's
// CatchAllAdapterBuilder recognizes.
func typeMismatchRule(file string) diagRule {
	const marker = "int = y"
	return diagRule{
		file:    file,
		code:    1007,
		message: "cannot use y as int value",
		present: func(content string) (int, bool) {
			idx := strings.Index(content, marker)
			if idx < 0 {
				return 0, false
			}
			if strings.Contains(content, "int = any(y)") {
				return 0, false
			}
			return idx + len("int = "), true
		},
	}
}

// unfixableRule reports an unconditional diagnostic no builder in this
// package recognizes (no registered code, no registered message
// pattern matches "missing return").
func unfixableRule(file string) diagRule {
	return diagRule{
		file:    file,
		code:    1008,
		message: "missing return",
		present: func(content string) (int, bool) {
			return 0, strings.Contains(content, "func main")
		},
	}
}
