// Package host wraps a type checker over a vfs.VFS and exposes the
// narrow TypeCheckHost façade the planner consumes. The
// concrete implementation in this package targets Go itself: the
// simplest instantiation of "a statically typed language", built on
// golang.org/x/tools/go/packages the way gopls/internal/cache builds
// its Snapshot on the same package, substituting packages.Config's
// Overlay field for gopls' own overlayFS.
package host

import (
	"oraclerepair/internal/vfs"
)

// Severity classifies a Diagnostic the way the planner's scoring
// (internal/score) weighs it.
type Severity int

const (
	Error Severity = iota
	Warning
	Suggestion
	Message
)

// Diagnostic is a single type-checker-reported problem. Identity for
// cross-apply matching is (File, Code, FlattenedMessage), never
// position, since positions shift with edits.
type Diagnostic struct {
	Code     int
	Message  string
	Severity Severity
	File     vfs.Path
	Line     int // 1-based
	Column   int // 1-based
	Start    int // byte offset into the file's current text
	Length   int
}

// Key returns the cross-apply identity of d.
func (d Diagnostic) Key() DiagKey {
	return DiagKey{File: d.File, Code: d.Code, Message: flatten(d.Message)}
}

// DiagKey is a Diagnostic's position-independent identity.
type DiagKey struct {
	File    vfs.Path
	Code    int
	Message string
}

func flatten(s string) string {
	out := make([]byte, 0, len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' || c == '\r' || c == '\t' {
			c = ' '
		}
		if c == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		out = append(out, c)
	}
	return string(out)
}

// FileChange is a single text edit: replace the half-open byte range
// [Start, End) of File with NewText.
type FileChange struct {
	File    vfs.Path
	Start   int
	End     int
	NewText string
}

// NativeAction is an opaque, checker-provided fix handle. The host is
// the only component that knows how to turn one into FileChanges or
// apply it directly.
type NativeAction interface {
	// Name is a short, stable identifier (e.g. "removeUnusedImport").
	Name() string
	// Description is a human-readable summary.
	Description() string
}

// HostStats are the counters GetStats exposes for telemetry and tests.
type HostStats struct {
	DiagnosticsQueries int
	CodeFixQueries     int
	ApplyCalls         int
}

// CompilerOptions is a minimal stand-in for the target language's
// compiler/build options, exposed via GetOptions for builders that
// need to condition on them (e.g. language version).
type CompilerOptions struct {
	GoVersion string
}
