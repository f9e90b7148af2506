package host

import "oraclerepair/internal/vfs"

// TypeCheckHost is the façade a type checker exposes to the planner.
// The planner only ever talks to this interface; the Go implementation
// in this package is one instantiation of it.
type TypeCheckHost interface {
	GetDiagnostics() ([]Diagnostic, error)
	GetCodeFixes(d Diagnostic) ([]NativeAction, error)
	ApplyFix(a NativeAction) error
	ActionToChanges(a NativeAction) []FileChange
	NotifyFileChanged(path vfs.Path)
	NotifyAllFilesChanged()
	Reset()
	GetVFS() *vfs.VFS
	GetFileNames() []vfs.Path
	GetOptions() CompilerOptions
	GetStats() HostStats
	ResetStats()
}

// HostInitError reports that construction of a TypeCheckHost failed
// because the project manifest could not be read or parsed. This is
// fatal and surfaced directly to the caller.
type HostInitError struct {
	Reason string
}

func (e *HostInitError) Error() string { return "host: init failed: " + e.Reason }
