// Package vfs is the in-memory, copy-on-write text store the repair
// planner mutates speculatively. It is modeled on the overlay-over-disk
// idiom in gopls/internal/cache's overlayFS, reshaped to support
// point-in-time snapshot and restore: the planner needs to try an edit,
// measure its effect, and cheaply undo it, which an LSP overlay never
// has to do.
package vfs

import (
	"errors"
	"os"
	"sort"
)

// Path is an absolute, normalized file path used as an opaque key.
type Path = string

// ErrFileNotInVFS is returned by ApplyChange against a path the VFS
// does not currently hold.
var ErrFileNotInVFS = errors.New("vfs: file not in VFS")

// ErrSnapshotActive is returned by Snapshot when a snapshot is already
// active; this implementation does not support stacked snapshots.
var ErrSnapshotActive = errors.New("vfs: a snapshot is already active")

// ErrNoSuchSnapshot is returned by Restore for an unknown or already
// consumed token.
var ErrNoSuchSnapshot = errors.New("vfs: no such snapshot")

// Token identifies an active snapshot returned by Snapshot.
type Token int64

type snapshotState struct {
	token    Token
	modified map[Path]string
	added    map[Path]struct{}
}

// VFS is the mutable, speculatively-editable text store for one
// planner run. It is not safe for concurrent use; the planner owns it
// exclusively for the lifetime of a single plan invocation.
type VFS struct {
	files    map[Path]string
	original map[Path]string
	active   *snapshotState
	nextTok  Token
}

// New returns an empty VFS with no seeded files, useful for tests.
func New() *VFS {
	return &VFS{
		files:    make(map[Path]string),
		original: make(map[Path]string),
	}
}

// Seed installs path/text pairs as the VFS's initial, original content.
// It is the primitive FromProject builds on.
func (v *VFS) Seed(files map[Path]string) {
	for p, text := range files {
		v.files[p] = text
		v.original[p] = text
	}
}

// Read returns the VFS's text for path, falling back to disk for paths
// never seeded into the VFS (used only for external declarations, e.g.
// standard library files the target project references but does not
// itself own).
func (v *VFS) Read(path Path) (string, bool) {
	if text, ok := v.files[path]; ok {
		return text, true
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// GetContent returns the VFS's text for path with no disk fallback.
func (v *VFS) GetContent(path Path) (string, bool) {
	text, ok := v.files[path]
	return text, ok
}

// recordPreState records the pre-mutation state of path in the active
// snapshot, if one exists and path has not already been recorded.
func (v *VFS) recordPreState(path Path) {
	if v.active == nil {
		return
	}
	if _, ok := v.active.modified[path]; ok {
		return
	}
	if _, ok := v.active.added[path]; ok {
		return
	}
	if text, existed := v.files[path]; existed {
		v.active.modified[path] = text
	} else {
		v.active.added[path] = struct{}{}
	}
}

// Write replaces path's entire contents.
func (v *VFS) Write(path Path, text string) {
	v.recordPreState(path)
	v.files[path] = text
}

// ApplyChange replaces the half-open byte range [start, end) of path's
// current content with newText. start=end=len(file) is a legal append;
// start=end anywhere is a legal insertion.
func (v *VFS) ApplyChange(path Path, start, end int, newText string) error {
	text, ok := v.files[path]
	if !ok {
		return ErrFileNotInVFS
	}
	if start < 0 || start > end || end > len(text) {
		return errors.New("vfs: edit range out of bounds")
	}
	v.recordPreState(path)
	v.files[path] = text[:start] + newText + text[end:]
	return nil
}

// FileExists reports whether path is known to the VFS or exists on disk.
func (v *VFS) FileExists(path Path) bool {
	if _, ok := v.files[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path from the VFS, recording CoW pre-state first.
func (v *VFS) Remove(path Path) {
	if _, ok := v.files[path]; !ok {
		return
	}
	v.recordPreState(path)
	delete(v.files, path)
}

// Snapshot installs a new, empty active snapshot and returns its
// token. It is O(1): no file contents are copied up front: only
// mutations occurring after this call are recorded, lazily, in
// recordPreState.
func (v *VFS) Snapshot() (Token, error) {
	if v.active != nil {
		return 0, ErrSnapshotActive
	}
	v.nextTok++
	v.active = &snapshotState{
		token:    v.nextTok,
		modified: make(map[Path]string),
		added:    make(map[Path]struct{}),
	}
	return v.active.token, nil
}

// Restore undoes every mutation made since the snapshot identified by
// token was taken: paths the snapshot recorded as modified get their
// pre-snapshot text back, and paths the snapshot recorded as added are
// removed. Cost is O(number of files mutated since the snapshot).
func (v *VFS) Restore(token Token) error {
	if v.active == nil || v.active.token != token {
		return ErrNoSuchSnapshot
	}
	for path, text := range v.active.modified {
		v.files[path] = text
	}
	for path := range v.active.added {
		delete(v.files, path)
	}
	v.active = nil
	return nil
}

// Reset discards all mutations, restoring files to their state at
// construction/seed time, and clears any active snapshot.
func (v *VFS) Reset() {
	v.files = make(map[Path]string, len(v.original))
	for p, text := range v.original {
		v.files[p] = text
	}
	v.active = nil
}

// GetFileNames returns the VFS's current key set, sorted for
// deterministic iteration.
func (v *VFS) GetFileNames() []Path {
	names := make([]Path, 0, len(v.files))
	for p := range v.files {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}
