// Package candidate unifies compiler-provided fixes with
// synthesis-builder fixes behind one CandidateFix value, the way
// gopls/internal/golang/codeaction.go's addEditAction/addApplyFixAction
// unify "edit straight from an analysis.SuggestedFix" and "edit this
// package constructed itself" behind one protocol.CodeAction.
package candidate

import (
	"sort"
	"strconv"

	"oraclerepair/internal/host"
	"oraclerepair/internal/vfs"
)

// Scope is a candidate's advisory verification scope hint.
type Scope string

const (
	ScopeModified Scope = "modified"
	ScopeErrors   Scope = "errors"
	ScopeWide     Scope = "wide"
)

// Risk is a candidate's advisory risk hint.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Kind tags a CandidateFix as wrapping a checker-native action or a
// builder-synthesized edit list.
type Kind int

const (
	Native Kind = iota
	Synthetic
)

// Fix is a single proposed edit, either materialized from a host's
// opaque native action or built directly by a synthetic builder.
type Fix struct {
	Kind        Kind
	FixName     string
	Description string

	// Native fields.
	NativeAction host.NativeAction

	// Synthetic fields.
	Changes []host.FileChange

	ScopeHint Scope
	RiskHint  Risk
	Tags      []string
	Metadata  map[string]string
}

// GetChanges returns c's FileChanges: materialized from the opaque
// native action for Native candidates, direct for Synthetic ones.
func GetChanges(c Fix, h host.TypeCheckHost) []host.FileChange {
	if c.Kind == Native {
		return h.ActionToChanges(c.NativeAction)
	}
	return c.Changes
}

// GetModifiedFiles returns the set of files c's changes touch.
func GetModifiedFiles(c Fix, h host.TypeCheckHost) map[string]struct{} {
	out := make(map[string]struct{})
	for _, ch := range GetChanges(c, h) {
		out[ch.File] = struct{}{}
	}
	return out
}

// Normalize sorts changes stably by file ascending then start
// descending (so later-position edits are applied first and do not
// invalidate earlier positions' offsets), and drops any change that
// overlaps a change already kept for the same file.
func Normalize(changes []host.FileChange) []host.FileChange {
	cp := make([]host.FileChange, len(changes))
	copy(cp, changes)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].File != cp[j].File {
			return cp[i].File < cp[j].File
		}
		return cp[i].Start > cp[j].Start
	})
	out := make([]host.FileChange, 0, len(cp))
	for _, c := range cp {
		conflict := false
		for _, kept := range out {
			if kept.File == c.File && rangesOverlap(kept.Start, kept.End, c.Start, c.End) {
				conflict = true
				break
			}
		}
		if !conflict {
			out = append(out, c)
		}
	}
	return out
}

// rangesOverlap reports whether [s1,e1) and [s2,e2) conflict:
// zero-length insertions at the same offset conflict, and an insertion
// strictly inside another edit's range conflicts.
func rangesOverlap(s1, e1, s2, e2 int) bool {
	if s1 == e1 && s2 == e2 {
		return s1 == s2
	}
	if s1 == e1 {
		return s1 > s2 && s1 < e2
	}
	if s2 == e2 {
		return s2 > s1 && s2 < e1
	}
	return s1 < e2 && s2 < e1
}

// Apply normalizes c's changes and applies them to v in sorted order.
func Apply(v *vfs.VFS, c Fix, h host.TypeCheckHost) error {
	for _, ch := range Normalize(GetChanges(c, h)) {
		if err := v.ApplyChange(ch.File, ch.Start, ch.End, ch.NewText); err != nil {
			return err
		}
	}
	return nil
}

// Key returns c's deduplication key: FixName concatenated with the
// lexicographically sorted list of (file,start,end,newText) triples.
func Key(c Fix, h host.TypeCheckHost) string {
	changes := GetChanges(c, h)
	keys := make([]string, len(changes))
	for i, ch := range changes {
		keys[i] = ch.File + "\x00" + strconv.Itoa(ch.Start) + "\x00" + strconv.Itoa(ch.End) + "\x00" + ch.NewText
	}
	sort.Strings(keys)
	out := c.FixName
	for _, k := range keys {
		out += "\x01" + k
	}
	return out
}

// EditSize measures c's total edit size: Σ(end-start + len(newText)).
func EditSize(c Fix, h host.TypeCheckHost) int {
	size := 0
	for _, ch := range GetChanges(c, h) {
		size += (ch.End - ch.Start) + len(ch.NewText)
	}
	return size
}

// Conflict reports whether any pair of a's and b's changes touch
// overlapping ranges in the same file (symmetric by construction).
func Conflict(a, b Fix, h host.TypeCheckHost) bool {
	ca, cb := GetChanges(a, h), GetChanges(b, h)
	for _, x := range ca {
		for _, y := range cb {
			if x.File != y.File {
				continue
			}
			if rangesOverlap(x.Start, x.End, y.Start, y.End) {
				return true
			}
		}
	}
	return false
}
