// Package cone computes, per candidate, the subset of project files
// used to measure that candidate's effect, and caches "before"
// diagnostics keyed by a deterministic signature over that subset.
// It borrows gopls/internal/cache's invalidation-by-file-set idiom
// (a Snapshot only re-checks packages reachable from changed files)
// and its metadata graph's reverse-dependency walk, but as an
// explicit, policy-bounded scope computation instead of an
// always-minimal invalidation set: the planner needs to choose how
// wide to look, not just how little to redo.
package cone

import (
	"sort"
	"strconv"
	"strings"

	"oraclerepair/internal/host"
	"oraclerepair/internal/policy"
)

// Scope mirrors candidate.Scope without importing it, keeping cone's
// imports to host and policy; the planner is responsible for keeping
// the two enums aligned.
type Scope string

const (
	ScopeModified Scope = "modified"
	ScopeErrors   Scope = "errors"
	ScopeWide     Scope = "wide"
)

// Context is the ambient information Cone needs beyond the candidate
// itself and the policy.
type Context struct {
	FilesWithErrors map[string]int // file -> error count, for top-K selection
	ReverseDeps     map[string][]string
	Iteration       int
}

// Cone is the resolved set of files one candidate's verification will
// examine, plus the signature used to cache its "before" diagnostics.
type Cone struct {
	Scope     Scope
	Files     map[string]struct{}
	Signature string
	Capped    bool
}

// Build computes the verification cone for a candidate touching
// modifiedFiles, with the given scope hint (candidate.ScopeModified if
// unset), under policy p and context cctx.
func Build(modifiedFiles map[string]struct{}, scopeHint Scope, p policy.Policy, cctx Context) Cone {
	effective := scopeHint
	if effective == "" {
		effective = ScopeModified
	}
	if effective == ScopeModified {
		effective = Scope(p.DefaultScope)
	}

	files := make(map[string]struct{}, len(modifiedFiles))
	for f := range modifiedFiles {
		files[f] = struct{}{}
	}

	if (effective == ScopeErrors || effective == ScopeWide) && p.ConeExpansion.IncludeErrors {
		addTopKErrorFiles(files, cctx.FilesWithErrors, p.ConeExpansion.TopKErrorFiles, p.MaxConeErrors)
	}
	if effective == ScopeWide && p.ConeExpansion.IncludeReverseDeps && cctx.ReverseDeps != nil {
		addReverseDeps(files, modifiedFiles, cctx.ReverseDeps)
	}

	capped := false
	if len(files) > p.MaxConeFiles {
		files, capped = capFiles(files, modifiedFiles, cctx.FilesWithErrors, p.MaxConeFiles)
	}

	sig := signature(files, p.CacheKeyStrategy == policy.CacheKeyConeIteration, cctx.Iteration)
	return Cone{Scope: effective, Files: files, Signature: sig, Capped: capped}
}

// addTopKErrorFiles adds the K files with the most errors, stopping
// at the first file whose errors would push the cumulative error count
// of added files past maxErrors: a cone is a re-check budget, and a handful of very broken
// files can cost as much as dozens of mildly broken ones.
func addTopKErrorFiles(files map[string]struct{}, byCount map[string]int, k, maxErrors int) {
	type fc struct {
		file  string
		count int
	}
	list := make([]fc, 0, len(byCount))
	for f, c := range byCount {
		list = append(list, fc{f, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].file < list[j].file
	})
	if k > len(list) {
		k = len(list)
	}
	errorsAdded := 0
	for i := 0; i < k; i++ {
		if _, ok := files[list[i].file]; ok {
			continue
		}
		if errorsAdded+list[i].count > maxErrors {
			break
		}
		files[list[i].file] = struct{}{}
		errorsAdded += list[i].count
	}
}

func addReverseDeps(files, modified map[string]struct{}, rdeps map[string][]string) {
	for f := range modified {
		for _, dep := range rdeps[f] {
			files[dep] = struct{}{}
		}
	}
}

// capFiles keeps all of modified, then fills the remainder with error
// files in descending error-count order, stopping at max.
func capFiles(files, modified map[string]struct{}, byCount map[string]int, max int) (map[string]struct{}, bool) {
	out := make(map[string]struct{}, max)
	for f := range modified {
		out[f] = struct{}{}
	}
	type fc struct {
		file  string
		count int
	}
	var rest []fc
	for f := range files {
		if _, ok := modified[f]; ok {
			continue
		}
		rest = append(rest, fc{f, byCount[f]})
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].count != rest[j].count {
			return rest[i].count > rest[j].count
		}
		return rest[i].file < rest[j].file
	})
	for _, r := range rest {
		if len(out) >= max {
			break
		}
		out[r.file] = struct{}{}
	}
	return out, true
}

func signature(files map[string]struct{}, withIteration bool, iteration int) string {
	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	sort.Strings(names)
	joined := strings.Join(names, "\x00")
	if withIteration {
		return "ITER" + strconv.Itoa(iteration) + ":" + joined
	}
	return joined
}

// ModifiedFiles is a convenience for building the modified-files set
// from a candidate's changes without importing the candidate package
// (cone stays host-only plus policy).
func ModifiedFiles(changes []host.FileChange) map[string]struct{} {
	out := make(map[string]struct{}, len(changes))
	for _, c := range changes {
		out[c.File] = struct{}{}
	}
	return out
}
