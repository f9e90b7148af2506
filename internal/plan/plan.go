// Package plan defines the verified plan object: the planner's final
// output, plus its JSON wire shape for out-of-process consumers.
package plan

import (
	"oraclerepair/internal/candidate"
	"oraclerepair/internal/classify"
	"oraclerepair/internal/host"
)

// Dependencies records a committed fix's relationship to other
// committed fixes. ConflictsWith is derived from pairwise
// candidate.Conflict among committed fixes; Requires is always empty;
// ExclusiveGroup is set only when a builder populated
// candidate.Fix.Metadata["exclusiveGroup"].
type Dependencies struct {
	ConflictsWith  []string
	Requires       []string
	ExclusiveGroup string
}

// VerifiedFix is the committed form of a candidate.
type VerifiedFix struct {
	ID           string
	Diagnostic   host.Diagnostic
	FixName      string
	Description  string
	Changes      []host.FileChange
	ErrorsBefore int
	ErrorsAfter  int
	Risk         candidate.Risk
	Dependencies Dependencies
}

// Delta is ErrorsBefore - ErrorsAfter.
func (f VerifiedFix) Delta() int { return f.ErrorsBefore - f.ErrorsAfter }

// Budget is the planner's verification-budget accounting.
type Budget struct {
	CandidatesGenerated int
	CandidatesVerified  int
	VerificationBudget  int
	BudgetExhausted     bool
}

// Summary is the plan's headline numbers.
type Summary struct {
	InitialErrors  int
	FinalErrors    int
	FixedCount     int
	RemainingCount int
	Budget         Budget
}

// Plan is the planner's final, fully verified output.
type Plan struct {
	Steps     []VerifiedFix
	Remaining []classify.Classified
	Batches   [][]string
	Summary   Summary
}

// Batches groups steps into sets of mutually non-conflicting fix ids,
// each of which may be applied in any order among themselves. It
// greedily assigns each step to the first existing batch none of whose
// members conflict with it, in commit order, or opens a new batch.
func Batches(steps []VerifiedFix, h host.TypeCheckHost) [][]string {
	var batches [][]string
	var batchFixes [][]candidate.Fix
	for _, s := range steps {
		fix := candidate.Fix{Kind: candidate.Synthetic, FixName: s.FixName, Changes: s.Changes}
		placed := false
		for bi, members := range batchFixes {
			conflict := false
			for _, m := range members {
				if candidate.Conflict(fix, m, h) {
					conflict = true
					break
				}
			}
			if !conflict {
				batches[bi] = append(batches[bi], s.ID)
				batchFixes[bi] = append(batchFixes[bi], fix)
				placed = true
				break
			}
		}
		if !placed {
			batches = append(batches, []string{s.ID})
			batchFixes = append(batchFixes, []candidate.Fix{fix})
		}
	}
	return batches
}

// ConflictsWith computes, for each step, the ids of other steps whose
// changes overlap it.
func ConflictsWith(steps []VerifiedFix, h host.TypeCheckHost) map[string][]string {
	out := make(map[string][]string)
	for i := range steps {
		fi := candidate.Fix{Kind: candidate.Synthetic, FixName: steps[i].FixName, Changes: steps[i].Changes}
		for j := range steps {
			if i == j {
				continue
			}
			fj := candidate.Fix{Kind: candidate.Synthetic, FixName: steps[j].FixName, Changes: steps[j].Changes}
			if candidate.Conflict(fi, fj, h) {
				out[steps[i].ID] = append(out[steps[i].ID], steps[j].ID)
			}
		}
	}
	return out
}
