package plan

import "oraclerepair/internal/host"

// wireDiagnostic, wireChange, wireFix, wireSummary, wireBudget, and
// Wire mirror the on-disk JSON shape exactly, independent of the
// in-process Plan's Go-idiomatic field layout.
type wireDiagnostic struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Start   int    `json:"start"`
	Length  int    `json:"length"`
}

type wireChange struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"newText"`
}

type wireEffect struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

type wireDependencies struct {
	ConflictsWith  []string `json:"conflictsWith"`
	Requires       []string `json:"requires"`
	ExclusiveGroup *string  `json:"exclusiveGroup"`
}

type wireStep struct {
	ID             string           `json:"id"`
	FixName        string           `json:"fixName"`
	FixDescription string           `json:"fixDescription"`
	Risk           string           `json:"risk"`
	Diagnostic     wireDiagnostic   `json:"diagnostic"`
	Changes        []wireChange     `json:"changes"`
	Effect         wireEffect       `json:"effect"`
	Dependencies   wireDependencies `json:"dependencies"`
}

type wireClassified struct {
	Code           int    `json:"code"`
	Message        string `json:"message"`
	File           string `json:"file"`
	Line           int    `json:"line"`
	Column         int    `json:"column"`
	Start          int    `json:"start"`
	Length         int    `json:"length"`
	Disposition    string `json:"disposition"`
	CandidateCount int    `json:"candidateCount"`
}

type wireBudget struct {
	CandidatesGenerated int  `json:"candidatesGenerated"`
	CandidatesVerified  int  `json:"candidatesVerified"`
	VerificationBudget  int  `json:"verificationBudget"`
	BudgetExhausted     bool `json:"budgetExhausted"`
}

type wireSummary struct {
	InitialErrors  int        `json:"initialErrors"`
	FinalErrors    int        `json:"finalErrors"`
	FixedCount     int        `json:"fixedCount"`
	RemainingCount int        `json:"remainingCount"`
	Budget         wireBudget `json:"budget"`
}

// Wire is the JSON-serializable plan.
type Wire struct {
	Summary   wireSummary      `json:"summary"`
	Steps     []wireStep       `json:"steps"`
	Remaining []wireClassified `json:"remaining"`
	Batches   [][]string       `json:"batches"`
}

func diagToWire(d host.Diagnostic) wireDiagnostic {
	return wireDiagnostic{
		Code: d.Code, Message: d.Message, File: d.File,
		Line: d.Line, Column: d.Column, Start: d.Start, Length: d.Length,
	}
}

// ToWire converts p into its JSON wire shape.
func (p Plan) ToWire() Wire {
	w := Wire{
		Summary: wireSummary{
			InitialErrors:  p.Summary.InitialErrors,
			FinalErrors:    p.Summary.FinalErrors,
			FixedCount:     p.Summary.FixedCount,
			RemainingCount: p.Summary.RemainingCount,
			Budget: wireBudget{
				CandidatesGenerated: p.Summary.Budget.CandidatesGenerated,
				CandidatesVerified:  p.Summary.Budget.CandidatesVerified,
				VerificationBudget:  p.Summary.Budget.VerificationBudget,
				BudgetExhausted:     p.Summary.Budget.BudgetExhausted,
			},
		},
		Batches: p.Batches,
	}
	for _, s := range p.Steps {
		changes := make([]wireChange, len(s.Changes))
		for i, c := range s.Changes {
			changes[i] = wireChange{File: c.File, Start: c.Start, End: c.End, NewText: c.NewText}
		}
		var exclusiveGroup *string
		if s.Dependencies.ExclusiveGroup != "" {
			eg := s.Dependencies.ExclusiveGroup
			exclusiveGroup = &eg
		}
		w.Steps = append(w.Steps, wireStep{
			ID:             s.ID,
			FixName:        s.FixName,
			FixDescription: s.Description,
			Risk:           string(s.Risk),
			Diagnostic:     diagToWire(s.Diagnostic),
			Changes:        changes,
			Effect:         wireEffect{Before: s.ErrorsBefore, After: s.ErrorsAfter, Delta: s.Delta()},
			Dependencies: wireDependencies{
				ConflictsWith:  s.Dependencies.ConflictsWith,
				Requires:       s.Dependencies.Requires,
				ExclusiveGroup: exclusiveGroup,
			},
		})
	}
	for _, c := range p.Remaining {
		w.Remaining = append(w.Remaining, wireClassified{
			Code: c.Code, Message: c.Message, File: c.File,
			Line: c.Line, Column: c.Column, Start: c.Start, Length: c.Length,
			Disposition:    string(c.Disposition),
			CandidateCount: c.CandidateCount,
		})
	}
	return w
}
