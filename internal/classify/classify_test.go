package classify

import "testing"

func TestClassifyBudgetExhaustedOverridesEverything(t *testing.T) {
	disp, n := Classify(true, []VerifiedCandidate{{TargetFixed: true, Score: 1, ResolvedWeight: 1}}, true)
	if disp != NeedsJudgment || n != 0 {
		t.Errorf("Classify(budgetExhausted) = (%v,%d), want (NeedsJudgment,0)", disp, n)
	}
}

func TestClassifyNoCodeFixes(t *testing.T) {
	disp, n := Classify(false, nil, false)
	if disp != NoGeneratedCandidate || n != 0 {
		t.Errorf("Classify(no code fixes) = (%v,%d), want (NoGeneratedCandidate,0)", disp, n)
	}
}

func TestClassifyNoQualifyingCandidate(t *testing.T) {
	outcomes := []VerifiedCandidate{
		{TargetFixed: false, Score: 5, ResolvedWeight: 1},
		{TargetFixed: true, Score: 0, ResolvedWeight: 1}, // score not > 0
		{TargetFixed: true, Score: 1, ResolvedWeight: 0}, // resolvedWeight not > 0
	}
	disp, n := Classify(true, outcomes, false)
	if disp != NoVerifiedCandidate || n != 0 {
		t.Errorf("Classify(none qualify) = (%v,%d), want (NoVerifiedCandidate,0)", disp, n)
	}
}

func TestClassifyExactlyOneLowRisk(t *testing.T) {
	outcomes := []VerifiedCandidate{{TargetFixed: true, Score: 2, ResolvedWeight: 1, RiskHigh: false}}
	disp, n := Classify(true, outcomes, false)
	if disp != AutoFixable || n != 1 {
		t.Errorf("Classify(one low-risk) = (%v,%d), want (AutoFixable,1)", disp, n)
	}
}

func TestClassifyExactlyOneHighRisk(t *testing.T) {
	outcomes := []VerifiedCandidate{{TargetFixed: true, Score: 2, ResolvedWeight: 1, RiskHigh: true}}
	disp, n := Classify(true, outcomes, false)
	if disp != AutoFixableHighRisk || n != 1 {
		t.Errorf("Classify(one high-risk) = (%v,%d), want (AutoFixableHighRisk,1)", disp, n)
	}
}

func TestClassifyMultipleQualifying(t *testing.T) {
	outcomes := []VerifiedCandidate{
		{TargetFixed: true, Score: 2, ResolvedWeight: 1},
		{TargetFixed: true, Score: 3, ResolvedWeight: 2},
	}
	disp, n := Classify(true, outcomes, false)
	if disp != NeedsJudgment || n != 2 {
		t.Errorf("Classify(two qualifying) = (%v,%d), want (NeedsJudgment,2)", disp, n)
	}
}
