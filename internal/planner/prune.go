package planner

import (
	"sort"

	"oraclerepair/internal/candidate"
	"oraclerepair/internal/host"
	"oraclerepair/internal/score"
)

// riskOrder ranks risk ascending for the pre-verification prior: lower
// risk sorts first within equal priority bands.
func riskOrder(r candidate.Risk) int {
	switch r {
	case candidate.RiskLow:
		return 0
	case candidate.RiskMedium:
		return 1
	default:
		return 2
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// prune scores candidates by cheap priors (no re-check) and returns
// the top limit, deterministically tie-broken by insertion order. The
// prior is risk_order*10 plus a clamped edit-size penalty, so lower
// risk wins across bands and smaller edits win within one.
func prune(fixes []candidate.Fix, limit int, h host.TypeCheckHost) []candidate.Fix {
	if limit <= 0 {
		return nil
	}
	type scored struct {
		fix   candidate.Fix
		prior float64
		idx   int
	}
	list := make([]scored, len(fixes))
	for i, f := range fixes {
		risk := f.RiskHint
		if risk == "" {
			risk = score.Risk(f.FixName)
		}
		size := candidate.EditSize(f, h)
		prior := float64(riskOrder(risk))*10 + clamp(float64(size)/100, 0, 5)
		list[i] = scored{fix: f, prior: prior, idx: i}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].prior != list[j].prior {
			return list[i].prior < list[j].prior
		}
		return list[i].idx < list[j].idx
	})
	if limit > len(list) {
		limit = len(list)
	}
	out := make([]candidate.Fix, limit)
	for i := 0; i < limit; i++ {
		out[i] = list[i].fix
	}
	return out
}
