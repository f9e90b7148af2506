// Package guard implements the planner's memory guard: it counts
// verifications and forces periodic host re-initialization to bound
// memory. The shape comes from gopls/internal/cache/session.go's
// view-restart idiom (a View is torn down and rebuilt when its
// configuration or file set drifts too far from what its checker
// state assumes), here on a fixed verification-count trigger rather
// than a configuration-drift trigger.
package guard

import "oraclerepair/internal/telemetry"

// Guard counts verifications and resets the host every resetInterval
// of them.
type Guard struct {
	resetInterval int
	count         int
	resets        int
	log           telemetry.Logger
}

// New returns a Guard with the given reset interval (the documented
// default is 50) and logger (telemetry.Discard is a valid choice).
func New(resetInterval int, log telemetry.Logger) *Guard {
	if resetInterval <= 0 {
		resetInterval = 50
	}
	if log == nil {
		log = telemetry.Discard
	}
	return &Guard{resetInterval: resetInterval, log: log}
}

// RecordVerification increments the verification counter and reports
// whether the caller should now call host.Reset().
func (g *Guard) RecordVerification() (shouldReset bool) {
	g.count++
	if g.count%g.resetInterval == 0 {
		g.resets++
		g.log.Log("memory_guard_reset", map[string]any{
			"verifications": g.count,
			"resets":        g.resets,
		})
		return true
	}
	return false
}

// Stats returns the verification and reset counts observed so far.
func (g *Guard) Stats() (verifications, resets int) {
	return g.count, g.resets
}
