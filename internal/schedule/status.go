// Package schedule holds the pure derivation and aggregation logic for a
// project's schedule: no I/O, input is a snapshot plus the current time, and
// re-running any function on the same snapshot yields the same result.
package schedule

import (
	"time"

	"buildtrack/internal/model"
)

// DeriveActivityStatus maps an activity snapshot to its status at `now`.
// Progress 100 always wins; an explicit on_hold set by a caller survives until
// progress changes; otherwise the status follows dates and progress.
func DeriveActivityStatus(a *model.Activity, now time.Time) string {
	if a.Progress >= 100 {
		return model.ActivityStatusCompleted
	}
	if a.Status == model.ActivityStatusOnHold {
		return model.ActivityStatusOnHold
	}
	if now.After(a.PlannedEnd) {
		return model.ActivityStatusDelayed
	}
	if a.Progress > 0 {
		return model.ActivityStatusInProgress
	}
	return model.ActivityStatusPending
}

// PhaseProgress is floor(completed/total*100), 0 for an empty phase.
func PhaseProgress(activities []model.Activity) int {
	if len(activities) == 0 {
		return 0
	}
	completed := 0
	for i := range activities {
		if activities[i].Progress >= 100 {
			completed++
		}
	}
	return completed * 100 / len(activities)
}

// DerivePhaseStatus maps a phase to its status at `now`, given the phase
// progress already recomputed from its activities.
func DerivePhaseStatus(p *model.Phase, progress int, now time.Time) string {
	if progress >= 100 {
		return model.PhaseStatusCompleted
	}
	if now.Before(p.StartDate) {
		return model.PhaseStatusUpcoming
	}
	if now.After(p.EndDate) {
		return model.PhaseStatusDelayed
	}
	return model.PhaseStatusActive
}

// Refresh recomputes every activity status, then each phase's progress and
// status, in place. Stored statuses are treated as hints only; the one
// exception is on_hold, which is caller intent and carried through.
func Refresh(s *model.Schedule, now time.Time) {
	for pi := range s.Phases {
		phase := &s.Phases[pi]
		for ai := range phase.Activities {
			act := &phase.Activities[ai]
			act.Status = DeriveActivityStatus(act, now)
		}
		phase.Progress = PhaseProgress(phase.Activities)
		phase.Status = DerivePhaseStatus(phase, phase.Progress, now)
	}
}
