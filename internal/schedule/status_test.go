package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"buildtrack/internal/model"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return ts
}

func TestDeriveActivityStatus(t *testing.T) {
	start := mustTime(t, "2025-01-01T08:00:00Z")
	end := mustTime(t, "2025-01-01T17:00:00Z")

	tests := []struct {
		name     string
		progress int
		status   string
		now      string
		want     string
	}{
		{"zero progress past planned end is delayed", 0, "", "2025-01-02T00:00:00Z", model.ActivityStatusDelayed},
		{"full progress past planned end stays completed", 100, "", "2025-01-02T00:00:00Z", model.ActivityStatusCompleted},
		{"zero progress before planned end is pending", 0, "", "2025-01-01T09:00:00Z", model.ActivityStatusPending},
		{"partial progress before planned end is in progress", 40, "", "2025-01-01T09:00:00Z", model.ActivityStatusInProgress},
		{"partial progress past planned end is delayed", 40, "", "2025-01-03T00:00:00Z", model.ActivityStatusDelayed},
		{"explicit hold survives derivation", 40, model.ActivityStatusOnHold, "2025-01-01T09:00:00Z", model.ActivityStatusOnHold},
		{"full progress wins over explicit hold", 100, model.ActivityStatusOnHold, "2025-01-01T09:00:00Z", model.ActivityStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &model.Activity{
				PlannedStart: start,
				PlannedEnd:   end,
				Progress:     tt.progress,
				Status:       tt.status,
			}
			got := DeriveActivityStatus(a, mustTime(t, tt.now))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveActivityStatusIdempotent(t *testing.T) {
	now := mustTime(t, "2025-03-01T12:00:00Z")
	a := &model.Activity{
		PlannedStart: mustTime(t, "2025-02-01T08:00:00Z"),
		PlannedEnd:   mustTime(t, "2025-02-20T17:00:00Z"),
		Progress:     30,
	}

	first := DeriveActivityStatus(a, now)
	a.Status = first
	second := DeriveActivityStatus(a, now)
	assert.Equal(t, first, second)
}

func TestPhaseProgress(t *testing.T) {
	act := func(progress int) model.Activity {
		return model.Activity{Progress: progress}
	}

	assert.Equal(t, 0, PhaseProgress(nil))
	assert.Equal(t, 0, PhaseProgress([]model.Activity{act(50), act(99)}))
	assert.Equal(t, 75, PhaseProgress([]model.Activity{act(100), act(100), act(100), act(0)}))
	assert.Equal(t, 100, PhaseProgress([]model.Activity{act(100)}))
	// floor, not round: 1 of 3 completed is 33
	assert.Equal(t, 33, PhaseProgress([]model.Activity{act(100), act(0), act(0)}))
}

func TestDerivePhaseStatus(t *testing.T) {
	p := &model.Phase{
		StartDate: mustTime(t, "2025-01-10T00:00:00Z"),
		EndDate:   mustTime(t, "2025-02-10T00:00:00Z"),
	}

	assert.Equal(t, model.PhaseStatusCompleted, DerivePhaseStatus(p, 100, mustTime(t, "2025-01-01T00:00:00Z")))
	assert.Equal(t, model.PhaseStatusUpcoming, DerivePhaseStatus(p, 0, mustTime(t, "2025-01-05T00:00:00Z")))
	assert.Equal(t, model.PhaseStatusActive, DerivePhaseStatus(p, 50, mustTime(t, "2025-01-20T00:00:00Z")))
	assert.Equal(t, model.PhaseStatusDelayed, DerivePhaseStatus(p, 50, mustTime(t, "2025-03-01T00:00:00Z")))
}

func TestRefreshPhaseWithMostlyCompletedActivities(t *testing.T) {
	now := mustTime(t, "2025-01-20T12:00:00Z")
	s := &model.Schedule{
		Phases: []model.Phase{
			{
				StartDate: mustTime(t, "2025-01-10T00:00:00Z"),
				EndDate:   mustTime(t, "2025-02-10T00:00:00Z"),
				Activities: []model.Activity{
					{Progress: 100, PlannedStart: now, PlannedEnd: now.Add(time.Hour)},
					{Progress: 100, PlannedStart: now, PlannedEnd: now.Add(time.Hour)},
					{Progress: 100, PlannedStart: now, PlannedEnd: now.Add(time.Hour)},
					{Progress: 20, PlannedStart: now, PlannedEnd: now.Add(time.Hour)},
				},
			},
		},
	}

	Refresh(s, now)

	phase := s.Phases[0]
	assert.Equal(t, 75, phase.Progress)
	assert.Equal(t, model.PhaseStatusActive, phase.Status)
	assert.Equal(t, model.ActivityStatusCompleted, phase.Activities[0].Status)
	assert.Equal(t, model.ActivityStatusInProgress, phase.Activities[3].Status)
}

func TestRefreshIsOrderIndependent(t *testing.T) {
	now := mustTime(t, "2025-01-20T12:00:00Z")
	build := func(order []int) *model.Schedule {
		progresses := []int{0, 50, 100}
		var acts []model.Activity
		for _, i := range order {
			acts = append(acts, model.Activity{
				Progress:     progresses[i],
				PlannedStart: now.Add(-time.Hour),
				PlannedEnd:   now.Add(time.Hour),
			})
		}
		return &model.Schedule{Phases: []model.Phase{{
			StartDate:  now.Add(-24 * time.Hour),
			EndDate:    now.Add(24 * time.Hour),
			Activities: acts,
		}}}
	}

	a := build([]int{0, 1, 2})
	b := build([]int{2, 1, 0})
	Refresh(a, now)
	Refresh(b, now)

	assert.Equal(t, a.Phases[0].Progress, b.Phases[0].Progress)
	assert.Equal(t, a.Phases[0].Status, b.Phases[0].Status)
}
