package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"buildtrack/internal/model"
)

const (
	upcomingWindowDays = 14
	upcomingLimit      = 10
)

// Stats are the roll-ups computed over every activity in a schedule.
type Stats struct {
	TotalActivities int  `json:"total_activities"`
	Completed       int  `json:"completed"`
	InProgress      int  `json:"in_progress"`
	Delayed         int  `json:"delayed"`
	OverallProgress int  `json:"overall_progress"`
	OnSchedule      bool `json:"on_schedule"`
	DaysRemaining   *int `json:"days_remaining,omitempty"`
}

// View is the fully materialized read model for one project's schedule.
type View struct {
	ProjectID   uuid.UUID        `json:"project_id"`
	Phases      []model.Phase    `json:"phases"`
	Stats       Stats            `json:"stats"`
	Upcoming    []model.Activity `json:"upcoming_activities"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Aggregate refreshes all derived statuses and computes the roll-up view.
// An empty schedule is on schedule by definition with progress 0.
func Aggregate(project *model.Project, s *model.Schedule, now time.Time) *View {
	Refresh(s, now)

	var stats Stats
	var upcoming []model.Activity
	horizon := now.AddDate(0, 0, upcomingWindowDays)

	for pi := range s.Phases {
		for ai := range s.Phases[pi].Activities {
			act := s.Phases[pi].Activities[ai]
			stats.TotalActivities++
			switch act.Status {
			case model.ActivityStatusCompleted:
				stats.Completed++
			case model.ActivityStatusInProgress:
				stats.InProgress++
			case model.ActivityStatusDelayed:
				stats.Delayed++
			}
			if (act.Status == model.ActivityStatusPending || act.Status == model.ActivityStatusInProgress) &&
				!act.PlannedStart.Before(now) && !act.PlannedStart.After(horizon) {
				upcoming = append(upcoming, act)
			}
		}
	}

	if stats.TotalActivities > 0 {
		stats.OverallProgress = stats.Completed * 100 / stats.TotalActivities
	}
	stats.OnSchedule = stats.Delayed == 0 &&
		(project.EndDate == nil || !now.After(*project.EndDate))
	if project.EndDate != nil {
		stats.DaysRemaining = ptr(daysUntil(now, *project.EndDate))
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].PlannedStart.Before(upcoming[j].PlannedStart)
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	return &View{
		ProjectID:   project.ID,
		Phases:      s.Phases,
		Stats:       stats,
		Upcoming:    upcoming,
		LastUpdated: s.LastUpdated,
	}
}

// daysUntil is ceil(end-now in days), clamped at 0.
func daysUntil(now, end time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func ptr(v int) *int { return &v }
