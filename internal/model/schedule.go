package model

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is the work breakdown of a single project. It is owned 1:1 by its
// project; phases and activities never outlive it.
type Schedule struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Phases      []Phase   `json:"phases"`
	LastUpdated time.Time `json:"last_updated"`

	// Cached roll-ups. Refreshed best-effort on read; reads always recompute
	// from the phase tree instead of trusting these.
	OverallProgress int `json:"overall_progress"`
	CompletedCount  int `json:"completed_count"`
	ActiveCount     int `json:"active_count"`
	DelayedCount    int `json:"delayed_count"`
	TotalCount      int `json:"total_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Phase struct {
	ID           uuid.UUID   `json:"id"`
	ProjectID    uuid.UUID   `json:"project_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	Status       string      `json:"status"`   // upcoming / active / completed / delayed (derived)
	Progress     int         `json:"progress"` // derived from child activities
	Activities   []Activity  `json:"activities"`
	Dependencies []uuid.UUID `json:"dependencies,omitempty"` // phase ids that must complete first
	Position     int         `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Activity struct {
	ID                uuid.UUID  `json:"id"`
	PhaseID           uuid.UUID  `json:"phase_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Contractor        string     `json:"contractor"`
	Supervisor        string     `json:"supervisor,omitempty"`
	PlannedStart      time.Time  `json:"planned_start_date"`
	PlannedEnd        time.Time  `json:"planned_end_date"`
	ActualStart       *time.Time `json:"actual_start_date,omitempty"`
	ActualEnd         *time.Time `json:"actual_end_date,omitempty"`
	Status            string     `json:"status"`   // pending / in_progress / completed / delayed / on_hold
	Priority          string     `json:"priority"` // low / medium / high / urgent
	Category          string     `json:"category"` // structural / electrical / plumbing / finishing / other
	Progress          int        `json:"progress"`
	EstimatedDuration int        `json:"estimated_duration,omitempty"` // days
	ActualDuration    int        `json:"actual_duration,omitempty"`    // days
	Resources         []string   `json:"resources,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Images            []string   `json:"images,omitempty"` // URLs held by the media store
	Position          int        `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

const (
	ActivityStatusPending    = "pending"
	ActivityStatusInProgress = "in_progress"
	ActivityStatusCompleted  = "completed"
	ActivityStatusDelayed    = "delayed"
	// ActivityStatusOnHold is the one caller-settable status: it cannot be
	// derived from dates/progress and sticks until progress changes.
	ActivityStatusOnHold = "on_hold"
)

const (
	PhaseStatusUpcoming  = "upcoming"
	PhaseStatusActive    = "active"
	PhaseStatusCompleted = "completed"
	PhaseStatusDelayed   = "delayed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	CategoryStructural = "structural"
	CategoryElectrical = "electrical"
	CategoryPlumbing   = "plumbing"
	CategoryFinishing  = "finishing"
	CategoryOther      = "other"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryStructural, CategoryElectrical, CategoryPlumbing, CategoryFinishing, CategoryOther:
		return true
	}
	return false
}

func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityStatusPending, ActivityStatusInProgress, ActivityStatusCompleted,
		ActivityStatusDelayed, ActivityStatusOnHold:
		return true
	}
	return false
}

// ActivityUpdate is the field mask for a targeted activity update. Nil fields
// are left untouched by the repository.
type ActivityUpdate struct {
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Contractor        *string    `json:"contractor,omitempty"`
	Supervisor        *string    `json:"supervisor,omitempty"`
	PlannedStart      *time.Time `json:"planned_start_date,omitempty"`
	PlannedEnd        *time.Time `json:"planned_end_date,omitempty"`
	ActualStart       *time.Time `json:"actual_start_date,omitempty"`
	ActualEnd         *time.Time `json:"actual_end_date,omitempty"`
	Status            *string    `json:"status,omitempty"`
	Priority          *string    `json:"priority,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Progress          *int       `json:"progress,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	ActualDuration    *int       `json:"actual_duration,omitempty"`
	Resources         []string   `json:"resources,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Images            []string   `json:"images,omitempty"`
}

// Empty reports whether the mask names no fields at all.
func (u *ActivityUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Contractor == nil &&
		u.Supervisor == nil && u.PlannedStart == nil && u.PlannedEnd == nil &&
		u.ActualStart == nil && u.ActualEnd == nil && u.Status == nil &&
		u.Priority == nil && u.Category == nil && u.Progress == nil &&
		u.EstimatedDuration == nil && u.ActualDuration == nil &&
		u.Resources == nil && u.Notes == nil && u.Images == nil
}
