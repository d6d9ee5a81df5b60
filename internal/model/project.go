package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	ClientID  uuid.UUID   `json:"client_id"`
	Managers  []uuid.UUID `json:"manager_ids"`
	StartDate time.Time   `json:"start_date"`
	EndDate   *time.Time  `json:"end_date,omitempty"`
	Progress  int         `json:"progress"`
	Status    string      `json:"status"` // planning / in_progress / on_hold / completed / cancelled
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusOnHold     = "on_hold"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// HasManager reports whether userID is among the project's managers.
func (p *Project) HasManager(userID uuid.UUID) bool {
	for _, m := range p.Managers {
		if m == userID {
			return true
		}
	}
	return false
}
