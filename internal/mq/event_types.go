package mq

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for schedule domain events.
const (
	EventPhaseCreated    = "schedule.phase.created"
	EventActivityCreated = "schedule.activity.created"
	EventActivityUpdated = "schedule.activity.updated"
	EventActivityDeleted = "schedule.activity.deleted"
)

type PhaseCreatedPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
	PhaseID   uuid.UUID `json:"phase_id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityCreatedPayload struct {
	ProjectID  uuid.UUID `json:"project_id"`
	PhaseID    uuid.UUID `json:"phase_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	Title      string    `json:"title"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActivityUpdatedPayload struct {
	ProjectID  uuid.UUID `json:"project_id"`
	PhaseID    uuid.UUID `json:"phase_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	Fields     []string  `json:"fields"` // column names the update touched
	UpdatedBy  uuid.UUID `json:"updated_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ActivityDeletedPayload struct {
	ProjectID  uuid.UUID `json:"project_id"`
	PhaseID    uuid.UUID `json:"phase_id"`
	ActivityID uuid.UUID `json:"activity_id"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
	DeletedAt  time.Time `json:"deleted_at"`
}
