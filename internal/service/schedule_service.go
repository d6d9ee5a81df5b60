package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"buildtrack/internal/access"
	"buildtrack/internal/apperr"
	"buildtrack/internal/model"
	"buildtrack/internal/mq"
	"buildtrack/internal/schedule"
	"buildtrack/pkg/metrics"
)

const treeCacheTTL = 30 * time.Second

type ProjectStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type ScheduleStore interface {
	GetOrInit(ctx context.Context, project *model.Project) (*model.Schedule, error)
	AppendPhase(ctx context.Context, projectID uuid.UUID, p *model.Phase) error
	AppendActivity(ctx context.Context, projectID, phaseID uuid.UUID, a *model.Activity) error
	UpdateActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID, upd model.ActivityUpdate) error
	RemoveActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID) error
	RefreshCachedStats(ctx context.Context, projectID uuid.UUID, stats schedule.Stats) error
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ScheduleService orchestrates schedule reads and writes: authorize first,
// validate second, and only then touch the store. Redis and the event
// publisher are optional collaborators; losing either degrades, never fails,
// a request.
type ScheduleService struct {
	projects  ProjectStore
	schedules ScheduleStore
	cache     *redis.Client
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduleService(
	projects ProjectStore,
	schedules ScheduleStore,
	cache *redis.Client,
	publisher EventPublisher,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		projects:  projects,
		schedules: schedules,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetSchedule returns the materialized schedule view with every status
// recomputed at the current time. The first request for a project seeds its
// default phase.
func (s *ScheduleService) GetSchedule(ctx context.Context, projectID uuid.UUID, caller access.Caller) (*schedule.View, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(project, caller, access.CapabilityRead); err != nil {
		return nil, err
	}

	// The cache holds the raw tree, never derived state: statuses and
	// roll-ups are recomputed below on every read, cache hit or not, so a
	// time-only transition (an activity crossing its planned end) is never
	// reported stale.
	sched := s.cachedTree(ctx, projectID)
	hit := sched != nil
	if hit {
		metrics.IncrementScheduleRead("hit")
	} else {
		metrics.IncrementScheduleRead("miss")
		var err error
		sched, err = s.schedules.GetOrInit(ctx, project)
		if err != nil {
			return nil, err
		}
	}

	view := schedule.Aggregate(project, sched, s.now())

	if !hit {
		// Cached roll-up columns are refreshed opportunistically; reads never
		// depend on them.
		if err := s.schedules.RefreshCachedStats(ctx, projectID, view.Stats); err != nil {
			s.logger.Warn("Failed to refresh cached schedule stats",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
		s.storeTree(ctx, projectID, sched)
	}
	return view, nil
}

type CreatePhaseInput struct {
	Name         string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Dependencies []uuid.UUID
}

func (s *ScheduleService) CreatePhase(ctx context.Context, projectID uuid.UUID, caller access.Caller, in CreatePhaseInput) (*model.Phase, error) {
	if in.Name == "" {
		return nil, apperr.New(apperr.ValidationFailed, "phase name is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, apperr.New(apperr.ValidationFailed, "phase end date must be after start date")
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(project, caller, access.CapabilityWrite); err != nil {
		return nil, err
	}

	phase := &model.Phase{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Name:         in.Name,
		Description:  in.Description,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       model.PhaseStatusUpcoming,
		Activities:   []model.Activity{},
		Dependencies: in.Dependencies,
	}
	if err := s.schedules.AppendPhase(ctx, projectID, phase); err != nil {
		return nil, err
	}
	metrics.IncrementScheduleMutation("create_phase")

	s.invalidateTree(ctx, projectID)
	s.publish(mq.EventPhaseCreated, mq.PhaseCreatedPayload{
		ProjectID: projectID,
		PhaseID:   phase.ID,
		Name:      phase.Name,
		CreatedBy: caller.ID,
		CreatedAt: s.now(),
	})
	return phase, nil
}

type CreateActivityInput struct {
	Title             string
	Description       string
	Contractor        string
	Supervisor        string
	PlannedStart      time.Time
	PlannedEnd        time.Time
	Priority          string
	Category          string
	EstimatedDuration int
	Resources         []string
	Notes             string
	Images            []string
}

// CreateActivity creates an activity inside one phase. Caller-supplied status
// and progress are ignored: every activity starts pending at 0.
func (s *ScheduleService) CreateActivity(ctx context.Context, projectID, phaseID uuid.UUID, caller access.Caller, in CreateActivityInput) (*model.Activity, error) {
	if err := validateCreateActivity(&in); err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(project, caller, access.CapabilityWrite); err != nil {
		return nil, err
	}

	act := &model.Activity{
		ID:                uuid.New(),
		PhaseID:           phaseID,
		Title:             in.Title,
		Description:       in.Description,
		Contractor:        in.Contractor,
		Supervisor:        in.Supervisor,
		PlannedStart:      in.PlannedStart,
		PlannedEnd:        in.PlannedEnd,
		Status:            model.ActivityStatusPending,
		Priority:          in.Priority,
		Category:          in.Category,
		Progress:          0,
		EstimatedDuration: in.EstimatedDuration,
		Resources:         in.Resources,
		Notes:             in.Notes,
		Images:            in.Images,
	}
	if err := s.schedules.AppendActivity(ctx, projectID, phaseID, act); err != nil {
		return nil, err
	}
	metrics.IncrementScheduleMutation("create_activity")

	s.invalidateTree(ctx, projectID)
	s.publish(mq.EventActivityCreated, mq.ActivityCreatedPayload{
		ProjectID:  projectID,
		PhaseID:    phaseID,
		ActivityID: act.ID,
		Title:      act.Title,
		CreatedBy:  caller.ID,
		CreatedAt:  s.now(),
	})
	return act, nil
}

// UpdateActivity applies a field mask to exactly one activity. Progress is
// authoritative for completion; the only status a caller can set directly is
// on_hold, and a progress change in the same request overrides it.
func (s *ScheduleService) UpdateActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID, caller access.Caller, upd model.ActivityUpdate) error {
	if err := validateActivityUpdate(&upd); err != nil {
		return err
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := access.Authorize(project, caller, access.CapabilityWrite); err != nil {
		return err
	}

	if err := s.schedules.UpdateActivity(ctx, projectID, phaseID, activityID, upd); err != nil {
		return err
	}
	metrics.IncrementScheduleMutation("update_activity")

	s.invalidateTree(ctx, projectID)
	s.publish(mq.EventActivityUpdated, mq.ActivityUpdatedPayload{
		ProjectID:  projectID,
		PhaseID:    phaseID,
		ActivityID: activityID,
		Fields:     maskFields(upd),
		UpdatedBy:  caller.ID,
		UpdatedAt:  s.now(),
	})
	return nil
}

func (s *ScheduleService) DeleteActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID, caller access.Caller) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := access.Authorize(project, caller, access.CapabilityWrite); err != nil {
		return err
	}

	if err := s.schedules.RemoveActivity(ctx, projectID, phaseID, activityID); err != nil {
		return err
	}
	metrics.IncrementScheduleMutation("delete_activity")

	s.invalidateTree(ctx, projectID)
	s.publish(mq.EventActivityDeleted, mq.ActivityDeletedPayload{
		ProjectID:  projectID,
		PhaseID:    phaseID,
		ActivityID: activityID,
		DeletedBy:  caller.ID,
		DeletedAt:  s.now(),
	})
	return nil
}

func validateCreateActivity(in *CreateActivityInput) error {
	if in.Title == "" {
		return apperr.New(apperr.ValidationFailed, "activity title is required")
	}
	if in.Contractor == "" {
		return apperr.New(apperr.ValidationFailed, "activity contractor is required")
	}
	if !in.PlannedEnd.After(in.PlannedStart) {
		return apperr.New(apperr.ValidationFailed, "planned end date must be after planned start date")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return apperr.Newf(apperr.ValidationFailed, "invalid priority %q", in.Priority)
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if !model.ValidCategory(in.Category) {
		return apperr.Newf(apperr.ValidationFailed, "invalid category %q", in.Category)
	}
	if in.EstimatedDuration < 0 {
		return apperr.New(apperr.ValidationFailed, "estimated duration must not be negative")
	}
	return nil
}

// validateActivityUpdate checks the mask and normalizes the status field:
// derivable statuses are dropped (reads recompute them anyway), on_hold is
// kept unless progress in the same request says completed.
func validateActivityUpdate(upd *model.ActivityUpdate) error {
	if upd.Empty() {
		return apperr.New(apperr.ValidationFailed, "no fields to update")
	}
	if upd.Title != nil && *upd.Title == "" {
		return apperr.New(apperr.ValidationFailed, "activity title must not be empty")
	}
	if upd.Contractor != nil && *upd.Contractor == "" {
		return apperr.New(apperr.ValidationFailed, "activity contractor must not be empty")
	}
	if upd.Progress != nil && (*upd.Progress < 0 || *upd.Progress > 100) {
		return apperr.New(apperr.ValidationFailed, "progress must be between 0 and 100")
	}
	if upd.PlannedStart != nil && upd.PlannedEnd != nil && !upd.PlannedEnd.After(*upd.PlannedStart) {
		return apperr.New(apperr.ValidationFailed, "planned end date must be after planned start date")
	}
	if upd.Priority != nil && !model.ValidPriority(*upd.Priority) {
		return apperr.Newf(apperr.ValidationFailed, "invalid priority %q", *upd.Priority)
	}
	if upd.Category != nil && !model.ValidCategory(*upd.Category) {
		return apperr.Newf(apperr.ValidationFailed, "invalid category %q", *upd.Category)
	}

	if upd.Status != nil {
		if !model.ValidActivityStatus(*upd.Status) {
			return apperr.Newf(apperr.ValidationFailed, "invalid status %q", *upd.Status)
		}
		if *upd.Status != model.ActivityStatusOnHold {
			// Derivable statuses are not caller input.
			upd.Status = nil
			if upd.Empty() {
				return apperr.New(apperr.ValidationFailed, "status cannot be set directly; update progress instead")
			}
		} else if upd.Progress != nil && *upd.Progress >= 100 {
			// Progress wins over an explicit hold.
			completed := model.ActivityStatusCompleted
			upd.Status = &completed
		}
	}
	if upd.Status == nil && upd.Progress != nil {
		// Keep the stored status hint in step with the new progress; a
		// progress change also clears a previous on_hold.
		hint := model.ActivityStatusPending
		switch {
		case *upd.Progress >= 100:
			hint = model.ActivityStatusCompleted
		case *upd.Progress > 0:
			hint = model.ActivityStatusInProgress
		}
		upd.Status = &hint
	}
	return nil
}

func maskFields(upd model.ActivityUpdate) []string {
	var fields []string
	addIf := func(ok bool, name string) {
		if ok {
			fields = append(fields, name)
		}
	}
	addIf(upd.Title != nil, "title")
	addIf(upd.Description != nil, "description")
	addIf(upd.Contractor != nil, "contractor")
	addIf(upd.Supervisor != nil, "supervisor")
	addIf(upd.PlannedStart != nil, "planned_start")
	addIf(upd.PlannedEnd != nil, "planned_end")
	addIf(upd.ActualStart != nil, "actual_start")
	addIf(upd.ActualEnd != nil, "actual_end")
	addIf(upd.Status != nil, "status")
	addIf(upd.Priority != nil, "priority")
	addIf(upd.Category != nil, "category")
	addIf(upd.Progress != nil, "progress")
	addIf(upd.EstimatedDuration != nil, "estimated_duration")
	addIf(upd.ActualDuration != nil, "actual_duration")
	addIf(upd.Resources != nil, "resources")
	addIf(upd.Notes != nil, "notes")
	addIf(upd.Images != nil, "images")
	return fields
}

func treeCacheKey(projectID uuid.UUID) string {
	return fmt.Sprintf("schedule:tree:%s", projectID)
}

// cachedTree returns a cached schedule tree or nil. Redis being down never
// blocks a read; we log and fall through to the store.
func (s *ScheduleService) cachedTree(ctx context.Context, projectID uuid.UUID) *model.Schedule {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, treeCacheKey(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Schedule tree cache read failed",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	var sched model.Schedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		return nil
	}
	return &sched
}

func (s *ScheduleService) storeTree(ctx context.Context, projectID uuid.UUID, sched *model.Schedule) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(sched)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, treeCacheKey(projectID), raw, treeCacheTTL).Err(); err != nil {
		s.logger.Warn("Schedule tree cache write failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	}
}

func (s *ScheduleService) invalidateTree(ctx context.Context, projectID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, treeCacheKey(projectID)).Err(); err != nil {
		s.logger.Warn("Schedule tree cache invalidation failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
	}
}

// publish sends a domain event best-effort. A dead broker is logged, not
// surfaced: the write already committed.
func (s *ScheduleService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish schedule event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
