package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"buildtrack/internal/apperr"
	"buildtrack/internal/model"
	"buildtrack/internal/schedule"
)

const (
	defaultPhaseName        = "Planning & Design"
	defaultPhaseWindowDays  = 14
	defaultPhaseDescription = "Initial planning and design work"
)

// ScheduleRepository persists the Project -> Phase -> Activity tree. Phases
// and activities are stored as rows addressed by (project, phase, activity)
// ids, so a targeted mutation is a single-row statement and can never clobber
// a sibling. Every mutation folds the schedule and project timestamps into
// the same transaction.
type ScheduleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewScheduleRepository(db *pgxpool.Pool, logger *zap.Logger) *ScheduleRepository {
	return &ScheduleRepository{db: db, logger: logger}
}

// GetOrInit loads the project's schedule tree, creating the schedule row and
// seeding one default phase the first time it is requested. The seed is tied
// to winning the schedule-row insert, so two concurrent first reads seed
// exactly one phase.
func (r *ScheduleRepository) GetOrInit(ctx context.Context, project *model.Project) (*model.Schedule, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, classifyStoreErr(err, "project not found")
	}
	defer tx.Rollback(ctx)

	var insertedID uuid.UUID
	err = tx.QueryRow(ctx, `
        INSERT INTO schedules (project_id, last_updated, created_at, updated_at)
        VALUES ($1, NOW(), NOW(), NOW())
        ON CONFLICT (project_id) DO NOTHING
        RETURNING project_id
    `, project.ID).Scan(&insertedID)

	switch {
	case err == nil:
		if err := r.seedDefaultPhase(ctx, tx, project); err != nil {
			return nil, err
		}
		r.logger.Info("Seeded default schedule phase",
			zap.String("project_id", project.ID.String()),
			zap.String("phase_name", defaultPhaseName),
		)
	case errors.Is(err, pgx.ErrNoRows):
		// Schedule already exists; nothing to seed.
	default:
		return nil, classifyStoreErr(err, "project not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyStoreErr(err, "project not found")
	}

	return r.loadTree(ctx, project.ID)
}

func (r *ScheduleRepository) seedDefaultPhase(ctx context.Context, tx pgx.Tx, project *model.Project) error {
	start := project.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	end := start.AddDate(0, 0, defaultPhaseWindowDays)

	_, err := tx.Exec(ctx, `
        INSERT INTO phases (id, project_id, name, description, start_date, end_date,
                            status, progress, position, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, NOW(), NOW())
    `, uuid.New(), project.ID, defaultPhaseName, defaultPhaseDescription,
		start, end, model.PhaseStatusUpcoming)
	if err != nil {
		return classifyStoreErr(err, "project not found")
	}
	return nil
}

// loadTree materializes the schedule row plus all phases and activities,
// ordered by position.
func (r *ScheduleRepository) loadTree(ctx context.Context, projectID uuid.UUID) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.QueryRow(ctx, `
        SELECT project_id, last_updated, overall_progress,
               completed_count, active_count, delayed_count, total_count,
               created_at, updated_at
        FROM schedules
        WHERE project_id = $1
    `, projectID).Scan(
		&s.ProjectID,
		&s.LastUpdated,
		&s.OverallProgress,
		&s.CompletedCount,
		&s.ActiveCount,
		&s.DelayedCount,
		&s.TotalCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, classifyStoreErr(err, "schedule not found")
	}

	phaseRows, err := r.db.Query(ctx, `
        SELECT id, project_id, name, description, start_date, end_date,
               status, progress, dependencies, position, created_at, updated_at
        FROM phases
        WHERE project_id = $1
        ORDER BY position
    `, projectID)
	if err != nil {
		return nil, classifyStoreErr(err, "schedule not found")
	}
	defer phaseRows.Close()

	phaseIndex := make(map[uuid.UUID]int)
	for phaseRows.Next() {
		var p model.Phase
		if err := phaseRows.Scan(
			&p.ID, &p.ProjectID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
			&p.Status, &p.Progress, &p.Dependencies, &p.Position, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, classifyStoreErr(err, "schedule not found")
		}
		p.Activities = []model.Activity{}
		phaseIndex[p.ID] = len(s.Phases)
		s.Phases = append(s.Phases, p)
	}
	if err := phaseRows.Err(); err != nil {
		return nil, classifyStoreErr(err, "schedule not found")
	}

	actRows, err := r.db.Query(ctx, `
        SELECT a.id, a.phase_id, a.title, a.description, a.contractor, a.supervisor,
               a.planned_start, a.planned_end, a.actual_start, a.actual_end,
               a.status, a.priority, a.category, a.progress,
               a.estimated_duration, a.actual_duration,
               a.resources, a.notes, a.images, a.position, a.created_at, a.updated_at
        FROM activities a
        WHERE a.project_id = $1
        ORDER BY a.phase_id, a.position
    `, projectID)
	if err != nil {
		return nil, classifyStoreErr(err, "schedule not found")
	}
	defer actRows.Close()

	for actRows.Next() {
		var a model.Activity
		if err := actRows.Scan(
			&a.ID, &a.PhaseID, &a.Title, &a.Description, &a.Contractor, &a.Supervisor,
			&a.PlannedStart, &a.PlannedEnd, &a.ActualStart, &a.ActualEnd,
			&a.Status, &a.Priority, &a.Category, &a.Progress,
			&a.EstimatedDuration, &a.ActualDuration,
			&a.Resources, &a.Notes, &a.Images, &a.Position, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, classifyStoreErr(err, "schedule not found")
		}
		if idx, ok := phaseIndex[a.PhaseID]; ok {
			s.Phases[idx].Activities = append(s.Phases[idx].Activities, a)
		}
	}
	if err := actRows.Err(); err != nil {
		return nil, classifyStoreErr(err, "schedule not found")
	}

	return &s, nil
}

// AppendPhase adds a phase to the end of the project's phase list.
func (r *ScheduleRepository) AppendPhase(ctx context.Context, projectID uuid.UUID, p *model.Phase) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classifyStoreErr(err, "project not found")
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        INSERT INTO phases (id, project_id, name, description, start_date, end_date,
                            status, progress, dependencies, position, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8,
                COALESCE((SELECT MAX(position) + 1 FROM phases WHERE project_id = $2), 0),
                NOW(), NOW())
        RETURNING position, created_at, updated_at
    `, p.ID, projectID, p.Name, p.Description, p.StartDate, p.EndDate,
		p.Status, p.Dependencies).Scan(&p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to append phase",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return classifyStoreErr(err, "project not found")
	}

	if err := r.touch(ctx, tx, projectID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyStoreErr(err, "project not found")
	}

	r.logger.Info("Phase appended",
		zap.String("project_id", projectID.String()),
		zap.String("phase_id", p.ID.String()),
	)
	return nil
}

// AppendActivity adds an activity to the end of one phase's activity list.
// The insert is guarded on the phase belonging to the project; zero rows
// means the phase did not resolve.
func (r *ScheduleRepository) AppendActivity(ctx context.Context, projectID, phaseID uuid.UUID, a *model.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classifyStoreErr(err, "phase not found")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO activities (id, project_id, phase_id, title, description,
                                contractor, supervisor, planned_start, planned_end,
                                status, priority, category, progress,
                                estimated_duration, resources, notes, images,
                                position, created_at, updated_at)
        SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13, $14, $15, $16,
               COALESCE((SELECT MAX(position) + 1 FROM activities WHERE phase_id = $3), 0),
               NOW(), NOW()
        WHERE EXISTS (SELECT 1 FROM phases WHERE id = $3 AND project_id = $2)
    `, a.ID, projectID, phaseID, a.Title, a.Description,
		a.Contractor, a.Supervisor, a.PlannedStart, a.PlannedEnd,
		a.Status, a.Priority, a.Category,
		a.EstimatedDuration, a.Resources, a.Notes, a.Images)
	if err != nil {
		return classifyStoreErr(err, "phase not found")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.PhaseNotFound, "phase not found in project")
	}

	if err := r.touch(ctx, tx, projectID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyStoreErr(err, "phase not found")
	}

	r.logger.Info("Activity appended",
		zap.String("project_id", projectID.String()),
		zap.String("phase_id", phaseID.String()),
		zap.String("activity_id", a.ID.String()),
	)
	return nil
}

// UpdateActivity mutates only the masked fields of exactly one activity,
// addressed by the full (project, phase, activity) path. Sibling rows are
// never read or written, which is what makes concurrent targeted updates to
// different activities safe without locking.
func (r *ScheduleRepository) UpdateActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID, upd model.ActivityUpdate) error {
	set, args := buildActivitySet(upd)
	if len(set) == 0 {
		return apperr.New(apperr.ValidationFailed, "no fields to update")
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, activityID, phaseID, projectID)
	n := len(args)
	query := fmt.Sprintf(`
        UPDATE activities
        SET %s
        WHERE id = $%d AND phase_id = $%d AND project_id = $%d
    `, strings.Join(set, ", "), n-2, n-1, n)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classifyStoreErr(err, "activity not found")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update activity",
			zap.String("activity_id", activityID.String()),
			zap.Error(err),
		)
		return classifyStoreErr(err, "activity not found")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "activity not found in phase")
	}

	if err := r.touch(ctx, tx, projectID); err != nil {
		return err
	}
	return classifyStoreErr(tx.Commit(ctx), "activity not found")
}

// RemoveActivity deletes one activity by full path. Zero matched rows is
// reported as NotFound, never as silent success.
func (r *ScheduleRepository) RemoveActivity(ctx context.Context, projectID, phaseID, activityID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classifyStoreErr(err, "activity not found")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        DELETE FROM activities
        WHERE id = $1 AND phase_id = $2 AND project_id = $3
    `, activityID, phaseID, projectID)
	if err != nil {
		return classifyStoreErr(err, "activity not found")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "activity not found in phase")
	}

	if err := r.touch(ctx, tx, projectID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyStoreErr(err, "activity not found")
	}

	r.logger.Info("Activity removed",
		zap.String("project_id", projectID.String()),
		zap.String("activity_id", activityID.String()),
	)
	return nil
}

// RefreshCachedStats writes the recomputed roll-ups back onto the schedule
// row. Best effort: reads never trust these columns.
func (r *ScheduleRepository) RefreshCachedStats(ctx context.Context, projectID uuid.UUID, stats schedule.Stats) error {
	_, err := r.db.Exec(ctx, `
        UPDATE schedules
        SET overall_progress = $2, completed_count = $3, active_count = $4,
            delayed_count = $5, total_count = $6
        WHERE project_id = $1
    `, projectID, stats.OverallProgress, stats.Completed, stats.InProgress,
		stats.Delayed, stats.TotalActivities)
	return classifyStoreErr(err, "schedule not found")
}

// touch folds the schedule and project timestamps into the caller's
// transaction so they land atomically with the nested mutation.
func (r *ScheduleRepository) touch(ctx context.Context, tx pgx.Tx, projectID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
        UPDATE schedules SET last_updated = NOW(), updated_at = NOW()
        WHERE project_id = $1
    `, projectID); err != nil {
		return classifyStoreErr(err, "schedule not found")
	}
	if _, err := tx.Exec(ctx, `
        UPDATE projects SET updated_at = NOW() WHERE id = $1
    `, projectID); err != nil {
		return classifyStoreErr(err, "project not found")
	}
	return nil
}

func buildActivitySet(upd model.ActivityUpdate) ([]string, []any) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Contractor != nil {
		add("contractor", *upd.Contractor)
	}
	if upd.Supervisor != nil {
		add("supervisor", *upd.Supervisor)
	}
	if upd.PlannedStart != nil {
		add("planned_start", *upd.PlannedStart)
	}
	if upd.PlannedEnd != nil {
		add("planned_end", *upd.PlannedEnd)
	}
	if upd.ActualStart != nil {
		add("actual_start", *upd.ActualStart)
	}
	if upd.ActualEnd != nil {
		add("actual_end", *upd.ActualEnd)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Priority != nil {
		add("priority", *upd.Priority)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Progress != nil {
		add("progress", *upd.Progress)
	}
	if upd.EstimatedDuration != nil {
		add("estimated_duration", *upd.EstimatedDuration)
	}
	if upd.ActualDuration != nil {
		add("actual_duration", *upd.ActualDuration)
	}
	if upd.Resources != nil {
		add("resources", upd.Resources)
	}
	if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.Images != nil {
		add("images", upd.Images)
	}

	return set, args
}
