package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"buildtrack/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// FindByID returns the project row or a NotFound error.
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	query := `
        SELECT id, title, client_id, manager_ids, start_date, end_date,
               progress, status, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.ClientID,
		&p.Managers,
		&p.StartDate,
		&p.EndDate,
		&p.Progress,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		r.logger.Debug("Project lookup failed",
			zap.String("project_id", id.String()),
			zap.Error(err),
		)
		return nil, classifyStoreErr(err, "project not found")
	}
	return &p, nil
}
