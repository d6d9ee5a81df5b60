package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"buildtrack/internal/access"
	"buildtrack/internal/apperr"
	"buildtrack/internal/model"
	"buildtrack/internal/service"
)

type ScheduleHandler struct {
	schedules *service.ScheduleService
	logger    *zap.Logger
}

func NewScheduleHandler(schedules *service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// GetSchedule handles GET /projects/:projectId/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	view, err := h.schedules.GetSchedule(c.Request.Context(), projectID, caller)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": view})
}

type createPhaseRequest struct {
	Name         string      `json:"name" binding:"required"`
	Description  string      `json:"description"`
	StartDate    time.Time   `json:"start_date" binding:"required"`
	EndDate      time.Time   `json:"end_date" binding:"required"`
	Dependencies []uuid.UUID `json:"dependencies"`
}

// CreatePhase handles POST /projects/:projectId/schedule/phases
func (h *ScheduleHandler) CreatePhase(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req createPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	phase, err := h.schedules.CreatePhase(c.Request.Context(), projectID, caller, service.CreatePhaseInput{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"phase": phase})
}

type createActivityRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	Contractor        string    `json:"contractor" binding:"required"`
	Supervisor        string    `json:"supervisor"`
	PlannedStart      time.Time `json:"planned_start_date" binding:"required"`
	PlannedEnd        time.Time `json:"planned_end_date" binding:"required"`
	Priority          string    `json:"priority"`
	Category          string    `json:"category"`
	EstimatedDuration int       `json:"estimated_duration"`
	Resources         []string  `json:"resources"`
	Notes             string    `json:"notes"`
	Images            []string  `json:"images"`
}

// CreateActivity handles POST /projects/:projectId/schedule/phases/:phaseId/activities
func (h *ScheduleHandler) CreateActivity(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	phaseID, ok := pathUUID(c, "phaseId")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	act, err := h.schedules.CreateActivity(c.Request.Context(), projectID, phaseID, caller, service.CreateActivityInput{
		Title:             req.Title,
		Description:       req.Description,
		Contractor:        req.Contractor,
		Supervisor:        req.Supervisor,
		PlannedStart:      req.PlannedStart,
		PlannedEnd:        req.PlannedEnd,
		Priority:          req.Priority,
		Category:          req.Category,
		EstimatedDuration: req.EstimatedDuration,
		Resources:         req.Resources,
		Notes:             req.Notes,
		Images:            req.Images,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"activity": act})
}

// UpdateActivity handles PATCH /projects/:projectId/schedule/phases/:phaseId/activities/:activityId
func (h *ScheduleHandler) UpdateActivity(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	phaseID, ok := pathUUID(c, "phaseId")
	if !ok {
		return
	}
	activityID, ok := pathUUID(c, "activityId")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var upd model.ActivityUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.schedules.UpdateActivity(c.Request.Context(), projectID, phaseID, activityID, caller, upd); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteActivity handles DELETE /projects/:projectId/schedule/phases/:phaseId/activities/:activityId
func (h *ScheduleHandler) DeleteActivity(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	phaseID, ok := pathUUID(c, "phaseId")
	if !ok {
		return
	}
	activityID, ok := pathUUID(c, "activityId")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	if err := h.schedules.DeleteActivity(c.Request.Context(), projectID, phaseID, activityID, caller); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the error taxonomy onto HTTP statuses. Internal errors are
// logged with the cause but never detailed to the caller.
func (h *ScheduleHandler) writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.ValidationFailed:
		status = http.StatusBadRequest
	case apperr.AccessDenied:
		status = http.StatusForbidden
	case apperr.NotFound, apperr.PhaseNotFound:
		status = http.StatusNotFound
	case apperr.StoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	if kind == apperr.Internal {
		h.logger.Error("Schedule request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{"error": gin.H{
		"kind":    string(kind),
		"message": apperr.MessageOf(err),
	}})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func callerFrom(c *gin.Context) (access.Caller, bool) {
	rawID, idOK := c.Get("user_id")
	rawRole, roleOK := c.Get("role")
	if !idOK || !roleOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return access.Caller{}, false
	}

	id, ok := rawID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return access.Caller{}, false
	}
	role, ok := rawRole.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return access.Caller{}, false
	}

	return access.Caller{ID: id, Role: role}, true
}
