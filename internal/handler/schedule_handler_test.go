package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buildtrack/internal/apperr"
	"buildtrack/internal/handler"
	"buildtrack/internal/httpserver"
	"buildtrack/internal/model"
	"buildtrack/internal/schedule"
	"buildtrack/internal/service"
	"buildtrack/internal/util"
)

const testSecret = "test-secret"

type stubProjects struct {
	project *model.Project
}

func (s *stubProjects) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	if s.project != nil && s.project.ID == id {
		cp := *s.project
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "project not found")
}

type stubSchedules struct {
	schedule *model.Schedule
	err      error
}

func (s *stubSchedules) GetOrInit(_ context.Context, project *model.Project) (*model.Schedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.schedule != nil {
		return s.schedule, nil
	}
	return &model.Schedule{ProjectID: project.ID, LastUpdated: time.Now()}, nil
}

func (s *stubSchedules) AppendPhase(context.Context, uuid.UUID, *model.Phase) error { return s.err }
func (s *stubSchedules) AppendActivity(context.Context, uuid.UUID, uuid.UUID, *model.Activity) error {
	return s.err
}
func (s *stubSchedules) UpdateActivity(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, model.ActivityUpdate) error {
	return s.err
}
func (s *stubSchedules) RemoveActivity(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return s.err
}
func (s *stubSchedules) RefreshCachedStats(context.Context, uuid.UUID, schedule.Stats) error {
	return nil
}

func newTestRouter(t *testing.T, projects *stubProjects, schedules *stubSchedules) *httpserver.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewScheduleService(projects, schedules, nil, nil, zap.NewNop())
	h := handler.NewScheduleHandler(svc, zap.NewNop())
	return httpserver.NewRouter(h, testSecret)
}

func bearerFor(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	token, err := util.GenerateJWT(userID, role, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func errorKind(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Kind
}

func TestGetScheduleRequiresToken(t *testing.T) {
	router := newTestRouter(t, &stubProjects{}, &stubSchedules{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/"+uuid.NewString()+"/schedule", nil)
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetScheduleRejectsBadProjectID(t *testing.T) {
	router := newTestRouter(t, &stubProjects{}, &stubSchedules{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/not-a-uuid/schedule", nil)
	req.Header.Set("Authorization", bearerFor(t, uuid.New(), "admin"))
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScheduleStatusMapping(t *testing.T) {
	managerID := uuid.New()
	project := &model.Project{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Managers: []uuid.UUID{managerID},
	}

	tests := []struct {
		name       string
		projects   *stubProjects
		schedules  *stubSchedules
		auth       string
		wantStatus int
		wantKind   string
	}{
		{
			"unknown project is 404",
			&stubProjects{},
			&stubSchedules{},
			bearerFor(t, managerID, "manager"),
			http.StatusNotFound,
			"not_found",
		},
		{
			"foreign manager is 403",
			&stubProjects{project: project},
			&stubSchedules{},
			bearerFor(t, uuid.New(), "manager"),
			http.StatusForbidden,
			"access_denied",
		},
		{
			"store outage is 503",
			&stubProjects{project: project},
			&stubSchedules{err: apperr.New(apperr.StoreUnavailable, "store request timed out")},
			bearerFor(t, managerID, "manager"),
			http.StatusServiceUnavailable,
			"store_unavailable",
		},
		{
			"assigned manager reads 200",
			&stubProjects{project: project},
			&stubSchedules{},
			bearerFor(t, managerID, "manager"),
			http.StatusOK,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.projects, tt.schedules)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/projects/"+project.ID.String()+"/schedule", nil)
			req.Header.Set("Authorization", tt.auth)
			router.Engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errorKind(t, w.Body.Bytes()))
			}
		})
	}
}

func TestCreateActivityValidationIs400(t *testing.T) {
	managerID := uuid.New()
	project := &model.Project{ID: uuid.New(), ClientID: uuid.New(), Managers: []uuid.UUID{managerID}}
	router := newTestRouter(t, &stubProjects{project: project}, &stubSchedules{})

	// planned end before planned start
	body := `{
		"title": "Pour foundation",
		"contractor": "Jansen BV",
		"planned_start_date": "2025-03-10T08:00:00Z",
		"planned_end_date": "2025-03-01T17:00:00Z"
	}`
	url := "/projects/" + project.ID.String() + "/schedule/phases/" + uuid.NewString() + "/activities"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, managerID, "manager"))
	req.Header.Set("Content-Type", "application/json")
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorKind(t, w.Body.Bytes()))
}

func TestDeleteActivityNotFoundIs404(t *testing.T) {
	managerID := uuid.New()
	project := &model.Project{ID: uuid.New(), ClientID: uuid.New(), Managers: []uuid.UUID{managerID}}
	schedules := &stubSchedules{err: apperr.New(apperr.NotFound, "activity not found in phase")}
	router := newTestRouter(t, &stubProjects{project: project}, schedules)

	url := "/projects/" + project.ID.String() + "/schedule/phases/" +
		uuid.NewString() + "/activities/" + uuid.NewString()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	req.Header.Set("Authorization", bearerFor(t, managerID, "manager"))
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorKind(t, w.Body.Bytes()))
}
