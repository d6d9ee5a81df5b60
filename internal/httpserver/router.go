package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"buildtrack/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(scheduleHandler *handler.ScheduleHandler, jwtSecret string) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// All schedule routes require an authenticated caller.
	projects := r.Group("/projects")
	projects.Use(AuthMiddleware(jwtSecret))
	{
		projects.GET("/:projectId/schedule", scheduleHandler.GetSchedule)
		projects.POST("/:projectId/schedule/phases", scheduleHandler.CreatePhase)
		projects.POST("/:projectId/schedule/phases/:phaseId/activities", scheduleHandler.CreateActivity)
		projects.PATCH("/:projectId/schedule/phases/:phaseId/activities/:activityId", scheduleHandler.UpdateActivity)
		projects.DELETE("/:projectId/schedule/phases/:phaseId/activities/:activityId", scheduleHandler.DeleteActivity)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
