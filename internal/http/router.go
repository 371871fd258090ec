package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/sprout-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sprout-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	DailyLogHandler   *httpH.DailyLogHandler
	ProfileHandler    *httpH.ProfileHandler
	WeeklyPlanHandler *httpH.WeeklyPlanHandler
	HealthHandler     *httpH.HealthHandler

	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(cfg.AuthMiddleware.ResolveMode())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/logout", cfg.AuthHandler.Logout)
		auth.POST("/demo", cfg.AuthHandler.Demo)
		auth.GET("/status", cfg.AuthHandler.Status)
	}

	// Everything below needs a session or the demo cookie.
	v1 := r.Group("/api/v1")
	v1.Use(cfg.AuthMiddleware.RequireMode())
	{
		v1.GET("/daily-logs", cfg.DailyLogHandler.List)
		v1.POST("/daily-logs", cfg.DailyLogHandler.Create)
		v1.PATCH("/daily-logs", cfg.DailyLogHandler.AcceptCandidates)
		v1.PUT("/daily-logs", cfg.DailyLogHandler.UpdateNote)
		v1.DELETE("/daily-logs", cfg.DailyLogHandler.Delete)

		v1.GET("/profile", cfg.ProfileHandler.Get)
		v1.GET("/weekly-plan", cfg.WeeklyPlanHandler.Get)
		v1.PATCH("/weekly-plan", cfg.WeeklyPlanHandler.SyncJobStatus)
	}

	// Admin-only writes: profile edits and plan generation/deletion never run
	// against the demo store.
	admin := r.Group("/api/v1")
	admin.Use(cfg.AuthMiddleware.RequireMode(), cfg.AuthMiddleware.RequireAdmin())
	{
		admin.PATCH("/profile", cfg.ProfileHandler.Merge)
		admin.DELETE("/profile", cfg.ProfileHandler.RemoveValue)
		admin.POST("/weekly-plan", cfg.WeeklyPlanHandler.Generate)
		admin.DELETE("/weekly-plan", cfg.WeeklyPlanHandler.Delete)
	}

	return r
}
