package server

import (
	"net/http"

	"github.com/chenlehua/tara-sub000/internal/config"
	"github.com/chenlehua/tara-sub000/internal/handlers"
	"github.com/chenlehua/tara-sub000/internal/middleware"
	"github.com/chenlehua/tara-sub000/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("tara_session", store))

	r.Use(middleware.InjectUser())

	// AUTH
	r.POST("/api/register", handlers.Register)
	r.POST("/api/login", handlers.Login)
	r.POST("/api/logout", handlers.Logout)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	// ПРОЕКТЫ
	api.GET("/projects", handlers.ListProjects)
	api.POST("/projects",
		middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst),
		handlers.CreateProject,
	)
	api.GET("/projects/:id", handlers.GetProject)
	api.POST("/projects/:id/status",
		middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst),
		handlers.UpdateProjectStatus,
	)

	// ДОКУМЕНТЫ
	api.GET("/projects/:id/documents", handlers.ListDocuments)
	api.POST("/projects/:id/documents",
		middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst),
		handlers.AddDocument,
	)

	// АКТИВЫ И УГРОЗЫ
	api.GET("/projects/:id/assets", handlers.ListAssets)
	api.POST("/projects/:id/assets",
		middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst),
		handlers.CreateAsset,
	)
	api.GET("/projects/:id/threats", handlers.ListThreats)
	api.GET("/measures", handlers.ListMeasures)

	// ====== ГЕНЕРАЦИЯ ОТЧЁТА ======
	// запуск в один клик + опрос прогресса
	api.POST("/projects/:id/generate",
		middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst),
		handlers.StartGeneration,
	)
	api.GET("/tasks/:task_id", handlers.TaskProgress)
	api.GET("/projects/:id/report", handlers.GetReport)

	// АУДИТ
	api.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
