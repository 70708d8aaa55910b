package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"portfoliobuilder/internal/handler"
	"portfoliobuilder/pkg/otel"
	"portfoliobuilder/pkg/rbac"
)

// ReadinessCheck 返回 nil 表示依赖可用
type ReadinessCheck func(ctx context.Context) error

type Handlers struct {
	Auth      *handler.AuthHandler
	Project   *handler.ProjectHandler
	Wizard    *handler.WizardHandler
	Directory *handler.DirectoryHandler
	Admin     *handler.AdminHandler
}

type Options struct {
	JWTSecret string
	Logger    *zap.Logger
	// key 会作为 /readyz 返回的状态前缀，例如 db -> db_not_ready
	Checks  map[string]ReadinessCheck
	Tracing bool
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, opts Options) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	if opts.Tracing {
		r.Use(otel.GinMiddleware())
	}
	r.Use(RequestLogger(opts.Logger))
	r.Use(MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyHandler(opts.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)
	r.GET("/directory", h.Directory.List)
	r.GET("/directory/:slug", h.Directory.Get)

	// Protected
	authed := r.Group("/")
	authed.Use(AuthMiddleware(opts.JWTSecret))
	{
		read := RequirePermission(rbac.PermissionReadProject)
		create := RequirePermission(rbac.PermissionCreateProject)
		update := RequirePermission(rbac.PermissionUpdateProject)
		del := RequirePermission(rbac.PermissionDeleteProject)

		authed.GET("/projects", read, h.Project.ListProjects)
		authed.POST("/projects", create, h.Project.CreateProject)
		authed.GET("/projects/:id", read, h.Project.GetProject)
		authed.PATCH("/projects/:id", update, h.Project.UpdateProject)
		authed.DELETE("/projects/:id", del, h.Project.DeleteProject)
		authed.POST("/projects/:id/sections/:index/toggle", update, h.Project.ToggleSection)
		authed.POST("/projects/:id/sections/move", update, h.Project.MoveSection)
		authed.PUT("/projects/:id/config/:field", update, h.Project.UpdateConfig)

		wiz := authed.Group("/wizard", create)
		wiz.GET("", h.Wizard.Get)
		wiz.POST("/next", h.Wizard.Next)
		wiz.POST("/back", h.Wizard.Back)
		wiz.POST("/cancel", h.Wizard.Cancel)
		wiz.POST("/name", h.Wizard.SetName)
		wiz.POST("/create", h.Wizard.Create)
		wiz.POST("/sections/:index/toggle", h.Wizard.ToggleSection)
		wiz.POST("/sections/move", h.Wizard.MoveSection)
		wiz.PUT("/config/:field", h.Wizard.UpdateConfig)

		admin := authed.Group("/admin", RequirePermission(rbac.PermissionReplayOutbox))
		admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return &Router{Engine: r}
}

func readyHandler(checks map[string]ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// Server 返回绑定到 port 的 http.Server，由调用方负责优雅关闭
func (r *Router) Server(port string) *http.Server {
	return &http.Server{
		Addr:              port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
