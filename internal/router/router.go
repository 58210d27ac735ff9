package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/handler"
	"github.com/adminforge/backoffice-api/internal/middleware"
	"github.com/adminforge/backoffice-api/internal/models"
	"github.com/adminforge/backoffice-api/internal/service"
	"github.com/adminforge/backoffice-api/pkg/config"
	appErrors "github.com/adminforge/backoffice-api/pkg/errors"
	"github.com/adminforge/backoffice-api/pkg/logger"
	corsmiddleware "github.com/adminforge/backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/adminforge/backoffice-api/pkg/middleware/requestid"
	"github.com/adminforge/backoffice-api/pkg/response"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Auth      *service.AuthService
	Users     *service.UserService
	Roles     *service.RoleService
	Audit     *service.AuditService
	Analytics *service.AnalyticsService
	Metrics   *service.MetricsService

	Identities middleware.IdentityLoader
	RoleLoader middleware.RoleLoader
}

// New assembles the gin engine with the full route table. Every route under
// the API prefix except login sits behind the access gate; management routes
// additionally require the superadmin role, and state-changing routes carry
// an audit interceptor.
func New(d Deps) *gin.Engine {
	if d.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		d.Logger.Error("panic recovered", zap.Any("panic", recovered))
		err := appErrors.ErrInternal
		if d.Config.Env != config.EnvProduction {
			err = appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("panic: %v", recovered))
		}
		response.Error(c, err)
		c.Abort()
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.Config.CORS.AllowedOrigins))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(d.Auth, d.Logger)
	userHandler := handler.NewUserHandler(d.Users, d.Logger)
	roleHandler := handler.NewRoleHandler(d.Roles, d.Logger)
	auditHandler := handler.NewAuditHandler(d.Audit, d.Logger)
	analyticsHandler := handler.NewAnalyticsHandler(d.Analytics, d.Logger)

	api := r.Group(d.Config.APIPrefix)

	api.POST("/auth/login",
		middleware.Audit(d.Audit, models.AuditActionLogin, "auth", nil),
		authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(d.Auth, d.Identities))

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password",
		middleware.Audit(d.Audit, models.AuditActionPasswordChange, "user", nil),
		authHandler.ChangePassword)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(d.RoleLoader, models.RoleSuperAdmin))

	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.POST("/users",
		middleware.Audit(d.Audit, models.AuditActionUserCreate, "user", nil),
		userHandler.Create)
	admin.PUT("/users/:id",
		middleware.Audit(d.Audit, models.AuditActionUserUpdate, "user", middleware.PathParamTarget("id")),
		userHandler.Update)
	admin.DELETE("/users/:id",
		middleware.Audit(d.Audit, models.AuditActionUserDelete, "user", middleware.PathParamTarget("id")),
		userHandler.Delete)

	admin.GET("/roles", roleHandler.List)
	admin.POST("/roles",
		middleware.Audit(d.Audit, models.AuditActionRoleCreate, "role", nil),
		roleHandler.Create)
	admin.PUT("/roles/:id",
		middleware.Audit(d.Audit, models.AuditActionRoleUpdate, "role", middleware.PathParamTarget("id")),
		roleHandler.Update)
	admin.POST("/roles/assign",
		middleware.Audit(d.Audit, models.AuditActionRoleAssign, "user", nil),
		roleHandler.Assign)

	admin.GET("/audit-logs", auditHandler.List)
	admin.GET("/audit-logs/export", auditHandler.Export)

	admin.GET("/analytics/summary", analyticsHandler.Summary)

	return r
}
