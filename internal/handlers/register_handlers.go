package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kristinaglagolevva-alt/billing_ops_app/cmd/docs"
	portssvc "github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/ports/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/services"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/middleware"
	"github.com/kristinaglagolevva-alt/billing_ops_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.Container,
	taskSource portssvc.TaskSource,
	loginRateLimit gin.HandlerFunc,
) {
	RegisterCustomValidators()

	registerHomeRoutes(r)

	// Public authentication routes
	registerAuthRoutes(r, container.Auth, loginRateLimit)

	// API v1 routes behind the auth middleware
	setupAPIV1Routes(r, cfg, container, taskSource)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.Container,
	taskSource portssvc.TaskSource,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerTaskRoutes(v1, container.Task, taskSource)
	RegisterWorkPackageRoutes(v1, container.WorkPackage)
	RegisterDocumentRoutes(v1, container.Document)
	registerIndividualRoutes(v1, container.Reconciler)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
