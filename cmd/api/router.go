package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gigmarket-backend/internal/shared/middleware"
	"gigmarket-backend/internal/shared/response"
	"gigmarket-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupGigRoutes(v1, c)
	}

	return router
}

// ========================================
// GIG ROUTES
// ========================================
func setupGigRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)
	optionalAuth := middleware.OptionalAuthMiddleware(c.JWTManager)

	gigs := v1.Group("/gigs")
	{
		// Public surface; an optional token widens visibility (own
		// drafts, own applications).
		gigs.GET("", optionalAuth, c.GigHandler.Search)
		gigs.GET("/:id", optionalAuth, c.GigHandler.GetByID)

		gigs.POST("", auth, c.GigHandler.Create)
		gigs.PUT("/:id", auth, c.GigHandler.Update)
		gigs.DELETE("/:id", auth, c.GigHandler.Delete)

		// Lifecycle transitions
		gigs.POST("/:id/publish", auth, c.GigHandler.Publish)
		gigs.POST("/:id/start", auth, c.GigHandler.Start)
		gigs.POST("/:id/complete", auth, c.GigHandler.Complete)
		gigs.POST("/:id/cancel", auth, c.GigHandler.Cancel)

		// Applications
		gigs.POST("/:id/apply", auth, c.ApplicationHandler.Apply)
		gigs.PUT("/:id/applications/:appId/accept", auth, c.ApplicationHandler.Accept)
		gigs.PUT("/:id/applications/:appId/reject", auth, c.ApplicationHandler.Reject)
		gigs.POST("/:id/applications/:appId/withdraw", auth, c.ApplicationHandler.Withdraw)

		// Actor-scoped lists
		gigs.GET("/user/posted", auth, c.GigHandler.ListPosted)
		gigs.GET("/user/applications", auth, c.ApplicationHandler.ListMine)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
		}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
		} else {
			health["database"] = "up"
		}

		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			health["status"] = "degraded"
			health["redis"] = err.Error()
		} else {
			health["redis"] = "up"
		}

		status := http.StatusOK
		if health["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		response.Success(ctx, status, health)
	}
}
