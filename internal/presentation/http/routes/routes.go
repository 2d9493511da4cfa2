// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/container"
	"github.com/fundroad/fundroad-go/internal/presentation/http/handlers"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
	"github.com/fundroad/fundroad-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware(config.CORSAllowedOrigins))
	r.Use(middleware.Metrics(container.Metrics))
	r.Use(middleware.Session())
	r.Use(middleware.OptionalAuth(container.AuthService, container.Logger))

	// Initialize handlers
	roadmapHandlers := handlers.NewRoadmapHandlers(container.RoadmapService, container.Logger, container.PerfTracker)
	journeyHandlers := handlers.NewJourneyHandlers(container.JourneyService, container.NavigationService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.JourneyService, container.NavigationService, container.Metrics, container.Logger, handlers.LiveConfig{
		PingInterval:   config.LivePingInterval,
		WriteTimeout:   config.LiveWriteTimeout,
		AllowedOrigins: config.CORSAllowedOrigins,
	})
	navigationHandlers := handlers.NewNavigationHandlers(container.NavigationService, container.Logger)
	resourceHandlers := handlers.NewResourceHandlers(container.ResourceService, container.AttachmentService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	functionHandlers := handlers.NewFunctionHandlers(container.TranslationService, container.ContactService, container.Logger)
	financingHandlers := handlers.NewFinancingHandlers(container.FinancingService)
	healthHandlers := handlers.NewHealthHandlers(container.DB, container.PerfTracker)

	// Step views and their legacy shapes
	r.GET("/roadmap", journeyHandlers.GetView)
	r.GET("/roadmap/step/:stepId", roadmapHandlers.GetStep)
	r.GET("/roadmap/step/:stepId/:substep", roadmapHandlers.GetStep)
	r.GET("/roadmap/:stepId", roadmapHandlers.RedirectLegacy)
	r.GET("/roadmap/:stepId/:substep", roadmapHandlers.RedirectLegacy)
	r.GET("/step/:stepId", roadmapHandlers.RedirectLegacy)

	r.GET("/health", healthHandlers.GetHealth)
	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	api := r.Group("/api/v1")
	{
		journeyGroup := api.Group("/journey")
		{
			journeyGroup.GET("/steps", journeyHandlers.GetSteps)
			journeyGroup.GET("", journeyHandlers.GetView)
			journeyGroup.POST("/tab", journeyHandlers.EvaluateTab)
			journeyGroup.PUT("/tab", journeyHandlers.ChangeTab)
			journeyGroup.GET("/live", liveHandlers.Serve)

			journeyGroup.POST("/toggle", middleware.RequireAuth(), journeyHandlers.Toggle)
			journeyGroup.PUT("/completion", middleware.RequireAuth(), journeyHandlers.SetCompletion)
		}

		navigationGroup := api.Group("/navigation")
		{
			navigationGroup.GET("/return-path", navigationHandlers.GetReturnPath)
			navigationGroup.PUT("/return-path", navigationHandlers.SaveReturnPath)
			navigationGroup.DELETE("/return-path", navigationHandlers.ClearReturnPath)
			navigationGroup.POST("/return", navigationHandlers.TakeReturnPath)
			navigationGroup.GET("/save-result", navigationHandlers.GetSaveResult)
			navigationGroup.POST("/save-result", navigationHandlers.RecordSaveResult)
		}

		resourceGroup := api.Group("/resources", middleware.RequireAuth())
		{
			resourceGroup.GET("", resourceHandlers.ListResources)
			resourceGroup.GET("/:stepId/:substep/:type", resourceHandlers.GetResource)
			resourceGroup.PUT("/:stepId/:substep/:type", resourceHandlers.SaveResource)
			resourceGroup.GET("/:stepId/:substep/:type/attachments", resourceHandlers.ListAttachments)
			resourceGroup.POST("/:stepId/:substep/:type/attachments", resourceHandlers.UploadAttachment)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandlers.Signup)
			authGroup.POST("/login", authHandlers.Login)
			authGroup.GET("/session", middleware.RequireAuth(), authHandlers.GetSession)
		}

		functionGroup := api.Group("/functions")
		{
			functionGroup.POST("/translate", functionHandlers.Translate)
			functionGroup.POST("/contact", functionHandlers.Contact)
		}

		api.GET("/financing", financingHandlers.Search)
	}

	return r
}
