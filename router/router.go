package router

import (
	"github.com/gin-gonic/gin"
	"github.com/poopay/poopay-realtime/config"
	_ "github.com/poopay/poopay-realtime/docs"
	"github.com/poopay/poopay-realtime/handlers"
	"github.com/poopay/poopay-realtime/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config              *config.Config
	HealthHandler       *handlers.HealthHandler
	NotificationHandler *handlers.NotificationHandler
	InvitationHandler   *handlers.InvitationHandler
}

// SetupRouter configures and returns the Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		notificationRoutes := v1.Group("/notifications")
		{
			notificationRoutes.GET("", deps.NotificationHandler.ListNotifications)
			notificationRoutes.POST("/refresh", deps.NotificationHandler.RefreshNotifications)
			notificationRoutes.GET("/unread-count", deps.NotificationHandler.GetUnreadCount)
			notificationRoutes.POST("/:id/read", deps.NotificationHandler.MarkNotificationAsRead)
			notificationRoutes.DELETE("/:id", deps.NotificationHandler.DeleteNotification)
			notificationRoutes.POST("/:id/accept", deps.InvitationHandler.AcceptInvitation)
			notificationRoutes.POST("/:id/reject", deps.InvitationHandler.RejectInvitation)
		}

		v1.POST("/groups/:groupId/invite", deps.InvitationHandler.InviteUser)
	}

	return r
}
