package routes

import (
	"net/http"
	"time"

	"learnhub/handlers"
	"learnhub/middleware"
	"learnhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes registers the notification REST endpoints.
func RegisterNotificationRoutes(r *gin.Engine, nh *handlers.NotificationHandler) {
	api := r.Group("/api/notifications")
	{
		// All notification endpoints require authentication.
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", nh.ListHandler)
		api.POST("", middleware.RequireAdmin(), nh.CreateHandler)
		api.GET("/unread", nh.UnreadHandler)
		api.GET("/unread_count", nh.UnreadCountHandler)
		api.POST("/mark_all_read", nh.MarkAllReadHandler)
		api.GET("/:id", nh.GetByIDHandler)
		api.PATCH("/:id", nh.UpdateHandler)
		api.DELETE("/:id", nh.DeleteHandler)
		api.POST("/:id/mark_read", nh.MarkReadHandler)
	}
}

// RegisterRealtimeRoutes registers the WebSocket gateway. The gateway
// authenticates during the handshake itself, so the JWT middleware is not
// applied here.
func RegisterRealtimeRoutes(r *gin.Engine, rh *handlers.RealtimeHandler) {
	r.GET("/ws/notifications", rh.ServeWS)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, nh *handlers.NotificationHandler, rh *handlers.RealtimeHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterNotificationRoutes(r, nh)
	RegisterRealtimeRoutes(r, rh)
	RegisterHealthRoute(r)
}
