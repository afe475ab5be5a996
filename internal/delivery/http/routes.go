package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger logrus.FieldLogger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.POST("/voice/command", handler.VoiceCommand)
		v1.POST("/voice/feedback", handler.Feedback)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.Login)
			sessions.DELETE("/:userName", handler.Logout)
		}

		cart := v1.Group("/cart/:userName")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddItem)
			cart.DELETE("/items/:productId", handler.RemoveItem)
			cart.GET("/recommendations", handler.CartRecommendations)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.SearchProducts)
			products.GET("/:id", handler.GetProduct)
		}

		users := v1.Group("/users/:userName")
		{
			users.GET("/history", handler.History)
			users.DELETE("/history", handler.ClearHistory)
			users.GET("/profile", handler.Profile)
			users.GET("/recommendations", handler.Recommendations)
		}
	}

	return router
}
