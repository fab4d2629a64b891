package app

import (
	"achievements_tracker_backend/docs"
	"achievements_tracker_backend/internal/middleware"
	"achievements_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, verifier middleware.TokenVerifier) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/health", c.health.HealthCheck)
	router.GET("/ready", c.health.ReadinessCheck)

	// 2. 需要授权的路由
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(verifier))
	{
		api.GET("/me", c.user.Me)

		achievements := api.Group("/achievements")
		{
			achievements.GET("", c.achievement.List)
			achievements.POST("", c.achievement.Create)
			achievements.GET("/:id", c.achievement.Get)
			achievements.PATCH("/:id", c.achievement.Update)
			achievements.DELETE("/:id", c.achievement.Delete)
			achievements.POST("/:id/items", c.achievement.AppendItem)
		}
	}
}
