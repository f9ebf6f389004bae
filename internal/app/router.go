package app

import (
	"brolearn_backend/docs"
	"brolearn_backend/internal/config"
	"brolearn_backend/internal/middleware"
	"brolearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. public routes
	a.registerAuthRoutes(router, c, cfg)

	// 2. routes that need a signed-in user
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerProgressRoutes(authGroup, c)
		a.registerCourseRoutes(authGroup, c)
		a.registerAchievementRoutes(authGroup, c)
	}
}

func (a *App) registerAuthRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.POST("/refresh", c.auth.Refresh)
		auth.GET("/me", middleware.AuthMiddleware(cfg.JWT.Secret), c.auth.Me)
	}
}

func (a *App) registerProgressRoutes(group *gin.RouterGroup, c *controllers) {
	progress := group.Group("/progress")
	{
		progress.POST("/lessons/:lessonId/complete", c.progress.CompleteLesson)
		progress.GET("/me", c.progress.GetUserProgress)
		progress.GET("/courses/:courseId", c.progress.GetCourseProgress)
	}
}

func (a *App) registerCourseRoutes(group *gin.RouterGroup, c *controllers) {
	courses := group.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.GET("/:courseId", c.course.GetCourse)
		courses.GET("/lessons/:lessonId", c.course.GetLesson)
	}
}

func (a *App) registerAchievementRoutes(group *gin.RouterGroup, c *controllers) {
	achievements := group.Group("/achievements")
	{
		achievements.GET("", c.achievement.GetUserAchievements)
		achievements.GET("/leaderboard", c.achievement.GetLeaderboard)
	}
}
