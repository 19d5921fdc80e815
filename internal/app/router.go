package app

import (
	"quizmaster_backend/docs"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/middleware"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func registerRoutes(router *gin.Engine, c *controllers, sessions repository.SessionBlacklist, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, sessions))
	{
		registerUserRoutes(authGroup, c)
		registerQuizRoutes(authGroup, c)
		registerAttemptRoutes(authGroup, c)
	}
}

func registerPublicRoutes(router *gin.Engine, c *controllers) {
	router.GET("/health", c.health.HealthCheck)

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/user/register", c.auth.Register)
		public.POST("/user/login", c.auth.Login)
	}
}

func registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	user := group.Group("/user")
	{
		user.POST("/logout", c.auth.Logout)
		user.GET("/me", c.user.GetProfile)
		user.GET("/announcements", c.user.ListAnnouncements)
		user.PATCH("/announcements/read-all", c.user.MarkAllAnnouncementsRead)
		user.PATCH("/announcements/:id/read", c.user.MarkAnnouncementRead)
		user.DELETE("/announcements/:id", c.user.DeleteAnnouncement)
	}
}

func registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	quiz := group.Group("/quiz")
	{
		quiz.POST("", c.quiz.CreateQuiz)
		quiz.GET("/public/get", c.quiz.ListPublicQuizzes)
		quiz.GET("/user/created", c.quiz.ListMyQuizzes)
		quiz.POST("/generate", c.generation.GenerateQuiz)
		quiz.POST("/upload/image", c.quiz.UploadQuestionImage)
		quiz.POST("/share/:id", c.user.ShareQuiz)
		quiz.GET("/:id", c.quiz.GetQuiz)
		quiz.PATCH("/:id", c.quiz.UpdateQuiz)
		quiz.DELETE("/:id", c.quiz.DeleteQuiz)
	}
}

func registerAttemptRoutes(group *gin.RouterGroup, c *controllers) {
	attempt := group.Group("/quiz/attempt")
	{
		attempt.POST("/create/:id", c.attempt.CreateAttempt)
		attempt.PATCH("/save/question/:id", c.attempt.SaveAnswer)
		attempt.PATCH("/save/:id", c.attempt.FinalizeAttempt)
		attempt.GET("/performance/:id", c.attempt.GetPerformance)
		attempt.GET("/user/all", c.attempt.ListMyAttempts)
		attempt.POST("/:id", c.attempt.SubmitQuiz)
		attempt.GET("/:id", c.attempt.GetAttempt)
	}
}
