package app

import (
	"speech_therapy_backend/docs"
	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/middleware"
	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		// 孩子档案
		authGroup.POST("/children", c.child.Create)
		authGroup.GET("/children", c.child.List)
		authGroup.GET("/children/:id", c.child.Get)
		authGroup.PUT("/children/:id", c.child.Update)
		authGroup.DELETE("/children/:id", c.child.Delete)

		// 孩子维度的分析与推荐
		authGroup.GET("/children/:id/profile", c.personalization.Profile)
		authGroup.GET("/children/:id/learning-path", c.personalization.GetLearningPath)
		authGroup.POST("/children/:id/learning-path/regenerate", c.personalization.RegeneratePath)
		authGroup.POST("/children/:id/learning-path/update", c.personalization.UpdatePath)
		authGroup.GET("/children/:id/recommendations", c.analytics.Recommendations)
		authGroup.GET("/children/:id/trends", c.analytics.Trends)
		authGroup.GET("/children/:id/sessions", c.session.ListByChild)
		authGroup.GET("/children/:id/feedback", c.feedback.ListByChild)

		// 练习内容目录
		authGroup.GET("/activities/categories", c.activity.ListCategories)
		authGroup.GET("/activities/categories/:id/items", c.activity.ListItems)

		// 会话与作答
		authGroup.POST("/speech/sessions", c.session.Start)
		authGroup.GET("/speech/sessions/:id", c.session.Get)
		authGroup.POST("/speech/sessions/:id/complete", c.session.Complete)
		authGroup.GET("/speech/sessions/:id/overview", c.session.Overview)
		authGroup.POST("/speech/sessions/:id/process-audio", c.speech.ProcessAudio)
		authGroup.POST("/speech/sessions/:id/selection", c.speech.RecordSelection)
		authGroup.GET("/speech/sessions/:id/next-activity", c.personalization.NextActivity)
		authGroup.GET("/speech/sessions/:id/adapt", c.personalization.Adapt)

		// 陪护人反馈
		authGroup.POST("/feedback", c.feedback.Submit)

		// 内容管理：仅治疗师和管理员
		manage := authGroup.Group("/")
		manage.Use(middleware.RequireRoles(model.Therapist, model.Admin))
		{
			manage.POST("/activities/categories", c.activity.CreateCategory)
			manage.POST("/activities/categories/:id/items", c.activity.CreateItem)
		}
	}
}
