package app

import (
	"aptitude_backend/internal/middleware"
	"aptitude_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/", c.health.Welcome)
	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/api/health", c.health.HealthCheck)

	// Data routes need the store; the connection is made on first use.
	api := router.Group("/api")
	api.Use(middleware.DBReady(a.Mongo))
	{
		a.registerQuestionRoutes(api, c)
		a.registerLearnRoutes(api, c)
	}
}

func (a *App) registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	questions := rg.Group("/questions")
	{
		questions.GET("", c.question.ListQuestions)
		questions.GET("/:id", c.question.GetQuestion)
		questions.POST("/add", c.question.CreateQuestion)
		questions.PUT("/:id", c.question.UpdateQuestion)
		questions.DELETE("/:id", c.question.DeleteQuestion)
	}
}

func (a *App) registerLearnRoutes(rg *gin.RouterGroup, c *controllers) {
	learn := rg.Group("/learn")
	{
		learn.GET("", c.lecture.ListLectures)
		learn.GET("/:id", c.lecture.GetLecture)
		learn.POST("", c.lecture.CreateLecture)
		learn.PUT("/:id", c.lecture.UpdateLecture)
		learn.DELETE("/:id", c.lecture.DeleteLecture)
	}
}
