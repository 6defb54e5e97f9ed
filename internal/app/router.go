package app

import (
	"baobab_academy/docs"
	"baobab_academy/internal/middleware"
	"baobab_academy/internal/model"
	"baobab_academy/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	a.registerPublicRoutes(api, c)
	a.registerLearnerRoutes(api, c)
	a.registerAdminRoutes(api, c)
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.GET("/categories", c.category.GetCategories)

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(), c.auth.Me)
	}

	public := api.Group("/courses/public")
	{
		public.GET("", c.coursePublic.ListCourses)
		public.GET("/popular", c.coursePublic.Popular)
		public.GET("/top-rated", c.coursePublic.TopRated)
		public.GET("/latest", c.coursePublic.Latest)
		public.GET("/:courseId", c.coursePublic.GetCourse)
	}
}

func (a *App) registerLearnerRoutes(api *gin.RouterGroup, c *controllers) {
	courses := api.Group("/courses")
	{
		courses.GET("/:courseId", middleware.TryAuthMiddleware(), c.courseUser.GetCourse)

		authorized := courses.Group("")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.POST("/:courseId/enroll", c.courseUser.Enroll)
			authorized.POST("/lessons/:lessonId/complete", c.courseUser.CompleteLesson)
			authorized.PUT("/lessons/:lessonId/progress", c.courseUser.UpdateProgress)
		}
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("/admin/courses")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("", c.courseAdmin.CreateCourse)
		admin.GET("/my-courses", c.courseAdmin.GetMyCourses)
		admin.GET("/events", c.courseAdmin.StreamEvents)
		admin.PUT("/:courseId", c.courseAdmin.UpdateCourse)
		admin.DELETE("/:courseId", c.courseAdmin.DeleteCourse)
		admin.GET("/:courseId/edit", c.courseAdmin.GetCourseForEditing)
		admin.POST("/:courseId/cover-image", c.courseAdmin.UploadCoverImage)
		admin.POST("/:courseId/chapters", c.courseAdmin.AddChapter)
		admin.POST("/:courseId/publish", c.courseAdmin.PublishCourse)
		admin.POST("/chapters/:chapterId/lessons", c.courseAdmin.AddLesson)
		admin.POST("/lessons/:lessonId/video", c.courseAdmin.UploadLessonVideo)
	}
}
