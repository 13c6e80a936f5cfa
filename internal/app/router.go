package app

import (
	"study_planner_backend/docs"
	"study_planner_backend/internal/config"
	"study_planner_backend/internal/middleware"
	"study_planner_backend/internal/model"
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 공개 라우트 (로그인 불필요)
	a.registerPublicRoutes(router, c)

	// 2. 로그인 필요
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg),
		middleware.Idempotency(repos.requests, cfg.Planner.IdempotencyTTL),
	)
	{
		a.registerMenteeRoutes(authGroup, c)
		a.registerMentorRoutes(authGroup, c)
		a.registerTodoDetailRoutes(authGroup, c)
	}

	// 로컬 저장소 파일은 로그인한 사용자에게만
	if cfg.Storage.Type == util.StorageLocal {
		uploads := router.Group("/uploads", middleware.AuthMiddleware(cfg))
		uploads.Static("/", cfg.Storage.LocalPath)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		auth.GET("/login", c.auth.Session)
		auth.POST("/login", c.auth.Login)
		auth.POST("/logout", c.auth.Logout)
	}
}

func (a *App) registerMenteeRoutes(api *gin.RouterGroup, c *controllers) {
	mm := api.Group("/mentormentee")

	// 역할과 관계없이 사용하는 화면 상태, 과목 목록
	mm.GET("/subjects", c.planner.Subjects)
	mm.GET("/view", c.planner.GetView)
	mm.PUT("/view", c.planner.UpdateView)
	mm.POST("/view/move", c.planner.MoveView)
	mm.POST("/view/switch", c.planner.SwitchView)

	mentee := mm.Group("")
	mentee.Use(middleware.RoleMiddleware(model.Mentee))
	{
		mentee.GET("/dashboard", c.planner.Dashboard)
		mentee.POST("/todos", c.planner.AddTodo)

		mentee.GET("/days/:date", c.planner.Day)
		mentee.PATCH("/days/:date/todos/:todoId/toggle", c.planner.ToggleTodo)
		mentee.DELETE("/days/:date/todos/:todoId", c.planner.DeleteTodo)
		mentee.PUT("/days/:date/study", c.planner.SetStudy)
		mentee.PUT("/days/:date/comment", c.planner.SetComment)

		mentee.POST("/subjects", c.planner.AddSubject)
		mentee.PATCH("/subjects", c.planner.RenameSubject)
		mentee.DELETE("/subjects/:name", c.planner.DeleteSubject)

		mentee.GET("/week", c.planner.Week)
		mentee.GET("/calendar", c.planner.Calendar)

		mentee.GET("/reminders", c.planner.Reminders)
		mentee.POST("/reminders", c.planner.AddReminder)
		mentee.DELETE("/reminders/:id", c.planner.DeleteReminder)

		mentee.POST("/feedback/seen", c.planner.MarkFeedbackSeen)
	}
}

func (a *App) registerMentorRoutes(api *gin.RouterGroup, c *controllers) {
	mentor := api.Group("/mentormentee/mentor")
	mentor.Use(middleware.RoleMiddleware(model.Mentor))
	{
		mentor.GET("/mentees", c.mentor.Mentees)
		mentor.GET("/mentees/:menteeId/overview", c.mentor.Overview)
		mentor.POST("/mentees/:menteeId/todos", c.mentor.AssignTodo)
		mentor.DELETE("/mentees/:menteeId/days/:date/todos/:todoId", c.mentor.DeleteTodo)
		mentor.POST("/mentees/:menteeId/feedback", c.mentor.AddFeedback)
		mentor.PATCH("/feedback/:feedbackId", c.mentor.EditFeedback)
		mentor.DELETE("/feedback/:feedbackId", c.mentor.DeleteFeedback)
		mentor.GET("/assignments", c.mentor.Assignments)
	}
}

// 할 일 상세는 두 역할 모두 사용하고, 어느 쪽을 쓸 수 있는지는 서비스에서 검사한다
func (a *App) registerTodoDetailRoutes(api *gin.RouterGroup, c *controllers) {
	todos := api.Group("/todos/:todoId/detail")
	{
		todos.GET("", c.detail.Detail)
		todos.PATCH("/mentee-note", c.detail.MenteeNote)
		todos.PATCH("/mentor-feedback", c.detail.MentorFeedback)
		todos.POST("/mentee-files", c.detail.MenteeFiles)
		todos.POST("/mentor-files", c.detail.MentorFiles)
		todos.DELETE("/mentee-files/:fileId", c.detail.RemoveFile(planner.SideMentee))
		todos.DELETE("/mentor-files/:fileId", c.detail.RemoveFile(planner.SideMentor))
		todos.GET("/files/:fileId", c.detail.DownloadFile)
	}
}
