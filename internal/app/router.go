package app

import (
	"exam_portal_backend/docs"
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/middleware"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/me", c.auth.Me)
		authGroup.POST("/execute", c.execute.Execute)
		authGroup.GET("/execute/languages", c.execute.Languages)

		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	{
		student.GET("/exams", c.studentExam.ListAvailable)
		student.GET("/exams/:id", c.studentExam.GetExam)
		student.POST("/exams/:id/start", c.studentExam.StartExam)
		student.POST("/exams/:id/submit", c.studentExam.SubmitExam)
		student.PUT("/sessions/:id/answers", c.studentExam.SaveAnswers)
		student.POST("/sessions/:id/proctor-flags", c.studentExam.RecordProctorFlag)
		student.GET("/results", c.studentExam.ListResults)
		student.GET("/results/:sessionId", c.studentExam.GetResult)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/exams", c.exam.CreateExam)
		teacher.GET("/exams", c.exam.ListExams)
		teacher.GET("/exams/:id", c.exam.GetExam)
		teacher.PUT("/exams/:id", c.exam.UpdateExam)
		teacher.DELETE("/exams/:id", c.exam.DeleteExam)
		teacher.PATCH("/exams/:id/publish", c.exam.SetPublished)

		teacher.POST("/exams/:id/questions", c.exam.AddQuestion)
		teacher.PUT("/exams/:id/questions", c.exam.ReplaceQuestions)
		teacher.DELETE("/exams/:id/questions/:questionId", c.exam.DeleteQuestion)
		teacher.POST("/attachments", c.exam.UploadAttachment)

		teacher.GET("/exams/:id/sessions", c.grading.ListExamSessions)
		teacher.GET("/exams/:id/proctor-flags", c.grading.ListExamFlags)
		teacher.GET("/grading/pending", c.grading.ListPending)
		teacher.GET("/grading/sessions/:id", c.grading.GetDetail)
		teacher.PATCH("/grading/sessions/:id", c.grading.ApplyGrades)
		teacher.GET("/grading/sessions/:id/proctor-flags", c.grading.ListSessionFlags)

		teacher.GET("/analytics/exams/:id", c.analytics.ExamAnalytics)
		teacher.GET("/analytics/overview", c.analytics.Overview)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/institutions", c.institution.CreateInstitution)
		admin.GET("/institutions", c.institution.ListInstitutions)
		admin.GET("/institutions/:id", c.institution.GetInstitution)
		admin.PUT("/institutions/:id", c.institution.UpdateInstitution)
		admin.POST("/institutions/:id/departments", c.institution.CreateDepartment)
		admin.GET("/institutions/:id/departments", c.institution.ListDepartments)
		admin.DELETE("/institutions/:id/departments/:deptId", c.institution.DeleteDepartment)

		admin.GET("/users", c.user.ListUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
		admin.PATCH("/users/:id/disable", c.user.SetDisabled)
		admin.PATCH("/users/:id/reset-password", c.user.ResetPassword)

		admin.DELETE("/exams/:id/sessions", c.admin.PurgeExamSessions)
		admin.GET("/analytics/overview", c.admin.Overview)
	}
}
