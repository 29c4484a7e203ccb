package router

import (
	"net/http"
	"time"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/handler"
	"github.com/examsched/examsched-backend/internal/middleware"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Class    *handler.ClassHandler
	Subject  *handler.SubjectHandler
	Student  *handler.StudentHandler
	Schedule *handler.ScheduleHandler
	Question *handler.QuestionHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Public auth endpoints, rate limited against credential stuffing.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	auth := api.Group("/auth")
	auth.Use(loginLimiter.Middleware())
	{
		auth.POST("/exam-login", handlers.Auth.ExamLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// Student exam endpoints. Every request must carry a valid exam token
	// whose JTI still matches the single active session.
	exam := api.Group("/exam")
	exam.Use(middleware.RequireExamJWT(authService))
	exam.Use(middleware.CheckSingleDeviceSession(authService))
	{
		exam.GET("/schedules/:id", handlers.Exam.Dashboard)
		exam.POST("/schedules/:id/start", handlers.Exam.StartExam)
		exam.POST("/attempts/:id/answers", handlers.Exam.SubmitAnswer)
		exam.POST("/attempts/:id/finish", handlers.Exam.FinishExam)
		exam.GET("/attempts/:id/report", handlers.Exam.GetReport)
	}

	// Admin endpoints.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdminJWT(authService))
	admin.Use(middleware.RequireRole(model.RoleSuperAdmin, model.RoleOperator))
	{
		admin.GET("/me", handlers.Auth.AdminMe)

		admin.GET("/classes", handlers.Class.ListClasses)
		admin.POST("/classes", handlers.Class.CreateClass)
		admin.GET("/classes/:id", handlers.Class.GetClass)
		admin.PUT("/classes/:id", handlers.Class.UpdateClass)
		admin.DELETE("/classes/:id", handlers.Class.DeleteClass)

		admin.GET("/subjects", handlers.Subject.ListSubjects)
		admin.POST("/subjects", handlers.Subject.CreateSubject)
		admin.GET("/subjects/:id", handlers.Subject.GetSubject)
		admin.PUT("/subjects/:id", handlers.Subject.UpdateSubject)
		admin.DELETE("/subjects/:id", handlers.Subject.DeleteSubject)

		admin.GET("/students", handlers.Student.ListStudents)
		admin.POST("/students", handlers.Student.CreateStudent)
		admin.GET("/students/:id", handlers.Student.GetStudent)
		admin.PUT("/students/:id", handlers.Student.UpdateStudent)
		admin.DELETE("/students/:id", handlers.Student.DeleteStudent)
		admin.POST("/students/:id/reset-session", handlers.Student.ResetSession)

		admin.GET("/schedules", handlers.Schedule.ListSchedules)
		admin.POST("/schedules", handlers.Schedule.CreateSchedule)
		admin.GET("/schedules/:id", handlers.Schedule.GetSchedule)
		admin.PUT("/schedules/:id", handlers.Schedule.UpdateSchedule)
		admin.DELETE("/schedules/:id", handlers.Schedule.DeleteSchedule)
		admin.GET("/schedules/:id/attempts", handlers.Schedule.ListAttempts)
		admin.GET("/schedules/:id/groups", handlers.Schedule.ListGroups)
		admin.POST("/schedules/:id/groups", handlers.Schedule.CreateGroup)

		admin.GET("/groups/:id", handlers.Schedule.GetGroup)
		admin.PUT("/groups/:id", handlers.Schedule.UpdateGroup)
		admin.DELETE("/groups/:id", handlers.Schedule.DeleteGroup)
		admin.GET("/groups/:id/questions", handlers.Question.ListQuestions)
		admin.POST("/groups/:id/questions", handlers.Question.CreateQuestion)

		admin.GET("/questions/:id", handlers.Question.GetQuestion)
		admin.PUT("/questions/:id", handlers.Question.ReplaceQuestion)
		admin.DELETE("/questions/:id", handlers.Question.DeleteQuestion)
	}

	return router
}
