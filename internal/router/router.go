package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/schoolcore/school-api/internal/handler"
	"github.com/schoolcore/school-api/internal/middleware"
	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/config"
	"github.com/schoolcore/school-api/pkg/logger"
	"github.com/schoolcore/school-api/pkg/middleware/cors"
	"github.com/schoolcore/school-api/pkg/middleware/requestid"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Health          *handler.HealthHandler
	Auth            *handler.AuthHandler
	User            *handler.UserHandler
	Subject         *handler.SubjectHandler
	Class           *handler.ClassHandler
	Session         *handler.SessionHandler
	Attendance      *handler.AttendanceHandler
	Enrollment      *handler.EnrollmentHandler
	GuardianStudent *handler.GuardianStudentHandler
}

// Setup builds the gin engine with the middleware chain and route table.
func Setup(cfg *config.Config, log *zap.Logger, handlers Handlers, registry *prometheus.Registry) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestid.Middleware())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(cors.New(cfg.CORS.AllowedOrigins))

	metrics := middleware.NewHTTPMetrics(registry)
	engine.Use(metrics.Handler())

	engine.GET("/health", handlers.Health.Health)
	engine.GET("/ready", handlers.Health.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if cfg.Docs.Enabled {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.GET("/me", middleware.JWTAuth(cfg.JWT), handlers.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(cfg.JWT))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleGuardian)

	users := protected.Group("/users")
	{
		users.GET("/profile", anyRole, handlers.Auth.Me)
		users.GET("", adminOnly, handlers.User.List)
		users.POST("", adminOnly, handlers.User.Create)
		users.GET("/:id", adminOnly, handlers.User.Get)
		users.PUT("/:id", adminOnly, handlers.User.Update)
		users.DELETE("/:id", adminOnly, handlers.User.Delete)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", anyRole, handlers.Subject.List)
		subjects.GET("/:id", anyRole, handlers.Subject.Get)
		subjects.POST("", adminOnly, handlers.Subject.Create)
		subjects.PUT("/:id", adminOnly, handlers.Subject.Update)
		subjects.DELETE("/:id", adminOnly, handlers.Subject.Delete)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", anyRole, handlers.Class.List)
		classes.GET("/:id", anyRole, handlers.Class.Get)
		classes.POST("", adminOnly, handlers.Class.Create)
		classes.PUT("/:id", adminOnly, handlers.Class.Update)
		classes.DELETE("/:id", adminOnly, handlers.Class.Delete)
		classes.GET("/:id/students", staff, handlers.Enrollment.ListByClass)
	}

	sessions := protected.Group("/sessions")
	{
		sessions.GET("", staff, handlers.Session.List)
		sessions.GET("/:id", staff, handlers.Session.Get)
		sessions.POST("", staff, handlers.Session.Create)
		sessions.PUT("/:id", staff, handlers.Session.Update)
		sessions.POST("/:id/validate", staff, handlers.Session.Validate)
		sessions.DELETE("/:id", staff, handlers.Session.Delete)
		sessions.GET("/:id/attendances", staff, handlers.Attendance.ListBySession)
		sessions.GET("/:id/attendance/export", staff, handlers.Session.ExportAttendance)
	}

	attendances := protected.Group("/attendances")
	{
		attendances.POST("", staff, handlers.Attendance.Mark)
		attendances.PUT("/:id", staff, handlers.Attendance.Update)
		attendances.DELETE("/:id", staff, handlers.Attendance.Delete)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.POST("", adminOnly, handlers.Enrollment.Enroll)
		enrollments.PUT("/:id", adminOnly, handlers.Enrollment.Update)
		enrollments.DELETE("/:id", adminOnly, handlers.Enrollment.Delete)
	}

	students := protected.Group("/students")
	{
		students.GET("/:id/classes", anyRole, handlers.Enrollment.ListByStudent)
		students.GET("/:id/attendances", anyRole, handlers.Attendance.ListByStudent)
		students.GET("/:id/guardians", staff, handlers.GuardianStudent.ListByStudent)
	}

	guardianStudents := protected.Group("/guardian-students")
	{
		guardianStudents.POST("", adminOnly, handlers.GuardianStudent.Link)
		guardianStudents.GET("/:id", adminOnly, handlers.GuardianStudent.Get)
		guardianStudents.POST("/:id/primary", adminOnly, handlers.GuardianStudent.SetPrimary)
		guardianStudents.DELETE("/:id", adminOnly, handlers.GuardianStudent.Unlink)
	}

	guardians := protected.Group("/guardians")
	{
		guardians.GET("/:id/students", staff, handlers.GuardianStudent.ListByGuardian)
	}

	return engine
}
