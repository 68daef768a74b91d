package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "github.com/schoolcore/school-api/api/swagger"
	"github.com/schoolcore/school-api/internal/handler"
	"github.com/schoolcore/school-api/internal/repository"
	"github.com/schoolcore/school-api/internal/router"
	"github.com/schoolcore/school-api/internal/service"
	"github.com/schoolcore/school-api/pkg/cache"
	"github.com/schoolcore/school-api/pkg/config"
	"github.com/schoolcore/school-api/pkg/database"
	"github.com/schoolcore/school-api/pkg/logger"
)

// @title          School API
// @version        1.0
// @description    REST backend for school management.
// @BasePath       /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("run migrations", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	guardianRepo := repository.NewGuardianStudentRepository(db)

	var listCache service.ListCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal("connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		listCache = repository.NewCacheRepository(redisClient)
		log.Info("redis cache enabled")
	}

	authService := service.NewAuthService(userRepo, cfg.JWT, log)
	userService := service.NewUserService(userRepo)
	subjectService := service.NewSubjectService(subjectRepo)
	classService := service.NewClassService(classRepo)
	sessionService := service.NewSessionService(sessionRepo, attendanceRepo, listCache, cfg.Cache.SessionListTTL, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, sessionRepo)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classRepo)
	guardianService := service.NewGuardianStudentService(guardianRepo)
	exportService := service.NewExportService(sessionService, attendanceService)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSeed()
	if err := service.NewSeedService(userRepo, log).EnsureAdmin(seedCtx, cfg.Seed); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	handlers := router.Handlers{
		Health:          handler.NewHealthHandler(db),
		Auth:            handler.NewAuthHandler(authService, cfg),
		User:            handler.NewUserHandler(userService),
		Subject:         handler.NewSubjectHandler(subjectService),
		Class:           handler.NewClassHandler(classService),
		Session:         handler.NewSessionHandler(sessionService, exportService),
		Attendance:      handler.NewAttendanceHandler(attendanceService),
		Enrollment:      handler.NewEnrollmentHandler(enrollmentService),
		GuardianStudent: handler.NewGuardianStudentHandler(guardianService),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := router.Setup(cfg, log, handlers, registry)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
