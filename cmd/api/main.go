package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-results-api/api/swagger"
	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/handler"
	"github.com/noah-isme/school-results-api/internal/repository"
	"github.com/noah-isme/school-results-api/internal/server"
	"github.com/noah-isme/school-results-api/internal/service"
	"github.com/noah-isme/school-results-api/pkg/cache"
	"github.com/noah-isme/school-results-api/pkg/config"
	"github.com/noah-isme/school-results-api/pkg/database"
	"github.com/noah-isme/school-results-api/pkg/logger"
)

// @title School Results API
// @version 1.0.0
// @description Exam result publishing, student records and class promotion
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, session revocation disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	scale, err := grading.ScaleByName(cfg.Grading.Scale)
	if err != nil {
		logr.Fatal("invalid grading scale", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	classRecordRepo := repository.NewClassRecordRepository(db)
	resultRepo := repository.NewResultRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	cacheService := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Redis.LookupTTL, logr, redisClient != nil)

	authService := service.NewAuthService(sessionRepo, metrics, validate, logr, service.AuthConfig{
		Username:     cfg.Admin.Username,
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.TTL,
	})
	studentService := service.NewStudentService(studentRepo, classRecordRepo, resultRepo, validate, logr, time.Now)
	resultService := service.NewResultService(classRecordRepo, resultRepo, studentRepo, scale, metrics, validate, logr, time.Now).
		WithCache(cacheService, cfg.Redis.LookupTTL)
	promotionService := service.NewPromotionService(classRecordRepo, studentRepo, metrics, validate, logr)
	dashboardService := service.NewDashboardService(studentRepo, classRecordRepo, resultRepo, metrics, logr, time.Now)
	exportService := service.NewExportService(cfg.School.Name, logr, nil, nil)

	router := server.NewRouter(server.Handlers{
		Auth:      handler.NewAuthHandler(authService, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}),
		Results:   handler.NewResultHandler(resultService, exportService),
		Students:  handler.NewStudentHandler(studentService),
		Promotion: handler.NewPromotionHandler(promotionService),
		Subjects:  handler.NewSubjectHandler(),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Metrics:   handler.NewMetricsHandler(metrics, db),
	}, server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CookieName:     cfg.Session.CookieName,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Observer:       metrics,
		Sessions:       authService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "grading_scale", scale.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
