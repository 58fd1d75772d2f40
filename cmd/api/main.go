package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/skateflow-api/api/swagger"
	"github.com/noah-isme/skateflow-api/internal/handler"
	"github.com/noah-isme/skateflow-api/internal/middleware"
	"github.com/noah-isme/skateflow-api/internal/repository"
	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/config"
	"github.com/noah-isme/skateflow-api/pkg/database"
	"github.com/noah-isme/skateflow-api/pkg/export"
	"github.com/noah-isme/skateflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/skateflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/skateflow-api/pkg/middleware/requestid"
	"github.com/noah-isme/skateflow-api/pkg/storage"
)

// @title SkateFlow Roster API
// @version 1.0.0
// @description Skater registry, session scheduling, enrollment and attendance for a skateboarding school.
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

	metrics := service.NewMetricsService()

	backend, err := openBackend(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open entity store", "backend", cfg.Store.Backend, "error", err)
	}
	store := repository.NewEntityStore(backend, logr, metrics)
	defer store.Close() //nolint:errcheck

	notifier := service.NewAsyncNotifier(service.NewLogNotifier(logr.Named("notifications"), metrics), 2, 256, logr)
	notifier.Start(context.Background())
	defer notifier.Stop()

	handlers := buildHandlers(cfg, logr, store, metrics, notifier)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, store))
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}

func openBackend(cfg *config.Config, logr *zap.Logger) (repository.Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Store.Backend {
	case config.StoreMemory:
		logr.Warn("using in-memory entity store; data is lost on restart")
		return repository.NewMemoryBackend(), nil
	case config.StoreSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		backend := repository.NewSQLBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return backend, nil
	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		backend := repository.NewSQLBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return backend, nil
	case config.StoreRedis:
		client, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisBackend(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func buildHandlers(cfg *config.Config, logr *zap.Logger, store *repository.EntityStore, metrics *service.MetricsService, notifier service.Notifier) handler.Handlers {
	validate := validator.New()

	skaterRepo := repository.NewSkaterRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	rosters := repository.NewEnrollmentRepository(store)

	instructor := service.NewInstructorService(repository.NewInstructorRepository(store), cfg.Instructor.DefaultName, validate, logr)
	skaters := service.NewSkaterService(skaterRepo, validate, notifier, cfg.Location, logr)
	sessions := service.NewSessionService(service.SessionServiceParams{
		Repo:            sessionRepo,
		Instructor:      instructor,
		Validator:       validate,
		Notifier:        notifier,
		Location:        cfg.Location,
		DefaultCapacity: cfg.Sessions.DefaultCapacity,
		Logger:          logr,
	})
	enrollments := service.NewEnrollmentService(service.EnrollmentServiceParams{
		Rosters:  rosters,
		Sessions: sessionRepo,
		Skaters:  skaterRepo,
		Notifier: notifier,
		Metrics:  metrics,
		Location: cfg.Location,
		Logger:   logr,
	})
	attendance := service.NewAttendanceService(service.AttendanceServiceParams{
		Rosters:  rosters,
		Sessions: sessionRepo,
		Skaters:  skaterRepo,
		Notifier: notifier,
		Metrics:  metrics,
		Location: cfg.Location,
		Logger:   logr,
	})
	notes := service.NewNoteService(repository.NewNoteRepository(store), skaterRepo, instructor, validate, notifier, cfg.Location, logr)
	stats := service.NewStatsService(service.StatsServiceParams{
		Skaters:    skaterRepo,
		Sessions:   sessionRepo,
		Rosters:    rosters,
		Instructor: instructor,
		Location:   cfg.Location,
		Logger:     logr,
	})

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		exports = service.NewExportService(attendance, sessions, logr, export.NewCSVExporter(), export.NewPDFExporter())
	}

	var media *service.MediaService
	if cfg.Media.Enabled {
		local, err := storage.NewLocalStorage(cfg.Media.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare media storage", "dir", cfg.Media.StorageDir, "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL)
		media = service.NewMediaService(local, signer, service.MediaConfig{
			APIPrefix:    cfg.APIPrefix,
			MaxFileSize:  cfg.Media.MaxFileSizeBytes,
			AllowedMIMEs: cfg.Media.AllowedMIMEs,
		}, logr)
	}

	return handler.Handlers{
		Skaters:     handler.NewSkaterHandler(skaters, attendance, media),
		Notes:       handler.NewNoteHandler(notes),
		Sessions:    handler.NewSessionHandler(sessions),
		Enrollments: handler.NewEnrollmentHandler(enrollments),
		Attendance:  handler.NewAttendanceHandler(attendance),
		Exports:     handler.NewExportHandler(exports),
		Dashboard:   handler.NewDashboardHandler(stats),
		Instructor:  handler.NewInstructorHandler(instructor, media),
		Media:       handler.NewMediaHandler(media),
	}
}
