package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/survey-api/api/swagger"
	"github.com/noah-isme/survey-api/internal/handler"
	"github.com/noah-isme/survey-api/internal/middleware"
	"github.com/noah-isme/survey-api/internal/repository"
	"github.com/noah-isme/survey-api/internal/service"
	"github.com/noah-isme/survey-api/pkg/cache"
	"github.com/noah-isme/survey-api/pkg/config"
	"github.com/noah-isme/survey-api/pkg/database"
	"github.com/noah-isme/survey-api/pkg/jobs"
	"github.com/noah-isme/survey-api/pkg/logger"
	"github.com/noah-isme/survey-api/pkg/objectstore"
	"github.com/noah-isme/survey-api/pkg/storage"
)

// @title Survey API
// @version 1.0.0
// @description Student and employer survey collection with an admin portal
// @BasePath /api/v1
// @schemes http

const imagePrefix = "uploads"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.Pinger{}

	var bucket objectstore.Bucket
	needsBucket := cfg.Survey.Backend == config.BackendObjectStore || cfg.Images.Provider == config.ImageProviderMinio
	if needsBucket {
		minioBucket, err := objectstore.NewMinio(ctx, cfg.ObjectStore)
		if err != nil {
			return fmt.Errorf("connect object store: %w", err)
		}
		bucket = minioBucket
	}

	var store service.SurveyStore
	switch cfg.Survey.Backend {
	case config.BackendObjectStore:
		objectStore, err := repository.NewObjectSurveyStore(bucket, cfg.ObjectStore.Prefix, logr)
		if err != nil {
			return fmt.Errorf("init survey object store: %w", err)
		}
		checks["object_store"] = objectStore
		store = objectStore
	case config.BackendPostgres:
		db, err := openDatabase(ctx, cfg, logr)
		if err != nil {
			return err
		}
		defer db.Close()
		sqlStore := repository.NewSQLSurveyStore(db)
		checks["database"] = sqlStore
		store = sqlStore
	default:
		return fmt.Errorf("unknown survey backend %q", cfg.Survey.Backend)
	}
	store = service.NewInstrumentedStore(store, metrics)

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		defer redisRepo.Close()
		checks["redis"] = redisRepo
		cacheRepo = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Survey.CacheTTL, logr, cfg.Survey.CacheEnabled)

	var imageStore service.ImageStore
	uploadsDir := ""
	switch cfg.Images.Provider {
	case config.ImageProviderMinio:
		imageStore = storage.NewBucketImageStore(bucket, imagePrefix)
	default:
		localStore, err := storage.NewLocalImageStore(cfg.Images.LocalDir, cfg.Images.PublicBaseURL)
		if err != nil {
			return err
		}
		imageStore = localStore
		uploadsDir = cfg.Images.LocalDir
	}

	imageSvc := service.NewImageService(imageStore, metrics, logr, service.ImageConfig{
		MaxUploadBytes: cfg.Images.MaxUploadBytes,
		AllowedMIMEs:   cfg.Images.AllowedMIMEs,
	})
	cleanupQueue := jobs.NewQueue("image-cleanup", imageSvc.HandleCleanupJob, jobs.QueueConfig{
		Workers:     cfg.Cleanup.Workers,
		MaxRetries:  cfg.Cleanup.Retries,
		RetryDelay:  cfg.Cleanup.RetryDelay,
		Logger:      logr,
		OnExhausted: imageSvc.CleanupExhausted,
	})
	cleanupQueue.Start(ctx)
	defer cleanupQueue.Stop()
	imageSvc.UseQueue(cleanupQueue)

	surveySvc := service.NewSurveyService(store, imageSvc, cacheSvc, metrics, validate, logr, service.SurveyServiceConfig{
		RequireImage: cfg.Survey.RequireImage,
	})
	indexSvc := service.NewSurveyIndexService(store, cacheSvc, metrics, logr, service.SurveyIndexConfig{
		AllowPartialReads: cfg.Survey.AllowPartialReads,
		CacheTTL:          cfg.Survey.CacheTTL,
	})
	exportSvc := service.NewExportService(indexSvc, logr)
	authSvc, err := service.NewAuthService(validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiry:            cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminPassword:     cfg.Admin.Password,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	uploadsPath := ""
	if uploadsDir != "" {
		uploadsPath = cfg.Images.PublicBaseURL
	}
	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
		Limiter:        limiter,
		UploadsDir:     uploadsDir,
		UploadsPath:    uploadsPath,
	}, handler.Handlers{
		Surveys: handler.NewSurveyHandler(surveySvc, indexSvc),
		Images:  handler.NewImageHandler(imageSvc),
		Auth:    handler.NewAuthHandler(authSvc),
		Admin:   handler.NewAdminHandler(surveySvc, indexSvc, exportSvc, metrics),
		Metrics: handler.NewMetricsHandler(metrics, checks),
	})

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Survey.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if !cfg.Database.AutoMigrate {
		return db, nil
	}
	applied, err := database.Migrate(ctx, db, logr)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if len(applied) > 0 {
		logr.Info("migrations applied", zap.Strings("versions", applied))
	}
	return db, nil
}
