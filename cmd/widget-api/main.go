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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tkt-widget-api/api/swagger"
	"github.com/noah-isme/tkt-widget-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tkt-widget-api/internal/middleware"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	"github.com/noah-isme/tkt-widget-api/internal/repository"
	"github.com/noah-isme/tkt-widget-api/internal/service"
	"github.com/noah-isme/tkt-widget-api/pkg/config"
	"github.com/noah-isme/tkt-widget-api/pkg/database"
	"github.com/noah-isme/tkt-widget-api/pkg/i18n"
	"github.com/noah-isme/tkt-widget-api/pkg/jobs"
	"github.com/noah-isme/tkt-widget-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tkt-widget-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tkt-widget-api/pkg/middleware/requestid"
	"github.com/noah-isme/tkt-widget-api/pkg/sharedstore"
)

// @title TKT Widget API
// @version 0.1.0
// @description Shared storage bridge and class-schedule summaries for the TKT home-screen widget
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	location, err := time.LoadLocation(cfg.Widget.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown widget timezone, using UTC", "timezone", cfg.Widget.Timezone, "error", err)
		location = time.UTC
	}
	defaultLocale, ok := i18n.ParseTag(cfg.Widget.DefaultLocale)
	if !ok {
		defaultLocale = i18n.TraditionalChinese
		logr.Sugar().Warnw("unsupported default locale", "locale", cfg.Widget.DefaultLocale, "fallback", defaultLocale.String())
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.Pinger{}

	redisClient, err := sharedstore.NewRedis(cfg.Redis)
	if err != nil {
		// Summaries degrade instead of failing while Redis is down.
		logr.Sugar().Errorw("redis unavailable, widget summaries will degrade", "error", err)
	}
	storeRepo := repository.NewWidgetStoreRepository(redisClient, logr)
	defer storeRepo.Close() //nolint:errcheck
	checks["redis"] = storeRepo

	storageSvc := service.NewSharedStorageService(storeRepo, sharedstore.Namespace{Prefix: cfg.Widget.StoragePrefix}, metricsSvc, logr)
	widgetSvc := service.NewWidgetService(storageSvc, metricsSvc, logr, service.WidgetConfig{
		Location:        location,
		WeekdayOrigin:   models.WeekdayOrigin(cfg.Widget.WeekdayOrigin),
		RefreshInterval: cfg.Widget.RefreshInterval,
	})
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	var (
		courseHandler *handler.CourseHandler
		publisher     interface{ EnqueuePublish(userID string) (bool, error) }
		worker        *service.PublishWorker
	)
	if cfg.Courses.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate course schema", zap.Error(err))
		}

		courseRepo := repository.NewCourseRepository(db)
		checks["postgres"] = courseRepo

		// Publishing and exports only read courses, so they get a reader
		// without a publisher to avoid a construction cycle.
		courseReader := service.NewCourseService(courseRepo, nil, nil, metricsSvc, logr)
		publishSvc := service.NewPublishService(courseReader, storageSvc, location, cfg.Widget.RefreshInterval, logr)
		worker = service.NewPublishWorker(publishSvc, metricsSvc, jobs.QueueConfig{
			Workers:    cfg.Publish.Workers,
			MaxRetries: cfg.Publish.Retries,
			RetryDelay: cfg.Publish.RetryDelay,
			Logger:     logr,
		})
		worker.Start(ctx)
		publisher = worker

		courseSvc := service.NewCourseService(courseRepo, worker, validator.New(), metricsSvc, logr)
		if cfg.Exports.Enabled {
			courseHandler = handler.NewCourseHandler(courseSvc, service.NewExportService(courseReader, location, logr))
		} else {
			courseHandler = handler.NewCourseHandler(courseSvc, nil)
		}
	}

	widgetHandler := handler.NewWidgetHandler(widgetSvc, publisher, authSvc, defaultLocale)
	storageHandler := handler.NewStorageHandler(storageSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authn := internalmiddleware.JWT(authSvc)
	write := internalmiddleware.RequireWrite()

	widget := api.Group("/widget")
	widget.GET("/placeholder", widgetHandler.Placeholder)
	widget.GET("/time-slots", widgetHandler.TimeSlots)
	widget.GET("/summary", authn, widgetHandler.Summary)
	widget.POST("/refresh", authn, widgetHandler.Refresh)
	widget.POST("/token", authn, write, widgetHandler.WidgetToken)

	storage := api.Group("/storage", authn)
	storage.GET("/:key", storageHandler.Get)
	storage.HEAD("/:key", storageHandler.Head)
	storage.PUT("/:key", write, storageHandler.Put)
	storage.DELETE("/:key", write, storageHandler.Delete)

	if courseHandler != nil {
		courses := api.Group("/courses", authn)
		courses.GET("", courseHandler.List)
		courses.PUT("", write, courseHandler.Replace)
		courses.GET("/export", courseHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if worker != nil {
		worker.Stop()
	}
}
