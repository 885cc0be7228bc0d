package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"cfp-api/core/cache"
	"cfp-api/core/config"
	"cfp-api/core/database"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/core/middleware"
	"cfp-api/core/queue"
	"cfp-api/core/storage"
	"cfp-api/modules/activity"
	"cfp-api/modules/analytics"
	"cfp-api/modules/announcement"
	"cfp-api/modules/event"
	"cfp-api/modules/notification"
	"cfp-api/modules/review"
	"cfp-api/modules/schedule"
	"cfp-api/modules/submission"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run starts the HTTP API, the task worker and the periodic scheduler in
// one process and blocks until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient)
	var appCache cache.Cache = redisCache
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("Server:Redis unavailable, caching disabled", "error", err)
		appCache = cache.NoopCache{}
	}

	dispatcher := queue.NewDispatcher(cfg)
	defer dispatcher.Close()
	publisher := storage.NewPublisher(cfg.Storage)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	mw := middleware.NewMiddleware()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(mw.RequestLogger())

	e.GET("/health", func(c echo.Context) error {
		status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
		if err := db.SQLx().PingContext(c.Request().Context()); err != nil {
			status["status"], status["database"] = "degraded", err.Error()
		}
		if err := redisCache.Ping(c.Request().Context()); err != nil {
			status["redis"] = err.Error()
		}
		return c.JSON(http.StatusOK, status)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	mux := queue.NewServeMux()
	api := e.Group("/api/v1")

	events := event.Init(api, db, mw)
	activities := activity.Init(api, db, mw, events)
	submissions := submission.Init(api, db, mw, dispatcher, events)
	review.Init(api, db, mw, mux, appCache, dispatcher, activities, events, submissions)
	schedules := schedule.Init(api, db, mw, mux, cfg, dispatcher, publisher, activities, events, submissions)
	notifications := notification.Init(api, db, mw, mux, events, schedules, submissions)
	announcement.Init(api, db, mw, mux, dispatcher, activities, events, notifications)
	analytics.Init(api, db, mw, mux, events)

	worker := queue.NewServer(cfg)
	if err := worker.Start(mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer worker.Shutdown()

	scheduler, err := queue.NewScheduler(cfg)
	if err != nil {
		return fmt.Errorf("register periodic tasks: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Starting", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("Server:Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Shutdown", err)
		return err
	}
	logger.Info("Server:Stopped")
	return nil
}
