package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/migrations"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	var (
		tasks repository.TaskStore
		items repository.ItemStore
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		tasks = repository.NewMemoryTaskRepository()
		items = repository.NewMemoryItemRepository()
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", "error", err)
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool, func(name string) {
			logger.Debug("migration applied", "file", name)
		}); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
		tasks = repository.NewTaskRepository(pool)
		items = repository.NewItemRepository(pool)
	}

	redisRL := middleware.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisRL.Close()

	r := httpServer.NewRouter(httpServer.Deps{
		Tasks:       service.NewTaskService(tasks, validation.MustNew()),
		Items:       items,
		Version:     cfg.AppVersion,
		RateLimit:   httpServer.RateLimiter(redisRL, cfg.APIRateLimit, cfg.APIRateWindow),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.Store, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
