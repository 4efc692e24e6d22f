package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "restaurantservice/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"restaurantservice/internal/auth"
	"restaurantservice/internal/cache"
	"restaurantservice/internal/config"
	"restaurantservice/internal/db"
	"restaurantservice/internal/handler"
	"restaurantservice/internal/repository"
	"restaurantservice/internal/router"
	"restaurantservice/internal/service"
)

// @title Restaurant Service API
// @version 1.0
// @description Staff accounts, API tokens and profiles for the restaurant backend.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	gormDB, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if cacheClient == nil {
		logger.Info("user cache disabled")
	}

	userRepo := repository.NewUserRepository(repository.NewStore(gormDB))

	userService := service.NewUserService(userRepo, cacheClient, cfg.UserCacheTTL, logger)
	healthService := service.NewHealthService(userRepo, logger)

	codec := auth.NewTokenCodec(cfg.SecretKey)
	guard := auth.NewGuard(userService, codec, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		guard,
		handler.NewUserHandler(userService, codec),
		handler.NewHealthHandler(healthService),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.Addr()),
			slog.String("swagger", "http://"+cfg.Addr()+"/swagger/index.html"),
		)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
