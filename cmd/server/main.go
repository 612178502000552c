package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/arise-roster/internal/api"
	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/config"
	"github.com/mcoot/arise-roster/internal/factory"
)

func main() {
	configPath := flag.String("config", os.Getenv("ROSTER_CONFIG"), "path to YAML config file")
	flag.Parse()

	// .env is optional; a missing file is reported once the logger exists
	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not load .env", slog.String("error", envErr.Error()))
	} else if envErr != nil {
		logger.Debug("no .env file found")
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("closing storage", slog.String("error", err.Error()))
		}
	}()
	app.Start()

	if _, err := app.BootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, logger); err != nil {
		logger.Error("admin bootstrap failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Storage:            app.Storage,
		StorageType:        app.StorageType,
		AuthService:        app.AuthService,
		AccountsService:    app.AccountsService,
		RosterService:      app.RosterService,
		ActivityService:    app.ActivityService,
		SpreadsheetService: app.SpreadsheetService,
		Hub:                app.Hub,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		SecureCookies:      cfg.Server.SecureCookies,
		MaxUploadSize:      cfg.Import.MaxUploadBytes,
		LoginRateLimit: middleware.RateLimitConfig{
			Requests: cfg.Auth.LoginAttempts,
			Window:   cfg.Auth.LoginWindow,
		},
	})

	server := api.NewServer(router, api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Live streams only end when the hub lets go of them
		app.Hub.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
