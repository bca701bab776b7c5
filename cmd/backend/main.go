package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"

	configloader "github.com/campushub/attendance/external/config"
	"github.com/campushub/attendance/external/httpapi"
	repositoryimpl "github.com/campushub/attendance/external/repository"
	"github.com/campushub/attendance/internal/attendance"
	"github.com/campushub/attendance/internal/config"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server", "addr", cfg.HTTPAddr)
	runServer(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	attendance.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runServer(cfg *config.Config, injector do.Injector) {
	// Pin the shared database handle open for the lifetime of the process
	// so per-operation acquire/release in the stores never churns the pool.
	conn, err := do.Invoke[*repositoryimpl.ConnectionManager](injector)
	if err != nil {
		slog.Error("failed to resolve connection manager", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	if _, err := conn.Acquire(ctx); err != nil {
		cancel()
		slog.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	cancel()
	defer conn.Release()

	handler, err := do.Invoke[*httpapi.Handler](injector)
	if err != nil {
		slog.Error("failed to resolve http handler", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:               "attendance",
		DisableStartupMessage: true,
	})
	handler.Register(app)

	done := make(chan struct{})
	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("http shutdown failed", "error", err)
		}
	case <-done:
	}
}
