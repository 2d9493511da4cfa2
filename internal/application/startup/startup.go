// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundroad/fundroad-go/internal/application/container"
	"github.com/fundroad/fundroad-go/internal/infrastructure/caching/cleanup"
	"github.com/fundroad/fundroad-go/internal/infrastructure/content"
	"github.com/fundroad/fundroad-go/internal/presentation/http/server"
	"github.com/fundroad/fundroad-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  ___              _   ___               _
 | __|  _ _ _  __| | | _ \ ___  __ _ __| |
 | _| || | ' \/ _' | |   // _ \/ _' / _' |
 |_| \_,_|_||_\__,_| |_|_\\___/\__,_\__,_|
` + "\033[0m")

	// Step 1: Logger
	log.Println("Initializing logger...")
	logger, err := container.NewLoggerFromConfig()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Logger initialized - switching to channeled logging", "level", config.LogLevel)

	// Step 2: Journey content
	logger.Startup().Info("Loading journey content...", "dir", config.ContentDir)
	loaded, err := content.Load(config.ContentDir)
	if err != nil {
		return fmt.Errorf("failed to load journey content: %w", err)
	}
	logger.Startup().Info("Journey content loaded",
		"steps", len(loaded.Catalog.Steps()),
		"financingEntries", len(loaded.Financing))

	// Step 3: Database
	logger.Startup().Info("Connecting to database...", "driver", config.DBDriver)
	db, err := container.OpenDatabase(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Step 4: Optional providers
	store, err := container.NewObjectStore(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to configure object storage: %w", err)
	}
	jwtSecret, err := container.ResolveJWTSecret(logger)
	if err != nil {
		return err
	}

	// Step 5: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(container.Dependencies{
		Logger:     logger,
		DB:         db,
		Content:    loaded,
		Store:      store,
		Sender:     container.NewSender(logger),
		Translator: container.NewTranslator(logger),
		JWTSecret:  jwtSecret,
	})
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Start background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	startWorkerTime := time.Now()

	cleanupWorker := cleanup.NewWorker(cleanup.NewConfig(), logger, Sweepers(appContainer)...)
	go cleanupWorker.Start(ctx)

	logger.Startup().Info("Background cleanup worker started", "duration", time.Since(startWorkerTime))

	// Step 7: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	httpServer := server.New(server.ConfigFromEnv(), appContainer)
	if err := httpServer.Listen(); err != nil {
		return err
	}

	// Step 8: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Serve()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"address", httpServer.Addr())

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
			return err
		}
	}

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// Sweepers lists the in-memory structures the cleanup worker trims: idle
// navigation sessions and expired performance markers.
func Sweepers(c *container.Container) []cleanup.Sweeper {
	return []cleanup.Sweeper{
		cleanup.SweepFunc{
			Label: "navigation-sessions",
			Fn: func(ctx context.Context) (int, int, error) {
				removed := c.Sessions.PurgeExpired()
				remaining := c.Sessions.Len()
				c.Metrics.SetNavigationStates(remaining)
				return removed, remaining, nil
			},
		},
		cleanup.SweepFunc{
			Label: "performance-markers",
			Fn: func(ctx context.Context) (int, int, error) {
				return c.PerfTracker.Cleanup(), len(c.PerfTracker.GetRecentMetrics(config.PerformanceRetention)), nil
			},
		},
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
