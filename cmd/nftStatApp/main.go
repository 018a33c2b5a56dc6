package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nftStatApp/config"
	"nftStatApp/internal/app"
	"nftStatApp/internal/domain/useCases"
	"nftStatApp/internal/handlers/http"
	"nftStatApp/internal/lib/logger/handlers/slogpretty"
	"nftStatApp/internal/lib/logger/sl"
	"nftStatApp/pkg/utils"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := setupLogger(cfg.Env)

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutting down...")
		cancel()
	}()

	log.Info("Initializing app...", slog.String("env", cfg.Env), slog.String("blob_backend", cfg.BlobBackend))

	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Starting event processor...")
	go func() {
		if err := application.EventProcessor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("event processor stopped", sl.Err(err))
		}
	}()

	// !!! For DEMO purposes, generate random marketplace events
	// This is not for production use!
	if cfg.DemoEvents {
		go runDemoGenerator(ctx, log, application)
	}

	checks := make(map[string]http.HealthCheck, len(application.HealthChecks))
	for name, check := range application.HealthChecks {
		checks[name] = check
	}

	// The archive endpoint answers 503 unless ClickHouse is connected
	var archive useCases.ArchiveReader
	if application.Archive != nil {
		archive = application.Archive
	}

	httpAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	httpServer := http.NewServer(log, httpAddr, application.Store, application.Broadcaster, archive, checks)

	go func() {
		log.Info("HTTP server listening", slog.String("addr", httpAddr))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Error("HTTP server error", sl.Err(err))
			cancel()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", sl.Err(err))
	}

	log.Info("Cleaning up app resources...")
	application.Cleanup(shutdownCtx)

	log.Info("Service stopped.")
}

// runDemoGenerator feeds synthetic listing lifecycles into the running app,
// through Kafka when it is enabled and the direct channel otherwise.
func runDemoGenerator(ctx context.Context, log *slog.Logger, application *app.AppContext) {
	generator := utils.NewListingGenerator(time.Now().UnixNano())
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	log.Info("Starting listing generator...")
	for {
		select {
		case <-ctx.Done():
			log.Info("Listing generator stopped")
			return
		case <-ticker.C:
		}

		events := generator.GenerateEvents(10)
		if application.Publisher != nil {
			_ = application.Publisher.Execute(ctx, events)
			continue
		}
		for _, event := range events {
			if err := application.Submit(ctx, event); err != nil {
				return
			}
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
