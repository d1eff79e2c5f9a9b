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

	"golang-news-analyzer/internal/analyzer/app"
	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/delivery/consumer"
	delivery "golang-news-analyzer/internal/analyzer/delivery/http"
	"golang-news-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analyzer service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analyzer Service", logger.Field("name", cfg.App.Name))

	a, err := app.New(ctx, cfg, appLogger, app.Options{Redis: true})
	if err != nil {
		appLogger.Fatal("Failed to initialize analyzer", logger.ErrorField(err))
	}
	defer a.Close(context.Background())

	// Start the stream workers
	redisConsumer := consumer.NewRedisConsumer(cfg, a.StreamService, appLogger)
	redisConsumer.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	healthHandler := delivery.NewHealthHandler(a.ScorerRepo, a.GenerativeMacro, appLogger)
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api")
	sentimentHandler := delivery.NewSentimentHandler(a.AnalysisService, a.StreamService, appLogger)
	sentimentHandler.RegisterRoutes(api.Group("/sentiment"))

	classificationHandler := delivery.NewClassificationHandler(a.AnalysisService, appLogger)
	classificationHandler.RegisterRoutes(api.Group("/classification"))

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down analyzer service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	redisConsumer.Stop()

	appLogger.Info("Analyzer service stopped")
}

func main() {
	rootCmd := &cobra.Command{Use: "analyzer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer-service CLI: %s\n", err)
		os.Exit(1)
	}
}
