package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-news-analyzer/internal/analyzer/app"
	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	newsID     int64
	force      bool
	limit      int
)

// withApp loads configuration, wires the pipeline and runs fn with a context
// that is canceled on interrupt.
func withApp(opts app.Options, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	a, err := app.New(ctx, cfg, appLogger, opts)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze one article",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newsID <= 0 {
			return errors.New("--news-id must be a positive integer")
		}
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			result, err := a.AnalysisService.RunPipeline(ctx, newsID, dto.PipelineOptions{Force: force})
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze the newest articles without a complete result",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			report, err := a.AnalysisService.RunBatch(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify articles that have no classification yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			report, err := a.AnalysisService.ClassifyBacklog(ctx, limit)
			if report != nil {
				if perr := printJSON(report); perr != nil {
					return perr
				}
			}
			return err
		})
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue backlog articles on the analysis stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{Redis: true}, func(ctx context.Context, a *app.App) error {
			if newsID > 0 {
				id, err := a.StreamService.EnqueueNews(ctx, newsID, force)
				if err != nil {
					return err
				}
				fmt.Printf("Enqueued news %d as %s\n", newsID, id)
				return nil
			}
			n, err := a.StreamService.Enqueue(ctx, limit)
			fmt.Printf("Enqueued %d articles\n", n)
			return err
		})
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "pipeline",
		Short:        "Runs the news understanding pipeline from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	runCmd.Flags().Int64Var(&newsID, "news-id", 0, "ID of the article to analyze")
	runCmd.Flags().BoolVar(&force, "force", false, "Re-analyze even if a complete result exists")
	_ = runCmd.MarkFlagRequired("news-id")

	batchCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of articles (0 uses the configured default)")
	classifyCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of articles (0 uses the configured default)")

	enqueueCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of articles (0 uses the configured default)")
	enqueueCmd.Flags().Int64Var(&newsID, "news-id", 0, "Queue a single article instead of the backlog")
	enqueueCmd.Flags().BoolVar(&force, "force", false, "Re-analyze the queued article even if a complete result exists")

	rootCmd.AddCommand(runCmd, batchCmd, classifyCmd, enqueueCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline CLI: %s\n", err)
		os.Exit(1)
	}
}
