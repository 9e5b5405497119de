// Package main provides the prop-analyzer command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-analyzer/internal/config"
	"github.com/yourusername/prop-analyzer/internal/database"
	"github.com/yourusername/prop-analyzer/internal/datasource"
	"github.com/yourusername/prop-analyzer/internal/estimator"
	"github.com/yourusername/prop-analyzer/internal/logger"
	"github.com/yourusername/prop-analyzer/internal/metrics"
	"github.com/yourusername/prop-analyzer/internal/ranking"
	"github.com/yourusername/prop-analyzer/internal/repository"
	"github.com/yourusername/prop-analyzer/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	debug      bool

	cfg    *config.Config
	appLog *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "prop-analyzer",
	Short:         "Estimate and rank player prop probabilities",
	Long:          `Fits per-player stat distributions from historical box scores and ranks prop lines by the probability of going over.`,
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupLogging()
		metrics.InitRegistry()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")

	rootCmd.AddCommand(analyzeCmd, tableCmd, predictCmd, fetchStatsCmd, fetchPropsCmd, scheduleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return validateConfig()
}

func validateConfig() error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return config.ValidateEnvironment(cfg)
}

func setupLogging() {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	appLog.SetOutput(os.Stderr)
	if debug {
		appLog = logger.WithVerbosity(appLog, logrus.DebugLevel)
	}
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"source":      cfg.Data.Source,
	}).Debug("Configuration loaded")
}

// openRepositories connects to Postgres when the config keeps records there.
// The returned closer is always safe to call.
func openRepositories(ctx context.Context) (*repository.Repositories, *database.DB, func(), error) {
	if !cfg.UsesDatabase() {
		return nil, nil, func() {}, nil
	}

	db, err := database.Initialize(ctx, cfg, appLog)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, func() {}, err
	}
	return repos, db, db.Close, nil
}

// newAnalysisService builds the pipeline and service from the current config
func newAnalysisService(repos *repository.Repositories, outputPath string) *service.AnalysisService {
	cache := estimator.NewModelCache(cfg.ModelCacheTTL())
	pipeline := ranking.NewPipeline(ranking.OptionsFromConfig(cfg.Analysis), cache, logger.NewAnalysisLogger(appLog))

	paths := service.AnalysisPaths{
		StatsFiles: cfg.Data.StatsFiles,
		PropsFile:  cfg.Data.PropsFile,
		OutputPath: outputPath,
		Seasons:    cfg.NBAAPI.Seasons,
	}
	if cfg.Metrics.Enabled {
		paths.TextfilePath = cfg.Metrics.TextfilePath
	}

	var (
		gameStats repository.GameStatRepository
		runs      repository.AnalysisRunRepository
	)
	if repos != nil {
		gameStats = repos.GameStats
		runs = repos.AnalysisRuns
	}
	return service.NewAnalysisService(pipeline, cache, gameStats, runs, paths, appLog)
}

// newIngestionService builds the sources the requested refreshes need
func newIngestionService(repos *repository.Repositories, withStats, withProps bool) (*service.IngestionService, error) {
	factory := datasource.NewFactory(cfg, appLog)

	var (
		statsSource datasource.StatsSource
		propsSource datasource.PropsSource
		gameStats   repository.GameStatRepository
		err         error
	)
	if withStats {
		if statsSource, err = factory.NewStatsSource(); err != nil {
			return nil, err
		}
	}
	if withProps {
		if propsSource, err = factory.NewPropsSource(); err != nil {
			return nil, err
		}
	}
	if repos != nil {
		gameStats = repos.GameStats
	}
	return service.NewIngestionService(statsSource, propsSource, gameStats, appLog), nil
}
