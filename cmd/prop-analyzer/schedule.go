package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-analyzer/internal/database"
	"github.com/yourusername/prop-analyzer/internal/health"
	"github.com/yourusername/prop-analyzer/internal/scheduler"
	"github.com/yourusername/prop-analyzer/internal/service"
)

const (
	propsJobTimeout = 10 * time.Minute
	statsJobTimeout = 2 * time.Hour
)

var scheduleFlags struct {
	skipInitial bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Refresh props and statistics on a cron schedule and re-rank after each refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		repos, db, closeDB, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		ingestion, err := newIngestionService(repos, cfg.Schedule.StatsRefresh != "", cfg.Schedule.PropsRefresh != "")
		if err != nil {
			return err
		}
		analysis := newAnalysisService(repos, cfg.Data.OutputPath)

		var statsOut string
		if len(cfg.Data.StatsFiles) > 0 {
			statsOut = cfg.Data.StatsFiles[0]
		}

		refreshProps := func(ctx context.Context) error {
			if _, err := ingestion.RefreshProps(ctx, service.Today(), cfg.Data.PropsFile); err != nil {
				return err
			}
			_, err := analysis.Analyze(ctx)
			return err
		}
		refreshStats := func(ctx context.Context) error {
			if _, err := ingestion.RefreshStats(ctx, cfg.NBAAPI.Seasons, statsOut); err != nil {
				return err
			}
			analysis.InvalidateModels()
			_, err := analysis.Analyze(ctx)
			return err
		}

		// both refreshes rewrite the data files and the report
		refresh := scheduler.NewExclusive()
		sched := scheduler.NewScheduler(appLog)
		if spec := cfg.Schedule.PropsRefresh; spec != "" {
			if err := sched.AddJob("props_refresh", spec, propsJobTimeout, refresh.Wrap(refreshProps)); err != nil {
				return err
			}
		}
		if spec := cfg.Schedule.StatsRefresh; spec != "" {
			if err := sched.AddJob("stats_refresh", spec, statsJobTimeout, refresh.Wrap(refreshStats)); err != nil {
				return err
			}
		}

		hs := health.NewServer(health.Config{
			ServiceName: "prop-analyzer",
			Version:     Version,
			Port:        cfg.Metrics.Port,
			Metrics:     cfg.Metrics.Enabled,
			Logger:      appLog,
			DB:          pinger(db),
			Runs:        analysis,
		})
		if err := hs.Start(ctx); err != nil {
			return err
		}

		if !scheduleFlags.skipInitial {
			if _, err := analysis.Analyze(ctx); err != nil {
				appLog.WithError(err).Warn("Initial analysis failed, waiting for the first refresh")
			}
		}

		if err := sched.Start(); err != nil {
			return err
		}
		hs.SetReady(true)
		appLog.WithField("next_run", sched.NextRun()).Info("Scheduler running")

		<-ctx.Done()
		hs.SetReady(false)
		appLog.Info("Shutting down")
		return sched.Stop()
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleFlags.skipInitial, "skip-initial", false, "Do not analyze the existing files before the first tick")
}

// pinger avoids handing the health server a typed-nil database
func pinger(db *database.DB) health.DatabasePinger {
	if db == nil {
		return nil
	}
	return db
}
