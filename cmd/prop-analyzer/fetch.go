package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-analyzer/internal/service"
)

var fetchStatsFlags struct {
	seasons []int
	output  string
}

var fetchStatsCmd = &cobra.Command{
	Use:   "fetch-stats",
	Short: "Download per-game player statistics for the configured seasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		seasons := cfg.NBAAPI.Seasons
		if cmd.Flags().Changed("season") {
			seasons = fetchStatsFlags.seasons
		}
		output := fetchStatsFlags.output
		if output == "" && len(cfg.Data.StatsFiles) > 0 {
			output = cfg.Data.StatsFiles[0]
		}

		repos, _, closeDB, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		svc, err := newIngestionService(repos, true, false)
		if err != nil {
			return err
		}
		m, err := svc.RefreshStats(cmd.Context(), seasons, output)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d rows over %d season(s), %d stored, %d rejected -> %s\n",
			m.Fetched, m.Seasons, m.Stored, m.Rejected, output)
		return nil
	},
}

var fetchPropsFlags struct {
	date   string
	output string
}

var fetchPropsCmd = &cobra.Command{
	Use:   "fetch-props",
	Short: "Download current prop lines from the projections API",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := fetchPropsFlags.date
		if date == "today" {
			date = service.Today()
		}
		output := fetchPropsFlags.output
		if output == "" {
			output = cfg.Data.PropsFile
		}

		svc, err := newIngestionService(nil, false, true)
		if err != nil {
			return err
		}
		m, err := svc.RefreshProps(cmd.Context(), date, output)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d props -> %s\n", m.Props, output)
		return nil
	},
}

func init() {
	fetchStatsCmd.Flags().IntSliceVar(&fetchStatsFlags.seasons, "season", nil, "Season(s) to fetch (defaults to nba_api.seasons)")
	fetchStatsCmd.Flags().StringVarP(&fetchStatsFlags.output, "output", "o", "", "Stats file path (defaults to the first data.stats_files entry)")

	fetchPropsCmd.Flags().StringVar(&fetchPropsFlags.date, "date", "", "Only props starting on YYYY-MM-DD, or \"today\"")
	fetchPropsCmd.Flags().StringVarP(&fetchPropsFlags.output, "output", "o", "", "Props file path (defaults to data.props_file)")
}
