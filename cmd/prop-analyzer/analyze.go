package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-analyzer/internal/models"
	"github.com/yourusername/prop-analyzer/internal/ranking"
)

const defaultPredictionsPath = "output/predictions.json"

var analyzeFlags struct {
	rankBy   string
	strategy string
	minGames int
	workers  int
	output   string
	limit    int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank every prop in the props file",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyAnalysisOverrides(cmd)
		if err := validateConfig(); err != nil {
			return err
		}

		repos, _, closeDB, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		output := cfg.Data.OutputPath
		if analyzeFlags.output != "" {
			output = analyzeFlags.output
		}

		report, err := newAnalysisService(repos, output).Analyze(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.ConsoleReport(analyzeFlags.limit))
		appLog.WithField("path", output).Info("Report written")
		return nil
	},
}

var predictFlags struct {
	output string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run the classifier over every prop and write predictions with model metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Analysis.Strategy = string(models.StrategyLogistic)
		if err := validateConfig(); err != nil {
			return err
		}

		repos, _, closeDB, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		report, err := newAnalysisService(repos, "").Analyze(cmd.Context())
		if err != nil {
			return err
		}
		if err := report.WritePredictions(predictFlags.output); err != nil {
			return err
		}

		printPredictions(cmd, report)
		return nil
	},
}

var tableCmd = &cobra.Command{
	Use:   "table PLAYER STAT",
	Short: "Print P(stat > threshold) over a threshold grid for one player",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyAnalysisOverrides(cmd)
		st, err := models.ParseStatType(args[1])
		if err != nil {
			return err
		}

		repos, _, closeDB, err := openRepositories(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		points, err := newAnalysisService(repos, "").Table(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ranking.TableReport(args[0], st, points))
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.rankBy, "rank-by", "", "Ranking key: probability or score")
	f.StringVar(&analyzeFlags.strategy, "strategy", "", "Estimator: kde or logistic")
	f.IntVar(&analyzeFlags.minGames, "min-games", 0, "Minimum played games before a prop is analyzed")
	f.IntVar(&analyzeFlags.workers, "workers", 0, "Concurrent prop analyses")
	f.StringVarP(&analyzeFlags.output, "output", "o", "", "Report path (defaults to data.output_path)")
	f.IntVar(&analyzeFlags.limit, "limit", 0, "Props to print, 0 for all")

	tableCmd.Flags().StringVar(&analyzeFlags.strategy, "strategy", "", "Estimator: kde or logistic")

	predictCmd.Flags().StringVarP(&predictFlags.output, "output", "o", defaultPredictionsPath, "Predictions path")
}

// applyAnalysisOverrides copies explicitly set flags onto the analysis config
func applyAnalysisOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("rank-by") {
		cfg.Analysis.RankBy = analyzeFlags.rankBy
	}
	if flags.Changed("strategy") {
		cfg.Analysis.Strategy = analyzeFlags.strategy
	}
	if flags.Changed("min-games") {
		cfg.Analysis.MinGames = analyzeFlags.minGames
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = analyzeFlags.workers
	}
}

func printPredictions(cmd *cobra.Command, report *ranking.Report) {
	out := cmd.OutOrStdout()
	for _, p := range report.Predictions() {
		fmt.Fprintf(out, "%s - %s %.1f: %.1f%%\n", p.Player, p.StatType, p.Line, p.Probability*100)
	}
	if len(report.Props) > 0 && report.Props[0].ModelInfo != nil {
		info := report.Props[0].ModelInfo
		fmt.Fprintf(out, "\nTop prop model accuracy: %.3f (train %d, test %d)\n", info.Accuracy, info.TrainSize, info.TestSize)
	}
	fmt.Fprintf(out, "Predicted %d of %d props (%d skipped), written to %s\n",
		report.Run.PropsRanked, report.Run.PropsInput, report.Run.PropsSkipped, predictFlags.output)
}
