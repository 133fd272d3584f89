package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/aqi-service/internal/train"
)

var (
	trainSamples int
	trainSeed    uint64
	trainOutDir  string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the offline training pipeline",
	Long:  "Synthesizes a labeled dataset, fits the scaler and random forest, evaluates on a held-out split, and persists the artifacts the serve command loads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tc := train.Config{
			Samples:      cfg.Train.Samples,
			Seed:         cfg.Train.Seed,
			Trees:        cfg.Train.Trees,
			MaxDepth:     cfg.Train.MaxDepth,
			TestFraction: cfg.Train.TestFraction,
			OutputDir:    cfg.Artifacts.Dir,
		}
		if trainSamples > 0 {
			tc.Samples = trainSamples
		}
		if cmd.Flags().Changed("seed") {
			tc.Seed = trainSeed
		}
		if trainOutDir != "" {
			tc.OutputDir = trainOutDir
		}

		result, err := train.Run(tc)
		if err != nil {
			return err
		}

		zap.L().Info("model training completed",
			zap.Float64("mse", result.Metrics.MSE),
			zap.Float64("rmse", result.Metrics.RMSE),
			zap.Float64("r2", result.Metrics.R2),
			zap.Int("train_rows", result.TrainRows),
			zap.Int("test_rows", result.TestRows),
			zap.Duration("elapsed", result.Elapsed),
		)
		for _, fi := range result.Importances {
			zap.L().Info("feature importance",
				zap.String("feature", fi.Feature),
				zap.Float64("importance", fi.Importance),
			)
		}
		zap.L().Info("artifacts saved",
			zap.String("scaler", train.ScalerPath(tc.OutputDir)),
			zap.String("model", train.ModelPath(tc.OutputDir)),
		)
		return nil
	},
}

func init() {
	trainCmd.Flags().IntVar(&trainSamples, "samples", 0, "synthetic rows to generate (default from config)")
	trainCmd.Flags().Uint64Var(&trainSeed, "seed", 0, "random seed (default from config)")
	trainCmd.Flags().StringVar(&trainOutDir, "output-dir", "", "artifact output directory (default from config)")
	rootCmd.AddCommand(trainCmd)
}
