package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/model"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Train on a stratified split of the corpus and report holdout metrics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runCommand(func(ctx context.Context, logger *zap.Logger, config *Config) error {
			opts := model.DefaultEvalOptions()
			opts.TestFraction, _ = cmd.Flags().GetFloat64("test-fraction")
			opts.Seed, _ = cmd.Flags().GetUint64("seed")
			return evaluate(ctx, logger, config, opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	defaults := model.DefaultEvalOptions()
	evaluateCmd.Flags().Float64("test-fraction", defaults.TestFraction, "share of every category held out for testing")
	evaluateCmd.Flags().Uint64("seed", defaults.Seed, "seed of the stratified split")
}

func evaluate(ctx context.Context, logger *zap.Logger, config *Config, opts model.EvalOptions) error {
	c, err := config.loadCorpus()
	if err != nil {
		return err
	}

	result, err := model.Evaluate(ctx, c.Documents(), config.modelConfig(), opts)
	if err != nil {
		return err
	}

	logger.Info("evaluation complete",
		zap.Int("train", result.TrainSize),
		zap.Int("test", result.TestSize),
		zap.Float64("accuracy", result.Accuracy),
		zap.Float64("macro_f1", result.MacroF1),
	)

	return writeOutput("", logger, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}
