package cmd

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/corpus"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories of the training corpus",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(func(_ context.Context, logger *zap.Logger, config *Config) error {
			c, err := config.loadCorpus()
			if err != nil {
				return err
			}
			return writeOutput("", logger, func(w io.Writer) error {
				return writeCategories(w, c)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

type categoryCount struct {
	Category  string `json:"category"`
	Documents int    `json:"documents"`
}

// writeCategories prints the labels in sorted order with their document counts.
func writeCategories(w io.Writer, c *corpus.Corpus) error {
	counts := c.CountByCategory()
	out := make([]categoryCount, 0, len(counts))
	for _, category := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, categoryCount{Category: category, Documents: counts[category]})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
