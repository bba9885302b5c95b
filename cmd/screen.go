package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/apperrors"
	applogger "github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/metrics"
	"github.com/spigell/cv-screener/internal/model"
	"github.com/spigell/cv-screener/internal/screening"
)

var screenCmd = &cobra.Command{
	Use:   "screen <request.json>",
	Short: "Score and rank the résumés of a screening request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, logger *zap.Logger, config *Config) error {
			output, _ := cmd.Flags().GetString("output")
			return screen(ctx, logger, config, args[0], output)
		})
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
	screenCmd.Flags().StringP("exclude-file", "e", "", "special file with résumés to exclude. Default is unset.")
	screenCmd.Flags().Bool("qualified-only", false, "drop shortlisted candidates below the minimum score")
	screenCmd.Flags().String("metrics-file", "", "write Prometheus metrics in textfile format to this path")

	viper.BindPFlag("extraction.exclude-file", screenCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("scoring.qualified-only", screenCmd.Flags().Lookup("qualified-only"))
	viper.BindPFlag("metrics-file", screenCmd.Flags().Lookup("metrics-file"))
}

// runCommand builds the logger and config shared by every command and exits
// non-zero with the error kind when fn fails.
func runCommand(fn func(ctx context.Context, logger *zap.Logger, config *Config) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := applogger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if err := fn(ctx, logger, config); err != nil {
		stop()
		logger.Fatal("exiting", zap.String("kind", string(apperrors.KindOf(err))), zap.Error(err))
	}
}

func screen(ctx context.Context, logger *zap.Logger, config *Config, requestPath, output string) error {
	logger.Info("starting the cv-screener", zap.String("version", version))

	rec := metrics.New()
	if config.MetricsFile != "" {
		defer func() {
			if err := rec.WriteTextfile(config.MetricsFile); err != nil {
				logger.Warn("writing metrics file", zap.String(applogger.FieldFile, config.MetricsFile), zap.Error(err))
			}
		}()
	}

	req, err := screening.LoadRequest(requestPath)
	if err != nil {
		rec.Run(string(apperrors.KindOf(err)))
		return err
	}

	svcCfg, err := config.screeningConfig()
	if err != nil {
		return err
	}

	holder, err := trainHolder(ctx, logger, config, rec)
	if err != nil {
		rec.Run(string(apperrors.KindOf(err)))
		return err
	}

	opts := []screening.Option{screening.WithMetrics(rec), screening.WithLogger(logger)}
	reviewer, err := newAIReviewer(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI review", zap.Error(err))
	} else if reviewer != nil {
		opts = append(opts, screening.WithReviewer(reviewer))
	}

	svc, err := screening.New(holder, svcCfg, opts...)
	if err != nil {
		return err
	}

	warnUnknownCategories(logger, holder.Load(), req.Positions())

	if req.Multi() {
		multi, err := svc.ScreenAll(ctx, req)
		if err != nil {
			return err
		}
		return writeOutput(output, logger, multi.Write)
	}

	report, err := svc.Screen(ctx, req)
	if err != nil {
		return err
	}

	return writeOutput(output, logger, report.Write)
}

// warnUnknownCategories lists the trained labels once for every job whose category
// the model has never seen, so a typo is easy to spot.
func warnUnknownCategories(logger *zap.Logger, m *model.Model, jobs []screening.Job) {
	if m == nil {
		return
	}
	for _, job := range jobs {
		category := strings.TrimSpace(job.Category)
		if m.HasCategory(category) {
			continue
		}
		logger.Warn("job category is not in the trained label space",
			zap.String("category", category),
			zap.Strings("known_categories", m.Labels()),
		)
	}
}

func trainHolder(ctx context.Context, logger *zap.Logger, config *Config, rec *metrics.Recorder) (*model.Holder, error) {
	c, err := config.loadCorpus()
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded", zap.Int("documents", c.Len()), zap.Int("categories", len(c.CountByCategory())))

	holder := model.NewHolder(nil, logger)
	m, err := holder.Retrain(ctx, c.Documents(), config.modelConfig())
	if err != nil {
		return nil, err
	}
	rec.Model(m.Documents(), m.Dim(), len(m.Labels()))
	return holder, nil
}

// writeOutput writes to path, or to stdout when path is empty.
func writeOutput(path string, logger *zap.Logger, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("report written", zap.String(applogger.FieldFile, path))
	return nil
}
