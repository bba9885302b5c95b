package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-screener/internal/classifier"
	"github.com/spigell/cv-screener/internal/corpus"
	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/screening"
	"github.com/spigell/cv-screener/internal/textrep"
)

const (
	app       = "cv-screener"
	envPrefix = "CV_SCREENER"
)

type Config struct {
	Corpus         *CorpusConfig         `mapstructure:"corpus"`
	Representation *RepresentationConfig `mapstructure:"representation"`
	Classifier     *ClassifierConfig     `mapstructure:"classifier"`
	Scoring        *ScoringConfig        `mapstructure:"scoring"`
	Defaults       *DefaultsConfig       `mapstructure:"defaults"`
	Extraction     *ExtractionConfig     `mapstructure:"extraction"`
	Filters        *FiltersConfig        `mapstructure:"filters"`
	AI             *AIConfig             `mapstructure:"ai"`
	MetricsFile    string                `mapstructure:"metrics-file"`
}

type CorpusConfig struct {
	Path           string   `mapstructure:"path"`
	Encoding       string   `mapstructure:"encoding"`
	TextColumns    []string `mapstructure:"text-columns"`
	CategoryColumn string   `mapstructure:"category-column"`
}

type RepresentationConfig struct {
	MaxFeatures int `mapstructure:"max-features"`
	NgramMin    int `mapstructure:"ngram-min"`
	NgramMax    int `mapstructure:"ngram-max"`
}

type ClassifierConfig struct {
	Kind         string  `mapstructure:"kind"`
	Epochs       int     `mapstructure:"epochs"`
	LearningRate float64 `mapstructure:"learning-rate"`
	L2           float64 `mapstructure:"l2"`
	BatchSize    int     `mapstructure:"batch-size"`
	Seed         uint64  `mapstructure:"seed"`
	Alpha        float64 `mapstructure:"alpha"`
}

type ScoringConfig struct {
	CategoryWeight   float64 `mapstructure:"category-weight"`
	SimilarityWeight float64 `mapstructure:"similarity-weight"`
	Fallback         string  `mapstructure:"fallback"`
	QualifiedOnly    bool    `mapstructure:"qualified-only"`
}

type DefaultsConfig struct {
	ShortlistSize int     `mapstructure:"shortlist-size"`
	MinScore      float64 `mapstructure:"min-score"`
}

type ExtractionConfig struct {
	Workers       int    `mapstructure:"workers"`
	PreviewLength int    `mapstructure:"preview-length"`
	ExcludeFile   string `mapstructure:"exclude-file"`
}

type FiltersConfig struct {
	MinSkills      int     `mapstructure:"min-skills"`
	MinExperience  float64 `mapstructure:"min-experience"`
	EmailRequired  bool    `mapstructure:"email-required"`
	DropDuplicates bool    `mapstructure:"drop-duplicates"`
}

type AIConfig struct {
	Enabled         bool            `mapstructure:"enabled"`
	Provider        string          `mapstructure:"provider"`
	MinimumFitScore float64         `mapstructure:"minimum-fit-score"`
	Criteria        *CriteriaConfig `mapstructure:"criteria"`
	Gemini          *GeminiConfig   `mapstructure:"gemini"`
}

type CriteriaConfig struct {
	ExtraCriteria    string `mapstructure:"extra-criteria"`
	DealBreakers     string `mapstructure:"deal-breakers"`
	Keywords         string `mapstructure:"keywords"`
	UserInstructions string `mapstructure:"user-instructions"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-screener ranks résumés against a job posting with a model trained on a labelled corpus",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("corpus", "", "labelled training corpus (CSV or TSV)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("corpus"))
}

func initConfig() {
	// We can't proceed if the config file parsed with error.
	if err := setupViper(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// setupViper registers defaults and env overrides, then reads the config file.
// A missing default config file is not an error; a missing explicit one is.
func setupViper(v *viper.Viper, file string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults makes every key known to viper so env overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	csv := corpus.DefaultCSVOptions()
	v.SetDefault("corpus.path", "")
	v.SetDefault("corpus.encoding", csv.Encoding)
	v.SetDefault("corpus.text-columns", csv.TextColumns)
	v.SetDefault("corpus.category-column", csv.CategoryColumn)

	rep := textrep.DefaultConfig()
	v.SetDefault("representation.max-features", rep.MaxFeatures)
	v.SetDefault("representation.ngram-min", rep.NgramMin)
	v.SetDefault("representation.ngram-max", rep.NgramMax)

	cls := classifier.DefaultOptions()
	v.SetDefault("classifier.kind", cls.Kind)
	v.SetDefault("classifier.epochs", cls.Epochs)
	v.SetDefault("classifier.learning-rate", cls.LearningRate)
	v.SetDefault("classifier.l2", cls.L2)
	v.SetDefault("classifier.batch-size", cls.BatchSize)
	v.SetDefault("classifier.seed", cls.Seed)
	v.SetDefault("classifier.alpha", cls.Alpha)

	svc := screening.DefaultConfig()
	v.SetDefault("scoring.category-weight", svc.Weights.Category)
	v.SetDefault("scoring.similarity-weight", svc.Weights.Similarity)
	v.SetDefault("scoring.fallback", string(svc.Fallback))
	v.SetDefault("scoring.qualified-only", false)
	v.SetDefault("defaults.shortlist-size", svc.Defaults.ShortlistSize)
	v.SetDefault("defaults.min-score", svc.Defaults.MinScore)
	v.SetDefault("extraction.workers", extract.DefaultWorkers)
	v.SetDefault("extraction.preview-length", svc.PreviewLength)
	v.SetDefault("extraction.exclude-file", "")
	v.SetDefault("filters.min-skills", svc.Criteria.MinSkills)
	v.SetDefault("filters.min-experience", svc.Criteria.MinExperience)
	v.SetDefault("filters.email-required", svc.Criteria.EmailRequired)
	v.SetDefault("filters.drop-duplicates", svc.DropDuplicates)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.minimum-fit-score", 0.5)
	v.SetDefault("ai.criteria.extra-criteria", "")
	v.SetDefault("ai.criteria.deal-breakers", "")
	v.SetDefault("ai.criteria.keywords", "")
	v.SetDefault("ai.criteria.user-instructions", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 0)
	v.SetDefault("ai.gemini.max-log-length", 0)

	v.SetDefault("metrics-file", "")
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	return config, nil
}
