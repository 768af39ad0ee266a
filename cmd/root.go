package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/logger"
	"github.com/spigell/fit-screener/internal/scoring"
	"github.com/spigell/fit-screener/internal/store"
)

const (
	app       = "fit-screener"
	envPrefix = "FIT_SCREENER"
)

type Config struct {
	Store   store.Config  `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	AI      *AIConfig     `mapstructure:"ai"`
}

type CacheConfig struct {
	// RedisURL enables the shared redis layer, e.g. redis://localhost:6379/0.
	RedisURL      string `mapstructure:"redis-url" validate:"omitempty,url"`
	MemoryEntries int    `mapstructure:"memory-entries" validate:"gte=0"`
}

type GitHubConfig struct {
	Token     string  `mapstructure:"token" json:"-"`
	TokenFile string  `mapstructure:"token-file"`
	UserAgent string  `mapstructure:"user-agent"`
	RateLimit float64 `mapstructure:"rate-limit" validate:"gte=0"`
	MaxPages  int     `mapstructure:"max-pages" validate:"gte=1,lte=10"`
}

type ScoringConfig struct {
	// Weights and the threshold are checked by the scoring package itself.
	Weights               scoring.Weights `mapstructure:"weights" validate:"-"`
	DisagreementThreshold int             `mapstructure:"disagreement-threshold"`
}

type AIConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	// Instructions are extra reviewer guidelines appended to the prompt.
	Instructions string        `mapstructure:"instructions"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	// Models turns the reviewer into a panel that averages every model's adjustment.
	Models       []string `mapstructure:"models" validate:"dive,required"`
	MaxRetries   int      `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int      `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	validate = validator.New()

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fit-screener scores GitHub candidates against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fit-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to a file instead of stderr")
	rootCmd.PersistentFlags().String("db", "", "database DSN (sqlite file or postgres URL)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("db"))

	setDefaults()
}

func setDefaults() {
	w := scoring.DefaultWeights()
	viper.SetDefault("store.driver", store.DriverSQLite)
	viper.SetDefault("store.dsn", app+".db")
	viper.SetDefault("cache.memory-entries", 256)
	viper.SetDefault("github.rate-limit", 5)
	viper.SetDefault("github.max-pages", 3)
	viper.SetDefault("scoring.weights.technical", w.Technical)
	viper.SetDefault("scoring.weights.experience", w.Experience)
	viper.SetDefault("scoring.weights.complexity", w.Complexity)
	viper.SetDefault("scoring.weights.domain", w.Domain)
	viper.SetDefault("scoring.disagreement-threshold", scoring.DefaultDisagreementThreshold)
}

func initConfig() {
	// .env is a convenience for local runs; a missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// An explicit config must parse; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.AI != nil && config.AI.Enabled && config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setup builds the logger and loads the configuration; both failures are fatal.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	return l, config
}
