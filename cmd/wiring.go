package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/ai/gemini"
	"github.com/spigell/fit-screener/internal/github"
	"github.com/spigell/fit-screener/internal/logger"
	"github.com/spigell/fit-screener/internal/report"
	"github.com/spigell/fit-screener/internal/screening"
	"github.com/spigell/fit-screener/internal/secrets"
	"github.com/spigell/fit-screener/internal/store"
)

const providerGemini = "gemini"

// openCache chains the in-process cache, the optional redis cache and the
// database. The returned func releases the redis connection.
func openCache(ctx context.Context, cfg CacheConfig, st *store.Store, l *zap.Logger) (report.Cache, func(), error) {
	var memory report.Cache
	if cfg.MemoryEntries > 0 {
		memory = report.NewMemoryCache(cfg.MemoryEntries)
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		return report.NewTiered(memory, st), func() {}, nil
	}

	rdb, err := report.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	l.Debug("redis report cache enabled")

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			l.Warn("closing redis", zap.Error(err))
		}
	}

	return report.NewTiered(memory, rdb, st), closeFn, nil
}

func newGitHubClient(cfg GitHubConfig, l *zap.Logger) (*github.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name:     "github token",
		File:     cfg.TokenFile,
		Value:    cfg.Token,
		Env:      "GITHUB_TOKEN",
		Optional: true,
	})
	if err != nil {
		return nil, err
	}
	if token == "" {
		l.Warn("no github token configured, using anonymous rate limits")
	}

	client := github.New(l.With(zap.String("component", "github")), token)
	client.SetRateLimit(cfg.RateLimit)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.MaxPages > 0 {
		client.MaxPages = cfg.MaxPages
	}

	return client, nil
}

// newAdjuster returns nil when the reviewer is disabled. Several configured
// models form a panel.
func newAdjuster(ctx context.Context, cfg *AIConfig, l *zap.Logger) (ai.Adjuster, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	models := cfg.Gemini.Models
	if len(models) == 0 {
		models = []string{cfg.Gemini.Model}
	}

	members := make([]ai.Adjuster, 0, len(models))
	for _, model := range models {
		genLogger := logger.WithCommonFields(l, providerGemini, model).With(
			zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
		)

		generator, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:     apiKey,
			Model:      model,
			MaxRetries: cfg.Gemini.MaxRetries,
			Logger:     genLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating gemini generator: %w", err)
		}

		adjuster := gemini.NewAdjuster(generator, genLogger, cfg.Gemini.MaxLogLength)
		adjuster.SetInstructions(cfg.Instructions)
		members = append(members, adjuster)
	}

	if len(members) == 1 {
		return members[0], nil
	}

	panel, err := ai.NewPanel(l.With(zap.String("component", "panel")), members...)
	if err != nil {
		return nil, err
	}
	return panel, nil
}

func newScreener(ctx context.Context, cfg *Config, st *store.Store, cache report.Cache, l *zap.Logger) (*screening.Screener, error) {
	gh, err := newGitHubClient(cfg.GitHub, l)
	if err != nil {
		return nil, fmt.Errorf("configuring github: %w", err)
	}

	adjuster, err := newAdjuster(ctx, cfg.AI, l)
	if err != nil {
		return nil, fmt.Errorf("configuring reviewer: %w", err)
	}

	return screening.New(screening.Options{
		GitHub:                gh,
		Adjuster:              adjuster,
		Cache:                 cache,
		Candidates:            st,
		Weights:               cfg.Scoring.Weights,
		DisagreementThreshold: cfg.Scoring.DisagreementThreshold,
		Logger:                l,
	})
}
