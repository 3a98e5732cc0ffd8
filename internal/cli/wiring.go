package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/generate"
	"github.com/mrz1836/forge/internal/pipeline"
	"github.com/mrz1836/forge/internal/review"
)

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		DesignMaxIterations: cfg.Pipeline.DesignMaxIterations,
		CodeMaxIterations:   cfg.Pipeline.CodeMaxIterations,
		TestMaxRetries:      cfg.Pipeline.TestMaxRetries,
		MaxTotalIterations:  cfg.Pipeline.MaxTotalIterations,
	}
}

func engineConfig(cfg *config.Config) review.EngineConfig {
	return review.EngineConfig{
		CodeHighThreshold: cfg.Review.CodeHighThreshold,
		AnalyzerTimeout:   cfg.Review.AnalyzerTimeout,
	}
}

func generationConfig(cfg *config.Config) generate.Config {
	g := cfg.Generation
	return generate.Config{
		Mode:              constants.GenerationMode(strings.ToLower(g.Mode)),
		FileMaxAttempts:   g.FileMaxAttempts,
		MinContentLength:  g.MinContentLength,
		TokensPerLine:     g.TokensPerLine,
		MinTokens:         g.MinTokens,
		MaxTokens:         g.MaxTokens,
		Concurrency:       g.Concurrency,
		RequestsPerSecond: g.RequestsPerSecond,
		RetryBackoff:      g.RetryBackoff,
		PreviewLength:     g.PreviewLength,
	}
}

// selectRoster narrows a full roster to the configured names, in configured
// order. An empty selection keeps the full roster.
func selectRoster(kind string, full review.Roster, names []string) (review.Roster, error) {
	if len(names) == 0 {
		return full, nil
	}

	available := make(map[string]review.Analyzer, len(full))
	for _, m := range full {
		available[m.Name] = m.Analyzer
	}

	selected := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, ok := available[name]; !ok {
			return nil, fmt.Errorf("%w: unknown %s analyzer %q (known: %s)",
				errors.ErrConfigInvalidReview, kind, raw, strings.Join(full.Names(), ", "))
		}
		selected = append(selected, name)
	}
	return review.NewRoster(selected, available), nil
}

// newOrchestrator applies configuration to workers and builds the orchestrator.
func newOrchestrator(cfg *config.Config, workers pipeline.Workers, logger zerolog.Logger) (*pipeline.Orchestrator, error) {
	var err error
	if workers.DesignAnalyzers, err = selectRoster("design", workers.DesignAnalyzers, cfg.Review.DesignAnalyzers); err != nil {
		return nil, err
	}
	if workers.CodeAnalyzers, err = selectRoster("code", workers.CodeAnalyzers, cfg.Review.CodeAnalyzers); err != nil {
		return nil, err
	}

	engine := review.NewEngine(engineConfig(cfg), logger)
	return pipeline.NewOrchestrator(workers,
		pipeline.WithOptions(pipelineOptions(cfg)),
		pipeline.WithReviewer(engine),
		pipeline.WithLogger(logger),
	)
}

// loadConfig loads layered configuration with the CLI logger on the context.
func loadConfig(ctx context.Context, logger zerolog.Logger, overrides *config.Config) (*config.Config, error) {
	return config.LoadWithOverrides(logger.WithContext(ctx), overrides)
}
