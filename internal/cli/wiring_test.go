package cli

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/pipeline"
	"github.com/mrz1836/forge/internal/review"
)

func emptyAnalyzer() review.Analyzer {
	return review.AnalyzerFunc(func(context.Context, domain.StageArtifact) (domain.AnalyzerResult, error) {
		return domain.AnalyzerResult{}, nil
	})
}

func fullRoster() review.Roster {
	analyzers := make(map[string]review.Analyzer)
	for _, name := range review.StandardAnalyzerNames() {
		analyzers[name] = emptyAnalyzer()
	}
	return review.NewRoster(review.StandardAnalyzerNames(), analyzers)
}

func TestSelectRoster(t *testing.T) {
	t.Parallel()

	t.Run("empty keeps full roster", func(t *testing.T) {
		t.Parallel()
		r, err := selectRoster("design", fullRoster(), nil)
		require.NoError(t, err)
		assert.Equal(t, review.StandardAnalyzerNames(), r.Names())
	})

	t.Run("configured order wins", func(t *testing.T) {
		t.Parallel()
		r, err := selectRoster("code", fullRoster(), []string{" API-Design", "security"})
		require.NoError(t, err)
		assert.Equal(t, []string{review.AnalyzerAPIDesign, review.AnalyzerSecurity}, r.Names())
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := selectRoster("code", fullRoster(), []string{"style"})
		require.ErrorIs(t, err, errors.ErrConfigInvalidReview)
		assert.Contains(t, err.Error(), `unknown code analyzer "style"`)
	})
}

func TestConfigMapping(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Pipeline.MaxTotalIterations = 7
	cfg.Review.CodeHighThreshold = 2
	cfg.Review.AnalyzerTimeout = 3 * time.Second
	cfg.Generation.Mode = "LEGACY"
	cfg.Generation.RequestsPerSecond = 1.5

	assert.Equal(t, pipeline.Options{
		DesignMaxIterations: constants.DesignMaxIterations,
		CodeMaxIterations:   constants.CodeMaxIterations,
		TestMaxRetries:      constants.TestMaxRetries,
		MaxTotalIterations:  7,
	}, pipelineOptions(cfg))

	assert.Equal(t, review.EngineConfig{CodeHighThreshold: 2, AnalyzerTimeout: 3 * time.Second}, engineConfig(cfg))

	g := generationConfig(cfg)
	assert.Equal(t, constants.GenerationModeLegacy, g.Mode)
	assert.InDelta(t, 1.5, g.RequestsPerSecond, 0.0001)
	assert.Equal(t, cfg.Generation.PreviewLength, g.PreviewLength)
}

func TestNewOrchestrator_RejectsUnknownAnalyzer(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Review.DesignAnalyzers = []string{"nope"}

	_, err := newOrchestrator(cfg, pipeline.Workers{DesignAnalyzers: fullRoster(), CodeAnalyzers: fullRoster()}, zerolog.Nop())
	require.ErrorIs(t, err, errors.ErrConfigInvalidReview)
}
