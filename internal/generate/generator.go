package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/logging"
)

// timeSleep returns a channel that fires after d. Overridden in tests.
//
//nolint:gochecknoglobals // Required for test mocking
var timeSleep = func(d interface{ Nanoseconds() int64 }) <-chan time.Time {
	return time.After(time.Duration(d.Nanoseconds()))
}

// Generator produces GeneratedCodeBundles from a design.
type Generator struct {
	config    Config
	producers Producers
	logger    zerolog.Logger
	clock     clock.Clock
	limiter   *rate.Limiter
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock sets the clock used for bundle timestamps.
func WithClock(c clock.Clock) GeneratorOption {
	return func(g *Generator) {
		g.clock = c
	}
}

// NewGenerator creates a Generator. Zero config fields take their defaults.
func NewGenerator(cfg Config, producers Producers, logger zerolog.Logger, opts ...GeneratorOption) *Generator {
	cfg = cfg.withDefaults()

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Concurrency)
	}

	g := &Generator{
		config:    cfg,
		producers: producers,
		logger:    logger,
		clock:     clock.RealClock{},
		limiter:   limiter,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Generate produces and validates a bundle for design in the configured mode.
// It returns a GenerationError when a producer cannot deliver usable output and
// a StructuralValidationError when the assembled bundle is inconsistent.
// No partial bundle is ever returned.
func (g *Generator) Generate(ctx context.Context, design *domain.DesignSpec, standards string) (*domain.GeneratedCodeBundle, error) {
	if design == nil {
		return nil, forgeerrors.ErrNilArtifact
	}

	var (
		bundle *domain.GeneratedCodeBundle
		err    error
	)
	switch g.config.Mode {
	case constants.GenerationModeLegacy:
		bundle, err = g.generateLegacy(ctx, design, standards)
	case constants.GenerationModeStaged:
		bundle, err = g.generateStaged(ctx, design, standards)
	default:
		return nil, fmt.Errorf("%w: unknown generation mode %q", forgeerrors.ErrConfigInvalidGeneration, g.config.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(bundle, design, g.logger); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (g *Generator) generateLegacy(ctx context.Context, design *domain.DesignSpec, standards string) (*domain.GeneratedCodeBundle, error) {
	if g.producers.Bundle == nil {
		return nil, fmt.Errorf("%w: bundle producer", forgeerrors.ErrWorkerNotConfigured)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := g.producers.Bundle.ProduceBundle(ctx, design, standards)
	if err != nil {
		return nil, &forgeerrors.GenerationError{Phase: PhaseBundle, Attempts: 1, Err: producerFailed(err)}
	}

	bundle, err := ParseBundle(raw, g.config.PreviewLength)
	if err != nil {
		g.logger.Warn().Err(err).Msg("bundle output could not be parsed")
		return nil, err
	}
	if bundle.ProjectID == "" {
		bundle.ProjectID = design.ProjectID
	}
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = g.clock.Now().UTC()
	}

	g.logger.Info().
		Int("total_files", bundle.TotalFiles).
		Int("total_lines_of_code", bundle.TotalLinesOfCode).
		Msg("legacy bundle parsed")
	return bundle, nil
}

func (g *Generator) generateStaged(ctx context.Context, design *domain.DesignSpec, standards string) (*domain.GeneratedCodeBundle, error) {
	if g.producers.Manifest == nil || g.producers.File == nil {
		return nil, fmt.Errorf("%w: manifest and file producers", forgeerrors.ErrWorkerNotConfigured)
	}

	manifest, err := g.requestManifest(ctx, design, standards)
	if err != nil {
		return nil, err
	}
	if manifest.ProjectID == "" {
		manifest.ProjectID = design.ProjectID
	}

	g.logger.Info().
		Int("total_files", manifest.TotalFiles).
		Int("total_estimated_lines", manifest.TotalEstimatedLines).
		Msg("manifest received")

	files, err := g.generateFiles(ctx, design, standards, manifest)
	if err != nil {
		return nil, err
	}

	bundle := Assemble(manifest, files, g.clock.Now())
	g.logger.Info().
		Int("total_files", bundle.TotalFiles).
		Int("total_lines_of_code", bundle.TotalLinesOfCode).
		Msg("bundle assembled")
	return bundle, nil
}

func (g *Generator) requestManifest(ctx context.Context, design *domain.DesignSpec, standards string) (*domain.FileManifest, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	raw, err := g.producers.Manifest.ProduceManifest(ctx, design, standards)
	if err != nil {
		return nil, &forgeerrors.GenerationError{Phase: PhaseManifest, Attempts: 1, Err: producerFailed(err)}
	}
	manifest, err := ParseManifest(raw, g.config.PreviewLength)
	if err != nil {
		g.logger.Warn().Err(err).Msg("manifest output could not be parsed")
		return nil, err
	}
	return manifest, nil
}

// generateFiles requests every manifest entry concurrently. Each goroutine
// writes only its own slot; the first exhausted file fails the whole phase.
func (g *Generator) generateFiles(ctx context.Context, design *domain.DesignSpec, standards string, manifest *domain.FileManifest) ([]domain.GeneratedFile, error) {
	files := make([]domain.GeneratedFile, len(manifest.Files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Concurrency)
	for i, meta := range manifest.Files {
		eg.Go(func() error {
			req := FileRequest{
				Design:    design,
				Standards: standards,
				Manifest:  manifest,
				File:      meta,
				MaxTokens: g.config.TokenBudget(meta.EstimatedLines),
			}
			f, err := g.generateFile(ctx, egCtx, req)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// generateFile runs the bounded retry loop for one file. Producer calls get
// callCtx; waits between attempts honor waitCtx, which is canceled as soon as
// a sibling file fails.
func (g *Generator) generateFile(callCtx, waitCtx context.Context, req FileRequest) (domain.GeneratedFile, error) {
	log := g.logger.With().Str("file_path", req.File.FilePath).Int("max_tokens", req.MaxTokens).Logger()

	var (
		lastErr error
		lastRaw string
	)
	for attempt := 1; attempt <= g.config.FileMaxAttempts; attempt++ {
		if attempt > 1 && g.config.RetryBackoff > 0 {
			select {
			case <-waitCtx.Done():
				return domain.GeneratedFile{}, waitCtx.Err()
			case <-timeSleep(g.config.RetryBackoff * time.Duration(attempt-1)):
			}
		}
		if err := waitCtx.Err(); err != nil {
			return domain.GeneratedFile{}, err
		}
		if err := g.limiter.Wait(waitCtx); err != nil {
			return domain.GeneratedFile{}, err
		}

		req.Attempt = attempt
		raw, err := g.producers.File.ProduceFile(callCtx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return domain.GeneratedFile{}, err
			}
			lastErr, lastRaw = producerFailed(err), ""
			log.Warn().Err(err).Int("attempt", attempt).Msg("file producer failed")
			continue
		}

		content := StripFences(raw)
		if n := len(strings.TrimSpace(content)); n < g.config.MinContentLength {
			lastErr = fmt.Errorf("%w: %d characters, need %d", forgeerrors.ErrEmptyContent, n, g.config.MinContentLength)
			lastRaw = raw
			log.Warn().Int("attempt", attempt).Int("length", n).Msg("file content empty or too short")
			continue
		}

		log.Debug().Int("attempt", attempt).Int("lines", domain.CountNonBlankLines(content)).Msg("file generated")
		return domain.GeneratedFile{
			FilePath:       req.File.FilePath,
			Content:        content,
			FileType:       req.File.FileType,
			SemanticUnitID: req.File.SemanticUnitID,
			ComponentID:    req.File.ComponentID,
		}, nil
	}

	log.Error().Err(lastErr).Int("attempts", g.config.FileMaxAttempts).Msg("file generation exhausted")
	genErr := &forgeerrors.GenerationError{
		Phase:    PhaseContent,
		FilePath: req.File.FilePath,
		Attempts: g.config.FileMaxAttempts,
		Err:      lastErr,
	}
	if lastRaw != "" {
		genErr.Preview = logging.Preview(lastRaw, g.config.PreviewLength)
	}
	return domain.GeneratedFile{}, genErr
}

// producerFailed marks a producer error as output that could not be parsed,
// keeping the producer's cause in the chain.
func producerFailed(err error) error {
	return fmt.Errorf("%w: %w", forgeerrors.ErrGenerationParse, err)
}
