package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
)

// newViperInstance creates a Viper instance with the FORGE_ env prefix and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if path, err := GlobalConfigPath(); err == nil && fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read global config file")
		}
	}

	if path := ProjectConfigPath(); fileExists(path) {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Int("pipeline.design_max_iterations", cfg.Pipeline.DesignMaxIterations).
		Int("pipeline.code_max_iterations", cfg.Pipeline.CodeMaxIterations).
		Str("generation.mode", cfg.Generation.Mode).
		Dur("generation.retry_backoff", cfg.Generation.RetryBackoff).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific files, for tests and
// explicit --config use. Either path may be empty to skip that layer.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI overrides. Only
// non-zero override values are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can bind it during Unmarshal.
// Keys must match the mapstructure tags.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("pipeline.design_max_iterations", d.Pipeline.DesignMaxIterations)
	v.SetDefault("pipeline.code_max_iterations", d.Pipeline.CodeMaxIterations)
	v.SetDefault("pipeline.test_max_retries", d.Pipeline.TestMaxRetries)
	v.SetDefault("pipeline.max_total_iterations", d.Pipeline.MaxTotalIterations)

	v.SetDefault("review.code_high_threshold", d.Review.CodeHighThreshold)
	v.SetDefault("review.analyzer_timeout", "0s")
	// No default: an unset roster stays nil, meaning all specialists.
	_ = v.BindEnv("review.design_analyzers")
	_ = v.BindEnv("review.code_analyzers")

	v.SetDefault("generation.mode", d.Generation.Mode)
	v.SetDefault("generation.file_max_attempts", d.Generation.FileMaxAttempts)
	v.SetDefault("generation.min_content_length", d.Generation.MinContentLength)
	v.SetDefault("generation.tokens_per_line", d.Generation.TokensPerLine)
	v.SetDefault("generation.min_tokens", d.Generation.MinTokens)
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	v.SetDefault("generation.concurrency", d.Generation.Concurrency)
	v.SetDefault("generation.requests_per_second", d.Generation.RequestsPerSecond)
	v.SetDefault("generation.retry_backoff", d.Generation.RetryBackoff.String())
	v.SetDefault("generation.preview_length", d.Generation.PreviewLength)

	v.SetDefault("logging.level", d.Logging.Level)
}

func applyOverrides(cfg, overrides *Config) {
	applyPipelineOverrides(&cfg.Pipeline, &overrides.Pipeline)

	if overrides.Review.CodeHighThreshold != 0 {
		cfg.Review.CodeHighThreshold = overrides.Review.CodeHighThreshold
	}
	if overrides.Review.AnalyzerTimeout != 0 {
		cfg.Review.AnalyzerTimeout = overrides.Review.AnalyzerTimeout
	}
	if len(overrides.Review.DesignAnalyzers) > 0 {
		cfg.Review.DesignAnalyzers = overrides.Review.DesignAnalyzers
	}
	if len(overrides.Review.CodeAnalyzers) > 0 {
		cfg.Review.CodeAnalyzers = overrides.Review.CodeAnalyzers
	}

	if overrides.Generation.Mode != "" {
		cfg.Generation.Mode = overrides.Generation.Mode
	}
	if overrides.Generation.Concurrency != 0 {
		cfg.Generation.Concurrency = overrides.Generation.Concurrency
	}
	if overrides.Generation.RequestsPerSecond != 0 {
		cfg.Generation.RequestsPerSecond = overrides.Generation.RequestsPerSecond
	}

	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
}

// applyPipelineOverrides is split out to keep applyOverrides readable.
func applyPipelineOverrides(cfg, overrides *PipelineConfig) {
	if overrides.DesignMaxIterations != 0 {
		cfg.DesignMaxIterations = overrides.DesignMaxIterations
	}
	if overrides.CodeMaxIterations != 0 {
		cfg.CodeMaxIterations = overrides.CodeMaxIterations
	}
	if overrides.TestMaxRetries != 0 {
		cfg.TestMaxRetries = overrides.TestMaxRetries
	}
	if overrides.MaxTotalIterations != 0 {
		cfg.MaxTotalIterations = overrides.MaxTotalIterations
	}
}

// viperDecoderOption converts duration strings and comma-separated env values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
