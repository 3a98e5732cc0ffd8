// Package generate implements the staged artifact generation protocol for the
// code stage: request a metadata-only file manifest, request each file's
// content independently with bounded retry, then assemble and structurally
// validate the bundle. A legacy single-call mode parses a whole bundle from
// one producer response.
//
// Producers are opaque: they turn a request into raw text. How that text is
// produced (prompts, models, fixtures) is not this package's concern.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/logging, std lib
//   - MUST NOT import: internal/pipeline, internal/review, internal/cli
package generate

import (
	"context"

	"github.com/mrz1836/forge/internal/domain"
)

// Generation phases, as reported on GenerationError.
const (
	PhaseManifest = "manifest"
	PhaseContent  = "content"
	PhaseBundle   = "bundle"
)

// ManifestProducer returns raw text describing the files to generate.
// The text is expected to hold a FileManifest as JSON, optionally fenced.
type ManifestProducer interface {
	ProduceManifest(ctx context.Context, design *domain.DesignSpec, standards string) (string, error)
}

// FileRequest is everything a FileProducer gets for one file attempt.
type FileRequest struct {
	Design    *domain.DesignSpec
	Standards string
	Manifest  *domain.FileManifest
	File      domain.FileMetadata

	// MaxTokens is the output budget for this file.
	MaxTokens int

	// Attempt starts at 1.
	Attempt int
}

// FileProducer returns the raw content of one file. Markdown fences are
// stripped by the generator.
type FileProducer interface {
	ProduceFile(ctx context.Context, req FileRequest) (string, error)
}

// BundleProducer returns raw text holding a whole GeneratedCodeBundle as JSON.
type BundleProducer interface {
	ProduceBundle(ctx context.Context, design *domain.DesignSpec, standards string) (string, error)
}

// ManifestProducerFunc adapts a function to ManifestProducer.
type ManifestProducerFunc func(ctx context.Context, design *domain.DesignSpec, standards string) (string, error)

// ProduceManifest calls f.
func (f ManifestProducerFunc) ProduceManifest(ctx context.Context, design *domain.DesignSpec, standards string) (string, error) {
	return f(ctx, design, standards)
}

// FileProducerFunc adapts a function to FileProducer.
type FileProducerFunc func(ctx context.Context, req FileRequest) (string, error)

// ProduceFile calls f.
func (f FileProducerFunc) ProduceFile(ctx context.Context, req FileRequest) (string, error) {
	return f(ctx, req)
}

// BundleProducerFunc adapts a function to BundleProducer.
type BundleProducerFunc func(ctx context.Context, design *domain.DesignSpec, standards string) (string, error)

// ProduceBundle calls f.
func (f BundleProducerFunc) ProduceBundle(ctx context.Context, design *domain.DesignSpec, standards string) (string, error) {
	return f(ctx, design, standards)
}

// Producers groups the collaborators a Generator may call.
// Staged mode needs Manifest and File; legacy mode needs Bundle.
type Producers struct {
	Manifest ManifestProducer
	File     FileProducer
	Bundle   BundleProducer
}
