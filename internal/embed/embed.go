// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed converts text to dense vectors for relevance scoring.
// Backends: an offline feature-hashing embedder (default), and Ollama or
// OpenAI-compatible servers through langchaingo. Any backend can be
// wrapped in a SQLite cache.
package embed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/docrank/pkg/types"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown embedding backend")

// Embedder converts text to vectors. Implementations must be safe for
// concurrent use and deterministic for a given model.
type Embedder interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the model producing the vectors.
	Model() string
}

// New builds the embedder described by cfg. When cfg.CachePath is set the
// backend is wrapped in a SQLite cache.
func New(cfg types.EmbeddingConfig) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.Backend {
	case "", types.EmbedHash:
		e = NewHash(cfg.Dimensions)
	case types.EmbedOllama:
		e, err = NewOllama(cfg)
	case types.EmbedOpenAI:
		e, err = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CachePath == "" {
		return e, nil
	}
	c, err := NewCache(e, cfg.CachePath)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var (
	sharedOnce sync.Once
	shared     Embedder
	sharedErr  error
)

// Shared returns the process-wide embedder, building it from cfg on the
// first call. Later calls return the same embedder (or the same error)
// whatever cfg they pass.
func Shared(cfg types.EmbeddingConfig) (Embedder, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(cfg)
		if sharedErr == nil {
			log.Debug().Str("model", shared.Model()).Msg("embedding model ready")
		}
	})
	return shared, sharedErr
}
