// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/docrank/internal/httputil"
	"github.com/pdiddy/docrank/pkg/types"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"
)

// Remote adapts a langchaingo embedder to the Embedder interface.
type Remote struct {
	embedder embeddings.Embedder
	model    string
}

// NewRemote wraps a langchaingo embedder reporting model as its model.
func NewRemote(e embeddings.Embedder, model string) *Remote {
	return &Remote{embedder: e, model: model}
}

// Model returns the remote model name.
func (r *Remote) Model() string {
	return r.model
}

// Embed embeds a single text as a query.
func (r *Remote) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding with %s: %w", r.model, err)
	}
	return vec, nil
}

// EmbedBatch embeds texts as documents in one call.
func (r *Remote) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := r.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts with %s: %w", len(texts), r.model, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding with %s: got %d vectors for %d texts", r.model, len(vecs), len(texts))
	}
	return vecs, nil
}

// NewOllama returns an embedder backed by an Ollama server.
func NewOllama(cfg types.EmbeddingConfig) (*Remote, error) {
	url := cfg.BaseURL
	if url == "" {
		url = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	llm, err := ollama.New(
		ollama.WithServerURL(url),
		ollama.WithModel(model),
		ollama.WithHTTPClient(httputil.NewClient(cfg.Timeout, cfg.MaxRetries)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating ollama embedder: %w", err)
	}
	return NewRemote(e, "ollama/"+model), nil
}

// NewOpenAI returns an embedder backed by an OpenAI-compatible endpoint.
func NewOpenAI(cfg types.EmbeddingConfig) (*Remote, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
		openai.WithHTTPClient(httputil.NewClient(cfg.Timeout, cfg.MaxRetries)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating openai embedder: %w", err)
	}
	return NewRemote(e, "openai/"+model), nil
}
