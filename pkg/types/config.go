// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the docrank stages: the
// page layout model, sections and their scores, the run input and output
// artifacts, and configuration.
package types

import "time"

// StructureConfig holds the layout heuristics of the structure extractor.
type StructureConfig struct {
	// FontJump is how many points a block's leading font size must exceed
	// the page mean by to count as a size jump (default 2.0).
	FontJump float64 `json:"font_jump" yaml:"font_jump" mapstructure:"font_jump"`

	// IsolationRatio bounds a single-line block's width relative to its
	// bounding box right edge (default 0.7).
	IsolationRatio float64 `json:"isolation_ratio" yaml:"isolation_ratio" mapstructure:"isolation_ratio"`

	// DefaultRightEdge stands in for a block bbox right edge of zero (default 1000).
	DefaultRightEdge float64 `json:"default_right_edge" yaml:"default_right_edge" mapstructure:"default_right_edge"`

	// MinHeadingWords and MaxHeadingWords bound a heading's word count (default 2..12).
	MinHeadingWords int `json:"min_heading_words" yaml:"min_heading_words" mapstructure:"min_heading_words"`
	MaxHeadingWords int `json:"max_heading_words" yaml:"max_heading_words" mapstructure:"max_heading_words"`

	// HeadingThreshold is the score a block must exceed to be a heading (default 0.6).
	HeadingThreshold float64 `json:"heading_threshold" yaml:"heading_threshold" mapstructure:"heading_threshold"`

	// LargeFont is the span size above which a span reads as a title (default 14).
	LargeFont float64 `json:"large_font" yaml:"large_font" mapstructure:"large_font"`

	// MinMeaningful is how many titled sections a tier must produce to be
	// accepted (default 2).
	MinMeaningful int `json:"min_meaningful" yaml:"min_meaningful" mapstructure:"min_meaningful"`

	// MinParagraphChars is the length a paragraph must exceed (default 30).
	MinParagraphChars int `json:"min_paragraph_chars" yaml:"min_paragraph_chars" mapstructure:"min_paragraph_chars"`

	// ChunkSize is the fixed window size of the last fallback tier (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`

	// FilterFloor is how many sections are retained before a repeated
	// document bucket is refused (default 5).
	FilterFloor int `json:"filter_floor" yaml:"filter_floor" mapstructure:"filter_floor"`

	// FilterMax caps the sections kept per document (default 10).
	FilterMax int `json:"filter_max" yaml:"filter_max" mapstructure:"filter_max"`
}

// RankingConfig holds the selection limits of the relevance ranker.
type RankingConfig struct {
	// MaxSections caps the ranked list (default 20).
	MaxSections int `json:"max_sections" yaml:"max_sections" mapstructure:"max_sections"`

	// DiversityFloor is how many sections are accepted before a document
	// already in the list is refused (default 10).
	DiversityFloor int `json:"diversity_floor" yaml:"diversity_floor" mapstructure:"diversity_floor"`

	// MaxSubsections caps how many ranked sections get key sentences (default 15).
	MaxSubsections int `json:"max_subsections" yaml:"max_subsections" mapstructure:"max_subsections"`
}

// EmbeddingBackend identifies the embedding provider.
type EmbeddingBackend string

const (
	EmbedHash   EmbeddingBackend = "hash"
	EmbedOllama EmbeddingBackend = "ollama"
	EmbedOpenAI EmbeddingBackend = "openai"
)

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Backend selects hash, ollama, or openai (default hash).
	Backend EmbeddingBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the remote embedding model (e.g. "nomic-embed-text").
	Model string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`

	// BaseURL is the remote server URL.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey authenticates against OpenAI-compatible endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Dimensions is the vector size of the hash backend (default 384).
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// Timeout bounds each remote request (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on throttled requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// CachePath is the SQLite embedding cache file. Empty disables caching.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty" mapstructure:"cache_path"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	// PDFDir is the directory, relative to the input file, holding the
	// PDFs named by filename (default "PDFs").
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir" mapstructure:"pdf_dir"`

	// Workers bounds concurrent document extraction (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	Structure StructureConfig `json:"structure" yaml:"structure" mapstructure:"structure"`
	Ranking   RankingConfig   `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
}

// DefaultStructureConfig returns the extractor's tuned defaults.
func DefaultStructureConfig() StructureConfig {
	return StructureConfig{
		FontJump:          2.0,
		IsolationRatio:    0.7,
		DefaultRightEdge:  1000,
		MinHeadingWords:   2,
		MaxHeadingWords:   12,
		HeadingThreshold:  0.6,
		LargeFont:         14,
		MinMeaningful:     2,
		MinParagraphChars: 30,
		ChunkSize:         500,
		FilterFloor:       5,
		FilterMax:         10,
	}
}

// DefaultRankingConfig returns the ranker's default limits.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		MaxSections:    20,
		DiversityFloor: 10,
		MaxSubsections: 15,
	}
}

// DefaultConfig returns a PipelineConfig with every default filled in.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		PDFDir:    "PDFs",
		Workers:   4,
		Structure: DefaultStructureConfig(),
		Ranking:   DefaultRankingConfig(),
		Embedding: EmbeddingConfig{
			Backend:    EmbedHash,
			Dimensions: 384,
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
	}
}
