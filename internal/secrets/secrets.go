// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: openai-api-key, ollama-base-url.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/docrank/pkg/types"
)

// Key file names.
const (
	OpenAIKey     = "openai-api-key"
	OllamaBaseURL = "ollama-base-url"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Str("secret", name).Err(err).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ApplyEmbedding fills credentials of cfg from secrets. Values already set
// in cfg win.
func ApplyEmbedding(cfg *types.EmbeddingConfig, secrets map[string]string) {
	switch cfg.Backend {
	case types.EmbedOpenAI:
		if cfg.APIKey == "" {
			cfg.APIKey = secrets[OpenAIKey]
		}
	case types.EmbedOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = secrets[OllamaBaseURL]
		}
	}
}
