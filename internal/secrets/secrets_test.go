// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docrank/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "  sk-abc123  \n")
				writeFile(t, dir, "ollama-base-url", "http://gpu-box:11434\n")
				return dir
			},
			want: map[string]string{
				"openai-api-key":  "sk-abc123",
				"ollama-base-url": "http://gpu-box:11434",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"openai-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "ollama-base-url", "http://localhost:11434")
				return dir
			},
			want: map[string]string{
				"ollama-base-url": "http://localhost:11434",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "openai-api-key", "sk-123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"openai-api-key": "sk-123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestApplyEmbedding(t *testing.T) {
	s := map[string]string{OpenAIKey: "sk-file", OllamaBaseURL: "http://gpu-box:11434"}

	cfg := types.EmbeddingConfig{Backend: types.EmbedOpenAI}
	ApplyEmbedding(&cfg, s)
	assert.Equal(t, "sk-file", cfg.APIKey)
	assert.Empty(t, cfg.BaseURL)

	cfg = types.EmbeddingConfig{Backend: types.EmbedOpenAI, APIKey: "sk-flag"}
	ApplyEmbedding(&cfg, s)
	assert.Equal(t, "sk-flag", cfg.APIKey, "configured value wins")

	cfg = types.EmbeddingConfig{Backend: types.EmbedOllama}
	ApplyEmbedding(&cfg, s)
	assert.Equal(t, "http://gpu-box:11434", cfg.BaseURL)
	assert.Empty(t, cfg.APIKey)

	cfg = types.EmbeddingConfig{Backend: types.EmbedHash}
	ApplyEmbedding(&cfg, s)
	assert.Equal(t, types.EmbeddingConfig{Backend: types.EmbedHash}, cfg)
}
