// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Cache wraps an Embedder with a SQLite store of computed vectors keyed
// by model and text. It is safe for concurrent use.
type Cache struct {
	db    *sql.DB
	inner Embedder
	now   func() time.Time
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Entries int            `json:"entries" yaml:"entries"`
	Models  map[string]int `json:"models" yaml:"models"`
}

// NewCache opens or creates the cache database at path in front of inner.
func NewCache(inner Embedder, path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	c := &Cache{db: db, inner: inner, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

func (c *Cache) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			key TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			dims INTEGER NOT NULL,
			vector BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_model ON embeddings(model)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_created ON embeddings(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Model returns the wrapped embedder's model.
func (c *Cache) Model() string {
	return c.inner.Model()
}

// Embed returns the cached vector for text, computing it on a miss.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch serves hits from the cache and embeds all misses with one
// call to the wrapped embedder.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.inner.Model()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		keys[i] = cacheKey(model, t)
		vec, err := c.lookup(ctx, keys[i])
		if err != nil {
			return nil, err
		}
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
			continue
		}
		out[i] = vec
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
	}

	if err := c.store(ctx, model, keys, missIdx, vecs); err != nil {
		// Cache writes are best effort.
		log.Warn().Err(err).Msg("storing embeddings in cache")
	}
	log.Debug().Int("hits", len(texts)-len(missTexts)).Int("misses", len(missTexts)).Msg("embedding cache")
	return out, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}
	return decodeVector(blob), nil
}

func (c *Cache) store(ctx context.Context, model string, keys []string, missIdx []int, vecs [][]float32) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO embeddings (key, model, dims, vector, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	created := c.now().Unix()
	for j, i := range missIdx {
		if _, err := stmt.ExecContext(ctx, keys[i], model, len(vecs[j]), encodeVector(vecs[j]), created); err != nil {
			return fmt.Errorf("inserting embedding: %w", err)
		}
	}
	return tx.Commit()
}

// Stats counts cached vectors per model.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT model, COUNT(*) FROM embeddings GROUP BY model ORDER BY model`)
	if err != nil {
		return CacheStats{}, fmt.Errorf("querying cache stats: %w", err)
	}
	defer rows.Close()

	stats := CacheStats{Models: make(map[string]int)}
	for rows.Next() {
		var model string
		var n int
		if err := rows.Scan(&model, &n); err != nil {
			return CacheStats{}, fmt.Errorf("scanning cache stats: %w", err)
		}
		stats.Models[model] = n
		stats.Entries += n
	}
	return stats, rows.Err()
}

// Prune deletes vectors stored before cutoff and returns how many were removed.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM embeddings WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning embedding cache: %w", err)
	}
	return res.RowsAffected()
}

// cacheKey is the hex SHA-256 of model, a NUL byte, and text.
func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
