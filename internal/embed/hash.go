// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultDimensions = 384

// Feature weights of the hashing embedder.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.25
)

// HashEmbedder maps text to a fixed-size vector by hashing word unigrams,
// word bigrams and character trigrams into signed buckets. It needs no
// model files or network and is deterministic.
type HashEmbedder struct {
	dims int
}

// NewHash returns a HashEmbedder with dims buckets (default 384).
func NewHash(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Model returns "hash-<dims>".
func (h *HashEmbedder) Model() string {
	return fmt.Sprintf("hash-%d", h.dims)
}

// Embed returns the L2-normalized feature vector of text. Text without
// any letters or digits yields the zero vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

// EmbedBatch embeds each text independently.
func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	acc := make([]float64, h.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(acc, "w:"+tok, unigramWeight)
		if i > 0 {
			h.add(acc, "b:"+tokens[i-1]+" "+tok, bigramWeight)
		}
		r := []rune("#" + tok + "#")
		for j := 0; j+3 <= len(r); j++ {
			h.add(acc, "c:"+string(r[j:j+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, h.dims)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add hashes feature into a bucket; the hash's top bit picks the sign.
func (h *HashEmbedder) add(acc []float64, feature string, weight float64) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()
	idx := sum % uint64(h.dims)
	if sum>>63 == 1 {
		acc[idx] -= weight
	} else {
		acc[idx] += weight
	}
}

// tokenize lowercases text and splits it into runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
