// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"

	"github.com/pdiddy/docrank/internal/embed"
)

// Weights of the content-level relevance. They sum to 1.
const (
	SemanticWeight   = 0.7
	ConfidenceWeight = 0.2
	LengthWeight     = 0.1
)

// Weights of the final relevance. They sum to 1. BreadthWeight applies to
// the doc bonus as a fraction of FirstDocBonus, so a document's first
// section gains the full 0.1 rather than 0.1*FirstDocBonus (0.02).
const (
	ContentWeight = 0.7
	HeadingWeight = 0.2
	BreadthWeight = 0.1
)

// Sub-score constants.
const (
	FirstDocBonus    = 0.2
	GoodHeading      = 1.0
	WeakHeading      = 0.5
	LengthSaturation = 1000.0 // runes
	PositionBoost    = 0.1
	KeywordBonus     = 0.15
	minHeadingWords  = 3
	minKeywordRunes  = 4
)

// Components are the named sub-scores of one section.
type Components struct {
	Semantic       float64 `json:"semantic" yaml:"semantic"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
	Length         float64 `json:"length" yaml:"length"`
	HeadingQuality float64 `json:"heading_quality" yaml:"heading_quality"`
	DocBonus       float64 `json:"doc_bonus" yaml:"doc_bonus"`
}

// Content returns the content-level relevance of c.
func (c Components) Content() float64 {
	return ContentRelevance(c.Semantic, c.Confidence, c.Length)
}

// Relevance returns the final relevance score of c.
func (c Components) Relevance() float64 {
	return Relevance(c.Content(), c.HeadingQuality, c.DocBonus)
}

// SemanticScore is the cosine similarity of the task and content vectors.
func SemanticScore(task, content []float32) float64 {
	return embed.CosineSimilarity(task, content)
}

// HeadingQuality is GoodHeading for titles of more than two words, else
// WeakHeading.
func HeadingQuality(title string) float64 {
	if len(strings.Fields(title)) >= minHeadingWords {
		return GoodHeading
	}
	return WeakHeading
}

// LengthScore grows linearly with content length and saturates at 1.
func LengthScore(content string) float64 {
	return min(float64(len([]rune(content)))/LengthSaturation, 1.0)
}

// DocBonus returns FirstDocBonus the first time doc is seen and marks it
// covered; later calls for the same doc return 0.
func DocBonus(covered map[string]bool, doc string) float64 {
	if covered[doc] {
		return 0
	}
	covered[doc] = true
	return FirstDocBonus
}

// ContentRelevance weights semantic similarity, structural confidence and
// length into one content score.
func ContentRelevance(semantic, confidence, length float64) float64 {
	return SemanticWeight*semantic + ConfidenceWeight*confidence + LengthWeight*length
}

// Relevance weights content relevance, heading quality and document
// breadth into the final score. The breadth term is the doc bonus as a
// fraction of FirstDocBonus.
func Relevance(content, headingQuality, docBonus float64) float64 {
	return ContentWeight*content + HeadingWeight*headingQuality + BreadthWeight*(docBonus/FirstDocBonus)
}

// Keywords returns the distinct lowercased words of text longer than three
// runes, in first-seen order. Punctuation attached to a word is kept.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(text) {
		w = strings.ToLower(w)
		if len([]rune(w)) < minKeywordRunes || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// SentencePosition returns PositionBoost for the first and last of n sentences.
func SentencePosition(i, n int) float64 {
	if i == 0 || i == n-1 {
		return PositionBoost
	}
	return 0
}

// SentenceKeywords returns KeywordBonus when sentence contains any keyword,
// ignoring case.
func SentenceKeywords(sentence string, keywords []string) float64 {
	lower := strings.ToLower(sentence)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return KeywordBonus
		}
	}
	return 0
}

// SentenceBudget is how many key sentences to keep from n sentences.
func SentenceBudget(n int) int {
	switch {
	case n > 10:
		return 5
	case n > 5:
		return 3
	default:
		return 2
	}
}
