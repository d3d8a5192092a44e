// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores pooled sections against a persona and task, selects
// a bounded document-diverse shortlist, and extracts the key sentences of
// the leading sections.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/docrank/internal/embed"
	"github.com/pdiddy/docrank/pkg/types"
)

// Result is the ranker's output.
type Result struct {
	// Sections is the shortlist in rank order.
	Sections []types.ScoredSection `json:"sections" yaml:"sections"`

	// Subsections holds the key sentences of the leading sections, in
	// the same order.
	Subsections []types.SubsectionAnalysis `json:"subsections" yaml:"subsections"`
}

// Ranker scores and selects sections. It is safe for concurrent use when
// its embedder is.
type Ranker struct {
	embedder embed.Embedder
	cfg      types.RankingConfig
	split    func(text string) []string
}

// New returns a Ranker using embedder for task, section and sentence
// vectors. Zero-valued limits fall back to types.DefaultRankingConfig.
func New(embedder embed.Embedder, cfg types.RankingConfig) *Ranker {
	def := types.DefaultRankingConfig()
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = def.MaxSections
	}
	if cfg.DiversityFloor <= 0 {
		cfg.DiversityFloor = def.DiversityFloor
	}
	if cfg.MaxSubsections <= 0 {
		cfg.MaxSubsections = def.MaxSubsections
	}
	return &Ranker{embedder: embedder, cfg: cfg, split: SplitSentences}
}

// TaskContext phrases the persona and task as one query.
func TaskContext(persona, task string) string {
	return fmt.Sprintf("As a %s, I need to %s", persona, task)
}

// Rank scores every section against the task, sorts by relevance (ties
// keep input order), selects the shortlist, and extracts key sentences for
// the first MaxSubsections entries. Sections must carry their Document.
func (r *Ranker) Rank(ctx context.Context, persona, task string, sections []types.Section) (Result, error) {
	if len(sections) == 0 {
		return Result{}, nil
	}

	query := TaskContext(persona, task)
	taskVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embedding task: %w", err)
	}
	keywords := Keywords(query)

	scored, err := r.score(ctx, taskVec, sections)
	if err != nil {
		return Result{}, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	top := SelectDiverse(scored, r.cfg.DiversityFloor, r.cfg.MaxSections)

	n := min(r.cfg.MaxSubsections, len(top))
	subs := make([]types.SubsectionAnalysis, 0, n)
	for _, s := range top[:n] {
		text, err := r.KeySentences(ctx, taskVec, s.Content, keywords)
		if err != nil {
			return Result{}, fmt.Errorf("summarizing %s page %d: %w", s.Document, s.PageNumber, err)
		}
		subs = append(subs, types.SubsectionAnalysis{
			Document:    s.Document,
			RefinedText: text,
			PageNumber:  s.PageNumber,
		})
	}

	log.Debug().
		Int("pooled", len(sections)).
		Int("selected", len(top)).
		Int("summarized", len(subs)).
		Msg("ranking complete")

	return Result{Sections: top, Subsections: subs}, nil
}

// score computes the relevance of each section in input order. All
// contents are embedded in one batch.
func (r *Ranker) score(ctx context.Context, taskVec []float32, sections []types.Section) ([]types.ScoredSection, error) {
	contents := make([]string, len(sections))
	for i, s := range sections {
		contents[i] = s.Content
	}
	vecs, err := r.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embedding sections: %w", err)
	}
	if len(vecs) != len(sections) {
		return nil, fmt.Errorf("embedding sections: got %d vectors for %d sections", len(vecs), len(sections))
	}

	covered := make(map[string]bool)
	scored := make([]types.ScoredSection, len(sections))
	for i, s := range sections {
		c := Components{
			Semantic:       SemanticScore(taskVec, vecs[i]),
			Confidence:     s.Confidence,
			Length:         LengthScore(s.Content),
			HeadingQuality: HeadingQuality(s.Title),
			DocBonus:       DocBonus(covered, s.Document),
		}
		scored[i] = types.ScoredSection{Section: s, RelevanceScore: c.Relevance()}
	}
	return scored, nil
}

// SelectDiverse scans ranked in order and accepts a section when its
// document is not yet in the shortlist or fewer than floor sections have
// been accepted. It stops at max sections.
func SelectDiverse(ranked []types.ScoredSection, floor, max int) []types.ScoredSection {
	seen := make(map[string]bool)
	var top []types.ScoredSection
	for _, s := range ranked {
		if len(top) >= max {
			break
		}
		if !seen[s.Document] || len(top) < floor {
			top = append(top, s)
			seen[s.Document] = true
		}
	}
	return top
}

// KeySentences returns content unchanged when it has three sentences or
// fewer. Otherwise each sentence is scored by similarity to the task plus
// position and keyword bonuses, the best SentenceBudget sentences are
// kept, and they are joined with spaces in their original order.
func (r *Ranker) KeySentences(ctx context.Context, taskVec []float32, content string, keywords []string) (string, error) {
	sentences := r.split(content)
	if len(sentences) <= 3 {
		return content, nil
	}

	vecs, err := r.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return "", fmt.Errorf("embedding sentences: %w", err)
	}
	if len(vecs) != len(sentences) {
		return "", fmt.Errorf("embedding sentences: got %d vectors for %d sentences", len(vecs), len(sentences))
	}

	type candidate struct {
		index int
		score float64
	}
	n := len(sentences)
	cands := make([]candidate, n)
	for i, s := range sentences {
		cands[i] = candidate{
			index: i,
			score: embed.CosineSimilarity(taskVec, vecs[i]) + SentencePosition(i, n) + SentenceKeywords(s, keywords),
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	picks := cands[:SentenceBudget(n)]
	sort.Slice(picks, func(i, j int) bool { return picks[i].index < picks[j].index })

	parts := make([]string, len(picks))
	for i, p := range picks {
		parts[i] = sentences[p.index]
	}
	return strings.Join(parts, " "), nil
}
