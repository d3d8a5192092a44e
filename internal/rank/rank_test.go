// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docrank/internal/embed"
	"github.com/pdiddy/docrank/pkg/types"
)

// fixedEmbedder returns preset vectors by text and a zero vector otherwise.
type fixedEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (f *fixedEmbedder) Model() string { return "fixed" }

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vecs[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0}
		}
	}
	return out, nil
}

func pipeSplit(s string) []string { return strings.Split(s, "|") }

func scored(doc string, score float64) types.ScoredSection {
	return types.ScoredSection{
		Section:        types.Section{Title: doc + " section", Document: doc, PageNumber: 1},
		RelevanceScore: score,
	}
}

// --- sub-scores ---

func TestRelevanceMaximum(t *testing.T) {
	c := Components{Semantic: 1, Confidence: 1, Length: 1, HeadingQuality: GoodHeading, DocBonus: FirstDocBonus}
	assert.InDelta(t, 1.0, c.Content(), 1e-9)
	assert.InDelta(t, 1.0, c.Relevance(), 1e-9)

	repeat := c
	repeat.DocBonus = 0
	assert.InDelta(t, 0.9, repeat.Relevance(), 1e-9)
}

func TestHeadingQuality(t *testing.T) {
	tests := []struct {
		title string
		want  float64
	}{
		{"Comprehensive Guide to Cities", GoodHeading},
		{"three word title", GoodHeading},
		{"Two words", WeakHeading},
		{"Nice", WeakHeading},
		{"", WeakHeading},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingQuality(tt.title))
		})
	}
}

func TestLengthScore(t *testing.T) {
	assert.Equal(t, 0.0, LengthScore(""))
	assert.InDelta(t, 0.5, LengthScore(strings.Repeat("é", 500)), 1e-9)
	assert.Equal(t, 1.0, LengthScore(strings.Repeat("x", 2000)))
}

func TestDocBonus(t *testing.T) {
	covered := make(map[string]bool)
	assert.Equal(t, FirstDocBonus, DocBonus(covered, "a.pdf"))
	assert.Equal(t, 0.0, DocBonus(covered, "a.pdf"))
	assert.Equal(t, FirstDocBonus, DocBonus(covered, "b.pdf"))
	assert.True(t, covered["a.pdf"])
}

func TestKeywords(t *testing.T) {
	got := Keywords(TaskContext("Travel Planner", "Plan a trip of 4 days."))
	assert.Equal(t, []string{"travel", "planner,", "need", "plan", "trip", "days."}, got)
	assert.Empty(t, Keywords("a to of"))
}

func TestSentenceBonuses(t *testing.T) {
	assert.Equal(t, PositionBoost, SentencePosition(0, 4))
	assert.Equal(t, PositionBoost, SentencePosition(3, 4))
	assert.Equal(t, 0.0, SentencePosition(1, 4))

	kw := []string{"museum"}
	assert.Equal(t, KeywordBonus, SentenceKeywords("The MUSEUM opens at nine.", kw))
	assert.Equal(t, 0.0, SentenceKeywords("The park opens at nine.", kw))
	assert.Equal(t, 0.0, SentenceKeywords("Anything.", nil))
}

func TestSentenceBudget(t *testing.T) {
	tests := []struct{ n, want int }{
		{4, 2}, {5, 2}, {6, 3}, {10, 3}, {11, 5}, {40, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, SentenceBudget(tt.n))
		})
	}
}

// --- selection ---

func TestSelectDiverse(t *testing.T) {
	t.Run("document fifteen times then two others", func(t *testing.T) {
		var ranked []types.ScoredSection
		for i := range 15 {
			ranked = append(ranked, scored("A", 1-float64(i)*0.01))
		}
		ranked = append(ranked, scored("B", 0.5), scored("C", 0.4))

		top := SelectDiverse(ranked, 10, 20)
		require.Len(t, top, 12)
		for _, s := range top[:10] {
			assert.Equal(t, "A", s.Document)
		}
		assert.Equal(t, "B", top[10].Document)
		assert.Equal(t, "C", top[11].Document)
	})

	t.Run("stops at max", func(t *testing.T) {
		var ranked []types.ScoredSection
		for i := range 25 {
			ranked = append(ranked, scored(fmt.Sprintf("doc%02d", i), 1))
		}
		top := SelectDiverse(ranked, 10, 20)
		require.Len(t, top, 20)
		assert.Equal(t, "doc19", top[19].Document)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, SelectDiverse(nil, 10, 20))
	})
}

// --- key sentences ---

func TestKeySentencesShortContentVerbatim(t *testing.T) {
	r := New(&fixedEmbedder{}, types.RankingConfig{})
	r.split = pipeSplit

	content := "first|second|third"
	got, err := r.KeySentences(context.Background(), []float32{1, 0}, content, nil)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestKeySentencesKeepsBestInOrder(t *testing.T) {
	hit := []float32{1, 0}
	emb := &fixedEmbedder{vecs: map[string][]float32{
		"s9": hit, "s3": hit, "s7": hit, "s1": hit, "s5": hit,
	}}
	r := New(emb, types.RankingConfig{})
	r.split = pipeSplit

	var parts []string
	for i := range 12 {
		parts = append(parts, fmt.Sprintf("s%d", i))
	}
	got, err := r.KeySentences(context.Background(), hit, strings.Join(parts, "|"), nil)
	require.NoError(t, err)
	assert.Equal(t, "s1 s3 s5 s7 s9", got)
}

func TestKeySentencesKeywordBonus(t *testing.T) {
	r := New(&fixedEmbedder{}, types.RankingConfig{})
	r.split = pipeSplit

	content := "opening|trains|the museum wing|closing"
	got, err := r.KeySentences(context.Background(), []float32{1, 0}, content, []string{"museum"})
	require.NoError(t, err)
	assert.Equal(t, "opening the museum wing", got)
}

func TestKeySentencesEmbedError(t *testing.T) {
	r := New(&fixedEmbedder{err: errors.New("offline")}, types.RankingConfig{})
	r.split = pipeSplit

	_, err := r.KeySentences(context.Background(), nil, "a|b|c|d", nil)
	assert.ErrorContains(t, err, "offline")
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("The museum opens at nine. Tickets cost ten euros! Is parking free?")
	assert.Equal(t, []string{"The museum opens at nine.", "Tickets cost ten euros!", "Is parking free?"}, got)
	assert.Empty(t, SplitSentences(" \n "))
}

func TestSplitOnTerminators(t *testing.T) {
	got := splitOnTerminators("One. Two!\nThree")
	assert.Equal(t, []string{"One.", " Two!", "\nThree"}, got)
}

// --- ranking ---

func travelSections() []types.Section {
	return []types.Section{
		{Title: "Nightlife and Entertainment Guide", Document: "nice.pdf", PageNumber: 3, Confidence: 0.9,
			Content: "Bars and clubs for groups of college friends looking for nightlife along the coast."},
		{Title: "History", Document: "history.pdf", PageNumber: 1, Confidence: 0.4,
			Content: "The region was ruled by counts and dukes for several centuries."},
		{Title: "Coastal Adventures for Groups", Document: "nice.pdf", PageNumber: 5, Confidence: 0.9,
			Content: "Plan a trip with friends: kayaking, beach hopping and boat tours for groups."},
		{Title: "Cuisine", Document: "food.pdf", PageNumber: 2, Confidence: 0.2,
			Content: "Bouillabaisse and socca are regional specialties."},
	}
}

func TestRank(t *testing.T) {
	r := New(embed.NewHash(128), types.RankingConfig{})
	res, err := r.Rank(context.Background(), "Travel Planner", "Plan a trip for a group of college friends.", travelSections())
	require.NoError(t, err)

	require.Len(t, res.Sections, 4)
	require.Len(t, res.Subsections, 4)
	for i := 1; i < len(res.Sections); i++ {
		assert.GreaterOrEqual(t, res.Sections[i-1].RelevanceScore, res.Sections[i].RelevanceScore)
	}
	for i, sub := range res.Subsections {
		assert.Equal(t, res.Sections[i].Document, sub.Document)
		assert.Equal(t, res.Sections[i].PageNumber, sub.PageNumber)
		assert.Equal(t, res.Sections[i].Content, sub.RefinedText, "short content is kept verbatim")
	}
}

func TestRankIsDeterministic(t *testing.T) {
	r := New(embed.NewHash(128), types.RankingConfig{})
	ctx := context.Background()
	first, err := r.Rank(ctx, "Travel Planner", "Plan a trip.", travelSections())
	require.NoError(t, err)
	second, err := r.Rank(ctx, "Travel Planner", "Plan a trip.", travelSections())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRankLimitsSubsections(t *testing.T) {
	var sections []types.Section
	for i := range 30 {
		sections = append(sections, types.Section{
			Title:      fmt.Sprintf("Section %d", i),
			Document:   fmt.Sprintf("doc%d.pdf", i%3),
			PageNumber: i + 1,
			Content:    "Content about trips.",
		})
	}
	// Equal scores apart from the first-document bonus keep input order,
	// so all three documents are covered within the floor.
	r := New(&fixedEmbedder{}, types.RankingConfig{MaxSections: 20, DiversityFloor: 10, MaxSubsections: 15})
	res, err := r.Rank(context.Background(), "Planner", "plan trips", sections)
	require.NoError(t, err)
	assert.Len(t, res.Sections, 10)
	assert.Len(t, res.Subsections, 10)

	r = New(&fixedEmbedder{}, types.RankingConfig{MaxSections: 20, DiversityFloor: 20, MaxSubsections: 15})
	res, err = r.Rank(context.Background(), "Planner", "plan trips", sections)
	require.NoError(t, err)
	assert.Len(t, res.Sections, 20)
	assert.Len(t, res.Subsections, 15)
}

func TestRankEmpty(t *testing.T) {
	res, err := New(embed.NewHash(8), types.RankingConfig{}).Rank(context.Background(), "p", "t", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.Empty(t, res.Subsections)
}

func TestRankEmbedError(t *testing.T) {
	r := New(&fixedEmbedder{err: errors.New("offline")}, types.RankingConfig{})
	_, err := r.Rank(context.Background(), "p", "t", travelSections())
	assert.ErrorContains(t, err, "embedding task: offline")
}

// --- table ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Result{
		Sections: []types.ScoredSection{
			{Section: types.Section{Title: "Coastal Adventures", Document: "nice.pdf", PageNumber: 5, Confidence: 0.9}, RelevanceScore: 0.812},
			{Section: types.Section{Title: strings.Repeat("Long ", 20), Document: "food.pdf", PageNumber: 2}, RelevanceScore: 0.5},
		},
		Subsections: []types.SubsectionAnalysis{{Document: "nice.pdf"}},
	}, &buf)

	out := buf.String()
	assert.Contains(t, out, "Rank")
	assert.Contains(t, out, "Coastal Adventures")
	assert.Contains(t, out, "0.812")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "2 sections from 2 documents (1 summarized)")

	buf.Reset()
	FormatTable(Result{}, &buf)
	assert.Equal(t, "No sections ranked.\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
