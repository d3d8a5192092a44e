// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structure

import (
	"github.com/pdiddy/docrank/pkg/types"
)

// BlockFeatures is the layout signal of one block that heading rules
// score. It is computed once per block against its page.
type BlockFeatures struct {
	LeadingSize float64
	PageMean    float64
	HasLeading  bool
	LineCount   int
	Width       float64
	RightEdge   float64
	Emphasized  bool
	WordCount   int
}

// Features computes the features of block. pageMean is the mean leading
// font size of the page's blocks.
func Features(block types.Block, pageMean float64, cfg types.StructureConfig) BlockFeatures {
	f := BlockFeatures{
		LeadingSize: block.LeadingSize(),
		HasLeading:  len(block.Lines) > 0 && len(block.Lines[0].Spans) > 0,
		PageMean:    pageMean,
		LineCount:   len(block.Lines),
		Width:       block.Width,
		RightEdge:   block.BBox.X1,
		WordCount:   wordCount(block.Text()),
	}
	if block.BBox == (types.BBox{}) {
		f.RightEdge = cfg.DefaultRightEdge
	}
	for _, s := range block.Spans() {
		if s.Flags.Emphasized() {
			f.Emphasized = true
			break
		}
	}
	return f
}

// PageMeanSize returns the mean leading font size over blocks that have a
// leading span, or 0 when there are none.
func PageMeanSize(blocks []types.Block) float64 {
	var sum float64
	var n int
	for _, b := range blocks {
		if len(b.Lines) == 0 || len(b.Lines[0].Spans) == 0 {
			continue
		}
		sum += b.LeadingSize()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HeadingRule is one weighted layout signal.
type HeadingRule struct {
	Name   string
	Weight float64
	Match  func(f BlockFeatures, cfg types.StructureConfig) bool
}

// HeadingRules are the signals combined into a block's heading score.
var HeadingRules = []HeadingRule{
	{
		Name:   "font-jump",
		Weight: 0.3,
		Match: func(f BlockFeatures, cfg types.StructureConfig) bool {
			return f.HasLeading && f.LeadingSize-f.PageMean > cfg.FontJump
		},
	},
	{
		Name:   "isolation",
		Weight: 0.2,
		Match: func(f BlockFeatures, cfg types.StructureConfig) bool {
			return f.LineCount == 1 && f.Width < cfg.IsolationRatio*f.RightEdge
		},
	},
	{
		Name:   "style",
		Weight: 0.2,
		Match: func(f BlockFeatures, _ types.StructureConfig) bool {
			return f.Emphasized
		},
	},
	{
		Name:   "length",
		Weight: 0.3,
		Match: func(f BlockFeatures, cfg types.StructureConfig) bool {
			return inRange(f.WordCount, cfg.MinHeadingWords, cfg.MaxHeadingWords)
		},
	},
}

// Score sums the weights of the rules f matches.
func Score(f BlockFeatures, cfg types.StructureConfig) float64 {
	var score float64
	for _, r := range HeadingRules {
		if r.Match(f, cfg) {
			score += r.Weight
		}
	}
	return score
}

// IsHeading reports whether the block's score exceeds the heading threshold.
func IsHeading(f BlockFeatures, cfg types.StructureConfig) bool {
	return Score(f, cfg) > cfg.HeadingThreshold
}
