// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package structure infers titled sections from page layout. Headings are
// detected by weighted layout rules; when too few meaningful titles come
// out, extraction escalates through re-titling, paragraph splitting and
// fixed-size chunking, each tier carrying a lower confidence.
package structure

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/docrank/pkg/types"
)

// Fixed confidence per extraction tier.
const (
	HeadingConfidence   = 0.9
	UntitledConfidence  = 0.5
	ParagraphConfidence = 0.4
	ChunkConfidence     = 0.2
)

// draft is a section under construction. lines holds the content's
// original line structure for title heuristics.
type draft struct {
	types.Section
	lines []string
}

// tier is one step of the extraction fallback chain. run may build on the
// previous tier's output; accept decides whether the chain stops.
type tier struct {
	name   string
	run    func(pages []types.Page, prev []draft) []draft
	accept func(sections []draft) bool
}

// Extractor turns page layout into sections. It is document-agnostic:
// the caller tags sections with their document.
type Extractor struct {
	cfg   types.StructureConfig
	tiers []tier
}

// New returns an Extractor using cfg. Every zero or negative field falls
// back to its value in types.DefaultStructureConfig.
func New(cfg types.StructureConfig) *Extractor {
	e := &Extractor{cfg: withDefaults(cfg)}
	e.tiers = []tier{
		{name: "headings", run: e.headingTier, accept: e.enoughMeaningful},
		{name: "retitle", run: e.retitleTier, accept: e.enoughMeaningful},
		{name: "paragraphs", run: e.paragraphTier, accept: nonEmpty},
		{name: "chunks", run: e.chunkTier, accept: func([]draft) bool { return true }},
	}
	return e
}

func withDefaults(cfg types.StructureConfig) types.StructureConfig {
	def := types.DefaultStructureConfig()
	orFloat := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	orInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	orFloat(&cfg.FontJump, def.FontJump)
	orFloat(&cfg.IsolationRatio, def.IsolationRatio)
	orFloat(&cfg.DefaultRightEdge, def.DefaultRightEdge)
	orFloat(&cfg.HeadingThreshold, def.HeadingThreshold)
	orFloat(&cfg.LargeFont, def.LargeFont)
	orInt(&cfg.MinHeadingWords, def.MinHeadingWords)
	orInt(&cfg.MaxHeadingWords, def.MaxHeadingWords)
	orInt(&cfg.MinMeaningful, def.MinMeaningful)
	orInt(&cfg.MinParagraphChars, def.MinParagraphChars)
	orInt(&cfg.ChunkSize, def.ChunkSize)
	orInt(&cfg.FilterFloor, def.FilterFloor)
	orInt(&cfg.FilterMax, def.FilterMax)
	return cfg
}

// Extract returns the document's sections, highest confidence first,
// after the confidence and diversity filter.
func (e *Extractor) Extract(pages []types.Page) []types.Section {
	var drafts []draft
	for _, t := range e.tiers {
		drafts = t.run(pages, drafts)
		if t.accept(drafts) {
			log.Debug().Str("tier", t.name).Int("sections", len(drafts)).Msg("structure tier accepted")
			break
		}
		log.Debug().Str("tier", t.name).Int("sections", len(drafts)).Msg("structure tier rejected")
	}

	sections := make([]types.Section, 0, len(drafts))
	for i, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			d.Title = fmt.Sprintf("Section %d", i+1)
		}
		sections = append(sections, d.Section)
	}
	return Filter(sections, e.cfg.FilterFloor, e.cfg.FilterMax)
}

func (e *Extractor) enoughMeaningful(sections []draft) bool {
	n := 0
	for _, s := range sections {
		if isMeaningful(s.Title) {
			n++
		}
	}
	return n >= e.cfg.MinMeaningful
}

func nonEmpty(sections []draft) bool {
	return len(sections) > 0
}

func pageNumber(p types.Page, index int) int {
	if p.Number >= 1 {
		return p.Number
	}
	return index + 1
}

// headingTier emits one section per heading block. Content runs from the
// block after the heading up to the next heading or the end of the page.
func (e *Extractor) headingTier(pages []types.Page, _ []draft) []draft {
	var out []draft
	for pi, page := range pages {
		mean := PageMeanSize(page.Blocks)
		heading := make([]bool, len(page.Blocks))
		for i, b := range page.Blocks {
			heading[i] = IsHeading(Features(b, mean, e.cfg), e.cfg)
		}

		for i, block := range page.Blocks {
			if !heading[i] {
				continue
			}

			var texts, lines []string
			for j := i + 1; j < len(page.Blocks) && !heading[j]; j++ {
				for _, l := range page.Blocks[j].Lines {
					for _, s := range l.Spans {
						texts = append(texts, s.Text)
					}
					lines = append(lines, l.Text())
				}
			}

			d := draft{
				Section: types.Section{
					Title:      spanText(block),
					PageNumber: pageNumber(page, pi),
					Content:    normalizeSpace(strings.Join(texts, " ")),
					Confidence: UntitledConfidence,
				},
				lines: nonEmptyLines(strings.Join(lines, "\n")),
			}
			if d.Title != "" {
				d.Confidence = HeadingConfidence
			}
			d.Title = e.refineTitle(d, block, page)
			out = append(out, d)
		}
	}
	return out
}

// retitleTier gives placeholder or untitled sections a title taken from
// their content with looser casing tests.
func (e *Extractor) retitleTier(_ []types.Page, prev []draft) []draft {
	out := make([]draft, len(prev))
	for i, d := range prev {
		if !isMeaningful(d.Title) {
			if t := retitle(d); t != "" {
				d.Title = t
			}
		}
		out[i] = d
	}
	return out
}

// paragraphTier splits each page's text on blank lines and keeps
// paragraphs longer than MinParagraphChars.
func (e *Extractor) paragraphTier(pages []types.Page, _ []draft) []draft {
	var out []draft
	for pi, page := range pages {
		var paras []string
		for _, p := range strings.Split(page.PlainText(), "\n\n") {
			p = strings.TrimSpace(p)
			if len([]rune(p)) > e.cfg.MinParagraphChars {
				paras = append(paras, p)
			}
		}
		for i, para := range paras {
			lines := nonEmptyLines(para)
			out = append(out, draft{
				Section: types.Section{
					Title:      paragraphTitle(para, lines, i+1),
					PageNumber: pageNumber(page, pi),
					Content:    para,
					Confidence: ParagraphConfidence,
				},
				lines: lines,
			})
		}
	}
	return out
}

// chunkTier cuts each page's text into fixed windows of ChunkSize runes.
// Blank windows are dropped.
func (e *Extractor) chunkTier(pages []types.Page, _ []draft) []draft {
	var out []draft
	size := e.cfg.ChunkSize
	for pi, page := range pages {
		text := []rune(page.PlainText())
		for i := 0; i < len(text); i += size {
			end := min(i+size, len(text))
			chunk := string(text[i:end])
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			out = append(out, draft{
				Section: types.Section{
					Title:      fmt.Sprintf("Chunk %d", i/size+1),
					PageNumber: pageNumber(page, pi),
					Content:    chunk,
					Confidence: ChunkConfidence,
				},
				lines: nonEmptyLines(chunk),
			})
		}
	}
	return out
}

// spanText joins a block's span texts with single spaces.
func spanText(b types.Block) string {
	parts := make([]string, 0, len(b.Lines))
	for _, s := range b.Spans() {
		parts = append(parts, s.Text)
	}
	return normalizeSpace(strings.Join(parts, " "))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
