// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// SpanFlags is a style bitmask carried by a text span. The bit layout
// follows the common PDF tooling convention (italic = bit 1, bold = bit 4).
type SpanFlags uint32

const (
	FlagSuperscript SpanFlags = 1 << 0
	FlagItalic      SpanFlags = 1 << 1
	FlagSerif       SpanFlags = 1 << 2
	FlagMonospace   SpanFlags = 1 << 3
	FlagBold        SpanFlags = 1 << 4

	// FlagEmphasis is the set of bits treated as emphasized text.
	FlagEmphasis = FlagItalic | FlagBold
)

// Emphasized reports whether any emphasis bit is set.
func (f SpanFlags) Emphasized() bool {
	return f&FlagEmphasis != 0
}

// BBox is an axis-aligned rectangle in page coordinates.
type BBox struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// Span is a run of text sharing one font size and style.
type Span struct {
	Text  string    `json:"text" yaml:"text"`
	Font  string    `json:"font,omitempty" yaml:"font,omitempty"`
	Size  float64   `json:"size" yaml:"size"`
	Flags SpanFlags `json:"flags" yaml:"flags"`
}

// Line is an ordered sequence of spans on one baseline.
type Line struct {
	Spans []Span `json:"spans" yaml:"spans"`
}

// Text concatenates the line's span texts.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is a positioned group of lines, usually a paragraph or a heading.
type Block struct {
	Lines []Line `json:"lines" yaml:"lines"`
	BBox  BBox   `json:"bbox" yaml:"bbox"`

	// Width is the horizontal extent of the block's widest line. Zero when
	// the layout source does not measure it.
	Width float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

// Spans returns every span of the block in reading order.
func (b Block) Spans() []Span {
	var spans []Span
	for _, l := range b.Lines {
		spans = append(spans, l.Spans...)
	}
	return spans
}

// LeadingSize returns the font size of the block's first span, or 0 when
// the block has no spans on its first line.
func (b Block) LeadingSize() float64 {
	if len(b.Lines) == 0 || len(b.Lines[0].Spans) == 0 {
		return 0
	}
	return b.Lines[0].Spans[0].Size
}

// Text joins the block's lines with a single space.
func (b Block) Text() string {
	parts := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, " ")
}

// Page is one page of a document's layout. Number is 1-based.
type Page struct {
	Number int     `json:"number" yaml:"number"`
	Blocks []Block `json:"blocks" yaml:"blocks"`

	// RawText is the page's plain text. When empty, PlainText derives it
	// from the blocks.
	RawText string `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
}

// PlainText returns the page text with lines separated by newlines and
// blocks separated by a blank line.
func (p Page) PlainText() string {
	if p.RawText != "" {
		return p.RawText
	}
	blocks := make([]string, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		lines := make([]string, 0, len(b.Lines))
		for _, l := range b.Lines {
			lines = append(lines, l.Text())
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
