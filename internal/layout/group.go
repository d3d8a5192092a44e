// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/docrank/pkg/types"
)

// Grouping tolerances, in multiples of the font size.
const (
	baselineTolerance = 0.5
	wordGap           = 0.25
	blockGap          = 1.6
	sizeChange        = 1.0 // points
)

// run is one positioned text fragment as reported by the PDF content
// stream. Y is the baseline in PDF coordinates (growing upward).
type run struct {
	font string
	size float64
	x, y float64
	w    float64
	s    string
}

type line struct {
	runs   []run
	y      float64
	size   float64
	x0, x1 float64
}

// groupBlocks groups runs into lines by baseline and lines into blocks by
// vertical gap and font size change.
func groupBlocks(runs []run) []types.Block {
	lines := groupLines(runs)
	if len(lines) == 0 {
		return nil
	}

	var blocks []types.Block
	current := []line{lines[0]}
	for _, l := range lines[1:] {
		prev := current[len(current)-1]
		gap := prev.y - l.y
		if gap > blockGap*prev.size || math.Abs(l.size-prev.size) > sizeChange {
			blocks = append(blocks, toBlock(current))
			current = nil
		}
		current = append(current, l)
	}
	blocks = append(blocks, toBlock(current))
	return blocks
}

// groupLines orders runs top to bottom and collects runs sharing a
// baseline into lines ordered left to right.
func groupLines(runs []run) []line {
	kept := make([]run, 0, len(runs))
	for _, r := range runs {
		if r.s == "" {
			continue
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].y != kept[j].y {
			return kept[i].y > kept[j].y
		}
		return kept[i].x < kept[j].x
	})

	var lines []line
	for _, r := range kept {
		if n := len(lines); n > 0 {
			l := &lines[n-1]
			tol := baselineTolerance * math.Max(l.size, r.size)
			if math.Abs(l.y-r.y) <= tol {
				l.runs = append(l.runs, r)
				l.size = math.Max(l.size, r.size)
				l.x0 = math.Min(l.x0, r.x)
				l.x1 = math.Max(l.x1, r.x+r.w)
				continue
			}
		}
		lines = append(lines, line{
			runs: []run{r},
			y:    r.y,
			size: r.size,
			x0:   r.x,
			x1:   r.x + r.w,
		})
	}

	for i := range lines {
		rs := lines[i].runs
		sort.SliceStable(rs, func(a, b int) bool { return rs[a].x < rs[b].x })
	}
	return lines
}

func toBlock(lines []line) types.Block {
	b := types.Block{
		BBox: types.BBox{
			X0: math.Inf(1),
			Y0: math.Inf(1),
			X1: math.Inf(-1),
			Y1: math.Inf(-1),
		},
	}
	for _, l := range lines {
		b.Lines = append(b.Lines, toLine(l))
		b.BBox.X0 = math.Min(b.BBox.X0, l.x0)
		b.BBox.X1 = math.Max(b.BBox.X1, l.x1)
		b.BBox.Y0 = math.Min(b.BBox.Y0, l.y)
		b.BBox.Y1 = math.Max(b.BBox.Y1, l.y+l.size)
		b.Width = math.Max(b.Width, l.x1-l.x0)
	}
	return b
}

// toLine merges consecutive runs with the same font and size into spans,
// inserting a space where the horizontal gap reads as a word break.
func toLine(l line) types.Line {
	var out types.Line
	var text strings.Builder
	var cur *run
	var prevEnd float64

	flush := func() {
		if cur == nil {
			return
		}
		out.Spans = append(out.Spans, types.Span{
			Text:  text.String(),
			Font:  cur.font,
			Size:  cur.size,
			Flags: fontFlags(cur.font),
		})
		text.Reset()
	}

	for i := range l.runs {
		r := l.runs[i]
		if cur == nil || r.font != cur.font || math.Abs(r.size-cur.size) > 0.1 {
			gap := cur != nil && r.x-prevEnd > wordGap*r.size
			flush()
			cur = &l.runs[i]
			if gap && !strings.HasPrefix(r.s, " ") && !endsWithSpace(out) {
				text.WriteByte(' ')
			}
		} else if r.x-prevEnd > wordGap*r.size && !strings.HasPrefix(r.s, " ") && !strings.HasSuffix(text.String(), " ") {
			text.WriteByte(' ')
		}
		text.WriteString(r.s)
		prevEnd = r.x + r.w
	}
	flush()
	return out
}

func endsWithSpace(l types.Line) bool {
	if len(l.Spans) == 0 {
		return true
	}
	return strings.HasSuffix(l.Spans[len(l.Spans)-1].Text, " ")
}

var (
	boldMarkers   = []string{"bold", "black", "heavy", "semibold", "demi"}
	italicMarkers = []string{"italic", "oblique"}
)

// fontFlags derives style flags from a font name such as
// "ABCDEF+Helvetica-BoldOblique".
func fontFlags(font string) types.SpanFlags {
	name := strings.ToLower(font)
	var flags types.SpanFlags
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			flags |= types.FlagBold
			break
		}
	}
	for _, m := range italicMarkers {
		if strings.Contains(name, m) {
			flags |= types.FlagItalic
			break
		}
	}
	if strings.Contains(name, "courier") || strings.Contains(name, "mono") {
		flags |= types.FlagMonospace
	}
	return flags
}
