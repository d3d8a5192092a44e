// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structure

import (
	"fmt"
	"strings"

	"github.com/pdiddy/docrank/pkg/types"
)

// Word-count bounds for recovered titles.
const (
	minTitleWords    = 1
	maxTitleWords    = 8
	minRetitleWords  = 2
	maxRetitleWords  = 10
	minSentenceWords = 3
	maxSentenceWords = 15
	maxParagraphHead = 12
)

// Truncation limits, in runes.
const (
	lineTitleRunes      = 40
	retitleRunes        = 50
	paragraphTitleRunes = 60
)

// refineTitle replaces a missing, placeholder, or single-word heading
// title with a better candidate. The block's own spans are tried first,
// then the section's content lines. The page's emphasized blocks, the
// first content line and the first sentence are only consulted while the
// title is still empty or a placeholder.
func (e *Extractor) refineTitle(d draft, block types.Block, page types.Page) string {
	title := d.Title
	if isMeaningful(title) && wordCount(title) >= 2 {
		return cleanTitle(title)
	}

	if c := e.headingFromBlock(block); c != "" {
		return cleanTitle(c)
	}

	for _, l := range d.lines {
		if (isUpper(l) || isTitle(l)) && inRange(wordCount(l), minTitleWords, maxTitleWords) && !isPlaceholder(l) {
			title = l
			break
		}
	}

	if !isMeaningful(title) {
		for _, b := range page.Blocks {
			if !emphasized(b) {
				continue
			}
			t := strings.TrimSpace(b.Text())
			if t != "" && inRange(wordCount(t), minTitleWords, maxTitleWords) && !isPlaceholder(t) {
				title = t
				break
			}
		}
	}

	if !isMeaningful(title) && len(d.lines) > 0 {
		title = truncate(d.lines[0], lineTitleRunes)
	}

	if !isMeaningful(title) {
		before, _, _ := strings.Cut(d.Content, ". ")
		if s := strings.TrimSpace(truncate(before, lineTitleRunes)); s != "" {
			title = s
		}
	}

	return cleanTitle(title)
}

// headingFromBlock re-reads a heading from the block's spans: the whole
// block when it is short and all caps or title case, else the first
// emphasized or large span of acceptable length.
func (e *Extractor) headingFromBlock(b types.Block) string {
	if len(b.Lines) == 0 {
		return ""
	}
	text := strings.TrimSpace(b.Text())
	if text == "" {
		return ""
	}
	if (isUpper(text) || isTitle(text)) && inRange(wordCount(text), minTitleWords, maxTitleWords) {
		return text
	}
	for _, s := range b.Spans() {
		if s.Flags.Emphasized() || s.Size > e.cfg.LargeFont {
			if inRange(wordCount(s.Text), minTitleWords, maxTitleWords) {
				return strings.TrimSpace(s.Text)
			}
		}
	}
	return ""
}

func emphasized(b types.Block) bool {
	for _, s := range b.Spans() {
		if s.Flags.Emphasized() {
			return true
		}
	}
	return false
}

// retitle derives a title from a section's first five content lines,
// else from its first sentence, else from its truncated first line.
func retitle(d draft) string {
	for i, l := range d.lines {
		if i == 5 {
			break
		}
		if inRange(wordCount(l), minRetitleWords, maxRetitleWords) && looksLikeHeading(l) {
			return strings.TrimSpace(strings.TrimRight(l, ":"))
		}
	}
	if len(d.lines) == 0 {
		return ""
	}
	if s := firstSentence(d.Content); inRange(wordCount(s), minSentenceWords, maxSentenceWords) {
		return s
	}
	return ellipsize(d.lines[0], retitleRunes)
}

// paragraphTitle titles the n-th paragraph of a page. It defaults to
// "Paragraph n".
func paragraphTitle(para string, lines []string, n int) string {
	title := fmt.Sprintf("Paragraph %d", n)
	if len(lines) == 0 {
		return title
	}
	for i, l := range lines {
		if i == 3 {
			break
		}
		if inRange(wordCount(l), minRetitleWords, maxParagraphHead) && looksLikeHeading(l) {
			title = strings.TrimSpace(strings.TrimRight(l, ":"))
			break
		}
	}
	if strings.HasPrefix(title, "Paragraph") {
		if s := firstSentence(para); inRange(wordCount(s), minSentenceWords, maxSentenceWords) {
			title = s
		} else if lines[0] != "" {
			title = ellipsize(lines[0], paragraphTitleRunes)
		}
	}
	return title
}
