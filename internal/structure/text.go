// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structure

import (
	"regexp"
	"strings"
	"unicode"
)

// placeholderPrefix marks positional titles that carry no meaning.
const placeholderPrefix = "paragraph"

var (
	numberingPrefix = regexp.MustCompile(`^[0-9]+[.\-)]\s*`)
	trailingPunct   = regexp.MustCompile(`[:\-\s]+$`)
)

// isPlaceholder reports whether title is a generic positional title.
func isPlaceholder(title string) bool {
	return strings.HasPrefix(strings.ToLower(title), placeholderPrefix)
}

// isMeaningful reports whether title is non-empty and not a placeholder.
func isMeaningful(title string) bool {
	return title != "" && !isPlaceholder(title)
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

func inRange(n, lo, hi int) bool {
	return n >= lo && n <= hi
}

// isUpper reports whether s has at least one cased rune and no lowercase runes.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// isTitle reports whether every word of s starts with an uppercase rune
// followed only by lowercase runes. Uncased runes separate words.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

// startsUpper reports whether the first rune of s is uppercase.
func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// looksLikeHeading applies the loose casing tests used when re-titling:
// all caps, title case, an all-caps word among the first three, a
// trailing colon, or every word capitalized.
func looksLikeHeading(line string) bool {
	if isUpper(line) || isTitle(line) || strings.HasSuffix(line, ":") {
		return true
	}
	words := strings.Fields(line)
	for i, w := range words {
		if i == 3 {
			break
		}
		if isUpper(w) {
			return true
		}
	}
	for _, w := range words {
		if !startsUpper(w) {
			return false
		}
	}
	return true
}

// truncate returns the first max runes of s.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// ellipsize truncates s to max runes and marks the cut with "...".
func ellipsize(s string, max int) string {
	if len([]rune(s)) > max {
		return truncate(s, max) + "..."
	}
	return s
}

// cleanTitle strips a leading numbering prefix such as "3." or "2)" and
// trailing colons, dashes and whitespace.
func cleanTitle(title string) string {
	if title == "" {
		return ""
	}
	title = numberingPrefix.ReplaceAllString(title, "")
	title = trailingPunct.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// nonEmptyLines splits s on newlines and returns the trimmed non-empty lines.
func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// firstSentence returns the trimmed text before the first period.
func firstSentence(s string) string {
	before, _, _ := strings.Cut(s, ".")
	return strings.TrimSpace(before)
}
