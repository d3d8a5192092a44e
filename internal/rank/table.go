// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"io"
	"strings"
)

// FormatTable writes the shortlist as a human-readable table.
func FormatTable(res Result, w io.Writer) {
	if len(res.Sections) == 0 {
		fmt.Fprintln(w, "No sections ranked.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-28s  %-4s  %-5s  %s\n",
		"Rank", "Section", "Document", "Page", "Conf", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 108))

	docs := make(map[string]bool)
	for i, s := range res.Sections {
		docs[s.Document] = true
		fmt.Fprintf(w, "%-4d  %-50s  %-28s  %-4d  %-5.2f  %.3f\n",
			i+1, truncate(s.Title, 50), truncate(s.Document, 28), s.PageNumber, s.Confidence, s.RelevanceScore)
	}

	fmt.Fprintf(w, "\n%d sections from %d documents", len(res.Sections), len(docs))
	if len(res.Subsections) > 0 {
		fmt.Fprintf(w, " (%d summarized)", len(res.Subsections))
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
