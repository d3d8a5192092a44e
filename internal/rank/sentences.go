// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/rs/zerolog/log"
)

var tokenizer = sync.OnceValue(func() *sentences.DefaultSentenceTokenizer {
	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Error().Err(err).Msg("loading english sentence model")
		return nil
	}
	return t
})

// SplitSentences splits text into trimmed, non-empty sentences with the
// Punkt English model. If the model cannot load, text is split after
// sentence-ending punctuation followed by a space.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var raw []string
	if t := tokenizer(); t != nil {
		for _, s := range t.Tokenize(text) {
			raw = append(raw, s.Text)
		}
	} else {
		raw = splitOnTerminators(text)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitOnTerminators(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' {
				out = append(out, text[start:i+1])
				start = i + 1
			}
		}
	}
	return append(out, text[start:])
}
