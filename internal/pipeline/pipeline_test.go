// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docrank/internal/embed"
	"github.com/pdiddy/docrank/internal/layout"
	"github.com/pdiddy/docrank/internal/structure"
	"github.com/pdiddy/docrank/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// textPages returns one page of plain text with two paragraphs mentioning topic.
func textPages(topic string) []types.Page {
	return []types.Page{{
		Number: 1,
		RawText: "An overview of " + topic + " for groups of friends travelling together.\n\n" +
			"Practical advice on " + topic + " including costs, bookings and timing.",
	}}
}

// fakeReader serves pages by file base name and fails for names starting with "bad".
func fakeReader(calls *atomic.Int32) layout.Reader {
	return layout.ReaderFunc(func(path string) ([]types.Page, error) {
		calls.Add(1)
		name := filepath.Base(path)
		if strings.HasPrefix(name, "bad") {
			return nil, errors.New("malformed xref table")
		}
		return textPages(strings.TrimSuffix(name, ".pdf")), nil
	})
}

func testDeps(calls *atomic.Int32) Deps {
	return Deps{
		Reader:    fakeReader(calls),
		Extractor: structure.New(types.DefaultStructureConfig()),
		Embedder:  embed.NewHash(64),
	}
}

// --- input ---

func TestLoadInput(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		p := filepath.Join(dir, "input.json")
		writeFile(t, p, `{
			"challenge_info": {"challenge_id": "round_1b_002"},
			"documents": [{"filename": "nice.pdf", "title": "Nice"}],
			"persona": {"role": "Travel Planner"},
			"job_to_be_done": {"task": "Plan a trip of 4 days."}
		}`)
		in, err := LoadInput(p)
		require.NoError(t, err)
		assert.Equal(t, "round_1b_002", in.ChallengeInfo.ChallengeID)
		assert.Equal(t, "Travel Planner", in.Persona.Role)
		assert.Equal(t, "Plan a trip of 4 days.", in.JobToBeDone.Task)
		require.Len(t, in.Documents, 1)
		assert.Equal(t, "nice.pdf", in.Documents[0].Filename)
	})

	t.Run("malformed", func(t *testing.T) {
		p := filepath.Join(dir, "bad.json")
		writeFile(t, p, `{"documents": [`)
		_, err := LoadInput(p)
		assert.ErrorContains(t, err, "parsing input")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadInput(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no documents", func(t *testing.T) {
		p := filepath.Join(dir, "empty.json")
		writeFile(t, p, `{"documents": [], "persona": {"role": "x"}}`)
		_, err := LoadInput(p)
		assert.ErrorIs(t, err, ErrNoDocuments)
	})
}

func TestResolve(t *testing.T) {
	in := types.Input{Documents: []types.DocumentRef{
		{Filename: "a.pdf"},
		{Path: "other/b.pdf", Filename: "ignored.pdf"},
		{Title: "no file"},
		{Path: "/abs/c.pdf"},
	}}
	var buf bytes.Buffer
	docs, skipped := Resolve(in, "/base", "PDFs", &buf)

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []Document{
		{Name: "a.pdf", Path: "/base/PDFs/a.pdf"},
		{Name: "b.pdf", Path: "/base/other/b.pdf"},
		{Name: "c.pdf", Path: "/abs/c.pdf"},
	}, docs)
	assert.Contains(t, buf.String(), "skipped document 3")
}

func TestDocumentName(t *testing.T) {
	assert.Equal(t, "b.pdf", DocumentName(types.DocumentRef{Path: "dir/b.pdf", Filename: "a.pdf"}))
	assert.Equal(t, "a.pdf", DocumentName(types.DocumentRef{Filename: "a.pdf"}))
}

func TestBatchSummary(t *testing.T) {
	s := BatchSummary{Processed: 2, Skipped: 1, Failed: 1}
	assert.Equal(t, 4, s.Total())
	assert.True(t, s.HasFailures())
	assert.False(t, BatchSummary{Processed: 3}.HasFailures())
}

// --- run ---

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"museums.pdf", "beaches.pdf", "bad.pdf"} {
		writeFile(t, filepath.Join(dir, "PDFs", name), "%PDF-1.4")
	}
	in := types.Input{
		Documents: []types.DocumentRef{
			{Filename: "museums.pdf"},
			{Filename: "missing.pdf"},
			{Filename: "bad.pdf"},
			{Title: "unnamed"},
			{Filename: "beaches.pdf"},
		},
		Persona:     types.Persona{Role: "Travel Planner"},
		JobToBeDone: types.JobToBeDone{Task: "Plan a beach holiday"},
	}

	var calls atomic.Int32
	var buf bytes.Buffer
	report, err := Run(context.Background(), types.DefaultConfig(), testDeps(&calls), in, dir, &buf)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Processed: 2, Skipped: 2, Failed: 1}, report.Summary)
	assert.Equal(t, []string{"museums.pdf", "beaches.pdf"}, report.Documents)
	assert.Equal(t, int32(3), calls.Load(), "missing files are never read")
	assert.Equal(t, 4, report.Pooled)

	require.NotEmpty(t, report.Ranked.Sections)
	docs := map[string]bool{}
	for _, s := range report.Ranked.Sections {
		docs[s.Document] = true
	}
	assert.Equal(t, map[string]bool{"museums.pdf": true, "beaches.pdf": true}, docs)
	assert.Len(t, report.Ranked.Subsections, len(report.Ranked.Sections))

	out := buf.String()
	assert.Contains(t, out, "failed  bad.pdf: reading layout: malformed xref table")
	assert.Contains(t, out, "skipped missing.pdf")
	assert.Contains(t, out, "extracted museums.pdf (2 sections)")
}

func TestRunAllDocumentsFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "PDFs", "bad.pdf"), "x")
	in := types.Input{Documents: []types.DocumentRef{{Filename: "bad.pdf"}}}

	var calls atomic.Int32
	report, err := Run(context.Background(), types.DefaultConfig(), testDeps(&calls), in, dir, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, report.Summary.HasFailures())
	assert.Equal(t, []string{}, report.Documents)
	assert.Empty(t, report.Ranked.Sections)
	assert.Empty(t, report.Ranked.Subsections)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Run(ctx, types.DefaultConfig(), testDeps(&calls), types.Input{}, t.TempDir(), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractAllStopsDispatchOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeFile(t, path, "x")
	var docs []Document
	for i := range 50 {
		docs = append(docs, Document{Name: fmt.Sprintf("d%02d.pdf", i), Path: path})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	var once sync.Once
	deps := Deps{
		Reader: layout.ReaderFunc(func(string) ([]types.Page, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return nil, ctx.Err()
		}),
		Extractor: structure.New(types.DefaultStructureConfig()),
	}

	done := make(chan []outcome)
	go func() { done <- extractAll(ctx, deps, docs, 1, &bytes.Buffer{}) }()

	<-started
	cancel()

	select {
	case outcomes := <-done:
		pending := 0
		for _, o := range outcomes {
			if o.status == statusPending {
				pending++
			}
		}
		assert.Positive(t, pending, "documents after the cancel are never dispatched")
	case <-time.After(5 * time.Second):
		t.Fatal("extractAll did not return after cancel")
	}
}

func TestExtractAllKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var docs []Document
	for _, name := range []string{"d1.pdf", "d2.pdf", "d3.pdf", "d4.pdf", "d5.pdf", "d6.pdf"} {
		p := filepath.Join(dir, name)
		writeFile(t, p, "x")
		docs = append(docs, Document{Name: name, Path: p})
	}

	var calls atomic.Int32
	outcomes := extractAll(context.Background(), testDeps(&calls), docs, 3, &bytes.Buffer{})
	require.Len(t, outcomes, len(docs))
	for i, o := range outcomes {
		assert.Equal(t, statusProcessed, o.status)
		require.NotEmpty(t, o.sections)
		for _, s := range o.sections {
			assert.Equal(t, docs[i].Name, s.Document)
		}
	}
}

func TestExtractDocument(t *testing.T) {
	var calls atomic.Int32
	sections, err := ExtractDocument(testDeps(&calls), Document{Name: "nice.pdf", Path: "/x/nice.pdf"})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	for _, s := range sections {
		assert.Equal(t, "nice.pdf", s.Document)
		assert.Equal(t, 1, s.PageNumber)
		assert.Equal(t, structure.ParagraphConfidence, s.Confidence)
	}

	_, err = ExtractDocument(testDeps(&calls), Document{Name: "bad.pdf", Path: "/x/bad.pdf"})
	assert.ErrorContains(t, err, "reading layout")
}
