// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one ranking job: it loads the input description,
// extracts sections from every resolvable PDF with a bounded worker pool,
// pools them in input order, and ranks the pool.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/docrank/internal/embed"
	"github.com/pdiddy/docrank/internal/layout"
	"github.com/pdiddy/docrank/internal/rank"
	"github.com/pdiddy/docrank/internal/structure"
	"github.com/pdiddy/docrank/pkg/types"
)

// ErrNoDocuments is returned by LoadInput when the input lists no documents.
var ErrNoDocuments = errors.New("input lists no documents")

// Deps are the collaborators of a run. Tests supply fakes.
type Deps struct {
	Reader    layout.Reader
	Extractor *structure.Extractor
	Embedder  embed.Embedder
}

// Document is an input entry resolved to a file on disk.
type Document struct {
	Name string
	Path string
}

// BatchSummary holds per-document counts of a run.
type BatchSummary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of documents considered.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed to extract.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Report is the outcome of Run. Documents names the documents that were
// extracted, in input order.
type Report struct {
	Ranked    rank.Result
	Documents []string
	Pooled    int
	Summary   BatchSummary
}

// LoadInput reads and decodes the input JSON at path.
func LoadInput(path string) (types.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Input{}, fmt.Errorf("reading input %s: %w", path, err)
	}
	var in types.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return types.Input{}, fmt.Errorf("parsing input %s: %w", path, err)
	}
	if len(in.Documents) == 0 {
		return types.Input{}, fmt.Errorf("%s: %w", path, ErrNoDocuments)
	}
	return in, nil
}

// DocumentName is the name a reference is reported under: the base name of
// its path, else its filename.
func DocumentName(ref types.DocumentRef) string {
	if ref.Path != "" {
		return filepath.Base(ref.Path)
	}
	return filepath.Base(ref.Filename)
}

// Resolve maps input entries to files. An entry's Path wins; a Filename is
// looked up in pdfDir. Relative paths are taken against baseDir. Entries
// with neither are skipped and counted.
func Resolve(in types.Input, baseDir, pdfDir string, w io.Writer) ([]Document, int) {
	var docs []Document
	skipped := 0
	for i, ref := range in.Documents {
		var p string
		switch {
		case ref.Path != "":
			p = ref.Path
		case ref.Filename != "":
			p = filepath.Join(pdfDir, ref.Filename)
		default:
			fmt.Fprintf(w, "skipped document %d: no path or filename\n", i+1)
			log.Warn().Int("index", i).Msg("document entry has no path or filename")
			skipped++
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		docs = append(docs, Document{Name: DocumentName(ref), Path: p})
	}
	return docs, skipped
}

// outcome is the extraction result of one document.
type outcome struct {
	name     string
	sections []types.Section
	status   status
}

type status int

// Documents left unscheduled after cancellation stay pending.
const (
	statusPending status = iota
	statusProcessed
	statusSkipped
	statusFailed
)

// Run extracts and ranks the documents of in. Per-document failures are
// reported on w and counted but never abort the run.
func Run(ctx context.Context, cfg types.PipelineConfig, deps Deps, in types.Input, baseDir string, w io.Writer) (Report, error) {
	pdfDir := cfg.PDFDir
	if pdfDir == "" {
		pdfDir = types.DefaultConfig().PDFDir
	}
	docs, skipped := Resolve(in, baseDir, pdfDir, w)

	outcomes := extractAll(ctx, deps, docs, cfg.Workers, w)

	summary := BatchSummary{Skipped: skipped}
	processed := []string{}
	var pool []types.Section
	for _, o := range outcomes {
		switch o.status {
		case statusProcessed:
			summary.Processed++
			processed = append(processed, o.name)
		case statusSkipped:
			summary.Skipped++
		case statusFailed:
			summary.Failed++
		}
		pool = append(pool, o.sections...)
	}

	if err := ctx.Err(); err != nil {
		return Report{Documents: processed, Summary: summary}, err
	}

	ranker := rank.New(deps.Embedder, cfg.Ranking)
	ranked, err := ranker.Rank(ctx, in.Persona.Role, in.JobToBeDone.Task, pool)
	if err != nil {
		return Report{Documents: processed, Pooled: len(pool), Summary: summary}, fmt.Errorf("ranking sections: %w", err)
	}

	log.Info().
		Int("documents", summary.Total()).
		Int("failed", summary.Failed).
		Int("pooled", len(pool)).
		Int("ranked", len(ranked.Sections)).
		Msg("run complete")

	return Report{Ranked: ranked, Documents: processed, Pooled: len(pool), Summary: summary}, nil
}

// extractAll runs ExtractDocument over docs with at most workers
// goroutines. Results are stored by index so pooling keeps input order.
func extractAll(ctx context.Context, deps Deps, docs []Document, workers int, w io.Writer) []outcome {
	if workers <= 0 {
		workers = types.DefaultConfig().Workers
	}

	var mu sync.Mutex
	progress := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	outcomes := make([]outcome, len(docs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, len(docs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = extractOne(deps, docs[i], progress)
			}
		}()
	}

dispatch:
	for i := range docs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

func extractOne(deps Deps, doc Document, progress func(string, ...any)) outcome {
	if _, err := os.Stat(doc.Path); err != nil {
		progress("skipped %s: %v\n", doc.Name, err)
		log.Warn().Str("document", doc.Name).Err(err).Msg("document not found")
		return outcome{status: statusSkipped}
	}

	progress("extracting %s\n", doc.Name)
	sections, err := ExtractDocument(deps, doc)
	if err != nil {
		progress("failed  %s: %v\n", doc.Name, err)
		log.Error().Str("document", doc.Name).Err(err).Msg("extraction failed")
		return outcome{status: statusFailed}
	}
	progress("extracted %s (%d sections)\n", doc.Name, len(sections))
	return outcome{name: doc.Name, sections: sections, status: statusProcessed}
}

// ExtractDocument reads the layout of doc and returns its sections tagged
// with the document name.
func ExtractDocument(deps Deps, doc Document) ([]types.Section, error) {
	pages, err := deps.Reader.Read(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	sections := deps.Extractor.Extract(pages)
	for i := range sections {
		sections[i].Document = doc.Name
	}
	return sections, nil
}
