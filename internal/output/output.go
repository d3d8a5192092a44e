// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output assembles and writes the result artifact. A write always
// leaves a well-formed file behind: when the full artifact cannot be
// marshaled or written, the metadata-only form is written instead.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docrank/internal/pipeline"
	"github.com/pdiddy/docrank/pkg/types"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// marshalers by format. Tests replace entries to force failures.
var marshalers = map[string]func(any) ([]byte, error){
	FormatJSON: marshalJSON,
	FormatYAML: marshalYAML,
}

// Build assembles the artifact for a finished run. Its input_documents
// lists the documents that were extracted, not every input entry.
func Build(in types.Input, report pipeline.Report, now time.Time) types.Result {
	res := Minimal(NewMetadata(in, now))
	res.Metadata.InputDocuments = append([]string{}, report.Documents...)
	for i, s := range report.Ranked.Sections {
		res.ExtractedSections = append(res.ExtractedSections, types.ExtractedSection{
			Document:       s.Document,
			SectionTitle:   s.Title,
			ImportanceRank: i + 1,
			PageNumber:     s.PageNumber,
		})
	}
	res.SubsectionAnalysis = append(res.SubsectionAnalysis, report.Ranked.Subsections...)
	return res
}

// NewMetadata describes a run over in finished at now, listing every
// input entry as an input document.
func NewMetadata(in types.Input, now time.Time) types.Metadata {
	docs := make([]string, 0, len(in.Documents))
	for _, ref := range in.Documents {
		docs = append(docs, pipeline.DocumentName(ref))
	}
	return types.Metadata{
		InputDocuments:      docs,
		Persona:             in.Persona.Role,
		JobToBeDone:         in.JobToBeDone.Task,
		ProcessingTimestamp: now.Format(time.RFC3339),
	}
}

// Minimal returns the artifact carrying only md, with empty lists.
func Minimal(md types.Metadata) types.Result {
	return types.Result{
		Metadata:           md,
		ExtractedSections:  []types.ExtractedSection{},
		SubsectionAnalysis: []types.SubsectionAnalysis{},
	}
}

// FormatFor returns format, or the format implied by the extension of path.
func FormatFor(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Write marshals res in format and writes it to path. On failure it writes
// the minimal form of res and returns the original error.
func Write(path, format string, res types.Result) error {
	format = FormatFor(path, format)
	err := write(path, format, res)
	if err == nil {
		return nil
	}

	log.Error().Err(err).Str("path", path).Msg("writing result, falling back to minimal artifact")
	minimal := Minimal(res.Metadata)
	if ferr := write(path, format, minimal); ferr != nil {
		if ferr = write(path, FormatJSON, minimal); ferr != nil {
			return fmt.Errorf("writing result: %w (fallback: %v)", err, ferr)
		}
	}
	return fmt.Errorf("writing result: %w", err)
}

func write(path, format string, v any) error {
	marshal, ok := marshalers[format]
	if !ok {
		return fmt.Errorf("unsupported format %q", format)
	}
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", format, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".docrank-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
