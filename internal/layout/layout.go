// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout turns PDF files into pages of positioned text blocks.
// Blocks carry lines, lines carry spans with font size and style flags,
// which is what the structure extractor scores headings on.
package layout

import (
	"fmt"
	"path/filepath"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/pdiddy/docrank/pkg/types"
)

// Reader produces the layout of a document. Different sources (a PDF
// library, a pre-computed layout dump, tests) implement this interface.
type Reader interface {
	// Read returns the document's pages in order with 1-based numbers.
	Read(path string) ([]types.Page, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) ([]types.Page, error)

// Read calls f(path).
func (f ReaderFunc) Read(path string) ([]types.Page, error) {
	return f(path)
}

// PDFReader reads layout from PDF files with github.com/ledongthuc/pdf.
type PDFReader struct{}

// Read opens the PDF at path and groups each page's text runs into blocks.
// Null pages are skipped. A panic raised by the PDF library on a malformed
// file is returned as an error.
func (PDFReader) Read(path string) (pages []types.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("reading pdf %s: %v", filepath.Base(path), r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		runs := make([]run, 0, len(content.Text))
		for _, t := range content.Text {
			runs = append(runs, run{
				font: t.Font,
				size: t.FontSize,
				x:    t.X,
				y:    t.Y,
				w:    t.W,
				s:    t.S,
			})
		}
		pages = append(pages, types.Page{
			Number: i,
			Blocks: groupBlocks(runs),
		})
	}

	return pages, nil
}
