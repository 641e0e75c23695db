package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PlainBackend is the minimal last-resort engine, a pure-Go page reader.
// Per-page decode errors degrade to empty pages; only a document that cannot
// be opened at all fails.
type PlainBackend struct{}

func NewPlainBackend() *PlainBackend { return &PlainBackend{} }

func (b *PlainBackend) Name() string { return "plain" }

func (b *PlainBackend) Available() bool { return true }

func (b *PlainBackend) Extract(ctx context.Context, path string, maxPages int) (_ *Result, err error) {
	// The underlying reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	limit := total
	if limit > maxPages {
		limit = maxPages
	}

	pages := make([]Page, 0, limit)
	for nr := 1; nr <= limit; nr++ {
		page := reader.Page(nr)
		text := ""
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = t
			}
		}
		pages = append(pages, Page{Number: nr, Text: text})
	}

	return &Result{Pages: pages, TotalPages: total}, nil
}
