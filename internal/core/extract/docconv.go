package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"code.sajari.com/docconv"
)

// DocconvBackend extracts text through docconv, which shells out to
// pdftotext. It has the best Unicode fidelity of the chain and runs first,
// but only when the pdftotext binary is installed.
type DocconvBackend struct {
	available bool
}

func NewDocconvBackend() *DocconvBackend {
	_, err := exec.LookPath("pdftotext")
	return &DocconvBackend{available: err == nil}
}

func (b *DocconvBackend) Name() string { return "docconv" }

func (b *DocconvBackend) Available() bool { return b.available }

func (b *DocconvBackend) Extract(ctx context.Context, path string, maxPages int) (_ *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docconv panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := docconv.Convert(f, "application/pdf", false)
	if err != nil {
		return nil, fmt.Errorf("docconv convert: %w", err)
	}

	// pdftotext separates pages with form feeds; a trailing feed leaves one
	// empty part at the end.
	pageTexts := strings.Split(res.Body, "\f")
	if n := len(pageTexts); n > 1 && strings.TrimSpace(pageTexts[n-1]) == "" {
		pageTexts = pageTexts[:n-1]
	}

	total := len(pageTexts)
	if total > maxPages {
		pageTexts = pageTexts[:maxPages]
	}

	pages := make([]Page, 0, len(pageTexts))
	for i, t := range pageTexts {
		pages = append(pages, Page{Number: i + 1, Text: strings.TrimRight(t, "\n")})
	}

	return &Result{Pages: pages, TotalPages: total}, nil
}
