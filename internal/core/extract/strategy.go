package extract

import (
	"context"
	"log"
	"strings"
)

// noiseThreshold is the trimmed length below which an extraction result is
// considered trivial and the next backend is tried.
const noiseThreshold = 10

// Strategy tries backends in a fixed priority order and accepts the first
// adequate result. Order is explicit, never discovered at runtime, so
// behavior stays reproducible when a backend is missing.
type Strategy struct {
	backends []Backend
}

// NewStrategy builds a strategy over the given backends, highest priority
// first.
func NewStrategy(backends ...Backend) *Strategy {
	return &Strategy{backends: backends}
}

// DefaultStrategy returns the standard chain: docconv (pdftotext, richest
// Unicode fidelity) first, pdfcpu (content-stream aware) second, the pure-Go
// reader as last resort.
func DefaultStrategy() *Strategy {
	return NewStrategy(NewDocconvBackend(), NewPdfcpuBackend(), NewPlainBackend())
}

// ExtractText runs the fallback chain for path. Errors are surfaced as a
// string beginning with "Error", never returned, to keep the caller contract
// of the origin pipeline. The second return reports whether the accepted
// text was truncated to maxLength.
func (s *Strategy) ExtractText(ctx context.Context, path string, maxPages, maxLength int) (string, bool) {
	available := 0
	lastContent := ""

	for _, b := range s.backends {
		if !b.Available() {
			continue
		}
		available++

		res, err := b.Extract(ctx, path, maxPages)
		if err != nil {
			log.Printf("extract: backend %s failed for %s: %v", b.Name(), path, err)
			continue
		}

		text := res.Render(maxPages)
		if len(strings.TrimSpace(text)) > noiseThreshold {
			return Truncate(text, maxLength)
		}
		if text != "" {
			lastContent = text
		}
	}

	if available == 0 {
		return "Error: No PDF extraction backend available", false
	}
	if lastContent != "" {
		return Truncate(lastContent, maxLength)
	}
	return "Error: Could not extract text from PDF", false
}
