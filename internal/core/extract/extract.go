// Package extract turns PDF files into page-marked text using a fixed
// priority chain of interchangeable extraction backends.
package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Page is the extracted text of one page. Text may be empty when the engine
// found nothing on the page; rendering substitutes an explicit marker so a
// page is never silently dropped.
type Page struct {
	Number int // 1-based page number
	Text   string
}

// Result is the common paged-text outcome every backend produces.
type Result struct {
	Pages      []Page
	TotalPages int // pages in the document, which may exceed len(Pages)
}

// Backend is one interchangeable text-extraction engine.
//
// Implementations must cap work at maxPages, emit one Page per processed
// page, and translate any engine fault (including panics) into an error.
type Backend interface {
	Name() string
	// Available reports whether the engine can run in this environment.
	// Absence is a normal handled state, not an error.
	Available() bool
	Extract(ctx context.Context, path string, maxPages int) (*Result, error)
}

// Render concatenates the pages with the origin page-marker layout and, when
// the document has more pages than were processed, a trailing note.
func (r *Result) Render(maxPages int) string {
	parts := make([]string, 0, len(r.Pages)+1)
	for _, p := range r.Pages {
		text := p.Text
		if strings.TrimSpace(text) == "" {
			text = "(No text extracted)"
		}
		parts = append(parts, fmt.Sprintf("--- Page %d/%d ---\n%s", p.Number, r.TotalPages, text))
	}
	if r.TotalPages > len(r.Pages) {
		parts = append(parts, fmt.Sprintf("\n[... %d more pages not extracted (limit: %d) ...]",
			r.TotalPages-len(r.Pages), maxPages))
	}
	return strings.Join(parts, "\n\n")
}

// Truncate cuts text to maxLength characters and appends a truncation
// marker. Text at or under the limit is returned unchanged, so truncation
// is idempotent for already-short text.
func Truncate(text string, maxLength int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text, false
	}
	return string(runes[:maxLength]) + fmt.Sprintf("\n\n[... Truncated at %s characters ...]",
		groupDigits(maxLength)), true
}

// groupDigits renders n with thousands separators, e.g. 500000 -> "500,000".
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
