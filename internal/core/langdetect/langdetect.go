// Package langdetect classifies extracted text by Unicode script presence
// and flags probable legacy (non-Unicode) Sinhala font encodings.
//
// The legacy-font check is content-based: many scanned government PDFs carry
// no usable font metadata, so detection relies on the ASCII debris those
// 8-bit encodings produce when their glyph codes are read as Unicode.
package langdetect

import "strings"

// Unicode block ranges for the scripts of interest.
const (
	sinhalaLo rune = 0x0D80
	sinhalaHi rune = 0x0DFF
	tamilLo   rune = 0x0B80
	tamilHi   rune = 0x0BFF
)

// Languages holds per-script presence flags for a piece of text.
type Languages struct {
	HasSinhala bool
	HasTamil   bool
	HasEnglish bool
}

// Detector runs script and legacy-font detection. The zero value is not
// usable; construct with NewDetector.
type Detector struct {
	// LegacyPatterns are literal substrings typical of legacy-font output.
	LegacyPatterns []string
	// SemicolonThreshold is the semicolon-to-character ratio above which
	// text is flagged as legacy.
	SemicolonThreshold float64
	// PatternThreshold is the number of pattern hits that flags legacy.
	PatternThreshold int
	// MinLength is the minimum text length for the legacy check to run.
	MinLength int
}

// NewDetector returns a detector tuned for FM-style legacy Sinhala fonts.
// The pattern list is data, not code: pass a replacement to retune it.
func NewDetector(patterns []string) *Detector {
	if len(patterns) == 0 {
		patterns = []string{";a", ";s", ";j", ";d", ";l", ";k", "WIaK", "fld", "fjk"}
	}
	return &Detector{
		LegacyPatterns:     patterns,
		SemicolonThreshold: 0.03,
		PatternThreshold:   3,
		MinLength:          20,
	}
}

// DetectLanguages reports which scripts appear anywhere in text.
// Position never matters, only set membership.
func (d *Detector) DetectLanguages(text string) Languages {
	var l Languages
	for _, r := range text {
		switch {
		case r >= sinhalaLo && r <= sinhalaHi:
			l.HasSinhala = true
		case r >= tamilLo && r <= tamilHi:
			l.HasTamil = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			l.HasEnglish = true
		}
		if l.HasSinhala && l.HasTamil && l.HasEnglish {
			break
		}
	}
	return l
}

// DetectLegacyFont reports whether text looks like legacy-font output.
// Real Sinhala Unicode anywhere in the text overrides the heuristic.
func (d *Detector) DetectLegacyFont(text string) bool {
	runes := []rune(text)
	if len(runes) < d.MinLength {
		return false
	}

	for _, r := range runes {
		if r >= sinhalaLo && r <= sinhalaHi {
			return false
		}
	}

	semicolons := strings.Count(text, ";")
	ratio := float64(semicolons) / float64(len(runes))

	hits := 0
	for _, p := range d.LegacyPatterns {
		if strings.Contains(text, p) {
			hits++
		}
	}

	return ratio > d.SemicolonThreshold || hits >= d.PatternThreshold
}

// UnicodeStatus derives the human-readable status. The ordering is fixed:
// legacy pre-empts everything, then Sinhala, Tamil, English; first match wins.
func (d *Detector) UnicodeStatus(l Languages, isLegacy bool) string {
	switch {
	case isLegacy:
		return "INVALID (Legacy Font)"
	case l.HasSinhala:
		return "VALID (Sinhala Unicode)"
	case l.HasTamil:
		return "VALID (Tamil Unicode)"
	case l.HasEnglish:
		return "VALID (English)"
	default:
		return "UNKNOWN"
	}
}

// Detect runs the full classification for a piece of text.
func (d *Detector) Detect(text string) (Languages, bool, string) {
	langs := d.DetectLanguages(text)
	legacy := d.DetectLegacyFont(text)
	return langs, legacy, d.UnicodeStatus(langs, legacy)
}
