// Package validate performs security checks on candidate input paths before
// any extraction code is allowed to touch the filesystem.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies why a path or locator was rejected.
type Kind string

const (
	KindEmptyPath      Kind = "empty path"
	KindTraversal      Kind = "path traversal"
	KindInvalidFormat  Kind = "invalid format"
	KindNotFound       Kind = "not found"
	KindNotAFile       Kind = "not a file"
	KindInvalidType    Kind = "invalid type"
	KindTooLarge       Kind = "too large"
	KindInvalidLocator Kind = "invalid locator"
)

// SecurityError is returned when input validation fails. It is always
// terminal: callers must not retry or fall through to extraction.
type SecurityError struct {
	Kind   Kind
	Detail string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// NewSecurityError builds a SecurityError; exported so the fetch package can
// reject malformed locators with the same taxonomy.
func NewSecurityError(kind Kind, format string, args ...any) *SecurityError {
	return &SecurityError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ValidatedPath is an absolute, existing, regular PDF file under the size
// ceiling. Constructing one via Validator.Validate is the only way pipeline
// code may reference a file on disk.
type ValidatedPath struct {
	path string
	size int64
}

func (p *ValidatedPath) Path() string { return p.path }

func (p *ValidatedPath) Base() string { return filepath.Base(p.path) }

// SizeMB returns the file size in megabytes, rounded to two decimals.
func (p *ValidatedPath) SizeMB() float64 {
	return float64(int64(float64(p.size)/(1024*1024)*100+0.5)) / 100
}

type Validator struct {
	MaxFileSizeMB     int
	AllowedExtensions []string
}

// NewValidator builds a validator with the given size ceiling in MB.
// Only PDF input is accepted.
func NewValidator(maxFileSizeMB int) *Validator {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 100
	}
	return &Validator{
		MaxFileSizeMB:     maxFileSizeMB,
		AllowedExtensions: []string{".pdf"},
	}
}

// Validate runs the security checks in order, short-circuiting on the first
// failure. It stats the file but never opens or reads its content.
func (v *Validator) Validate(rawPath string) (*ValidatedPath, error) {
	if strings.TrimSpace(rawPath) == "" {
		return nil, NewSecurityError(KindEmptyPath, "path must be a non-empty string")
	}

	// Traversal is checked against the raw input, before any normalization
	// could fold the ".." segments away.
	if strings.Contains(rawPath, "..") {
		return nil, NewSecurityError(KindTraversal, "path traversal detected in %q", rawPath)
	}

	abs, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, NewSecurityError(KindInvalidFormat, "cannot resolve %q: %v", rawPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, NewSecurityError(KindNotFound, "file not found: %s", abs)
	}
	if !info.Mode().IsRegular() {
		return nil, NewSecurityError(KindNotAFile, "not a regular file: %s", abs)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	if !v.allowed(ext) {
		return nil, NewSecurityError(KindInvalidType, "invalid file type %q, only PDF files allowed", ext)
	}

	maxBytes := int64(v.MaxFileSizeMB) * 1024 * 1024
	if info.Size() > maxBytes {
		return nil, NewSecurityError(KindTooLarge, "file too large: %.1fMB, max: %dMB",
			float64(info.Size())/(1024*1024), v.MaxFileSizeMB)
	}

	return &ValidatedPath{path: abs, size: info.Size()}, nil
}

func (v *Validator) allowed(ext string) bool {
	for _, a := range v.AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
