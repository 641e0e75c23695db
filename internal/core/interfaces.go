package core

import (
	"context"

	"github.com/edusupport/datafeeder/internal/models"
)

// Fetcher resolves a source locator to local files. It abstracts the remote
// store so the pipeline never depends on a specific transport.
type Fetcher interface {
	// ValidateLocator rejects malformed locators before any network I/O.
	// The returned string is the canonical form passed to Fetch.
	ValidateLocator(raw string) (string, error)

	// IsFolderLocator reports whether the locator names a folder of files
	// rather than a single file.
	IsFolderLocator(locator string) bool

	// Fetch downloads the locator's file(s) into destDir.
	Fetch(ctx context.Context, locator, destDir string) error
}

// Catalog persists processed-document records and batch summaries. It
// abstracts Postgres so the pipeline also runs with no database at all.
type Catalog interface {
	SaveDocument(ctx context.Context, meta *models.DocumentMetadata) error
	SaveBatch(ctx context.Context, stats *models.BatchStats) error
	Close() error
}
