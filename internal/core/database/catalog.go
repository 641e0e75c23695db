// Package db provides the optional Postgres catalog of processed documents.
// The pipeline works without it; when DATABASE_URL is set, every processed
// document and batch summary also lands in a queryable table.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core"
	"github.com/edusupport/datafeeder/internal/models"
)

type CatalogClient struct {
	db *sql.DB
}

func NewCatalogClient(ctx context.Context, cfg *config.Config) (core.Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// The pipeline writes at most one row per in-flight item.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &CatalogClient{db: db}, nil
}

func (c *CatalogClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *CatalogClient) SaveDocument(ctx context.Context, meta *models.DocumentMetadata) error {
	if meta == nil {
		return errors.New("nil document metadata")
	}
	const q = `
		INSERT INTO documents
			(id, file_name, file_path, file_size_mb, page_count, text_length,
			 has_sinhala, has_tamil, has_english, is_legacy_font, unicode_status,
			 source_url, processed_at, error)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := c.db.ExecContext(ctx, q,
		uuid.NewString(), meta.FileName, meta.FilePath, meta.FileSizeMB, meta.PageCount,
		meta.TextLength, meta.HasSinhala, meta.HasTamil, meta.HasEnglish, meta.IsLegacyFont,
		meta.UnicodeStatus, nullable(meta.SourceURL), nullable(meta.ProcessedAt), nullable(meta.Error))
	return err
}

func (c *CatalogClient) SaveBatch(ctx context.Context, stats *models.BatchStats) error {
	if stats == nil {
		return errors.New("nil batch stats")
	}
	const q = `
		INSERT INTO batches
			(id, total_processed, successful, failed, total_pages, total_text_chars,
			 with_sinhala, with_tamil, legacy_fonts, processed_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`
	_, err := c.db.ExecContext(ctx, q,
		uuid.NewString(), stats.TotalProcessed, stats.Successful, stats.Failed,
		stats.TotalPages, stats.TotalTextChars, stats.WithSinhala, stats.WithTamil, stats.LegacyFonts)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
