package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core"
	"github.com/edusupport/datafeeder/internal/core/extract"
	"github.com/edusupport/datafeeder/internal/core/langdetect"
	"github.com/edusupport/datafeeder/internal/core/validate"
	"github.com/edusupport/datafeeder/internal/models"
)

// PipelineService composes fetch → validate → extract → detect → persist for
// one document, and fans the chain out over a bounded-concurrency batch.
// Per-item failures become data in the results; they never abort siblings.
type PipelineService struct {
	cfg       *config.Config
	validator *validate.Validator
	strategy  *extract.Strategy
	detector  *langdetect.Detector
	fetcher   core.Fetcher // nil in local-only mode
	catalog   core.Catalog // nil when no DATABASE_URL is configured
	reporter  *ReportService
}

// NewPipelineService wires the pipeline and creates the output and downloads
// directories. Directory failure is the one construction-time error allowed
// to abort a run.
func NewPipelineService(cfg *config.Config, fetcher core.Fetcher, catalog core.Catalog) (*PipelineService, error) {
	for _, dir := range []string{cfg.OutputDir, cfg.DownloadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &PipelineService{
		cfg:       cfg,
		validator: validate.NewValidator(cfg.MaxFileSizeMB),
		strategy:  extract.DefaultStrategy(),
		detector:  langdetect.NewDetector(cfg.LegacyPatterns),
		fetcher:   fetcher,
		catalog:   catalog,
		reporter:  NewReportService(cfg.OutputDir),
	}, nil
}

// Reporter exposes the result store this pipeline writes through.
func (s *PipelineService) Reporter() *ReportService { return s.reporter }

// ProcessFile runs the single-item flow for a local PDF. sourceURL, when
// non-empty, records where a fetched file came from.
func (s *PipelineService) ProcessFile(ctx context.Context, path, sourceURL string) models.PipelineResult {
	vp, err := s.validator.Validate(path)
	if err != nil {
		return failed(path, "Security Error: "+err.Error())
	}

	// Page count and trailer fields are best-effort reporting data.
	pageCount := 0
	if info, err := extract.ReadInfo(vp.Path()); err == nil {
		pageCount = info.PageCount
	} else {
		log.Printf("pipeline: info read failed for %s: %v", vp.Base(), err)
	}

	text, _ := s.strategy.ExtractText(ctx, vp.Path(), s.cfg.MaxPages, s.cfg.MaxTextLength)
	if strings.HasPrefix(text, "Error") {
		return failed(vp.Path(), text)
	}

	langs, legacy, status := s.detector.Detect(text)

	meta := &models.DocumentMetadata{
		FileName:      vp.Base(),
		FilePath:      vp.Path(),
		FileSizeMB:    vp.SizeMB(),
		PageCount:     pageCount,
		TextLength:    utf8.RuneCountInString(text),
		HasSinhala:    langs.HasSinhala,
		HasTamil:      langs.HasTamil,
		HasEnglish:    langs.HasEnglish,
		IsLegacyFont:  legacy,
		UnicodeStatus: status,
		SourceURL:     sourceURL,
		ProcessedAt:   time.Now().Format(time.RFC3339),
	}

	if s.catalog != nil {
		if err := s.catalog.SaveDocument(ctx, meta); err != nil {
			log.Printf("pipeline: catalog write failed for %s: %v", vp.Base(), err)
		}
	}

	return models.PipelineResult{
		Success:  true,
		FilePath: vp.Path(),
		Text:     text,
		Metadata: meta,
	}
}

// FetchAndProcess downloads one locator and runs the single-item flow on the
// newest PDF it produced. Each call fetches into its own subdirectory so
// concurrent batch items cannot pick up each other's files.
func (s *PipelineService) FetchAndProcess(ctx context.Context, locator string) models.PipelineResult {
	if s.fetcher == nil {
		return failed("", "Error: no fetcher configured, remote locators unavailable")
	}

	canonical, err := s.fetcher.ValidateLocator(locator)
	if err != nil {
		return failed("", "Security Error: "+err.Error())
	}

	itemDir := filepath.Join(s.cfg.DownloadsDir, uuid.NewString())
	if err := os.MkdirAll(itemDir, 0o755); err != nil {
		return failed("", fmt.Sprintf("Error: create download dir: %v", err))
	}

	if err := s.fetcher.Fetch(ctx, canonical, itemDir); err != nil {
		return failed("", "Download failed: "+err.Error())
	}

	latest, err := newestPDF(itemDir)
	if err != nil {
		return failed("", "No PDF file found after download")
	}

	return s.ProcessFile(ctx, latest, canonical)
}

// RunFiles processes local PDFs in order, persists each success and the
// summary, and returns the batch.
func (s *PipelineService) RunFiles(ctx context.Context, paths []string) *models.BatchRun {
	results := make([]models.PipelineResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, s.ProcessFile(ctx, p, ""))
	}
	return s.finish(ctx, results)
}

// RunBatch fetches and processes locators with at most maxConcurrent items
// in flight. The result slice preserves submission order, one entry per
// locator, whatever mix of successes, failures and timeouts occurred.
func (s *PipelineService) RunBatch(ctx context.Context, locators []string, maxConcurrent int) *models.BatchRun {
	if maxConcurrent <= 0 {
		maxConcurrent = s.cfg.MaxConcurrent
	}

	results := make([]models.PipelineResult, len(locators))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrent)
	for i, locator := range locators {
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, locator)
			return nil
		})
	}
	_ = g.Wait()

	return s.finish(ctx, results)
}

// fetchOne runs one batch item under the configured per-item deadline, with
// panic isolation. A deadline hit is recorded as a failure, never dropped;
// the abandoned worker goroutine only holds its own resources, not the slot.
func (s *PipelineService) fetchOne(ctx context.Context, locator string) models.PipelineResult {
	itemCtx := ctx
	if s.cfg.ItemTimeoutSecs > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.ItemTimeoutSecs)*time.Second)
		defer cancel()
	}

	done := make(chan models.PipelineResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- failed("", fmt.Sprintf("Error: %v", r))
			}
		}()
		done <- s.FetchAndProcess(itemCtx, locator)
	}()

	select {
	case res := <-done:
		return res
	case <-itemCtx.Done():
		return failed("", fmt.Sprintf("Error: item timed out: %v", itemCtx.Err()))
	}
}

// finish persists per-document artifacts and the run summary, records the
// batch in the catalog, and assembles the BatchRun.
func (s *PipelineService) finish(ctx context.Context, results []models.PipelineResult) *models.BatchRun {
	for _, r := range results {
		if _, err := s.reporter.SaveResult(r); err != nil {
			log.Printf("pipeline: save result failed: %v", err)
		}
	}
	if _, err := s.reporter.SaveSummary(results); err != nil {
		log.Printf("pipeline: save summary failed: %v", err)
	}

	stats := s.reporter.Stats(results)
	if s.catalog != nil {
		if err := s.catalog.SaveBatch(ctx, &stats); err != nil {
			log.Printf("pipeline: catalog batch write failed: %v", err)
		}
	}

	return &models.BatchRun{Results: results, Stats: stats}
}

func failed(path, errMsg string) models.PipelineResult {
	return models.PipelineResult{Success: false, FilePath: path, Error: errMsg}
}

// newestPDF returns the most recently modified PDF in dir.
func newestPDF(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no PDF files in %s", dir)
	}

	newest := ""
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = m
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no readable PDF files in %s", dir)
	}
	return newest, nil
}
