package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edusupport/datafeeder/internal/models"
)

// ReportService persists per-document artifacts and the run-level summary.
// Output files are named from each document's base name, so concurrent
// writers for distinct documents never collide.
type ReportService struct {
	outputDir string
}

func NewReportService(outputDir string) *ReportService {
	return &ReportService{outputDir: outputDir}
}

// SaveResult writes <name>_text.txt and <name>_metadata.json for a
// successful result. Failed results produce no per-document files; they
// appear in the summary instead. Returns the paths written, keyed by kind.
func (s *ReportService) SaveResult(res models.PipelineResult) (map[string]string, error) {
	saved := map[string]string{}
	if !res.Success || res.Metadata == nil {
		return saved, nil
	}

	base := strings.TrimSuffix(res.Metadata.FileName, filepath.Ext(res.Metadata.FileName))

	if res.Text != "" {
		textPath := filepath.Join(s.outputDir, base+"_text.txt")
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("# File: %s\n", res.Metadata.FileName))
		sb.WriteString(fmt.Sprintf("# Pages: %d\n", res.Metadata.PageCount))
		sb.WriteString(fmt.Sprintf("# Unicode: %s\n", res.Metadata.UnicodeStatus))
		sb.WriteString(fmt.Sprintf("# Processed: %s\n", res.Metadata.ProcessedAt))
		sb.WriteString("#" + strings.Repeat("=", 50) + "\n\n")
		sb.WriteString(res.Text)
		if err := os.WriteFile(textPath, []byte(sb.String()), 0o644); err != nil {
			return saved, fmt.Errorf("write %s: %w", textPath, err)
		}
		saved["text"] = textPath
	}

	metaPath := filepath.Join(s.outputDir, base+"_metadata.json")
	if err := writeJSON(metaPath, res.Metadata); err != nil {
		return saved, err
	}
	saved["metadata"] = metaPath

	return saved, nil
}

// batchSummary is the pipeline_summary.json layout: full metadata objects
// for successes, minimal failure entries otherwise, in result order.
type batchSummary struct {
	ProcessedAt string `json:"processed_at"`
	TotalFiles  int    `json:"total_files"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	Results     []any  `json:"results"`
}

type failureEntry struct {
	FilePath string `json:"file_path"`
	Success  bool   `json:"success"`
	Error    string `json:"error"`
}

// SaveSummary writes pipeline_summary.json for the given results and
// returns its path.
func (s *ReportService) SaveSummary(results []models.PipelineResult) (string, error) {
	summary := batchSummary{
		ProcessedAt: time.Now().Format(time.RFC3339),
		TotalFiles:  len(results),
	}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
		if r.Metadata != nil {
			summary.Results = append(summary.Results, r.Metadata)
		} else {
			summary.Results = append(summary.Results, failureEntry{FilePath: r.FilePath, Error: r.Error})
		}
	}

	path := filepath.Join(s.outputDir, "pipeline_summary.json")
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

// Stats aggregates counts over results.
func (s *ReportService) Stats(results []models.PipelineResult) models.BatchStats {
	stats := models.BatchStats{TotalProcessed: len(results)}
	for _, r := range results {
		if !r.Success {
			stats.Failed++
			continue
		}
		stats.Successful++
		if r.Metadata == nil {
			continue
		}
		stats.TotalPages += r.Metadata.PageCount
		stats.TotalTextChars += r.Metadata.TextLength
		if r.Metadata.HasSinhala {
			stats.WithSinhala++
		}
		if r.Metadata.HasTamil {
			stats.WithTamil++
		}
		if r.Metadata.IsLegacyFont {
			stats.LegacyFonts++
		}
	}
	return stats
}

// writeJSON writes v as indented UTF-8 JSON. HTML escaping is off so Sinhala
// and Tamil text stays literal in the output files.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
