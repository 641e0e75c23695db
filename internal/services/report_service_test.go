package services_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusupport/datafeeder/internal/models"
	"github.com/edusupport/datafeeder/internal/services"
)

func successResult(name, text string) models.PipelineResult {
	return models.PipelineResult{
		Success:  true,
		FilePath: "/docs/" + name,
		Text:     text,
		Metadata: &models.DocumentMetadata{
			FileName:      name,
			FilePath:      "/docs/" + name,
			FileSizeMB:    1.25,
			PageCount:     4,
			TextLength:    len(text),
			HasSinhala:    true,
			UnicodeStatus: "VALID (Sinhala Unicode)",
			ProcessedAt:   "2026-08-30T10:00:00Z",
		},
	}
}

func TestSaveResult(t *testing.T) {
	dir := t.TempDir()
	rep := services.NewReportService(dir)

	t.Run("writes text and metadata files", func(t *testing.T) {
		saved, err := rep.SaveResult(successResult("circular.pdf", "extracted body ශ්‍රී"))
		require.NoError(t, err)
		require.Len(t, saved, 2)

		raw, err := os.ReadFile(filepath.Join(dir, "circular_text.txt"))
		require.NoError(t, err)
		content := string(raw)
		assert.True(t, strings.HasPrefix(content, "# File: circular.pdf\n"))
		assert.Contains(t, content, "# Pages: 4\n")
		assert.Contains(t, content, "# Unicode: VALID (Sinhala Unicode)\n")
		assert.Contains(t, content, "#"+strings.Repeat("=", 50)+"\n\n")
		assert.True(t, strings.HasSuffix(content, "extracted body ශ්‍රී"))
	})

	t.Run("metadata json keeps sinhala literal", func(t *testing.T) {
		_, err := rep.SaveResult(successResult("sinhala.pdf", "පෙළ"))
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(dir, "sinhala_metadata.json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"file_name": "sinhala.pdf"`)
		assert.NotContains(t, string(raw), `\u0d`, "non-ASCII must not be escaped")

		var meta models.DocumentMetadata
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, 4, meta.PageCount)
		assert.True(t, meta.HasSinhala)
	})

	t.Run("failed result writes nothing", func(t *testing.T) {
		saved, err := rep.SaveResult(models.PipelineResult{Success: false, Error: "Security Error: too large"})
		require.NoError(t, err)
		assert.Empty(t, saved)
	})
}

func TestSaveSummary(t *testing.T) {
	dir := t.TempDir()
	rep := services.NewReportService(dir)

	results := []models.PipelineResult{
		successResult("a.pdf", "text a"),
		{Success: false, FilePath: "/docs/b.pdf", Error: "Download failed"},
		successResult("c.pdf", "text c"),
	}

	path, err := rep.SaveSummary(results)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pipeline_summary.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var summary struct {
		ProcessedAt string           `json:"processed_at"`
		TotalFiles  int              `json:"total_files"`
		Successful  int              `json:"successful"`
		Failed      int              `json:"failed"`
		Results     []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(raw, &summary))

	assert.NotEmpty(t, summary.ProcessedAt)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)

	// Order matches result order: metadata, failure entry, metadata.
	assert.Equal(t, "a.pdf", summary.Results[0]["file_name"])
	assert.Equal(t, "/docs/b.pdf", summary.Results[1]["file_path"])
	assert.Equal(t, false, summary.Results[1]["success"])
	assert.Equal(t, "Download failed", summary.Results[1]["error"])
	assert.Equal(t, "c.pdf", summary.Results[2]["file_name"])
}

func TestStats(t *testing.T) {
	rep := services.NewReportService(t.TempDir())

	legacy := successResult("legacy.pdf", "bad ;a;s;j text")
	legacy.Metadata.HasSinhala = false
	legacy.Metadata.IsLegacyFont = true
	legacy.Metadata.UnicodeStatus = "INVALID (Legacy Font)"

	tamil := successResult("tamil.pdf", "தமிழ்")
	tamil.Metadata.HasSinhala = false
	tamil.Metadata.HasTamil = true

	results := []models.PipelineResult{
		successResult("a.pdf", "text"),
		legacy,
		tamil,
		{Success: false, Error: "boom"},
	}

	stats := rep.Stats(results)
	assert.Equal(t, 4, stats.TotalProcessed)
	assert.Equal(t, 3, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 12, stats.TotalPages)
	assert.Equal(t, 1, stats.WithSinhala)
	assert.Equal(t, 1, stats.WithTamil)
	assert.Equal(t, 1, stats.LegacyFonts)
}
