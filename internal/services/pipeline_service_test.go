package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core/extract"
)

// fakeEngine lets white-box tests drive the strategy with known text.
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Available() bool { return true }

func (f *fakeEngine) Extract(ctx context.Context, path string, maxPages int) (*extract.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &extract.Result{
		Pages:      []extract.Page{{Number: 1, Text: f.text}},
		TotalPages: 1,
	}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		MaxTextLength: 500_000,
		MaxPages:      1000,
		MaxFileSizeMB: 100,
		MaxConcurrent: 3,
		OutputDir:     filepath.Join(dir, "processed"),
		DownloadsDir:  filepath.Join(dir, "downloads"),
	}
}

func TestNewPipelineService_CreatesDirectories(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewPipelineService(cfg, nil, nil)
	require.NoError(t, err)

	for _, dir := range []string{cfg.OutputDir, cfg.DownloadsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent on an already-prepared tree.
	_, err = NewPipelineService(cfg, nil, nil)
	assert.NoError(t, err)
}

func TestProcessFile_SecurityErrorSkipsExtraction(t *testing.T) {
	cfg := testConfig(t)
	svc, err := NewPipelineService(cfg, nil, nil)
	require.NoError(t, err)
	engine := &fakeEngine{text: "must not run"}
	svc.strategy = extract.NewStrategy(engine)

	res := svc.ProcessFile(context.Background(), "../etc/passwd.pdf", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Security Error")
	assert.Contains(t, res.Error, "path traversal")
	assert.Nil(t, res.Metadata)
}

func TestProcessFile_SuccessBuildsMetadata(t *testing.T) {
	cfg := testConfig(t)
	svc, err := NewPipelineService(cfg, nil, nil)
	require.NoError(t, err)
	svc.strategy = extract.NewStrategy(&fakeEngine{
		text: "ශ්‍රී ලංකා circular with English text",
	})

	pdf := filepath.Join(t.TempDir(), "circular.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4 stub"), 0o644))

	res := svc.ProcessFile(context.Background(), pdf, "s3://edu-docs/circular.pdf")

	require.True(t, res.Success, "unexpected error: %s", res.Error)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, "circular.pdf", res.Metadata.FileName)
	assert.True(t, filepath.IsAbs(res.Metadata.FilePath))
	assert.True(t, res.Metadata.HasSinhala)
	assert.True(t, res.Metadata.HasEnglish)
	assert.False(t, res.Metadata.IsLegacyFont)
	assert.Equal(t, "VALID (Sinhala Unicode)", res.Metadata.UnicodeStatus)
	assert.Equal(t, "s3://edu-docs/circular.pdf", res.Metadata.SourceURL)
	assert.NotEmpty(t, res.Metadata.ProcessedAt)
	assert.Greater(t, res.Metadata.TextLength, 0)
	assert.Contains(t, res.Text, "--- Page 1/1 ---")
}

func TestProcessFile_ExtractionErrorBecomesFailure(t *testing.T) {
	cfg := testConfig(t)
	svc, err := NewPipelineService(cfg, nil, nil)
	require.NoError(t, err)
	svc.strategy = extract.NewStrategy() // empty chain: no backend available

	pdf := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("not a pdf"), 0o644))

	res := svc.ProcessFile(context.Background(), pdf, "")

	assert.False(t, res.Success)
	assert.Equal(t, "Error: No PDF extraction backend available", res.Error)
	assert.Nil(t, res.Metadata)
}

func TestRunFiles_WritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	svc, err := NewPipelineService(cfg, nil, nil)
	require.NoError(t, err)
	svc.strategy = extract.NewStrategy(&fakeEngine{text: "ordinary English body text"})

	dir := t.TempDir()
	pdf := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4 stub"), 0o644))

	run := svc.RunFiles(context.Background(), []string{pdf, filepath.Join(dir, "missing.pdf")})

	require.Len(t, run.Results, 2)
	assert.True(t, run.Results[0].Success)
	assert.False(t, run.Results[1].Success)
	assert.Equal(t, 1, run.Stats.Successful)
	assert.Equal(t, 1, run.Stats.Failed)

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "report_text.txt"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "report_metadata.json"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "pipeline_summary.json"))
}
