package models

// DocumentMetadata describes one processed document. Field names mirror the
// metadata JSON written next to each extracted text file.
type DocumentMetadata struct {
	FileName      string  `db:"file_name" json:"file_name"`
	FilePath      string  `db:"file_path" json:"file_path"`
	FileSizeMB    float64 `db:"file_size_mb" json:"file_size_mb"`
	PageCount     int     `db:"page_count" json:"page_count"`
	TextLength    int     `db:"text_length" json:"text_length"`
	HasSinhala    bool    `db:"has_sinhala" json:"has_sinhala"`
	HasTamil      bool    `db:"has_tamil" json:"has_tamil"`
	HasEnglish    bool    `db:"has_english" json:"has_english"`
	IsLegacyFont  bool    `db:"is_legacy_font" json:"is_legacy_font"`
	UnicodeStatus string  `db:"unicode_status" json:"unicode_status"`
	SourceURL     string  `db:"source_url" json:"source_url,omitempty"`
	ProcessedAt   string  `db:"processed_at" json:"processed_at,omitempty"`
	Error         string  `db:"error" json:"error,omitempty"`
}

// PipelineResult is the terminal outcome for one pipeline item. Exactly one
// of (Text+Metadata) or Error is populated.
type PipelineResult struct {
	Success  bool              `json:"success"`
	FilePath string            `json:"file_path,omitempty"`
	Text     string            `json:"-"`
	Metadata *DocumentMetadata `json:"metadata,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// BatchStats aggregates counts over a set of pipeline results.
type BatchStats struct {
	TotalProcessed int `json:"total_processed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	TotalPages     int `json:"total_pages"`
	TotalTextChars int `json:"total_text_chars"`
	WithSinhala    int `json:"with_sinhala"`
	WithTamil      int `json:"with_tamil"`
	LegacyFonts    int `json:"legacy_fonts"`
}

// BatchRun is the unit handed to the reporter after a batch completes.
// Results preserve submission order, not completion order.
type BatchRun struct {
	Results []PipelineResult `json:"results"`
	Stats   BatchStats       `json:"stats"`
}
