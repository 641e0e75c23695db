package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default indicator substrings for legacy (non-Unicode) Sinhala fonts such as
// FM Abhaya: ASCII sequences these encodings produce when read as Unicode.
var defaultLegacyPatterns = []string{";a", ";s", ";j", ";d", ";l", ";k", "WIaK", "fld", "fjk"}

type Config struct {
	MaxTextLength    int
	MaxPages         int
	MaxFileSizeMB    int
	MaxConcurrent    int
	ItemTimeoutSecs  int
	OutputDir        string
	DownloadsDir     string
	LegacyPatterns   []string
	AwsAccessKey     string
	AwsSecretKey     string
	AwsRegion        string
	DatabaseURL      string
}

// LoadConfig loads the environment variables and returns the config.
// DATABASE_URL and the AWS keys are optional: without them the pipeline runs
// in local, filesystem-only mode.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		MaxTextLength:   getEnvInt("MAX_TEXT_LENGTH", 500_000),
		MaxPages:        getEnvInt("MAX_PAGES", 1000),
		MaxFileSizeMB:   getEnvInt("MAX_FILE_SIZE_MB", 100),
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT", 3),
		ItemTimeoutSecs: getEnvInt("BATCH_ITEM_TIMEOUT_SECONDS", 0),
		OutputDir:       getEnv("OUTPUT_DIR", "processed"),
		DownloadsDir:    getEnv("DOWNLOADS_DIR", "downloads"),
		AwsAccessKey:    getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:    getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:       getEnv("AWS_REGION", "us-east-2"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LegacyPatterns:  getEnvList("LEGACY_FONT_PATTERNS", defaultLegacyPatterns),
	}

	if cfg.MaxTextLength <= 0 || cfg.MaxPages <= 0 || cfg.MaxFileSizeMB <= 0 {
		log.Fatal("MAX_TEXT_LENGTH, MAX_PAGES and MAX_FILE_SIZE_MB must be positive")
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
