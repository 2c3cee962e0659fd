package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Classifier thresholds
	TOCTruncateRunes   int
	LargeFontPt        float64
	FallbackScanWindow int

	// Rendering
	InlineMathMaxLen int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PAPERLENS_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		TOCTruncateRunes:   envInt("TOC_TRUNCATE_RUNES", 20),
		LargeFontPt:        envFloat("LARGE_FONT_PT", 14),
		FallbackScanWindow: envInt("FALLBACK_SCAN_WINDOW", 100),

		InlineMathMaxLen: envInt("INLINE_MATH_MAX_LEN", 50),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.TOCTruncateRunes <= 0 {
		cfg.TOCTruncateRunes = 20
	}
	if cfg.LargeFontPt <= 0 {
		cfg.LargeFontPt = 14
	}
	if cfg.FallbackScanWindow <= 0 {
		cfg.FallbackScanWindow = 100
	}
	if cfg.InlineMathMaxLen <= 0 {
		cfg.InlineMathMaxLen = 50
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
