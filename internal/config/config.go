// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the crawler service.
type Config struct {
	DatabaseURL        string // Postgres (Supabase) connection string
	RedisURL           string
	SourceFetchToken   string // optional bearer token for code-hosting origins
	CrawlIntervalHours int    // how often the cron job fires
	RequestDelay       time.Duration
	SourceDelay        time.Duration
	MaxConcurrent      int // reserved; crawling is currently sequential
	HTTPTimeout        time.Duration
	LogLevel           slog.Level
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval, err := positiveInt("CRAWL_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}
	requestDelayMS, err := positiveInt("REQUEST_DELAY_MS", 500)
	if err != nil {
		return nil, err
	}
	sourceDelayMS, err := positiveInt("SOURCE_DELAY_MS", 2000)
	if err != nil {
		return nil, err
	}
	maxConcurrent, err := positiveInt("MAX_CONCURRENT_REQUESTS", 3)
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := positiveInt("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		SourceFetchToken:   os.Getenv("SOURCE_FETCH_TOKEN"),
		CrawlIntervalHours: interval,
		RequestDelay:       time.Duration(requestDelayMS) * time.Millisecond,
		SourceDelay:        time.Duration(sourceDelayMS) * time.Millisecond,
		MaxConcurrent:      maxConcurrent,
		HTTPTimeout:        time.Duration(timeoutSecs) * time.Second,
		LogLevel:           parseLogLevel(os.Getenv("LOG_LEVEL")),
	}, nil
}

func positiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
