package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime configuration for the fight-tracking worker service.
type Config struct {
	DBURL      string
	RedisURL   string
	RedisQueue string

	PUBGAPIKey       string
	PUBGShard        string
	PUBGRateLimitRPM int

	// TelemetryBucket enables the S3 telemetry cache when set; empty means
	// every job downloads from the telemetry CDN.
	TelemetryBucket string
	AWSRegion       string

	MetricsAddr   string
	WorkerCount   int
	JobBufferSize int
}

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBURL:            os.Getenv("DB_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisQueue:       os.Getenv("REDIS_QUEUE"),
		PUBGAPIKey:       os.Getenv("PUBG_API_KEY"),
		PUBGShard:        os.Getenv("PUBG_SHARD"),
		TelemetryBucket:  os.Getenv("TELEMETRY_BUCKET"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		PUBGRateLimitRPM: intEnv("PUBG_RATE_LIMIT_RPM", 10),
		WorkerCount:      intEnv("WORKER_COUNT", 1),
		JobBufferSize:    intEnv("JOB_BUFFER_SIZE", 16),
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	if cfg.PUBGAPIKey == "" {
		return nil, fmt.Errorf("PUBG_API_KEY is required")
	}

	if cfg.RedisQueue == "" {
		cfg.RedisQueue = "fight_matches"
	}

	if cfg.PUBGShard == "" {
		cfg.PUBGShard = "steam"
	}

	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	if cfg.TelemetryBucket != "" && cfg.AWSRegion == "" {
		return nil, fmt.Errorf("AWS_REGION is required when TELEMETRY_BUCKET is set")
	}

	return cfg, nil
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
