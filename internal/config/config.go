package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL   string // TETHER_DATABASE_URL (required)
	HTTPAddr      string // TETHER_HTTP_ADDR (default ":8080")
	NATSURL       string // TETHER_NATS_URL (optional, empty = no events)
	DirectoryAddr string // TETHER_DIRECTORY_ADDR (optional, empty = permissive static directory)
	AuthToken     string // TETHER_AUTH_TOKEN (optional, empty = auth disabled)

	// Snapshot settings
	SnapshotInterval   time.Duration // TETHER_SNAPSHOT_INTERVAL (default 5m; 0 = disabled)
	SnapshotS3Bucket   string        // TETHER_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // TETHER_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // TETHER_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // TETHER_SNAPSHOT_S3_KEY (default "tether/snapshot.jsonl")
	SnapshotFile       string        // TETHER_SNAPSHOT_FILE (enables local file when set)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("TETHER_DATABASE_URL"),
		HTTPAddr:           envOrDefault("TETHER_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("TETHER_NATS_URL"),
		DirectoryAddr:      os.Getenv("TETHER_DIRECTORY_ADDR"),
		AuthToken:          os.Getenv("TETHER_AUTH_TOKEN"),
		SnapshotS3Bucket:   os.Getenv("TETHER_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("TETHER_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("TETHER_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("TETHER_SNAPSHOT_S3_KEY", "tether/snapshot.jsonl"),
		SnapshotFile:       os.Getenv("TETHER_SNAPSHOT_FILE"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TETHER_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("TETHER_SNAPSHOT_INTERVAL", "5m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TETHER_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
