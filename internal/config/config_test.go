package config

import (
	"testing"
	"time"
)

// snapshotEnvVars lists all snapshot-related env vars that must be cleared between tests.
var snapshotEnvVars = []string{
	"TETHER_SNAPSHOT_INTERVAL", "TETHER_SNAPSHOT_S3_BUCKET", "TETHER_SNAPSHOT_S3_ENDPOINT",
	"TETHER_SNAPSHOT_S3_REGION", "TETHER_SNAPSHOT_S3_KEY", "TETHER_SNAPSHOT_FILE",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TETHER_DATABASE_URL", "TETHER_HTTP_ADDR", "TETHER_NATS_URL", "TETHER_DIRECTORY_ADDR", "TETHER_AUTH_TOKEN"} {
		t.Setenv(key, "")
	}
	for _, key := range snapshotEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name          string
		env           map[string]string
		wantErr       bool
		wantHTTPAddr  string
		wantNATSURL   string
		wantDirectory string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "DefaultAddresses",
			env:          map[string]string{"TETHER_DATABASE_URL": "postgres://localhost/tether"},
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"TETHER_DATABASE_URL":   "postgres://db:5432/tether",
				"TETHER_HTTP_ADDR":      ":3000",
				"TETHER_NATS_URL":       "nats://localhost:4222",
				"TETHER_DIRECTORY_ADDR": "directory:9090",
			},
			wantHTTPAddr:  ":3000",
			wantNATSURL:   "nats://localhost:4222",
			wantDirectory: "directory:9090",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["TETHER_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["TETHER_DATABASE_URL"])
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.DirectoryAddr != tc.wantDirectory {
				t.Errorf("DirectoryAddr = %q, want %q", cfg.DirectoryAddr, tc.wantDirectory)
			}
		})
	}
}

func TestLoadSnapshotDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TETHER_DATABASE_URL", "postgres://localhost/tether")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotInterval != 5*time.Minute {
		t.Errorf("SnapshotInterval = %v, want 5m", cfg.SnapshotInterval)
	}
	if cfg.SnapshotS3Region != "us-east-1" {
		t.Errorf("SnapshotS3Region = %q, want %q", cfg.SnapshotS3Region, "us-east-1")
	}
	if cfg.SnapshotS3Key != "tether/snapshot.jsonl" {
		t.Errorf("SnapshotS3Key = %q, want %q", cfg.SnapshotS3Key, "tether/snapshot.jsonl")
	}
}

func TestLoadSnapshotCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TETHER_DATABASE_URL", "postgres://localhost/tether")
	t.Setenv("TETHER_SNAPSHOT_INTERVAL", "10m")
	t.Setenv("TETHER_SNAPSHOT_S3_BUCKET", "my-bucket")
	t.Setenv("TETHER_SNAPSHOT_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("TETHER_SNAPSHOT_S3_REGION", "eu-west-1")
	t.Setenv("TETHER_SNAPSHOT_S3_KEY", "custom/key.jsonl")
	t.Setenv("TETHER_SNAPSHOT_FILE", "/var/lib/tether/snapshot.jsonl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotInterval != 10*time.Minute {
		t.Errorf("SnapshotInterval = %v, want 10m", cfg.SnapshotInterval)
	}
	if cfg.SnapshotS3Bucket != "my-bucket" {
		t.Errorf("SnapshotS3Bucket = %q", cfg.SnapshotS3Bucket)
	}
	if cfg.SnapshotS3Endpoint != "http://minio:9000" {
		t.Errorf("SnapshotS3Endpoint = %q", cfg.SnapshotS3Endpoint)
	}
	if cfg.SnapshotS3Region != "eu-west-1" {
		t.Errorf("SnapshotS3Region = %q", cfg.SnapshotS3Region)
	}
	if cfg.SnapshotS3Key != "custom/key.jsonl" {
		t.Errorf("SnapshotS3Key = %q", cfg.SnapshotS3Key)
	}
	if cfg.SnapshotFile != "/var/lib/tether/snapshot.jsonl" {
		t.Errorf("SnapshotFile = %q", cfg.SnapshotFile)
	}
}

func TestLoadSnapshotInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TETHER_DATABASE_URL", "postgres://localhost/tether")
	t.Setenv("TETHER_SNAPSHOT_INTERVAL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid TETHER_SNAPSHOT_INTERVAL")
	}
}

func TestLoadSnapshotDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("TETHER_DATABASE_URL", "postgres://localhost/tether")
	t.Setenv("TETHER_SNAPSHOT_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotInterval != 0 {
		t.Errorf("SnapshotInterval = %v, want 0 (disabled)", cfg.SnapshotInterval)
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
