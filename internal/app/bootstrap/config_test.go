package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "studyhub",
		StorageType:      "local",
		StorageLocalPath: "./uploads",
		UploadMaxBytes:   10 << 20,
		SweepInterval:    5 * time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid local", func(c *AppConfig) {}, ""},
		{"valid s3", func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Bucket = "uploads" }, ""},
		{"missing uri", func(c *AppConfig) { c.MongoURI = "" }, "invalid MongoDB URI"},
		{"no database", func(c *AppConfig) { c.MongoDatabase = "" }, "mongo_database"},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, "storage_type"},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3" }, "storage_s3_bucket"},
		{"signed cloudfront without key", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Bucket = "uploads"
			c.StorageCFURL = "https://d1234.cloudfront.net"
			c.StorageCFKeyPairID = "K2JCJMDEHXQW5F"
		}, "storage_cf_key_path"},
		{"zero sweep interval", func(c *AppConfig) { c.SweepInterval = 0 }, "sweep_interval"},
		{"zero upload limit", func(c *AppConfig) { c.UploadMaxBytes = 0 }, "upload_max_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewFileStore_Local(t *testing.T) {
	cfg := validConfig()
	cfg.StorageLocalPath = filepath.Join(t.TempDir(), "uploads")

	store, err := newFileStore(t.Context(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStore: %v", err)
	}
	if store.Backend() != "local" {
		t.Errorf("Backend = %q, want local", store.Backend())
	}
	if _, err := os.Stat(cfg.StorageLocalPath); err != nil {
		t.Errorf("upload directory not created: %v", err)
	}

	if err := store.PutBytes(t.Context(), "chat/a.txt", []byte("hi"), nil); err != nil {
		t.Fatalf("PutBytes: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.StorageLocalPath, "chat", "a.txt")); err != nil {
		t.Errorf("file not written under the configured path: %v", err)
	}
	if u := store.URL("chat/a.txt"); u != "" {
		t.Errorf("URL = %q; local uploads must have no public URL", u)
	}
}
