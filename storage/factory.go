package storage

import (
	"fmt"
)

// Config selects and configures the blob backend.
type Config struct {
	Provider  string // "s3" or "local"
	LocalPath string
	S3        S3Config
}

// NewProvider creates a blob storage provider based on the configured type.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Client(cfg.S3)
	case "local":
		return NewLocalClient(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage provider type: %s", cfg.Provider)
	}
}
