// Package storage is the blob-store collaborator. Files are addressed by
// opaque keys; this service never interprets the bytes.
package storage

import (
	"io"
	"time"
)

// Provider is the common interface for blob backends.
type Provider interface {
	UploadStream(key string, reader io.Reader, size int64) error
	DownloadStream(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	// GetPresignedURL returns a time-limited direct download URL, or an
	// empty string with ErrPresignNotSupported for backends without
	// presigning (the caller then streams instead).
	GetPresignedURL(key string, expiry time.Duration) (string, error)
}

// StorageError represents storage-specific errors
type StorageError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Key      string `json:"key,omitempty"`
}

func (e *StorageError) Error() string {
	return e.Message
}

// NewStorageError creates a new storage error
func NewStorageError(provider, code, message, key string) *StorageError {
	return &StorageError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Key:      key,
	}
}
