package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrPresignNotSupported is returned by backends without presigned URLs.
var ErrPresignNotSupported = errors.New("presigned URLs not supported by this provider")

// LocalClient implements Provider on the local file system. Used in dev
// mode and by tests.
type LocalClient struct {
	basePath string
}

// NewLocalClient creates a new local storage client
func NewLocalClient(basePath string) (*LocalClient, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}
	return &LocalClient{basePath: basePath}, nil
}

// UploadStream saves data from a stream to the local file system
func (lc *LocalClient) UploadStream(key string, reader io.Reader, size int64) error {
	fullPath := filepath.Join(lc.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// DownloadStream opens a file for reading
func (lc *LocalClient) DownloadStream(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(lc.basePath, key))
}

// Delete removes a file
func (lc *LocalClient) Delete(key string) error {
	err := os.Remove(filepath.Join(lc.basePath, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists checks whether a file exists
func (lc *LocalClient) Exists(key string) (bool, error) {
	_, err := os.Stat(filepath.Join(lc.basePath, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPresignedURL is not supported for local storage
func (lc *LocalClient) GetPresignedURL(key string, expiry time.Duration) (string, error) {
	return "", ErrPresignNotSupported
}
