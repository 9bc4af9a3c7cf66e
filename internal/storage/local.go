package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Static errors for input resolution.
var (
	// ErrS3NotConfigured is returned when an s3:// input is given
	// without S3 configuration.
	ErrS3NotConfigured = errors.New("S3 storage is not configured")
	// ErrInputNotFound is returned when a local input path does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrInvalidS3URL is returned for a malformed s3:// reference.
	ErrInvalidS3URL = errors.New("invalid s3 URL")
)

// LocalFetcher implements the Fetcher interface for local file paths.
// It rejects s3:// inputs unless wrapped with S3Fetcher.
type LocalFetcher struct {
	tempDir string
}

// NewLocalFetcher creates a new LocalFetcher instance.
// The tempDir parameter specifies where downloaded files are stored.
// If tempDir is empty, os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalFetcher(tempDir string) (*LocalFetcher, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "blackbar")
	}

	if err := os.MkdirAll(tempDir, 0750); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	return &LocalFetcher{tempDir: tempDir}, nil
}

// TempDir returns the temporary directory path.
func (f *LocalFetcher) TempDir() string {
	return f.tempDir
}

// Fetch resolves a local path, verifying that it exists and is a
// regular file. S3 inputs are rejected with ErrS3NotConfigured.
func (f *LocalFetcher) Fetch(ctx context.Context, input string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if IsS3URL(input) {
		return "", ErrS3NotConfigured
	}

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return "", fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInputNotFound, input)
	}

	return input, nil
}

// saveTemp writes data to a fresh file in the temp directory and
// returns its path. The name is used as a base with a unique suffix.
func (f *LocalFetcher) saveTemp(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	file, err := os.CreateTemp(f.tempDir, name+"_*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	fileName := file.Name()
	if _, err := io.Copy(file, data); err != nil {
		_ = file.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return fileName, nil
}

// CleanupTemp removes the specified temporary files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered.
func (f *LocalFetcher) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove temp file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// Compile-time check that LocalFetcher implements Fetcher.
var _ Fetcher = (*LocalFetcher)(nil)
