// Package storage materializes job inputs as local files. It defines
// the Fetcher interface (port) for hexagonal architecture and
// implementations for local paths and s3:// URLs.
package storage

import (
	"context"
	"strings"
)

// Fetcher resolves a job input reference to a readable local file.
type Fetcher interface {
	// Fetch returns a local path for the given input, downloading it
	// first when the input is remote. The returned path stays valid
	// until CleanupTemp is called on it.
	Fetch(ctx context.Context, input string) (path string, err error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error
}

// IsS3URL reports whether input is an s3:// reference.
func IsS3URL(input string) bool {
	return strings.HasPrefix(input, "s3://")
}

// ParseS3URL splits an s3://bucket/key URL into bucket and key.
func ParseS3URL(input string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(input, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
