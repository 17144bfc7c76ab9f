package storage

import (
	"context"
	"time"
)

// Backend is a destination the built documentation site can be mirrored to
type Backend interface {
	// Name returns the configured name of this destination (e.g., "cdn", "archive")
	Name() string

	// Type returns the backend type (local, s3, backblaze, ssh)
	Type() string

	// Write uploads a local file to the backend
	// sourcePath: path to the local file
	// destPath: slash-separated path relative to the backend root (e.g., "latest/index.html")
	Write(ctx context.Context, sourcePath string, destPath string) error

	// Delete removes a file from the backend
	Delete(ctx context.Context, path string) error

	// List returns every file below prefix, recursively, with paths relative to the backend root.
	// An empty prefix lists the whole backend.
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// Stat returns metadata about a single file, or ErrNotFound
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file exists in the backend
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases resources (connections, sessions)
	Close() error
}

// FileInfo represents metadata about a stored file
type FileInfo struct {
	Path    string    // slash-separated path relative to the backend root
	Size    int64     // size in bytes
	ModTime time.Time // last modification time
}

// Config represents storage backend configuration
type Config struct {
	Name    string                 `json:"name"`
	Type    string                 `json:"type"`
	Enabled bool                   `json:"enabled"`
	BaseDir string                 `json:"base_dir"` // prefix prepended to every path
	Options map[string]interface{} `json:"options"`
}

// Result represents the outcome of a single file operation on one backend
type Result struct {
	BackendName string
	BackendType string
	Path        string
	Success     bool
	Skipped     bool // remote copy was already up to date
	Error       error
	Duration    time.Duration
}

// Unchanged reports whether remote already holds an up-to-date copy of a local file.
// Object stores keep whole-second timestamps, so modTime is truncated before comparing.
func Unchanged(remote *FileInfo, size int64, modTime time.Time) bool {
	if remote == nil {
		return false
	}
	return remote.Size == size && !remote.ModTime.Before(modTime.Truncate(time.Second))
}

// ExistsViaStat implements Backend.Exists on top of Stat
func ExistsViaStat(ctx context.Context, b Backend, path string) (bool, error) {
	_, err := b.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}
