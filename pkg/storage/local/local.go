package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// Backend mirrors files into a directory on the local filesystem,
// e.g. a web root served by the same machine or a mounted share
type Backend struct {
	name     string
	basePath string
}

func init() {
	storage.RegisterBackend("local", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New creates a new local filesystem backend rooted at options.path (or base_dir)
func New(cfg storage.Config) (*Backend, error) {
	path, _ := cfg.Options["path"].(string)
	if path == "" {
		path = cfg.BaseDir
	} else if cfg.BaseDir != "" {
		path = filepath.Join(path, cfg.BaseDir)
	}
	if path == "" {
		return nil, storage.MissingOption(cfg.Name, "path")
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, storage.WrapError(cfg.Name, "mkdir", err)
	}

	return &Backend{
		name:     cfg.Name,
		basePath: path,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "local" }

func (b *Backend) fullPath(p string) string {
	return filepath.Join(b.basePath, filepath.FromSlash(p))
}

// Write copies a file into the backend through a temp file and rename,
// so readers never observe a partially written page
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	dest := b.fullPath(destPath)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return storage.WrapError(b.name, "write", err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	defer source.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".docdeploy-*")
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, source); err != nil {
		tmp.Close()
		return storage.WrapError(b.name, "write", err)
	}
	if err := tmp.Close(); err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return storage.WrapError(b.name, "write", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	return nil
}

// Delete removes a file from the backend
func (b *Backend) Delete(ctx context.Context, path string) error {
	if err := os.Remove(b.fullPath(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.WrapError(b.name, "delete", storage.ErrNotFound)
		}
		return storage.WrapError(b.name, "delete", err)
	}
	return nil
}

// List walks the backend directory and returns every regular file below prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo

	err := filepath.WalkDir(b.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(b.basePath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(path.Base(rel), ".docdeploy-") || !strings.HasPrefix(rel, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, storage.FileInfo{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, storage.WrapError(b.name, "list", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns metadata about a file
func (b *Backend) Stat(ctx context.Context, path string) (*storage.FileInfo, error) {
	info, err := os.Stat(b.fullPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if a file exists
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	return storage.ExistsViaStat(ctx, b, path)
}

// Close is a no-op for the local backend
func (b *Backend) Close() error {
	return nil
}
