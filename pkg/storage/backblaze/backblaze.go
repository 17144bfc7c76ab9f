package backblaze

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/kurin/blazer/b2"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// Backend mirrors the site into a Backblaze B2 bucket
type Backend struct {
	name   string
	client *b2.Client
	bucket *b2.Bucket
	prefix string
}

func init() {
	storage.RegisterBackend("backblaze", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new Backblaze B2 backend
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	b2Cfg, err := parseConfig(cfg.Name, cfg.BaseDir, cfg.Options)
	if err != nil {
		return nil, err
	}

	client, err := b2.NewClient(ctx, b2Cfg.AccountID, b2Cfg.ApplicationKey)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", errors.Join(storage.ErrAuthFailed, err))
	}

	bucket, err := client.Bucket(ctx, b2Cfg.BucketName)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "get bucket", err)
	}

	return &Backend{
		name:   cfg.Name,
		client: client,
		bucket: bucket,
		prefix: strings.Trim(b2Cfg.Prefix, "/"),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "backblaze" }

func (b *Backend) key(p string) string {
	return path.Join(b.prefix, p)
}

// Write uploads a file to B2
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, storage.DefaultRetryConfig(), func() error {
		file, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer file.Close()

		attrs := &b2.Attrs{ContentType: mime.TypeByExtension(path.Ext(destPath))}
		if info, err := file.Stat(); err == nil {
			attrs.LastModified = info.ModTime()
		}

		writer := b.bucket.Object(b.key(destPath)).NewWriter(ctx).WithAttrs(attrs)

		if _, err := io.Copy(writer, file); err != nil {
			writer.Close()
			return storage.WrapError(b.name, "upload", errors.Join(storage.ErrConnFailed, err))
		}
		if err := writer.Close(); err != nil {
			return storage.WrapError(b.name, "upload", errors.Join(storage.ErrConnFailed, err))
		}
		return nil
	})
}

// Delete removes a file from B2
func (b *Backend) Delete(ctx context.Context, objectPath string) error {
	if err := b.bucket.Object(b.key(objectPath)).Delete(ctx); err != nil {
		if b2.IsNotExist(err) {
			return storage.WrapError(b.name, "delete", storage.ErrNotFound)
		}
		return storage.WrapError(b.name, "delete", err)
	}
	return nil
}

// List returns every object below prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	fullPrefix := b.prefix
	if fullPrefix != "" {
		fullPrefix += "/"
	}
	fullPrefix += prefix

	var files []storage.FileInfo

	iter := b.bucket.List(ctx, b2.ListPrefix(fullPrefix))
	for iter.Next() {
		obj := iter.Object()

		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Name(), b.prefix), "/")

		attrs, err := obj.Attrs(ctx)
		if err != nil {
			return nil, storage.WrapError(b.name, "list", err)
		}

		files = append(files, storage.FileInfo{
			Path:    rel,
			Size:    attrs.Size,
			ModTime: attrs.UploadTimestamp,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, storage.WrapError(b.name, "list", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, objectPath string) (*storage.FileInfo, error) {
	attrs, err := b.bucket.Object(b.key(objectPath)).Attrs(ctx)
	if err != nil {
		if b2.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    objectPath,
		Size:    attrs.Size,
		ModTime: attrs.UploadTimestamp,
	}, nil
}

// Exists checks if object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	return storage.ExistsViaStat(ctx, b, objectPath)
}

// Close releases resources
func (b *Backend) Close() error {
	return nil
}
