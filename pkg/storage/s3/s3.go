package s3

import (
	"context"
	"errors"
	"mime"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// Backend mirrors the site into an S3 (or S3-compatible) bucket
type Backend struct {
	name         string
	client       *s3.Client
	bucket       string
	prefix       string
	cacheControl string
	uploader     *manager.Uploader
}

func init() {
	storage.RegisterBackend("s3", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new S3 backend and checks the bucket is reachable
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	s3Cfg, err := parseConfig(cfg.Name, cfg.BaseDir, cfg.Options)
	if err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(s3Cfg.Region)}
	if s3Cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
		}
		o.UsePathStyle = s3Cfg.ForcePathStyle
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s3Cfg.Bucket)}); err != nil {
		return nil, storage.WrapError(cfg.Name, "connection test", errors.Join(storage.ErrConnFailed, err))
	}

	return &Backend{
		name:         cfg.Name,
		client:       client,
		bucket:       s3Cfg.Bucket,
		prefix:       strings.Trim(s3Cfg.Prefix, "/"),
		cacheControl: s3Cfg.CacheControl,
		uploader:     manager.NewUploader(client),
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "s3" }

func (b *Backend) key(p string) string {
	return path.Join(b.prefix, p)
}

// Write uploads a file, setting Content-Type from the extension so the bucket can serve it
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, storage.DefaultRetryConfig(), func() error {
		file, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer file.Close()

		input := &s3.PutObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key(destPath)),
			Body:   file,
		}
		if ct := mime.TypeByExtension(path.Ext(destPath)); ct != "" {
			input.ContentType = aws.String(ct)
		}
		if b.cacheControl != "" {
			input.CacheControl = aws.String(b.cacheControl)
		}

		if _, err := b.uploader.Upload(ctx, input); err != nil {
			return storage.WrapError(b.name, "upload", errors.Join(storage.ErrConnFailed, err))
		}
		return nil
	})
}

// Delete removes an object
func (b *Backend) Delete(ctx context.Context, objectPath string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectPath)),
	})
	if err != nil {
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

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storage.WrapError(b.name, "list", err)
		}

		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), b.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}

			files = append(files, storage.FileInfo{
				Path:    rel,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns metadata about an object
func (b *Backend) Stat(ctx context.Context, objectPath string) (*storage.FileInfo, error) {
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectPath)),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    objectPath,
		Size:    aws.ToInt64(result.ContentLength),
		ModTime: aws.ToTime(result.LastModified),
	}, nil
}

// Exists checks if an object exists
func (b *Backend) Exists(ctx context.Context, objectPath string) (bool, error) {
	return storage.ExistsViaStat(ctx, b, objectPath)
}

// Close is a no-op for S3
func (b *Backend) Close() error {
	return nil
}
