package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MultiUploader pushes a single file to several backends in parallel
type MultiUploader struct {
	logger zerolog.Logger
}

// NewMultiUploader creates a new multi-uploader
func NewMultiUploader(logger zerolog.Logger) *MultiUploader {
	return &MultiUploader{logger: logger}
}

// Upload writes sourcePath to destPath on every backend. When a backend already
// holds a copy of the same size that is not older than the local file, the write
// is skipped and the result is marked Skipped.
func (m *MultiUploader) Upload(ctx context.Context, backends []Backend, sourcePath, destPath string, size int64, modTime time.Time) []Result {
	return m.fanOut(backends, func(b Backend) Result {
		result := Result{BackendName: b.Name(), BackendType: b.Type(), Path: destPath}

		remote, err := b.Stat(ctx, destPath)
		if err == nil && Unchanged(remote, size, modTime) {
			m.logger.Debug().
				Str("destination", b.Name()).
				Str("file", destPath).
				Msg("unchanged, skipping")
			result.Success = true
			result.Skipped = true
			return result
		}

		result.Error = b.Write(ctx, sourcePath, destPath)
		result.Success = result.Error == nil

		if result.Error != nil {
			m.logger.Error().
				Err(result.Error).
				Str("destination", b.Name()).
				Str("file", destPath).
				Msg("upload failed")
		} else {
			m.logger.Debug().
				Str("destination", b.Name()).
				Str("file", destPath).
				Msg("uploaded")
		}
		return result
	})
}

// Delete deletes a file from multiple backends
func (m *MultiUploader) Delete(ctx context.Context, backends []Backend, path string) []Result {
	return m.fanOut(backends, func(b Backend) Result {
		err := b.Delete(ctx, path)
		return Result{
			BackendName: b.Name(),
			BackendType: b.Type(),
			Path:        path,
			Success:     err == nil,
			Error:       err,
		}
	})
}

func (m *MultiUploader) fanOut(backends []Backend, op func(Backend) Result) []Result {
	var wg sync.WaitGroup
	resultsChan := make(chan Result, len(backends))

	for _, backend := range backends {
		wg.Add(1)

		go func(b Backend) {
			defer wg.Done()

			start := time.Now()
			result := op(b)
			result.Duration = time.Since(start)

			resultsChan <- result
		}(backend)
	}

	wg.Wait()
	close(resultsChan)

	results := make([]Result, 0, len(backends))
	for result := range resultsChan {
		results = append(results, result)
	}

	return results
}
