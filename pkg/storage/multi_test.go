package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/docdeploy/pkg/storage"
	"github.com/williamokano/docdeploy/pkg/storage/mocks"
)

func newBackend(t *testing.T, name string) *mocks.MockBackend {
	b := mocks.NewMockBackend(t)
	b.On("Name").Return(name)
	b.On("Type").Return("mock")
	return b
}

func TestMultiUploader_Upload(t *testing.T) {
	modTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("uploads_missing_file", func(t *testing.T) {
		b := newBackend(t, "cdn")
		b.On("Stat", mock.Anything, "latest/index.html").Return(nil, storage.ErrNotFound).Once()
		b.On("Write", mock.Anything, "/site/latest/index.html", "latest/index.html").Return(nil).Once()

		results := storage.NewMultiUploader(zerolog.Nop()).
			Upload(context.Background(), []storage.Backend{b}, "/site/latest/index.html", "latest/index.html", 512, modTime)

		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.False(t, results[0].Skipped)
		assert.Equal(t, "cdn", results[0].BackendName)
		assert.Equal(t, "latest/index.html", results[0].Path)
	})

	t.Run("skips_unchanged_file", func(t *testing.T) {
		b := newBackend(t, "cdn")
		b.On("Stat", mock.Anything, "index.html").
			Return(&storage.FileInfo{Path: "index.html", Size: 512, ModTime: modTime.Add(time.Minute)}, nil).Once()

		results := storage.NewMultiUploader(zerolog.Nop()).
			Upload(context.Background(), []storage.Backend{b}, "/site/index.html", "index.html", 512, modTime)

		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.True(t, results[0].Skipped)
		b.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rewrites_when_size_differs", func(t *testing.T) {
		b := newBackend(t, "cdn")
		b.On("Stat", mock.Anything, "index.html").
			Return(&storage.FileInfo{Path: "index.html", Size: 100, ModTime: modTime.Add(time.Hour)}, nil).Once()
		b.On("Write", mock.Anything, mock.Anything, "index.html").Return(nil).Once()

		results := storage.NewMultiUploader(zerolog.Nop()).
			Upload(context.Background(), []storage.Backend{b}, "/site/index.html", "index.html", 512, modTime)

		require.Len(t, results, 1)
		assert.False(t, results[0].Skipped)
	})

	t.Run("partial_failure", func(t *testing.T) {
		ok := newBackend(t, "archive")
		ok.On("Stat", mock.Anything, mock.Anything).Return(nil, storage.ErrNotFound)
		ok.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		failing := newBackend(t, "offsite")
		failing.On("Stat", mock.Anything, mock.Anything).Return(nil, storage.ErrNotFound)
		failing.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(storage.ErrConnFailed).Once()

		results := storage.NewMultiUploader(zerolog.Nop()).
			Upload(context.Background(), []storage.Backend{ok, failing}, "/site/a.css", "a.css", 10, modTime)

		require.Len(t, results, 2)
		byName := map[string]storage.Result{}
		for _, r := range results {
			byName[r.BackendName] = r
		}
		assert.True(t, byName["archive"].Success)
		assert.False(t, byName["offsite"].Success)
		assert.ErrorIs(t, byName["offsite"].Error, storage.ErrConnFailed)
	})
}

func TestMultiUploader_Delete(t *testing.T) {
	a := newBackend(t, "a")
	a.On("Delete", mock.Anything, "old/index.html").Return(nil).Once()
	b := newBackend(t, "b")
	b.On("Delete", mock.Anything, "old/index.html").Return(storage.ErrPermissionDenied).Once()

	results := storage.NewMultiUploader(zerolog.Nop()).
		Delete(context.Background(), []storage.Backend{a, b}, "old/index.html")

	require.Len(t, results, 2)
	failures := 0
	for _, r := range results {
		if !r.Success {
			failures++
			assert.ErrorIs(t, r.Error, storage.ErrPermissionDenied)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestWithRetry(t *testing.T) {
	fast := storage.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}

	t.Run("retries_retryable_errors", func(t *testing.T) {
		calls := 0
		var retried []int
		cfg := fast
		cfg.OnRetry = func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) }

		err := storage.WithRetry(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return storage.ErrConnFailed
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("critical_error_stops_immediately", func(t *testing.T) {
		calls := 0
		err := storage.WithRetry(context.Background(), fast, func() error {
			calls++
			return storage.WrapError("cdn", "write", storage.ErrAuthFailed)
		})

		assert.ErrorIs(t, err, storage.ErrAuthFailed)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		calls := 0
		err := storage.WithRetry(context.Background(), fast, func() error {
			calls++
			return storage.ErrTimeout
		})

		assert.ErrorIs(t, err, storage.ErrTimeout)
		assert.Equal(t, 3, calls)
	})

	t.Run("context_cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := storage.RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1}

		err := storage.WithRetry(ctx, slow, func() error { return storage.ErrConnFailed })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFactory_Create(t *testing.T) {
	storage.RegisterBackend("test-mock", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		b := &mocks.MockBackend{}
		b.On("Close").Return(nil).Maybe()
		return b, nil
	})

	f := storage.NewFactory()

	t.Run("unknown_type", func(t *testing.T) {
		_, err := f.Create(context.Background(), storage.Config{Name: "x", Type: "ftp", Enabled: true})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := f.Create(context.Background(), storage.Config{Name: "x", Type: "test-mock"})
		assert.Error(t, err)
	})

	t.Run("create_all_skips_disabled", func(t *testing.T) {
		backends, err := f.CreateAll(context.Background(), []storage.Config{
			{Name: "a", Type: "test-mock", Enabled: true},
			{Name: "b", Type: "test-mock"},
		})
		require.NoError(t, err)
		assert.Len(t, backends, 1)
		assert.Contains(t, storage.RegisteredTypes(), "test-mock")
	})
}
