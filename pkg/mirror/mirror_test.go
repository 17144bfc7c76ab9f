package mirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/docdeploy/pkg/mirror"
	"github.com/williamokano/docdeploy/pkg/storage"
	"github.com/williamokano/docdeploy/pkg/storage/local"
	"github.com/williamokano/docdeploy/pkg/storage/mocks"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func newLocal(t *testing.T, name string) (*local.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := local.New(storage.Config{Name: name, Type: "local", Options: map[string]interface{}{"path": dir}})
	require.NoError(t, err)
	return b, dir
}

var site = map[string]string{
	"index.html":             "<h1>docs</h1>",
	"latest/index.html":      "<h1>latest</h1>",
	"latest/assets/site.css": "body{}",
}

func TestScan(t *testing.T) {
	t.Run("lists_regular_files", func(t *testing.T) {
		files, err := mirror.Scan(writeSite(t, site))
		require.NoError(t, err)

		var paths []string
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		assert.ElementsMatch(t, []string{"index.html", "latest/index.html", "latest/assets/site.css"}, paths)
	})

	t.Run("missing_site", func(t *testing.T) {
		_, err := mirror.Scan(filepath.Join(t.TempDir(), "site"))
		assert.ErrorIs(t, err, mirror.ErrSiteMissing)
	})
}

func TestMirror_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads_then_skips_unchanged", func(t *testing.T) {
		siteDir := writeSite(t, site)
		b, dest := newLocal(t, "webroot")
		m := mirror.New(zerolog.Nop())

		summaries, err := m.Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{MaxConcurrent: 2})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "webroot", summaries[0].Destination)
		assert.Equal(t, 3, summaries[0].Uploaded)
		assert.Equal(t, 0, summaries[0].Skipped)

		data, err := os.ReadFile(filepath.Join(dest, "latest", "assets", "site.css"))
		require.NoError(t, err)
		assert.Equal(t, "body{}", string(data))

		summaries, err = m.Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, summaries[0].Uploaded)
		assert.Equal(t, 3, summaries[0].Skipped)
	})

	t.Run("prune_removes_stale_files", func(t *testing.T) {
		siteDir := writeSite(t, site)
		b, dest := newLocal(t, "webroot")
		stale := filepath.Join(dest, "0.9", "index.html")
		require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

		summaries, err := mirror.New(zerolog.Nop()).Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{Prune: true})
		require.NoError(t, err)
		assert.Equal(t, 1, summaries[0].Deleted)
		assert.NoFileExists(t, stale)
		assert.FileExists(t, filepath.Join(dest, "index.html"))
	})

	t.Run("keeps_stale_files_without_prune", func(t *testing.T) {
		siteDir := writeSite(t, site)
		b, dest := newLocal(t, "webroot")
		stale := filepath.Join(dest, "old.html")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

		summaries, err := mirror.New(zerolog.Nop()).Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, summaries[0].Deleted)
		assert.FileExists(t, stale)
	})

	t.Run("multiple_destinations_in_order", func(t *testing.T) {
		siteDir := writeSite(t, site)
		a, _ := newLocal(t, "primary")
		b, _ := newLocal(t, "archive")

		summaries, err := mirror.New(zerolog.Nop()).Run(ctx, siteDir, []storage.Backend{a, b}, mirror.Options{})
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "primary", summaries[0].Destination)
		assert.Equal(t, "archive", summaries[1].Destination)
		assert.True(t, summaries[0].OK())
		assert.Equal(t, 3, summaries[1].Uploaded)
	})

	t.Run("failed_upload_is_reported", func(t *testing.T) {
		siteDir := writeSite(t, map[string]string{"index.html": "x"})
		b := mocks.NewMockBackend(t)
		b.On("Name").Return("cdn")
		b.On("Type").Return("mock")
		b.On("Stat", mock.Anything, "index.html").Return(nil, storage.ErrNotFound)
		b.On("Write", mock.Anything, mock.Anything, "index.html").Return(errors.New("boom"))

		summaries, err := mirror.New(zerolog.Nop()).Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{})
		require.ErrorIs(t, err, mirror.ErrIncomplete)
		require.Len(t, summaries, 1)
		assert.Equal(t, 1, summaries[0].Failed)
		assert.False(t, summaries[0].OK())
		assert.Len(t, summaries[0].Errors, 1)
	})

	t.Run("critical_error_aborts", func(t *testing.T) {
		siteDir := writeSite(t, map[string]string{"index.html": "x"})
		b := mocks.NewMockBackend(t)
		b.On("Name").Return("cdn")
		b.On("Type").Return("mock")
		b.On("Stat", mock.Anything, "index.html").Return(nil, storage.ErrNotFound)
		b.On("Write", mock.Anything, mock.Anything, "index.html").Return(storage.ErrAuthFailed)

		_, err := mirror.New(zerolog.Nop()).Run(ctx, siteDir, []storage.Backend{b}, mirror.Options{Prune: true})
		require.ErrorIs(t, err, storage.ErrAuthFailed)
		b.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("missing_site", func(t *testing.T) {
		b, _ := newLocal(t, "webroot")
		_, err := mirror.New(zerolog.Nop()).Run(ctx, filepath.Join(t.TempDir(), "nope"), []storage.Backend{b}, mirror.Options{})
		assert.ErrorIs(t, err, mirror.ErrSiteMissing)
	})
}
