// Package mirror copies a built documentation site to one or more storage
// destinations, skipping files that are already up to date and optionally
// pruning remote files that no longer exist locally.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// DefaultMaxConcurrent is used when Options.MaxConcurrent is not positive
const DefaultMaxConcurrent = 4

var (
	// ErrSiteMissing is returned when the site directory does not exist
	ErrSiteMissing = errors.New("site directory not found (run build first)")

	// ErrIncomplete is returned when at least one file operation failed
	ErrIncomplete = errors.New("mirror incomplete")
)

// Options controls a mirror run
type Options struct {
	Prune         bool
	MaxConcurrent int
}

// Summary counts file operations for one destination
type Summary struct {
	Destination string
	Type        string
	Uploaded    int
	Skipped     int
	Deleted     int
	Failed      int
	Errors      []error
}

// OK reports whether every operation on this destination succeeded
func (s Summary) OK() bool {
	return s.Failed == 0
}

// LocalFile is a file of the built site
type LocalFile struct {
	Path    string // slash-separated, relative to the site root
	Abs     string
	Size    int64
	ModTime time.Time
}

// Mirror uploads a site tree to storage backends
type Mirror struct {
	uploader *storage.MultiUploader
	logger   zerolog.Logger
}

// New creates a new Mirror
func New(logger zerolog.Logger) *Mirror {
	return &Mirror{
		uploader: storage.NewMultiUploader(logger),
		logger:   logger,
	}
}

// Scan returns every regular file below siteDir
func Scan(siteDir string) ([]LocalFile, error) {
	info, err := os.Stat(siteDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSiteMissing, siteDir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSiteMissing, siteDir)
	}

	var files []LocalFile
	err = filepath.WalkDir(siteDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(siteDir, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, LocalFile{
			Path:    filepath.ToSlash(rel),
			Abs:     p,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", siteDir, err)
	}

	return files, nil
}

// Run mirrors siteDir to every backend. Summaries are returned in backend order.
// A critical storage error (bad credentials, invalid config) aborts the run.
func (m *Mirror) Run(ctx context.Context, siteDir string, backends []storage.Backend, opts Options) ([]Summary, error) {
	files, err := Scan(siteDir)
	if err != nil {
		return nil, err
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	m.logger.Info().
		Str("site", siteDir).
		Int("files", len(files)).
		Int("destinations", len(backends)).
		Int("max_concurrent", maxConcurrent).
		Bool("prune", opts.Prune).
		Msg("starting mirror")

	tally := newTally(backends)
	start := time.Now()

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gCtx := errgroup.WithContext(ctx)

	for _, f := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return fmt.Errorf("failed to acquire semaphore: %w", err)
			}
			defer sem.Release(1)

			results := m.uploader.Upload(gCtx, backends, f.Abs, f.Path, f.Size, f.ModTime)
			for _, r := range results {
				tally.recordUpload(r)
				if r.Error != nil && storage.IsCritical(r.Error) {
					return fmt.Errorf("%s: %w", r.BackendName, r.Error)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tally.summaries(), err
	}

	if opts.Prune {
		local := make(map[string]struct{}, len(files))
		for _, f := range files {
			local[f.Path] = struct{}{}
		}
		for _, b := range backends {
			if err := m.prune(ctx, b, local, tally); err != nil {
				return tally.summaries(), err
			}
		}
	}

	summaries := tally.summaries()

	failed := 0
	for _, s := range summaries {
		m.logger.Info().
			Str("destination", s.Destination).
			Int("uploaded", s.Uploaded).
			Int("skipped", s.Skipped).
			Int("deleted", s.Deleted).
			Int("failed", s.Failed).
			Msg("destination mirrored")
		failed += s.Failed
	}

	m.logger.Info().
		Dur("duration", time.Since(start)).
		Int("failed", failed).
		Msg("mirror completed")

	if failed > 0 {
		return summaries, fmt.Errorf("%w: %d file operations failed", ErrIncomplete, failed)
	}
	return summaries, nil
}

// prune deletes remote files that are not part of the local site
func (m *Mirror) prune(ctx context.Context, b storage.Backend, local map[string]struct{}, t *tally) error {
	remote, err := b.List(ctx, "")
	if err != nil {
		if storage.IsCritical(err) {
			return fmt.Errorf("%s: %w", b.Name(), err)
		}
		t.recordFailure(b.Name(), err)
		return nil
	}

	for _, f := range remote {
		if _, ok := local[f.Path]; ok {
			continue
		}

		m.logger.Debug().Str("destination", b.Name()).Str("file", f.Path).Msg("pruning")
		for _, r := range m.uploader.Delete(ctx, []storage.Backend{b}, f.Path) {
			t.recordDelete(r)
		}
	}
	return nil
}

type tally struct {
	mu    sync.Mutex
	order []string
	byKey map[string]*Summary
}

func newTally(backends []storage.Backend) *tally {
	t := &tally{byKey: make(map[string]*Summary, len(backends))}
	for _, b := range backends {
		t.order = append(t.order, b.Name())
		t.byKey[b.Name()] = &Summary{Destination: b.Name(), Type: b.Type()}
	}
	return t
}

func (t *tally) recordUpload(r storage.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.byKey[r.BackendName]
	switch {
	case r.Error != nil:
		s.Failed++
		s.Errors = append(s.Errors, fmt.Errorf("%s: %w", r.Path, r.Error))
	case r.Skipped:
		s.Skipped++
	default:
		s.Uploaded++
	}
}

func (t *tally) recordDelete(r storage.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.byKey[r.BackendName]
	if r.Error != nil {
		s.Failed++
		s.Errors = append(s.Errors, fmt.Errorf("delete %s: %w", r.Path, r.Error))
		return
	}
	s.Deleted++
}

func (t *tally) recordFailure(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.byKey[name]
	s.Failed++
	s.Errors = append(s.Errors, err)
}

func (t *tally) summaries() []Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Summary, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.byKey[name])
	}
	return out
}
