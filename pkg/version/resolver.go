// Package version resolves the project version from its manifest (pyproject.toml).
//
// The manifest is read once per Resolver; the value is cached for the lifetime of
// the resolver until ClearCache is called.
package version

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sync"
)

// DefaultManifest is the manifest file name looked up in the project root
const DefaultManifest = "pyproject.toml"

// Resolver resolves and memoizes the project version
type Resolver struct {
	path       string
	strategies []Strategy

	mu       sync.Mutex
	version  string
	resolved bool
}

// NewResolver creates a resolver for the manifest at path.
// With no strategies given, DefaultStrategies is used.
func NewResolver(path string, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{path: path, strategies: strategies}
}

// Path returns the manifest path
func (r *Resolver) Path() string { return r.path }

// Version returns the project version, reading the manifest only on first use
func (r *Resolver) Version() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.version, nil
	}

	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w at %s (are you in the project root?): %w", ErrManifestNotFound, r.path, err)
		}
		return "", fmt.Errorf("failed to read manifest %s: %w", r.path, err)
	}

	for _, s := range r.strategies {
		v, ok, err := s.Extract(content)
		if err != nil {
			return "", fmt.Errorf("%s (%s): %w", r.path, s.Name(), err)
		}
		if ok {
			r.version = v
			r.resolved = true
			return v, nil
		}
	}

	return "", fmt.Errorf("%s: %w: no strategy matched", r.path, ErrParse)
}

// ClearCache forgets the resolved version so the next call re-reads the manifest
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.version = ""
	r.resolved = false
}

var preReleasePattern = regexp.MustCompile(`(\d+)(rc|alpha|beta)(\d+)`)

// Normalize rewrites the first informal pre-release suffix into hyphenated form,
// e.g. "0.1.2rc1" becomes "0.1.2-rc1"
func Normalize(v string) string {
	loc := preReleasePattern.FindStringSubmatchIndex(v)
	if loc == nil {
		return v
	}
	return v[:loc[0]] + v[loc[2]:loc[3]] + "-" + v[loc[4]:loc[5]] + v[loc[6]:loc[7]] + v[loc[1]:]
}
