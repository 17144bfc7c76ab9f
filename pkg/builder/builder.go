// Package builder drives the external documentation tools: mkdocs for
// local previews and mike for versioned builds into the gh-pages branch.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultSiteDir is where mkdocs writes the static site
const DefaultSiteDir = "site"

// Builder runs mkdocs and mike
type Builder struct {
	runner  Runner
	dir     string
	siteDir string
	logger  zerolog.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithDir sets the working directory for every command
func WithDir(dir string) Option {
	return func(b *Builder) { b.dir = dir }
}

// WithSiteDir overrides the directory removed by Clean
func WithSiteDir(dir string) Option {
	return func(b *Builder) { b.siteDir = dir }
}

// New creates a new Builder
func New(runner Runner, logger zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{
		runner:  runner,
		siteDir: DefaultSiteDir,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildCommand returns the mike invocation that publishes version into the
// local gh-pages branch. A blank alias is left out.
func BuildCommand(version, alias string) Command {
	args := []string{"deploy", version}
	if strings.TrimSpace(alias) != "" {
		args = append(args, alias)
	}
	args = append(args, "--update-aliases")
	return Command{Name: "mike", Args: args}
}

// Build runs mike deploy for version
func (b *Builder) Build(ctx context.Context, version, alias string) error {
	if version == "" {
		return fmt.Errorf("build: version is required")
	}

	b.logger.Info().Str("version", version).Str("alias", alias).Msg("building documentation")

	cmd := BuildCommand(version, alias)
	cmd.Dir = b.dir
	if err := b.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	b.logger.Info().Str("version", version).Msg("documentation built")
	return nil
}

// Serve starts the mkdocs development server
func (b *Builder) Serve(ctx context.Context) error {
	b.logger.Info().Msg("starting mkdocs dev server (http://127.0.0.1:8000)")
	return b.runner.Run(ctx, Command{Name: "mkdocs", Args: []string{"serve"}, Dir: b.dir, Interactive: true})
}

// ServeVersioned starts the mike multi-version preview server
func (b *Builder) ServeVersioned(ctx context.Context) error {
	b.logger.Info().Msg("starting mike versioned server (http://127.0.0.1:8000)")
	return b.runner.Run(ctx, Command{Name: "mike", Args: []string{"serve"}, Dir: b.dir, Interactive: true})
}

// SiteDir returns the build output directory
func (b *Builder) SiteDir() string {
	if b.dir == "" || filepath.IsAbs(b.siteDir) {
		return b.siteDir
	}
	return filepath.Join(b.dir, b.siteDir)
}

// Clean removes the build output. A missing directory is not an error.
func (b *Builder) Clean() error {
	dir := b.SiteDir()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	b.logger.Info().Str("dir", dir).Msg("build output removed")
	return nil
}
