// Package deploy orchestrates a documentation release: sync gh-pages, build
// the version with mike, push, tell the server to pull, and notify.
package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/gitops"
	"github.com/williamokano/docdeploy/pkg/notify"
	"github.com/williamokano/docdeploy/pkg/report"
)

// Step names used in reports. The server step is named by remote.StepName.
const (
	StepSync   = "sync-gh-pages"
	StepBuild  = "build"
	StepPush   = "push"
	StepNotify = "notify"
)

// DefaultAlias is the mike alias applied when none is given
const DefaultAlias = "latest"

// VersionSource resolves the project version
type VersionSource interface {
	Version() (string, error)
}

// Builder publishes a version into the local gh-pages branch
type Builder interface {
	Build(ctx context.Context, version, alias string) error
}

// Git syncs and pushes branches
type Git interface {
	SyncBranch(ctx context.Context, remote, branch string) (bool, error)
	PushBranch(ctx context.Context, remote, branch string) error
}

// ServerUpdater makes the documentation server pick up the new branch
type ServerUpdater interface {
	Update(ctx context.Context) report.Step
}

// Notifier sends a message to humans
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// ValidationError lists every configuration problem found before deploying
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration:\n  - " + strings.Join(e.Errors, "\n  - ")
}

// Options for a single deploy
type Options struct {
	Version string // resolved from the manifest when empty
	Alias   string // blank disables the alias
	Push    bool
}

// DefaultOptions returns alias "latest" with push enabled
func DefaultOptions() Options {
	return Options{Alias: DefaultAlias, Push: true}
}

// Deployer runs the deploy pipeline
type Deployer struct {
	cfg      *config.DeployConfig
	versions VersionSource
	builder  Builder
	git      Git
	server   ServerUpdater
	notifier Notifier // nil disables notifications
	logger   zerolog.Logger
}

// New creates a Deployer. notifier may be nil.
func New(cfg *config.DeployConfig, versions VersionSource, builder Builder, git Git, server ServerUpdater, notifier Notifier, logger zerolog.Logger) *Deployer {
	return &Deployer{
		cfg:      cfg,
		versions: versions,
		builder:  builder,
		git:      git,
		server:   server,
		notifier: notifier,
		logger:   logger,
	}
}

// Deploy runs the pipeline. Configuration problems return *ValidationError
// before anything touches the network. Sync, server update and notification
// problems are recorded in the report without failing the deploy.
func (d *Deployer) Deploy(ctx context.Context, opts Options) (*report.Report, error) {
	version := opts.Version
	if version == "" {
		v, err := d.versions.Version()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve version: %w", err)
		}
		version = v
	}
	d.cfg.Version = version

	rep := &report.Report{Version: version, Alias: opts.Alias}
	log := d.logger.With().Str("version", version).Logger()
	log.Info().Str("alias", opts.Alias).Bool("push", opts.Push).Msg("deploying documentation")

	if errs := d.cfg.Validate(); len(errs) > 0 {
		return rep, &ValidationError{Errors: errs}
	}

	rep.Add(timed(func() report.Step {
		synced, err := d.git.SyncBranch(ctx, gitops.DefaultRemote, gitops.DefaultBranch)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("failed to sync gh-pages, continuing")
			s := report.Warning(StepSync, "sync failed")
			s.Err = err
			return s
		case !synced:
			return report.Skipped(StepSync, "remote branch does not exist")
		default:
			return report.OK(StepSync, "")
		}
	}))

	build := timed(func() report.Step {
		if err := d.builder.Build(ctx, version, opts.Alias); err != nil {
			return report.Failed(StepBuild, err)
		}
		return report.OK(StepBuild, "")
	})
	rep.Add(build)
	if build.Err != nil {
		return rep, build.Err
	}

	if opts.Push {
		push := timed(func() report.Step {
			if err := d.git.PushBranch(ctx, gitops.DefaultRemote, gitops.DefaultBranch); err != nil {
				return report.Failed(StepPush, err)
			}
			return report.OK(StepPush, "")
		})
		rep.Add(push)
		if push.Err != nil {
			return rep, push.Err
		}
	} else {
		log.Warn().Msg("skipping git push (--push=false)")
		rep.Add(report.Skipped(StepPush, "--push=false"))
	}

	rep.Add(timed(func() report.Step { return d.server.Update(ctx) }))

	rep.Add(d.notify(ctx, version, opts.Alias))

	log.Info().Msg("deploy completed")
	return rep, nil
}

// UpdateServer runs only the server update step
func (d *Deployer) UpdateServer(ctx context.Context) report.Step {
	return timed(func() report.Step { return d.server.Update(ctx) })
}

func (d *Deployer) notify(ctx context.Context, version, alias string) report.Step {
	if d.notifier == nil {
		return report.Skipped(StepNotify, "no webhook configured")
	}

	msg := notify.DeployMessage(version, alias, d.cfg.Server.Host, d.cfg.Server.DeployPath)
	if err := d.notifier.Send(ctx, msg); err != nil {
		d.logger.Warn().Err(err).Msg("failed to send notification")
		s := report.Warning(StepNotify, "webhook failed")
		s.Err = err
		return s
	}
	return report.OK(StepNotify, "")
}

func timed(fn func() report.Step) report.Step {
	start := time.Now()
	s := fn()
	s.Duration = time.Since(start)
	return s
}
