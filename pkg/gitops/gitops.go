// Package gitops syncs and pushes the gh-pages branch with go-git, so the
// deploy flow does not depend on a git binary for its remote operations.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"
)

const (
	// DefaultRemote is the remote gh-pages is synced with
	DefaultRemote = "origin"

	// DefaultBranch is the branch mike publishes into
	DefaultBranch = "gh-pages"
)

// ErrRemoteNotFound is returned when the named remote is not configured
var ErrRemoteNotFound = errors.New("remote not found")

// Repo wraps a local git repository
type Repo struct {
	repo   *git.Repository
	path   string
	token  string
	logger zerolog.Logger
}

// Option configures a Repo
type Option func(*Repo)

// WithToken authenticates HTTP(S) remotes with a personal access token
func WithToken(token string) Option {
	return func(r *Repo) { r.token = token }
}

// Open opens the repository containing path
func Open(path string, logger zerolog.Logger, opts ...Option) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}

	r := &Repo{repo: repo, path: path, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func branchRefSpec(branch string) config.RefSpec {
	return config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
}

func (r *Repo) remote(name string) (*git.Remote, error) {
	rem, err := r.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
		}
		return nil, err
	}
	return rem, nil
}

// auth returns token auth for HTTP(S) remotes, nil otherwise (go-git
// falls back to ssh-agent for ssh URLs)
func (r *Repo) auth(rem *git.Remote) transport.AuthMethod {
	if r.token == "" {
		return nil
	}
	urls := rem.Config().URLs
	if len(urls) == 0 || !strings.HasPrefix(urls[0], "http") {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: r.token}
}

// RemoteHasBranch reports whether branch exists on the remote
func (r *Repo) RemoteHasBranch(ctx context.Context, remoteName, branch string) (bool, error) {
	rem, err := r.remote(remoteName)
	if err != nil {
		return false, err
	}

	refs, err := rem.ListContext(ctx, &git.ListOptions{Auth: r.auth(rem)})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return false, nil
		}
		return false, fmt.Errorf("failed to list %s: %w", remoteName, err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// SyncBranch fast-forwards the local branch from the remote. It returns
// false without error when the remote branch does not exist yet.
func (r *Repo) SyncBranch(ctx context.Context, remoteName, branch string) (bool, error) {
	log := r.logger.With().Str("remote", remoteName).Str("branch", branch).Logger()
	log.Info().Msg("syncing branch from remote")

	exists, err := r.RemoteHasBranch(ctx, remoteName, branch)
	if err != nil {
		return false, err
	}
	if !exists {
		log.Info().Msg("remote branch does not exist, skipping sync (first deploy)")
		return false, nil
	}

	rem, err := r.remote(remoteName)
	if err != nil {
		return false, err
	}

	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(branch)},
		Auth:       r.auth(rem),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("failed to fetch %s/%s: %w", remoteName, branch, err)
	}

	log.Info().Msg("branch synced")
	return true, nil
}

// PushBranch pushes the local branch to the remote
func (r *Repo) PushBranch(ctx context.Context, remoteName, branch string) error {
	rem, err := r.remote(remoteName)
	if err != nil {
		return err
	}

	r.logger.Info().Str("remote", remoteName).Str("branch", branch).Msg("pushing branch")

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{branchRefSpec(branch)},
		Auth:       r.auth(rem),
	})
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			r.logger.Info().Msg("remote already up to date")
			return nil
		}
		return fmt.Errorf("failed to push %s to %s: %w", branch, remoteName, err)
	}
	return nil
}

// BranchHash returns the commit the local branch points at
func (r *Repo) BranchHash(branch string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}
