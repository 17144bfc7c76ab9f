package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/williamokano/docdeploy/pkg/deploy"
	"github.com/williamokano/docdeploy/pkg/gitops"
	"github.com/williamokano/docdeploy/pkg/notify"
	"github.com/williamokano/docdeploy/pkg/remote"
)

// lazyRepo opens the git repository on first use, so a deploy with an
// invalid configuration fails on validation rather than on git
type lazyRepo struct {
	open func() (*gitops.Repo, error)

	once sync.Once
	repo *gitops.Repo
	err  error
}

func (l *lazyRepo) get() (*gitops.Repo, error) {
	l.once.Do(func() { l.repo, l.err = l.open() })
	return l.repo, l.err
}

func (l *lazyRepo) SyncBranch(ctx context.Context, remoteName, branch string) (bool, error) {
	repo, err := l.get()
	if err != nil {
		return false, err
	}
	return repo.SyncBranch(ctx, remoteName, branch)
}

func (l *lazyRepo) PushBranch(ctx context.Context, remoteName, branch string) error {
	repo, err := l.get()
	if err != nil {
		return err
	}
	return repo.PushBranch(ctx, remoteName, branch)
}

func (a *app) deployer() *deploy.Deployer {
	var notifier deploy.Notifier
	if a.cfg.Webhook != nil {
		notifier = notify.NewWeCom(a.cfg.Webhook.URL, nil)
	}

	repo := &lazyRepo{open: func() (*gitops.Repo, error) {
		return gitops.Open(a.dir, a.log, gitops.WithToken(a.cfg.GitToken))
	}}

	return deploy.New(
		a.cfg,
		a.resolver,
		a.builder(),
		repo,
		remote.NewUpdater(a.cfg.Server, a.log),
		notifier,
		a.log,
	)
}

func (a *app) deployCmd() *cobra.Command {
	opts := deploy.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Sync gh-pages, build, push and update the docs server",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🚀 Deploying docs\n")

			rep, err := a.deployer().Deploy(cmd.Context(), opts)
			if rep != nil && len(rep.Steps) > 0 {
				printReport(out, rep)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, green("✅ Deploy complete"))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Version, "version", "", "version to deploy (default: from the manifest)")
	cmd.Flags().StringVar(&opts.Alias, "alias", opts.Alias, "version alias; empty disables the alias")
	cmd.Flags().BoolVar(&opts.Push, "push", opts.Push, "push gh-pages to origin")
	return cmd
}

func (a *app) updateServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-server-task",
		Short: "Tell the docs server to git pull gh-pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			step := a.deployer().UpdateServer(cmd.Context())
			printStep(cmd.OutOrStdout(), step)
			return nil
		},
	}
}

func (a *app) serverSetupCmd() *cobra.Command {
	var repoURL string

	cmd := &cobra.Command{
		Use:   "server-setup",
		Short: "Print the one-time server initialization steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", bold("🖥️  Server initialization steps:"))

			for i, step := range deploy.ServerSetupGuide(a.cfg.Server, repoURL) {
				fmt.Fprintf(out, "%d. %s:\n", i+1, step.Title)
				for _, c := range step.Commands {
					fmt.Fprintf(out, "   %s\n", cyan(c))
				}
				fmt.Fprintln(out)
			}

			if missing := a.cfg.Validate(); len(missing) > 0 {
				fmt.Fprintf(out, "%s\n   %s\n", yellow("⚠ Before deploying, fix:"), strings.Join(missing, "\n   "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo-url", deploy.DefaultRepoURL, "repository the server clones gh-pages from")
	return cmd
}
