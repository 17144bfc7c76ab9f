package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williamokano/docdeploy/pkg/builder"
	"github.com/williamokano/docdeploy/pkg/deploy"
)

func (a *app) builder() *builder.Builder {
	return builder.New(builder.NewExecRunner(a.log), a.log, builder.WithDir(a.dir))
}

func (a *app) buildCmd() *cobra.Command {
	var ver, alias string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the docs for a version into the local gh-pages branch (mike deploy)",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.targetVersion(ver)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🔨 Building docs (version=%s, alias=%s)\n", cyan(target), cyan(alias))
			if err := a.builder().Build(cmd.Context(), target, alias); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("✅ Docs built"))
			return nil
		},
	}

	cmd.Flags().StringVar(&ver, "version", "", "version to build (default: from the manifest)")
	cmd.Flags().StringVar(&alias, "alias", deploy.DefaultAlias, "version alias; empty disables the alias")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the mkdocs dev server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.builder().Serve(cmd.Context())
		},
	}
}

func (a *app) serveVersionedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-versioned",
		Short: "Start the mike multi-version preview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.builder().ServeVersioned(cmd.Context())
		},
	}
}

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the build output (site/)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.builder().Clean(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("✅ Cleaned"))
			return nil
		},
	}
}
