package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williamokano/docdeploy/pkg/buildinfo"
	"github.com/williamokano/docdeploy/pkg/version"
)

func (a *app) versionCmd() *cobra.Command {
	var normalize, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the project version read from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.resolver.Version()
			if err != nil {
				return err
			}
			if normalize {
				v = version.Normalize(v)
			}

			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, v)
				return nil
			}

			fmt.Fprintf(out, "%s %s (%s)\n", bold("project:"), v, a.resolver.Path())
			fmt.Fprintf(out, "%s %s\n", bold("tool:"), buildinfo.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&normalize, "normalize", false, "rewrite pre-release suffixes (0.1.2rc1 -> 0.1.2-rc1)")
	cmd.Flags().BoolVar(&short, "short", false, "print only the project version")
	return cmd
}
