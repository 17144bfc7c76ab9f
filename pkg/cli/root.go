// Package cli wires the docdeploy command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/williamokano/docdeploy/pkg/buildinfo"
	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/deploy"
	"github.com/williamokano/docdeploy/pkg/logger"
	"github.com/williamokano/docdeploy/pkg/version"
)

// app holds the global flags and the components shared by subcommands
type app struct {
	manifest  string
	dir       string
	envFile   string
	logLevel  string
	logFormat string

	cfg      *config.DeployConfig
	resolver *version.Resolver
	log      zerolog.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "docdeploy",
		Short:         "Build and publish versioned documentation",
		Long:          "Builds versioned documentation with mkdocs + mike, pushes gh-pages and tells the docs server to pull it.",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.manifest, "manifest", version.DefaultManifest, "project manifest the version is read from, relative to --dir")
	flags.StringVar(&a.dir, "dir", ".", "project directory (mkdocs.yml, git repository)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json (env "+config.EnvLogFormat+")")

	root.AddCommand(
		a.buildCmd(),
		a.serveCmd(),
		a.serveVersionedCmd(),
		a.cleanCmd(),
		a.deployCmd(),
		a.updateServerCmd(),
		a.serverSetupCmd(),
		a.versionCmd(),
		a.mirrorCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	loaded, err := config.LoadDotEnv(a.envFile)
	if err != nil {
		return err
	}

	level := firstNonEmpty(a.logLevel, os.Getenv(config.EnvLogLevel), "info")
	format := firstNonEmpty(a.logFormat, os.Getenv(config.EnvLogFormat), "console")
	logger.Init(level, format)
	a.log = *logger.Get()

	for _, f := range loaded {
		a.log.Debug().Str("file", f).Msg("loaded environment file")
	}

	a.cfg = config.FromOS()
	a.resolver = version.NewResolver(a.manifestPath())
	return nil
}

// manifestPath resolves a relative --manifest against --dir
func (a *app) manifestPath() string {
	if filepath.IsAbs(a.manifest) {
		return a.manifest
	}
	return filepath.Join(a.dir, a.manifest)
}

// targetVersion returns the explicit version or the one from the manifest
func (a *app) targetVersion(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return a.resolver.Version()
}

// Execute runs the CLI and exits non-zero on error
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var verr *deploy.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "\n%s\n", red("❌ Configuration errors:"))
		for _, e := range verr.Errors {
			fmt.Fprintf(w, "   - %s\n", e)
		}
		fmt.Fprintln(w)
		return
	}
	var serr *config.SchemaError
	if errors.As(err, &serr) {
		fmt.Fprintf(w, "\n%s %s\n", red("❌ Invalid config file:"), serr.File)
		for _, e := range serr.Errors {
			fmt.Fprintf(w, "   - %s\n", e)
		}
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red("❌ Error:"), err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
