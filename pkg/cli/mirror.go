package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/mirror"
	"github.com/williamokano/docdeploy/pkg/storage"

	_ "github.com/williamokano/docdeploy/pkg/storage/backblaze"
	_ "github.com/williamokano/docdeploy/pkg/storage/local"
	_ "github.com/williamokano/docdeploy/pkg/storage/s3"
	_ "github.com/williamokano/docdeploy/pkg/storage/ssh"
)

// DefaultMirrorConfig is the mirror destinations file
const DefaultMirrorConfig = "docdeploy.json"

func (a *app) mirrorCmd() *cobra.Command {
	var (
		configPath    string
		siteDir       string
		prune         bool
		maxConcurrent int
	)

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy the built site to the destinations listed in the mirror config",
		RunE: func(cmd *cobra.Command, args []string) error {
			mcfg, err := config.LoadMirrorConfig(configPath)
			if err != nil {
				return err
			}

			opts := mirror.Options{
				Prune:         mcfg.Prune,
				MaxConcurrent: mcfg.GetMaxConcurrentUploads(),
			}
			if cmd.Flags().Changed("prune") {
				opts.Prune = prune
			}
			if cmd.Flags().Changed("max-concurrent") {
				opts.MaxConcurrent = maxConcurrent
			}

			site := siteDir
			if site == "" {
				site = mcfg.GetSiteDir()
				if !filepath.IsAbs(site) {
					site = filepath.Join(a.dir, site)
				}
			}

			// check before connecting to any destination
			if _, err := mirror.Scan(site); err != nil {
				return err
			}

			configs := mcfg.StorageConfigs(os.LookupEnv)
			if len(configs) == 0 {
				return errors.New("no enabled destinations in " + configPath)
			}

			backends, err := storage.NewFactory().CreateAll(cmd.Context(), configs)
			if err != nil {
				return err
			}
			defer storage.CloseAll(backends)

			summaries, err := mirror.New(a.log).Run(cmd.Context(), site, backends, opts)
			printMirrorSummaries(cmd.OutOrStdout(), summaries)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), green("✅ Mirror complete"))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", DefaultMirrorConfig, "mirror destinations file (JSON)")
	cmd.Flags().StringVar(&siteDir, "site", "", "site directory to mirror (default: site_dir from the config)")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete remote files that no longer exist locally")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", mirror.DefaultMaxConcurrent, "parallel uploads")
	return cmd
}
