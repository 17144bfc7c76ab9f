package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/logger"
	"github.com/williamokano/docdeploy/pkg/report"
)

// StepName identifies the server update in deploy reports
const StepName = "update-server"

// PullCommand returns the shell command that updates the served checkout
func PullCommand(deployPath string) string {
	return fmt.Sprintf("cd %s && git pull origin gh-pages", shellQuote(deployPath))
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>*?()[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Updater tells the documentation server to pull the latest gh-pages
type Updater struct {
	cfg    config.ServerConfig
	logger zerolog.Logger
}

// NewUpdater creates a new Updater
func NewUpdater(cfg config.ServerConfig, logger zerolog.Logger) *Updater {
	return &Updater{
		cfg:    cfg,
		logger: logger.With().Str("host", cfg.Host).Logger(),
	}
}

// Update runs the pull on the server. Failures are logged and reported in
// the returned step, never returned as errors.
func (u *Updater) Update(ctx context.Context) report.Step {
	u.logger.Info().Str("path", u.cfg.DeployPath).Msg("triggering server update")

	client, err := Dial(ctx, u.cfg)
	if err != nil {
		if errors.Is(err, ErrNoAuth) {
			u.logger.Warn().Msg("no password or key file configured, skipping server update")
			return report.Skipped(StepName, "no SSH credentials configured")
		}
		u.logger.Error().Err(err).Msg("server update failed")
		return report.Failed(StepName, err)
	}
	defer client.Close()

	result, err := client.Run(ctx, PullCommand(u.cfg.DeployPath))
	if err != nil {
		u.logger.Error().Err(err).Msg("server update failed")
		return report.Failed(StepName, err)
	}

	if result.ExitCode == 0 {
		u.logger.Info().Msg("server updated")
		_ = logger.CopyLines(strings.NewReader(result.Stdout), u.logger, zerolog.InfoLevel)
		return report.OK(StepName, strings.TrimSpace(result.Stdout))
	}

	u.logger.Warn().Int("exit_code", result.ExitCode).Msg("server update finished with warnings")
	_ = logger.CopyLines(strings.NewReader(result.Stderr), u.logger, zerolog.WarnLevel)
	return report.Warning(StepName, fmt.Sprintf("exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)))
}
