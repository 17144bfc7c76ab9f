package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/williamokano/docdeploy/pkg/logger"
)

// Command is an external program invocation
type Command struct {
	Name        string
	Args        []string
	Dir         string
	Interactive bool // attach to the terminal instead of the logger
}

// String renders the command line for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external commands
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a runner that streams command output into logger
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes cmd and waits for it to finish
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = os.Environ()

	cmdLog := r.logger.With().Str("cmd", cmd.Name).Logger()
	cmdLog.Debug().Str("command", cmd.String()).Msg("running")

	if cmd.Interactive {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("%s: %w", cmd.String(), err)
		}
		return nil
	}

	stdout := logger.NewLineWriter(cmdLog, zerolog.InfoLevel)
	stderr := logger.NewLineWriter(cmdLog, zerolog.WarnLevel)
	c.Stdout = stdout
	c.Stderr = stderr

	err := c.Run()
	stdout.Close()
	stderr.Close()

	if err != nil {
		return fmt.Errorf("%s: %w", cmd.String(), err)
	}
	return nil
}
