package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/sshconn"
)

// ErrNoAuth is returned when the server config has neither a password nor a key file
var ErrNoAuth = sshconn.ErrNoAuth

// Result is the outcome of a remote command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Client runs commands on a remote host over SSH
type Client struct {
	conn *ssh.Client
}

// Options maps the server config onto SSH connection options. The password
// is used when set, otherwise the key file.
func Options(cfg config.ServerConfig) sshconn.Options {
	opts := sshconn.Options{
		Host: cfg.Host,
		Port: cfg.Port,
		User: cfg.User,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	} else {
		opts.KeyFile = cfg.KeyFile
	}
	return opts
}

// Dial connects to the configured server
func Dial(ctx context.Context, cfg config.ServerConfig) (*Client, error) {
	opts := Options(cfg)

	clientCfg, err := sshconn.ClientConfig(opts)
	if err != nil {
		return nil, err
	}

	type dialed struct {
		conn *ssh.Client
		err  error
	}
	ch := make(chan dialed, 1)
	go func() {
		conn, err := ssh.Dial("tcp", opts.Address(), clientCfg)
		ch <- dialed{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if d := <-ch; d.conn != nil {
				d.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case d := <-ch:
		if d.err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", opts.Address(), d.err)
		}
		return &Client{conn: d.conn}, nil
	}
}

// Run executes cmd in a new session. A non-zero exit status is reported in
// Result.ExitCode, not as an error.
func (c *Client) Run(ctx context.Context, cmd string) (Result, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		session.Close()
		return Result{}, ctx.Err()
	case err = <-done:
	}

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("failed to run %q: %w", cmd, err)
		}
		result.ExitCode = exitErr.ExitStatus()
	}
	return result, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
