// Package sshconn builds SSH client configurations shared by the SFTP
// mirror destination and the remote server updater.
package sshconn

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultTimeout bounds the TCP dial and SSH handshake
const DefaultTimeout = 30 * time.Second

// ErrNoAuth is returned when neither a password nor a key file is configured
var ErrNoAuth = errors.New("no SSH credentials configured")

// Options describe how to reach and authenticate against an SSH server
type Options struct {
	Host          string
	Port          int
	User          string
	Password      string
	KeyFile       string
	KeyPassphrase string
	KnownHosts    string // optional known_hosts file; host keys are not verified when empty
	Timeout       time.Duration
}

// Address returns host:port, defaulting the port to 22
func (o Options) Address() string {
	port := o.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}

// ClientConfig builds an ssh.ClientConfig. Password auth is offered first
// when both a password and a key are set.
func ClientConfig(opts Options) (*ssh.ClientConfig, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cfg := &ssh.ClientConfig{
		User:            opts.User,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	if opts.KnownHosts != "" {
		callback, err := knownhosts.New(opts.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		cfg.HostKeyCallback = callback
	}

	if opts.Password != "" {
		cfg.Auth = append(cfg.Auth, ssh.Password(opts.Password))
	}

	if opts.KeyFile != "" {
		key, err := os.ReadFile(opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}

		var signer ssh.Signer
		if opts.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(opts.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %w", err)
		}

		cfg.Auth = append(cfg.Auth, ssh.PublicKeys(signer))
	}

	if len(cfg.Auth) == 0 {
		return nil, ErrNoAuth
	}

	return cfg, nil
}

// Dial connects to the server described by opts
func Dial(opts Options) (*ssh.Client, error) {
	cfg, err := ClientConfig(opts)
	if err != nil {
		return nil, err
	}
	return ssh.Dial("tcp", opts.Address(), cfg)
}
