package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvServerHost     = "DOCS_SERVER_HOST"
	EnvServerPort     = "DOCS_SERVER_PORT"
	EnvServerUser     = "DOCS_SERVER_USER"
	EnvServerPassword = "DOCS_SERVER_PASSWORD"
	EnvServerKeyFile  = "DOCS_SERVER_KEY_FILE"
	EnvDeployPath     = "DOCS_DEPLOY_PATH"
	EnvWebhookURL     = "WECOM_WEBHOOK_URL"
	EnvGitToken       = "DOCS_GIT_TOKEN"
	EnvLogLevel       = "DOCS_LOG_LEVEL"
	EnvLogFormat      = "DOCS_LOG_FORMAT"
)

// Defaults for optional settings
const (
	DefaultPort       = 22
	DefaultUser       = "root"
	DefaultDeployPath = "/var/www/doc.turingfocus.cn/a2c-smcp"
)

// LookupFunc reads a single environment variable; os.LookupEnv satisfies it
type LookupFunc func(key string) (string, bool)

// ServerConfig holds the SSH connection settings for the documentation host
type ServerConfig struct {
	Host       string
	Port       int
	User       string
	Password   string // preferred over KeyFile when both are set
	KeyFile    string
	DeployPath string
}

// WebhookConfig holds the WeCom robot webhook settings
type WebhookConfig struct {
	URL string
}

// DeployConfig is the root deployment configuration
type DeployConfig struct {
	Server  ServerConfig
	Webhook *WebhookConfig // nil when notifications are disabled
	Version string         // filled in once the target version is known

	GitToken string

	portErr error
}

// FromOS loads the configuration from the process environment
func FromOS() *DeployConfig {
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a configuration from environment variables, applying defaults
// for optional fields. It never fails; problems surface through Validate.
func FromEnv(lookup LookupFunc) *DeployConfig {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := &DeployConfig{
		Server: ServerConfig{
			Host:       get(EnvServerHost, ""),
			Port:       DefaultPort,
			User:       get(EnvServerUser, DefaultUser),
			Password:   get(EnvServerPassword, ""),
			KeyFile:    get(EnvServerKeyFile, ""),
			DeployPath: get(EnvDeployPath, DefaultDeployPath),
		},
		GitToken: get(EnvGitToken, ""),
	}

	if raw := get(EnvServerPort, ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			cfg.portErr = fmt.Errorf("%s must be an integer, got %q", EnvServerPort, raw)
		} else {
			cfg.Server.Port = port
		}
	}

	if url := get(EnvWebhookURL, ""); url != "" {
		cfg.Webhook = &WebhookConfig{URL: url}
	}

	return cfg
}

// Validate checks that the configuration is complete enough to deploy.
// An empty result means the configuration is valid.
func (c *DeployConfig) Validate() []string {
	var errs []string

	if c.Server.Host == "" {
		errs = append(errs, fmt.Sprintf("%s is not set (server host is required)", EnvServerHost))
	}

	if c.Server.Password == "" && c.Server.KeyFile == "" {
		errs = append(errs, fmt.Sprintf("at least one of %s or %s must be set (no SSH credentials)", EnvServerPassword, EnvServerKeyFile))
	}

	if c.portErr != nil {
		errs = append(errs, c.portErr.Error())
	} else if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("%s must be between 1 and 65535, got %d", EnvServerPort, c.Server.Port))
	}

	return errs
}

// Address returns host:port for dialing
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
