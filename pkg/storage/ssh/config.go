package ssh

import "github.com/williamokano/docdeploy/pkg/storage"

// Config holds SFTP destination options
type Config struct {
	Host          string `json:"host"`
	Port          int    `json:"port"` // Default: 22
	User          string `json:"user"`
	Password      string `json:"password"`       // Optional
	KeyPath       string `json:"key_path"`       // Optional: path to private key
	KeyPassphrase string `json:"key_passphrase"` // Optional
	KnownHosts    string `json:"known_hosts"`    // Optional: known_hosts file for host key verification
	RemotePath    string `json:"remote_path"`    // Base directory on remote server
}

func parseConfig(name, baseDir string, options map[string]interface{}) (*Config, error) {
	cfg := &Config{Port: 22}

	var ok bool
	if cfg.Host, ok = options["host"].(string); !ok || cfg.Host == "" {
		return nil, storage.MissingOption(name, "host")
	}
	if cfg.User, ok = options["user"].(string); !ok || cfg.User == "" {
		return nil, storage.MissingOption(name, "user")
	}

	cfg.RemotePath, _ = options["remote_path"].(string)
	if cfg.RemotePath == "" {
		cfg.RemotePath = baseDir
	}
	if cfg.RemotePath == "" {
		return nil, storage.MissingOption(name, "remote_path")
	}

	cfg.Password, _ = options["password"].(string)
	cfg.KeyPath, _ = options["key_path"].(string)
	cfg.KeyPassphrase, _ = options["key_passphrase"].(string)
	cfg.KnownHosts, _ = options["known_hosts"].(string)

	// JSON numbers decode as float64
	if v, ok := options["port"].(float64); ok {
		cfg.Port = int(v)
	}

	return cfg, nil
}
