package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// ErrInvalid is returned when a configuration file fails schema validation
var ErrInvalid = errors.New("configuration file is not valid")

// DefaultSiteDir is where mkdocs writes the built site
const DefaultSiteDir = "site"

// Destination describes one mirror target for the built site
type Destination struct {
	Name    string                 `json:"name"`
	Type    string                 `json:"type"`              // local, s3, backblaze, ssh
	Enabled *bool                  `json:"enabled,omitempty"` // defaults to true if omitted
	BaseDir string                 `json:"base_dir,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// IsEnabled returns whether the destination is active (defaults to true)
func (d Destination) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// MirrorConfig is the root structure of the mirror configuration file
type MirrorConfig struct {
	SiteDir              string        `json:"site_dir,omitempty"`
	MaxConcurrentUploads int           `json:"max_concurrent_uploads,omitempty"` // default: 4
	Prune                bool          `json:"prune,omitempty"`
	Destinations         []Destination `json:"destinations"`
}

// GetSiteDir returns the site directory (defaults to "site")
func (m *MirrorConfig) GetSiteDir() string {
	if m.SiteDir != "" {
		return m.SiteDir
	}
	return DefaultSiteDir
}

// GetMaxConcurrentUploads returns the upload concurrency (defaults to 4)
func (m *MirrorConfig) GetMaxConcurrentUploads() int {
	if m.MaxConcurrentUploads > 0 {
		return m.MaxConcurrentUploads
	}
	return 4
}

// StorageConfigs converts enabled destinations into storage backend configs.
// String options of the form ${VAR} are expanded from the environment so that
// credentials can stay out of the file.
func (m *MirrorConfig) StorageConfigs(lookup LookupFunc) []storage.Config {
	var configs []storage.Config
	for _, d := range m.Destinations {
		if !d.IsEnabled() {
			continue
		}
		configs = append(configs, storage.Config{
			Name:    d.Name,
			Type:    d.Type,
			Enabled: true,
			BaseDir: d.BaseDir,
			Options: expandOptions(d.Options, lookup),
		})
	}
	return configs
}

func expandOptions(options map[string]interface{}, lookup LookupFunc) map[string]interface{} {
	out := make(map[string]interface{}, len(options))
	for k, v := range options {
		s, ok := v.(string)
		if !ok || !strings.Contains(s, "${") {
			out[k] = v
			continue
		}
		out[k] = os.Expand(s, func(name string) string {
			val, _ := lookup(name)
			return val
		})
	}
	return out
}

// SchemaError lists every schema violation found in a configuration file
type SchemaError struct {
	File   string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s (%d errors)", e.File, ErrInvalid.Error(), len(e.Errors))
}

func (e *SchemaError) Unwrap() error { return ErrInvalid }

// ValidateMirrorFile validates raw configuration bytes against MirrorSchema
func ValidateMirrorFile(name string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(MirrorSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		schemaErr := &SchemaError{File: name}
		for _, desc := range result.Errors() {
			schemaErr.Errors = append(schemaErr.Errors, desc.String())
		}
		return schemaErr
	}

	return nil
}

// LoadMirrorConfig reads, validates and parses a mirror configuration file
func LoadMirrorConfig(path string) (*MirrorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := ValidateMirrorFile(path, data); err != nil {
		return nil, err
	}

	var cfg MirrorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if dups := cfg.duplicateNames(); len(dups) > 0 {
		schemaErr := &SchemaError{File: path}
		for _, name := range dups {
			schemaErr.Errors = append(schemaErr.Errors, fmt.Sprintf("destinations: name %q is used more than once", name))
		}
		return nil, schemaErr
	}

	return &cfg, nil
}

// duplicateNames returns destination names that appear more than once, in file order
func (m *MirrorConfig) duplicateNames() []string {
	seen := make(map[string]int, len(m.Destinations))
	var dups []string
	for _, d := range m.Destinations {
		seen[d.Name]++
		if seen[d.Name] == 2 {
			dups = append(dups, d.Name)
		}
	}
	return dups
}
