package s3

import "github.com/williamokano/docdeploy/pkg/storage"

// Config holds S3 destination options
type Config struct {
	Endpoint        string `json:"endpoint"`          // Optional: MinIO, LocalStack, R2...
	Region          string `json:"region"`            // AWS region
	Bucket          string `json:"bucket"`            // Bucket serving the docs
	Prefix          string `json:"prefix"`            // Object key prefix
	AccessKeyID     string `json:"access_key_id"`     // Optional: falls back to the default credential chain
	SecretAccessKey string `json:"secret_access_key"` // Optional
	ForcePathStyle  bool   `json:"force_path_style"`  // For MinIO / LocalStack
	CacheControl    string `json:"cache_control"`     // Optional Cache-Control header for every object
}

func parseConfig(name string, baseDir string, options map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	var ok bool
	if cfg.Region, ok = options["region"].(string); !ok || cfg.Region == "" {
		return nil, storage.MissingOption(name, "region")
	}
	if cfg.Bucket, ok = options["bucket"].(string); !ok || cfg.Bucket == "" {
		return nil, storage.MissingOption(name, "bucket")
	}

	cfg.Endpoint, _ = options["endpoint"].(string)
	cfg.Prefix, _ = options["prefix"].(string)
	cfg.AccessKeyID, _ = options["access_key_id"].(string)
	cfg.SecretAccessKey, _ = options["secret_access_key"].(string)
	cfg.ForcePathStyle, _ = options["force_path_style"].(bool)
	cfg.CacheControl, _ = options["cache_control"].(string)

	if cfg.Prefix == "" {
		cfg.Prefix = baseDir
	}

	return cfg, nil
}
