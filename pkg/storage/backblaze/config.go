package backblaze

import "github.com/williamokano/docdeploy/pkg/storage"

// Config holds Backblaze B2 destination options
type Config struct {
	AccountID      string `json:"account_id"`
	ApplicationKey string `json:"application_key"`
	BucketName     string `json:"bucket_name"`
	Prefix         string `json:"prefix"`
}

func parseConfig(name, baseDir string, options map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	required := map[string]*string{
		"account_id":      &cfg.AccountID,
		"application_key": &cfg.ApplicationKey,
		"bucket_name":     &cfg.BucketName,
	}
	for _, key := range []string{"account_id", "application_key", "bucket_name"} {
		v, ok := options[key].(string)
		if !ok || v == "" {
			return nil, storage.MissingOption(name, key)
		}
		*required[key] = v
	}

	cfg.Prefix, _ = options["prefix"].(string)
	if cfg.Prefix == "" {
		cfg.Prefix = baseDir
	}

	return cfg, nil
}
