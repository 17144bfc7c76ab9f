package backblaze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/docdeploy/pkg/storage"
)

func TestParseConfig(t *testing.T) {
	valid := func() map[string]interface{} {
		return map[string]interface{}{
			"account_id":      "acc",
			"application_key": "key",
			"bucket_name":     "docs",
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg, err := parseConfig("b2", "a2c-smcp", valid())
		require.NoError(t, err)
		assert.Equal(t, "acc", cfg.AccountID)
		assert.Equal(t, "key", cfg.ApplicationKey)
		assert.Equal(t, "docs", cfg.BucketName)
		assert.Equal(t, "a2c-smcp", cfg.Prefix)
	})

	for _, key := range []string{"account_id", "application_key", "bucket_name"} {
		t.Run("missing_"+key, func(t *testing.T) {
			opts := valid()
			delete(opts, key)

			_, err := parseConfig("b2", "", opts)
			require.ErrorIs(t, err, storage.ErrInvalidConfig)
			assert.Contains(t, err.Error(), key)
		})
	}
}
