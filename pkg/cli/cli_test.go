package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/docdeploy/pkg/config"
	"github.com/williamokano/docdeploy/pkg/deploy"
	"github.com/williamokano/docdeploy/pkg/mirror"
	"github.com/williamokano/docdeploy/pkg/remote"
	"github.com/williamokano/docdeploy/pkg/report"
	"github.com/williamokano/docdeploy/pkg/version"
)

// run executes the command tree with an isolated env file and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))

	err := root.Execute()
	return out.String(), err
}

func clearServerEnv(t *testing.T) {
	for _, key := range []string{
		config.EnvServerHost, config.EnvServerPort, config.EnvServerUser, config.EnvServerPassword,
		config.EnvServerKeyFile, config.EnvDeployPath, config.EnvWebhookURL, config.EnvGitToken,
	} {
		t.Setenv(key, "")
	}
}

func TestVersionCmd(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[project]\nname = \"a2c-smcp\"\nversion = \"0.1.2rc1\"\n"), 0o644))

	t.Run("short_normalized", func(t *testing.T) {
		out, err := run(t, "--manifest", manifest, "version", "--short", "--normalize")
		require.NoError(t, err)
		assert.Equal(t, "0.1.2-rc1\n", out)
	})

	t.Run("raw", func(t *testing.T) {
		out, err := run(t, "--manifest", manifest, "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, "0.1.2rc1\n", out)
	})

	t.Run("full", func(t *testing.T) {
		out, err := run(t, "--manifest", manifest, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "0.1.2rc1")
		assert.Contains(t, out, "docdeploy")
	})

	t.Run("missing_manifest", func(t *testing.T) {
		_, err := run(t, "--manifest", filepath.Join(t.TempDir(), "pyproject.toml"), "version")
		assert.ErrorIs(t, err, version.ErrManifestNotFound)
	})

	t.Run("relative_manifest_resolves_against_dir", func(t *testing.T) {
		out, err := run(t, "--dir", filepath.Dir(manifest), "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, "0.1.2rc1\n", out)
	})

	t.Run("custom_relative_manifest_under_dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "meta"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "meta", "project.toml"), []byte("[project]\nversion = \"3.1.0\"\n"), 0o644))

		out, err := run(t, "--dir", dir, "--manifest", filepath.Join("meta", "project.toml"), "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, "3.1.0\n", out)
	})
}

func TestUpdateServerCmd(t *testing.T) {
	t.Run("no_credentials_is_skipped", func(t *testing.T) {
		clearServerEnv(t)
		t.Setenv(config.EnvServerHost, "docs.example.com")

		out, err := run(t, "update-server-task")
		require.NoError(t, err)
		assert.Contains(t, out, remote.StepName)
		assert.Contains(t, out, string(report.StatusSkipped))
		assert.Contains(t, out, "no SSH credentials configured")
	})

	t.Run("unreachable_server_is_reported_not_returned", func(t *testing.T) {
		clearServerEnv(t)
		t.Setenv(config.EnvServerHost, "127.0.0.1")
		t.Setenv(config.EnvServerPort, "1")
		t.Setenv(config.EnvServerPassword, "secret")

		out, err := run(t, "update-server-task")
		require.NoError(t, err)
		assert.Contains(t, out, remote.StepName)
		assert.Contains(t, out, string(report.StatusFailed))
	})
}

func TestServerSetupCmd(t *testing.T) {
	clearServerEnv(t)
	t.Setenv(config.EnvServerHost, "docs.example.com")

	out, err := run(t, "server-setup")
	require.NoError(t, err)
	assert.Contains(t, out, "ssh root@docs.example.com")
	assert.Contains(t, out, "git clone -b gh-pages "+deploy.DefaultRepoURL+" a2c-smcp")
	assert.Contains(t, out, "nginx -t && systemctl reload nginx")
	assert.Contains(t, out, config.EnvServerPassword)
}

func TestDeployCmd_InvalidConfig(t *testing.T) {
	clearServerEnv(t)

	_, err := run(t, "--dir", t.TempDir(), "deploy", "--version", "1.0.0")

	var verr *deploy.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "Configuration errors")
	assert.Contains(t, buf.String(), config.EnvServerHost)
}

func TestCleanCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "latest"), 0o755))

	_, err := run(t, "--dir", dir, "clean")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, "site"))
}

func TestMirrorCmd(t *testing.T) {
	dir := t.TempDir()
	dest := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "latest"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "latest", "index.html"), []byte("<h1>docs</h1>"), 0o644))

	writeMirrorConfig := func(t *testing.T) string {
		cfg := map[string]interface{}{
			"destinations": []map[string]interface{}{
				{"name": "webroot", "type": "local", "options": map[string]interface{}{"path": dest}},
			},
		}
		data, err := json.Marshal(cfg)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "docdeploy.json")
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}

	t.Run("copies_site", func(t *testing.T) {
		out, err := run(t, "--dir", dir, "mirror", "--config", writeMirrorConfig(t))
		require.NoError(t, err)
		assert.Contains(t, out, "webroot")
		assert.FileExists(t, filepath.Join(dest, "latest", "index.html"))
	})

	t.Run("missing_site", func(t *testing.T) {
		_, err := run(t, "--dir", t.TempDir(), "mirror", "--config", writeMirrorConfig(t))
		assert.ErrorIs(t, err, mirror.ErrSiteMissing)
	})

	t.Run("invalid_config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docdeploy.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"destinations": []}`), 0o600))

		_, err := run(t, "--dir", dir, "mirror", "--config", path)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}
