package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"telegram_token":   "12345:token",
		"database_dsn":     "postgres://localhost/bot",
		"staging_dir":      "tmpdir",
		"s3_root_user":     "user",
		"s3_root_password": "password",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
		"download_timeout": "30s",
		"upload_timeout":   "1m",
		"worker_pool_size": 8,
		"metrics_addr":     ":9100",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "12345:token", cfg.TelegramToken)
		assert.Equal(t, "postgres://localhost/bot", cfg.DatabaseDSN)
		assert.Equal(t, "tmpdir", cfg.StagingDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
		assert.Equal(t, 1*time.Minute, cfg.UploadTimeout)
		assert.Equal(t, int64(8), cfg.WorkerPoolSize)
		assert.Equal(t, ":9100", cfg.MetricsAddr)
	})

	t.Run("no config flag leaves values unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			TelegramToken:   "keep",
			DatabaseDSN:     "keep_dsn",
			StagingDir:      "keep_dir",
			DownloadTimeout: 5 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "keep", cfg.TelegramToken)
		assert.Equal(t, "keep_dsn", cfg.DatabaseDSN)
		assert.Equal(t, "keep_dir", cfg.StagingDir)
		assert.Equal(t, 5*time.Second, cfg.DownloadTimeout)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
		os.Args = []string{"testbin", "-config", broken}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
