package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  version: 1.2.0\n"))
	require.NoError(t, err)

	assert.Equal(t, "eraport-ingestion", cfg.App.Name)
	assert.Equal(t, "1.2.0", cfg.App.Version)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LockTTL)
	assert.Equal(t, "uploads", cfg.Storage.S3.Prefix)
	assert.Equal(t, int64(10), cfg.Upload.MaxSizeMB)
}

func TestParse_UnsupportedDriver(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: oracle\n"))
	assert.Error(t, err)
}

func TestParse_S3RequiresBucket(t *testing.T) {
	_, err := Parse([]byte("storage:\n  s3:\n    enabled: true\n"))
	assert.Error(t, err)
}

func TestParse_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := Parse([]byte("database:\n  password: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_FromConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 9090\ndatabase:\n  driver: memory\n  host: db\n  port: 3306\n  user: raport\n  name: eraport\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Contains(t, cfg.DatabaseDSN(), "raport:@tcp(db:3306)/eraport")
}
