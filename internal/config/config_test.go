package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "yearinsport_dev"
redis_host = "localhost"
redis_port = "6379"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/yearinsport.log"
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "yearinsport"
redis_host = "localhost"
redis_port = "6379"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
sync_max_pages = 25
sync_per_page = 50
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "yearinsport_dev", cfg.PostgresDBName)

	// defaults kick in when not set
	assert.Equal(t, "https://www.strava.com/api/v3", cfg.StravaBaseURL)
	assert.Equal(t, 50, cfg.SyncMaxPages)
	assert.Equal(t, 100, cfg.SyncPerPage)
	assert.Equal(t, 5, cfg.SyncRateLimitAllowedPerMin)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/var/log/yearinsport.log", cfg.LogsPath)
	assert.Equal(t, 25, cfg.SyncMaxPages)
	assert.Equal(t, 50, cfg.SyncPerPage)
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}
