package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  name: fzscan
  env: test
  log_level: debug
database:
  dsn: "root:root@tcp(127.0.0.1:3306)/fz?parseTime=true"
redis:
  addr: 127.0.0.1:6379
progress:
  mode: async
  queue: progress_q
lmstfy:
  host: 127.0.0.1
  namespace: fz
  token: t-1
workers:
  - name: progress
    queue_name: progress_q
    subscriber:
      threads: 2
      rate: 100ms
      timeout: 3s
      ttr: 30s
      error_backoff: 1s
    processor:
      threads: 4
      buffer_size: 16
      timeout: 10s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.GetServerPort())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "progress:order", cfg.Progress.Channel)
	assert.Equal(t, 10*time.Second, cfg.Progress.WaitMax)
	assert.Equal(t, 7777, cfg.Lmstfy.Port)

	require.Len(t, cfg.Workers, 1)
	assert.Equal(t, 100*time.Millisecond, cfg.Workers[0].Subscriber.Rate)
	assert.Equal(t, 16, cfg.Workers[0].Processor.BufferSize)

	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateWorker())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg.Lmstfy.Token = ""
	assert.Error(t, cfg.Validate())

	cfg.Progress.Mode = ProgressModeSync
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
