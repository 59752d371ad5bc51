package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dispatch/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := cmd.LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.ResponseTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100, cfg.JobBatchSize)
	assert.Equal(t, "dispatch:notifications", cfg.RedisListKey)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("RESPONSE_TIMEOUT", "10m")
	t.Setenv("SWEEP_SCHEDULE", "*/5 * * * * *")

	cfg, err := cmd.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.ResponseTimeout)
	assert.Equal(t, "*/5 * * * * *", cfg.SweepSchedule)
	assert.Equal(t, 5, cfg.Policy().MaxAttempts)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	// registered so the values godotenv sets are removed after the test
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DB_NAME", "")
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))
	require.NoError(t, os.Unsetenv("DB_NAME"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REDIS_ADDR=localhost:6379\nDB_NAME=jobs\n"), 0o600))

	cfg, err := cmd.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Contains(t, cfg.DSN(), "dbname=jobs")
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("JOB_BATCH_SIZE", "0")
	t.Setenv("MAX_ATTEMPTS", "0")

	_, err := cmd.LoadConfig("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_BATCH_SIZE")
	assert.Contains(t, err.Error(), "MAX_ATTEMPTS")
}
