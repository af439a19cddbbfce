package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "access:\n  entry_password: \"1234\"\n  admin_password: \"admin\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "reservations.db", cfg.Database.DSN)
	assert.Equal(t, "Asia/Seoul", cfg.Reservation.Location.String())
	assert.Equal(t, 30*time.Second, cfg.Sheet.Timeout)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load("config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, "신아테크", cfg.Reservation.PrivilegedApplicant)
	assert.Equal(t, 2, cfg.WorkerPool.Size)
	assert.False(t, cfg.Sheet.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "reservation:\n  timezone: Mars/Olympus\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unbalanced\n"))
	assert.Error(t, err)
}
