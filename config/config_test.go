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
	path := filepath.Join(t.TempDir(), "campusbite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend.Driver)
	assert.Equal(t, devSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disk", cfg.Files.Driver)
	assert.Equal(t, 14*time.Second, cfg.RetryOptions().MaxDelay())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
backend:
  driver: appwrite
appwrite:
  project_id: proj
  database_id: db
  collections:
    foods: food-col
retry:
  base_delay: 500ms
server:
  port: "9000"
`)
	t.Setenv("CAMPUSBITE_SERVER_PORT", "9090")
	t.Setenv("CAMPUSBITE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CAMPUSBITE_APPWRITE_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "appwrite", cfg.Backend.Driver)
	assert.Equal(t, "food-col", cfg.Appwrite.Collections.Foods)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)

	ac := cfg.AppwriteClientConfig()
	assert.Equal(t, "proj", ac.ProjectID)
	assert.Equal(t, 3*time.Second, ac.Timeout)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	_, err := Load(writeConfig(t, "backend:\n  driver: mongo\n"))
	assert.ErrorContains(t, err, "unknown backend.driver")

	_, err = Load(writeConfig(t, "backend:\n  driver: appwrite\n"))
	assert.ErrorContains(t, err, "project_id")

	_, err = Load(writeConfig(t, "files:\n  driver: s3\n"))
	assert.ErrorContains(t, err, "s3.bucket")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
