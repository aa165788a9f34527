package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "port: \"9090\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "storage/documents", cfg.StorageDir)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingConfig.Model)
	assert.Equal(t, 100, cfg.EmbeddingConfig.BatchSize)
	assert.Equal(t, 0.7, cfg.SearchConfig.MatchThreshold)
	assert.Equal(t, 5, cfg.SearchConfig.DefaultLimit)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
port: "3000"
storage_dir: /var/lib/insightdesk
embedding:
  model: text-embedding-3-large
  batch_size: 25
search:
  match_threshold: 0.5
  default_limit: 10
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "/var/lib/insightdesk", cfg.StorageDir)
	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingConfig.Model)
	assert.Equal(t, 25, cfg.EmbeddingConfig.BatchSize)
	assert.Equal(t, 0.5, cfg.SearchConfig.MatchThreshold)
	assert.Equal(t, 10, cfg.SearchConfig.DefaultLimit)
}

func TestLoadConfigEnvCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/insightdesk")

	path := writeConfigFile(t, "port: \"8080\"\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.EmbeddingConfig.APIKey)
	assert.Equal(t, "postgres://localhost/insightdesk", cfg.DatabaseURL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
