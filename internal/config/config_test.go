package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"RIGVEDA_DATA_DIR", "RIGVEDA_DATA_URL", "RIGVEDA_DATABASE_URL",
		"OLLAMA_HOST", "RIGVEDA_MODEL", "RIGVEDA_ADDR", "RIGVEDA_VERBOSE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "rigveda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: ""
  base_url: https://example.org/data
llm:
  model: phi3-mini
  max_tokens: 1024
vedaweb:
  timeout: 3s
server:
  addr: ":9000"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Data.Dir)
	assert.Equal(t, "https://example.org/data", cfg.Data.BaseURL)
	assert.Equal(t, "phi3-mini", cfg.LLM.Model)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 3*time.Second, cfg.VedaWeb.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	// untouched keys keep their defaults
	assert.Equal(t, "nomic-embed-text", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 2.0, cfg.VedaWeb.RequestsPerSecond)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "rigveda.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("data url replaces dir", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RIGVEDA_DATA_URL", "https://example.org/data")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "", cfg.Data.Dir)
		assert.Equal(t, "https://example.org/data", cfg.Data.BaseURL)
	})

	t.Run("OLLAMA_HOST does not override explicit host", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OLLAMA_HOST", "http://env:11434")

		cfg := Default()
		cfg.LLM.Host = "http://file:11434"
		cfg.applyEnvOverrides()
		assert.Equal(t, "http://file:11434", cfg.LLM.Host)

		cfg = Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "http://env:11434", cfg.LLM.Host)
	})

	t.Run("database, model, addr and verbose", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RIGVEDA_DATABASE_URL", "postgres://u:p@db/rv")
		t.Setenv("RIGVEDA_MODEL", "mistral")
		t.Setenv("RIGVEDA_ADDR", ":7000")
		t.Setenv("RIGVEDA_VERBOSE", "true")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "postgres://u:p@db/rv", cfg.Database.URL)
		assert.Equal(t, "mistral", cfg.LLM.Model)
		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.True(t, cfg.Logging.Verbose)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no data source", func(c *Config) { c.Data = DataConfig{} }},
		{"no model", func(c *Config) { c.LLM.Model = "" }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"no vedaweb url", func(c *Config) { c.VedaWeb.BaseURL = "" }},
		{"zero rate", func(c *Config) { c.VedaWeb.RequestsPerSecond = 0 }},
		{"no audio url", func(c *Config) { c.Audio.BaseURL = "" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
