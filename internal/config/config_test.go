package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "auto", cfg.Provider)
	assert.Equal(t, "https://api.hh.ru", cfg.HHBaseURL)
	assert.Equal(t, 40, cfg.HHAreaID)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"provider": "ollama",
		"ollama_model": "llama3.1:8b",
		"hh_area_id": 160,
		"cache_ttl": "24h",
		"port": 9090
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.OllamaModel)
	assert.Equal(t, 160, cfg.HHAreaID)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 9090, cfg.Port)
	// Untouched fields keep defaults
	assert.Equal(t, "https://api.hh.ru", cfg.HHBaseURL)
}

func TestLoadFileBadTTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cache_ttl": "soon"}`), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenRouter")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/")
	t.Setenv("HH_AREA_ID", "113")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenRouterAPIKey)
	assert.Equal(t, "http://ollama:11434", cfg.OllamaBaseURL, "trailing slash should be trimmed")
	assert.Equal(t, 113, cfg.HHAreaID)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvOpenAIKeyFallback(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "sk-openai", cfg.OpenRouterAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Provider = "llamacpp" }, true},
		{"gemini without key", func(c *Config) { c.Provider = "gemini" }, true},
		{"gemini with key", func(c *Config) { c.Provider = "gemini"; c.GeminiAPIKey = "k" }, false},
		{"openrouter without key", func(c *Config) { c.Provider = "openrouter" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"bad ttl", func(c *Config) { c.CacheTTL = 0 }, true},
		{"bad area", func(c *Config) { c.HHAreaID = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
