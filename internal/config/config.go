// Package config provides configuration loading and validation for the backend.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full backend configuration. Values can come from a JSON
// file, environment variables, or both; environment wins.
type Config struct {
	// LLM providers
	Provider          string `json:"provider,omitempty"`            // auto, openrouter, ollama, gemini
	OpenRouterAPIKey  string `json:"openrouter_api_key,omitempty"`  // falls back to OPENAI_API_KEY
	OpenRouterBaseURL string `json:"openrouter_base_url,omitempty"` // chat-completions endpoint base
	OpenRouterModel   string `json:"openrouter_model,omitempty"`
	OllamaBaseURL     string `json:"ollama_base_url,omitempty"`
	OllamaModel       string `json:"ollama_model,omitempty"`
	GeminiAPIKey      string `json:"gemini_api_key,omitempty"`
	GeminiModel       string `json:"gemini_model,omitempty"`

	// Job-posting API
	HHBaseURL string `json:"hh_base_url,omitempty"`
	HHAreaID  int    `json:"hh_area_id,omitempty"` // search region (40 = Kazakhstan)

	// Shared infrastructure
	CacheTTL time.Duration `json:"-"`
	Port     int           `json:"port,omitempty"`
	Debug    bool          `json:"debug,omitempty"`
	LogJSON  bool          `json:"log_json,omitempty"`

	// JSON-friendly mirror of CacheTTL ("10m", "24h").
	CacheTTLString string `json:"cache_ttl,omitempty"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Provider:          "auto",
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		OpenRouterModel:   "openai/gpt-4o-mini",
		OllamaBaseURL:     "http://localhost:11434",
		OllamaModel:       "qwen2.5:7b",
		GeminiModel:       "gemini-2.5-flash",
		HHBaseURL:         "https://api.hh.ru",
		HHAreaID:          40,
		CacheTTL:          10 * time.Minute,
		Port:              8080,
	}
}

// LoadFile loads configuration from a JSON file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.CacheTTLString != "" {
		ttl, err := time.ParseDuration(cfg.CacheTTLString)
		if err != nil {
			return nil, fmt.Errorf("config error: bad cache_ttl %q: %w", cfg.CacheTTLString, err)
		}
		cfg.CacheTTL = ttl
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables on the configuration.
func (c *Config) ApplyEnv() {
	setString(&c.Provider, "LLM_PROVIDER")
	setString(&c.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	if c.OpenRouterAPIKey == "" {
		setString(&c.OpenRouterAPIKey, "OPENAI_API_KEY")
	}
	setString(&c.OpenRouterBaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenRouterModel, "OPENAI_MODEL")
	setString(&c.OllamaBaseURL, "OLLAMA_BASE_URL")
	setString(&c.OllamaModel, "OLLAMA_MODEL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	setString(&c.HHBaseURL, "HH_BASE_URL")

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("HH_AREA_ID"); v != "" {
		if a, err := strconv.Atoi(v); err == nil {
			c.HHAreaID = a
		}
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.OpenRouterBaseURL = strings.TrimRight(c.OpenRouterBaseURL, "/")
	c.OllamaBaseURL = strings.TrimRight(c.OllamaBaseURL, "/")
	c.HHBaseURL = strings.TrimRight(c.HHBaseURL, "/")
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	switch c.Provider {
	case "auto", "openrouter", "openai", "ollama", "gemini":
	default:
		return fmt.Errorf("config error: unknown provider %q (use auto, openrouter, ollama or gemini)", c.Provider)
	}

	if c.Provider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: provider gemini requires gemini_api_key")
	}
	if (c.Provider == "openrouter" || c.Provider == "openai") && c.OpenRouterAPIKey == "" {
		return fmt.Errorf("config error: provider openrouter requires openrouter_api_key")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config error: cache_ttl must be positive")
	}
	if c.HHAreaID <= 0 {
		return fmt.Errorf("config error: hh_area_id must be positive")
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
