package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "rigveda.yaml"

// Config holds all rigveda-rag configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	VedaWeb  VedaWebConfig  `yaml:"vedaweb"`
	Audio    AudioConfig    `yaml:"audio"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig locates the mandala partition files. Dir wins over BaseURL.
type DataConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig configures the optional Postgres verse store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LLMConfig configures the Ollama models used for chat, quiz and embeddings.
type LLMConfig struct {
	Host           string  `yaml:"host"` // empty uses OLLAMA_HOST
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	ContextVerses  int     `yaml:"context_verses"`
}

// VedaWebConfig configures the translation-document API client.
type VedaWebConfig struct {
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
}

// AudioConfig configures the recitation page scraper.
type AudioConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "public/data",
		},
		Database: DatabaseConfig{},
		LLM: LLMConfig{
			Model:          "llama3.2",
			EmbeddingModel: "nomic-embed-text",
			Temperature:    0.7,
			MaxTokens:      800,
			ContextVerses:  5,
		},
		VedaWeb: VedaWebConfig{
			BaseURL:           "https://vedaweb.uni-koeln.de/rigveda/api",
			RequestsPerSecond: 2,
			Burst:             4,
			Timeout:           15 * time.Second,
		},
		Audio: AudioConfig{
			BaseURL: "https://sri-aurobindo.co.in/workings/matherials/rigveda",
			Timeout: 20 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of the file.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("RIGVEDA_DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	if url := os.Getenv("RIGVEDA_DATA_URL"); url != "" {
		c.Data.BaseURL = url
		c.Data.Dir = ""
	}
	if url := os.Getenv("RIGVEDA_DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && c.LLM.Host == "" {
		c.LLM.Host = host
	}
	if model := os.Getenv("RIGVEDA_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if addr := os.Getenv("RIGVEDA_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if v, err := strconv.ParseBool(os.Getenv("RIGVEDA_VERBOSE")); err == nil {
		c.Logging.Verbose = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Data.Dir == "" && c.Data.BaseURL == "" {
		return fmt.Errorf("config: data.dir or data.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config: llm.model is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config: llm.max_tokens must be positive")
	}
	if c.VedaWeb.BaseURL == "" {
		return fmt.Errorf("config: vedaweb.base_url is required")
	}
	if c.VedaWeb.RequestsPerSecond <= 0 || c.VedaWeb.Burst <= 0 {
		return fmt.Errorf("config: vedaweb rate limit must be positive")
	}
	if c.Audio.BaseURL == "" {
		return fmt.Errorf("config: audio.base_url is required")
	}
	return nil
}
