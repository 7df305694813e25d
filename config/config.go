// Package config loads tunables from yaml and credentials from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/readloom/readloom/chunker"
	"github.com/readloom/readloom/embedder"
	"github.com/readloom/readloom/retriever"
	"github.com/readloom/readloom/sparse"
)

// Config is the application configuration: yaml-tunable pipeline bounds
// plus environment-sourced credentials.
type Config struct {
	Embedding EmbeddingConfig  `yaml:"embedding"`
	Chunker   chunker.Config   `yaml:"chunker"`
	Retriever retriever.Config `yaml:"retriever"`
	Sparse    SparseConfig     `yaml:"sparse"`
	Reader    ReaderConfig     `yaml:"reader"`

	Env Env `yaml:"-"`
}

// EmbeddingConfig holds embedding-related settings.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// SparseConfig holds sparse vector settings.
type SparseConfig struct {
	MaxTerms int `yaml:"max_terms"`
}

// ReaderConfig holds reader API settings.
type ReaderConfig struct {
	// BaseURL overrides the production API root, for testing.
	BaseURL string `yaml:"base_url"`
}

// Env carries the recognized environment variables.
type Env struct {
	ReadwiseToken  string `env:"READWISE_TOKEN"`
	PineconeAPIKey string `env:"PINECONE_API_KEY"`
	PineconeIndex  string `env:"PINECONE_INDEX"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	LastSyncTime   string `env:"LAST_SYNC_TIME"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:     embedder.DefaultModel,
			Dimension: embedder.DefaultDimension,
		},
		Chunker:   chunker.DefaultConfig(),
		Retriever: retriever.DefaultConfig(),
		Sparse:    SparseConfig{MaxTerms: sparse.DefaultMaxTerms},
	}
}

// Load reads configuration: an optional .env file, the yaml config file
// (explicit path or standard locations), then the environment.
func Load(path string) (*Config, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	if path == "" {
		path = findConfigFile()
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg.Env); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for a config file in standard locations.
func findConfigFile() string {
	homeDir, _ := os.UserHomeDir()

	locations := []string{
		"config.yaml",
		".readloom.yaml",
		filepath.Join(homeDir, ".config", "readloom", "config.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks the tunable bounds.
func (c *Config) Validate() error {
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	if c.Sparse.MaxTerms <= 0 {
		return fmt.Errorf("sparse max_terms must be positive")
	}
	if err := c.Chunker.Validate(); err != nil {
		return err
	}
	if c.Retriever.TopK <= 0 {
		return fmt.Errorf("retriever top_k must be positive")
	}
	if c.Retriever.HeaderTopK <= 0 {
		return fmt.Errorf("retriever header_top_k must be positive")
	}
	return nil
}

// RequireEnv fails fast when any named credential is absent from the
// environment.
func (c *Config) RequireEnv(names ...string) error {
	byName := map[string]string{
		"READWISE_TOKEN":   c.Env.ReadwiseToken,
		"PINECONE_API_KEY": c.Env.PineconeAPIKey,
		"PINECONE_INDEX":   c.Env.PineconeIndex,
		"OPENAI_API_KEY":   c.Env.OpenAIAPIKey,
		"GEMINI_API_KEY":   c.Env.GeminiAPIKey,
	}
	var missing []string
	for _, name := range names {
		if byName[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return nil
}
