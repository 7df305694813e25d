package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("chunker:\n  min_tokens: 100\n  max_tokens: 400\nretriever:\n  top_k: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chunker.MinTokens != 100 || cfg.Chunker.MaxTokens != 400 {
		t.Errorf("chunker overrides not applied: %+v", cfg.Chunker)
	}
	if cfg.Retriever.TopK != 5 {
		t.Errorf("retriever top_k = %d, want 5", cfg.Retriever.TopK)
	}
	// Untouched settings keep their defaults.
	if cfg.Embedding.Dimension != DefaultConfig().Embedding.Dimension {
		t.Errorf("embedding dimension changed unexpectedly")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("chunker: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvParsed(t *testing.T) {
	t.Setenv("READWISE_TOKEN", "tok")
	t.Setenv("PINECONE_API_KEY", "pk")
	t.Setenv("LAST_SYNC_TIME", "2024-06-01T00:00:00Z")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env.ReadwiseToken != "tok" || cfg.Env.PineconeAPIKey != "pk" {
		t.Errorf("env not parsed: %+v", cfg.Env)
	}
	if cfg.Env.LastSyncTime != "2024-06-01T00:00:00Z" {
		t.Errorf("LAST_SYNC_TIME not parsed: %q", cfg.Env.LastSyncTime)
	}
}

func TestRequireEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Env.PineconeAPIKey = "set"

	if err := cfg.RequireEnv("PINECONE_API_KEY"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := cfg.RequireEnv("PINECONE_API_KEY", "OPENAI_API_KEY", "READWISE_TOKEN")
	if err == nil {
		t.Fatal("expected missing-env error")
	}
	for _, name := range []string{"OPENAI_API_KEY", "READWISE_TOKEN"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}
