package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimensions: 384},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Embedding: EmbeddingConfig{Dimensions: 384}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Chunking.MaxChunkSize != 1000 {
		t.Errorf("expected MaxChunkSize=1000, got %d", cfg.Chunking.MaxChunkSize)
	}
	if cfg.Chunking.Overlap != 200 {
		t.Errorf("expected Overlap=200, got %d", cfg.Chunking.Overlap)
	}
	if cfg.Chunking.Method != "semantic" {
		t.Errorf("expected semantic method, got %q", cfg.Chunking.Method)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.MinScore != 0.3 {
		t.Errorf("expected MinScore=0.3, got %v", cfg.Retrieval.MinScore)
	}
	if cfg.Retrieval.MaxAnswerChars != 1500 {
		t.Errorf("expected MaxAnswerChars=1500, got %d", cfg.Retrieval.MaxAnswerChars)
	}
	if cfg.Processing.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Processing.Workers)
	}
	if cfg.Processing.TimeoutSec != 300 {
		t.Errorf("expected TimeoutSec=300, got %d", cfg.Processing.TimeoutSec)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected provider=openai, got %q", cfg.Embedding.Provider)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDimensions(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Dimensions = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding dimensions")
	}
}

func TestValidate_InvalidChunkingMethod(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.Method = "recursive"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid chunking method")
	}
	expected := `chunking.method must be "fixed" or "semantic", got "recursive"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_OverlapTooLarge(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.MaxChunkSize = 100
	cfg.Chunking.Overlap = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= max_chunk_size")
	}
}

func TestValidate_MinScoreRange(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.5} {
		cfg := validConfig()
		cfg.Retrieval.MinScore = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for min_score=%v", bad)
		}
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCDEX_TEST_KEY", "sk-secret")

	out := string(expandEnvVars([]byte("api_key: ${DOCDEX_TEST_KEY}\nmodel: ${DOCDEX_TEST_MODEL:-bge-small}")))
	if !strings.Contains(out, "sk-secret") {
		t.Errorf("env var not expanded: %q", out)
	}
	if !strings.Contains(out, "bge-small") {
		t.Errorf("default value not applied: %q", out)
	}
}
