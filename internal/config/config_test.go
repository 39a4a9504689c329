package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Chat:     ChatConfig{Model: "gpt-4o-mini"},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1024,
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	chatless := validConfig()
	chatless.Chat.Model = ""
	if err := chatless.Validate(); err == nil {
		t.Fatal("expected error for missing chat model")
	}

	embedless := validConfig()
	embedless.Embedding.Model = ""
	if err := embedless.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_MinScoreOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.RAG.MinScoreShort = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min score above 1")
	}
}

func TestValidate_ShortQueryLengthTooLarge(t *testing.T) {
	cfg := validConfig()
	cfg.RAG.ShortQueryLength = 12

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for short_query_length at the medium tier bound")
	}

	expected := "rag.short_query_length must be below the medium tier bound 12, got 12"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("expected Dimensions=1024, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.CacheTTLh != 168 {
		t.Errorf("expected CacheTTLh=168, got %d", cfg.Embedding.CacheTTLh)
	}
	if cfg.RAG.ShortQueryLength != 4 {
		t.Errorf("expected ShortQueryLength=4, got %d", cfg.RAG.ShortQueryLength)
	}
	if cfg.RAG.TopKShort != 20 || cfg.RAG.TopKMedium != 12 || cfg.RAG.TopKLong != 8 {
		t.Errorf("unexpected topK defaults: %d/%d/%d",
			cfg.RAG.TopKShort, cfg.RAG.TopKMedium, cfg.RAG.TopKLong)
	}
	if cfg.RAG.MinScoreShort != 0.18 {
		t.Errorf("expected MinScoreShort=0.18, got %v", cfg.RAG.MinScoreShort)
	}
	if cfg.RAG.MinScoreDefault != 0.28 {
		t.Errorf("expected MinScoreDefault=0.28, got %v", cfg.RAG.MinScoreDefault)
	}
	if cfg.RAG.StreamProbeChars != 120 {
		t.Errorf("expected StreamProbeChars=120, got %d", cfg.RAG.StreamProbeChars)
	}
	if cfg.RAG.StructuredMaxAttempts != 2 {
		t.Errorf("expected StructuredMaxAttempts=2, got %d", cfg.RAG.StructuredMaxAttempts)
	}
	if cfg.Index.ChunkSize != 800 {
		t.Errorf("expected ChunkSize=800, got %d", cfg.Index.ChunkSize)
	}
	if cfg.Index.ChunkOverlap != 80 {
		t.Errorf("expected ChunkOverlap=80, got %d", cfg.Index.ChunkOverlap)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
}

func TestApplyDefaults_OverlapClampedBelowChunkSize(t *testing.T) {
	cfg := Config{Index: IndexConfig{ChunkSize: 100, ChunkOverlap: 100}}
	cfg.ApplyDefaults()

	if cfg.Index.ChunkOverlap != 80 {
		t.Errorf("expected overlap reset to 80, got %d", cfg.Index.ChunkOverlap)
	}
}

func TestRewriteOn(t *testing.T) {
	var cfg RAGConfig
	if !cfg.RewriteOn() {
		t.Error("expected rewrite enabled by default")
	}

	off := false
	cfg.RewriteEnabled = &off
	if cfg.RewriteOn() {
		t.Error("expected rewrite disabled when set to false")
	}

	on := true
	cfg.RewriteEnabled = &on
	if !cfg.RewriteOn() {
		t.Error("expected rewrite enabled when set to true")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RAGDEX_TEST_ADDR", "redis:6380")

	in := []byte("addr: ${RAGDEX_TEST_ADDR}\nmodel: ${RAGDEX_TEST_MODEL:-gpt-4o-mini}\nkey: ${RAGDEX_TEST_UNSET}\n")
	out := string(expandEnvVars(in))

	expected := "addr: redis:6380\nmodel: gpt-4o-mini\nkey: \n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestExpandEnvVars_SetVarOverridesDefault(t *testing.T) {
	t.Setenv("RAGDEX_TEST_MODEL", "qwen-max")

	out := string(expandEnvVars([]byte("${RAGDEX_TEST_MODEL:-gpt-4o-mini}")))
	if out != "qwen-max" {
		t.Errorf("expected env value to win over default, got %q", out)
	}
}
