package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL", "LLM_PROVIDER", "REQUEST_TIMEOUT",
		"HISTORY_BACKEND", "HISTORY_DIR", "DATABASE_URL", "REDIS_DB", ConfigFileEnv,
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaultsWithoutKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.HistoryBackend != "file" || cfg.HistoryDir == "" {
		t.Errorf("history = %q %q", cfg.HistoryBackend, cfg.HistoryDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("HISTORY_BACKEND", "Redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("GeminiAPIKey = %q, want API_KEY fallback", cfg.GeminiAPIKey)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d", cfg.RedisDB)
	}
	if cfg.HistoryBackend != "redis" {
		t.Errorf("HistoryBackend = %q", cfg.HistoryBackend)
	}

	t.Setenv("GEMINI_API_KEY", "primary")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GeminiAPIKey != "primary" {
		t.Errorf("GeminiAPIKey = %q, GEMINI_API_KEY should win", cfg.GeminiAPIKey)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "guru.yaml")
	data := "gemini_model: gemini-2.0-flash\nhistory_backend: memory\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" || cfg.HistoryBackend != "memory" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDSN(t *testing.T) {
	c := &Config{PostgresUser: "u", PostgresPassword: "secret", PGHost: "db", PGPort: "5432", PostgresDB: "guru"}
	dsn := c.DSN()
	if dsn != "postgres://u:secret@db:5432/guru?sslmode=disable" {
		t.Errorf("DSN() = %q", dsn)
	}
	if s := SafeDSNSummary(dsn); strings.Contains(s, "secret") {
		t.Errorf("SafeDSNSummary leaks password: %q", s)
	}
	c.DatabaseURL = "postgres://x@y/z"
	if c.DSN() != "postgres://x@y/z" {
		t.Errorf("DATABASE_URL not preferred")
	}
}
