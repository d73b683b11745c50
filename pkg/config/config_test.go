package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Listen)
	}
	if cfg.VTE.GoalPercent != 85.0 {
		t.Errorf("expected 85.0 goal, got %v", cfg.VTE.GoalPercent)
	}
	if cfg.Session.GapTimeout != 30*time.Minute {
		t.Errorf("expected 30m gap timeout, got %v", cfg.Session.GapTimeout)
	}
	if len(cfg.VTE.Departments) != 8 {
		t.Errorf("expected 8 departments, got %d", len(cfg.VTE.Departments))
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")

	content := `
listen: ":9090"
db_path: "test.db"
openai:
  endpoint: https://example.cognitiveservices.azure.com/
  api_key: ${TEST_OPENAI_KEY}
  deployment: gpt-5.2
cache:
  enabled: true
  ttl: 30m
spend:
  enabled: true
  policies:
    - max_usd: 5.0
      period: daily
vte:
  goal_percent: 90
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Listen)
	}
	if cfg.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("env var not expanded: got %s", cfg.OpenAI.APIKey)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.Cache.TTL)
	}
	if !cfg.Spend.Enabled || len(cfg.Spend.Policies) != 1 {
		t.Fatalf("expected 1 enabled spend policy, got %+v", cfg.Spend)
	}
	if cfg.Spend.Policies[0].MaxUSD != 5.0 {
		t.Errorf("expected 5.0 max USD, got %v", cfg.Spend.Policies[0].MaxUSD)
	}
	if cfg.VTE.GoalPercent != 90 {
		t.Errorf("expected 90 goal, got %v", cfg.VTE.GoalPercent)
	}
	// Unset sections keep their defaults.
	if cfg.Jobs.ThresholdCheck != "0 * * * *" {
		t.Errorf("expected default threshold schedule, got %s", cfg.Jobs.ThresholdCheck)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected defaults for missing file, got %s", cfg.Listen)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-realtime")
	t.Setenv("CLINSIGHT_DB_PATH", "/tmp/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OpenAI.Deployment != "gpt-realtime" {
		t.Errorf("expected env deployment override, got %s", cfg.OpenAI.Deployment)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Errorf("expected env db path override, got %s", cfg.DBPath)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [:::"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
