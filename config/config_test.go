package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app_name: pager
server:
  port: 8080
logger:
  level: 5
  format: json
data:
  mongodb:
    master:
      uri: mongodb://localhost:27017
    slaves:
      - uri: mongodb://replica-1:27017
        weight: 3
      - uri: ""
    database: app
    breaker:
      max_failures: 5
paging:
  default_limit: 25
  max_limit: 100
  strict_order: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AppName != "pager" || cfg.Port != 8080 || cfg.Address() != "127.0.0.1:8080" {
		t.Errorf("unexpected server config: %q %d %q", cfg.AppName, cfg.Port, cfg.Address())
	}
	if cfg.Logger.Level != 5 || cfg.Logger.Format != "json" || cfg.Logger.Output != "stdout" {
		t.Errorf("unexpected logger config: %+v", cfg.Logger)
	}

	mongo := cfg.Data.MongoDB
	if mongo.Master == nil || mongo.Master.URI != "mongodb://localhost:27017" {
		t.Fatalf("unexpected master: %+v", mongo.Master)
	}
	if len(mongo.Slaves) != 1 || mongo.Slaves[0].Weight != 3 {
		t.Errorf("expected one weighted slave, got %+v", mongo.Slaves)
	}
	if mongo.Database != "app" || mongo.Strategy != "round_robin" || mongo.Timeout != 10*time.Second {
		t.Errorf("unexpected mongodb config: %+v", mongo)
	}
	if !mongo.Breaker.Enabled() || mongo.Breaker.MaxFailures != 5 {
		t.Errorf("expected enabled breaker, got %+v", mongo.Breaker)
	}

	p := cfg.Paging
	if p.SortKey != "_id" || p.DefaultLimit != 25 || p.MaxLimit != 100 || !p.StrictOrder {
		t.Errorf("unexpected paging config: %+v", p)
	}
	if cfg.Observes.Tracer.Enabled() {
		t.Error("tracer should be disabled without endpoint")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() with a missing explicit file should return error")
	}
}

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper() error = %v", err)
	}
	if cfg.Paging.DefaultLimit != 10 || cfg.Paging.SortKey != "_id" {
		t.Errorf("unexpected paging defaults: %+v", cfg.Paging)
	}
	if cfg.Data.MongoDB.Master != nil {
		t.Errorf("master should be unset by default, got %+v", cfg.Data.MongoDB.Master)
	}
	if cfg.Data.MongoDB.Breaker.Enabled() {
		t.Error("breaker should be disabled by default")
	}
}

func TestFromViperValidation(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("paging.default_limit", 0)

	if _, err := fromViper(v); err == nil {
		t.Error("fromViper() should reject a zero default limit")
	}

	v = viper.New()
	setDefaults(v)
	v.Set("logger.output", "file")

	if _, err := fromViper(v); err == nil {
		t.Error("fromViper() should require output_file for file output")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("KEYSET_PAGING_DEFAULT_LIMIT", "42")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("app_name: env\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Paging.DefaultLimit != 42 {
		t.Errorf("DefaultLimit = %d, want 42", cfg.Paging.DefaultLimit)
	}
}
