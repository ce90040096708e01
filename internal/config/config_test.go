package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected explicit port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Postgres.Database != "gamification" {
		t.Errorf("expected default database, got %q", cfg.Postgres.Database)
	}
	if cfg.Kafka.Topic != "learning-activities" {
		t.Errorf("expected default topic, got %q", cfg.Kafka.Topic)
	}
	if cfg.Kafka.GroupID != "gamification-consumer" {
		t.Errorf("expected default group id, got %q", cfg.Kafka.GroupID)
	}
	if cfg.Leaderboard.DefaultLimit != 100 || cfg.Leaderboard.MaxLimit != 1000 {
		t.Errorf("unexpected leaderboard limits: %+v", cfg.Leaderboard)
	}
	if cfg.Playground.MinLatency != 800*time.Millisecond || cfg.Playground.MaxLatency != 3*time.Second {
		t.Errorf("unexpected playground latency window: %+v", cfg.Playground)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")

	path := writeConfigFile(t, `
postgres:
  user: app
  password: ${TEST_PG_PASSWORD}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Postgres.Password != "s3cret" {
		t.Errorf("expected expanded password, got %q", cfg.Postgres.Password)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestConnectionString(t *testing.T) {
	pg := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Database: "gamification",
	}
	want := "postgres://app:pw@db.internal:5433/gamification?sslmode=disable"
	if got := pg.ConnectionString(); got != want {
		t.Errorf("ConnectionString = %q, want %q", got, want)
	}

	pg.SSLMode = "require"
	if got := pg.ConnectionString(); got != "postgres://app:pw@db.internal:5433/gamification?sslmode=require" {
		t.Errorf("ConnectionString with ssl = %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Sync.Enabled {
		t.Error("expected sync enabled by default")
	}
	if !cfg.Playground.Enabled {
		t.Error("expected playground enabled by default")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sync.Interval != 30*time.Minute {
		t.Errorf("expected default sync interval, got %v", cfg.Sync.Interval)
	}
}
