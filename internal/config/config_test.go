package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9090"
postgres:
  url: postgres://file
quiz:
  ttl: 5m
  default_time_limit: 20m
  default_marks: 2
engine:
  answer_write_concurrency: 8
  persist_timeout: 3s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Postgres.URL != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.Postgres.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("empty env must not override, got %q", cfg.Log.Level)
	}
	if cfg.Quiz.DefaultMarks != 2 || cfg.Engine.AnswerWriteConcurrency != 8 {
		t.Fatalf("unexpected quiz/engine config %+v %+v", cfg.Quiz, cfg.Engine)
	}
	if got := TTLDuration(cfg.Quiz.DefaultTimeLimit, 0); got != 20*time.Minute {
		t.Fatalf("unexpected default time limit %v", got)
	}
	if cfg.AMQP.Exchange != "assessment" {
		t.Fatalf("expected default exchange, got %q", cfg.AMQP.Exchange)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("nonsense", time.Second); got != time.Second {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
	if got := TTLDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("unexpected duration %v", got)
	}
}
