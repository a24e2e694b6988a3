package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw := `{
		"server": {"addr": ":9090"},
		"database": {"dsn": "host=db user=app"},
		"redis": {"addr": "redis:6379", "db": 2},
		"auth": {"jwt_secret": "file-secret"}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VETAQP_CONFIG", path)
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env should override addr, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("env should override jwt secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Database.DSN != "host=db user=app" {
		t.Fatalf("file value should survive with no env override, got %q", cfg.Database.DSN)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Redis.PoolSize != 10 {
		t.Fatalf("pool size should default to 10, got %d", cfg.Redis.PoolSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("VETAQP_CONFIG", filepath.Join(t.TempDir(), "absent.json"))
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
