package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[mainConfig]
backendUrl = "https://chat.example.com"

[clientConfig]
requestTimeout = "3s"
tokenStore = "redis"

[redisConfig]
port = 6380
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { config = nil })

	if err := LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	conf := GetConfig()
	if conf.BackendURL != "https://chat.example.com" {
		t.Fatalf("backendUrl = %q", conf.BackendURL)
	}
	if conf.RequestTimeout != 3*time.Second || conf.TokenStore != "redis" {
		t.Fatalf("client config = %+v", conf.ClientConfig)
	}
	if conf.AckTimeout != Default().AckTimeout || conf.TokenKey != Default().TokenKey {
		t.Fatalf("defaults lost: %+v", conf.ClientConfig)
	}
	if conf.RedisConfig.Port != 6380 || conf.RedisConfig.Host != "127.0.0.1" {
		t.Fatalf("redis config = %+v", conf.RedisConfig)
	}
}

func TestLoadFileRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[mainConfig\nport = "), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadFile(path); err == nil {
		t.Fatal("malformed toml accepted")
	}
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
