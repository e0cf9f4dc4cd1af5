package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `server:
  port: "8080"
  env: development
mongo:
  uri: mongodb://db:27017
  operation_timeout: 3s
storage:
  type: local
  local_path: ` + filepath.Join(dir, "uploads") + `
cors:
  allowed_origins:
    - https://a.example
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NODE_ENV", "production")
	t.Setenv("MONGODB_URI", "mongodb+srv://cluster.example/aptitude")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://b.example, https://c.example")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if !cfg.Server.IsProduction() {
		t.Fatalf("NODE_ENV should select production")
	}
	if cfg.Mongo.URI != "mongodb+srv://cluster.example/aptitude" {
		t.Fatalf("uri = %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.OperationTimeout != 3*time.Second || cfg.Mongo.ConnectTimeout != 5*time.Second || cfg.Mongo.SocketTimeout != 45*time.Second {
		t.Fatalf("timeouts = %+v", cfg.Mongo)
	}
	if want := []string{"https://b.example", "https://c.example"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Fatalf("origins = %q, want %q", cfg.CORS.AllowedOrigins, want)
	}
	if cfg.Storage.MaxImageBytes != 5*1024*1024 {
		t.Fatalf("max image bytes = %d", cfg.Storage.MaxImageBytes)
	}
	if _, err := os.Stat(cfg.Storage.LocalPath); err != nil {
		t.Fatalf("upload dir not created: %v", err)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}
	if cfg.Server.Port != "5000" || cfg.Mongo.Database != "aptitude" || cfg.Storage.Type != "local" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set.
	os.Unsetenv("PORT")
	t.Cleanup(func() { os.Unsetenv("PORT") })

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port from .env = %q", cfg.Server.Port)
	}
}
