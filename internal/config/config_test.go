package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.App.Root != "public" {
		t.Errorf("expected default app.root public, got %s", cfg.App.Root)
	}
	if cfg.Pool.MinWorkers != 4 {
		t.Errorf("expected min_workers 4, got %d", cfg.Pool.MinWorkers)
	}
	if cfg.Pool.MaxWorkers != 32 {
		t.Errorf("expected max_workers 32, got %d", cfg.Pool.MaxWorkers)
	}
	if cfg.Pool.MaxJobs != 10000 {
		t.Errorf("expected max_jobs 10000, got %d", cfg.Pool.MaxJobs)
	}
	if cfg.Pool.IdleTimeout.Duration() != 60*time.Second {
		t.Errorf("expected idle_timeout 60s, got %s", cfg.Pool.IdleTimeout.Duration())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadValidConfig(t *testing.T) {
	yaml := `
app:
  root: "/srv/www"
  argv: ["app.php", "--verbose"]
php:
  throw_request_errors: true
pool:
  min_workers: 2
  max_workers: 16
  max_jobs: 5000
  idle_timeout: "120s"
logging:
  level: "debug"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "embedphp.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Root != "/srv/www" {
		t.Errorf("expected app.root /srv/www, got %s", cfg.App.Root)
	}
	if len(cfg.App.Argv) != 2 || cfg.App.Argv[0] != "app.php" {
		t.Errorf("expected argv [app.php --verbose], got %v", cfg.App.Argv)
	}
	if !cfg.PHP.ThrowRequestErrors {
		t.Error("expected throw_request_errors true")
	}
	if cfg.Pool.MinWorkers != 2 {
		t.Errorf("expected min_workers 2, got %d", cfg.Pool.MinWorkers)
	}
	if cfg.Pool.MaxWorkers != 16 {
		t.Errorf("expected max_workers 16, got %d", cfg.Pool.MaxWorkers)
	}
	if cfg.Pool.IdleTimeout.Duration() != 120*time.Second {
		t.Errorf("expected idle_timeout 120s, got %s", cfg.Pool.IdleTimeout.Duration())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/embedphp.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestValidateMinWorkersZero(t *testing.T) {
	cfg := Default()
	cfg.App.Root = "/srv/www"
	cfg.Pool.MinWorkers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for min_workers=0")
	}
}

func TestValidateMaxLessThanMin(t *testing.T) {
	cfg := Default()
	cfg.App.Root = "/srv/www"
	cfg.Pool.MinWorkers = 8
	cfg.Pool.MaxWorkers = 4
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for max_workers < min_workers")
	}
}

func TestValidateMissingRoot(t *testing.T) {
	cfg := Default()
	cfg.App.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing app.root")
	}
}

func TestValidateNegativeMaxJobs(t *testing.T) {
	cfg := Default()
	cfg.App.Root = "/srv/www"
	cfg.Pool.MaxJobs = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_jobs")
	}
}
