// internal/appconfig/load_integration_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultPath(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}

	payload := `{ "profile": "quick", "kernels": ["linalg3", "cnn"] }`
	path := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Kernels) != 2 {
		t.Fatalf("expected 2 kernel filters, got %d", len(cfg.Kernels))
	}
	if cfg.RunCount() != 3 || cfg.WarmupCount() != 1 {
		t.Fatalf("expected quick profile, got %d/%d", cfg.WarmupCount(), cfg.RunCount())
	}
}

func TestLoadLegacyFallback(t *testing.T) {
	tempDir := t.TempDir()
	payload := `{ "runs": 7 }`
	if err := os.WriteFile(filepath.Join(tempDir, "kernbench.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}

	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.RunCount() != 7 || cfg.ConfigPath != "kernbench.json" {
		t.Fatalf("expected legacy config, got runs=%d path=%q", cfg.RunCount(), cfg.ConfigPath)
	}
}

func TestLoadInvalidRunsError(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"runs":-2}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for negative runs")
	}
}

func TestLoadMissingFileError(t *testing.T) {
	tempDir := t.TempDir()
	oldCwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing config")
	}
}
