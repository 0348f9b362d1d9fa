package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	browser := "chrome"
	port := 9333
	timeout := "30s"
	output := "text"
	applyFileConfig(cfg, &fileConfig{
		Browser: &browser,
		Port:    &port,
		Timeout: &timeout,
		Output:  &output,
	})

	if cfg.Browser != "chrome" {
		t.Errorf("Browser = %q", cfg.Browser)
	}
	if cfg.Port != 9333 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Output != "text" {
		t.Errorf("Output = %q", cfg.Output)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q", cfg.Host)
	}
}

func TestApplyFileConfig_InvalidTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	bad := "soon"
	applyFileConfig(cfg, &fileConfig{Timeout: &bad})
	if cfg.Timeout != 10*time.Second {
		t.Errorf("invalid timeout must be ignored, got %v", cfg.Timeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".droverrc")
	if err := os.WriteFile(rc, []byte(`{"port": 9444, "browser": "chromium"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg := DefaultConfig()
	loadConfigFile(cfg)
	if cfg.Port != 9444 {
		t.Errorf("Port = %d, want 9444", cfg.Port)
	}
	if cfg.Browser != "chromium" {
		t.Errorf("Browser = %q, want chromium", cfg.Browser)
	}
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".droverrc")
	if err := os.WriteFile(rc, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg := DefaultConfig()
	loadConfigFile(cfg)
	if cfg.Port != 9222 {
		t.Errorf("malformed config must be skipped, Port = %d", cfg.Port)
	}
}

func TestApplyEnvVars(t *testing.T) {
	t.Setenv("DROVER_PORT", "9555")
	t.Setenv("DROVER_HOST", "remote.test")
	t.Setenv("DROVER_BROWSER", "chrome")

	cfg := DefaultConfig()
	applyEnvVars(cfg, map[string]bool{})
	if cfg.Port != 9555 {
		t.Errorf("Port = %d, want 9555", cfg.Port)
	}
	if cfg.Host != "remote.test" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Browser != "chrome" {
		t.Errorf("Browser = %q", cfg.Browser)
	}
}

func TestApplyEnvVars_ExplicitFlagWins(t *testing.T) {
	t.Setenv("DROVER_PORT", "9555")

	cfg := DefaultConfig()
	cfg.Port = 9666 // as if set by flag
	applyEnvVars(cfg, map[string]bool{"port": true})
	if cfg.Port != 9666 {
		t.Errorf("explicit flag must beat env var, Port = %d", cfg.Port)
	}
}
