package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if s.LogLevel != want.LogLevel || s.LogFormat != want.LogFormat || s.MetricsAddr != want.MetricsAddr || s.MaxQueueLen != want.MaxQueueLen {
		t.Fatalf("Load(\"\") = %+v, want %+v", s, want)
	}
}

func TestLoadSettingsFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("loglevel: debug\nmetricsaddr: \":9999\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", s.LogLevel, "debug")
	}
	if s.MetricsAddr != ":9999" {
		t.Fatalf("MetricsAddr = %q, want %q", s.MetricsAddr, ":9999")
	}
	// Untouched by the file, still the default.
	if s.LogFormat != "json" {
		t.Fatalf("LogFormat = %q, want %q", s.LogFormat, "json")
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("loglevel: debug\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("OPSINJECT_LOGLEVEL", "warn")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want %q", s.LogLevel, "warn")
	}
}

func TestValidateRequiresRecipePath(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != ErrEmptyRecipePath {
		t.Fatalf("Validate() = %v, want ErrEmptyRecipePath", err)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	s := Default()
	s.RecipePath = "recipe.bin"
	s.LogLevel = "verbose"
	if err := s.Validate(); err != ErrInvalidLogLevel {
		t.Fatalf("Validate() = %v, want ErrInvalidLogLevel", err)
	}
}
