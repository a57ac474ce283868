package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != filepath.Join(dir, "db") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Storage.Backend != "local" || cfg.Storage.Root != "/" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dir: /var/lib/diarizer
engine:
  max_speakers: 4
  window_seconds: 5
storage:
  backend: s3
  bucket: recordings
  region: eu-west-1
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/var/lib/diarizer" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Engine.MaxSpeakers != 4 || cfg.Engine.WindowSeconds != 5 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "recordings" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	// Root default still applies for the unused local backend.
	if cfg.Storage.Root != "/" {
		t.Errorf("Root = %q", cfg.Storage.Root)
	}
}

func TestLoadFromBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("data_dir: [not: closed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Fatal("malformed config accepted")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Engine.MaxSpeakers = 6
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Engine.MaxSpeakers != 6 {
		t.Errorf("MaxSpeakers = %d after round trip", loaded.Engine.MaxSpeakers)
	}
}
