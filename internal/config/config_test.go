package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f != (File{}) {
		t.Fatalf("expected zero value, got %+v", f)
	}
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".frz.toml")
	contents := `
root = "/tmp/project"
hidden = true
threads = 4
extensions = ["go", "md"]
reindex-delay = "2s"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Root != "/tmp/project" {
		t.Fatalf("Root = %q", f.Root)
	}
	if !f.Hidden {
		t.Fatal("expected Hidden=true")
	}
	if f.Threads != 4 {
		t.Fatalf("Threads = %d", f.Threads)
	}
	if len(f.Extensions) != 2 || f.Extensions[0] != "go" {
		t.Fatalf("Extensions = %v", f.Extensions)
	}
	if f.ReindexDelayDuration() != 2*time.Second {
		t.Fatalf("ReindexDelayDuration = %v", f.ReindexDelayDuration())
	}
}
