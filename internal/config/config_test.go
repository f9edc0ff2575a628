package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathReturnsZeroValue(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DefaultSource != "" {
		t.Fatalf("s = %+v, want zero value", s)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fwconvert.yaml")
	content := "default_source: asa\ndefault_target: fortinet\ninterfaces:\n  inside: port1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DefaultSource != "asa" || s.DefaultTarget != "fortinet" {
		t.Fatalf("s = %+v", s)
	}
	if s.Interfaces["inside"] != "port1" {
		t.Fatalf("Interfaces = %v", s.Interfaces)
	}
}
