package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Export.Format != "json" {
		t.Errorf("expected format json, got %s", cfg.Export.Format)
	}
	if cfg.Export.Indent != 4 {
		t.Errorf("expected indent 4, got %d", cfg.Export.Indent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checktree.yaml")
	data := []byte("export:\n  format: yaml\nview:\n  theme: ocean\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Export.Format != "yaml" || cfg.View.Theme != "ocean" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Export.Indent != DefaultIndent || cfg.DataDir != DefaultDataDir {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("export:\n  format: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Export.ArraysAsObjects = true
	cfg.Log.File = "trace.log"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("classic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Export.ArraysAsObjects {
		t.Error("expected classic preset to export arrays as objects")
	}

	cfg.Export.Indent = 9
	if Presets["classic"].Export.Indent == 9 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadOverKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("export:\n  indent: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOver(path, GetPreset("classic"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Export.Indent != 3 {
		t.Errorf("expected indent 3, got %d", cfg.Export.Indent)
	}
	if !cfg.Export.ArraysAsObjects || cfg.View.Theme != "minimal" {
		t.Errorf("expected preset values to survive, got %+v", cfg)
	}
}
