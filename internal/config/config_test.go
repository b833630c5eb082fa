package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Thickness != 35 || cfg.ViaThickness != 17 {
		t.Errorf("copper thickness = %v/%v um, want 35/17", cfg.Thickness, cfg.ViaThickness)
	}
	if cfg.BoardThickness != 1.5 {
		t.Errorf("board thickness = %v, want 1.5", cfg.BoardThickness)
	}
	if cfg.Frequency != 0 {
		t.Errorf("frequency = %v, want DC", cfg.Frequency)
	}
	if len(cfg.Layers) != 2 || cfg.Layers[0] != "F.Cu" || cfg.Layers[1] != "B.Cu" {
		t.Errorf("layers = %v, want [F.Cu B.Cu]", cfg.Layers)
	}
	if cfg.Material.Conductivity != 5.8e7 {
		t.Errorf("conductivity = %v, want copper", cfg.Material.Conductivity)
	}
}

func TestLoadAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kicad2fec.toml")
	content := `
frequency = 1e6
thickness = 70
layers = ["F.Cu"]

[material]
conductivity = 3.5e7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	merged := cfg.Merge(Default())

	if merged.Frequency != 1e6 {
		t.Errorf("frequency = %v, want 1e6", merged.Frequency)
	}
	if merged.Thickness != 70 {
		t.Errorf("thickness = %v, want 70", merged.Thickness)
	}
	if merged.Material.Conductivity != 3.5e7 {
		t.Errorf("conductivity = %v, want 3.5e7", merged.Material.Conductivity)
	}
	if len(merged.Layers) != 1 || merged.Layers[0] != "F.Cu" {
		t.Errorf("layers = %v, want [F.Cu]", merged.Layers)
	}

	// Everything the file leaves out keeps its default.
	if merged.ViaThickness != 17 || merged.BoardThickness != 1.5 {
		t.Errorf("unset fields changed: via %v, board %v", merged.ViaThickness, merged.BoardThickness)
	}
	if merged.PadRatio != 0.5 || merged.Clearance != 0.5 {
		t.Errorf("unset fields changed: ratio %v, clearance %v", merged.PadRatio, merged.Clearance)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoadBadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("thickness = [35"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected a parse error")
	}
}
