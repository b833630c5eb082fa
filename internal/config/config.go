// Package config loads kicad2fec settings from an optional TOML file
// and layers them under the command line flags.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config mirrors the TOML configuration file. Zero values mean unset;
// Merge fills them in from a lower-priority source.
type Config struct {
	// Frequency is the simulation frequency in Hz. Zero is DC.
	Frequency float64 `toml:"frequency"`

	// Thickness is the copper thickness in um.
	Thickness float64 `toml:"thickness"`

	// BoardThickness is the substrate thickness in mm.
	BoardThickness float64 `toml:"board-thickness"`

	// ViaThickness is the via plating thickness in um.
	ViaThickness float64 `toml:"via-thickness"`

	// Clearance is the spacing between placed layout elements in mm.
	Clearance float64 `toml:"clearance"`

	// PadRatio is the default conductor area ratio for surface pads.
	PadRatio float64 `toml:"pad-ratio"`

	// Layers lists the copper layers to model, top first.
	Layers []string `toml:"layers"`

	Material Material `toml:"material"`
}

// Material holds the conductor material parameters.
type Material struct {
	// Conductivity in S/m.
	Conductivity float64 `toml:"conductivity"`
}

// Default returns the built-in configuration: 1 oz copper (35 um) on a
// 1.5 mm substrate with 17 um via plating, simulated at DC.
func Default() Config {
	return Config{
		Frequency:      0,
		Thickness:      35,
		BoardThickness: 1.5,
		ViaThickness:   17,
		Clearance:      0.5,
		PadRatio:       0.5,
		Layers:         []string{"F.Cu", "B.Cu"},
		Material:       Material{Conductivity: 5.8e7},
	}
}

// Load reads a TOML configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Merge overlays c on base: fields set in c win, the rest keep the
// base value. A zero Frequency reads as unset, which is harmless
// because its default is zero (DC) anyway.
func (c Config) Merge(base Config) Config {
	out := base
	if c.Frequency != 0 {
		out.Frequency = c.Frequency
	}
	if c.Thickness != 0 {
		out.Thickness = c.Thickness
	}
	if c.BoardThickness != 0 {
		out.BoardThickness = c.BoardThickness
	}
	if c.ViaThickness != 0 {
		out.ViaThickness = c.ViaThickness
	}
	if c.Clearance != 0 {
		out.Clearance = c.Clearance
	}
	if c.PadRatio != 0 {
		out.PadRatio = c.PadRatio
	}
	if len(c.Layers) > 0 {
		out.Layers = c.Layers
	}
	if c.Material.Conductivity != 0 {
		out.Material.Conductivity = c.Material.Conductivity
	}
	return out
}
