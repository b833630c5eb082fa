package pcb

import "strings"

// Position is an X/Y coordinate in millimeters, in the board's coordinate
// system (y grows downward).
type Position struct {
	X float64
	Y float64
}

// PositionAngle is a position with a rotation in degrees, clockwise from
// vertical as KiCad stores it.
type PositionAngle struct {
	Position
	Angle float64
}

// Size is a width/height pair in millimeters
type Size struct {
	Width  float64
	Height float64
}

// Drill describes a pad's drill hole.
type Drill struct {
	Shape  string   // "circle" or "oval"
	Size   Size     // hole size; Height equals Width for round holes
	Offset Position // hole offset from the pad center
}

// Layer represents a PCB layer
type Layer struct {
	Number int    // Layer number (ordinal)
	Name   string // Layer name (e.g., "F.Cu", "B.Cu", "F.SilkS")
	Type   string // Layer type (e.g., "signal", "user")
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// LayerSet represents a set of layer names. Entries may use KiCad's
// wildcard notation ("*.Cu" matches every copper layer).
type LayerSet []string

// Contains reports whether the set covers the named layer, honoring
// wildcards on the name part. "F.Cu" is covered by "F.Cu" and "*.Cu" but
// not by "B.Cu" or "*.Mask".
func (ls LayerSet) Contains(layer string) bool {
	wantName, wantType, ok := splitLayer(layer)
	for _, entry := range ls {
		if entry == layer {
			return true
		}
		if !ok {
			continue
		}
		name, typ, entryOK := splitLayer(entry)
		if !entryOK {
			continue
		}
		if typ == wantType && (name == "*" || name == wantName) {
			return true
		}
	}
	return false
}

// splitLayer breaks "F.Cu" into ("F", "Cu"). Layer names without a dot
// report ok=false and only match literally.
func splitLayer(s string) (name, typ string, ok bool) {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// LayerMap provides efficient lookup of layers by number or name
type LayerMap struct {
	byNumber map[int]*Layer
	byName   map[string]*Layer
}

// NewLayerMap creates a LayerMap from a slice of layers
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*Layer),
		byName:   make(map[string]*Layer),
	}

	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
	}

	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// GetByNumber retrieves a layer by its number
func (lm *LayerMap) GetByNumber(num int) (*Layer, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// IsCopperLayer checks if a layer is a copper layer
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.byName[name]
	if !ok {
		return false
	}
	return layer.Type == "signal" || layer.Type == "power" || layer.Type == "mixed"
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		// Only index non-empty names
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// IsUnconnected checks if a net number represents an unconnected net.
// In KiCad, net 0 is reserved for unconnected pins.
func (nm *NetMap) IsUnconnected(num int) bool {
	return num == 0
}
