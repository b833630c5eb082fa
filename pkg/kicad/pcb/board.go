package pcb

// Board represents a complete KiCad PCB
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Tracks     []Track     // Track segments
	Vias       []Via       // Vias
	Zones      []Zone      // Filled zones
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string  // Board title
	Date      string  // Design date
	Revision  string  // Board revision
	Company   string  // Company name
}

// Footprint represents a component footprint
type Footprint struct {
	Library   string        // Library name
	Name      string        // Footprint name
	Layer     string        // Layer (F.Cu or B.Cu typically)
	Position  PositionAngle // Position and rotation
	Pads      []Pad         // Pads
	Reference string        // Reference designator (e.g., "R1")
	Value     string        // Component value
}

// Pad represents a footprint pad. Position is relative to the footprint
// origin (unrotated); Angle is the pad's absolute rotation as KiCad
// stores it.
type Pad struct {
	Number    string        // Pad number/name
	Type      string        // Pad type (thru_hole, smd, connect, np_thru_hole)
	Shape     string        // Pad shape (circle, oval, rect, trapezoid, ...)
	Position  PositionAngle // Position and rotation
	Size      Size          // Pad size
	RectDelta Size          // Trapezoid delta (zero for other shapes)
	Drill     *Drill        // Drill hole (nil for SMD pads)
	Layers    LayerSet      // Layers the pad appears on, may hold wildcards
	Net       *Net          // Connected net (if any)
}

// Track represents a copper track segment
type Track struct {
	Start  Position // Start point
	End    Position // End point
	Width  float64  // Track width in mm
	Layer  string   // Layer name
	Net    *Net     // Connected net
	Locked bool     // Whether track is locked
}

// Via represents a board via
type Via struct {
	Position Position // Via position
	Size     float64  // Via diameter
	Drill    float64  // Drill diameter
	Layers   LayerSet // Layer pair
	Net      *Net     // Connected net
	Locked   bool     // Whether via is locked
}

// Zone represents a filled copper zone on a single layer. Multi-layer
// zones in the file are split into one Zone per layer.
type Zone struct {
	Net          *Net         // Connected net
	Layer        string       // Layer name
	Outline      []Position   // Zone outline polygon
	Fills        [][]Position // Filled polygon rings
	MinThickness float64      // Minimum fill stroke thickness in mm
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// GetFootprint returns a footprint by reference designator, or nil if
// not found.
func (b *Board) GetFootprint(reference string) *Footprint {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == reference {
			return &b.Footprints[i]
		}
	}
	return nil
}

// GetNetPads returns all pads connected to a specific net
func (b *Board) GetNetPads(netName string) []Pad {
	var pads []Pad
	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Name == netName {
				pads = append(pads, pad)
			}
		}
	}
	return pads
}

// GetNetTracks returns all tracks connected to a specific net
func (b *Board) GetNetTracks(netName string) []Track {
	var tracks []Track
	for _, track := range b.Tracks {
		if track.Net != nil && track.Net.Name == netName {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// GetNetVias returns all vias connected to a specific net
func (b *Board) GetNetVias(netName string) []Via {
	var vias []Via
	for _, via := range b.Vias {
		if via.Net != nil && via.Net.Name == netName {
			vias = append(vias, via)
		}
	}
	return vias
}

// GetAllNetNames returns a list of all net names in the board
func (b *Board) GetAllNetNames() []string {
	names := make([]string, len(b.Nets))
	for i, net := range b.Nets {
		names[i] = net.Name
	}
	return names
}

// PadCount returns the total number of pads across all footprints
func (b *Board) PadCount() int {
	n := 0
	for _, fp := range b.Footprints {
		n += len(fp.Pads)
	}
	return n
}

// CopperLayerNames returns the names of all copper layers in board order
func (b *Board) CopperLayerNames() []string {
	lm := NewLayerMap(b.Layers)
	var names []string
	for _, layer := range b.Layers {
		if lm.IsCopperLayer(layer.Name) {
			names = append(names, layer.Name)
		}
	}
	return names
}
