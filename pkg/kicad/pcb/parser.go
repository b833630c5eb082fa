package pcb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses a KiCad board from a string (convenience function)
func ParseString(s string) (*Board, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	// Parse s-expressions directly from the reader, streaming
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root := sexps[0]

	rootName, err := getNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}

	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if generalNode, found := findNode(root, "general"); found {
		general, err := parseGeneral(generalNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse general section: %w", err)
		}
		board.General = *general
	}

	if layersNode, found := findNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.Nets = nets

	// Net map for resolving net numbers on copper items
	netMap := NewNetMap(board.Nets)

	tracks, err := parseTracks(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	board.Tracks = tracks

	vias, err := parseVias(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}
	board.Vias = vias

	footprints, err := parseFootprints(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	board.Footprints = footprints

	zones, err := parseZones(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("failed to parse zones: %w", err)
	}
	board.Zones = zones

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := findNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := getInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	// The generator field moved between file format eras:
	// old boards carry (host pcbnew "(5.1.6)"), newer ones
	// (generator "pcbnew").
	gen := "unknown"
	if hostNode, found := findNode(root, "host"); found {
		if toolName, err := getString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := findNode(root, "generator"); found {
		if generatorName, err := getString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6) (title "Board") ...)
func parseGeneral(node kicadsexp.Sexp) (*General, error) {
	general := &General{}

	if thicknessNode, found := findNode(node, "thickness"); found {
		thickness, err := getFloat(thicknessNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse thickness: %w", err)
		}
		general.Thickness = thickness
	}

	if titleNode, found := findNode(node, "title"); found {
		if title, err := getString(titleNode, 1); err == nil {
			general.Title = title
		}
	}

	if dateNode, found := findNode(node, "date"); found {
		if date, err := getString(dateNode, 1); err == nil {
			general.Date = date
		}
	}

	if revNode, found := findNode(node, "rev"); found {
		if rev, err := getString(revNode, 1); err == nil {
			general.Revision = rev
		}
	}

	if companyNode, found := findNode(node, "company"); found {
		if company, err := getString(companyNode, 1); err == nil {
			general.Company = company
		}
	}

	return general, nil
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected (layers ...) list")
	}

	layerNodes := getListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer

	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		// Individual layer: (number "name" type)
		number, err := getInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}

		layerType, err := getString(layerNode, 2)
		if err != nil {
			// Layer type is optional in some cases
			layerType = "user"
		}

		layers = append(layers, Layer{
			Number: number,
			Name:   name,
			Type:   layerType,
		})
	}

	return layers, nil
}

// parseNets extracts net definitions from the root node.
// Each net is a top-level node: (net 0 "") (net 1 "GND") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	netNodes := findAllNodes(root, "net")

	nets := make([]Net, 0, len(netNodes))
	for _, netNode := range netNodes {
		number, err := getInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Name is optional (net 0 often has an empty name)
		name := ""
		if nameStr, err := getString(netNode, 2); err == nil {
			name = nameStr
		}

		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}
