package pcb

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/sexp/kicadsexp"
)

// parseZones extracts all zone definitions from the root node
func parseZones(root kicadsexp.Sexp, netMap *NetMap) ([]Zone, error) {
	zoneNodes := findAllNodes(root, "zone")

	zones := make([]Zone, 0, len(zoneNodes))
	for _, zoneNode := range zoneNodes {
		parsed, err := parseZone(zoneNode, netMap)
		if err != nil {
			return nil, err
		}
		zones = append(zones, parsed...)
	}

	return zones, nil
}

// parseZone extracts a zone (copper fill) definition.
// Returns a slice because multi-layer zones create one Zone per layer.
func parseZone(node kicadsexp.Sexp, netMap *NetMap) ([]Zone, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected zone list, got leaf")
	}

	baseZone := Zone{}

	if netNode, found := findNode(node, "net"); found {
		netNum, err := getInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				baseZone.Net = net
			}
		}
	}

	// The fill stroke width; filled polygons are outlines that must be
	// inflated by half of it to recover the true copper extent.
	if mtNode, found := findNode(node, "min_thickness"); found {
		mt, err := getFloat(mtNode, 1)
		if err != nil {
			return nil, fmt.Errorf("zone: failed to parse min_thickness: %w", err)
		}
		baseZone.MinThickness = mt
	}

	if polyNode, found := findNode(node, "polygon"); found {
		if ptsNode, found := findNode(polyNode, "pts"); found {
			points, err := parsePoints(ptsNode)
			if err != nil {
				return nil, fmt.Errorf("zone: failed to parse outline: %w", err)
			}
			baseZone.Outline = points
		}
	}

	// Single-layer zones use (layer ...); multi-layer zones declare
	// (layers ...) and tag each filled_polygon with its own layer.
	var zoneLayers []string
	isMultiLayer := false

	if layerNode, found := findNode(node, "layer"); found {
		if layer, err := getString(layerNode, 1); err == nil {
			zoneLayers = append(zoneLayers, layer)
		}
	}

	if layersNode, found := findNode(node, "layers"); found {
		zoneLayers = nil
		isMultiLayer = true
		for _, item := range getListItems(layersNode) {
			if sym, ok := item.(kicadsexp.Symbol); ok {
				zoneLayers = append(zoneLayers, string(sym))
			}
		}
	}

	filledPolyNodes := findAllNodes(node, "filled_polygon")

	if isMultiLayer {
		fillsByLayer := make(map[string][][]Position)

		for _, fpNode := range filledPolyNodes {
			var fillLayer string
			if layerNode, found := findNode(fpNode, "layer"); found {
				if layer, err := getString(layerNode, 1); err == nil {
					fillLayer = layer
				}
			}

			ptsNode, found := findNode(fpNode, "pts")
			if !found {
				continue
			}
			points, err := parsePoints(ptsNode)
			if err != nil {
				return nil, fmt.Errorf("zone: failed to parse filled_polygon: %w", err)
			}
			if fillLayer != "" {
				fillsByLayer[fillLayer] = append(fillsByLayer[fillLayer], points)
			}
		}

		// One zone per layer that has fills, in stable layer order
		layers := make([]string, 0, len(fillsByLayer))
		for layer := range fillsByLayer {
			layers = append(layers, layer)
		}
		sort.Strings(layers)

		zones := make([]Zone, 0, len(layers))
		for _, layer := range layers {
			zone := baseZone
			zone.Layer = layer
			zone.Fills = fillsByLayer[layer]
			zones = append(zones, zone)
		}
		return zones, nil
	}

	// Single-layer zone: all fills belong to the declared layer
	for _, fpNode := range filledPolyNodes {
		ptsNode, found := findNode(fpNode, "pts")
		if !found {
			continue
		}
		points, err := parsePoints(ptsNode)
		if err != nil {
			return nil, fmt.Errorf("zone: failed to parse filled_polygon: %w", err)
		}
		baseZone.Fills = append(baseZone.Fills, points)
	}

	zones := make([]Zone, 0, len(zoneLayers))
	for _, layer := range zoneLayers {
		zone := baseZone
		zone.Layer = layer
		zones = append(zones, zone)
	}
	return zones, nil
}
