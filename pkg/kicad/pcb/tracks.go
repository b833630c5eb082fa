package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/sexp/kicadsexp"
)

// parseTracks extracts all track segments from the root node
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, error) {
	segmentNodes := findAllNodes(root, "segment")

	tracks := make([]Track, 0, len(segmentNodes))
	for _, segNode := range segmentNodes {
		track, err := parseSegment(segNode, netMap)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}

	return tracks, nil
}

// parseSegment extracts a track segment (copper trace)
// Expected format: (segment (start x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseSegment(node kicadsexp.Sexp, netMap *NetMap) (*Track, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected segment list, got leaf")
	}

	track := &Track{}

	if startNode, found := findNode(node, "start"); found {
		start, err := getPositionXY(startNode)
		if err != nil {
			return nil, fmt.Errorf("segment: failed to parse start position: %w", err)
		}
		track.Start = start
	} else {
		return nil, fmt.Errorf("segment: missing required 'start' position")
	}

	if endNode, found := findNode(node, "end"); found {
		end, err := getPositionXY(endNode)
		if err != nil {
			return nil, fmt.Errorf("segment: failed to parse end position: %w", err)
		}
		track.End = end
	} else {
		return nil, fmt.Errorf("segment: missing required 'end' position")
	}

	if widthNode, found := findNode(node, "width"); found {
		width, err := getFloat(widthNode, 1)
		if err != nil {
			return nil, fmt.Errorf("segment: failed to parse width: %w", err)
		}
		track.Width = width
	} else {
		return nil, fmt.Errorf("segment: missing required 'width' field")
	}

	if layerNode, found := findNode(node, "layer"); found {
		layer, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("segment: failed to parse layer: %w", err)
		}
		track.Layer = layer
	} else {
		return nil, fmt.Errorf("segment: missing required 'layer' field")
	}

	// Net is optional, segments may be unconnected
	if netNode, found := findNode(node, "net"); found {
		netNum, err := getInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				track.Net = net
			}
		}
	}

	if _, found := findNode(node, "locked"); found {
		track.Locked = true
	}

	return track, nil
}

// parseVias extracts all via definitions from the root node
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	viaNodes := findAllNodes(root, "via")

	vias := make([]Via, 0, len(viaNodes))
	for _, viaNode := range viaNodes {
		via, err := parseVia(viaNode, netMap)
		if err != nil {
			return nil, err
		}
		vias = append(vias, *via)
	}

	return vias, nil
}

// parseVia extracts a via definition
// Expected format: (via (at x y) (size diameter) (drill diameter) (layers "L1" "L2") (net n) ...)
func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected via list, got leaf")
	}

	via := &Via{}

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPositionXY(atNode)
		if err != nil {
			return nil, fmt.Errorf("via: failed to parse position: %w", err)
		}
		via.Position = pos
	} else {
		return nil, fmt.Errorf("via: missing required 'at' position")
	}

	if sizeNode, found := findNode(node, "size"); found {
		size, err := getFloat(sizeNode, 1)
		if err != nil {
			return nil, fmt.Errorf("via: failed to parse size: %w", err)
		}
		via.Size = size
	} else {
		return nil, fmt.Errorf("via: missing required 'size' field")
	}

	if drillNode, found := findNode(node, "drill"); found {
		drill, err := getFloat(drillNode, 1)
		if err != nil {
			return nil, fmt.Errorf("via: failed to parse drill: %w", err)
		}
		via.Drill = drill
	} else {
		return nil, fmt.Errorf("via: missing required 'drill' field")
	}

	if layersNode, found := findNode(node, "layers"); found {
		layers, err := getLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("via: %w", err)
		}
		via.Layers = layers
	} else {
		return nil, fmt.Errorf("via: missing required 'layers' field")
	}

	if netNode, found := findNode(node, "net"); found {
		netNum, err := getInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				via.Net = net
			}
		}
	}

	if _, found := findNode(node, "locked"); found {
		via.Locked = true
	}

	return via, nil
}
