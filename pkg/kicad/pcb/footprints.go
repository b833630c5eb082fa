package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/sexp/kicadsexp"
)

// parseFootprints extracts all footprint definitions from the root node.
// Old board files call footprints "module"; both spellings are accepted.
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("expected root list")
	}

	footprintNodes := findAllNodes(root, "footprint")
	footprintNodes = append(footprintNodes, findAllNodes(root, "module")...)

	footprints := make([]Footprint, 0, len(footprintNodes))
	for _, fpNode := range footprintNodes {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			return nil, err
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{}

	// Footprint name in "library:name" format
	fpName, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	if colon := strings.IndexByte(fpName, ':'); colon > 0 {
		footprint.Library = fpName[:colon]
		footprint.Name = fpName[colon+1:]
	} else {
		footprint.Name = fpName
	}

	if layerNode, found := findNode(node, "layer"); found {
		layer, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("footprint %q: failed to parse layer: %w", fpName, err)
		}
		footprint.Layer = layer
	} else {
		return nil, fmt.Errorf("footprint %q: missing required 'layer' field", fpName)
	}

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPositionAngle(atNode)
		if err != nil {
			return nil, fmt.Errorf("footprint %q: failed to parse position: %w", fpName, err)
		}
		footprint.Position = pos
	} else {
		return nil, fmt.Errorf("footprint %q: missing required 'at' position", fpName)
	}

	// Reference and value come from (property ...) nodes in newer files
	for _, propNode := range findAllNodes(node, "property") {
		propName, err := getString(propNode, 1)
		if err != nil {
			continue
		}
		propValue, err := getString(propNode, 2)
		if err != nil {
			continue
		}

		switch propName {
		case "Reference":
			footprint.Reference = propValue
		case "Value":
			footprint.Value = propValue
		}
	}

	// Old files store them as (fp_text reference "R5" ...) instead
	if footprint.Reference == "" || footprint.Value == "" {
		for _, textNode := range findAllNodes(node, "fp_text") {
			kind, err := getString(textNode, 1)
			if err != nil {
				continue
			}
			text, err := getString(textNode, 2)
			if err != nil {
				continue
			}

			switch kind {
			case "reference":
				if footprint.Reference == "" {
					footprint.Reference = text
				}
			case "value":
				if footprint.Value == "" {
					footprint.Value = text
				}
			}
		}
	}

	for _, padNode := range findAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %q: %w", footprint.Reference, err)
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	return footprint, nil
}

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{}

	number, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	padType, err := getString(node, 2)
	if err != nil {
		return nil, fmt.Errorf("pad %q: failed to parse type: %w", number, err)
	}
	pad.Type = padType

	shape, err := getString(node, 3)
	if err != nil {
		return nil, fmt.Errorf("pad %q: failed to parse shape: %w", number, err)
	}
	pad.Shape = shape

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPositionAngle(atNode)
		if err != nil {
			return nil, fmt.Errorf("pad %q: failed to parse position: %w", number, err)
		}
		pad.Position = pos
	} else {
		return nil, fmt.Errorf("pad %q: missing required 'at' position", number)
	}

	if sizeNode, found := findNode(node, "size"); found {
		size, err := getSize(sizeNode)
		if err != nil {
			return nil, fmt.Errorf("pad %q: failed to parse size: %w", number, err)
		}
		pad.Size = size
	} else {
		return nil, fmt.Errorf("pad %q: missing required 'size' field", number)
	}

	// Trapezoid pads shear by (rect_delta dx dy)
	if deltaNode, found := findNode(node, "rect_delta"); found {
		dx, err := getFloat(deltaNode, 1)
		if err != nil {
			return nil, fmt.Errorf("pad %q: failed to parse rect_delta: %w", number, err)
		}
		dy := 0.0
		if v, err := getFloat(deltaNode, 2); err == nil {
			dy = v
		}
		pad.RectDelta = Size{Width: dx, Height: dy}
	}

	if drillNode, found := findNode(node, "drill"); found {
		drill, err := parseDrill(drillNode)
		if err != nil {
			return nil, fmt.Errorf("pad %q: %w", number, err)
		}
		pad.Drill = drill
	}

	if layersNode, found := findNode(node, "layers"); found {
		layers, err := getLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("pad %q: %w", number, err)
		}
		pad.Layers = layers
	} else {
		return nil, fmt.Errorf("pad %q: missing required 'layers' field", number)
	}

	if netNode, found := findNode(node, "net"); found {
		netNum, err := getInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				pad.Net = net
			}
		}
	}

	return pad, nil
}

// parseDrill extracts a drill definition.
// Formats: (drill 0.8), (drill oval 0.6 1.2), optionally with a
// trailing (offset x y) child.
func parseDrill(node kicadsexp.Sexp) (*Drill, error) {
	drill := &Drill{Shape: "circle"}

	first, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drill: %w", err)
	}

	if first == "oval" {
		drill.Shape = "oval"
		w, err := getFloat(node, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to parse oval drill width: %w", err)
		}
		h, err := getFloat(node, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to parse oval drill height: %w", err)
		}
		drill.Size = Size{Width: w, Height: h}
	} else {
		dia, err := getFloat(node, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse drill diameter: %w", err)
		}
		drill.Size = Size{Width: dia, Height: dia}
	}

	if offsetNode, found := findNode(node, "offset"); found {
		offset, err := getPositionXY(offsetNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse drill offset: %w", err)
		}
		drill.Offset = offset
	}

	return drill, nil
}
