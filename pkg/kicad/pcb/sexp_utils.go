package pcb

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers.
//
// All coordinates in KiCad board files are plain millimeters and angles
// are degrees; values are used as read.

// findNode searches for a child node with the given key (first symbol).
// Example: findNode(sexp, "at") finds (at 100 50) in a list.
func findNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range sexpToSlice(s) {
		if item == nil {
			continue
		}

		if item.IsLeaf() {
			if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == key {
				return item, true
			}
			continue
		}

		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			return item, true
		}
	}

	return nil, false
}

// findAllNodes finds all child list nodes with the given key
func findAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp

	for _, item := range sexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}

		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			results = append(results, item)
		}
	}

	return results
}

// getListItems returns all items in a list excluding the first symbol/key.
// Example: getListItems((layers "F.Cu" "B.Cu")) returns [F.Cu, B.Cu].
func getListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := sexpToSlice(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// sexpToSlice converts an s-expression list to a Go slice
func sexpToSlice(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}
	if list, ok := s.(*kicadsexp.List); ok {
		return list.Elements()
	}
	return nil
}

// getString extracts a string value at the given index in a list.
// Index 0 is the key, 1 is the first value, etc.
func getString(s kicadsexp.Sexp, index int) (string, error) {
	if s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := sexpToSlice(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
}

// getFloat extracts a float64 value at the given index
func getFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// getInt extracts an int value at the given index
func getInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// getPositionAngle extracts a position with optional rotation from an
// (at X Y [angle]) node.
func getPositionAngle(s kicadsexp.Sexp) (PositionAngle, error) {
	pos, err := getPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Position: pos}

	// The angle is optional and defaults to 0
	if angle, err := getFloat(s, 3); err == nil {
		result.Angle = angle
	}

	return result, nil
}

// getPositionXY extracts X,Y coordinates from a (keyword X Y) node.
// Used for (at X Y), (start X Y), (end X Y), (xy X Y), etc.
func getPositionXY(s kicadsexp.Sexp) (Position, error) {
	if s.IsLeaf() {
		return Position{}, fmt.Errorf("expected position list")
	}

	x, err := getFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := getFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return Position{X: x, Y: y}, nil
}

// getSize extracts a (size W [H]) node. A single value is used for both
// dimensions, as in via and drill sizes.
func getSize(s kicadsexp.Sexp) (Size, error) {
	if s.IsLeaf() {
		return Size{}, fmt.Errorf("expected size list")
	}

	w, err := getFloat(s, 1)
	if err != nil {
		return Size{}, fmt.Errorf("failed to parse width: %w", err)
	}

	size := Size{Width: w, Height: w}
	if h, err := getFloat(s, 2); err == nil {
		size.Height = h
	}

	return size, nil
}

// getLayers extracts layer names from a (layer "F.Cu") or
// (layers "F.Cu" "B.Cu" "*.Mask") node.
func getLayers(s kicadsexp.Sexp) (LayerSet, error) {
	if s.IsLeaf() {
		return nil, fmt.Errorf("expected layer list")
	}

	keyword, err := getString(s, 0)
	if err != nil {
		return nil, err
	}

	switch keyword {
	case "layer":
		layer, err := getString(s, 1)
		if err != nil {
			return nil, err
		}
		return LayerSet{layer}, nil

	case "layers":
		var layers LayerSet
		for _, item := range getListItems(s) {
			if sym, ok := item.(kicadsexp.Symbol); ok {
				layers = append(layers, string(sym))
			}
		}
		return layers, nil

	default:
		return nil, fmt.Errorf("expected 'layer' or 'layers', got %q", keyword)
	}
}

// parsePoints extracts xy coordinate pairs from a (pts (xy ..) (xy ..))
// node.
func parsePoints(ptsNode kicadsexp.Sexp) ([]Position, error) {
	var points []Position

	for _, item := range getListItems(ptsNode) {
		if item.IsLeaf() {
			continue
		}

		first, err := getString(item, 0)
		if err != nil || first != "xy" {
			continue
		}

		pos, err := getPositionXY(item)
		if err != nil {
			return nil, err
		}
		points = append(points, pos)
	}

	return points, nil
}

// hasSymbol checks if a list contains a specific symbol
func hasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range sexpToSlice(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// getNodeName returns the first symbol of a list (the node type/name)
func getNodeName(s kicadsexp.Sexp) (string, error) {
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at head of list")
}
