package convert

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

// Layout maps the multi-layer board geometry into the single output
// plane. The top layer is mirrored over the x-axis, the bottom layer is
// reflected through the origin and shifted to the right of the top, and
// unrolled via strips are placed in rows below both, wrapping when a
// row runs past the right edge.
//
// Initialization is two-phase: the static configuration is fixed at
// construction, the placement offsets are derived from the discovered
// copper bounds with SetBounds. Placing before both phases completed is
// an error.
type Layout struct {
	layers         []string
	top            string
	bottom         string
	boardThickness float64
	clearance      float64

	copper *fec.BlockProperty
	via    *fec.BlockProperty

	bounded bool

	bottomXOff   float64
	viaYMax      float64
	viaXMin      float64
	viaRowXMin   float64
	viaRowXMax   float64
	viaRowHeight float64
}

// NewLayout fixes the static layout configuration: the layer pair (the
// second layer may be absent for single-sided boards), the board
// thickness used for via strips, the block properties stamped on
// copper and via regions, and the clearance left between placed
// elements.
func NewLayout(layers []string, boardThickness float64, copper, via *fec.BlockProperty, clearance float64) (*Layout, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("layout has no layers: %w", ErrConfiguration)
	}
	l := &Layout{
		layers:         layers,
		top:            layers[0],
		boardThickness: boardThickness,
		clearance:      clearance,
		copper:         copper,
		via:            via,
	}
	if len(layers) > 1 {
		l.bottom = layers[1]
	}
	return l, nil
}

// Layers returns the configured layer names, top first.
func (l *Layout) Layers() []string { return l.layers }

// BoardThickness returns the configured board thickness.
func (l *Layout) BoardThickness() float64 { return l.boardThickness }

// CopperProperty returns the block property for copper regions.
func (l *Layout) CopperProperty() *fec.BlockProperty { return l.copper }

// ViaProperty returns the block property for unrolled via strips.
func (l *Layout) ViaProperty() *fec.BlockProperty { return l.via }

// SetBounds derives the placement offsets from the bounding boxes of
// the copper discovered on the top and bottom layers. A zero rectangle
// stands for an empty layer.
func (l *Layout) SetBounds(top, bottom geometry.Rect) {
	l.bottomXOff = top.MaxX + bottom.MaxX + l.clearance

	// Via rows start below the lower edge of the mirrored layers and
	// span the combined width of both.
	l.viaYMax = -math.Max(top.MaxY, bottom.MaxY) - l.clearance
	l.viaXMin = top.MinX
	l.viaRowXMin = top.MinX
	l.viaRowXMax = top.MaxX + bottom.MaxX - bottom.MinX + l.clearance
	l.viaRowHeight = 0

	l.bounded = true
}

// PlacePoint maps a board-coordinate point into the output plane for
// the given layer.
func (l *Layout) PlacePoint(pt geom.Point, layer string) (geom.Point, error) {
	if !l.bounded {
		return geom.Point{}, fmt.Errorf("layout bounds not initialized: %w", ErrConfiguration)
	}
	switch layer {
	case l.top:
		return geom.Point{X: pt.X, Y: -pt.Y}, nil
	case l.bottom:
		return geom.Point{X: -pt.X + l.bottomXOff, Y: -pt.Y}, nil
	}
	return geom.Point{}, fmt.Errorf("layer %q not found in the layout: %w", layer, ErrConfiguration)
}

// Place maps a board-coordinate polygon into the output plane for the
// given layer.
func (l *Layout) Place(p geom.Polygon, layer string) (geom.Polygon, error) {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			placed, err := l.PlacePoint(pt, layer)
			if err != nil {
				return nil, err
			}
			r[j] = placed
		}
		out[i] = r
	}
	return out, nil
}

// PlaceVia reserves the next via-row slot for an unrolled strip with
// the given bounds and returns the translation that moves the strip
// into it. The cursor advances by the strip width plus clearance and
// wraps to a new row once it passes the right edge.
func (l *Layout) PlaceVia(bounds geometry.Rect) (dx, dy float64, err error) {
	if !l.bounded {
		return 0, 0, fmt.Errorf("layout bounds not initialized: %w", ErrConfiguration)
	}

	dx = l.viaXMin - bounds.MinX
	dy = l.viaYMax - bounds.MaxY

	l.viaXMin += bounds.Width() + l.clearance
	l.viaRowHeight = math.Max(l.viaRowHeight, bounds.Height())
	if l.viaXMin > l.viaRowXMax {
		l.viaYMax -= l.viaRowHeight + l.clearance
		l.viaRowHeight = 0
		l.viaXMin = l.viaRowXMin
	}
	return dx, dy, nil
}
