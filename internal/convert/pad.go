package convert

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/conductors"
	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/pcb"
)

// padItem normalizes the board-side description of a copper contact so
// footprint pads and bare board vias share one code path.
type padItem struct {
	pos       pcb.PositionAngle
	size      pcb.Size
	rectDelta pcb.Size
	shape     string
	padType   string
	drill     *pcb.Drill
	layers    pcb.LayerSet
	netName   string
	number    string

	// parent footprint placement; nil for board vias
	parent *pcb.Footprint
}

func itemFromPad(pad *pcb.Pad, parent *pcb.Footprint) padItem {
	item := padItem{
		pos:       pad.Position,
		size:      pad.Size,
		rectDelta: pad.RectDelta,
		shape:     pad.Shape,
		padType:   pad.Type,
		drill:     pad.Drill,
		layers:    pad.Layers,
		number:    pad.Number,
		parent:    parent,
	}
	if pad.Net != nil {
		item.netName = pad.Net.Name
	}
	return item
}

// itemFromVia synthesizes the pad view of a board via: a circular
// through-hole pad at an absolute position.
func itemFromVia(via *pcb.Via) padItem {
	item := padItem{
		pos:     pcb.PositionAngle{Position: via.Position},
		size:    pcb.Size{Width: via.Size, Height: via.Size},
		shape:   "circle",
		padType: "thru_hole",
		drill: &pcb.Drill{
			Shape: "circle",
			Size:  pcb.Size{Width: via.Drill, Height: via.Drill},
		},
		layers: via.Layers,
	}
	if via.Net != nil {
		item.netName = via.Net.Name
	}
	return item
}

func (it *padItem) onLayer(layer string) bool { return it.layers.Contains(layer) }

// Pad is a copper contact under conversion, with lazily computed
// board-coordinate outlines.
type Pad struct {
	item  padItem
	ratio float64

	haveCenter bool
	center     geom.Point

	copper        geom.Polygon
	conductorPoly geom.Polygon

	conductor *fec.Conductor

	// blocks whose polygon contains this pad's center
	blocks []*Block
}

func newPad(item padItem, ratio float64) *Pad {
	return &Pad{item: item, ratio: ratio}
}

// Center returns the pad center in absolute board coordinates. A
// footprint pad's position is footprint-relative: it is rotated by the
// negated footprint angle about the origin, then shifted by the
// footprint position. Board vias are already absolute.
func (p *Pad) Center() geom.Point {
	if !p.haveCenter {
		c := geom.Point{X: p.item.pos.X, Y: p.item.pos.Y}
		if p.item.parent != nil {
			at := p.item.parent.Position
			c = geometry.RotatePoint(c, -at.Angle, geom.Point{})
			c = geom.Point{X: c.X + at.X, Y: c.Y + at.Y}
		}
		p.center = c
		p.haveCenter = true
	}
	return p.center
}

// HoleCenter returns the drill label position: the center for
// through-hole pads; for surface pads the center shifted by the drill
// offset and rotated into pad orientation.
func (p *Pad) HoleCenter() geom.Point {
	c := p.Center()
	if p.item.padType != "smd" {
		return c
	}
	h := c
	if p.item.drill != nil {
		h = geom.Point{X: h.X + p.item.drill.Offset.X, Y: h.Y + p.item.drill.Offset.Y}
	}
	return geometry.RotatePoint(h, -p.item.pos.Angle, c)
}

// OnLayer reports whether the pad appears on the named layer.
func (p *Pad) OnLayer(layer string) bool { return p.item.onLayer(layer) }

// Conductor returns the assigned excitation, nil when unassigned.
func (p *Pad) Conductor() *fec.Conductor { return p.conductor }

func (p *Pad) setConductor(c *fec.Conductor) error {
	if p.conductor != nil {
		return fmt.Errorf("pad conductor already set to %q, cannot set to %q: %w",
			p.conductor.Name, c.Name, ErrConfiguration)
	}
	p.conductor = c
	return nil
}

func (p *Pad) setRatio(r float64) error {
	if r <= 0 || r >= 1 {
		return fmt.Errorf("pad ratio %v outside (0, 1): %w", r, ErrConfiguration)
	}
	p.ratio = r
	return nil
}

// matchInfo exposes the attributes conductor specs select on.
func (p *Pad) matchInfo() conductors.PadInfo {
	info := conductors.PadInfo{
		NetName: p.item.netName,
		Center:  p.Center(),
		Number:  p.item.number,
	}
	if p.item.parent != nil {
		info.Reference = p.item.parent.Reference
	}
	return info
}

// CopperOutline returns the pad's copper shape in board coordinates:
// the shape family around the center, shifted by the drill offset,
// rotated into pad orientation and simplified.
func (p *Pad) CopperOutline() (geom.Polygon, error) {
	if p.copper != nil {
		return p.copper, nil
	}
	c := p.Center()

	var poly geom.Polygon
	switch p.item.shape {
	case "circle":
		poly = geometry.Circle(c, p.item.size.Width/2)
	case "oval":
		poly = ovalOutline(c, p.item.size.Width, p.item.size.Height)
	case "rect":
		poly = geometry.RectAround(c, p.item.size.Width, p.item.size.Height)
	case "trapezoid":
		poly = geometry.Trapezoid(c, p.item.size.Width, p.item.size.Height,
			p.item.rectDelta.Width, p.item.rectDelta.Height)
	default:
		return nil, fmt.Errorf("unknown pad shape %q: %w", p.item.shape, ErrConfiguration)
	}

	if p.item.drill != nil {
		poly = geometry.Translate(poly, p.item.drill.Offset.X, p.item.drill.Offset.Y)
	}
	p.copper = geometry.Simplify(geometry.Rotate(poly, -p.item.pos.Angle, c), 0.01)
	return p.copper, nil
}

// ConductorOutline returns the electrically driven area: the drill
// outline for through-hole pads, the area-ratio shrink of the copper
// outline for surface pads.
func (p *Pad) ConductorOutline() (geom.Polygon, error) {
	if p.conductorPoly != nil {
		return p.conductorPoly, nil
	}

	switch p.item.padType {
	case "thru_hole":
		if p.item.drill == nil {
			return nil, fmt.Errorf("through-hole pad %q has no drill: %w", p.item.number, ErrInputFormat)
		}
		c := p.Center()
		var poly geom.Polygon
		switch p.item.drill.Shape {
		case "circle":
			poly = geometry.Circle(c, p.item.drill.Size.Width/2)
		case "oval":
			poly = ovalOutline(c, p.item.drill.Size.Width, p.item.drill.Size.Height)
		default:
			return nil, fmt.Errorf("unknown pad drill shape %q: %w", p.item.drill.Shape, ErrConfiguration)
		}
		p.conductorPoly = geometry.Simplify(geometry.Rotate(poly, -p.item.pos.Angle, c), 0.01)

	case "smd":
		copper, err := p.CopperOutline()
		if err != nil {
			return nil, err
		}
		shrunk, err := geometry.Shrink(copper, p.ratio)
		if err != nil {
			return nil, err
		}
		p.conductorPoly = shrunk

	default:
		return nil, fmt.Errorf("unknown pad type %q: %w", p.item.padType, ErrConfiguration)
	}
	return p.conductorPoly, nil
}

// ovalOutline is the stadium between the oval's two focus points.
func ovalOutline(c geom.Point, w, h float64) geom.Polygon {
	radius := math.Min(w, h) / 2
	a := geom.Point{X: c.X + radius - w/2, Y: c.Y + radius - h/2}
	b := geom.Point{X: c.X + w/2 - radius, Y: c.Y + h/2 - radius}
	return geometry.Stadium(a, b, radius)
}

// ringSegments places the conductor outline on a layer and emits one
// document segment per outline edge.
func (p *Pad) ringSegments(doc *fec.Document, layout *Layout, layer string) ([]*fec.Segment, error) {
	outline, err := p.ConductorOutline()
	if err != nil {
		return nil, err
	}
	placed, err := layout.Place(outline, layer)
	if err != nil {
		return nil, err
	}
	return ringToSegments(doc, placed[0]), nil
}

// ringToSegments interns the ring's vertices and links them with
// segments, choosing each segment's mesh size from its neighborhood.
func ringToSegments(doc *fec.Document, ring []geom.Point) []*fec.Segment {
	n := len(ring)
	points := make([]*fec.Point, n)
	for i, pt := range ring {
		points[i] = doc.Point(pt.X, pt.Y)
	}
	segments := make([]*fec.Segment, 0, n)
	for i := 0; i < n; i++ {
		mesh := geometry.MeshSize(ring[(i-1+n)%n], ring[i], ring[(i+1)%n], ring[(i+2)%n])
		segments = append(segments, doc.AddSegment(points[i], points[(i+1)%n], mesh))
	}
	return segments
}

// emit writes the pad's conductor rings and drill holes into the
// document, one copy per configured layer the pad touches.
func (p *Pad) emit(doc *fec.Document, layout *Layout) error {
	for _, layer := range layout.Layers() {
		if !p.item.onLayer(layer) {
			continue
		}
		segments, err := p.ringSegments(doc, layout, layer)
		if err != nil {
			return err
		}
		for _, s := range segments {
			if err := s.SetConductor(p.conductor); err != nil {
				return err
			}
		}
		hole, err := layout.PlacePoint(p.HoleCenter(), layer)
		if err != nil {
			return err
		}
		doc.AddHole(hole.X, hole.Y)
	}
	return nil
}

// Via is a through-board connection. In the output it appears as its
// rolled drill outline on each copper layer plus, when it spans both
// configured layers, an unrolled strip tying the outlines together
// through periodic boundaries.
type Via struct {
	Pad
}

func viaFromPad(p *Pad) *Via {
	return &Via{Pad: Pad{item: p.item, ratio: p.ratio}}
}

// emit writes the via's rolled outlines and drill holes, and when the
// via spans both configured layers, the unrolled strip. index
// namespaces the strip's boundary names.
func (v *Via) emit(doc *fec.Document, layout *Layout, index int) error {
	var rolled [][]*fec.Segment
	for _, layer := range layout.Layers() {
		if !v.item.onLayer(layer) {
			continue
		}
		segments, err := v.ringSegments(doc, layout, layer)
		if err != nil {
			return err
		}
		rolled = append(rolled, segments)

		hole, err := layout.PlacePoint(v.Center(), layer)
		if err != nil {
			return err
		}
		doc.AddHole(hole.X, hole.Y)
	}

	// A via that does not span both layers has nothing to unroll.
	if len(rolled) != 2 {
		return nil
	}
	return v.emitStrip(doc, layout, index, rolled)
}

// emitStrip unrolls the via into a flat strip: the conductor ring
// perimeter becomes the top line, offset down by the board thickness
// for the bottom line, with side segments closing the ends. Each
// rolled segment is tied to its unrolled counterpart by a periodic
// boundary so current crossing the ring on a layer reappears on the
// strip.
func (v *Via) emitStrip(doc *fec.Document, layout *Layout, index int, rolled [][]*fec.Segment) error {
	outline, err := v.ConductorOutline()
	if err != nil {
		return err
	}
	ring := outline[0]
	n := len(ring)

	// Walk the perimeter accumulating arc length. The x coordinates
	// are negated so the periodic pairing keeps matching orientation
	// between the rolled ring and the strip.
	flatX := make([]float64, n+1)
	for i := 0; i < n; i++ {
		flatX[i+1] = flatX[i] - geometry.Dist(ring[i], ring[(i+1)%n])
	}

	thickness := layout.BoardThickness()
	dx, dy, err := layout.PlaceVia(geometry.Rect{
		MinX: flatX[n], MinY: -thickness, MaxX: 0, MaxY: 0,
	})
	if err != nil {
		return err
	}

	topPoints := make([]*fec.Point, n+1)
	bottomPoints := make([]*fec.Point, n+1)
	for i, x := range flatX {
		topPoints[i] = doc.Point(x+dx, dy)
		bottomPoints[i] = doc.Point(x+dx, dy-thickness)
	}

	// The side segments at the strip ends share one vertical periodic
	// boundary.
	vertical, err := doc.Boundary(fmt.Sprintf("via_%d_vert", index), fec.BoundaryPeriodic)
	if err != nil {
		return err
	}
	sides := []*fec.Segment{
		doc.AddSegment(topPoints[0], bottomPoints[0], -1),
		doc.AddSegment(topPoints[n], bottomPoints[n], -1),
	}
	for _, s := range sides {
		if err := s.SetBoundary(vertical); err != nil {
			return err
		}
	}

	// Pair rolled and unrolled segments. Mesh sizes copy from the
	// first layer's rolled ring so paired segments subdivide alike.
	for i := 0; i < n; i++ {
		top := doc.AddSegment(topPoints[i], topPoints[i+1], rolled[0][i].MeshSize)
		bottom := doc.AddSegment(bottomPoints[i], bottomPoints[i+1], rolled[0][i].MeshSize)

		topBoundary, err := doc.Boundary(fmt.Sprintf("via_%d_s%d_t", index, i), fec.BoundaryPeriodic)
		if err != nil {
			return err
		}
		bottomBoundary, err := doc.Boundary(fmt.Sprintf("via_%d_s%d_b", index, i), fec.BoundaryPeriodic)
		if err != nil {
			return err
		}
		if err := rolled[0][i].SetBoundary(topBoundary); err != nil {
			return err
		}
		if err := top.SetBoundary(topBoundary); err != nil {
			return err
		}
		if err := rolled[1][i].SetBoundary(bottomBoundary); err != nil {
			return err
		}
		if err := bottom.SetBoundary(bottomBoundary); err != nil {
			return err
		}
	}

	// Via material label at the strip center.
	return doc.AddBlockLabel(dx+flatX[n]/2, dy-thickness/2, layout.ViaProperty())
}
