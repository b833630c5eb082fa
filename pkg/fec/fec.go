// Package fec builds FEMM current-flow problem documents and writes
// them in the solver's native FEC text layout.
//
// Geometry is interned: points closer than the merge radius collapse to
// a single Point, repeated segments between the same points collapse to
// a single Segment, and named properties (boundaries, conductors, block
// materials) are unique per name. The document is assembled free-form
// and cleaned up by Normalize before writing.
package fec

import (
	"fmt"
	"math"
	"sort"
)

// smallDistance is the merge radius. Points within this distance of
// each other are treated as a single point.
const smallDistance = 1e-3

// BoundaryPeriodic ties two segments together so the solution repeats
// across them. It is the only boundary type the converter emits.
const BoundaryPeriodic = 3

// ConductorType selects which excitation a conductor applies.
type ConductorType int

const (
	Current ConductorType = 0
	Voltage ConductorType = 1
)

// Point is a mesh vertex. Identity is quantized to the merge grid, so
// two calls to Document.Point with nearly equal coordinates return the
// same instance.
type Point struct {
	X, Y float64
	i    int
}

// Segment is a mesh edge between two interned points. It may carry
// either a conductor or a boundary, never both.
type Segment struct {
	P0, P1 *Point

	// MeshSize constrains the local element size. -1 leaves the
	// choice to the mesher.
	MeshSize float64

	conductor *Conductor
	boundary  *Boundary
}

// Conductor returns the conductor assigned to the segment, if any.
func (s *Segment) Conductor() *Conductor { return s.conductor }

// Boundary returns the boundary assigned to the segment, if any.
func (s *Segment) Boundary() *Boundary { return s.boundary }

// SetConductor assigns a conductor to the segment. Assigning nil or the
// segment's current conductor is a no-op. A segment that already
// carries a different conductor or any boundary rejects the assignment.
func (s *Segment) SetConductor(c *Conductor) error {
	if c == nil || c == s.conductor {
		return nil
	}
	if s.conductor != nil {
		return fmt.Errorf("segment already carries conductor %q, cannot assign %q", s.conductor.Name, c.Name)
	}
	if s.boundary != nil {
		return fmt.Errorf("segment carries boundary %q, cannot assign conductor %q", s.boundary.Name, c.Name)
	}
	s.conductor = c
	return nil
}

// SetBoundary assigns a boundary to the segment, under the same rules
// as SetConductor.
func (s *Segment) SetBoundary(b *Boundary) error {
	if b == nil || b == s.boundary {
		return nil
	}
	if s.boundary != nil {
		return fmt.Errorf("segment already carries boundary %q, cannot assign %q", s.boundary.Name, b.Name)
	}
	if s.conductor != nil {
		return fmt.Errorf("segment carries conductor %q, cannot assign boundary %q", s.conductor.Name, b.Name)
	}
	s.boundary = b
	return nil
}

// mergeFrom folds other into s after both resolve to the same endpoint
// pair. Mesh sizes take the minimum, so an unconstrained duplicate
// releases the constraint, matching how repeated adds behave.
func (s *Segment) mergeFrom(other *Segment) error {
	if err := s.SetConductor(other.conductor); err != nil {
		return err
	}
	if err := s.SetBoundary(other.boundary); err != nil {
		return err
	}
	s.MeshSize = math.Min(s.MeshSize, other.MeshSize)
	return nil
}

// Boundary is a named segment boundary condition.
type Boundary struct {
	Name string
	Type int
	i    int
}

// Conductor is a named excitation applied to conductor segments.
type Conductor struct {
	Name  string
	Type  ConductorType
	Value float64
	i     int
}

// BlockProperty is a named block material.
type BlockProperty struct {
	Name         string
	Conductivity float64
	i            int
}

// Hole marks a region that must not be meshed.
type Hole struct {
	X, Y float64
}

// BlockLabel assigns a material to the region containing it.
type BlockLabel struct {
	X, Y float64
	Prop *BlockProperty
}

type gridKey struct{ x, y int64 }

type segmentKey struct{ p0, p1 *Point }

type coordKey struct{ x, y float64 }

// Document accumulates problem geometry and properties.
type Document struct {
	points     map[gridKey]*Point
	segments   map[segmentKey]*Segment
	boundaries map[string]*Boundary
	conductors map[string]*Conductor
	blockProps map[string]*BlockProperty
	holes      map[coordKey]*Hole
	labels     map[coordKey]*BlockLabel

	// Merge grid offsets, shifted during close-point merging.
	xOff, yOff float64
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		points:     make(map[gridKey]*Point),
		segments:   make(map[segmentKey]*Segment),
		boundaries: make(map[string]*Boundary),
		conductors: make(map[string]*Conductor),
		blockProps: make(map[string]*BlockProperty),
		holes:      make(map[coordKey]*Hole),
		labels:     make(map[coordKey]*BlockLabel),
	}
}

func (d *Document) grid(x, y float64) gridKey {
	return gridKey{
		x: int64(math.Round(x/smallDistance + d.xOff)),
		y: int64(math.Round(y/smallDistance + d.yOff)),
	}
}

// Point interns the point at (x, y). The first point registered in a
// grid cell fixes the coordinates all later arrivals in that cell
// resolve to.
func (d *Document) Point(x, y float64) *Point {
	k := d.grid(x, y)
	if p, ok := d.points[k]; ok {
		return p
	}
	p := &Point{X: x, Y: y}
	d.points[k] = p
	return p
}

// AddSegment interns the segment from p0 to p1. Re-adding an existing
// segment merges the mesh size by minimum.
func (d *Document) AddSegment(p0, p1 *Point, meshSize float64) *Segment {
	k := segmentKey{p0, p1}
	if s, ok := d.segments[k]; ok {
		s.MeshSize = math.Min(s.MeshSize, meshSize)
		return s
	}
	s := &Segment{P0: p0, P1: p1, MeshSize: meshSize}
	d.segments[k] = s
	return s
}

// insertMerged places s into the segment table, folding it into an
// existing segment with the same endpoints.
func (d *Document) insertMerged(s *Segment) error {
	k := segmentKey{s.P0, s.P1}
	exist, ok := d.segments[k]
	if !ok {
		d.segments[k] = s
		return nil
	}
	if exist == s {
		return nil
	}
	return exist.mergeFrom(s)
}

// Boundary interns the named boundary. Redefining an existing name with
// a different type is an error.
func (d *Document) Boundary(name string, typ int) (*Boundary, error) {
	if b, ok := d.boundaries[name]; ok {
		if b.Type != typ {
			return nil, fmt.Errorf("boundary %q has type %d, cannot redefine with type %d", name, b.Type, typ)
		}
		return b, nil
	}
	b := &Boundary{Name: name, Type: typ}
	d.boundaries[name] = b
	return b, nil
}

// Conductor interns the named conductor. Redefining an existing name
// with a different type or value is an error.
func (d *Document) Conductor(name string, typ ConductorType, value float64) (*Conductor, error) {
	if c, ok := d.conductors[name]; ok {
		if c.Type != typ {
			return nil, fmt.Errorf("conductor %q has type %d, cannot redefine with type %d", name, c.Type, typ)
		}
		if c.Value != value {
			return nil, fmt.Errorf("conductor %q has value %v, cannot redefine with value %v", name, c.Value, value)
		}
		return c, nil
	}
	c := &Conductor{Name: name, Type: typ, Value: value}
	d.conductors[name] = c
	return c, nil
}

// BlockProperty interns the named block material. Redefining an
// existing name with a different conductivity is an error.
func (d *Document) BlockProperty(name string, conductivity float64) (*BlockProperty, error) {
	if p, ok := d.blockProps[name]; ok {
		if p.Conductivity != conductivity {
			return nil, fmt.Errorf("block property %q has conductivity %v, cannot redefine with %v", name, p.Conductivity, conductivity)
		}
		return p, nil
	}
	p := &BlockProperty{Name: name, Conductivity: conductivity}
	d.blockProps[name] = p
	return p, nil
}

// AddHole places a no-mesh label. Duplicate coordinates collapse.
func (d *Document) AddHole(x, y float64) {
	k := coordKey{x, y}
	if _, ok := d.holes[k]; !ok {
		d.holes[k] = &Hole{X: x, Y: y}
	}
}

// AddBlockLabel places a material label. Two labels at the same
// coordinates must name the same material.
func (d *Document) AddBlockLabel(x, y float64, prop *BlockProperty) error {
	k := coordKey{x, y}
	if l, ok := d.labels[k]; ok {
		if l.Prop.Name != prop.Name {
			return fmt.Errorf("block label at (%v, %v) carries %q, cannot relabel as %q", x, y, l.Prop.Name, prop.Name)
		}
		return nil
	}
	d.labels[k] = &BlockLabel{X: x, Y: y, Prop: prop}
	return nil
}

// Points returns all interned points ordered by coordinates.
func (d *Document) Points() []*Point {
	return d.sortedPoints()
}

// Segments returns all segments ordered by endpoint coordinates.
func (d *Document) Segments() []*Segment {
	return d.sortedSegments()
}

// Boundaries returns all registered boundaries ordered by name.
func (d *Document) Boundaries() []*Boundary {
	out := make([]*Boundary, 0, len(d.boundaries))
	for _, b := range d.boundaries {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Conductors returns all registered conductors ordered by name.
func (d *Document) Conductors() []*Conductor {
	out := make([]*Conductor, 0, len(d.conductors))
	for _, c := range d.conductors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Holes returns all no-mesh labels ordered by coordinates.
func (d *Document) Holes() []*Hole {
	out := make([]*Hole, 0, len(d.holes))
	for _, h := range d.holes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// Labels returns all block labels ordered by coordinates.
func (d *Document) Labels() []*BlockLabel {
	out := make([]*BlockLabel, 0, len(d.labels))
	for _, l := range d.labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func (d *Document) sortedPoints() []*Point {
	out := make([]*Point, 0, len(d.points))
	for _, p := range d.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func (d *Document) sortedSegments() []*Segment {
	out := make([]*Segment, 0, len(d.segments))
	for _, s := range d.segments {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return segmentLess(out[i], out[j]) })
	return out
}

func segmentLess(a, b *Segment) bool {
	if a.P0.X != b.P0.X {
		return a.P0.X < b.P0.X
	}
	if a.P0.Y != b.P0.Y {
		return a.P0.Y < b.P0.Y
	}
	if a.P1.X != b.P1.X {
		return a.P1.X < b.P1.X
	}
	return a.P1.Y < b.P1.Y
}
