// Package geometry builds and manipulates the planar outlines used for
// copper features: pad shapes, trace capsules, offsets and region
// bookkeeping. Boolean operations and containment tests are delegated to
// github.com/ctessum/geom; this package adds the constructions and
// numeric iteration the converter needs on top of it.
package geometry

import (
	"errors"
	"math"

	"github.com/ctessum/geom"
)

// ErrDegenerate reports geometry too small or malformed to process,
// such as a zero-perimeter outline in an offset iteration.
var ErrDegenerate = errors.New("degenerate geometry")

// CircleSegments is the number of chord segments used to approximate a
// full circle. Arcs use a proportional share.
const CircleSegments = 32

// Dist returns the euclidean distance between two points
func Dist(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Circle approximates a circle as a CircleSegments-gon
func Circle(center geom.Point, radius float64) geom.Polygon {
	ring := make([]geom.Point, CircleSegments)
	for i := 0; i < CircleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / CircleSegments
		ring[i] = geom.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return geom.Polygon{ring}
}

// Stadium returns a capsule: the set of points within radius of the
// segment a-b. Each end cap is a half circle.
func Stadium(a, b geom.Point, radius float64) geom.Polygon {
	length := Dist(a, b)
	if length == 0 {
		return Circle(a, radius)
	}

	half := CircleSegments / 2
	dx := (b.X - a.X) / length
	dy := (b.Y - a.Y) / length
	// Left normal of the a->b direction
	start := math.Atan2(dx, -dy)

	ring := make([]geom.Point, 0, 2*half+2)
	for i := 0; i <= half; i++ {
		theta := start - math.Pi*float64(i)/float64(half)
		ring = append(ring, geom.Point{
			X: b.X + radius*math.Cos(theta),
			Y: b.Y + radius*math.Sin(theta),
		})
	}
	for i := 0; i <= half; i++ {
		theta := start - math.Pi - math.Pi*float64(i)/float64(half)
		ring = append(ring, geom.Point{
			X: a.X + radius*math.Cos(theta),
			Y: a.Y + radius*math.Sin(theta),
		})
	}
	return geom.Polygon{ring}
}

// RectAround returns an axis-aligned rectangle of the given width and
// height centered on center.
func RectAround(center geom.Point, width, height float64) geom.Polygon {
	hw, hh := width/2, height/2
	return geom.Polygon{{
		{X: center.X - hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y + hh},
	}}
}

// Trapezoid returns a rectangle of size (sx, sy) sheared by the deltas
// (dx, dy), centered on center. This matches the trapezoid pad shape:
// dx widens one vertical flank at the expense of the other, dy does the
// same horizontally.
func Trapezoid(center geom.Point, sx, sy, dx, dy float64) geom.Polygon {
	return Translate(geom.Polygon{{
		{X: (-sx - dy) / 2, Y: (sy + dx) / 2},
		{X: (sx + dy) / 2, Y: (sy - dx) / 2},
		{X: (sx - dy) / 2, Y: (-sy + dx) / 2},
		{X: (-sx + dy) / 2, Y: (-sy - dx) / 2},
	}}, center.X, center.Y)
}

// Translate shifts a polygon by (dx, dy)
func Translate(p geom.Polygon, dx, dy float64) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			r[j] = geom.Point{X: pt.X + dx, Y: pt.Y + dy}
		}
		out[i] = r
	}
	return out
}

// RotatePoint rotates pt by deg degrees counterclockwise about the
// given origin. In board coordinates (y down) a positive angle appears
// clockwise on screen.
func RotatePoint(pt geom.Point, deg float64, about geom.Point) geom.Point {
	if deg == 0 {
		return pt
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	x := pt.X - about.X
	y := pt.Y - about.Y
	return geom.Point{
		X: about.X + x*cos - y*sin,
		Y: about.Y + x*sin + y*cos,
	}
}

// Rotate rotates a polygon by deg degrees counterclockwise about the
// given origin.
func Rotate(p geom.Polygon, deg float64, about geom.Point) geom.Polygon {
	if deg == 0 {
		return p
	}
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			r[j] = RotatePoint(pt, deg, about)
		}
		out[i] = r
	}
	return out
}

// signedRingArea is the shoelace area of a ring: positive for
// counterclockwise winding in a y-up frame.
func signedRingArea(ring []geom.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// RingLength is the closed perimeter of a ring
func RingLength(ring []geom.Point) float64 {
	if len(ring) < 2 {
		return 0
	}
	sum := 0.0
	for i, p := range ring {
		sum += Dist(p, ring[(i+1)%len(ring)])
	}
	return sum
}

// Area returns the unsigned area of a polygon. Hole rings wound
// opposite to their outer ring subtract, as clipping results are.
func Area(p geom.Polygon) float64 {
	sum := 0.0
	for _, ring := range p {
		sum += signedRingArea(ring)
	}
	return math.Abs(sum)
}

// Perimeter returns the total boundary length of all rings
func Perimeter(p geom.Polygon) float64 {
	sum := 0.0
	for _, ring := range p {
		sum += RingLength(ring)
	}
	return sum
}

// Simplify reduces vertex count with the given tolerance, keeping the
// polygon type.
func Simplify(p geom.Polygon, tolerance float64) geom.Polygon {
	if len(p) == 0 {
		return p
	}
	if sp, ok := p.Simplify(tolerance).(geom.Polygon); ok && len(sp) > 0 {
		return sp
	}
	return p
}

// Union merges two polygons. Empty inputs pass the other side through.
func Union(a, b geom.Polygon) geom.Polygon {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	return a.Union(b).(geom.Polygon)
}

// UnionAll merges a set of polygons pairwise in a balanced tree, which
// keeps intermediate results small on large fills.
func UnionAll(polys []geom.Polygon) geom.Polygon {
	switch len(polys) {
	case 0:
		return nil
	case 1:
		return polys[0]
	}
	mid := len(polys) / 2
	return Union(UnionAll(polys[:mid]), UnionAll(polys[mid:]))
}

// Contains reports whether the point lies strictly inside the polygon
func Contains(p geom.Polygon, pt geom.Point) bool {
	if len(p) == 0 {
		return false
	}
	return pt.Within(p) == geom.Inside
}
