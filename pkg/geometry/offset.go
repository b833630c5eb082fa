package geometry

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Buffer offsets a polygon by margin. A positive margin dilates with
// round joins (the exact Minkowski sum with a disk: the polygon
// unioned with a capsule per edge). A negative margin erodes the
// outer ring with mitred joins, which is what the conductor-outline
// shrink wants on convex pad shapes.
func Buffer(p geom.Polygon, margin float64) geom.Polygon {
	switch {
	case len(p) == 0 || margin == 0:
		return p

	case margin > 0:
		capsules := make([]geom.Polygon, 0, 1+len(p)*4)
		capsules = append(capsules, p)
		for _, ring := range p {
			for i, pt := range ring {
				next := ring[(i+1)%len(ring)]
				capsules = append(capsules, Stadium(pt, next, margin))
			}
		}
		return UnionAll(capsules)

	default:
		ring := offsetRing(p[0], margin)
		if len(ring) < 3 {
			return nil
		}
		// A winding flip means opposite offset edges crossed over: the
		// outline collapsed rather than shrank.
		before := signedRingArea(p[0])
		after := signedRingArea(ring)
		if after == 0 || (after < 0) != (before < 0) {
			return nil
		}
		return geom.Polygon{ring}
	}
}

// offsetRing moves every edge of a ring along its inward normal by
// |margin| (margin < 0) or outward (margin > 0), rebuilding vertices by
// intersecting adjacent offset edges. Joins are mitred; nearly parallel
// edges fall back to translating the shared vertex.
func offsetRing(ring []geom.Point, margin float64) []geom.Point {
	n := len(ring)
	if n < 3 {
		return nil
	}

	// Winding determines which side is inward
	inward := 1.0
	if signedRingArea(ring) < 0 {
		inward = -1.0
	}

	// Offset each edge as an infinite line: a point on it and its direction
	type line struct {
		px, py, dx, dy float64
	}
	lines := make([]line, n)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		length := Dist(a, b)
		if length == 0 {
			// Repeated vertex, the degenerate edge inherits the
			// previous offset line
			if i > 0 {
				lines[i] = lines[i-1]
				continue
			}
			return nil
		}
		dx := (b.X - a.X) / length
		dy := (b.Y - a.Y) / length
		// Left normal, which points inward for counterclockwise rings
		nx, ny := -dy*inward, dx*inward
		lines[i] = line{
			px: a.X - nx*margin,
			py: a.Y - ny*margin,
			dx: dx,
			dy: dy,
		}
	}

	out := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := lines[(i+n-1)%n]
		cur := lines[i]

		cross := prev.dx*cur.dy - prev.dy*cur.dx
		if math.Abs(cross) < 1e-12 {
			// Parallel edges: translate the vertex along the current
			// edge's offset direction.
			out = append(out, geom.Point{
				X: cur.px,
				Y: cur.py,
			})
			continue
		}

		// Intersection of the two offset lines
		t := ((cur.px-prev.px)*cur.dy - (cur.py-prev.py)*cur.dx) / cross
		out = append(out, geom.Point{
			X: prev.px + prev.dx*t,
			Y: prev.py + prev.dy*t,
		})
	}
	return out
}

// Shrink offsets a polygon inward until its area hits ratio times the
// original area, within 0.1% relative error or at most 10 iterations.
// The first margin guess assumes the area loss is margin times
// perimeter; each following step corrects by the measured shortfall
// over the current perimeter.
func Shrink(p geom.Polygon, ratio float64) (geom.Polygon, error) {
	initialArea := Area(p)
	perimeter := Perimeter(p)
	if initialArea <= 0 || perimeter <= 0 {
		return nil, fmt.Errorf("shrink: zero area or perimeter outline: %w", ErrDegenerate)
	}

	goalArea := ratio * initialArea
	margin := -(initialArea - goalArea) / perimeter

	current := p
	for i := 0; i < 10; i++ {
		current = Buffer(p, margin)
		area := Area(current)
		if math.Abs(1-area/goalArea) < 0.001 {
			break
		}
		per := Perimeter(current)
		if per <= 0 {
			return nil, fmt.Errorf("shrink: outline collapsed at margin %g: %w", margin, ErrDegenerate)
		}
		margin -= (area - goalArea) / per
	}

	if len(current) == 0 || Area(current) == 0 {
		return nil, fmt.Errorf("shrink: outline collapsed: %w", ErrDegenerate)
	}
	return current, nil
}
