package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// Rect is an axis-aligned rectangle used for bounds clipping and
// region filters.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectFromBounds converts a geom bounding box
func RectFromBounds(b *geom.Bounds) Rect {
	return Rect{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}

// Contains reports whether the point lies in the rectangle, borders
// included.
func (r Rect) Contains(pt geom.Point) bool {
	return pt.X >= r.MinX && pt.X <= r.MaxX && pt.Y >= r.MinY && pt.Y <= r.MaxY
}

// Width returns the x extent
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the y extent
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Polygon converts the rectangle to a polygon for clipping
func (r Rect) Polygon() geom.Polygon {
	return geom.Polygon{{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
	}}
}

// PolygonRect returns the bounding rectangle of a polygon
func PolygonRect(p geom.Polygon) Rect {
	return RectFromBounds(p.Bounds())
}

// SplitRegions decomposes a multi-ring polygon, as produced by
// clipping unions, into its disjoint connected regions. Each returned
// polygon holds one outer ring followed by the holes nested directly
// inside it.
func SplitRegions(p geom.Polygon) []geom.Polygon {
	rings := make([]geom.Polygon, 0, len(p))
	for _, ring := range p {
		if len(ring) >= 3 {
			rings = append(rings, geom.Polygon{ring})
		}
	}
	if len(rings) <= 1 {
		if len(rings) == 0 {
			return nil
		}
		return []geom.Polygon{rings[0]}
	}

	// Nesting depth of each ring: the number of other rings that
	// strictly contain it. Clipping output rings never cross, so a
	// single representative vertex decides containment.
	depth := make([]int, len(rings))
	parents := make([][]int, len(rings))
	for i := range rings {
		pt := ringInteriorProbe(rings[i][0])
		for j := range rings {
			if i == j {
				continue
			}
			if Contains(rings[j], pt) {
				depth[i]++
				parents[i] = append(parents[i], j)
			}
		}
	}

	// Even depth rings start regions; odd depth rings are holes
	// belonging to their immediate container.
	regionOf := make(map[int]int)
	var regionRoots []int
	for i := range rings {
		if depth[i]%2 == 0 {
			regionOf[i] = len(regionRoots)
			regionRoots = append(regionRoots, i)
		}
	}

	regions := make([]geom.Polygon, len(regionRoots))
	for ri, root := range regionRoots {
		regions[ri] = geom.Polygon{rings[root][0]}
	}

	for i := range rings {
		if depth[i]%2 == 0 {
			continue
		}
		for _, j := range parents[i] {
			if depth[j] == depth[i]-1 {
				regions[regionOf[j]] = append(regions[regionOf[j]], rings[i][0])
				break
			}
		}
	}

	return regions
}

// ringInteriorProbe picks a point strictly inside a ring for the
// nesting containment tests. Rings from clipping are simple, so an
// interior point of the bare ring is representative.
func ringInteriorProbe(ring []geom.Point) geom.Point {
	p := geom.Polygon{ring}
	pt, err := InteriorPoint(p)
	if err != nil {
		// Fall back to the first vertex; containment tests treat
		// OnEdge as outside, matching a strict-contains probe.
		return ring[0]
	}
	return pt
}

// InteriorPoint returns a point strictly inside the polygon, holes
// respected. The centroid is used when it qualifies; otherwise the
// widest horizontal interior span on a scanline near the vertical
// center is bisected, nudging the scanline when it degenerates through
// vertices.
func InteriorPoint(p geom.Polygon) (geom.Point, error) {
	if len(p) == 0 || len(p[0]) < 3 {
		return geom.Point{}, fmt.Errorf("interior point of empty polygon: %w", ErrDegenerate)
	}

	if c := p.Centroid(); Contains(p, c) {
		return c, nil
	}

	b := p.Bounds()
	height := b.Max.Y - b.Min.Y
	if height <= 0 {
		return geom.Point{}, fmt.Errorf("interior point of flat polygon: %w", ErrDegenerate)
	}

	// Deterministic nudge sequence around the vertical center
	for _, f := range []float64{0.5, 0.4, 0.6, 0.3, 0.7, 0.45, 0.55, 0.25, 0.75} {
		y := b.Min.Y + height*f
		if pt, ok := widestSpanMidpoint(p, y); ok {
			return pt, nil
		}
	}

	return geom.Point{}, fmt.Errorf("no interior point found: %w", ErrDegenerate)
}

// widestSpanMidpoint intersects a horizontal scanline with every ring
// and bisects the widest interior span, verifying strict containment.
func widestSpanMidpoint(p geom.Polygon, y float64) (geom.Point, bool) {
	var xs []float64
	for _, ring := range p {
		for i, a := range ring {
			b := ring[(i+1)%len(ring)]
			// Half-open rule so shared vertices count once
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
	}
	if len(xs) < 2 {
		return geom.Point{}, false
	}
	sort.Float64s(xs)

	best := geom.Point{}
	bestWidth := 0.0
	// Even-odd: spans [xs[0],xs[1]], [xs[2],xs[3]], ... are interior
	for i := 0; i+1 < len(xs); i += 2 {
		width := xs[i+1] - xs[i]
		if width <= bestWidth {
			continue
		}
		mid := geom.Point{X: (xs[i] + xs[i+1]) / 2, Y: y}
		if Contains(p, mid) {
			best = mid
			bestWidth = width
		}
	}
	if bestWidth == 0 {
		return geom.Point{}, false
	}
	return best, true
}

// LayerBounds accumulates the joint bounding rectangle of a set of
// polygons. Returns a zero rect and false when the set is empty.
func LayerBounds(polys []geom.Polygon) (Rect, bool) {
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	found := false
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		b := p.Bounds()
		r.MinX = math.Min(r.MinX, b.Min.X)
		r.MinY = math.Min(r.MinY, b.Min.Y)
		r.MaxX = math.Max(r.MaxX, b.Max.X)
		r.MaxY = math.Max(r.MaxY, b.Max.Y)
		found = true
	}
	if !found {
		return Rect{}, false
	}
	return r, true
}
