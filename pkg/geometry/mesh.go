package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// VertexAngle returns the interior angle at p2 formed by p1-p2-p3, in
// degrees, folded into [0, 180].
func VertexAngle(p1, p2, p3 geom.Point) float64 {
	a1 := math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	a2 := math.Atan2(p3.Y-p2.Y, p3.X-p2.X)

	angle := math.Mod(a2-a1, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle > math.Pi {
		angle = 2*math.Pi - angle
	}
	return angle * 180 / math.Pi
}

// MeshSize picks the mesh density for the segment p2-p3 given its ring
// neighbors p1 and p4. Short segments between shallow vertices are arc
// tessellation chords; halving their mesh size keeps the solver from
// collapsing curved outlines into single elements. Everything else
// defers to the mesher with -1.
func MeshSize(p1, p2, p3, p4 geom.Point) float64 {
	length := Dist(p2, p3)
	if length < 1.0 && VertexAngle(p1, p2, p3) > 150 && VertexAngle(p2, p3, p4) > 150 {
		return length / 2
	}
	return -1
}
