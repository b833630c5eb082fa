package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func TestBufferGrow(t *testing.T) {
	sq := RectAround(geom.Point{}, 2, 2)
	grown := Buffer(sq, 0.5)

	// Dilating a square by m adds 4*s*m plus rounded corners of area pi*m^2
	want := 4 + 4*2*0.5 + math.Pi*0.25
	got := Area(grown)
	if got > want || got < want*0.97 {
		t.Errorf("area = %v, want slightly under %v", got, want)
	}

	r := PolygonRect(grown)
	if !almostEqual(r.MinX, -1.5, 1e-9) || !almostEqual(r.MaxX, 1.5, 1e-9) {
		t.Errorf("x range [%v, %v], want [-1.5, 1.5]", r.MinX, r.MaxX)
	}
}

func TestBufferShrink(t *testing.T) {
	sq := RectAround(geom.Point{}, 4, 4)
	shrunk := Buffer(sq, -1)

	if !almostEqual(Area(shrunk), 4, 1e-6) {
		t.Errorf("area = %v, want 4", Area(shrunk))
	}

	r := PolygonRect(shrunk)
	if !almostEqual(r.MinX, -1, 1e-9) || !almostEqual(r.MaxY, 1, 1e-9) {
		t.Errorf("bounds = %+v, want unit square about origin", r)
	}
}

func TestBufferShrinkToNothing(t *testing.T) {
	sq := RectAround(geom.Point{}, 1, 1)
	if got := Buffer(sq, -2); got != nil {
		t.Errorf("over-shrunk square should vanish, got area %v", Area(got))
	}
}

func TestBufferZero(t *testing.T) {
	sq := RectAround(geom.Point{}, 2, 2)
	same := Buffer(sq, 0)
	if !almostEqual(Area(same), 4, 1e-12) {
		t.Error("zero margin should be a no-op")
	}
}

func TestBufferReversedWinding(t *testing.T) {
	// Clockwise ring; inward must still mean inward
	sq := geom.Polygon{{
		{X: -2, Y: -2}, {X: -2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: -2},
	}}
	shrunk := Buffer(sq, -1)
	if !almostEqual(Area(shrunk), 4, 1e-6) {
		t.Errorf("area = %v, want 4", Area(shrunk))
	}
}

func TestShrinkCircleRatios(t *testing.T) {
	// The iteration must land within 1% of the target area for
	// typical pad ratios, in at most the fixed iteration budget.
	const radius = 1.2
	circle := Circle(geom.Point{X: 3, Y: -1}, radius)
	full := Area(circle)

	for _, ratio := range []float64{0.2, 0.4, 0.5, 0.6, 0.8} {
		shrunk, err := Shrink(circle, ratio)
		if err != nil {
			t.Fatalf("ratio %v: %v", ratio, err)
		}
		got := Area(shrunk)
		want := ratio * full
		if math.Abs(got/want-1) >= 0.01 {
			t.Errorf("ratio %v: area = %v, want %v within 1%%", ratio, got, want)
		}
	}
}

func TestShrinkRectangle(t *testing.T) {
	r := RectAround(geom.Point{}, 3, 1)
	shrunk, err := Shrink(r, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(Area(shrunk)/1.5-1) >= 0.01 {
		t.Errorf("area = %v, want 1.5 within 1%%", Area(shrunk))
	}
}

func TestShrinkDegenerate(t *testing.T) {
	line := geom.Polygon{{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
	}}
	if _, err := Shrink(line, 0.5); !errors.Is(err, ErrDegenerate) {
		t.Errorf("err = %v, want ErrDegenerate", err)
	}
}

func TestShrinkTinyRatio(t *testing.T) {
	// Extreme ratios on a thin sliver can collapse the polygon entirely
	sliver := RectAround(geom.Point{}, 10, 0.02)
	if _, err := Shrink(sliver, 0.001); err == nil {
		t.Skip("sliver survived, acceptable on this geometry")
	} else if !errors.Is(err, ErrDegenerate) {
		t.Errorf("err = %v, want ErrDegenerate", err)
	}
}
