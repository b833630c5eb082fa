package convert

import (
	"errors"
	"testing"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

func boundedLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout([]string{"F.Cu", "B.Cu"}, 1.5, nil, nil, 1)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}
	l.SetBounds(
		geometry.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5},
		geometry.Rect{MinX: 0, MinY: 0, MaxX: 8, MaxY: 5},
	)
	return l
}

func TestLayoutRequiresLayers(t *testing.T) {
	if _, err := NewLayout(nil, 1.5, nil, nil, 0.5); !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestPlacePointMirrorsTop(t *testing.T) {
	l := boundedLayout(t)
	pt, err := l.PlacePoint(geom.Point{X: 3, Y: 4}, "F.Cu")
	if err != nil {
		t.Fatalf("Failed to place point: %v", err)
	}
	if pt.X != 3 || pt.Y != -4 {
		t.Errorf("placed at (%v, %v), want (3, -4)", pt.X, pt.Y)
	}
}

func TestPlacePointReflectsBottom(t *testing.T) {
	l := boundedLayout(t)
	// bottom offset: top max x + bottom max x + clearance = 19
	pt, err := l.PlacePoint(geom.Point{X: 2, Y: 3}, "B.Cu")
	if err != nil {
		t.Fatalf("Failed to place point: %v", err)
	}
	if pt.X != 17 || pt.Y != -3 {
		t.Errorf("placed at (%v, %v), want (17, -3)", pt.X, pt.Y)
	}
}

func TestPlacePointUnknownLayer(t *testing.T) {
	l := boundedLayout(t)
	if _, err := l.PlacePoint(geom.Point{}, "In1.Cu"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestPlaceBeforeBounds(t *testing.T) {
	l, err := NewLayout([]string{"F.Cu"}, 1.5, nil, nil, 0.5)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}
	if _, err := l.PlacePoint(geom.Point{}, "F.Cu"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("place: err = %v, want ErrConfiguration", err)
	}
	if _, _, err := l.PlaceVia(geometry.Rect{MinX: -1, MaxX: 0, MinY: -1, MaxY: 0}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("place via: err = %v, want ErrConfiguration", err)
	}
}

func TestPlacePolygonKeepsRings(t *testing.T) {
	l := boundedLayout(t)
	p := geom.Polygon{
		{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}},
		{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}},
	}
	placed, err := l.Place(p, "F.Cu")
	if err != nil {
		t.Fatalf("Failed to place polygon: %v", err)
	}
	if len(placed) != 2 {
		t.Fatalf("Expected 2 rings, got %d", len(placed))
	}
	if placed[1][0].X != 1 || placed[1][0].Y != -1 {
		t.Errorf("hole vertex at (%v, %v), want (1, -1)", placed[1][0].X, placed[1][0].Y)
	}
}

func TestPlaceViaRowsAndWrap(t *testing.T) {
	l := boundedLayout(t)
	strip := geometry.Rect{MinX: -4, MinY: -2, MaxX: 0, MaxY: 0}

	// Row y starts below both mirrored layers: -max(5, 5) - 1 = -6.
	// The row spans x in [0, 19], each strip advancing the cursor by
	// its width plus clearance.
	want := []struct{ dx, dy float64 }{
		{4, -6},
		{9, -6},
		{14, -6},
		{19, -6},
		{4, -9}, // wrapped: one row height plus clearance down
	}
	for i, w := range want {
		dx, dy, err := l.PlaceVia(strip)
		if err != nil {
			t.Fatalf("Failed to place strip %d: %v", i, err)
		}
		if dx != w.dx || dy != w.dy {
			t.Errorf("strip %d placed by (%v, %v), want (%v, %v)", i, dx, dy, w.dx, w.dy)
		}
	}
}

func TestLayoutSingleLayer(t *testing.T) {
	l, err := NewLayout([]string{"F.Cu"}, 1.5, nil, nil, 0.5)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}
	l.SetBounds(geometry.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5}, geometry.Rect{})

	if _, err := l.PlacePoint(geom.Point{X: 1, Y: 1}, "B.Cu"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("bottom layer on a single sided board: err = %v, want ErrConfiguration", err)
	}
}
