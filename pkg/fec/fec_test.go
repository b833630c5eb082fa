package fec

import (
	"strings"
	"testing"
)

func TestPointInterning(t *testing.T) {
	d := NewDocument()

	p1 := d.Point(1.0, 2.0)
	p2 := d.Point(1.0, 2.0)
	if p1 != p2 {
		t.Error("same coordinates should intern to one point")
	}

	p3 := d.Point(1.0001, 2.0)
	if p3 != p1 {
		t.Error("point within the merge grid cell should intern to the existing point")
	}
	if p3.X != 1.0 {
		t.Error("first registration fixes the coordinates")
	}

	p4 := d.Point(1.5, 2.0)
	if p4 == p1 {
		t.Error("distant point should be distinct")
	}

	if n := len(d.Points()); n != 2 {
		t.Errorf("got %d points, want 2", n)
	}
}

func TestSegmentInterning(t *testing.T) {
	d := NewDocument()
	p0 := d.Point(0, 0)
	p1 := d.Point(1, 0)

	s1 := d.AddSegment(p0, p1, 0.5)
	s2 := d.AddSegment(p0, p1, 0.25)
	if s1 != s2 {
		t.Fatal("same endpoint pair should intern to one segment")
	}
	if s1.MeshSize != 0.25 {
		t.Errorf("mesh size = %v, want the minimum 0.25", s1.MeshSize)
	}

	// The unconstrained default releases the constraint on re-add.
	d.AddSegment(p0, p1, -1)
	if s1.MeshSize != -1 {
		t.Errorf("mesh size = %v, want -1", s1.MeshSize)
	}

	s3 := d.AddSegment(p1, p0, -1)
	if s3 == s1 {
		t.Error("reversed endpoint order is a distinct segment")
	}
}

func TestSegmentAttributeRules(t *testing.T) {
	d := NewDocument()
	vin, err := d.Conductor("vin", Voltage, 1)
	if err != nil {
		t.Fatal(err)
	}
	gnd, err := d.Conductor("gnd", Voltage, 0)
	if err != nil {
		t.Fatal(err)
	}
	bdry, err := d.Boundary("via_0_vert", BoundaryPeriodic)
	if err != nil {
		t.Fatal(err)
	}

	s := d.AddSegment(d.Point(0, 0), d.Point(1, 0), -1)

	if err := s.SetConductor(vin); err != nil {
		t.Fatal(err)
	}
	if err := s.SetConductor(vin); err != nil {
		t.Errorf("reassigning the same conductor should be a no-op, got %v", err)
	}
	if err := s.SetConductor(gnd); err == nil {
		t.Error("expected error assigning a second conductor")
	}
	if err := s.SetBoundary(bdry); err == nil {
		t.Error("expected error assigning a boundary over a conductor")
	}

	s2 := d.AddSegment(d.Point(0, 1), d.Point(1, 1), -1)
	if err := s2.SetBoundary(bdry); err != nil {
		t.Fatal(err)
	}
	if err := s2.SetConductor(vin); err == nil {
		t.Error("expected error assigning a conductor over a boundary")
	}
	if s2.Boundary() != bdry {
		t.Error("boundary accessor mismatch")
	}
}

func TestNamedEntityConflicts(t *testing.T) {
	d := NewDocument()

	b1, err := d.Boundary("b", BoundaryPeriodic)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := d.Boundary("b", BoundaryPeriodic)
	if err != nil || b1 != b2 {
		t.Error("same definition should return the interned boundary")
	}
	if _, err := d.Boundary("b", 1); err == nil {
		t.Error("expected error redefining boundary type")
	}

	if _, err := d.Conductor("c", Voltage, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Conductor("c", Current, 1); err == nil {
		t.Error("expected error redefining conductor type")
	}
	if _, err := d.Conductor("c", Voltage, 2); err == nil {
		t.Error("expected error redefining conductor value")
	}

	if _, err := d.BlockProperty("Copper", 5.8e7); err != nil {
		t.Fatal(err)
	}
	if _, err := d.BlockProperty("Copper", 1e7); err == nil {
		t.Error("expected error redefining block property conductivity")
	}
	if !strings.Contains(errString(func() error {
		_, err := d.BlockProperty("Copper", 1e7)
		return err
	}), "Copper") {
		t.Error("conflict error should name the property")
	}
}

func TestBlockLabelConflicts(t *testing.T) {
	d := NewDocument()
	copper, _ := d.BlockProperty("Copper", 5.8e7)
	via, _ := d.BlockProperty("Via", 2.8e7)

	if err := d.AddBlockLabel(1, 1, copper); err != nil {
		t.Fatal(err)
	}
	if err := d.AddBlockLabel(1, 1, copper); err != nil {
		t.Errorf("same label again should be a no-op, got %v", err)
	}
	if err := d.AddBlockLabel(1, 1, via); err == nil {
		t.Error("expected error relabeling the coordinates with another material")
	}
	if n := len(d.Labels()); n != 1 {
		t.Errorf("got %d labels, want 1", n)
	}
}

func TestHoleDedup(t *testing.T) {
	d := NewDocument()
	d.AddHole(1, 2)
	d.AddHole(1, 2)
	d.AddHole(2, 1)
	if n := len(d.Holes()); n != 2 {
		t.Errorf("got %d holes, want 2", n)
	}
}

func errString(f func() error) string {
	if err := f(); err != nil {
		return err.Error()
	}
	return ""
}
