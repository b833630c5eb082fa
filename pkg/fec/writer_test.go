package fec

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestFloatString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-1, "-1"},
		{0.25, "0.25"},
		{120, "120"},
		{1.5, "1.5"},
		{0.035, "0.035"},
		{5.8e7, "58000000"},
		{0.001, "0.001"},
		{-12.75, "-12.75"},
		{math.Copysign(0, -1), "0"},
	}
	for _, tt := range tests {
		if got := floatString(tt.in); got != tt.want {
			t.Errorf("floatString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func buildSampleDocument(t *testing.T) *Document {
	t.Helper()
	d := NewDocument()

	vin, err := d.Conductor("vin", Voltage, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	p0 := d.Point(0, 0)
	p1 := d.Point(2, 0)
	p2 := d.Point(2, 1)

	s1 := d.AddSegment(p0, p1, -1)
	if err := s1.SetConductor(vin); err != nil {
		t.Fatal(err)
	}
	d.AddSegment(p1, p2, 0.25)

	copper, err := d.BlockProperty("Copper", 5.8e7)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AddBlockLabel(1.5, 0.5, copper); err != nil {
		t.Fatal(err)
	}
	d.AddHole(0.25, 0.25)
	return d
}

const sampleOutput = `[Format]      =  1
[Precision]   =  1.0e-08
[Frequency]   =  0
[MinAngle]    =  25
[Depth]       =  0.035
[LengthUnits] =  millimeters
[ProblemType] =  planar
[Coordinates] =  cartesian
[Comment]     =  "Auto generated by 'kicad2fec'."
[PointProps]  = 0
[BdryProps] = 0
[BlockProps] = 1
  <BeginBlock>
   <BlockName> = "Copper"
    <ox> = 58000000
    <oy> = 58000000
    <ex> = 1
    <ey> = 1
    <ltx> = 0
    <lty> = 0
  <EndBlock>
[ConductorProps] = 1
  <BeginConductor>
    <ConductorName> = "vin"
    <vcr> = 0.5
    <vci> = 0
    <qcr> = 0
    <qci> = 0
    <ConductorType> = 1
  <EndConductor>
[NumPoints] = 3
0	0	0	0	0
2	0	0	0	0
2	1	0	0	0
[NumSegments] = 2
0	1	-1	0	0	0	1
1	2	0.25	0	0	0	0
[NumArcSegments] = 0
[NumHoles] = 1
0.25	0.25	0
[NumBlockLabels] = 1
1.5	0.5	1	-1	0	0
`

func TestWriteTo(t *testing.T) {
	d := buildSampleDocument(t)

	var buf bytes.Buffer
	if err := d.WriteTo(&buf, DefaultWriteOptions()); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != sampleOutput {
		t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", got, sampleOutput)
	}
}

func TestWriteDeterminism(t *testing.T) {
	build := func(reversed bool) string {
		d := NewDocument()
		vin, _ := d.Conductor("vin", Voltage, 1)
		gnd, _ := d.Conductor("gnd", Voltage, 0)
		copper, _ := d.BlockProperty("Copper", 5.8e7)

		coords := [][4]float64{
			{0, 0, 1, 0},
			{1, 0, 1, 1},
			{1, 1, 0, 1},
			{0, 1, 0, 0},
			{5, 5, 6, 5},
		}
		if reversed {
			for i, j := 0, len(coords)-1; i < j; i, j = i+1, j-1 {
				coords[i], coords[j] = coords[j], coords[i]
			}
		}
		for i, c := range coords {
			s := d.AddSegment(d.Point(c[0], c[1]), d.Point(c[2], c[3]), -1)
			cond := vin
			if i%2 == 0 {
				cond = gnd
			}
			if err := s.SetConductor(cond); err != nil {
				t.Fatal(err)
			}
		}
		d.AddBlockLabel(0.5, 0.5, copper)
		d.AddHole(0.25, 0.25)

		var buf bytes.Buffer
		if err := d.WriteTo(&buf, DefaultWriteOptions()); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	if build(false) != build(true) {
		t.Error("insertion order changed the output bytes")
	}
}

func TestWriteSweepsUnreferenced(t *testing.T) {
	d := NewDocument()

	// Registered but never attached to a segment.
	if _, err := d.Conductor("orphan", Voltage, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Boundary("orphan_bdry", BoundaryPeriodic); err != nil {
		t.Fatal(err)
	}
	d.Point(9, 9)

	vin, _ := d.Conductor("vin", Voltage, 1)
	s := d.AddSegment(d.Point(0, 0), d.Point(1, 0), -1)
	if err := s.SetConductor(vin); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := d.WriteTo(&buf, DefaultWriteOptions()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "[ConductorProps] = 1\n") {
		t.Error("unused conductor should be swept")
	}
	if strings.Contains(out, "orphan") {
		t.Error("orphan entities should not appear in the output")
	}
	if !strings.Contains(out, "[BdryProps] = 0\n") {
		t.Error("unused boundary should be swept")
	}
	if !strings.Contains(out, "[NumPoints] = 2\n") {
		t.Error("unreferenced point should be swept")
	}
}

func TestWriteBoundaryIndices(t *testing.T) {
	d := NewDocument()
	b2, _ := d.Boundary("via_0_s1_t", BoundaryPeriodic)
	b1, _ := d.Boundary("via_0_s0_t", BoundaryPeriodic)

	s1 := d.AddSegment(d.Point(0, 0), d.Point(1, 0), -1)
	s2 := d.AddSegment(d.Point(0, 1), d.Point(1, 1), -1)
	if err := s1.SetBoundary(b2); err != nil {
		t.Fatal(err)
	}
	if err := s2.SetBoundary(b1); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := d.WriteTo(&buf, DefaultWriteOptions()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Name order decides the 1-based indices regardless of creation
	// order: via_0_s0_t is 1, via_0_s1_t is 2. Points sort by (x, y),
	// so (0,0)-(1,0) is 0-2 and (0,1)-(1,1) is 1-3.
	if !strings.Contains(out, "0\t2\t-1\t2\t0\t0\t0\n") {
		t.Errorf("segment on via_0_s1_t should reference boundary 2:\n%s", out)
	}
	if !strings.Contains(out, "1\t3\t-1\t1\t0\t0\t0\n") {
		t.Errorf("segment on via_0_s0_t should reference boundary 1:\n%s", out)
	}
}
