package convert

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/kicad2fec/internal/cli"
	"github.com/OpenTraceLab/kicad2fec/pkg/conductors"
	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/pcb"
)

func quietContext() context.Context {
	return cli.WithLogger(context.Background(), cli.NewLogger(io.Discard, log.ErrorLevel))
}

func testOptions(specs ...*conductors.Spec) Options {
	return Options{
		Specs:           specs,
		Layers:          []string{"F.Cu", "B.Cu"},
		BoardThickness:  1.5,
		Clearance:       0.5,
		PadRatio:        0.5,
		Conductivity:    5.8e7,
		ViaConductivity: 2.8e7,
	}
}

func moduleSpec(name string, value float64, typ fec.ConductorType, ref string, pads ...string) *conductors.Spec {
	return &conductors.Spec{
		Name:    name,
		Value:   value,
		Type:    typ,
		Modules: []conductors.ModuleRef{{Reference: ref, Pads: pads}},
	}
}

func smdBoardPad(number string, x, y float64, net string) pcb.Pad {
	return pcb.Pad{
		Number:   number,
		Type:     "smd",
		Shape:    "rect",
		Position: pcb.PositionAngle{Position: pcb.Position{X: x, Y: y}},
		Size:     pcb.Size{Width: 1, Height: 1},
		Layers:   pcb.LayerSet{"F.Cu"},
		Net:      &pcb.Net{Name: net},
	}
}

func runConverter(t *testing.T, opts Options, board *pcb.Board) (*Converter, *fec.Document) {
	t.Helper()
	conv, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to create converter: %v", err)
	}
	doc, err := conv.Run(quietContext(), board)
	if err != nil {
		t.Fatalf("Failed to run conversion: %v", err)
	}
	return conv, doc
}

func TestNewValidation(t *testing.T) {
	for _, tt := range []struct {
		name string
		opts Options
	}{
		{"no layers", Options{PadRatio: 0.5}},
		{"three layers", Options{Layers: []string{"F.Cu", "In1.Cu", "B.Cu"}, PadRatio: 0.5}},
		{"zero ratio", Options{Layers: []string{"F.Cu"}}},
		{"ratio one", Options{Layers: []string{"F.Cu"}, PadRatio: 1}},
	} {
		if _, err := New(tt.opts); !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: err = %v, want ErrConfiguration", tt.name, err)
		}
	}

	if _, err := New(testOptions()); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
}

func TestConvertTracedPads(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{{
			Reference: "R1",
			Position:  pcb.PositionAngle{},
			Pads: []pcb.Pad{
				smdBoardPad("1", 0, 0, "/A"),
				smdBoardPad("2", 10, 0, "/B"),
				smdBoardPad("3", 5, 3, "/C"),
			},
		}},
		Tracks: []pcb.Track{{
			Start: pcb.Position{X: 0, Y: 0},
			End:   pcb.Position{X: 10, Y: 0},
			Width: 1,
			Layer: "F.Cu",
		}},
	}
	opts := testOptions(
		moduleSpec("a", 1, fec.Voltage, "R1", "1"),
		moduleSpec("b", 0, fec.Voltage, "R1", "2"),
	)

	conv, doc := runConverter(t, opts, board)

	// Pad 3 matched no spec, so it is dropped along with the isolated
	// copper island its outline seeded.
	if got := len(conv.Pads()); got != 2 {
		t.Errorf("Expected 2 pads, got %d", got)
	}
	if got := len(conv.Vias()); got != 0 {
		t.Errorf("Expected 0 vias, got %d", got)
	}
	if got := len(conv.Blocks()); got != 1 {
		t.Fatalf("Expected 1 block, got %d", got)
	}
	if layer := conv.Blocks()[0].Layer(); layer != "F.Cu" {
		t.Errorf("block layer = %q, want F.Cu", layer)
	}

	if got := len(doc.Conductors()); got != 2 {
		t.Errorf("Expected 2 conductors, got %d", got)
	}
	labels := doc.Labels()
	if len(labels) != 1 {
		t.Fatalf("Expected 1 block label, got %d", len(labels))
	}
	if labels[0].Prop.Name != "Copper" {
		t.Errorf("label material = %q, want Copper", labels[0].Prop.Name)
	}
	if got := len(doc.Holes()); got != 2 {
		t.Errorf("Expected 2 drill holes, got %d", got)
	}

	perConductor := make(map[string]int)
	for _, s := range doc.Segments() {
		if c := s.Conductor(); c != nil {
			perConductor[c.Name]++
		}
	}
	if perConductor["a"] != 4 || perConductor["b"] != 4 {
		t.Errorf("conductor ring segments = %v, want 4 per pad", perConductor)
	}
}

func TestConvertPruneChain(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{{
			Reference: "R1",
			Position:  pcb.PositionAngle{},
			Pads:      []pcb.Pad{smdBoardPad("1", 0, 0, "/SIG")},
		}},
		Tracks: []pcb.Track{
			{Start: pcb.Position{X: 0, Y: 0}, End: pcb.Position{X: 10, Y: 0}, Width: 1, Layer: "F.Cu"},
			{Start: pcb.Position{X: 10, Y: 0}, End: pcb.Position{X: 20, Y: 0}, Width: 1, Layer: "B.Cu"},
			{Start: pcb.Position{X: 40, Y: 0}, End: pcb.Position{X: 50, Y: 0}, Width: 1, Layer: "B.Cu"},
		},
		Vias: []pcb.Via{
			{Position: pcb.Position{X: 10, Y: 0}, Size: 1, Drill: 0.4, Layers: pcb.LayerSet{"*.Cu"}},
			{Position: pcb.Position{X: 45, Y: 0}, Size: 1, Drill: 0.4, Layers: pcb.LayerSet{"*.Cu"}},
		},
	}
	opts := testOptions(moduleSpec("drive", 0.5, fec.Current, "R1"))

	conv, doc := runConverter(t, opts, board)

	// The energized pad reaches the far block through the first via.
	// The second via and its blocks hang off nothing and are pruned.
	if got := len(conv.Pads()); got != 1 {
		t.Errorf("Expected 1 pad, got %d", got)
	}
	vias := conv.Vias()
	if len(vias) != 1 {
		t.Fatalf("Expected 1 via, got %d", len(vias))
	}
	if c := vias[0].Center(); c.X != 10 || c.Y != 0 {
		t.Errorf("surviving via at (%v, %v), want (10, 0)", c.X, c.Y)
	}

	blocks := conv.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	layers := map[string]int{}
	for _, b := range blocks {
		layers[b.Layer()]++
	}
	if layers["F.Cu"] != 1 || layers["B.Cu"] != 1 {
		t.Errorf("block layers = %v, want one per side", layers)
	}

	var copper, via int
	for _, l := range doc.Labels() {
		switch l.Prop.Name {
		case "Copper":
			copper++
		case "Via":
			via++
		}
	}
	if copper != 2 || via != 1 {
		t.Errorf("labels: %d copper and %d via, want 2 and 1", copper, via)
	}
}

func TestConvertLonePadBecomesVia(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{{
			Reference: "J1",
			Position:  pcb.PositionAngle{Position: pcb.Position{X: 5, Y: 5}},
			Pads: []pcb.Pad{{
				Number:   "1",
				Type:     "thru_hole",
				Shape:    "circle",
				Position: pcb.PositionAngle{},
				Size:     pcb.Size{Width: 1.6, Height: 1.6},
				Drill:    &pcb.Drill{Shape: "circle", Size: pcb.Size{Width: 0.8, Height: 0.8}},
				Layers:   pcb.LayerSet{"*.Cu"},
			}},
		}},
	}

	conv, doc := runConverter(t, testOptions(), board)

	if got := len(conv.Pads()); got != 0 {
		t.Errorf("Expected 0 pads, got %d", got)
	}
	if got := len(conv.Blocks()); got != 0 {
		t.Errorf("Expected 0 blocks, got %d", got)
	}
	vias := conv.Vias()
	if len(vias) != 1 {
		t.Fatalf("Expected 1 via, got %d", len(vias))
	}

	outline, err := vias[0].ConductorOutline()
	if err != nil {
		t.Fatalf("Failed to build via outline: %v", err)
	}
	n := len(outline[0])

	// Rolled rings on both layers, the unrolled strip top and bottom,
	// and the two strip sides.
	if got := len(doc.Segments()); got != 4*n+2 {
		t.Errorf("Expected %d segments, got %d", 4*n+2, got)
	}
	if got := len(doc.Boundaries()); got != 2*n+1 {
		t.Errorf("Expected %d boundaries, got %d", 2*n+1, got)
	}

	// Each periodic boundary ties exactly two segments of equal mesh
	// size together.
	perBoundary := make(map[*fec.Boundary][]*fec.Segment)
	for _, s := range doc.Segments() {
		if b := s.Boundary(); b != nil {
			if b.Type != fec.BoundaryPeriodic {
				t.Errorf("boundary %q type = %d, want periodic", b.Name, b.Type)
			}
			perBoundary[b] = append(perBoundary[b], s)
		}
	}
	if len(perBoundary) != 2*n+1 {
		t.Errorf("Expected %d used boundaries, got %d", 2*n+1, len(perBoundary))
	}
	names := make(map[string]bool)
	for b, segments := range perBoundary {
		names[b.Name] = true
		if len(segments) != 2 {
			t.Errorf("boundary %q joins %d segments, want 2", b.Name, len(segments))
			continue
		}
		if segments[0].MeshSize != segments[1].MeshSize {
			t.Errorf("boundary %q pairs mesh %v with %v", b.Name,
				segments[0].MeshSize, segments[1].MeshSize)
		}
	}
	if !names["via_0_vert"] {
		t.Error("missing the vertical strip boundary via_0_vert")
	}

	labels := doc.Labels()
	if len(labels) != 1 {
		t.Fatalf("Expected 1 label, got %d", len(labels))
	}
	if labels[0].Prop.Name != "Via" {
		t.Errorf("label material = %q, want Via", labels[0].Prop.Name)
	}
	if !almostEqual(labels[0].Y, -1.25, 1e-9) {
		t.Errorf("label y = %v, want the strip middle at -1.25", labels[0].Y)
	}
	if got := len(doc.Holes()); got != 2 {
		t.Errorf("Expected 2 holes, got %d", got)
	}
}

func TestConvertBoundsFilter(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{
			{
				Reference: "R1",
				Position:  pcb.PositionAngle{},
				Pads:      []pcb.Pad{smdBoardPad("1", 0, 0, "/A")},
			},
			{
				Reference: "R2",
				Position:  pcb.PositionAngle{Position: pcb.Position{X: 20, Y: 0}},
				Pads:      []pcb.Pad{smdBoardPad("1", 0, 0, "/B")},
			},
		},
		Tracks: []pcb.Track{{
			Start: pcb.Position{X: 0, Y: 0},
			End:   pcb.Position{X: 20, Y: 0},
			Width: 1,
			Layer: "F.Cu",
		}},
	}
	opts := testOptions(moduleSpec("a", 1, fec.Voltage, "R1"))
	opts.Bounds = &geometry.Rect{MinX: -5, MinY: -5, MaxX: 10, MaxY: 5}

	conv, _ := runConverter(t, opts, board)

	if got := len(conv.Pads()); got != 1 {
		t.Errorf("Expected 1 pad inside the bounds, got %d", got)
	}
	blocks := conv.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	r := geometry.PolygonRect(blocks[0].Polygon())
	if r.MaxX > 10+1e-6 {
		t.Errorf("block extends to x = %v, want clipped at 10", r.MaxX)
	}
}

func TestConvertDoubleAssignmentFails(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{{
			Reference: "R1",
			Position:  pcb.PositionAngle{},
			Pads:      []pcb.Pad{smdBoardPad("1", 0, 0, "/A")},
		}},
		Tracks: []pcb.Track{{
			Start: pcb.Position{X: 0, Y: 0},
			End:   pcb.Position{X: 5, Y: 0},
			Width: 1,
			Layer: "F.Cu",
		}},
	}
	region := &conductors.Spec{
		Name:    "dup",
		Value:   1,
		Type:    fec.Voltage,
		Regions: []geometry.Rect{{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}},
	}
	opts := testOptions(moduleSpec("a", 1, fec.Voltage, "R1"), region)

	conv, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to create converter: %v", err)
	}
	if _, err := conv.Run(quietContext(), board); !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestConvertSpecRatioOverride(t *testing.T) {
	board := &pcb.Board{
		Footprints: []pcb.Footprint{{
			Reference: "R1",
			Position:  pcb.PositionAngle{},
			Pads:      []pcb.Pad{smdBoardPad("1", 0, 0, "/A")},
		}},
		Tracks: []pcb.Track{{
			Start: pcb.Position{X: 0, Y: 0},
			End:   pcb.Position{X: 5, Y: 0},
			Width: 1,
			Layer: "F.Cu",
		}},
	}
	spec := moduleSpec("a", 1, fec.Voltage, "R1")
	spec.PadRatio = 0.25

	conv, _ := runConverter(t, testOptions(spec), board)

	pads := conv.Pads()
	if len(pads) != 1 {
		t.Fatalf("Expected 1 pad, got %d", len(pads))
	}
	outline, err := pads[0].ConductorOutline()
	if err != nil {
		t.Fatalf("Failed to build outline: %v", err)
	}
	copper, err := pads[0].CopperOutline()
	if err != nil {
		t.Fatalf("Failed to build outline: %v", err)
	}
	ratio := geometry.Area(outline) / geometry.Area(copper)
	if ratio < 0.24 || ratio > 0.26 {
		t.Errorf("conductor/copper area ratio = %v, want 0.25", ratio)
	}
}
