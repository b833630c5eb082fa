package conductors

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

func TestMatch(t *testing.T) {
	region := geometry.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	tests := []struct {
		name string
		spec Spec
		pad  PadInfo
		want bool
	}{
		{
			"region hit",
			Spec{Regions: []geometry.Rect{region}},
			PadInfo{Center: geom.Point{X: 5, Y: 5}},
			true,
		},
		{
			"region miss",
			Spec{Regions: []geometry.Rect{region}},
			PadInfo{Center: geom.Point{X: 15, Y: 5}},
			false,
		},
		{
			"region works for bare vias",
			Spec{Regions: []geometry.Rect{region}},
			PadInfo{Center: geom.Point{X: 5, Y: 5}, Reference: ""},
			true,
		},
		{
			"net gate passes",
			Spec{Net: "/SIG", Regions: []geometry.Rect{region}},
			PadInfo{NetName: "/SIG", Center: geom.Point{X: 5, Y: 5}},
			true,
		},
		{
			"net gate blocks",
			Spec{Net: "/SIG", Regions: []geometry.Rect{region}},
			PadInfo{NetName: "GND", Center: geom.Point{X: 5, Y: 5}},
			false,
		},
		{
			"net alone selects nothing",
			Spec{Net: "/SIG"},
			PadInfo{NetName: "/SIG", Center: geom.Point{X: 5, Y: 5}},
			false,
		},
		{
			"module all pads",
			Spec{Modules: []ModuleRef{{Reference: "R5"}}},
			PadInfo{Reference: "R5", Number: "7"},
			true,
		},
		{
			"module pad listed",
			Spec{Modules: []ModuleRef{{Reference: "R5", Pads: []string{"1", "2"}}}},
			PadInfo{Reference: "R5", Number: "2"},
			true,
		},
		{
			"module pad not listed",
			Spec{Modules: []ModuleRef{{Reference: "R5", Pads: []string{"1", "2"}}}},
			PadInfo{Reference: "R5", Number: "3"},
			false,
		},
		{
			"module wrong reference",
			Spec{Modules: []ModuleRef{{Reference: "R5"}}},
			PadInfo{Reference: "R6", Number: "1"},
			false,
		},
		{
			"module never matches bare via",
			Spec{Modules: []ModuleRef{{Reference: "R5"}}},
			PadInfo{Reference: "", Number: "1"},
			false,
		},
		{
			"empty spec selects nothing",
			Spec{},
			PadInfo{Reference: "R5", Number: "1", Center: geom.Point{X: 5, Y: 5}},
			false,
		},
		{
			"second module entry matches",
			Spec{Modules: []ModuleRef{{Reference: "R5", Pads: []string{"1"}}, {Reference: "U3"}}},
			PadInfo{Reference: "U3", Number: "14"},
			true,
		},
	}

	for _, tt := range tests {
		if got := tt.spec.Match(tt.pad); got != tt.want {
			t.Errorf("%s: Match() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchRegionEdge(t *testing.T) {
	spec := Spec{Regions: []geometry.Rect{{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}}}

	// Containment includes the region boundary.
	if !spec.Match(PadInfo{Center: geom.Point{X: 10, Y: 0}}) {
		t.Error("Expected corner point to match")
	}
}

func TestSpecConductor(t *testing.T) {
	doc := fec.NewDocument()

	vin := &Spec{Name: "vin", Type: fec.Current, Value: 0.5}
	c1, err := vin.Conductor(doc)
	if err != nil {
		t.Fatalf("Failed to intern conductor: %v", err)
	}
	if c1.Name != "vin" || c1.Type != fec.Current || c1.Value != 0.5 {
		t.Errorf("Unexpected conductor: %+v", c1)
	}

	c2, err := vin.Conductor(doc)
	if err != nil {
		t.Fatalf("Failed to intern conductor twice: %v", err)
	}
	if c1 != c2 {
		t.Error("Expected the same conductor instance for repeated interning")
	}

	clash := &Spec{Name: "vin", Type: fec.Voltage, Value: 0.5}
	if _, err := clash.Conductor(doc); err == nil {
		t.Error("Expected error for conflicting redefinition")
	}
}
