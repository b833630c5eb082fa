package conductors

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

// Spec selects a set of pads and defines the excitation applied to
// them. Specs are produced by the Parser, one per conductor block.
type Spec struct {
	// Name labels the conductor in the output file.
	Name string

	// Value and Type define the excitation, a fixed voltage or a
	// total current.
	Value float64
	Type  fec.ConductorType

	// Net, when set, gates every other selector. A pad on a
	// different net never matches, and a spec with a net but no
	// regions or modules matches nothing.
	Net string

	// PadRatio overrides the surface pad conductor size for pads
	// selected by this spec. Zero means use the converter default.
	PadRatio float64

	Regions []geometry.Rect
	Modules []ModuleRef
}

// ModuleRef selects pads of one component. An empty pad list selects
// all of them.
type ModuleRef struct {
	Reference string
	Pads      []string
}

// PadInfo carries the pad attributes a spec selects on.
type PadInfo struct {
	// NetName is the resolved net of the pad, empty when unconnected.
	NetName string

	// Center is the pad center in board coordinates.
	Center geom.Point

	// Reference is the parent footprint reference. Empty for bare
	// board vias, which module selectors never match.
	Reference string

	// Number is the pad number within the footprint.
	Number string
}

// Match reports whether the pad is selected by this spec. The net gate
// is checked first when present, then regions by center containment,
// then module references.
func (s *Spec) Match(pad PadInfo) bool {
	if s.Net != "" && pad.NetName != s.Net {
		return false
	}
	for _, r := range s.Regions {
		if r.Contains(pad.Center) {
			return true
		}
	}
	if pad.Reference == "" {
		return false
	}
	for _, m := range s.Modules {
		if m.Reference != pad.Reference {
			continue
		}
		if len(m.Pads) == 0 {
			return true
		}
		for _, n := range m.Pads {
			if n == pad.Number {
				return true
			}
		}
	}
	return false
}

// Conductor interns the excitation described by this spec in the
// document and returns it.
func (s *Spec) Conductor(doc *fec.Document) (*fec.Conductor, error) {
	return doc.Conductor(s.Name, s.Type, s.Value)
}

func (f *File) specs() ([]*Spec, error) {
	specs := make([]*Spec, 0, len(f.Conductors))
	for _, b := range f.Conductors {
		s, err := b.spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func (b *Block) spec() (*Spec, error) {
	s := &Spec{Type: fec.Voltage}
	if b.Name != nil {
		s.Name = unquote(*b.Name)
	}

	var haveValue, haveNet, haveRatio bool
	for _, f := range b.Fields {
		switch {
		case f.Value != nil:
			if haveValue {
				return nil, fmt.Errorf("conductor %q: duplicate value", s.Name)
			}
			haveValue = true
			if err := s.setValue(*f.Value); err != nil {
				return nil, fmt.Errorf("conductor %q: %w", s.Name, err)
			}

		case f.Net != nil:
			if haveNet {
				return nil, fmt.Errorf("conductor %q: duplicate net", s.Name)
			}
			haveNet = true
			s.Net = unquote(*f.Net)

		case f.PadRatio != nil:
			if haveRatio {
				return nil, fmt.Errorf("conductor %q: duplicate pad-ratio", s.Name)
			}
			haveRatio = true
			r := *f.PadRatio
			if r <= 0 || r >= 1 {
				return nil, fmt.Errorf("conductor %q: pad-ratio %v outside (0, 1)", s.Name, r)
			}
			s.PadRatio = r

		case f.Region != nil:
			// Corner order does not matter.
			s.Regions = append(s.Regions, geometry.Rect{
				MinX: math.Min(f.Region.X1, f.Region.X2),
				MinY: math.Min(f.Region.Y1, f.Region.Y2),
				MaxX: math.Max(f.Region.X1, f.Region.X2),
				MaxY: math.Max(f.Region.Y1, f.Region.Y2),
			})

		case f.Module != nil:
			pads := make([]string, 0, len(f.Module.Pads))
			for _, p := range f.Module.Pads {
				pads = append(pads, unquote(p))
			}
			s.Modules = append(s.Modules, ModuleRef{
				Reference: f.Module.Reference,
				Pads:      pads,
			})
		}
	}
	return s, nil
}

// setValue parses an excitation literal such as "0.5A" or "3V". The
// unit letter selects the conductor type.
func (s *Spec) setValue(lit string) error {
	if len(lit) < 2 {
		return fmt.Errorf("invalid value %q", lit)
	}
	amount, err := strconv.ParseFloat(lit[:len(lit)-1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", lit, err)
	}
	switch lit[len(lit)-1] {
	case 'V', 'v':
		s.Type = fec.Voltage
	case 'A', 'a', 'I', 'i':
		s.Type = fec.Current
	default:
		return fmt.Errorf("unknown unit in value %q", lit)
	}
	s.Value = amount
	return nil
}
