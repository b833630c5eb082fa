// Package convert turns a parsed KiCad board into a planar mesh
// document. Copper is discovered as pads, vias and filled blocks,
// excitations are assigned from conductor specs, unreachable copper is
// pruned, and the survivors are laid out flat: the bottom layer
// mirrored next to the top, vias unrolled into strips below, stitched
// to their layers through periodic boundaries.
package convert

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/internal/cli"
	"github.com/OpenTraceLab/kicad2fec/pkg/conductors"
	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/pcb"
)

// Options configure a conversion run.
type Options struct {
	// Specs select the energized pads and the excitation applied to
	// them.
	Specs []*conductors.Spec

	// Layers is the configured copper layer list, top first, at most
	// two entries.
	Layers []string

	// Bounds optionally restricts the conversion to a board region:
	// fills and traces are clipped to it, pads centered outside it
	// are dropped.
	Bounds *geometry.Rect

	// BoardThickness is the substrate thickness in mm, the height of
	// unrolled via strips.
	BoardThickness float64

	// Clearance is the spacing between placed layout elements in mm.
	Clearance float64

	// PadRatio is the default conductor area ratio for surface pads.
	PadRatio float64

	// Conductivity is the copper conductivity in S/m.
	Conductivity float64

	// ViaConductivity is the effective conductivity of via plating,
	// scaled for its thinner copper.
	ViaConductivity float64
}

// Converter runs the conversion pipeline from a parsed board to a
// mesh document.
type Converter struct {
	opts Options
	log  *log.Logger

	doc    *fec.Document
	layout *Layout

	pads   []*Pad
	vias   []*Via
	blocks []*Block
}

// New validates the options and creates a converter.
func New(opts Options) (*Converter, error) {
	if len(opts.Layers) == 0 || len(opts.Layers) > 2 {
		return nil, fmt.Errorf("need one or two copper layers, got %d: %w",
			len(opts.Layers), ErrConfiguration)
	}
	if opts.PadRatio <= 0 || opts.PadRatio >= 1 {
		return nil, fmt.Errorf("pad ratio %v outside (0, 1): %w", opts.PadRatio, ErrConfiguration)
	}
	return &Converter{opts: opts}, nil
}

// Run executes the pipeline and returns the assembled document, ready
// to be written.
func (c *Converter) Run(ctx context.Context, board *pcb.Board) (*fec.Document, error) {
	c.log = cli.LoggerFromContext(ctx)
	c.doc = fec.NewDocument()

	copper, err := c.doc.BlockProperty("Copper", c.opts.Conductivity)
	if err != nil {
		return nil, err
	}
	via, err := c.doc.BlockProperty("Via", c.opts.ViaConductivity)
	if err != nil {
		return nil, err
	}
	c.layout, err = NewLayout(c.opts.Layers, c.opts.BoardThickness, copper, via, c.opts.Clearance)
	if err != nil {
		return nil, err
	}

	stages := []struct {
		name string
		run  func() error
	}{
		{"Finding pads", func() error { c.findPads(board); return nil }},
		{"Assigning conductors", c.assignConductors},
		{"Finding vias", func() error { c.findVias(); return nil }},
		{"Finding blocks", func() error { return c.findBlocks(board) }},
		{"Removing unconnected pads", func() error { c.removeUnconnectedPads(); return nil }},
		{"Pruning blocks", func() error { c.pruneBlocks(); return nil }},
		{"Writing FEC output", c.emit},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := cli.Stage(ctx, stage.name, stage.run); err != nil {
			return nil, err
		}
	}
	return c.doc, nil
}

// Pads returns the retained, conductor-assigned pads.
func (c *Converter) Pads() []*Pad { return c.pads }

// Vias returns the retained vias.
func (c *Converter) Vias() []*Via { return c.vias }

// Blocks returns the retained copper blocks.
func (c *Converter) Blocks() []*Block { return c.blocks }

// findPads collects every footprint pad and board via that touches a
// configured layer, dropping those centered outside the bounds filter.
func (c *Converter) findPads(board *pcb.Board) {
	add := func(item padItem) {
		for _, layer := range c.opts.Layers {
			if item.onLayer(layer) {
				pad := newPad(item, c.opts.PadRatio)
				if c.opts.Bounds == nil || c.opts.Bounds.Contains(pad.Center()) {
					c.pads = append(c.pads, pad)
				}
				return
			}
		}
	}
	for i := range board.Footprints {
		footprint := &board.Footprints[i]
		for j := range footprint.Pads {
			add(itemFromPad(&footprint.Pads[j], footprint))
		}
	}
	for i := range board.Vias {
		add(itemFromVia(&board.Vias[i]))
	}
	c.log.Debug("collected pads", "count", len(c.pads))
}

// assignConductors matches every pad against every spec. A pad hit by
// two specs is a configuration error.
func (c *Converter) assignConductors() error {
	for _, pad := range c.pads {
		for _, spec := range c.opts.Specs {
			if !spec.Match(pad.matchInfo()) {
				continue
			}
			conductor, err := spec.Conductor(c.doc)
			if err != nil {
				return err
			}
			if err := pad.setConductor(conductor); err != nil {
				return err
			}
			if spec.PadRatio != 0 {
				if err := pad.setRatio(spec.PadRatio); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// findVias reclassifies through-hole pads with no conductor as vias.
func (c *Converter) findVias() {
	pads := c.pads[:0]
	for _, pad := range c.pads {
		if pad.conductor == nil && pad.item.padType == "thru_hole" {
			c.vias = append(c.vias, viaFromPad(pad))
		} else {
			pads = append(pads, pad)
		}
	}
	c.pads = pads
	c.log.Debug("reclassified vias", "count", len(c.vias))
}

// findBlocks unions each layer's zone fills and traces, clips the
// result to the bounds filter, merges in the pad and via copper and
// splits the whole into connected blocks. A layer with no fill or
// trace copper yields no blocks at all; pad copper alone does not
// seed one.
func (c *Converter) findBlocks(board *pcb.Board) error {
	for _, layer := range c.opts.Layers {
		var parts []geom.Polygon
		for _, zone := range board.Zones {
			if zone.Layer != layer {
				continue
			}
			for _, ringPoints := range zone.Fills {
				parts = append(parts, geometry.Buffer(polygonFromPositions(ringPoints), zone.MinThickness/2))
			}
		}
		for _, track := range board.Tracks {
			if track.Layer != layer {
				continue
			}
			parts = append(parts, geometry.Stadium(
				geom.Point{X: track.Start.X, Y: track.Start.Y},
				geom.Point{X: track.End.X, Y: track.End.Y},
				track.Width/2))
		}

		fill := geometry.UnionAll(parts)
		if len(fill) > 0 && c.opts.Bounds != nil {
			fill = c.opts.Bounds.Polygon().Intersection(fill).(geom.Polygon)
		}
		if len(fill) == 0 {
			continue
		}

		all := []geom.Polygon{fill}
		for _, pad := range c.pads {
			if !pad.item.onLayer(layer) {
				continue
			}
			copper, err := pad.CopperOutline()
			if err != nil {
				return err
			}
			all = append(all, copper)
		}
		for _, via := range c.vias {
			if !via.item.onLayer(layer) {
				continue
			}
			copper, err := via.CopperOutline()
			if err != nil {
				return err
			}
			all = append(all, copper)
		}

		regions := geometry.SplitRegions(geometry.UnionAll(all))
		for _, region := range regions {
			c.blocks = append(c.blocks, newBlock(region, layer))
		}
		c.log.Debug("found blocks", "layer", layer, "count", len(regions))
	}
	return nil
}

func polygonFromPositions(points []pcb.Position) geom.Polygon {
	ring := make([]geom.Point, len(points))
	for i, p := range points {
		ring[i] = geom.Point{X: p.X, Y: p.Y}
	}
	return geom.Polygon{ring}
}

// removeUnconnectedPads drops pads that never matched a conductor
// spec. Through-hole pads were already reclassified as vias, so this
// only discards surface pads.
func (c *Converter) removeUnconnectedPads() {
	pads := c.pads[:0]
	for _, pad := range c.pads {
		if pad.conductor != nil {
			pads = append(pads, pad)
		}
	}
	c.pads = pads
}

// emit computes the layer bounds, freezes the layout and writes pads,
// vias and blocks into the document.
func (c *Converter) emit() error {
	var top, bottom geometry.Rect
	for i, layer := range c.opts.Layers {
		var polys []geom.Polygon
		for _, block := range c.blocks {
			if block.layer == layer {
				polys = append(polys, block.polygon)
			}
		}
		bounds, ok := geometry.LayerBounds(polys)
		if !ok {
			bounds = geometry.Rect{}
		}
		if i == 0 {
			top = bounds
		} else {
			bottom = bounds
		}
	}
	c.layout.SetBounds(top, bottom)

	for _, pad := range c.pads {
		if err := pad.emit(c.doc, c.layout); err != nil {
			return err
		}
	}

	// Via indices follow board position, top to bottom then left to
	// right, so the boundary names read in row order.
	sort.SliceStable(c.vias, func(i, j int) bool {
		a, b := c.vias[i].Center(), c.vias[j].Center()
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	for i, via := range c.vias {
		if err := via.emit(c.doc, c.layout, i); err != nil {
			return err
		}
	}

	for _, block := range c.blocks {
		if err := block.emit(c.doc, c.layout); err != nil {
			return err
		}
	}
	return nil
}
