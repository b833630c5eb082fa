package convert

import (
	"io"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/internal/preview"
)

// WritePreview renders the retained copper in board coordinates as an
// SVG: bottom layer blocks in green under top layer blocks in red,
// with via and pad conductors painted on top.
func (c *Converter) WritePreview(w io.Writer) error {
	canvas := preview.New()

	if len(c.opts.Layers) > 1 {
		canvas.AddGroup(c.blockPolygons(c.opts.Layers[1]),
			preview.Color{R: 0.3, G: 0.9, B: 0.3, A: 0.7},
			preview.Color{G: 0.4, A: 0.8})
	}
	canvas.AddGroup(c.blockPolygons(c.opts.Layers[0]),
		preview.Color{R: 0.9, A: 0.4},
		preview.Color{R: 0.4, A: 0.8})

	viaPolys := make([]geom.Polygon, 0, len(c.vias))
	for _, via := range c.vias {
		outline, err := via.ConductorOutline()
		if err != nil {
			return err
		}
		viaPolys = append(viaPolys, outline)
	}
	canvas.AddGroup(viaPolys,
		preview.Color{R: 0.6, G: 0.6, B: 0.6, A: 1},
		preview.Color{A: 0.8})

	if len(c.opts.Layers) > 1 {
		polys, err := c.padPolygons(c.opts.Layers[1])
		if err != nil {
			return err
		}
		canvas.AddGroup(polys,
			preview.Color{G: 0.6, A: 0.5},
			preview.Color{G: 0.3, A: 0.5})
	}
	polys, err := c.padPolygons(c.opts.Layers[0])
	if err != nil {
		return err
	}
	canvas.AddGroup(polys,
		preview.Color{R: 0.6, A: 0.5},
		preview.Color{R: 0.3, A: 0.5})

	return canvas.WriteTo(w)
}

func (c *Converter) blockPolygons(layer string) []geom.Polygon {
	var polys []geom.Polygon
	for _, block := range c.blocks {
		if block.layer == layer {
			polys = append(polys, block.polygon)
		}
	}
	return polys
}

func (c *Converter) padPolygons(layer string) ([]geom.Polygon, error) {
	var polys []geom.Polygon
	for _, pad := range c.pads {
		if !pad.OnLayer(layer) {
			continue
		}
		outline, err := pad.ConductorOutline()
		if err != nil {
			return nil, err
		}
		polys = append(polys, outline)
	}
	return polys, nil
}
