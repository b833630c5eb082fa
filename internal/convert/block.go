package convert

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

// Block is a maximal connected copper region on one layer.
type Block struct {
	polygon geom.Polygon
	layer   string

	// pads and vias whose centers lie inside the polygon, in
	// discovery order
	pads []*Pad
	vias []*Via
}

func newBlock(polygon geom.Polygon, layer string) *Block {
	return &Block{
		polygon: geometry.Simplify(polygon, 0.01),
		layer:   layer,
	}
}

// Polygon returns the block outline in board coordinates.
func (b *Block) Polygon() geom.Polygon { return b.polygon }

// Layer returns the copper layer the block lies on.
func (b *Block) Layer() string { return b.layer }

// emit writes the block's ring segments, one hole inside each interior
// ring, and the copper material label.
func (b *Block) emit(doc *fec.Document, layout *Layout) error {
	placed, err := layout.Place(b.polygon, b.layer)
	if err != nil {
		return err
	}
	for _, ring := range placed {
		ringToSegments(doc, ring)
	}

	for _, interior := range b.polygon[1:] {
		pt, err := geometry.InteriorPoint(geom.Polygon{interior})
		if err != nil {
			return err
		}
		hole, err := layout.PlacePoint(pt, b.layer)
		if err != nil {
			return err
		}
		doc.AddHole(hole.X, hole.Y)
	}

	labelAt, err := b.labelPoint()
	if err != nil {
		return err
	}
	placedLabel, err := layout.PlacePoint(labelAt, b.layer)
	if err != nil {
		return err
	}
	return doc.AddBlockLabel(placedLabel.X, placedLabel.Y, layout.CopperProperty())
}

// labelPoint finds a representative interior point of the block with
// the contained conductor outlines carved out, so the material label
// cannot land inside a pad or via.
func (b *Block) labelPoint() (geom.Point, error) {
	var cuts []geom.Polygon
	for _, pad := range b.pads {
		outline, err := pad.ConductorOutline()
		if err != nil {
			return geom.Point{}, err
		}
		cuts = append(cuts, outline)
	}
	for _, via := range b.vias {
		outline, err := via.ConductorOutline()
		if err != nil {
			return geom.Point{}, err
		}
		cuts = append(cuts, outline)
	}

	remaining := b.polygon
	if len(cuts) > 0 {
		diff := b.polygon.Difference(geometry.UnionAll(cuts)).(geom.Polygon)
		if len(diff) == 0 {
			return geom.Point{}, fmt.Errorf("block on %s fully covered by conductors: %w",
				b.layer, ErrGeometryDegenerate)
		}
		remaining = diff
	}
	return geometry.InteriorPoint(remaining)
}
