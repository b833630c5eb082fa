package pcb

import "math"

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position // Minimum (top-left) corner
	Max Position // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	if pos.X < bb.Min.X {
		bb.Min.X = pos.X
	}
	if pos.Y < bb.Min.Y {
		bb.Min.Y = pos.Y
	}
	if pos.X > bb.Max.X {
		bb.Max.X = pos.X
	}
	if pos.Y > bb.Max.Y {
		bb.Max.Y = pos.Y
	}
}

// ExpandBox expands to include another bounding box
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Position {
	return Position{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}

// GetBoundingBox calculates the bounding box of the board's copper:
// tracks, vias, footprint pads, and zone outlines.
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, track := range b.Tracks {
		half := track.Width / 2.0
		bbox.Expand(Position{X: track.Start.X - half, Y: track.Start.Y - half})
		bbox.Expand(Position{X: track.Start.X + half, Y: track.Start.Y + half})
		bbox.Expand(Position{X: track.End.X - half, Y: track.End.Y - half})
		bbox.Expand(Position{X: track.End.X + half, Y: track.End.Y + half})
	}

	for _, via := range b.Vias {
		radius := via.Size / 2.0
		bbox.Expand(Position{X: via.Position.X - radius, Y: via.Position.Y - radius})
		bbox.Expand(Position{X: via.Position.X + radius, Y: via.Position.Y + radius})
	}

	for _, fp := range b.Footprints {
		bbox.ExpandBox(fp.GetBoundingBox())
	}

	for _, zone := range b.Zones {
		for _, point := range zone.Outline {
			bbox.Expand(point)
		}
		for _, ring := range zone.Fills {
			for _, point := range ring {
				bbox.Expand(point)
			}
		}
	}

	return bbox
}

// GetBoundingBox calculates the bounding box of a footprint from its
// pads, with positions transformed to board coordinates.
func (fp *Footprint) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, pad := range fp.Pads {
		absPos := fp.TransformPosition(pad.Position)

		// Cheap over-approximation: the pad's half-diagonal covers any
		// rotation.
		half := math.Hypot(pad.Size.Width, pad.Size.Height) / 2.0
		bbox.Expand(Position{X: absPos.X - half, Y: absPos.Y - half})
		bbox.Expand(Position{X: absPos.X + half, Y: absPos.Y + half})
	}

	if len(fp.Pads) == 0 {
		bbox.Expand(fp.Position.Position)
	}

	return bbox
}

// TransformPosition converts a footprint-relative position to board
// coordinates: rotate clockwise by the footprint angle about the
// footprint origin, then translate.
func (fp *Footprint) TransformPosition(relPos PositionAngle) Position {
	x, y := relPos.X, relPos.Y

	if fp.Position.Angle != 0 {
		angleRad := -fp.Position.Angle * math.Pi / 180.0
		cos := math.Cos(angleRad)
		sin := math.Sin(angleRad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	return Position{X: x + fp.Position.X, Y: y + fp.Position.Y}
}
