package fec

import "math"

// overlapCell sizes the spatial hash used by overlap resolution. Must
// exceed twice the merge radius so that registering each point in its
// cell plus the 8 neighbors covers every point near a segment.
const overlapCell = 0.1

// Normalize cleans the accumulated geometry: points that landed just
// across a grid boundary from each other are merged, segments touching
// a point mid-span are split there, and zero-length segments are
// dropped. Normalizing an already normalized document changes nothing.
func (d *Document) Normalize() error {
	if err := d.mergeClosePoints(); err != nil {
		return err
	}
	if err := d.resolveOverlaps(); err != nil {
		return err
	}
	d.removeZeroLength()
	return nil
}

// mergeClosePoints shifts the merge grid by half a cell in y, both
// axes, then x, re-interning all points each time. Points that were
// near each other but in different cells share a cell under one of the
// shifted grids and collapse. The point with the smallest coordinates
// in a cell survives.
func (d *Document) mergeClosePoints() error {
	for _, off := range [3][2]float64{{0, 0.5}, {0.5, 0.5}, {0.5, 0}} {
		old := d.sortedPoints()

		d.xOff, d.yOff = off[0], off[1]
		d.points = make(map[gridKey]*Point, len(old))

		replace := make(map[*Point]*Point, len(old))
		for _, p := range old {
			k := d.grid(p.X, p.Y)
			canon, ok := d.points[k]
			if !ok {
				canon = p
				d.points[k] = p
			}
			replace[p] = canon
		}

		if err := d.remapSegments(replace); err != nil {
			return err
		}
	}
	return nil
}

// remapSegments rewrites segment endpoints through the replacement map
// and rebuilds the segment table, folding together segments that now
// share endpoints.
func (d *Document) remapSegments(replace map[*Point]*Point) error {
	old := d.sortedSegments()
	d.segments = make(map[segmentKey]*Segment, len(old))
	for _, s := range old {
		if np, ok := replace[s.P0]; ok {
			s.P0 = np
		}
		if np, ok := replace[s.P1]; ok {
			s.P1 = np
		}
		if err := d.insertMerged(s); err != nil {
			return err
		}
	}
	return nil
}

type cellKey struct{ x, y int }

// resolveOverlaps splits segments wherever a point lies on them away
// from their endpoints. Segments are assumed not to cross mid-span;
// overlaps only happen along shared outlines, so splitting at existing
// points is enough. No new points are created.
func (d *Document) resolveOverlaps() error {
	// Register each point in its cell and the 8 neighbors, so a
	// cell lookup finds every point within a cell width.
	cells := make(map[cellKey][]*Point)
	for _, p := range d.sortedPoints() {
		cx := int(math.Floor(p.X / overlapCell))
		cy := int(math.Floor(p.Y / overlapCell))
		for x := cx - 1; x <= cx+1; x++ {
			for y := cy - 1; y <= cy+1; y++ {
				k := cellKey{x, y}
				cells[k] = append(cells[k], p)
			}
		}
	}

	queue := d.sortedSegments()
	d.segments = make(map[segmentKey]*Segment, len(queue))

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		splitter := findSplitter(s, cells)
		if splitter == nil {
			if err := d.insertMerged(s); err != nil {
				return err
			}
			continue
		}

		halves := [2]*Segment{
			{P0: s.P0, P1: splitter, MeshSize: s.MeshSize, conductor: s.conductor, boundary: s.boundary},
			{P0: splitter, P1: s.P1, MeshSize: s.MeshSize, conductor: s.conductor, boundary: s.boundary},
		}
		for _, half := range halves {
			k := segmentKey{half.P0, half.P1}
			if exist, ok := d.segments[k]; ok {
				// A finalized segment matches the half.
				// Merge and send it back through the queue.
				delete(d.segments, k)
				if err := exist.mergeFrom(half); err != nil {
					return err
				}
				queue = append(queue, exist)
				continue
			}
			queue = append(queue, half)
		}
	}
	return nil
}

// findSplitter returns the first point (in coordinate order) lying
// within the merge radius of the segment that is not one of its
// endpoints, or nil.
func findSplitter(s *Segment, cells map[cellKey][]*Point) *Point {
	seen := make(map[*Point]bool)
	var candidates []*Point
	segmentCells(s, overlapCell, func(k cellKey) {
		for _, p := range cells[k] {
			if !seen[p] {
				seen[p] = true
				candidates = append(candidates, p)
			}
		}
	})

	var best *Point
	for _, p := range candidates {
		if p == s.P0 || p == s.P1 {
			continue
		}
		if pointSegmentDistance(p, s) >= smallDistance {
			continue
		}
		if best == nil || p.X < best.X || (p.X == best.X && p.Y < best.Y) {
			best = p
		}
	}
	return best
}

// segmentCells visits the grid cells along the segment by Bresenham
// rasterization of its endpoints' cell coordinates. No point on the
// segment is more than half a cell away from a visited cell in either
// axis.
func segmentCells(s *Segment, cell float64, visit func(cellKey)) {
	x0, y0 := s.P0.X/cell, s.P0.Y/cell
	x1, y1 := s.P1.X/cell, s.P1.Y/cell

	// Walk the major axis.
	flipped := math.Abs(x1-x0) <= math.Abs(y1-y0)
	if flipped {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}

	xSign := 1
	if x1 < x0 {
		xSign = -1
		x0 = -x0 + 1
		x1 = -x1 + 1
	}
	ySign := 1
	if y1 < y0 {
		ySign = -1
		y0 = -y0 + 1
		y1 = -y1 + 1
	}

	var dErr float64
	if x1 != x0 {
		dErr = (y1 - y0) / (x1 - x0)
	}
	yv := dErr*(math.Floor(x0)+0.5-x0) + y0
	y := int(math.Floor(yv))
	acc := yv - math.Floor(yv)

	for x := int(math.Floor(x0)); x < int(math.Ceil(x1)); x++ {
		cx, cy := x*xSign, y*ySign
		if flipped {
			cx, cy = cy, cx
		}
		visit(cellKey{cx, cy})
		acc += dErr
		if acc >= 1 {
			y++
			acc--
		}
	}
}

// pointSegmentDistance returns the distance from p to the closest point
// on s.
func pointSegmentDistance(p *Point, s *Segment) float64 {
	dx := s.P1.X - s.P0.X
	dy := s.P1.Y - s.P0.Y
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return math.Hypot(p.X-s.P0.X, p.Y-s.P0.Y)
	}
	t := ((p.X-s.P0.X)*dx + (p.Y-s.P0.Y)*dy) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(s.P0.X+t*dx), p.Y-(s.P0.Y+t*dy))
}

// removeZeroLength drops segments whose endpoints merged into the same
// point.
func (d *Document) removeZeroLength() {
	for k, s := range d.segments {
		if s.P0 == s.P1 {
			delete(d.segments, k)
		}
	}
}
