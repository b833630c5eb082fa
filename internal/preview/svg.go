// Package preview renders groups of polygons as an SVG image. It
// stands in for an interactive viewer: each group carries its own fill
// and line colors, and the drawing keeps the board's y-down
// orientation, which SVG shares.
package preview

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ctessum/geom"
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Group is a set of polygons drawn with shared colors.
type Group struct {
	Polygons []geom.Polygon
	Fill     Color
	Line     Color
}

// Canvas accumulates polygon groups and renders them in insertion
// order, so later groups paint over earlier ones.
type Canvas struct {
	groups []Group

	haveBounds             bool
	minX, minY, maxX, maxY float64
}

// New returns an empty canvas.
func New() *Canvas {
	return &Canvas{}
}

// AddGroup appends a polygon group. Groups without any vertices are
// dropped.
func (c *Canvas) AddGroup(polys []geom.Polygon, fill, line Color) {
	any := false
	for _, p := range polys {
		for _, ring := range p {
			for _, pt := range ring {
				if !c.haveBounds {
					c.minX, c.maxX = pt.X, pt.X
					c.minY, c.maxY = pt.Y, pt.Y
					c.haveBounds = true
				} else {
					if pt.X < c.minX {
						c.minX = pt.X
					}
					if pt.X > c.maxX {
						c.maxX = pt.X
					}
					if pt.Y < c.minY {
						c.minY = pt.Y
					}
					if pt.Y > c.maxY {
						c.maxY = pt.Y
					}
				}
				any = true
			}
		}
	}
	if !any {
		return
	}
	c.groups = append(c.groups, Group{Polygons: polys, Fill: fill, Line: line})
}

// WriteTo renders the canvas as an SVG document. The viewport covers
// the combined bounds of all groups plus a small margin.
func (c *Canvas) WriteTo(w io.Writer) error {
	minX, minY, maxX, maxY := c.minX, c.minY, c.maxX, c.maxY
	if !c.haveBounds {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	width := maxX - minX
	height := maxY - minY
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	margin := 0.05 * max(width, height)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		minX-margin, minY-margin, width+2*margin, height+2*margin)
	fmt.Fprintf(bw, `<rect x="%g" y="%g" width="%g" height="%g" fill="rgb(80%%,80%%,80%%)"/>`+"\n",
		minX-margin, minY-margin, width+2*margin, height+2*margin)

	strokeWidth := 0.002 * max(width, height)
	for _, g := range c.groups {
		fmt.Fprintf(bw, `<g fill="%s" fill-opacity="%g" fill-rule="evenodd" stroke="%s" stroke-opacity="%g" stroke-width="%g">`+"\n",
			rgb(g.Fill), g.Fill.A, rgb(g.Line), g.Line.A, strokeWidth)
		for _, p := range g.Polygons {
			if len(p) == 0 {
				continue
			}
			bw.WriteString(`<path d="`)
			for _, ring := range p {
				for i, pt := range ring {
					if i == 0 {
						fmt.Fprintf(bw, "M%g %g", pt.X, pt.Y)
					} else {
						fmt.Fprintf(bw, " L%g %g", pt.X, pt.Y)
					}
				}
				bw.WriteString(" Z ")
			}
			bw.WriteString(`"/>` + "\n")
		}
		bw.WriteString("</g>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func rgb(c Color) string {
	return fmt.Sprintf("rgb(%g%%,%g%%,%g%%)", c.R*100, c.G*100, c.B*100)
}
