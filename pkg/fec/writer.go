package fec

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteOptions carries the problem definition written into the file
// header.
type WriteOptions struct {
	// Precision is the solver stopping tolerance.
	Precision float64

	// Frequency of the problem in Hz. 0 solves the DC case.
	Frequency float64

	// MinAngle is the minimum interior angle of generated mesh
	// triangles, in degrees.
	MinAngle float64

	// Depth of the planar problem in length units (copper thickness
	// in mm).
	Depth float64

	// Comment is embedded in the header.
	Comment string
}

// DefaultWriteOptions returns the header values for a DC problem on
// 1oz copper.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Precision: 1e-8,
		MinAngle:  25,
		Depth:     0.035,
		Comment:   "Auto generated by 'kicad2fec'.",
	}
}

const headerTemplate = "[Format]      =  1\n" +
	"[Precision]   =  %s\n" +
	"[Frequency]   =  %s\n" +
	"[MinAngle]    =  %s\n" +
	"[Depth]       =  %s\n" +
	"[LengthUnits] =  millimeters\n" +
	"[ProblemType] =  planar\n" +
	"[Coordinates] =  cartesian\n" +
	"[Comment]     =  %q\n" +
	"[PointProps]  = 0\n"

const boundaryTemplate = "  <BeginBdry>\n" +
	"    <BdryName> = %q\n" +
	"    <BdryType> = %d\n" +
	"    <vsr> = 0\n" +
	"    <vsi> = 0\n" +
	"    <qsr> = 0\n" +
	"    <qsi> = 0\n" +
	"    <c0r> = 0\n" +
	"    <c0i> = 0\n" +
	"    <c1r> = 0\n" +
	"    <c1i> = 0\n" +
	"  <EndBdry>\n"

// The solver writes <BlockName> with one space less than the other
// fields. Kept that way so output diffs cleanly against solver-saved
// files.
const blockPropTemplate = "  <BeginBlock>\n" +
	"   <BlockName> = %q\n" +
	"    <ox> = %s\n" +
	"    <oy> = %s\n" +
	"    <ex> = 1\n" +
	"    <ey> = 1\n" +
	"    <ltx> = 0\n" +
	"    <lty> = 0\n" +
	"  <EndBlock>\n"

const conductorTemplate = "  <BeginConductor>\n" +
	"    <ConductorName> = %q\n" +
	"    <vcr> = %s\n" +
	"    <vci> = 0\n" +
	"    <qcr> = %s\n" +
	"    <qci> = 0\n" +
	"    <ConductorType> = %d\n" +
	"  <EndConductor>\n"

// WriteTo normalizes the document and writes it out. Every section is
// sorted so the same geometry always produces byte-identical output.
func (d *Document) WriteTo(w io.Writer, opts WriteOptions) error {
	if err := d.Normalize(); err != nil {
		return err
	}

	segments := d.sortedSegments()

	// Only entities referenced by a live segment are written. Holes,
	// labels and block properties are always live.
	livePoint := make(map[*Point]bool, 2*len(segments))
	liveBdry := make(map[*Boundary]bool)
	liveCond := make(map[*Conductor]bool)
	for _, s := range segments {
		livePoint[s.P0] = true
		livePoint[s.P1] = true
		if s.boundary != nil {
			liveBdry[s.boundary] = true
		}
		if s.conductor != nil {
			liveCond[s.conductor] = true
		}
	}

	var boundaries []*Boundary
	for _, b := range d.Boundaries() {
		if liveBdry[b] {
			boundaries = append(boundaries, b)
		}
	}
	for i, b := range boundaries {
		b.i = i + 1
	}

	var conductors []*Conductor
	for _, c := range d.Conductors() {
		if liveCond[c] {
			conductors = append(conductors, c)
		}
	}
	for i, c := range conductors {
		c.i = i + 1
	}

	names := make([]string, 0, len(d.blockProps))
	for name := range d.blockProps {
		names = append(names, name)
	}
	sort.Strings(names)
	blockProps := make([]*BlockProperty, 0, len(names))
	for _, name := range names {
		blockProps = append(blockProps, d.blockProps[name])
	}
	for i, p := range blockProps {
		p.i = i + 1
	}

	var points []*Point
	for _, p := range d.sortedPoints() {
		if livePoint[p] {
			points = append(points, p)
		}
	}
	for i, p := range points {
		p.i = i
	}

	holes := d.Holes()
	labels := d.Labels()

	// bufio keeps the first write error and reports it at Flush.
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, headerTemplate,
		strconv.FormatFloat(opts.Precision, 'e', 1, 64),
		floatString(opts.Frequency),
		floatString(opts.MinAngle),
		floatString(opts.Depth),
		opts.Comment)

	fmt.Fprintf(bw, "[BdryProps] = %d\n", len(boundaries))
	for _, b := range boundaries {
		fmt.Fprintf(bw, boundaryTemplate, b.Name, b.Type)
	}

	fmt.Fprintf(bw, "[BlockProps] = %d\n", len(blockProps))
	for _, p := range blockProps {
		c := floatString(p.Conductivity)
		fmt.Fprintf(bw, blockPropTemplate, p.Name, c, c)
	}

	fmt.Fprintf(bw, "[ConductorProps] = %d\n", len(conductors))
	for _, c := range conductors {
		value := floatString(c.Value)
		if c.Type == Current {
			fmt.Fprintf(bw, conductorTemplate, c.Name, "0", value, c.Type)
		} else {
			fmt.Fprintf(bw, conductorTemplate, c.Name, value, "0", c.Type)
		}
	}

	fmt.Fprintf(bw, "[NumPoints] = %d\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%s\t%s\t0\t0\t0\n", floatString(p.X), floatString(p.Y))
	}

	fmt.Fprintf(bw, "[NumSegments] = %d\n", len(segments))
	for _, s := range segments {
		var bdry, cond int
		if s.boundary != nil {
			bdry = s.boundary.i
		}
		if s.conductor != nil {
			cond = s.conductor.i
		}
		fmt.Fprintf(bw, "%d\t%d\t%s\t%d\t0\t0\t%d\n", s.P0.i, s.P1.i, floatString(s.MeshSize), bdry, cond)
	}

	fmt.Fprintf(bw, "[NumArcSegments] = 0\n")

	fmt.Fprintf(bw, "[NumHoles] = %d\n", len(holes))
	for _, h := range holes {
		fmt.Fprintf(bw, "%s\t%s\t0\n", floatString(h.X), floatString(h.Y))
	}

	fmt.Fprintf(bw, "[NumBlockLabels] = %d\n", len(labels))
	for _, l := range labels {
		fmt.Fprintf(bw, "%s\t%s\t%d\t-1\t0\t0\n", floatString(l.X), floatString(l.Y), l.Prop.i)
	}

	return bw.Flush()
}

// floatString renders f in fixed notation with trailing zeros removed.
func floatString(f float64) string {
	s := strconv.FormatFloat(f, 'f', 12, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
