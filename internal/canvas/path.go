package canvas

import (
	"fmt"
	"strings"
)

// This file defines the basic stroke path structure

// Point is a coordinate in diagram pixel space.
type Point struct {
	X, Y float64
}

// Segment groups the path commands a stroke may contain.
type Segment interface {
	// appendTo extends `pts` with the vertices this segment contributes
	// to the flattened polyline.
	appendTo(pts []Point) []Point
}

type MoveTo Point

type LineTo Point

// QuadTo holds the control point and the end point of a quadratic curve.
type QuadTo [2]Point

// starts the polyline at the given point.
func (op MoveTo) appendTo(pts []Point) []Point {
	return append(pts, Point(op))
}

// extends the polyline with a straight segment.
func (op LineTo) appendTo(pts []Point) []Point {
	return append(pts, Point(op))
}

// extends the polyline with the end point only: the control point is
// discarded, so the curve draws as its chord.
func (op QuadTo) appendTo(pts []Point) []Point {
	return append(pts, op[1])
}

// Path describes the segment sequence of one stroke, in drawing order.
type Path []Segment

// Vertices flattens the path into its polyline vertex list.
func (p Path) Vertices() []Point {
	pts := make([]Point, 0, len(p))
	for _, seg := range p {
		pts = seg.appendTo(pts)
	}
	return pts
}

// String returns a readable representation of the path.
func (p Path) String() string {
	chunks := make([]string, len(p))
	for i, seg := range p {
		switch seg := seg.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", seg.X, seg.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", seg.X, seg.Y)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", seg[0].X, seg[0].Y,
				seg[1].X, seg[1].Y)
		}
	}
	return strings.Join(chunks, " ")
}
