// Package canvas decodes the drawing widget's JSON export into typed
// strokes ready for rasterization.
//
// The widget serializes each pen gesture as a "path" element carrying a
// stroke color, a stroke width and a segment list. Decode resolves the
// style of each stroke, compiles its segments, and records malformed
// strokes instead of failing the whole payload.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
)

// Stroke is one pen gesture: a segment path drawn with one color and
// one width. Color and width are already resolved, defaults applied.
type Stroke struct {
	Color color.RGBA
	Width int
	Path  Path
}

// Skipped records one stroke dropped during decoding.
type Skipped struct {
	Index  int // position in the payload's element list
	Reason string
}

// Payload is the full set of strokes drawn on one diagram side, in
// insertion order, plus the elements that could not be decoded.
// Strokes do not interact with each other.
type Payload struct {
	Strokes []Stroke
	Skipped []Skipped
}

// Empty reports whether the payload contains nothing to draw.
func (p Payload) Empty() bool { return len(p.Strokes) == 0 }

type rawElement struct {
	Type        string          `json:"type"`
	Stroke      json.RawMessage `json:"stroke"`
	StrokeWidth json.RawMessage `json:"strokeWidth"`
	Path        json.RawMessage `json:"path"`
}

// Decode interprets a canvas export. Only elements of type "path" are
// drawable; other element types are ignored. An element that cannot be
// decoded is recorded in Payload.Skipped and does not abort the decode,
// and style values of the wrong type fall back to their defaults. Empty
// input and JSON null decode to an empty payload.
func Decode(data []byte) (Payload, error) {
	var out Payload
	if len(data) == 0 {
		return out, nil
	}
	var raw struct {
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return out, fmt.Errorf("invalid canvas payload: %w", err)
	}
	for i, src := range raw.Objects {
		var el rawElement
		if err := json.Unmarshal(src, &el); err != nil {
			out.Skipped = append(out.Skipped, Skipped{Index: i,
				Reason: fmt.Sprintf("unreadable element: %s", err)})
			continue
		}
		if el.Type != "path" {
			continue
		}
		path, err := compilePath(el.Path)
		if err != nil {
			out.Skipped = append(out.Skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		out.Strokes = append(out.Strokes, Stroke{
			Color: resolveColor(el.Stroke),
			Width: resolveWidth(el.StrokeWidth),
			Path:  path,
		})
	}
	return out, nil
}

// resolveWidth parses the declared stroke width, truncating fractional
// values, and defaults when the value is absent, malformed or
// non-positive.
func resolveWidth(raw json.RawMessage) int {
	if len(raw) == 0 {
		return defaultWidth
	}
	var w float64
	if err := json.Unmarshal(raw, &w); err != nil {
		return defaultWidth
	}
	if int(w) <= 0 {
		return defaultWidth
	}
	return int(w)
}

// arity of each known command, beyond the opcode itself.
var segmentArity = map[string]int{"M": 2, "L": 2, "Q": 4}

// compilePath builds the typed segment list of one stroke. Any defect
// makes the whole stroke malformed. JSON null counts as missing.
func compilePath(raw json.RawMessage) (Path, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("missing path")
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw, &segments); err != nil {
		return nil, fmt.Errorf("path is not a segment list: %w", err)
	}
	path := make(Path, 0, len(segments))
	for i, seg := range segments {
		if len(seg) == 0 {
			return nil, fmt.Errorf("segment %d is empty", i)
		}
		var op string
		if err := json.Unmarshal(seg[0], &op); err != nil {
			return nil, fmt.Errorf("segment %d has no command letter", i)
		}
		arity, known := segmentArity[op]
		if !known {
			return nil, fmt.Errorf("segment %d: unknown command %q", i, op)
		}
		if len(seg)-1 != arity {
			return nil, fmt.Errorf("segment %d: command %s wants %d coordinates, got %d",
				i, op, arity, len(seg)-1)
		}
		coords := make([]float64, arity)
		for j, r := range seg[1:] {
			if err := json.Unmarshal(r, &coords[j]); err != nil {
				return nil, fmt.Errorf("segment %d: coordinate %d is not a number", i, j)
			}
		}
		switch op {
		case "M":
			path = append(path, MoveTo{coords[0], coords[1]})
		case "L":
			path = append(path, LineTo{coords[0], coords[1]})
		case "Q":
			path = append(path, QuadTo{{coords[0], coords[1]}, {coords[2], coords[3]}})
		}
	}
	return path, nil
}
