package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/benoitkugler/equimark/internal/canvas"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func whiteBackground(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func isRed(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R > 0xc0 && c.G < 0x40 && c.B < 0x40
}

func isWhite(img *image.RGBA, x, y int) bool {
	return img.RGBAAt(x, y) == color.RGBA{0xff, 0xff, 0xff, 0xff}
}

func TestAnnotatePolyline(t *testing.T) {
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: red, Width: 3,
		Path: canvas.Path{canvas.MoveTo{X: 10, Y: 10}, canvas.LineTo{X: 50, Y: 10}, canvas.LineTo{X: 50, Y: 50}},
	}}}
	img, rep := Annotate(whiteBackground(100, 100), p)
	if rep.Drawn != 1 {
		t.Fatalf("expected 1 drawn stroke, got %d", rep.Drawn)
	}

	// every vertex and segment midpoint carries the stroke
	for _, pt := range []image.Point{{10, 10}, {30, 10}, {50, 10}, {50, 30}, {50, 50}} {
		if !isRed(img, pt.X, pt.Y) {
			t.Errorf("pixel (%d,%d) should carry the stroke", pt.X, pt.Y)
		}
	}
	// the diagonal shortcut between first and last vertex stays clean
	if !isWhite(img, 30, 30) {
		t.Errorf("pixel (30,30) should stay background")
	}
}

func TestAnnotateQuadraticChord(t *testing.T) {
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: red, Width: 3,
		Path: canvas.Path{canvas.MoveTo{X: 10, Y: 50}, canvas.QuadTo{{X: 30, Y: 10}, {X: 50, Y: 50}}},
	}}}
	img, _ := Annotate(whiteBackground(100, 100), p)

	// the chord from (10,50) to (50,50) passes through (30,50)
	if !isRed(img, 30, 50) {
		t.Errorf("chord midpoint should carry the stroke")
	}
	// a true quadratic through control (30,10) would pass (30,30);
	// the chord rendering leaves it untouched
	if !isWhite(img, 30, 30) {
		t.Errorf("curve apex should stay background")
	}
}

func TestAnnotateUsesStrokeStyle(t *testing.T) {
	blue := color.RGBA{B: 0xff, A: 0xff}
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: blue, Width: 9,
		Path: canvas.Path{canvas.MoveTo{X: 10, Y: 30}, canvas.LineTo{X: 50, Y: 30}},
	}}}
	img, _ := Annotate(whiteBackground(60, 60), p)

	for _, dy := range []int{-3, 0, 3} {
		c := img.RGBAAt(30, 30+dy)
		if c.B < 0xc0 || c.R > 0x40 {
			t.Errorf("pixel (30,%d) should carry the blue stroke, got %v", 30+dy, c)
		}
	}
	if !isWhite(img, 30, 20) {
		t.Errorf("pixel above the stroke should stay background")
	}
}

func TestAnnotateEmptyPayload(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 33, 47))
	for y := 0; y < 47; y++ {
		for x := 0; x < 33; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: 0x30, A: uint8(255 - x)})
		}
	}
	img, rep := Annotate(src, canvas.Payload{})
	if rep.Drawn != 0 || len(rep.Skipped) != 0 {
		t.Fatalf("empty payload should report nothing, got %+v", rep)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("dimensions changed: %v != %v", img.Bounds(), src.Bounds())
	}
	want := image.NewRGBA(src.Bounds())
	draw.Draw(want, want.Bounds(), src, image.Point{}, draw.Src)
	if !bytes.Equal(img.Pix, want.Pix) {
		t.Errorf("empty payload must leave the background unchanged")
	}
}

func TestAnnotateLeavesSourceUntouched(t *testing.T) {
	bg := whiteBackground(60, 60)
	before := append([]uint8(nil), bg.Pix...)
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: red, Width: 5,
		Path: canvas.Path{canvas.MoveTo{X: 0, Y: 0}, canvas.LineTo{X: 59, Y: 59}},
	}}}
	Annotate(bg, p)
	if !bytes.Equal(before, bg.Pix) {
		t.Errorf("source image was mutated")
	}
}

func TestAnnotateSkipsMalformedStroke(t *testing.T) {
	src := `{"objects":[
		{"type":"path","stroke":"#ff0000","strokeWidth":3,"path":[["M",5,5],["L",55,5]]},
		{"type":"path","stroke":"#ff0000","path":[["Z",1,2]]},
		{"type":"path","stroke":"#ff0000","strokeWidth":3,"path":[["M",5,40],["L",55,40]]}
	]}`
	payload, err := canvas.Decode([]byte(src))
	if err != nil {
		t.Fatalf("can't decode payload: %s", err)
	}
	img, rep := Annotate(whiteBackground(60, 60), payload)
	if rep.Drawn != 2 {
		t.Fatalf("expected 2 drawn strokes, got %d", rep.Drawn)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].Index != 1 {
		t.Fatalf("expected element 1 to be skipped, got %v", rep.Skipped)
	}
	if !isRed(img, 30, 5) || !isRed(img, 30, 40) {
		t.Errorf("surviving strokes should both be drawn")
	}
}

func TestAnnotateSinglePointStroke(t *testing.T) {
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: red, Width: 3,
		Path: canvas.Path{canvas.MoveTo{X: 15, Y: 15}},
	}}}
	img, rep := Annotate(whiteBackground(30, 30), p)
	if rep.Drawn != 0 {
		t.Fatalf("a single vertex draws nothing, got %d drawn", rep.Drawn)
	}
	if !isWhite(img, 15, 15) {
		t.Errorf("background should stay untouched")
	}
}

func TestAnnotateOutOfRangeCoordinates(t *testing.T) {
	p := canvas.Payload{Strokes: []canvas.Stroke{{
		Color: red, Width: 3,
		Path: canvas.Path{canvas.MoveTo{X: -20, Y: 20}, canvas.LineTo{X: 60, Y: 20}},
	}}}
	img, rep := Annotate(whiteBackground(40, 40), p)
	if rep.Drawn != 1 {
		t.Fatalf("expected 1 drawn stroke, got %d", rep.Drawn)
	}
	// the visible crossing is painted, the rest clipped silently
	if !isRed(img, 0, 20) || !isRed(img, 39, 20) {
		t.Errorf("stroke should cross the full canvas width")
	}
	if !isWhite(img, 20, 35) {
		t.Errorf("pixel away from the stroke should stay background")
	}
}

func TestEncodePNG(t *testing.T) {
	img, _ := Annotate(whiteBackground(20, 20), canvas.Payload{})
	b, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("can't encode png: %s", err)
	}
	decoded, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("can't decode the encoded png: %s", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds changed through the encode round trip")
	}
}
