// Package raster composites decoded strokes onto a background diagram,
// by wrapping rasterx.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/equimark/internal/canvas"
)

// Report collects the per-stroke outcome of one Annotate call.
type Report struct {
	Drawn   int              // strokes painted onto the diagram
	Skipped []canvas.Skipped // strokes dropped during decoding, with reasons
}

type renderer struct {
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
}

func newRenderer(width, height int, img *image.RGBA) *renderer {
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &renderer{scanner: scanner, dasher: rasterx.NewDasher(width, height, scanner)}
}

// fToFixed converts a pixel coordinate to the rasterizer's 26.6 format.
func fToFixed(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }

func toFixedP(p canvas.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: fToFixed(p.X), Y: fToFixed(p.Y)}
}

// strokePolyline draws connected straight segments through pts in order.
// Vertices outside the image bounds are fed through unchanged; the
// scanner clips them.
func (rd *renderer) strokePolyline(pts []canvas.Point, c color.RGBA, width int) {
	rd.scanner.SetColor(c)
	rd.dasher.SetStroke(
		fToFixed(float64(width)), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round,
		nil, 0,
	)
	rd.dasher.Start(toFixedP(pts[0]))
	for _, p := range pts[1:] {
		rd.dasher.Line(toFixedP(p))
	}
	rd.dasher.Stop(false)
	rd.dasher.Draw()
	rd.dasher.Clear()
}

// Annotate draws every stroke of the payload onto a copy of bg, in
// payload order, and reports the per-stroke outcome. The source image
// is never written to. An empty payload returns the background copied
// to RGBA, pixel for pixel.
func Annotate(bg image.Image, p canvas.Payload) (*image.RGBA, Report) {
	img := image.NewRGBA(bg.Bounds())
	draw.Draw(img, img.Bounds(), bg, bg.Bounds().Min, draw.Src)

	rep := Report{Skipped: p.Skipped}
	if p.Empty() {
		return img, rep
	}
	b := img.Bounds()
	rd := newRenderer(b.Dx(), b.Dy(), img)
	for _, st := range p.Strokes {
		pts := st.Path.Vertices()
		if len(pts) < 2 {
			continue
		}
		rd.strokePolyline(pts, st.Color, st.Width)
		rep.Drawn++
	}
	return img, rep
}

// EncodePNG returns the image as an encoded PNG file.
func EncodePNG(m image.Image) ([]byte, error) {
	var b bytes.Buffer
	if err := png.Encode(&b, m); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
