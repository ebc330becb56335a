// Package diagram loads the two fixed horse diagrams the canvas is
// drawn over.
package diagram

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
)

// Side selects one of the two body views.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide maps "left"/"right" to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown diagram side %q", s)
}

// Sides lists both views in display order.
func Sides() [2]Side { return [2]Side{Left, Right} }

// FileName is the fixed background file for one side.
func (s Side) FileName() string { return "horse_" + s.String() + ".png" }

// Set holds both backgrounds, normalized to RGBA for compositing, plus
// the original encoded bytes for serving to the editor page.
type Set struct {
	images  [2]*image.RGBA
	encoded [2][]byte
}

// Load reads horse_left.png and horse_right.png from dir. A missing or
// undecodable file is an error; callers treat it as fatal.
func Load(dir string) (*Set, error) {
	var s Set
	for _, side := range Sides() {
		name := filepath.Join(dir, side.FileName())
		buf, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("background diagram: %w", err)
		}
		src, err := png.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("background diagram %s: %w", name, err)
		}
		img := image.NewRGBA(src.Bounds())
		draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
		s.images[side] = img
		s.encoded[side] = buf
	}
	return &s, nil
}

// Image returns the normalized background for one side.
func (s *Set) Image(side Side) *image.RGBA { return s.images[side] }

// PNG returns the original encoded file for one side.
func (s *Set) PNG(side Side) []byte { return s.encoded[side] }

// Size returns the pixel dimensions of one side's background.
func (s *Set) Size(side Side) (w, h int) {
	b := s.images[side].Bounds()
	return b.Dx(), b.Dy()
}
