// seehuhn.de/go/pdfview - render PDF operator lists and edit annotations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview/graphics"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func rectPath(s *Surface, x0, y0, x1, y1 float64) {
	s.BeginPath()
	s.MoveTo(x0, y0)
	s.LineTo(x1, y0)
	s.LineTo(x1, y1)
	s.LineTo(x0, y1)
	s.ClosePath()
}

func pixel(s *Surface, x, y int) color.RGBA {
	return s.Image().RGBAAt(x, y)
}

func TestSurface_Fill(t *testing.T) {
	s := New(10, 10, Options{})
	s.SetFillColor(red)
	rectPath(s, 2, 2, 8, 8)
	s.Fill(false)

	if got := pixel(s, 5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside: got %v", got)
	}
	if got := pixel(s, 0, 0); got != (color.RGBA{}) {
		t.Errorf("outside: got %v", got)
	}
}

func TestSurface_EvenOdd(t *testing.T) {
	s := New(20, 20, Options{})
	s.SetFillColor(red)
	rectPath(s, 0, 0, 20, 20)
	s.MoveTo(5, 5)
	s.LineTo(15, 5)
	s.LineTo(15, 15)
	s.LineTo(5, 15)
	s.ClosePath()
	s.Fill(true)

	if pixel(s, 10, 10).A != 0 {
		t.Error("hole was filled")
	}
	if pixel(s, 2, 2).A != 255 {
		t.Error("outer ring not filled")
	}
}

func TestSurface_Background(t *testing.T) {
	s := New(4, 4, Options{Background: white})
	if got := pixel(s, 3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("got %v", got)
	}
}

func TestSurface_ClipRestore(t *testing.T) {
	s := New(10, 10, Options{})
	s.SetFillColor(red)

	s.Save()
	rectPath(s, 0, 0, 5, 10)
	s.Clip(false)
	rectPath(s, 0, 0, 10, 10)
	s.Fill(false)
	if pixel(s, 7, 5).A != 0 {
		t.Error("fill outside the clipping path")
	}
	if pixel(s, 2, 5).A != 255 {
		t.Error("fill inside the clipping path missing")
	}
	s.Restore()
	s.Restore() // ignored

	s.SetFillColor(blue)
	s.Fill(false)
	if got := pixel(s, 7, 5); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("clip not removed by Restore: %v", got)
	}
}

func TestSurface_NestedClip(t *testing.T) {
	s := New(10, 10, Options{})
	rectPath(s, 0, 0, 6, 10)
	s.Clip(false)
	rectPath(s, 4, 0, 10, 10)
	s.Clip(false)
	rectPath(s, 0, 0, 10, 10)
	s.Fill(false)

	for x, want := range []uint8{0, 0, 0, 0, 255, 255, 0, 0, 0, 0} {
		if got := pixel(s, x, 5).A; got != want {
			t.Errorf("x=%d: alpha %d, want %d", x, got, want)
		}
	}
}

func TestSurface_Transform(t *testing.T) {
	s := New(10, 10, Options{})
	s.SetTransform(matrix.Scale(2, 2))
	rectPath(s, 1, 1, 2, 2)
	s.Fill(false)

	if pixel(s, 3, 3).A != 255 {
		t.Error("transformed rectangle missing")
	}
	if pixel(s, 5, 5).A != 0 || pixel(s, 1, 1).A != 0 {
		t.Error("transformed rectangle too large")
	}
}

func TestSurface_GlobalAlpha(t *testing.T) {
	s := New(4, 4, Options{})
	s.SetGlobalAlpha(0.5)
	rectPath(s, 0, 0, 4, 4)
	s.Fill(false)
	if a := pixel(s, 2, 2).A; a < 126 || a > 129 {
		t.Errorf("alpha %d, want about 128", a)
	}
}

func TestSurface_Stroke(t *testing.T) {
	s := New(20, 20, Options{})
	s.SetStrokeColor(black)
	s.SetLineWidth(4)
	s.BeginPath()
	s.MoveTo(0, 10)
	s.LineTo(20, 10)
	s.Stroke()

	if pixel(s, 10, 10).A != 255 || pixel(s, 10, 9).A != 255 {
		t.Error("line missing")
	}
	if pixel(s, 10, 2).A != 0 {
		t.Error("line too wide")
	}
}

func TestSurface_DrawImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, blue)
		}
	}

	s := New(20, 20, Options{})
	s.DrawImage(src, matrix.Scale(5, 5))
	if got := pixel(s, 5, 5); got.B < 250 || got.A < 250 {
		t.Errorf("inside: got %v", got)
	}
	if got := pixel(s, 15, 15); got.A != 0 {
		t.Errorf("outside: got %v", got)
	}

	// a singular matrix draws nothing
	s.DrawImage(src, matrix.Scale(0, 5))
}

func TestSurface_FillText(t *testing.T) {
	s := New(40, 40, Options{})
	face := s.DefaultFace(24)
	if face != s.DefaultFace(24.2) {
		t.Error("faces are not cached")
	}

	// face space has the y-axis pointing up, device space down
	s.FillText("H", face, matrix.Matrix{1, 0, 0, -1, 5, 30})

	inked := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if pixel(s, x, y).A > 0 {
				inked++
				if y > 31 {
					t.Fatalf("ink below the baseline at (%d, %d)", x, y)
				}
			}
		}
	}
	if inked == 0 {
		t.Error("no glyph drawn")
	}
}

func TestSurface_Clear(t *testing.T) {
	s := New(4, 4, Options{Background: white})
	s.Save()
	rectPath(s, 0, 0, 1, 1)
	s.Clip(false)
	s.Clear(image.Rect(2, 2, 10, 10))
	if pixel(s, 3, 3).A != 0 {
		t.Error("not cleared")
	}
	if pixel(s, 1, 1).A != 255 {
		t.Error("cleared too much")
	}
}

func TestSurface_EncodePNG(t *testing.T) {
	s := New(3, 2, Options{Background: red})
	buf := &bytes.Buffer{}
	if err := s.EncodePNG(buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(image.Rect(0, 0, 3, 2), img.Bounds()); d != "" {
		t.Errorf("bounds (-want +got):\n%s", d)
	}
}

func TestCompositor_Compose(t *testing.T) {
	type testCase struct {
		name     string
		subtype  graphics.SMaskSubtype
		backdrop color.NRGBA
		mask     func(*Surface)
		want     [2]uint8 // alpha at x=1 and x=3
	}
	cases := []testCase{
		{
			name:    "alpha",
			subtype: graphics.SMaskAlpha,
			mask: func(m *Surface) {
				rectPath(m, 0, 0, 2, 4)
				m.Fill(false)
			},
			want: [2]uint8{255, 0},
		},
		{
			name:     "luminosity",
			subtype:  graphics.SMaskLuminosity,
			backdrop: black,
			mask: func(m *Surface) {
				m.SetFillColor(white)
				rectPath(m, 0, 0, 2, 4)
				m.Fill(false)
			},
			want: [2]uint8{255, 0},
		},
		{
			name:     "luminosity backdrop",
			subtype:  graphics.SMaskLuminosity,
			backdrop: white,
			mask: func(m *Surface) {
				m.SetFillColor(black)
				rectPath(m, 0, 0, 2, 4)
				m.Fill(false)
			},
			want: [2]uint8{0, 255},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dst := New(4, 4, Options{})
			src := New(4, 4, Options{Background: red})
			mask := New(4, 4, Options{})
			c.mask(mask)

			Compositor{}.Compose(dst, src, mask, c.subtype, c.backdrop, image.Rect(0, 0, 4, 4))
			got := [2]uint8{pixel(dst, 1, 1).A, pixel(dst, 3, 1).A}
			if got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestCompositor_ComposeDirty(t *testing.T) {
	dst := New(4, 4, Options{})
	src := New(4, 4, Options{Background: red})
	mask := New(4, 4, Options{Background: white})

	Compositor{}.Compose(dst, src, mask, graphics.SMaskAlpha, black, image.Rect(0, 0, 2, 2))
	if pixel(dst, 1, 1).A != 255 {
		t.Error("dirty region not composited")
	}
	if pixel(dst, 3, 3).A != 0 {
		t.Error("pixels outside the dirty region changed")
	}
}

func TestCompositor_Paint(t *testing.T) {
	dst := New(4, 4, Options{})
	src := New(4, 4, Options{Background: red})

	dst.Save()
	rectPath(dst, 0, 0, 2, 4)
	dst.Clip(false)
	Compositor{}.Paint(dst, src, 0.5)

	if a := pixel(dst, 1, 1).A; a < 126 || a > 129 {
		t.Errorf("alpha %d, want about 128", a)
	}
	if a := pixel(dst, 3, 1).A; a != 0 {
		t.Errorf("painted outside the clip region: alpha %d", a)
	}
}

func TestFactory(t *testing.T) {
	var f graphics.SurfaceFactory = Factory{}
	s := f.NewScratch(5, 7)
	if w, h := s.Size(); w != 5 || h != 7 {
		t.Errorf("size %dx%d", w, h)
	}
	if s.Image().RGBAAt(0, 0).A != 0 {
		t.Error("scratch surface is not transparent")
	}
}
