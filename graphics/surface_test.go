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

package graphics

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"seehuhn.de/go/geom/matrix"
)

// recSurface is a Surface which records the calls made to it.
type recSurface struct {
	name  string
	w, h  int
	log   []string
	depth int
	ctm   matrix.Matrix
	img   *image.RGBA
}

func newRecSurface(name string, w, h int) *recSurface {
	return &recSurface{
		name: name,
		w:    w,
		h:    h,
		ctm:  matrix.Identity,
		img:  image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

func (s *recSurface) record(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

func (s *recSurface) count(entry string) int {
	n := 0
	for _, e := range s.log {
		if e == entry {
			n++
		}
	}
	return n
}

func (s *recSurface) Save() {
	s.depth++
	s.record("save")
}

func (s *recSurface) Restore() {
	if s.depth == 0 {
		return
	}
	s.depth--
	s.record("restore")
}

func (s *recSurface) SetTransform(m matrix.Matrix) {
	s.ctm = m
	s.record("transform %v", [6]float64(m))
}

func (s *recSurface) BeginPath()          { s.record("beginPath") }
func (s *recSurface) MoveTo(x, y float64) { s.record("moveTo %g %g", x, y) }
func (s *recSurface) LineTo(x, y float64) { s.record("lineTo %g %g", x, y) }
func (s *recSurface) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	s.record("curveTo %g %g %g %g %g %g", x1, y1, x2, y2, x3, y3)
}
func (s *recSurface) ClosePath() { s.record("closePath") }

func (s *recSurface) Fill(evenOdd bool) { s.record("fill %t", evenOdd) }
func (s *recSurface) Stroke()           { s.record("stroke") }
func (s *recSurface) Clip(evenOdd bool) { s.record("clip %t", evenOdd) }

func (s *recSurface) SetFillColor(c color.NRGBA)           { s.record("fillColor %v", c) }
func (s *recSurface) SetStrokeColor(c color.NRGBA)         { s.record("strokeColor %v", c) }
func (s *recSurface) SetLineWidth(w float64)               {}
func (s *recSurface) SetLineCap(LineCap)                   {}
func (s *recSurface) SetLineJoin(LineJoin)                 {}
func (s *recSurface) SetMiterLimit(float64)                {}
func (s *recSurface) SetDash(pattern []float64, _ float64) {}
func (s *recSurface) SetGlobalAlpha(float64)               {}

func (s *recSurface) DrawImage(img image.Image, m matrix.Matrix) {
	s.record("drawImage %v", img.Bounds())
}

func (s *recSurface) FillText(str string, face font.Face, m matrix.Matrix) {
	s.record("fillText %q", str)
}

func (s *recSurface) DefaultFace(float64) font.Face { return basicfont.Face7x13 }

func (s *recSurface) Clear(r image.Rectangle) { s.record("clear %v", r) }

func (s *recSurface) Size() (int, int)   { return s.w, s.h }
func (s *recSurface) Image() *image.RGBA { return s.img }

type recFactory struct {
	made []*recSurface
}

func (f *recFactory) NewScratch(w, h int) Surface {
	s := newRecSurface(fmt.Sprintf("scratch%d", len(f.made)), w, h)
	f.made = append(f.made, s)
	return s
}

type recCompositor struct {
	log []string
}

func (c *recCompositor) Compose(dst, src, mask Surface, subtype SMaskSubtype, backdrop color.NRGBA, dirty image.Rectangle) {
	c.log = append(c.log, fmt.Sprintf("compose %s<-%s mask=%s %s %v",
		dst.(*recSurface).name, src.(*recSurface).name, mask.(*recSurface).name, subtype, dirty))
}

func (c *recCompositor) Paint(dst, src Surface, alpha float64) {
	c.log = append(c.log, fmt.Sprintf("paint %s<-%s %g",
		dst.(*recSurface).name, src.(*recSurface).name, alpha))
}
