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
	"image"
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview/graphics"
)

// Options configures a [Surface].
type Options struct {
	// Background is used to fill a new surface.  The default is fully
	// transparent.
	Background color.NRGBA

	// FallbackFont is a TrueType font used by DefaultFace.  If this is
	// nil, the Go Regular font is used.
	FallbackFont []byte
}

type segOp uint8

const (
	segMove segOp = iota
	segLine
	segCurve
	segClose
)

// segment is a path segment in device coordinates.
type segment struct {
	op  segOp
	pts [6]float64
}

type drawState struct {
	ctm         matrix.Matrix
	fill        color.NRGBA
	stroke      color.NRGBA
	lineWidth   float64
	lineCap     graphics.LineCap
	lineJoin    graphics.LineJoin
	miterLimit  float64
	dash        []float64
	dashPhase   float64
	globalAlpha float64

	// clip is the clipping region, or nil if nothing is clipped.
	clip *image.Alpha
}

// Surface is a raster drawing surface.
type Surface struct {
	img  *image.RGBA
	dc   *gg.Context
	opts Options

	cur   drawState
	stack []drawState
	path  []segment

	faces *faceCache
}

var _ graphics.Surface = (*Surface)(nil)

// New allocates a new surface of the given size in pixels.
func New(w, h int, opts Options) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background.A != 0 {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	return &Surface{
		img:  img,
		dc:   gg.NewContextForRGBA(img),
		opts: opts,
		cur: drawState{
			ctm:         matrix.Identity,
			fill:        color.NRGBA{A: 255},
			stroke:      color.NRGBA{A: 255},
			lineWidth:   1,
			miterLimit:  10,
			globalAlpha: 1,
		},
		faces: newFaceCache(opts.FallbackFont),
	}
}

// Save implements the [graphics.Surface] interface.
func (s *Surface) Save() {
	saved := s.cur
	saved.dash = slices.Clone(s.cur.dash)
	s.stack = append(s.stack, saved)
}

// Restore implements the [graphics.Surface] interface.
// Calls without a matching Save are ignored.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.cur = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// SetTransform implements the [graphics.Surface] interface.
func (s *Surface) SetTransform(m matrix.Matrix) {
	s.cur.ctm = m
}

// BeginPath implements the [graphics.Surface] interface.
func (s *Surface) BeginPath() {
	s.path = s.path[:0]
}

// MoveTo implements the [graphics.Surface] interface.
func (s *Surface) MoveTo(x, y float64) {
	x, y = s.cur.ctm.Apply(x, y)
	s.path = append(s.path, segment{op: segMove, pts: [6]float64{x, y}})
}

// LineTo implements the [graphics.Surface] interface.
func (s *Surface) LineTo(x, y float64) {
	x, y = s.cur.ctm.Apply(x, y)
	s.path = append(s.path, segment{op: segLine, pts: [6]float64{x, y}})
}

// CurveTo implements the [graphics.Surface] interface.
func (s *Surface) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	m := s.cur.ctm
	x1, y1 = m.Apply(x1, y1)
	x2, y2 = m.Apply(x2, y2)
	x3, y3 = m.Apply(x3, y3)
	s.path = append(s.path, segment{op: segCurve, pts: [6]float64{x1, y1, x2, y2, x3, y3}})
}

// ClosePath implements the [graphics.Surface] interface.
func (s *Surface) ClosePath() {
	s.path = append(s.path, segment{op: segClose})
}

// replay copies the current path into dc.
func (s *Surface) replay(dc *gg.Context, evenOdd bool) {
	dc.ClearPath()
	for _, seg := range s.path {
		p := seg.pts
		switch seg.op {
		case segMove:
			dc.MoveTo(p[0], p[1])
		case segLine:
			dc.LineTo(p[0], p[1])
		case segCurve:
			dc.CubicTo(p[0], p[1], p[2], p[3], p[4], p[5])
		case segClose:
			dc.ClosePath()
		}
	}
	if evenOdd {
		dc.SetFillRuleEvenOdd()
	} else {
		dc.SetFillRuleWinding()
	}
}

func (s *Surface) applyClip() {
	if s.cur.clip != nil {
		// the mask always has the size of the surface
		_ = s.dc.SetMask(s.cur.clip)
	} else {
		s.dc.ResetClip()
	}
}

// Fill implements the [graphics.Surface] interface.
func (s *Surface) Fill(evenOdd bool) {
	if len(s.path) == 0 {
		return
	}
	s.replay(s.dc, evenOdd)
	s.dc.SetFillStyle(gg.NewSolidPattern(s.withAlpha(s.cur.fill)))
	s.applyClip()
	s.dc.FillPreserve()
	s.dc.ClearPath()
}

// Stroke implements the [graphics.Surface] interface.
//
// The line width and the dash pattern are scaled by the mean scaling
// factor of the transformation.  Lines are at least one pixel wide.
// Miter joins are drawn as bevel joins.
func (s *Surface) Stroke() {
	if len(s.path) == 0 {
		return
	}
	scale := math.Sqrt(math.Abs(det(s.cur.ctm)))

	s.replay(s.dc, false)
	s.dc.SetStrokeStyle(gg.NewSolidPattern(s.withAlpha(s.cur.stroke)))
	s.dc.SetLineWidth(max(s.cur.lineWidth*scale, 1))
	switch s.cur.lineCap {
	case graphics.LineCapRound:
		s.dc.SetLineCapRound()
	case graphics.LineCapSquare:
		s.dc.SetLineCapSquare()
	default:
		s.dc.SetLineCapButt()
	}
	if s.cur.lineJoin == graphics.LineJoinRound {
		s.dc.SetLineJoinRound()
	} else {
		s.dc.SetLineJoinBevel()
	}
	if len(s.cur.dash) > 0 {
		dash := make([]float64, len(s.cur.dash))
		for i, d := range s.cur.dash {
			dash[i] = d * scale
		}
		s.dc.SetDash(dash...)
		s.dc.SetDashOffset(s.cur.dashPhase * scale)
	} else {
		s.dc.SetDash()
	}
	s.applyClip()
	s.dc.StrokePreserve()
	s.dc.ClearPath()
}

// Clip implements the [graphics.Surface] interface.
func (s *Surface) Clip(evenOdd bool) {
	w, h := s.Size()
	mc := gg.NewContext(w, h)
	s.replay(mc, evenOdd)
	mc.SetColor(color.White)
	mc.Fill()
	mask := mc.AsMask()

	if old := s.cur.clip; old != nil {
		for i, a := range mask.Pix {
			mask.Pix[i] = uint8(uint32(a) * uint32(old.Pix[i]) / 255)
		}
	}
	s.cur.clip = mask
}

// SetFillColor implements the [graphics.Surface] interface.
func (s *Surface) SetFillColor(c color.NRGBA) { s.cur.fill = c }

// SetStrokeColor implements the [graphics.Surface] interface.
func (s *Surface) SetStrokeColor(c color.NRGBA) { s.cur.stroke = c }

// SetLineWidth implements the [graphics.Surface] interface.
func (s *Surface) SetLineWidth(w float64) { s.cur.lineWidth = w }

// SetLineCap implements the [graphics.Surface] interface.
func (s *Surface) SetLineCap(lineCap graphics.LineCap) { s.cur.lineCap = lineCap }

// SetLineJoin implements the [graphics.Surface] interface.
func (s *Surface) SetLineJoin(join graphics.LineJoin) { s.cur.lineJoin = join }

// SetMiterLimit implements the [graphics.Surface] interface.
func (s *Surface) SetMiterLimit(limit float64) { s.cur.miterLimit = limit }

// SetDash implements the [graphics.Surface] interface.
func (s *Surface) SetDash(pattern []float64, phase float64) {
	s.cur.dash = slices.Clone(pattern)
	s.cur.dashPhase = phase
}

// SetGlobalAlpha implements the [graphics.Surface] interface.
func (s *Surface) SetGlobalAlpha(alpha float64) {
	s.cur.globalAlpha = min(max(alpha, 0), 1)
}

func (s *Surface) withAlpha(c color.NRGBA) color.NRGBA {
	c.A = uint8(float64(c.A)*s.cur.globalAlpha + 0.5)
	return c
}

// drawOptions returns the options which apply the clipping region and the
// global alpha to a draw.Transformer call.
func (s *Surface) drawOptions() *draw.Options {
	opts := &draw.Options{}
	if s.cur.clip != nil {
		opts.DstMask = s.cur.clip
	}
	if s.cur.globalAlpha < 1 {
		opts.SrcMask = image.NewUniform(color.Alpha{A: uint8(s.cur.globalAlpha*255 + 0.5)})
	}
	return opts
}

// det returns the determinant of the linear part of m.
func det(m matrix.Matrix) float64 {
	return m[0]*m[3] - m[1]*m[2]
}

func toAff3(m matrix.Matrix) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// DrawImage implements the [graphics.Surface] interface.
func (s *Surface) DrawImage(img image.Image, m matrix.Matrix) {
	if det(m) == 0 {
		return
	}
	draw.BiLinear.Transform(s.img, toAff3(m), img, img.Bounds(), draw.Over, s.drawOptions())
}

// FillText implements the [graphics.Surface] interface.
func (s *Surface) FillText(str string, face font.Face, m matrix.Matrix) {
	if det(m) == 0 {
		return
	}
	src := image.NewUniform(s.withAlpha(s.cur.fill))
	flip := matrix.Matrix{1, 0, 0, -1, 0, 0}.Mul(m)

	var dot fixed.Point26_6
	prev := rune(-1)
	for _, r := range str {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		if !dr.Empty() {
			g := matrix.Translate(float64(dr.Min.X), float64(dr.Min.Y)).Mul(flip)
			opts := &draw.Options{SrcMask: mask, SrcMaskP: maskp}
			if s.cur.clip != nil {
				opts.DstMask = s.cur.clip
			}
			draw.BiLinear.Transform(s.img, toAff3(g), src, dr.Sub(dr.Min), draw.Over, opts)
		}
		dot.X += advance
		prev = r
	}
}

// DefaultFace implements the [graphics.Surface] interface.
func (s *Surface) DefaultFace(size float64) font.Face {
	return s.faces.get(size)
}

// Clear implements the [graphics.Surface] interface.
func (s *Surface) Clear(r image.Rectangle) {
	r = r.Intersect(s.img.Bounds())
	draw.Draw(s.img, r, image.Transparent, image.Point{}, draw.Src)
}

// Size implements the [graphics.Surface] interface.
func (s *Surface) Size() (w, h int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image implements the [graphics.Surface] interface.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// EncodePNG writes the contents of the surface as a PNG image.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// Factory allocates off-screen surfaces.
type Factory struct {
	// FallbackFont is passed on to the new surfaces.
	FallbackFont []byte
}

// NewScratch implements the [graphics.SurfaceFactory] interface.
// The new surface is fully transparent.
func (f Factory) NewScratch(w, h int) graphics.Surface {
	return New(w, h, Options{FallbackFont: f.FallbackFont})
}
