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
	"image"
	"image/color"

	"golang.org/x/image/font"

	"seehuhn.de/go/geom/matrix"
)

// LineCap describes the shape at the end of open stroked paths.
type LineCap uint8

// These are the possible line cap styles.
const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin describes the shape at the corners of stroked paths.
type LineJoin uint8

// These are the possible line join styles.
const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Surface is a 2D drawing context.
//
// Path coordinates are transformed by the matrix set using SetTransform at
// the time they are added to the path.  Painting and clipping do not
// consume the path; it is cleared by BeginPath.
//
// Save and Restore maintain a stack of drawing state, including the
// transformation, the clipping region and all style settings.  Restore on
// an empty stack does nothing.
type Surface interface {
	Save()
	Restore()
	SetTransform(m matrix.Matrix)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()

	Fill(evenOdd bool)
	Stroke()
	Clip(evenOdd bool)

	SetFillColor(c color.NRGBA)
	SetStrokeColor(c color.NRGBA)
	SetLineWidth(w float64)
	SetLineCap(cap LineCap)
	SetLineJoin(join LineJoin)
	SetMiterLimit(limit float64)
	SetDash(pattern []float64, phase float64)
	SetGlobalAlpha(alpha float64)

	// DrawImage draws img.  The matrix m maps image pixel coordinates
	// (with the y-axis pointing down) to device space.
	DrawImage(img image.Image, m matrix.Matrix)

	// FillText draws s using the fill colour.  The matrix m maps the
	// coordinate system of the face, with the origin on the baseline and
	// the y-axis pointing up, to device space.
	FillText(s string, face font.Face, m matrix.Matrix)

	// DefaultFace returns a built-in face with the given size in pixels.
	// This is used when a font cannot be loaded.
	DefaultFace(size float64) font.Face

	// Clear makes the given device space rectangle fully transparent,
	// ignoring the clipping region.
	Clear(r image.Rectangle)

	Size() (w, h int)
	Image() *image.RGBA
}

// SurfaceFactory allocates off-screen surfaces.
type SurfaceFactory interface {
	NewScratch(w, h int) Surface
}

// SMaskSubtype selects how a soft mask is derived from the mask surface.
type SMaskSubtype uint8

// These are the possible soft mask subtypes.
const (
	SMaskLuminosity SMaskSubtype = iota
	SMaskAlpha
)

func (s SMaskSubtype) String() string {
	if s == SMaskAlpha {
		return "Alpha"
	}
	return "Luminosity"
}

// Compositor combines surfaces.
type Compositor interface {
	// Compose draws src onto dst, using the mask derived from the mask
	// surface.  For luminosity masks, the mask is first composited onto
	// the backdrop colour.  Only pixels inside dirty are changed.
	Compose(dst, src, mask Surface, subtype SMaskSubtype, backdrop color.NRGBA, dirty image.Rectangle)

	// Paint draws src onto dst, with the given constant opacity.
	Paint(dst, src Surface, alpha float64)
}
