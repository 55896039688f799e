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
	"image/color"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// TextState holds the text parameters of the graphics state.
type TextState struct {
	Font     Font
	FontID   string
	FontSize float64

	CharSpacing float64
	WordSpacing float64

	// HScale is the horizontal scaling, as a fraction (1 for 100%).
	HScale float64

	Leading float64
	Mode    int
	Rise    float64

	// Tm is the text matrix, Tlm the text line matrix.
	Tm, Tlm matrix.Matrix
}

// SMask is a soft mask, rendered into an off-screen surface.
type SMask struct {
	Surface  Surface
	Subtype  SMaskSubtype
	Backdrop color.NRGBA
}

// State is one frame of the graphics state stack.
type State struct {
	CTM matrix.Matrix

	FillColor   color.NRGBA
	StrokeColor color.NRGBA
	FillAlpha   float64
	StrokeAlpha float64

	LineWidth  float64
	LineCap    LineCap
	LineJoin   LineJoin
	MiterLimit float64
	Dash       []float64
	DashPhase  float64

	Text TextState

	// ActiveSMask is the soft mask in effect, or nil.
	ActiveSMask *SMask

	// ClipBox is the bounding box of the clipping region, in device space.
	ClipBox rect.Rect

	// PathBox is the bounding box of the current path, in device space.
	// This includes the control points of Bézier curves.
	PathBox rect.Rect

	// Visible is false inside hidden optional content.
	Visible bool
}

// NewState returns the initial graphics state for a surface of the given
// size.
func NewState(w, h int) *State {
	return &State{
		CTM:         matrix.Identity,
		FillColor:   color.NRGBA{A: 255},
		StrokeColor: color.NRGBA{A: 255},
		FillAlpha:   1,
		StrokeAlpha: 1,
		LineWidth:   1,
		MiterLimit:  10,
		Text: TextState{
			HScale: 1,
			Tm:     matrix.Identity,
			Tlm:    matrix.Identity,
		},
		ClipBox: rect.Rect{URx: float64(w), URy: float64(h)},
		PathBox: emptyBox(),
		Visible: true,
	}
}

// Clone returns a copy of the state.
// The copy can be modified without affecting the original.
func (s *State) Clone() *State {
	res := *s
	res.Dash = slices.Clone(s.Dash)
	return &res
}

// emptyBox returns a box which contains no points.  Unlike the zero
// rect.Rect, it can be grown using Add.
func emptyBox() rect.Rect {
	return rect.Rect{
		LLx: math.Inf(+1), LLy: math.Inf(+1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
}

func isEmptyBox(r rect.Rect) bool {
	return !(r.LLx <= r.URx && r.LLy <= r.URy)
}

// intersectBox returns the intersection of a and b, or the zero rectangle
// if they do not overlap.
func intersectBox(a, b rect.Rect) rect.Rect {
	res := rect.Rect{
		LLx: max(a.LLx, b.LLx),
		LLy: max(a.LLy, b.LLy),
		URx: min(a.URx, b.URx),
		URy: min(a.URy, b.URy),
	}
	if isEmptyBox(res) {
		return rect.Rect{}
	}
	return res
}

// resetPathBox clears the path bounding box.
func (s *State) resetPathBox() {
	s.PathBox = emptyBox()
}

// updatePathBox extends the path bounding box by a point in user space.
func (s *State) updatePathBox(x, y float64) {
	s.PathBox.Add(s.CTM.Apply(x, y))
}

// paintBox returns the device space region affected by painting the
// current path, clipped to the clip box.
func (s *State) paintBox(stroke bool) rect.Rect {
	if isEmptyBox(s.PathBox) {
		return rect.Rect{}
	}
	box := s.PathBox
	if stroke {
		w := max(s.LineWidth*scaleFactor(s.CTM), 1) / 2
		box.LLx -= w
		box.LLy -= w
		box.URx += w
		box.URy += w
	}
	return intersectBox(box, s.ClipBox)
}

// scaleFactor returns the geometric mean of the scaling factors of m.
// This converts line widths and font sizes to device space.
func scaleFactor(m matrix.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// transformBox returns the bounding box of the image of r under m.
func transformBox(m matrix.Matrix, r rect.Rect) rect.Rect {
	res := emptyBox()
	res.Add(m.Apply(r.LLx, r.LLy))
	res.Add(m.Apply(r.URx, r.LLy))
	res.Add(m.Apply(r.URx, r.URy))
	res.Add(m.Apply(r.LLx, r.URy))
	return res
}
