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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Viewport describes how a page is mapped onto a surface.
type Viewport struct {
	// ViewBox is the visible part of the page, in PDF user space.
	ViewBox rect.Rect

	// Width and Height give the size of the viewport in device pixels.
	Width, Height float64

	Scale float64

	// Rotation is the page rotation in degrees.  This is one of 0, 90, 180
	// and 270.
	Rotation int

	// Transform maps PDF user space to device space.  The y-axis of device
	// space points down.
	Transform matrix.Matrix
}

// NewViewport computes the viewport for the given page box, scale and
// rotation.
func NewViewport(viewBox rect.Rect, scale float64, rotation int) Viewport {
	rotation = ((rotation % 360) + 360) % 360

	centerX := (viewBox.URx + viewBox.LLx) / 2
	centerY := (viewBox.URy + viewBox.LLy) / 2

	var a, b, c, d float64
	switch rotation {
	case 90:
		a, b, c, d = 0, 1, 1, 0
	case 180:
		a, b, c, d = -1, 0, 0, 1
	case 270:
		a, b, c, d = 0, -1, -1, 0
	default:
		rotation = 0
		a, b, c, d = 1, 0, 0, -1
	}

	var offsetX, offsetY, width, height float64
	if a == 0 {
		offsetX = math.Abs(centerY-viewBox.LLy) * scale
		offsetY = math.Abs(centerX-viewBox.LLx) * scale
		width = viewBox.Dy() * scale
		height = viewBox.Dx() * scale
	} else {
		offsetX = math.Abs(centerX-viewBox.LLx) * scale
		offsetY = math.Abs(centerY-viewBox.LLy) * scale
		width = viewBox.Dx() * scale
		height = viewBox.Dy() * scale
	}

	return Viewport{
		ViewBox:  viewBox,
		Width:    width,
		Height:   height,
		Scale:    scale,
		Rotation: rotation,
		Transform: matrix.Matrix{
			a * scale, b * scale, c * scale, d * scale,
			offsetX - a*scale*centerX - c*scale*centerY,
			offsetY - b*scale*centerX - d*scale*centerY,
		},
	}
}

// ToDevice converts a point from PDF user space to device space.
func (v Viewport) ToDevice(x, y float64) (float64, float64) {
	return v.Transform.Apply(x, y)
}

// ToPage converts a point from device space to PDF user space.
func (v Viewport) ToPage(x, y float64) (float64, float64) {
	return v.Transform.Inv().Apply(x, y)
}

// RawDims returns the unrotated page size in PDF units.
func (v Viewport) RawDims() (width, height float64) {
	return v.ViewBox.Dx(), v.ViewBox.Dy()
}
