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

package editor

import (
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview/command"
	"seehuhn.de/go/pdfview/internal/float"
)

// Handle identifies a resize handle of an editor.
type Handle int

// These are the resize handles, clockwise from the top left corner.
const (
	TopLeft Handle = iota
	TopMiddle
	TopRight
	MiddleRight
	BottomRight
	BottomMiddle
	BottomLeft
	MiddleLeft
)

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "topLeft"
	case TopMiddle:
		return "topMiddle"
	case TopRight:
		return "topRight"
	case MiddleRight:
		return "middleRight"
	case BottomRight:
		return "bottomRight"
	case BottomMiddle:
		return "bottomMiddle"
	case BottomLeft:
		return "bottomLeft"
	case MiddleLeft:
		return "middleLeft"
	}
	return "unknown"
}

func (h Handle) isCorner() bool {
	return h == TopLeft || h == TopRight || h == BottomRight || h == BottomLeft
}

// Handles returns the resize handles of the editor.  Editors which keep
// their aspect ratio only have the four corner handles.
func (b *Base) Handles() []Handle {
	if b.keepAspectRatio {
		return []Handle{TopLeft, TopRight, BottomRight, BottomLeft}
	}
	return []Handle{TopLeft, TopMiddle, TopRight, MiddleRight, BottomRight, BottomMiddle, BottomLeft, MiddleLeft}
}

// rotationMatrix maps vectors in the editor's own frame, measured as
// fractions of the page size, to fractions of the page size in page
// coordinates.
func (b *Base) rotationMatrix(rotation int) matrix.Matrix {
	pw, ph := b.PageDimensions[0], b.PageDimensions[1]
	switch normRotation(rotation) {
	case 90:
		return matrix.Matrix{0, -pw / ph, ph / pw, 0, 0, 0}
	case 180:
		return matrix.Matrix{-1, 0, 0, -1, 0, 0}
	case 270:
		return matrix.Matrix{0, pw / ph, -ph / pw, 0, 0, 0}
	default:
		return matrix.Identity
	}
}

// handlePoints returns the position of the handle and of the opposite
// handle, for an editor of size w×h.
func handlePoints(h Handle, w, ht float64) (point, opposite [2]float64) {
	switch h {
	case TopLeft:
		return [2]float64{0, 0}, [2]float64{w, ht}
	case TopMiddle:
		return [2]float64{w / 2, 0}, [2]float64{w / 2, ht}
	case TopRight:
		return [2]float64{w, 0}, [2]float64{0, ht}
	case MiddleRight:
		return [2]float64{w, ht / 2}, [2]float64{0, ht / 2}
	case BottomRight:
		return [2]float64{w, ht}, [2]float64{0, 0}
	case BottomMiddle:
		return [2]float64{w / 2, ht}, [2]float64{w / 2, 0}
	case BottomLeft:
		return [2]float64{0, ht}, [2]float64{w, 0}
	default: // MiddleLeft
		return [2]float64{0, ht / 2}, [2]float64{w, ht / 2}
	}
}

// Resize moves the resize handle h by (dx, dy) screen pixels.  The
// opposite handle stays in place.  Moving a corner scales the editor
// proportionally to the distance moved along the diagonal.  Moving an
// edge changes only one dimension.
//
// The change is recorded as a single undoable command.  The return value
// indicates whether the geometry changed.
func (b *Base) Resize(h Handle, dx, dy float64) bool {
	if b.keepAspectRatio && !h.isCorner() {
		return false
	}
	pw, ph := b.ParentDimensions()
	if pw <= 0 || ph <= 0 || b.Width <= 0 || b.Height <= 0 {
		return false
	}

	savedX, savedY := b.X, b.Y
	savedW, savedH := b.Width, b.Height
	minW, minH := MinSize/pw, MinSize/ph
	round := func(x float64) float64 { return float.Round(x, 4) }

	rot := b.rotationMatrix(b.Rotation)
	inv := rot.Inv()

	point, opposite := handlePoints(h, savedW, savedH)
	ox, oy := rot.Apply(opposite[0], opposite[1])
	oppositeX := round(savedX + ox)
	oppositeY := round(savedY + oy)

	dx, dy = b.ScreenToPageTranslation(dx, dy)
	dx, dy = inv.Apply(dx/pw, dy/ph)

	ratioX, ratioY := 1.0, 1.0
	switch h {
	case TopLeft, TopRight, BottomRight, BottomLeft:
		oldDiag := math.Hypot(savedW, savedH)
		r := math.Hypot(opposite[0]-point[0]-dx, opposite[1]-point[1]-dy) / oldDiag
		r = min(r, 1/savedW, 1/savedH)
		r = max(r, minW/savedW, minH/savedH)
		ratioX, ratioY = r, r
	case MiddleLeft, MiddleRight:
		ratioX = max(minW, min(1, math.Abs(opposite[0]-point[0]-dx))) / savedW
	default:
		ratioY = max(minH, min(1, math.Abs(opposite[1]-point[1]-dy))) / savedH
	}

	newW := round(savedW * ratioX)
	newH := round(savedH * ratioY)
	_, newOpposite := handlePoints(h, newW, newH)
	ox, oy = rot.Apply(newOpposite[0], newOpposite[1])
	newX := oppositeX - ox
	newY := oppositeY - oy

	if newX == savedX && newY == savedY && newW == savedW && newH == savedH {
		return false
	}

	b.AddCommands(command.Cmd{
		Do: func() {
			b.Width, b.Height = newW, newH
			b.X, b.Y = newX, newY
			b.moved()
		},
		Undo: func() {
			b.Width, b.Height = savedW, savedH
			b.X, b.Y = savedX, savedY
			b.moved()
		},
		MustExec: true,
	})
	return true
}
