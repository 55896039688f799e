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
	"fmt"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
)

// InkEditor is an editor for freehand drawings.
//
// Points are stored in the coordinate system of the editor: the origin is
// the top left corner of the editor, units are PDF units and the y-axis
// points down.  After a resize, the points are scaled by the ratio between
// the current width and baseWidth.
type InkEditor struct {
	Base

	paths   []inkPath
	current []vec.Vec2

	color     annotation.Color
	thickness float64
	opacity   float64

	baseWidth float64
	committed bool
}

type inkPath struct {
	points []vec.Vec2

	// bezier holds the start point followed by the control points and end
	// point of each cubic segment.
	bezier []vec.Vec2
}

func init() {
	Register(annotation.Ink, &Factory{
		New: func(l *Layer, p Params) Editor {
			return newInk(l, p)
		},
		Deserialize: deserializeInk,
		DefaultProps: func(s *Settings) []ParamValue {
			return []ParamValue{
				{Type: ParamInkColor, Value: s.InkColor},
				{Type: ParamInkThickness, Value: s.InkThickness},
				{Type: ParamInkOpacity, Value: s.InkOpacity},
			}
		},
	})
}

// newInk creates an ink editor which covers the whole page.
func newInk(l *Layer, p Params) *InkEditor {
	if p.ID == "" {
		p.ID = l.ui.GetID()
	}
	e := &InkEditor{
		color:     l.ui.settings.InkColor,
		thickness: l.ui.settings.InkThickness,
		opacity:   l.ui.settings.InkOpacity,
	}
	e.init(e, l, Params{ID: p.ID})
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	if pw > 0 && ph > 0 {
		e.Width, e.Height = 1, 1
		if e.Rotation%180 != 0 {
			e.Width, e.Height = ph/pw, pw/ph
		}
		e.FixAndSetPosition(e.Rotation)
		e.baseWidth = e.Width * pw
	}
	return e
}

func deserializeInk(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error) {
	r, ok := rec.(*annotation.InkRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrRecordType, rec)
	}
	e := newInk(l, Params{})
	e.deserializeCommon(r)
	e.color = r.Color
	e.thickness = r.Thickness
	e.opacity = r.Opacity
	e.baseWidth = e.Width * e.PageDimensions[0]
	e.committed = true
	e.keepAspectRatio = true

	for _, p := range r.Paths {
		path := inkPath{
			points: e.fromPDFCoordinates(p.Points),
			bezier: e.fromPDFCoordinates(p.Bezier),
		}
		if len(path.points) == 0 && len(path.bezier) == 0 {
			continue
		}
		e.paths = append(e.paths, path)
	}
	return e, nil
}

// Type returns [annotation.Ink].
func (e *InkEditor) Type() annotation.Type {
	return annotation.Ink
}

// IsEmpty reports whether nothing has been drawn.
func (e *InkEditor) IsEmpty() bool {
	return len(e.paths) == 0 && len(e.current) == 0
}

// Paths returns the number of strokes.
func (e *InkEditor) Paths() int {
	return len(e.paths)
}

// IsDrawing reports whether a stroke is in progress.
func (e *InkEditor) IsDrawing() bool {
	return e.current != nil
}

// OnceAdded starts drawing mode for a new editor.
func (e *InkEditor) OnceAdded() {
	if !e.committed && len(e.paths) == 0 {
		e.EnableEditMode()
	}
}

// StartPath begins a new stroke at the layer position (x, y), given in
// screen pixels.
func (e *InkEditor) StartPath(x, y float64) {
	if e.committed {
		return
	}
	if !e.IsInEditMode() {
		e.EnableEditMode()
	}
	e.current = []vec.Vec2{e.toLocal(x, y)}
}

// AddPoint extends the current stroke.
func (e *InkEditor) AddPoint(x, y float64) {
	if e.current == nil {
		return
	}
	p := e.toLocal(x, y)
	if p == e.current[len(e.current)-1] {
		return
	}
	e.current = append(e.current, p)
}

// EndPath finishes the current stroke.  Adding the stroke is recorded as
// an undoable command.
func (e *InkEditor) EndPath() {
	if e.current == nil {
		return
	}
	path := inkPath{
		points: e.current,
		bezier: smoothPath(e.current),
	}
	e.current = nil

	e.AddCommands(command.Cmd{
		Do: func() {
			e.paths = append(e.paths, path)
			if e.ui != nil && e.parent != nil && !e.attached {
				e.ui.Rebuild(e)
			}
		},
		Undo: func() {
			if len(e.paths) > 0 {
				e.paths = e.paths[:len(e.paths)-1]
			}
			if len(e.paths) == 0 {
				e.Remove()
			} else if e.committed {
				e.fitToContent()
			}
		},
		MustExec: true,
	})
}

// toLocal converts a layer position into the coordinate system of the
// editor.
func (e *InkEditor) toLocal(x, y float64) vec.Vec2 {
	s := e.ParentScale()
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	u, v := e.pageToLocal(x/s-e.X*pw, y/s-e.Y*ph)
	f := e.scaleFactor()
	return vec.Vec2{X: u / f, Y: v / f}
}

func (e *InkEditor) scaleFactor() float64 {
	if e.baseWidth <= 0 {
		return 1
	}
	return e.Width * e.PageDimensions[0] / e.baseWidth
}

// smoothPath turns a polyline into cubic Bézier segments, using
// Catmull-Rom splines.
func smoothPath(pts []vec.Vec2) []vec.Vec2 {
	n := len(pts)
	if n == 0 {
		return nil
	}
	res := make([]vec.Vec2, 0, 1+3*(n-1))
	res = append(res, pts[0])
	at := func(i int) vec.Vec2 {
		return pts[max(0, min(n-1, i))]
	}
	for i := 0; i < n-1; i++ {
		c1 := pts[i].Add(at(i + 1).Sub(at(i - 1)).Mul(1.0 / 6))
		c2 := pts[i+1].Sub(at(i + 2).Sub(pts[i]).Mul(1.0 / 6))
		res = append(res, c1, c2, pts[i+1])
	}
	return res
}

// Commit finishes drawing and shrinks the editor to fit the strokes.
// Calling Commit outside of edit mode has no effect.
func (e *InkEditor) Commit() {
	if e.committed || !e.IsInEditMode() || len(e.paths) == 0 {
		return
	}
	e.Base.Commit()
	e.DisableEditMode()
	e.committed = true
	e.keepAspectRatio = true
	e.fitToContent()
	if e.ui != nil {
		e.ui.SetSelected(e)
	}
	if e.parent != nil {
		e.parent.AddInkEditorIfNeeded(true)
	}
}

// fitToContent moves and resizes the editor to the bounding box of the
// strokes, enlarged by half the line width.
func (e *InkEditor) fitToContent() {
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	if len(e.paths) == 0 || pw <= 0 || ph <= 0 {
		return
	}

	f := e.scaleFactor()
	minP := vec.Vec2{X: math.Inf(+1), Y: math.Inf(+1)}
	maxP := vec.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, path := range e.paths {
		for _, p := range slices.Concat(path.points, path.bezier) {
			minP.X, minP.Y = min(minP.X, p.X*f), min(minP.Y, p.Y*f)
			maxP.X, maxP.Y = max(maxP.X, p.X*f), max(maxP.Y, p.Y*f)
		}
	}
	pad := e.thickness / 2
	shift := vec.Vec2{X: minP.X - pad, Y: minP.Y - pad}
	for i := range e.paths {
		for j, p := range e.paths[i].points {
			e.paths[i].points[j] = p.Mul(f).Sub(shift)
		}
		for j, p := range e.paths[i].bezier {
			e.paths[i].bezier[j] = p.Mul(f).Sub(shift)
		}
	}

	dx, dy := e.localToPage(shift.X, shift.Y)
	e.X += dx / pw
	e.Y += dy / ph
	w := maxP.X - minP.X + 2*pad
	h := maxP.Y - minP.Y + 2*pad
	e.Width = w / pw
	e.Height = h / ph
	e.baseWidth = w
	e.moved()
}

// UpdateParams changes the color, line width or opacity.
func (e *InkEditor) UpdateParams(t ParamType, v any) {
	switch t {
	case ParamInkColor:
		if c, ok := toColor(v); ok {
			saved := e.color
			e.setParam(t, func() { e.color = c }, func() { e.color = saved })
		}
	case ParamInkThickness:
		if x, ok := toFloat(v); ok && x > 0 {
			saved := e.thickness
			set := func(x float64) func() {
				return func() {
					e.thickness = x
					if e.committed {
						e.fitToContent()
					}
				}
			}
			e.setParam(t, set(x), set(saved))
		}
	case ParamInkOpacity:
		if x, ok := toFloat(v); ok {
			x = clamp(x, 0, 1)
			saved := e.opacity
			e.setParam(t, func() { e.opacity = x }, func() { e.opacity = saved })
		}
	}
}

func (e *InkEditor) setParam(t ParamType, do, undo func()) {
	e.AddCommands(command.Cmd{
		Do:   do,
		Undo: undo,
		Post: func() {
			if e.ui != nil {
				e.ui.updateUI(e)
			}
		},
		MustExec:            true,
		Type:                command.Type(t),
		OverwriteIfSameType: true,
		KeepUndo:            true,
	})
}

// PropertiesToUpdate implements the [Editor] interface.
func (e *InkEditor) PropertiesToUpdate() []ParamValue {
	return []ParamValue{
		{Type: ParamInkColor, Value: e.color},
		{Type: ParamInkThickness, Value: e.thickness},
		{Type: ParamInkOpacity, Value: e.opacity},
	}
}

// Serialize implements the [Editor] interface.
// The strokes are converted into PDF user space.
func (e *InkEditor) Serialize(isForCopying bool) (annotation.Record, bool) {
	if e.Deleted {
		return e.tombstone()
	}
	if len(e.paths) == 0 {
		return nil, false
	}
	rec := &annotation.InkRecord{
		Color:     e.color,
		Thickness: e.thickness,
		Opacity:   e.opacity,
	}
	e.fillCommon(&rec.Common, isForCopying)
	f := e.scaleFactor()
	for _, path := range e.paths {
		bezier := path.bezier
		if len(path.points) == 1 {
			bezier = path.points
		}
		rec.Paths = append(rec.Paths, annotation.InkPath{
			Bezier: e.toPDFCoordinates(bezier, f, rec.Rect),
			Points: e.toPDFCoordinates(path.points, f, rec.Rect),
		})
	}
	if !isForCopying && e.unchanged(rec) {
		return nil, false
	}
	return rec, true
}

// toPDFCoordinates maps points in the coordinate system of the editor to
// PDF user space.  The result alternates between x and y coordinates.
func (e *InkEditor) toPDFCoordinates(pts []vec.Vec2, f float64, r [4]float64) []float64 {
	blX, blY, trX, trY := r[0], r[1], r[2], r[3]
	res := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		u, v := p.X*f, p.Y*f
		var x, y float64
		switch normRotation(e.Rotation) {
		case 90:
			x, y = v+blX, u+blY
		case 180:
			x, y = trX-u, blY+v
		case 270:
			x, y = trX-v, trY-u
		default:
			x, y = blX+u, trY-v
		}
		res = append(res, x, y)
	}
	return res
}

// fromPDFCoordinates is the inverse of toPDFCoordinates, for an editor
// which has not been resized.
func (e *InkEditor) fromPDFCoordinates(xy []float64) []vec.Vec2 {
	r := e.GetRect(0, 0)
	blX, blY, trX, trY := r[0], r[1], r[2], r[3]
	res := make([]vec.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		x, y := xy[i], xy[i+1]
		var u, v float64
		switch normRotation(e.Rotation) {
		case 90:
			u, v = y-blY, x-blX
		case 180:
			u, v = trX-x, y-blY
		case 270:
			u, v = trY-y, trX-x
		default:
			u, v = x-blX, trY-y
		}
		res = append(res, vec.Vec2{X: u, Y: v})
	}
	return res
}
