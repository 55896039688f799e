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
	"slices"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
	"seehuhn.de/go/pdfview/outline"
)

// Border widths used for the outlines of a highlight, as fractions of the
// page size.
const (
	highlightBorder    = 0.001
	focusOutlineBorder = 0.0025
	focusOutlineMargin = 0.001
)

// HighlightEditor is an editor for text highlights.
//
// A highlight is created from the boxes of a text selection.  Its
// geometry is always given in the unrotated page.
type HighlightEditor struct {
	Base

	boxes    []outline.Box
	outlines *outline.Outlines
	focus    *outline.Outlines

	// lastPoint is the anchor for a toolbar, relative to the editor.
	lastPoint [2]float64

	color     annotation.Color
	thickness float64
	opacity   float64

	drawID int
}

func init() {
	Register(annotation.Highlight, &Factory{
		New: func(l *Layer, p Params) Editor {
			return newHighlight(l, p)
		},
		Deserialize: deserializeHighlight,
		DefaultProps: func(s *Settings) []ParamValue {
			return []ParamValue{
				{Type: ParamHighlightColor, Value: s.HighlightColor},
				{Type: ParamHighlightThickness, Value: s.HighlightThickness},
			}
		},
	})
}

func newHighlight(l *Layer, p Params) *HighlightEditor {
	if p.ID == "" {
		p.ID = l.ui.GetID()
	}
	s := &l.ui.settings
	e := &HighlightEditor{
		color:     s.HighlightColor,
		thickness: s.HighlightThickness,
		opacity:   s.HighlightOpacity,
		drawID:    -1,
	}
	e.init(e, l, Params{ID: p.ID})
	e.Rotation = 0
	if len(p.Boxes) > 0 {
		e.boxes = slices.Clone(p.Boxes)
		e.createOutlines()
	}
	return e
}

// deserializeHighlight recovers the selection boxes from the quad points
// of the record.
func deserializeHighlight(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error) {
	r, ok := rec.(*annotation.HighlightRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrRecordType, rec)
	}
	e := newHighlight(l, Params{})
	e.deserializeCommon(r)
	e.Rotation = 0
	e.color = r.Color
	e.opacity = r.Opacity
	if r.Thickness > 0 {
		e.thickness = r.Thickness
	}

	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	px, py := e.PageTranslation[0], e.PageTranslation[1]
	q := r.QuadPoints
	for i := 0; i+7 < len(q); i += 8 {
		x1, y1 := float64(q[i]), float64(q[i+1])
		x2, y2 := float64(q[i+2]), float64(q[i+5])
		e.boxes = append(e.boxes, outline.Box{
			X:      (x1 - px) / pw,
			Y:      1 - (y2-py)/ph,
			Width:  (x2 - x1) / pw,
			Height: (y2 - y1) / ph,
		})
	}
	if len(e.boxes) > 0 {
		e.createOutlines()
	}
	return e, nil
}

// createOutlines computes the outlines from the boxes and moves the
// editor to their bounding box.
func (e *HighlightEditor) createOutlines() {
	e.outlines = outline.New(e.boxes, highlightBorder, 0, true).Outlines()
	bb := e.outlines.BBox
	e.X, e.Y = bb.LLx, bb.LLy
	e.Width, e.Height = bb.Dx(), bb.Dy()

	isLTR := !(e.ui != nil && e.ui.settings.RightToLeft)
	e.focus = outline.New(e.boxes, focusOutlineBorder, focusOutlineMargin, isLTR).Outlines()
	if e.Width > 0 && e.Height > 0 {
		lp := e.focus.LastPoint
		e.lastPoint = [2]float64{(lp.X - e.X) / e.Width, (lp.Y - e.Y) / e.Height}
	}
}

// Type returns [annotation.Highlight].
func (e *HighlightEditor) Type() annotation.Type {
	return annotation.Highlight
}

// Boxes returns the selection boxes of the highlight.
func (e *HighlightEditor) Boxes() []outline.Box {
	return slices.Clone(e.boxes)
}

// Outlines returns the outlines of the highlight.
func (e *HighlightEditor) Outlines() *outline.Outlines {
	return e.outlines
}

// LastPoint returns the anchor point for a toolbar, relative to the
// editor.
func (e *HighlightEditor) LastPoint() [2]float64 {
	return e.lastPoint
}

// Color returns the highlight color.
func (e *HighlightEditor) Color() annotation.Color {
	return e.color
}

// IsEmpty reports whether the highlight covers no boxes.
func (e *HighlightEditor) IsEmpty() bool {
	return e.outlines == nil || len(e.outlines.Polygons) == 0
}

// Render registers the outline with the draw layer of the page.
func (e *HighlightEditor) Render() {
	e.Base.Render()
	e.addToDrawLayer()
}

func (e *HighlightEditor) addToDrawLayer() {
	if e.drawID >= 0 || e.parent == nil || e.outlines == nil {
		return
	}
	e.drawID = e.parent.drawLayer.Draw(e.outlines, e.color, e.opacity)
	e.positionChanged()
}

// positionChanged moves the outline in the draw layer along with the
// editor.
func (e *HighlightEditor) positionChanged() {
	if e.drawID < 0 || e.parent == nil {
		return
	}
	e.parent.drawLayer.SetBox(e.drawID, rect.Rect{
		LLx: e.X,
		LLy: e.Y,
		URx: e.X + e.Width,
		URy: e.Y + e.Height,
	})
}

// Remove implements the [Editor] interface.
func (e *HighlightEditor) Remove() {
	e.cleanDrawLayer()
	e.Base.Remove()
}

func (e *HighlightEditor) cleanDrawLayer() {
	if e.drawID < 0 || e.parent == nil {
		return
	}
	e.parent.drawLayer.Remove(e.drawID)
	e.drawID = -1
}

// Rebuild implements the [Editor] interface.
func (e *HighlightEditor) Rebuild() {
	e.Base.Rebuild()
	if e.parent != nil && e.attached {
		e.addToDrawLayer()
	}
}

// Show implements showing and hiding the outline.
func (e *HighlightEditor) Show(visible bool) {
	e.Base.Show(visible)
	if e.drawID < 0 || e.parent == nil {
		return
	}
	if visible {
		e.parent.drawLayer.Show(e.drawID)
	} else {
		e.parent.drawLayer.Hide(e.drawID)
	}
}

// UpdateParams changes the color or the line width.
func (e *HighlightEditor) UpdateParams(t ParamType, v any) {
	switch t {
	case ParamHighlightColor:
		if c, ok := toColor(v); ok {
			e.updateColor(c)
		}
	case ParamHighlightThickness:
		if x, ok := toFloat(v); ok && x > 0 {
			saved := e.thickness
			e.AddCommands(command.Cmd{
				Do:                  func() { e.thickness = x },
				Undo:                func() { e.thickness = saved },
				MustExec:            true,
				Type:                command.Type(ParamHighlightThickness),
				OverwriteIfSameType: true,
				KeepUndo:            true,
			})
		}
	}
}

func (e *HighlightEditor) updateColor(c annotation.Color) {
	setColor := func(c annotation.Color) {
		e.color = c
		if e.drawID >= 0 && e.parent != nil {
			e.parent.drawLayer.ChangeColor(e.drawID, c)
		}
	}
	saved := e.color
	e.AddCommands(command.Cmd{
		Do:   func() { setColor(c) },
		Undo: func() { setColor(saved) },
		Post: func() {
			if e.ui != nil {
				e.ui.updateUI(e)
			}
		},
		MustExec:            true,
		Type:                command.Type(ParamHighlightColor),
		OverwriteIfSameType: true,
		KeepUndo:            true,
	})
}

// PropertiesToUpdate implements the [Editor] interface.
func (e *HighlightEditor) PropertiesToUpdate() []ParamValue {
	return []ParamValue{
		{Type: ParamHighlightColor, Value: e.color},
		{Type: ParamHighlightThickness, Value: e.thickness},
	}
}

// Serialize implements the [Editor] interface.
func (e *HighlightEditor) Serialize(isForCopying bool) (annotation.Record, bool) {
	if e.Deleted {
		return e.tombstone()
	}
	if e.IsEmpty() {
		return nil, false
	}
	rec := &annotation.HighlightRecord{
		QuadPoints: e.quadPoints(),
		Color:      e.color,
		Opacity:    e.opacity,
		Thickness:  e.thickness,
	}
	e.fillCommon(&rec.Common, isForCopying)
	r := rec.Rect
	rec.Outlines = e.outlines.Serialize(rect.Rect{LLx: r[0], LLy: r[1], URx: r[2], URy: r[3]}, 0)
	if !isForCopying && e.unchanged(rec) {
		return nil, false
	}
	return rec, true
}

// quadPoints lists eight numbers per box: the lower left and lower right
// corner, followed by the upper left and upper right corner.
func (e *HighlightEditor) quadPoints() []float32 {
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	px, py := e.PageTranslation[0], e.PageTranslation[1]
	res := make([]float32, 8*len(e.boxes))
	for i, b := range e.boxes {
		x1 := b.X*pw + px
		y1 := (1-b.Y-b.Height)*ph + py
		x2 := x1 + b.Width*pw
		y2 := y1 + b.Height*ph
		q := res[8*i : 8*i+8]
		q[0], q[4] = float32(x1), float32(x1)
		q[1], q[3] = float32(y1), float32(y1)
		q[2], q[6] = float32(x2), float32(x2)
		q[5], q[7] = float32(y2), float32(y2)
	}
	return res
}
