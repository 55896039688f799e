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
	"bytes"
	"math"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
	"seehuhn.de/go/pdfview/internal/float"
)

// Editor is an annotation on the editing overlay.
//
// All editors embed a [*Base], which holds the geometry and the editing
// state.  Geometry is stored as fractions of the page size.
type Editor interface {
	ID() string
	Type() annotation.Type
	GetBase() *Base

	// IsEmpty reports whether the editor has no content.  Empty editors
	// are never saved.
	IsEmpty() bool

	// Serialize returns the record for the editor.  The second return
	// value is false if there is nothing to save.
	Serialize(isForCopying bool) (annotation.Record, bool)

	// Commit stores the editor in the annotation storage.  Calling Commit
	// when the editor is not in edit mode has no further effect.
	Commit()

	EnableEditMode()
	DisableEditMode()
	IsInEditMode() bool

	UpdateParams(t ParamType, v any)
	PropertiesToUpdate() []ParamValue

	// Render prepares the editor for display.
	Render()

	// Remove detaches the editor from its layer.  A removed editor can be
	// restored using Rebuild.
	Remove()
	Rebuild()

	OnScaleChanging()

	// OnceAdded is called after the editor has been added to a layer.
	OnceAdded()
}

// MinSize is the minimal width and height of an editor, in screen pixels.
const MinSize = 16

// Base holds the state shared by all editors.
type Base struct {
	// X and Y give the position of the editor, as fractions of the page
	// width and height.  Width and Height give the size of the editor in
	// its own, rotated coordinate system, as fractions of the page width
	// and height.
	X, Y          float64
	Width, Height float64

	// Rotation is the rotation of the editor, in degrees.  This is one of
	// 0, 90, 180 and 270.
	Rotation int

	PageIndex       int
	PageDimensions  [2]float64
	PageTranslation [2]float64

	// Deleted is set for editors of existing annotations which the user
	// has deleted.
	Deleted bool

	id        string
	self      Editor
	parent    *Layer
	ui        *UIManager
	elementID string
	initial   annotation.Record

	inEditMode      bool
	attached        bool
	rendered        bool
	selected        bool
	disabled        bool
	hidden          bool
	keepAspectRatio bool
	isCentered      bool
}

// init connects the base to the editor it is embedded in.
func (b *Base) init(self Editor, l *Layer, p Params) {
	b.self = self
	b.id = p.ID
	b.ui = l.ui
	b.Rotation = l.rotation
	b.isCentered = p.IsCentered
	b.setParent(l)
	w, h := b.ParentDimensions()
	if w > 0 && h > 0 {
		b.X = p.X / w
		b.Y = p.Y / h
	}
}

// ID returns the identifier of the editor.  This is unique within a
// [UIManager].
func (b *Base) ID() string {
	return b.id
}

// GetBase returns b.
func (b *Base) GetBase() *Base {
	return b
}

// AnnotationElementID returns the id of the existing annotation which the
// editor replaces, or "".
func (b *Base) AnnotationElementID() string {
	return b.elementID
}

// Parent returns the layer the editor belongs to, or nil.
func (b *Base) Parent() *Layer {
	return b.parent
}

// IsAttached reports whether the editor is shown on its layer.
func (b *Base) IsAttached() bool {
	return b.attached
}

// IsSelected reports whether the editor is part of the selection.
func (b *Base) IsSelected() bool {
	return b.selected
}

// IsHidden reports whether the editor is hidden.
func (b *Base) IsHidden() bool {
	return b.hidden
}

// IsEnabled reports whether the editor reacts to user input.
func (b *Base) IsEnabled() bool {
	return !b.disabled
}

// KeepAspectRatio reports whether resizing preserves the aspect ratio.
func (b *Base) KeepAspectRatio() bool {
	return b.keepAspectRatio
}

// ParentScale returns the zoom factor of the page.
func (b *Base) ParentScale() float64 {
	if b.parent == nil || b.parent.scale <= 0 {
		return 1
	}
	return b.parent.scale
}

// ParentDimensions returns the size of the page in screen pixels.
func (b *Base) ParentDimensions() (float64, float64) {
	s := b.ParentScale()
	return b.PageDimensions[0] * s, b.PageDimensions[1] * s
}

// ParentRotation returns the rotation of the page view.
func (b *Base) ParentRotation() int {
	if b.parent == nil {
		return 0
	}
	return b.parent.rotation
}

// EnableEditMode makes the editor the active editor.
func (b *Base) EnableEditMode() {
	if b.inEditMode {
		return
	}
	b.inEditMode = true
	if b.ui != nil {
		b.ui.SetActiveEditor(b.self)
	}
}

// DisableEditMode leaves edit mode.
func (b *Base) DisableEditMode() {
	if !b.inEditMode {
		return
	}
	b.inEditMode = false
	if b.ui != nil && b.ui.active == b.self {
		b.ui.SetActiveEditor(nil)
	}
}

// IsInEditMode reports whether the content of the editor is being edited.
func (b *Base) IsInEditMode() bool {
	return b.inEditMode
}

// Commit implements the [Editor] interface.
func (b *Base) Commit() {
	if b.ui != nil {
		b.ui.AddToAnnotationStorage(b.self)
	}
}

// CommitOrRemove commits the editor, or removes it if it is empty.
func (b *Base) CommitOrRemove() {
	if b.self.IsEmpty() {
		b.self.Remove()
	} else {
		b.self.Commit()
	}
}

// Remove implements the [Editor] interface.
func (b *Base) Remove() {
	if !b.self.IsEmpty() {
		b.self.Commit()
	}
	b.inEditMode = false
	if b.ui != nil && b.ui.active == b.self {
		b.ui.SetActiveEditor(nil)
	}
	if b.parent != nil {
		b.parent.Remove(b.self)
	} else if b.ui != nil {
		b.ui.RemoveEditor(b.self)
	}
}

// Render implements the [Editor] interface.
func (b *Base) Render() {
	b.rendered = true
}

// Rebuild implements the [Editor] interface.
func (b *Base) Rebuild() {
	if b.parent == nil {
		return
	}
	if !b.attached {
		b.parent.Add(b.self)
	}
}

// NeedsToBeRebuilt reports whether the editor has been rendered before
// and was removed since.
func (b *Base) NeedsToBeRebuilt() bool {
	return b.rendered && !b.attached
}

// OnScaleChanging implements the [Editor] interface.
func (b *Base) OnScaleChanging() {}

// OnceAdded implements the [Editor] interface.
func (b *Base) OnceAdded() {}

// UpdateParams implements the [Editor] interface.
// The base editor has no properties.
func (b *Base) UpdateParams(t ParamType, v any) {}

// PropertiesToUpdate implements the [Editor] interface.
func (b *Base) PropertiesToUpdate() []ParamValue {
	return nil
}

// Select marks the editor as selected.
func (b *Base) Select() {
	b.selected = true
}

// Unselect clears the selection mark.
func (b *Base) Unselect() {
	b.selected = false
}

// Show shows or hides the editor.
func (b *Base) Show(visible bool) {
	b.hidden = !visible
}

// Enable makes the editor react to user input.
func (b *Base) Enable() {
	b.disabled = false
}

// Disable makes the editor ignore user input.
func (b *Base) Disable() {
	b.disabled = true
}

// AddCommands records an undoable change.
func (b *Base) AddCommands(c command.Cmd) {
	if b.ui == nil {
		if c.MustExec && c.Do != nil {
			c.Do()
		}
		return
	}
	b.ui.AddCommands(c)
}

func (b *Base) setParent(l *Layer) {
	if l != nil {
		b.PageIndex = l.pageIndex
		b.PageDimensions = l.pageDims
		b.PageTranslation = l.pageTranslation
	}
	b.parent = l
}

// setParentAndPosition moves the editor onto the layer l, at the given
// position.
func (b *Base) setParentAndPosition(l *Layer, x, y float64) {
	l.changeParent(b.self)
	b.X = x
	b.Y = y
	b.FixAndSetPosition(b.Rotation)
}

// FixAndSetPosition moves the editor so that it lies within the page.
// The rotation determines which corner of the editor (X, Y) refers to.
func (b *Base) FixAndSetPosition(rotation int) {
	pw, ph := b.PageDimensions[0], b.PageDimensions[1]
	if pw <= 0 || ph <= 0 {
		return
	}
	x, y := b.X*pw, b.Y*ph
	w, h := b.Width*pw, b.Height*ph

	switch normRotation(rotation) {
	case 0:
		x = clamp(x, 0, pw-w)
		y = clamp(y, 0, ph-h)
	case 90:
		x = clamp(x, 0, pw-h)
		y = clamp(y, w, ph)
	case 180:
		x = clamp(x, w, pw)
		y = clamp(y, h, ph)
	case 270:
		x = clamp(x, h, pw)
		y = clamp(y, 0, ph-w)
	}

	b.X = x / pw
	b.Y = y / ph
	b.moved()
}

// moved informs the editor about a change of position or size.
func (b *Base) moved() {
	if m, ok := b.self.(interface{ positionChanged() }); ok {
		m.positionChanged()
	}
}

// SetAt places the editor at the screen position (x, y), shifted by the
// screen translation (tx, ty).
func (b *Base) SetAt(x, y, tx, ty float64) {
	w, h := b.ParentDimensions()
	tx, ty = b.ScreenToPageTranslation(tx, ty)
	b.X = (x + tx) / w
	b.Y = (y + ty) / h
	b.FixAndSetPosition(b.Rotation)
}

// Translate moves the editor by (x, y) screen pixels.
func (b *Base) Translate(x, y float64) {
	w, h := b.ParentDimensions()
	b.translate(w, h, x, y)
}

// TranslateInPage moves the editor by (x, y) in PDF units.
func (b *Base) TranslateInPage(x, y float64) {
	b.translate(b.PageDimensions[0], b.PageDimensions[1], x, y)
}

func (b *Base) translate(w, h, x, y float64) {
	x, y = b.ScreenToPageTranslation(x, y)
	b.X += x / w
	b.Y += y / h
	b.FixAndSetPosition(b.Rotation)
}

// Drag moves the editor by (tx, ty) screen pixels during a drag
// operation.  If the editor leaves the page at the top or bottom, it
// moves to the neighbouring page.
func (b *Base) Drag(tx, ty float64) {
	w, h := b.ParentDimensions()
	b.X += tx / w
	b.Y += ty / h

	if b.parent != nil && (b.Y < 0 || b.Y > 1) && b.ui != nil {
		target := b.PageIndex + 1
		if b.Y < 0 {
			target = b.PageIndex - 1
		}
		if l := b.ui.GetLayer(target); l != nil {
			l.MoveEditorIn(b.self)
			b.Y -= math.Floor(b.Y)
		}
	}
	b.moved()
}

// ScreenToPageTranslation converts a translation on the screen into
// the page coordinate system.
func (b *Base) ScreenToPageTranslation(x, y float64) (float64, float64) {
	return rotatePoint(x, y, b.ParentRotation())
}

// PageTranslationToScreen converts a translation in page coordinates into
// screen coordinates.
func (b *Base) PageTranslationToScreen(x, y float64) (float64, float64) {
	return rotatePoint(x, y, 360-b.ParentRotation())
}

// GetRect returns the bounding box of the editor in PDF user space, in the
// order x1, y1, x2, y2.  The editor is shifted by (tx, ty) screen pixels.
func (b *Base) GetRect(tx, ty float64) [4]float64 {
	return b.rectAt(tx, ty, b.Rotation)
}

func (b *Base) rectAt(tx, ty float64, rotation int) [4]float64 {
	scale := b.ParentScale()
	pw, ph := b.PageDimensions[0], b.PageDimensions[1]
	px, py := b.PageTranslation[0], b.PageTranslation[1]
	sx, sy := tx/scale, ty/scale
	x, y := b.X*pw, b.Y*ph
	w, h := b.Width*pw, b.Height*ph

	switch normRotation(rotation) {
	case 90:
		return [4]float64{x + sy + px, ph - y + sx + py, x + sy + h + px, ph - y + sx + w + py}
	case 180:
		return [4]float64{x - sx - w + px, ph - y + sy + py, x - sx + px, ph - y + sy + h + py}
	case 270:
		return [4]float64{x - sy - h + px, ph - y - sx - w + py, x - sy + px, ph - y - sx + py}
	default:
		return [4]float64{x + sx + px, ph - y - sy - h + py, x + sx + w + px, ph - y - sy + py}
	}
}

// rectInCurrentCoords converts a rectangle in PDF user space into the
// position and size of an editor with the current rotation, in PDF units.
func (b *Base) rectInCurrentCoords(r [4]float64) (x, y, w, h float64) {
	ph := b.PageDimensions[1]
	x1, y1 := r[0]-b.PageTranslation[0], r[1]-b.PageTranslation[1]
	x2, y2 := r[2]-b.PageTranslation[0], r[3]-b.PageTranslation[1]
	width, height := x2-x1, y2-y1
	switch normRotation(b.Rotation) {
	case 90:
		return x1, ph - y1, height, width
	case 180:
		return x2, ph - y1, width, height
	case 270:
		return x2, ph - y2, height, width
	default:
		return x1, ph - y2, width, height
	}
}

// deserializeCommon restores the geometry from a record.
func (b *Base) deserializeCommon(rec annotation.Record) {
	c := rec.GetCommon()
	if c == nil {
		return
	}
	b.Rotation = normRotation(c.Rotation)
	pw, ph := b.PageDimensions[0], b.PageDimensions[1]
	if pw <= 0 || ph <= 0 {
		return
	}
	x, y, w, h := b.rectInCurrentCoords(c.Rect)
	b.X = x / pw
	b.Y = y / ph
	b.Width = w / pw
	b.Height = h / ph
	b.elementID = c.AnnotationElementID
}

// fillCommon sets the fields shared by all records.
func (b *Base) fillCommon(c *annotation.Common, isForCopying bool) {
	c.PageIndex = b.PageIndex
	c.Rect = b.GetRect(0, 0)
	c.Rotation = b.Rotation
	c.IsCopy = isForCopying
	if !isForCopying {
		c.ID = b.elementID
		c.AnnotationElementID = b.elementID
	}
}

// tombstone returns the record of a deleted existing annotation.
func (b *Base) tombstone() (annotation.Record, bool) {
	return annotation.NewTombstone(b.elementID, b.PageIndex), true
}

// unchanged reports whether rec describes the existing annotation the
// editor was created from, without modifications.
func (b *Base) unchanged(rec annotation.Record) bool {
	if b.initial == nil || b.elementID == "" {
		return false
	}
	x, err1 := marshalNormalized(rec)
	y, err2 := marshalNormalized(b.initial)
	return err1 == nil && err2 == nil && bytes.Equal(x, y)
}

// marshalNormalized encodes a record without the fields which identify
// it, with the rectangle rounded.
func marshalNormalized(r annotation.Record) ([]byte, error) {
	c := r.GetCommon()
	if c == nil {
		return annotation.MarshalRecord(r)
	}
	saved := *c
	defer func() { *c = saved }()
	c.ID, c.AnnotationElementID, c.IsCopy = "", "", false
	for i, x := range c.Rect {
		c.Rect[i] = float.Round(x, 2)
	}
	return annotation.MarshalRecord(r)
}

// center moves the editor so that its center is at the current position.
func (b *Base) center() {
	pw, ph := b.PageDimensions[0], b.PageDimensions[1]
	if pw <= 0 || ph <= 0 {
		return
	}
	dx, dy := rotatePoint(b.Width*pw/2, b.Height*ph/2, b.Rotation)
	b.X -= dx / pw
	b.Y -= dy / ph
	b.FixAndSetPosition(b.Rotation)
}

// localToPage converts a vector in the editor's own coordinate system
// into page coordinates.
func (b *Base) localToPage(u, v float64) (float64, float64) {
	return rotatePoint(u, v, b.Rotation)
}

// pageToLocal is the inverse of localToPage.
func (b *Base) pageToLocal(x, y float64) (float64, float64) {
	return rotatePoint(x, y, 360-b.Rotation)
}

func normRotation(r int) int {
	return ((r % 360) + 360) % 360
}

// rotatePoint rotates the vector (x, y) by the given angle, in the y-down
// coordinate system of the screen.
func rotatePoint(x, y float64, angle int) (float64, float64) {
	switch normRotation(angle) {
	case 90:
		return y, -x
	case 180:
		return -x, -y
	case 270:
		return -y, x
	default:
		return x, y
	}
}
