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
	"slices"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
	"seehuhn.de/go/pdfview/outline"
)

// LayerOptions describes the page shown below a layer.
type LayerOptions struct {
	// PageWidth and PageHeight give the size of the unrotated page in PDF
	// units.
	PageWidth, PageHeight float64

	// PageX and PageY give the lower left corner of the page in PDF user
	// space.
	PageX, PageY float64

	// Scale is the zoom factor, in screen pixels per PDF unit.
	Scale float64

	// Rotation is the rotation of the page view in degrees.
	Rotation int
}

// PointerEvent is a mouse or pen event on a layer.
type PointerEvent struct {
	// X and Y give the position relative to the layer, in screen pixels.
	X, Y float64

	// Button is 0 for the primary button.
	Button int

	Ctrl bool

	// OnEditor is set if the event is targeted at an editor, rather than
	// at the layer itself.
	OnEditor bool
}

// StaticAnnotation is an annotation which exists in the PDF file.
type StaticAnnotation struct {
	ID     string
	Record annotation.Record

	// Editable is set for annotations which can be converted into editors.
	Editable bool

	// Hidden is set while an editor replaces the annotation.
	Hidden bool
}

// Layer is the editing overlay for one page.
type Layer struct {
	pageIndex       int
	ui              *UIManager
	pageDims        [2]float64
	pageTranslation [2]float64
	scale           float64
	rotation        int

	editors   []Editor
	drawLayer *DrawLayer
	static    []*StaticAnnotation

	capturesPointer bool
	staticPointer   bool
	clickEnabled    bool
	textSelection   bool
	hidden          bool

	hadPointerDown bool
	allowClick     bool
	isCleaningUp   bool
	isDisabling    bool

	drawing *InkEditor
}

// NewLayer creates the layer for a page and registers it with ui.
// Editors which ui already knows for this page are added to the layer.
func NewLayer(pageIndex int, ui *UIManager, opts LayerOptions) *Layer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	l := &Layer{
		pageIndex:       pageIndex,
		ui:              ui,
		pageDims:        [2]float64{opts.PageWidth, opts.PageHeight},
		pageTranslation: [2]float64{opts.PageX, opts.PageY},
		scale:           opts.Scale,
		rotation:        normRotation(opts.Rotation),
		drawLayer:       NewDrawLayer(),
		staticPointer:   true,
	}
	ui.AddLayer(l)

	for _, ed := range ui.editorsOnPage(pageIndex) {
		l.Add(ed)
		ed.Rebuild()
	}
	l.UpdateMode(ui.mode)
	return l
}

// PageIndex returns the index of the page.
func (l *Layer) PageIndex() int {
	return l.pageIndex
}

// Scale returns the zoom factor of the page.
func (l *Layer) Scale() float64 {
	return l.scale
}

// Size returns the size of the layer in screen pixels.
func (l *Layer) Size() (float64, float64) {
	return l.pageDims[0] * l.scale, l.pageDims[1] * l.scale
}

// DrawLayer returns the layer which shows the highlight outlines.
func (l *Layer) DrawLayer() *DrawLayer {
	return l.drawLayer
}

// Editors returns the editors of the layer, in the order they were added.
func (l *Layer) Editors() []Editor {
	return slices.Clone(l.editors)
}

// IsEmpty reports whether the layer has no editors.
func (l *Layer) IsEmpty() bool {
	return len(l.editors) == 0
}

// IsInvisible reports whether nothing needs to be shown for the layer.
func (l *Layer) IsInvisible() bool {
	return l.IsEmpty() && l.ui.mode == ModeNone
}

// IsHidden reports whether the layer is hidden.
func (l *Layer) IsHidden() bool {
	return l.hidden
}

// PointerEventsPassThrough reports whether pointer events reach the static
// annotations below the layer.
func (l *Layer) PointerEventsPassThrough() bool {
	return l.staticPointer
}

// CapturesPointerEvents reports whether the layer reacts to pointer events.
func (l *Layer) CapturesPointerEvents() bool {
	return l.capturesPointer
}

// TextSelectionEnabled reports whether text below the layer can be
// selected.
func (l *Layer) TextSelectionEnabled() bool {
	return l.textSelection
}

// SetStaticAnnotations sets the annotations of the PDF file shown on
// this page.
func (l *Layer) SetStaticAnnotations(annots []*StaticAnnotation) {
	l.static = annots
}

// StaticAnnotations returns the annotations of the PDF file shown on this
// page.
func (l *Layer) StaticAnnotations() []*StaticAnnotation {
	return l.static
}

func (l *Layer) staticAnnotation(id string) *StaticAnnotation {
	for _, a := range l.static {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// UpdateMode changes the behaviour of the layer for a new editing mode.
// Empty editors are removed first.
func (l *Layer) UpdateMode(mode Mode) {
	l.cleanup()
	switch mode {
	case ModeNone, ModeDisable:
		l.textSelection = false
		l.capturesPointer = false
		l.staticPointer = true
		l.clickEnabled = false
		return
	case ModeInk:
		l.AddInkEditorIfNeeded(false)
		l.textSelection = false
		l.capturesPointer = true
		l.clickEnabled = false
	case ModeHighlight:
		l.textSelection = true
		l.capturesPointer = false
		l.clickEnabled = false
	default:
		l.textSelection = false
		l.capturesPointer = true
		l.clickEnabled = true
	}
	l.staticPointer = false
	l.hidden = false
}

// AddInkEditorIfNeeded makes sure that an empty ink editor is available
// for drawing while the layer is in ink mode.
func (l *Layer) AddInkEditorIfNeeded(isCommitting bool) {
	if l.ui.mode != ModeInk {
		return
	}
	if !isCommitting {
		for _, ed := range l.editors {
			if ed.IsEmpty() {
				return
			}
		}
	}
	l.CreateAndAddNewEditor(PointerEvent{}, false)
}

// Enable makes the editors of the layer editable.  Editable static
// annotations which are not yet represented by an editor are converted
// into editors.
func (l *Layer) Enable() {
	l.capturesPointer = true
	linked := make(map[string]bool)
	for _, ed := range l.editors {
		b := ed.GetBase()
		b.Enable()
		showEditor(ed, true)
		if b.elementID != "" {
			l.ui.RemoveChangedExistingAnnotation(ed)
			linked[b.elementID] = true
		}
	}

	for _, a := range l.static {
		if !a.Editable {
			continue
		}
		a.Hidden = true
		if l.ui.IsDeletedAnnotationElement(a.ID) || linked[a.ID] {
			continue
		}
		ed, err := l.deserializeStatic(a)
		if err != nil {
			pdfview.Logger().Warn("cannot edit annotation", "id", a.ID, "error", err)
			a.Hidden = false
			continue
		}
		l.AddOrRebuild(ed)
		ed.GetBase().Enable()
	}
}

func (l *Layer) deserializeStatic(a *StaticAnnotation) (Editor, error) {
	ed, err := Deserialize(a.Record, l, l.ui)
	if err != nil {
		return nil, err
	}
	b := ed.GetBase()
	b.elementID = a.ID
	b.initial = a.Record
	return ed, nil
}

// Disable makes the editors of the layer inert.  Editors of existing
// annotations which have no changes are removed and the original
// annotation is shown again.  Changed ones are recorded, so that the
// annotation is regenerated on save.
func (l *Layer) Disable() {
	l.isDisabling = true
	defer func() { l.isDisabling = false }()
	l.capturesPointer = false

	changed := make(map[string]Editor)
	reset := make(map[string]Editor)
	for _, ed := range slices.Clone(l.editors) {
		b := ed.GetBase()
		b.Disable()
		if b.elementID == "" {
			continue
		}
		if _, ok := ed.Serialize(false); ok {
			changed[b.elementID] = ed
			continue
		}
		reset[b.elementID] = ed
		if a := l.staticAnnotation(b.elementID); a != nil {
			a.Hidden = false
		}
		ed.Remove()
	}

	for _, a := range l.static {
		if !a.Editable || l.ui.IsDeletedAnnotationElement(a.ID) {
			continue
		}
		if ed, ok := reset[a.ID]; ok {
			showEditor(ed, false)
			a.Hidden = false
			continue
		}
		if ed, ok := changed[a.ID]; ok {
			l.ui.AddChangedExistingAnnotation(ed)
			showEditor(ed, false)
		}
		a.Hidden = false
	}

	l.cleanup()
	if l.IsEmpty() {
		l.hidden = true
	}
	l.textSelection = false
	l.staticPointer = true
}

// Add places an editor on the layer.
func (l *Layer) Add(ed Editor) {
	b := ed.GetBase()
	if b.parent == l && b.attached {
		return
	}
	l.changeParent(ed)
	l.ui.AddEditor(ed)
	l.attach(ed)
	if !b.attached {
		ed.Render()
		b.attached = true
	}
	b.FixAndSetPosition(b.Rotation)
	ed.OnceAdded()
	l.ui.AddToAnnotationStorage(ed)
}

// attach registers ed with the layer.
func (l *Layer) attach(ed Editor) {
	if !slices.Contains(l.editors, ed) {
		l.editors = append(l.editors, ed)
	}
	if id := ed.GetBase().elementID; id != "" && l.ui.IsDeletedAnnotationElement(id) {
		l.ui.RemoveDeletedAnnotationElement(ed)
	}
}

// Detach removes ed from the layer without removing it from the UI
// manager.  Detaching the editor of an existing annotation marks the
// annotation as deleted.
func (l *Layer) Detach(ed Editor) {
	l.editors = slices.DeleteFunc(l.editors, func(x Editor) bool { return x == ed })
	if !l.isDisabling && ed.GetBase().elementID != "" {
		l.ui.AddDeletedAnnotationElement(ed)
	}
}

// Remove removes ed from the layer and from the UI manager.
func (l *Layer) Remove(ed Editor) {
	l.Detach(ed)
	l.ui.RemoveEditor(ed)
	b := ed.GetBase()
	b.attached = false
	b.selected = false
	if !l.isCleaningUp {
		l.AddInkEditorIfNeeded(false)
	}
}

// changeParent moves ed onto this layer.  If the editor replaces an
// existing annotation on another page, the existing annotation is deleted
// and the editor becomes a new annotation.
func (l *Layer) changeParent(ed Editor) {
	b := ed.GetBase()
	if b.parent == l {
		return
	}
	if b.parent != nil && b.elementID != "" {
		l.ui.AddDeletedAnnotationElement(ed)
		l.ui.storage.SetValue(l.ui.GetID(), annotation.RawValue(
			annotation.NewTombstone(b.elementID, b.PageIndex)))
		b.elementID = ""
		b.initial = nil
	}
	l.attach(ed)
	if b.parent != nil {
		b.parent.Detach(ed)
	}
	b.setParent(l)
}

// MoveEditorIn moves an editor from another page onto this layer.
func (l *Layer) MoveEditorIn(ed Editor) {
	wasAttached := ed.GetBase().attached
	l.changeParent(ed)
	ed.GetBase().attached = wasAttached
}

// AddOrRebuild adds ed to the layer, or restores it if it was removed
// before.
func (l *Layer) AddOrRebuild(ed Editor) {
	b := ed.GetBase()
	if b.NeedsToBeRebuilt() {
		if b.parent == nil {
			b.setParent(l)
		}
		ed.Rebuild()
		showEditor(ed, true)
	} else {
		l.Add(ed)
	}
}

// AddUndoableEditor records the creation of ed as an undoable command.
func (l *Layer) AddUndoableEditor(ed Editor) {
	l.ui.AddCommands(command.Cmd{
		Do:   func() { l.ui.Rebuild(ed) },
		Undo: func() { ed.Remove() },
	})
}

// CreateAndAddNewEditor creates an editor for the current mode at the
// position of ev.
func (l *Layer) CreateAndAddNewEditor(ev PointerEvent, isCentered bool) Editor {
	return l.createAndAdd(Params{X: ev.X, Y: ev.Y, IsCentered: isCentered})
}

func (l *Layer) createAndAdd(p Params) Editor {
	t := annotation.Type(l.ui.mode)
	if p.ID == "" {
		p.ID = l.ui.GetID()
	}
	ed, err := newEditor(t, l, p)
	if err != nil {
		pdfview.Logger().Debug("no editor created", "mode", l.ui.mode, "error", err)
		return nil
	}
	l.Add(ed)
	return ed
}

// AddNewEditor creates an editor in the center of the layer.
func (l *Layer) AddNewEditor() Editor {
	w, h := l.Size()
	return l.CreateAndAddNewEditor(PointerEvent{X: w / 2, Y: h / 2}, true)
}

// PasteEditor switches to mode and creates a centered editor from p.
func (l *Layer) PasteEditor(mode Mode, p Params) Editor {
	l.ui.UpdateMode(mode, "", false)
	w, h := l.Size()
	p.X, p.Y, p.IsCentered = w/2, h/2, true
	return l.createAndAdd(p)
}

// HighlightSelection creates a highlight for the given selection boxes,
// which are given as fractions of the page size.
func (l *Layer) HighlightSelection(boxes []outline.Box) Editor {
	if len(boxes) == 0 {
		return nil
	}
	f, ok := Lookup(annotation.Highlight)
	if !ok {
		return nil
	}
	ed := f.New(l, Params{ID: l.ui.GetID(), Boxes: boxes})
	l.Add(ed)
	return ed
}

// PointerDown handles a pointer press on the layer.
func (l *Layer) PointerDown(ev PointerEvent) {
	if l.ui.mode == ModeHighlight {
		l.textSelection = true
	}
	if l.ui.mode == ModeInk && ev.Button == 0 {
		if ink := l.inkEditor(); ink != nil {
			l.drawing = ink
			ink.StartPath(ev.X, ev.Y)
		}
		return
	}
	if l.hadPointerDown {
		l.hadPointerDown = false
		return
	}
	if ev.Button != 0 || (ev.Ctrl && l.ui.settings.IsMac) || ev.OnEditor {
		return
	}
	l.hadPointerDown = true
	active := l.ui.GetActive()
	l.allowClick = active == nil || active.IsEmpty()
	if active != nil {
		// a click outside of the active editor ends editing
		active.GetBase().CommitOrRemove()
	}
}

// PointerMove handles pointer movement while a button is pressed.
func (l *Layer) PointerMove(ev PointerEvent) {
	if l.drawing != nil {
		l.drawing.AddPoint(ev.X, ev.Y)
	}
}

// PointerUp handles the release of a pointer.  A click on an empty part of
// the layer creates a new editor, unless an editor was being edited.
func (l *Layer) PointerUp(ev PointerEvent) {
	if l.drawing != nil {
		l.drawing.EndPath()
		l.drawing = nil
		return
	}
	if ev.Button != 0 || (ev.Ctrl && l.ui.settings.IsMac) || ev.OnEditor {
		return
	}
	if !l.hadPointerDown {
		return
	}
	l.hadPointerDown = false
	if !l.allowClick {
		l.allowClick = true
		return
	}
	if l.ui.mode == ModeStamp {
		l.ui.UnselectAll()
		return
	}
	if !l.clickEnabled {
		return
	}
	if f, ok := Lookup(annotation.Type(l.ui.mode)); !ok || !f.CanCreateOnClick {
		return
	}
	l.CreateAndAddNewEditor(ev, false)
}

// inkEditor returns the ink editor which receives new strokes.
func (l *Layer) inkEditor() *InkEditor {
	if ink, ok := l.ui.GetActive().(*InkEditor); ok && ink.parent == l && !ink.committed {
		return ink
	}
	for _, ed := range l.editors {
		if ink, ok := ed.(*InkEditor); ok && !ink.committed {
			return ink
		}
	}
	l.AddInkEditorIfNeeded(true)
	for _, ed := range l.editors {
		if ink, ok := ed.(*InkEditor); ok && !ink.committed {
			return ink
		}
	}
	return nil
}

// Update changes the zoom factor and the rotation of the page view.
func (l *Layer) Update(scale float64, rotation int) {
	l.ui.CommitOrRemove()
	l.cleanup()
	if scale > 0 && scale != l.scale {
		for _, ed := range l.editors {
			ed.OnScaleChanging()
		}
		l.scale = scale
	}
	l.rotation = normRotation(rotation)
	l.AddInkEditorIfNeeded(false)
}

// cleanup removes all empty editors.
func (l *Layer) cleanup() {
	l.isCleaningUp = true
	defer func() { l.isCleaningUp = false }()
	for _, ed := range slices.Clone(l.editors) {
		if ed.IsEmpty() {
			ed.Remove()
		}
	}
}

// Destroy detaches all editors and unregisters the layer.
func (l *Layer) Destroy() {
	if active := l.ui.GetActive(); active != nil && active.GetBase().parent == l {
		l.ui.CommitOrRemove()
		l.ui.SetActiveEditor(nil)
	}
	for _, ed := range l.editors {
		b := ed.GetBase()
		b.parent = nil
		b.attached = false
	}
	l.editors = nil
	l.drawing = nil
	l.ui.RemoveLayer(l)
}

// showEditor shows or hides an editor, using the most specific
// implementation.
func showEditor(ed Editor, visible bool) {
	if s, ok := ed.(interface{ Show(bool) }); ok {
		s.Show(visible)
	}
}
