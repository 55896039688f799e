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
	"maps"
	"slices"
	"time"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
	"seehuhn.de/go/pdfview/keyboard"
	"seehuhn.de/go/pdfview/outline"
	"seehuhn.de/go/pdfview/render"
)

// Distances for moving editors with the arrow keys, in PDF units.
const (
	TranslateSmall = 1
	TranslateBig   = 10
)

// TranslateDelay is the time after the last arrow key press until the
// accumulated movement is recorded as a single undoable command.
const TranslateDelay = time.Second

// typeTranslate marks the commands of keyboard movements.
const typeTranslate command.Type = 1000

// UIManager coordinates the editors of all pages of a document.
//
// The UIManager and all editors and layers attached to it must only be
// used from a single goroutine.  If a scheduler is set, this must be the
// goroutine running the scheduler.
type UIManager struct {
	storage  *annotation.Storage
	settings Settings
	clip     Clipboard
	bus      *Bus
	sched    render.Scheduler
	cmds     *command.Manager
	keys     *keyboard.Manager[*UIManager]
	images   *imageManager

	nextID      int
	mode        Mode
	isEnabled   bool
	currentPage int

	layers     map[int]*Layer
	allEditors map[string]Editor
	active     Editor

	// selected holds the selection in the order the editors were
	// selected.
	selected []Editor

	deletedElements  map[string]bool
	changedExisting  map[string]string
	dragging         []dragState
	translation      *translation
	previousStates   EditorStates
	editingListeners bool
}

type dragState struct {
	editor         Editor
	savedX, savedY float64
	savedPage      int
	newX, newY     float64
	newPage        int
}

type translation struct {
	editors []Editor
	x, y    float64
	timer   render.Timer
}

// NewUIManager creates a UIManager.
// If clip is nil, a [MemoryClipboard] is used.  The bus may be nil.
func NewUIManager(storage *annotation.Storage, settings Settings, clip Clipboard, bus *Bus) *UIManager {
	if storage == nil {
		storage = annotation.NewStorage()
	}
	if clip == nil {
		clip = &MemoryClipboard{}
	}
	u := &UIManager{
		storage:         storage,
		settings:        settings,
		clip:            clip,
		bus:             bus,
		cmds:            command.New(settings.UndoSize),
		images:          newImageManager(),
		mode:            ModeNone,
		layers:          make(map[int]*Layer),
		allEditors:      make(map[string]Editor),
		deletedElements: make(map[string]bool),
		changedExisting: make(map[string]string),
		previousStates:  EditorStates{IsEmpty: true},
	}
	u.keys = keyboard.New(shortcuts, settings.IsMac)
	return u
}

// SetScheduler sets the scheduler used to delay the recording of keyboard
// movements.  Without a scheduler, consecutive movements are merged into
// the most recent command.
func (u *UIManager) SetScheduler(s render.Scheduler) {
	u.sched = s
}

// Storage returns the annotation storage.
func (u *UIManager) Storage() *annotation.Storage {
	return u.storage
}

// Settings returns the current default properties.
func (u *UIManager) Settings() Settings {
	return u.settings
}

// GetID returns a new editor id.
func (u *UIManager) GetID() string {
	id := fmt.Sprintf("pdfview_editor_%d", u.nextID)
	u.nextID++
	return id
}

// GetMode returns the current editing mode.
func (u *UIManager) GetMode() Mode {
	return u.mode
}

// SetCurrentPage sets the page shown in the viewer.  New editors from the
// keyboard and pasted editors are placed on this page.
func (u *UIManager) SetCurrentPage(pageIndex int) {
	u.currentPage = pageIndex
}

// CurrentLayer returns the layer of the current page, or nil.
func (u *UIManager) CurrentLayer() *Layer {
	return u.layers[u.currentPage]
}

// AddLayer registers a layer.
func (u *UIManager) AddLayer(l *Layer) {
	u.layers[l.pageIndex] = l
	if u.isEnabled {
		l.Enable()
	} else {
		l.Disable()
	}
}

// RemoveLayer unregisters a layer.
func (u *UIManager) RemoveLayer(l *Layer) {
	if u.layers[l.pageIndex] == l {
		delete(u.layers, l.pageIndex)
	}
}

// GetLayer returns the layer for a page, or nil.
func (u *UIManager) GetLayer(pageIndex int) *Layer {
	return u.layers[pageIndex]
}

// AddEditor registers an editor.
func (u *UIManager) AddEditor(ed Editor) {
	u.allEditors[ed.ID()] = ed
}

// GetEditor returns the editor with the given id, or nil.
func (u *UIManager) GetEditor(id string) Editor {
	return u.allEditors[id]
}

// RemoveEditor unregisters an editor.  The editor is also removed from the
// annotation storage, unless it stands for a deleted existing annotation.
func (u *UIManager) RemoveEditor(ed Editor) {
	delete(u.allEditors, ed.ID())
	u.Unselect(ed)
	if id := ed.GetBase().elementID; id == "" || !u.deletedElements[id] {
		u.storage.Remove(ed.ID())
	}
}

// editorsOnPage returns the registered editors of a page, ordered by id.
func (u *UIManager) editorsOnPage(pageIndex int) []Editor {
	var res []Editor
	for _, id := range slices.Sorted(maps.Keys(u.allEditors)) {
		if ed := u.allEditors[id]; ed.GetBase().PageIndex == pageIndex {
			res = append(res, ed)
		}
	}
	return res
}

// AddToAnnotationStorage stores a non-empty editor in the annotation
// storage, if it is not stored yet.
func (u *UIManager) AddToAnnotationStorage(ed Editor) {
	if ed.IsEmpty() || u.storage.Has(ed.ID()) {
		return
	}
	u.storage.SetValue(ed.ID(), annotation.EditorValue(ed))
	u.bus.Dispatch(AnnotationChanged{ID: ed.ID()})
}

// AddDeletedAnnotationElement marks the existing annotation of ed as
// deleted.
func (u *UIManager) AddDeletedAnnotationElement(ed Editor) {
	b := ed.GetBase()
	u.deletedElements[b.elementID] = true
	u.AddChangedExistingAnnotation(ed)
	b.Deleted = true
}

// IsDeletedAnnotationElement reports whether the existing annotation with
// the given id has been deleted.
func (u *UIManager) IsDeletedAnnotationElement(id string) bool {
	return u.deletedElements[id]
}

// RemoveDeletedAnnotationElement undoes AddDeletedAnnotationElement.
func (u *UIManager) RemoveDeletedAnnotationElement(ed Editor) {
	b := ed.GetBase()
	delete(u.deletedElements, b.elementID)
	u.RemoveChangedExistingAnnotation(ed)
	b.Deleted = false
}

// AddChangedExistingAnnotation records that the existing annotation of ed
// must be regenerated when the document is saved.
func (u *UIManager) AddChangedExistingAnnotation(ed Editor) {
	if id := ed.GetBase().elementID; id != "" {
		u.changedExisting[id] = ed.ID()
	}
}

// RemoveChangedExistingAnnotation undoes AddChangedExistingAnnotation.
func (u *UIManager) RemoveChangedExistingAnnotation(ed Editor) {
	delete(u.changedExisting, ed.GetBase().elementID)
}

// ChangedExistingAnnotations maps the ids of changed existing annotations
// to the ids of the editors which replace them.
func (u *UIManager) ChangedExistingAnnotations() map[string]string {
	return maps.Clone(u.changedExisting)
}

// SetActiveEditor sets the editor which is being edited.
func (u *UIManager) SetActiveEditor(ed Editor) {
	if u.active == ed {
		return
	}
	u.active = ed
	if ed != nil {
		u.dispatchUpdateUI(ed.PropertiesToUpdate())
	}
}

// GetActive returns the editor which is being edited, or nil.
func (u *UIManager) GetActive() Editor {
	return u.active
}

// IsActive reports whether ed is being edited.
func (u *UIManager) IsActive(ed Editor) bool {
	return u.active == ed
}

// CommitOrRemove finishes editing the active editor.
func (u *UIManager) CommitOrRemove() {
	if u.active != nil {
		u.active.GetBase().CommitOrRemove()
	}
}

// UpdateToolbar asks the host to switch to a different mode.
func (u *UIManager) UpdateToolbar(mode Mode) {
	if mode == u.mode {
		return
	}
	u.bus.Dispatch(SwitchAnnotationEditorMode{Mode: mode})
}

// UpdateMode changes the editing mode.  If editID is not empty, the
// editor of the existing annotation with this id is selected and opened
// for editing.  If isFromKeyboard is set, a new editor is created in the
// center of the current page.
func (u *UIManager) UpdateMode(mode Mode, editID string, isFromKeyboard bool) {
	if u.mode == mode {
		return
	}
	u.mode = mode
	u.bus.Dispatch(ModeChanged{Mode: mode})
	if mode == ModeNone || mode == ModeDisable {
		u.setEditingState(false)
		u.disableAll()
		return
	}
	u.setEditingState(true)
	u.enableAll()
	u.UnselectAll()
	for _, pageIndex := range slices.Sorted(maps.Keys(u.layers)) {
		u.layers[pageIndex].UpdateMode(mode)
	}
	if editID == "" {
		if isFromKeyboard {
			u.AddNewEditorFromKeyboard()
		}
		return
	}
	for _, ed := range u.allEditors {
		if ed.GetBase().elementID == editID {
			u.SetSelected(ed)
			ed.EnableEditMode()
			break
		}
	}
}

// UpdateParams changes a property of the selected editors, and the
// default for new editors.
func (u *UIManager) UpdateParams(t ParamType, v any) {
	if t == ParamCreate {
		if l := u.CurrentLayer(); l != nil {
			l.AddNewEditor()
		}
		return
	}
	for _, ed := range slices.Clone(u.selected) {
		ed.UpdateParams(t, v)
	}
	u.settings.update(t, v)
}

// AddNewEditorFromKeyboard creates an empty editor in the center of the
// current page, if the current mode allows this.
func (u *UIManager) AddNewEditorFromKeyboard() {
	l := u.CurrentLayer()
	if l == nil {
		return
	}
	f, ok := Lookup(annotation.Type(u.mode))
	if !ok || !f.CanCreateNewEmpty {
		return
	}
	l.AddNewEditor()
}

// HighlightSelection creates a highlight on the given page from the
// boxes of a text selection.
func (u *UIManager) HighlightSelection(pageIndex int, boxes []outline.Box) Editor {
	l := u.layers[pageIndex]
	if l == nil {
		return nil
	}
	if u.mode != ModeHighlight {
		u.UpdateToolbar(ModeHighlight)
		u.UpdateMode(ModeHighlight, "", false)
	}
	return l.HighlightSelection(boxes)
}

func (u *UIManager) enableAll() {
	if u.isEnabled {
		return
	}
	u.isEnabled = true
	for _, pageIndex := range slices.Sorted(maps.Keys(u.layers)) {
		u.layers[pageIndex].Enable()
	}
	for _, ed := range u.allEditors {
		ed.GetBase().Enable()
	}
}

func (u *UIManager) disableAll() {
	u.UnselectAll()
	if !u.isEnabled {
		return
	}
	u.isEnabled = false
	for _, pageIndex := range slices.Sorted(maps.Keys(u.layers)) {
		u.layers[pageIndex].Disable()
	}
	for _, ed := range u.allEditors {
		ed.GetBase().Disable()
	}
}

// IsEnabled reports whether editing is enabled.
func (u *UIManager) IsEnabled() bool {
	return u.isEnabled
}

// Editors returns all registered editors, ordered by id.
func (u *UIManager) Editors() []Editor {
	res := make([]Editor, 0, len(u.allEditors))
	for _, id := range slices.Sorted(maps.Keys(u.allEditors)) {
		res = append(res, u.allEditors[id])
	}
	return res
}

// IsEmpty reports whether there is no editor with content.
func (u *UIManager) IsEmpty() bool {
	switch len(u.allEditors) {
	case 0:
		return true
	case 1:
		for _, ed := range u.allEditors {
			return ed.IsEmpty()
		}
	}
	return false
}

// --- selection ---

// SetSelected makes ed the only selected editor.
func (u *UIManager) SetSelected(ed Editor) {
	for _, other := range u.selected {
		if other != ed {
			other.GetBase().Unselect()
		}
	}
	u.selected = append(u.selected[:0], ed)
	ed.GetBase().Select()
	u.dispatchUpdateUI(ed.PropertiesToUpdate())
	u.dispatchUpdateStates(func(s *EditorStates) { s.HasSelectedEditor = true })
}

// ToggleSelected adds ed to the selection, or removes it if it is already
// selected.
func (u *UIManager) ToggleSelected(ed Editor) {
	if u.IsSelected(ed) {
		u.Unselect(ed)
		return
	}
	u.selected = append(u.selected, ed)
	ed.GetBase().Select()
	u.dispatchUpdateUI(ed.PropertiesToUpdate())
	u.dispatchUpdateStates(func(s *EditorStates) { s.HasSelectedEditor = true })
}

// Unselect removes ed from the selection.
func (u *UIManager) Unselect(ed Editor) {
	ed.GetBase().Unselect()
	u.selected = slices.DeleteFunc(u.selected, func(x Editor) bool { return x == ed })
	u.dispatchUpdateStates(func(s *EditorStates) { s.HasSelectedEditor = u.HasSelection() })
}

// IsSelected reports whether ed is selected.
func (u *UIManager) IsSelected(ed Editor) bool {
	return slices.Contains(u.selected, ed)
}

// HasSelection reports whether any editor is selected.
func (u *UIManager) HasSelection() bool {
	return len(u.selected) > 0
}

// SelectedEditors returns the selected editors, in the order they were
// selected.
func (u *UIManager) SelectedEditors() []Editor {
	return slices.Clone(u.selected)
}

func (u *UIManager) selectEditors(editors []Editor) {
	for _, ed := range u.selected {
		ed.GetBase().Unselect()
	}
	u.selected = u.selected[:0]
	for _, ed := range editors {
		if ed.IsEmpty() {
			continue
		}
		u.selected = append(u.selected, ed)
		ed.GetBase().Select()
	}
	u.dispatchUpdateStates(func(s *EditorStates) { s.HasSelectedEditor = u.HasSelection() })
}

// SelectAll selects all editors.
func (u *UIManager) SelectAll() {
	for _, ed := range u.selected {
		ed.Commit()
	}
	u.selectEditors(u.Editors())
}

// UnselectAll clears the selection.  If an editor is being edited, it is
// committed instead, and the selection is kept unless editing is off.
func (u *UIManager) UnselectAll() {
	if u.active != nil {
		u.active.GetBase().CommitOrRemove()
		if u.mode != ModeNone && u.mode != ModeDisable {
			return
		}
	}
	if !u.HasSelection() {
		return
	}
	for _, ed := range u.selected {
		ed.GetBase().Unselect()
	}
	u.selected = u.selected[:0]
	u.dispatchUpdateStates(func(s *EditorStates) { s.HasSelectedEditor = false })
}

// updateUI sends the properties of ed to the host, if ed is the most
// recently selected editor.
func (u *UIManager) updateUI(ed Editor) {
	if n := len(u.selected); n > 0 && u.selected[n-1] == ed {
		u.dispatchUpdateUI(ed.PropertiesToUpdate())
	}
}

// --- undo and redo ---

// AddCommands records a command in the undo log.
func (u *UIManager) AddCommands(c command.Cmd) {
	if u.translation != nil && c.Type != typeTranslate {
		u.flushTranslation()
	}
	u.cmds.Add(c)
	u.dispatchUpdateStates(func(s *EditorStates) {
		s.HasSomethingToUndo = true
		s.HasSomethingToRedo = false
		s.IsEmpty = u.IsEmpty()
	})
}

// Undo reverts the most recent command.
func (u *UIManager) Undo() {
	u.flushTranslation()
	u.cmds.Undo()
	u.dispatchUpdateStates(func(s *EditorStates) {
		s.HasSomethingToUndo = u.cmds.HasSomethingToUndo()
		s.HasSomethingToRedo = true
		s.IsEmpty = u.IsEmpty()
	})
}

// Redo re-applies the most recently reverted command.
func (u *UIManager) Redo() {
	u.flushTranslation()
	u.cmds.Redo()
	u.dispatchUpdateStates(func(s *EditorStates) {
		s.HasSomethingToUndo = true
		s.HasSomethingToRedo = u.cmds.HasSomethingToRedo()
		s.IsEmpty = u.IsEmpty()
	})
}

// HasSomethingToUndo reports whether Undo would do anything.
func (u *UIManager) HasSomethingToUndo() bool {
	return u.cmds.HasSomethingToUndo()
}

// HasSomethingToRedo reports whether Redo would do anything.
func (u *UIManager) HasSomethingToRedo() bool {
	return u.cmds.HasSomethingToRedo()
}

// Rebuild restores an editor which was removed.
func (u *UIManager) Rebuild(ed Editor) {
	b := ed.GetBase()
	if b.parent != nil {
		b.parent.AddOrRebuild(ed)
		return
	}
	if l := u.layers[b.PageIndex]; l != nil {
		l.changeParent(ed)
		l.AddOrRebuild(ed)
		return
	}
	u.AddEditor(ed)
	u.AddToAnnotationStorage(ed)
	ed.Rebuild()
}

func (u *UIManager) addEditorToLayer(ed Editor) {
	if l := u.layers[ed.GetBase().PageIndex]; l != nil {
		l.AddOrRebuild(ed)
		return
	}
	u.AddEditor(ed)
	u.AddToAnnotationStorage(ed)
}

// Delete removes the selected editors.
func (u *UIManager) Delete() {
	u.CommitOrRemove()
	if !u.HasSelection() {
		return
	}
	editors := slices.Clone(u.selected)
	u.AddCommands(command.Cmd{
		Do: func() {
			for _, ed := range editors {
				ed.Remove()
			}
		},
		Undo: func() {
			for _, ed := range editors {
				u.addEditorToLayer(ed)
			}
		},
		MustExec: true,
	})
}

// --- clipboard ---

// Copy stores the selected editors in dst.  The return value reports
// whether anything was copied.
func (u *UIManager) Copy(dst ClipboardData) bool {
	u.CommitOrRemove()
	if !u.HasSelection() {
		return false
	}
	var recs []annotation.Record
	for _, ed := range u.selected {
		if rec, ok := ed.Serialize(true); ok {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		return false
	}
	data, err := annotation.MarshalRecords(recs)
	if err != nil {
		pdfview.Logger().Warn("copy failed", "error", err)
		return false
	}
	dst[MimeType] = string(data)
	return true
}

// Cut copies the selected editors to dst and deletes them.
func (u *UIManager) Cut(dst ClipboardData) bool {
	ok := u.Copy(dst)
	u.Delete()
	return ok
}

// Paste creates editors from clipboard data.  Images are pasted as
// stamps.  The return value is false if src contains nothing the editors
// can use; the host then handles the data in its usual way.
func (u *UIManager) Paste(src ClipboardData) bool {
	l := u.CurrentLayer()
	if l == nil {
		return false
	}
	for _, mime := range slices.Sorted(maps.Keys(src)) {
		if mime == MimeType {
			continue
		}
		for _, t := range slices.Sorted(maps.Keys(registry)) {
			f := registry[t]
			if f.PasteMIME != nil && f.PasteMIME(mime) {
				l.PasteEditor(Mode(t), Params{BitmapData: []byte(src[mime])})
				return true
			}
		}
	}

	data, ok := src[MimeType]
	if !ok || data == "" {
		return false
	}
	recs, err := annotation.UnmarshalRecords([]byte(data))
	if err != nil {
		pdfview.Logger().Warn("paste failed", "error", err)
		return false
	}

	u.UnselectAll()
	var editors []Editor
	for _, rec := range recs {
		ed, err := Deserialize(rec, l, u)
		if err != nil {
			pdfview.Logger().Warn("paste failed", "error", err)
			return false
		}
		editors = append(editors, ed)
	}
	u.AddCommands(command.Cmd{
		Do: func() {
			for _, ed := range editors {
				u.addEditorToLayer(ed)
			}
			u.selectEditors(editors)
		},
		Undo: func() {
			for _, ed := range editors {
				ed.Remove()
			}
		},
		MustExec: true,
	})
	return true
}

// CopyToClipboard copies the selected editors to the clipboard.
func (u *UIManager) CopyToClipboard() error {
	data := ClipboardData{}
	if !u.Copy(data) {
		return nil
	}
	return u.clip.Write(data)
}

// CutToClipboard moves the selected editors to the clipboard.
func (u *UIManager) CutToClipboard() error {
	data := ClipboardData{}
	if !u.Cut(data) {
		return nil
	}
	return u.clip.Write(data)
}

// PasteFromClipboard pastes the content of the clipboard.
func (u *UIManager) PasteFromClipboard() (bool, error) {
	data, err := u.clip.Read()
	if err != nil {
		return false, err
	}
	return u.Paste(data), nil
}

// --- moving editors ---

// SetUpDragSession records the positions of the selected editors before a
// drag operation.
func (u *UIManager) SetUpDragSession() {
	if !u.HasSelection() {
		return
	}
	u.dragging = u.dragging[:0]
	for _, ed := range u.selected {
		b := ed.GetBase()
		u.dragging = append(u.dragging, dragState{
			editor:    ed,
			savedX:    b.X,
			savedY:    b.Y,
			savedPage: b.PageIndex,
			newPage:   -1,
		})
	}
}

// DragSelectedEditors moves the dragged editors by (tx, ty) screen
// pixels.
func (u *UIManager) DragSelectedEditors(tx, ty float64) {
	for _, d := range u.dragging {
		d.editor.GetBase().Drag(tx, ty)
	}
}

// EndDragSession finishes a drag operation.  If any editor has moved, the
// move is recorded as a single undoable command and true is returned.
func (u *UIManager) EndDragSession() bool {
	if len(u.dragging) == 0 {
		return false
	}
	states := slices.Clone(u.dragging)
	u.dragging = u.dragging[:0]

	moved := false
	for i := range states {
		d := &states[i]
		b := d.editor.GetBase()
		d.newX, d.newY, d.newPage = b.X, b.Y, b.PageIndex
		moved = moved || d.newX != d.savedX || d.newY != d.savedY || d.newPage != d.savedPage
	}
	if !moved {
		return false
	}

	move := func(ed Editor, x, y float64, pageIndex int) {
		if _, ok := u.allEditors[ed.ID()]; !ok {
			return
		}
		b := ed.GetBase()
		if l := u.layers[pageIndex]; l != nil {
			b.setParentAndPosition(l, x, y)
		} else {
			b.PageIndex = pageIndex
			b.X, b.Y = x, y
		}
	}
	u.AddCommands(command.Cmd{
		Do: func() {
			for _, d := range states {
				move(d.editor, d.newX, d.newY, d.newPage)
			}
		},
		Undo: func() {
			for _, d := range states {
				move(d.editor, d.savedX, d.savedY, d.savedPage)
			}
		},
		MustExec: true,
	})
	return true
}

// TranslateSelectedEditors moves the selected editors by (x, y) PDF
// units.  Consecutive movements are recorded as one undoable command,
// once no further movement has happened for TranslateDelay.
func (u *UIManager) TranslateSelectedEditors(x, y float64, noCommit bool) {
	if !noCommit {
		u.CommitOrRemove()
	}
	if !u.HasSelection() {
		return
	}
	editors := slices.Clone(u.selected)
	for _, ed := range editors {
		ed.GetBase().TranslateInPage(x, y)
	}

	tr := u.translation
	newRun := tr == nil || !slices.Equal(tr.editors, editors)
	if newRun {
		u.flushTranslation()
		tr = &translation{editors: editors}
		u.translation = tr
	}
	tr.x += x
	tr.y += y

	if u.sched != nil {
		if tr.timer != nil {
			tr.timer.Stop()
		}
		tr.timer = u.sched.After(TranslateDelay, u.flushTranslation)
		return
	}

	c := u.translateCommand(tr)
	c.OverwriteIfSameType = !newRun
	u.AddCommands(c)
}

// flushTranslation records the pending keyboard movement.
func (u *UIManager) flushTranslation() {
	tr := u.translation
	if tr == nil {
		return
	}
	u.translation = nil
	if tr.timer == nil {
		// without a scheduler, the movement is already recorded
		return
	}
	tr.timer.Stop()
	if tr.x == 0 && tr.y == 0 {
		return
	}
	u.AddCommands(u.translateCommand(tr))
}

func (u *UIManager) translateCommand(tr *translation) command.Cmd {
	editors, totalX, totalY := tr.editors, tr.x, tr.y
	apply := func(dx, dy float64) {
		for _, ed := range editors {
			if _, ok := u.allEditors[ed.ID()]; ok {
				ed.GetBase().TranslateInPage(dx, dy)
			}
		}
	}
	return command.Cmd{
		Do:   func() { apply(totalX, totalY) },
		Undo: func() { apply(-totalX, -totalY) },
		Type: typeTranslate,
	}
}

// --- keyboard ---

func (u *UIManager) hasSomethingToControl() bool {
	return u.active != nil || u.HasSelection()
}

func (u *UIManager) isEditorHandlingKeyboard() bool {
	handles := func(ed Editor) bool {
		h, ok := ed.(interface{ handlesKeyboard() bool })
		return ok && h.handlesKeyboard()
	}
	if u.active != nil && handles(u.active) {
		return true
	}
	return len(u.selected) == 1 && handles(u.selected[0])
}

// Keydown handles a key press.  The return value reports whether the key
// was used by a shortcut.
func (u *UIManager) Keydown(ev keyboard.KeyEvent) bool {
	if !u.editingListeners || u.isEditorHandlingKeyboard() {
		return false
	}
	handled, _ := u.keys.Exec(u, ev)
	return handled
}

func translateBy(dx, dy float64) func(*UIManager, keyboard.KeyEvent) {
	return func(u *UIManager, _ keyboard.KeyEvent) {
		u.TranslateSelectedEditors(dx, dy, false)
	}
}

func canControl(u *UIManager, _ keyboard.KeyEvent) bool {
	return u.hasSomethingToControl()
}

var shortcuts = []keyboard.Shortcut[*UIManager]{
	{
		Keys:   []string{"ctrl+a", "mac+meta+a"},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.SelectAll() },
	},
	{
		Keys:   []string{"ctrl+z", "mac+meta+z"},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.Undo() },
	},
	{
		Keys:   []string{"ctrl+y", "ctrl+shift+z", "mac+meta+shift+z", "ctrl+shift+Z", "mac+meta+shift+Z"},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.Redo() },
	},
	{
		Keys: []string{
			"Backspace", "alt+Backspace", "ctrl+Backspace", "shift+Backspace",
			"mac+Backspace", "mac+alt+Backspace", "mac+ctrl+Backspace",
			"Delete", "ctrl+Delete", "shift+Delete", "mac+Delete",
		},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.Delete() },
	},
	{
		Keys:   []string{"Enter", "mac+Enter", " ", "mac+ "},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.AddNewEditorFromKeyboard() },
		Checker: func(u *UIManager, _ keyboard.KeyEvent) bool {
			return u.CurrentLayer() != nil
		},
	},
	{
		Keys:   []string{"Escape", "mac+Escape"},
		Action: func(u *UIManager, _ keyboard.KeyEvent) { u.UnselectAll() },
	},
	{Keys: []string{"ArrowLeft", "mac+ArrowLeft"}, Action: translateBy(-TranslateSmall, 0), Checker: canControl},
	{Keys: []string{"ctrl+ArrowLeft", "mac+shift+ArrowLeft"}, Action: translateBy(-TranslateBig, 0), Checker: canControl},
	{Keys: []string{"ArrowRight", "mac+ArrowRight"}, Action: translateBy(TranslateSmall, 0), Checker: canControl},
	{Keys: []string{"ctrl+ArrowRight", "mac+shift+ArrowRight"}, Action: translateBy(TranslateBig, 0), Checker: canControl},
	{Keys: []string{"ArrowUp", "mac+ArrowUp"}, Action: translateBy(0, -TranslateSmall), Checker: canControl},
	{Keys: []string{"ctrl+ArrowUp", "mac+shift+ArrowUp"}, Action: translateBy(0, -TranslateBig), Checker: canControl},
	{Keys: []string{"ArrowDown", "mac+ArrowDown"}, Action: translateBy(0, TranslateSmall), Checker: canControl},
	{Keys: []string{"ctrl+ArrowDown", "mac+shift+ArrowDown"}, Action: translateBy(0, TranslateBig), Checker: canControl},
}

// --- events ---

func (u *UIManager) setEditingState(isEditing bool) {
	u.editingListeners = isEditing
	if !isEditing {
		u.dispatchUpdateStates(func(s *EditorStates) { s.IsEditing = false })
		return
	}
	u.dispatchUpdateStates(func(s *EditorStates) {
		s.IsEditing = u.mode != ModeNone
		s.IsEmpty = u.IsEmpty()
		s.HasSomethingToUndo = u.cmds.HasSomethingToUndo()
		s.HasSomethingToRedo = u.cmds.HasSomethingToRedo()
		s.HasSelectedEditor = false
	})
}

// dispatchUpdateStates applies update to the editor states and informs
// the host if anything has changed.
func (u *UIManager) dispatchUpdateStates(update func(*EditorStates)) {
	s := u.previousStates
	update(&s)
	if s == u.previousStates {
		return
	}
	u.previousStates = s
	u.bus.Dispatch(EditingStateChanged{States: s})
}

func (u *UIManager) dispatchUpdateUI(params []ParamValue) {
	if len(params) == 0 {
		return
	}
	u.bus.Dispatch(ParamsChanged{Params: params})
}

// States returns the editor states last sent to the host.
func (u *UIManager) States() EditorStates {
	return u.previousStates
}

// Destroy releases all layers and editors.
func (u *UIManager) Destroy() {
	if u.translation != nil && u.translation.timer != nil {
		u.translation.timer.Stop()
	}
	u.translation = nil
	for _, l := range slices.Collect(maps.Values(u.layers)) {
		l.Destroy()
	}
	clear(u.layers)
	clear(u.allEditors)
	u.active = nil
	u.selected = nil
	u.dragging = nil
	u.cmds.Destroy()
}
