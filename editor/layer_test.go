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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfview/annotation"
)

func newStaticLayer(t *testing.T) (*UIManager, *Layer, *StaticAnnotation) {
	t.Helper()
	ui, l := newTestLayer(t)
	rec := &annotation.FreeTextRecord{
		Common:   annotation.Common{Rect: [4]float64{100, 600, 200, 650}},
		FontSize: 10,
		Value:    "Hi",
		Color:    annotation.Color{0, 0, 0xff},
	}
	a := &StaticAnnotation{ID: "25R", Record: rec, Editable: true}
	l.SetStaticAnnotations([]*StaticAnnotation{a})
	ui.UpdateMode(ModeFreeText, "", false)
	return ui, l, a
}

func TestLayerEnableExisting(t *testing.T) {
	ui, l, a := newStaticLayer(t)

	eds := l.Editors()
	if len(eds) != 1 {
		t.Fatalf("got %d editors, want 1", len(eds))
	}
	ed := eds[0].(*FreeTextEditor)
	if ed.AnnotationElementID() != "25R" || ed.Text() != "Hi" {
		t.Errorf("editor not created from the annotation: %q, %q",
			ed.AnnotationElementID(), ed.Text())
	}
	if !a.Hidden {
		t.Error("annotation is shown below its editor")
	}
	if _, ok := ed.Serialize(false); ok {
		t.Error("unchanged annotation was serialized")
	}
	if snap := ui.Storage().Serializable(); len(snap.Map) != 0 {
		t.Errorf("unexpected records %v", snap.Map)
	}

	ui.UpdateMode(ModeNone, "", false)
	if n := len(l.Editors()); n != 0 {
		t.Errorf("got %d editors after disabling, want 0", n)
	}
	if a.Hidden {
		t.Error("annotation is still hidden")
	}
	if ui.IsDeletedAnnotationElement("25R") {
		t.Error("disabling deleted the annotation")
	}

	// enabling again creates a new editor
	ui.UpdateMode(ModeFreeText, "", false)
	if n := len(l.Editors()); n != 1 {
		t.Errorf("got %d editors after enabling again, want 1", n)
	}
}

func TestLayerChangedExisting(t *testing.T) {
	ui, l, a := newStaticLayer(t)
	ed := l.Editors()[0].(*FreeTextEditor)
	ed.EnableEditMode()
	ed.SetText("Changed")
	ed.Commit()

	ui.UpdateMode(ModeNone, "", false)
	want := map[string]string{"25R": ed.ID()}
	if d := cmp.Diff(want, ui.ChangedExistingAnnotations()); d != "" {
		t.Errorf("changed annotations mismatch (-want +got):\n%s", d)
	}
	if !ed.IsHidden() || a.Hidden {
		t.Error("wrong visibility after disabling")
	}
	if n := len(l.Editors()); n != 1 {
		t.Errorf("changed editor was removed, %d editors left", n)
	}

	snap := ui.Storage().Serializable()
	rec, ok := snap.Map[ed.ID()].(*annotation.FreeTextRecord)
	if !ok {
		t.Fatalf("no record for the changed annotation: %v", snap.Map)
	}
	if rec.Value != "Changed" || rec.ID != "25R" {
		t.Errorf("unexpected record %+v", rec)
	}

	ui.UpdateMode(ModeFreeText, "", false)
	if len(ui.ChangedExistingAnnotations()) != 0 || ed.IsHidden() {
		t.Error("editor not restored after enabling")
	}
	if n := len(l.Editors()); n != 1 {
		t.Errorf("got %d editors, want 1", n)
	}
}

func TestLayerDeleteExisting(t *testing.T) {
	ui, l, _ := newStaticLayer(t)
	ed := l.Editors()[0]
	ui.SetSelected(ed)
	ui.Delete()

	if !ui.IsDeletedAnnotationElement("25R") {
		t.Fatal("annotation not marked as deleted")
	}
	snap := ui.Storage().Serializable()
	want := map[string]annotation.Record{
		ed.ID(): annotation.NewTombstone("25R", 0),
	}
	if d := cmp.Diff(want, snap.Map); d != "" {
		t.Errorf("records mismatch (-want +got):\n%s", d)
	}

	ui.Undo()
	if ui.IsDeletedAnnotationElement("25R") {
		t.Error("undo did not restore the annotation")
	}
	if snap := ui.Storage().Serializable(); len(snap.Map) != 0 {
		t.Errorf("unexpected records after undo: %v", snap.Map)
	}
}

func TestLayerEditExistingByID(t *testing.T) {
	ui, l := newTestLayer(t)
	rec := &annotation.FreeTextRecord{
		Common:   annotation.Common{Rect: [4]float64{100, 600, 200, 650}},
		FontSize: 10,
		Value:    "Hi",
	}
	l.SetStaticAnnotations([]*StaticAnnotation{{ID: "7R", Record: rec, Editable: true}})
	ui.UpdateMode(ModeFreeText, "7R", false)

	active := ui.GetActive()
	if active == nil || active.GetBase().AnnotationElementID() != "7R" {
		t.Fatal("editor of the annotation is not active")
	}
	if !ui.IsSelected(active) {
		t.Error("editor of the annotation is not selected")
	}
}

func TestLayerClickCreates(t *testing.T) {
	ui, l := newTestLayer(t)
	ui.UpdateMode(ModeFreeText, "", false)

	l.PointerDown(PointerEvent{X: 50, Y: 60})
	l.PointerUp(PointerEvent{X: 50, Y: 60})
	if n := len(l.Editors()); n != 1 {
		t.Fatalf("got %d editors, want 1", n)
	}

	first := l.Editors()[0]

	// the next click removes the empty editor and creates a new one
	l.PointerDown(PointerEvent{X: 300, Y: 300})
	l.PointerUp(PointerEvent{X: 300, Y: 300})
	eds := l.Editors()
	if len(eds) != 1 || eds[0] == first {
		t.Fatalf("got %d editors, want a single new one", len(eds))
	}
	second := eds[0].(*FreeTextEditor)
	second.SetText("keep")

	// with a non-empty editor, a click only ends editing
	l.PointerDown(PointerEvent{X: 400, Y: 400})
	l.PointerUp(PointerEvent{X: 400, Y: 400})
	if n := len(l.Editors()); n != 1 || second.IsInEditMode() || second.Text() != "keep" {
		t.Errorf("got %d editors, text %q", n, second.Text())
	}

	// clicks on editors and with other buttons are ignored
	l.PointerDown(PointerEvent{X: 50, Y: 60, OnEditor: true})
	l.PointerUp(PointerEvent{X: 50, Y: 60, OnEditor: true})
	l.PointerDown(PointerEvent{X: 50, Y: 60, Button: 2})
	l.PointerUp(PointerEvent{X: 50, Y: 60, Button: 2})
	if n := len(l.Editors()); n != 1 {
		t.Errorf("got %d editors, want 1", n)
	}
}

func TestLayerModes(t *testing.T) {
	ui, l := newTestLayer(t)
	if !l.PointerEventsPassThrough() || l.CapturesPointerEvents() {
		t.Error("layer captures pointer events while editing is off")
	}

	ui.UpdateMode(ModeHighlight, "", false)
	if !l.TextSelectionEnabled() || l.PointerEventsPassThrough() {
		t.Error("highlight mode does not select text")
	}

	ui.UpdateMode(ModeInk, "", false)
	if l.TextSelectionEnabled() || !l.CapturesPointerEvents() {
		t.Error("ink mode does not capture the pointer")
	}
}

func TestLayerRebuildOnNewLayer(t *testing.T) {
	ui, l := newTestLayer(t)
	ed := committedFreeText(t, ui, l, "persistent")
	l.Destroy()
	if ed.IsAttached() {
		t.Fatal("editor still attached after destroying the layer")
	}

	l2 := NewLayer(0, ui, LayerOptions{PageWidth: 600, PageHeight: 800, Scale: 1})
	if len(l2.Editors()) != 1 || ed.Parent() != l2 || !ed.IsAttached() {
		t.Error("editor not added to the new layer")
	}
}
