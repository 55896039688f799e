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
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/pdfview/annotation"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

// newTestLayer returns a UI manager with a single 600×800 page at scale 1.
func newTestLayer(t *testing.T) (*UIManager, *Layer) {
	t.Helper()
	ui := NewUIManager(nil, DefaultSettings(), nil, nil)
	l := NewLayer(0, ui, LayerOptions{PageWidth: 600, PageHeight: 800, Scale: 1})
	return ui, l
}

type spyEditor struct {
	Base
	empty   bool
	commits int
	removes int
}

func newSpy(l *Layer, empty bool) *spyEditor {
	e := &spyEditor{empty: empty}
	e.init(e, l, Params{ID: l.ui.GetID(), X: 60, Y: 80})
	e.Width, e.Height = 0.1, 0.1
	return e
}

func (e *spyEditor) Type() annotation.Type { return annotation.FreeText }

func (e *spyEditor) IsEmpty() bool { return e.empty }

func (e *spyEditor) Serialize(isForCopying bool) (annotation.Record, bool) {
	if e.empty {
		return nil, false
	}
	rec := &annotation.FreeTextRecord{FontSize: 10, Value: "spy"}
	e.fillCommon(&rec.Common, isForCopying)
	return rec, true
}

func (e *spyEditor) Commit() {
	e.commits++
	e.Base.Commit()
}

func (e *spyEditor) Remove() {
	e.removes++
	e.Base.Remove()
}

func TestFixAndSetPosition(t *testing.T) {
	type pos struct{ X, Y float64 }
	cases := []struct {
		rotation int
		in, want pos
	}{
		{0, pos{0.8, -0.1}, pos{0.5, 0}},
		{0, pos{0.2, 0.3}, pos{0.2, 0.3}},
		{90, pos{0.8, 0.1}, pos{0.5, 0.25}},
		{180, pos{0, 0}, pos{0.5, 0.25}},
		{270, pos{0, 1}, pos{0.5, 0.75}},
	}
	for _, c := range cases {
		b := &Base{
			PageDimensions: [2]float64{100, 200},
			Width:          0.5,
			Height:         0.25,
			X:              c.in.X,
			Y:              c.in.Y,
		}
		b.FixAndSetPosition(c.rotation)
		got := pos{b.X, b.Y}
		if d := cmp.Diff(c.want, got, approx); d != "" {
			t.Errorf("rotation %d: position mismatch (-want +got):\n%s", c.rotation, d)
		}
	}
}

func TestGetRect(t *testing.T) {
	b := &Base{
		PageDimensions: [2]float64{100, 200},
		X:              0.1,
		Y:              0.2,
		Width:          0.3,
		Height:         0.1,
	}
	got := b.GetRect(0, 0)
	want := [4]float64{10, 140, 40, 160}
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("rect mismatch (-want +got):\n%s", d)
	}

	b.PageTranslation = [2]float64{5, 7}
	got = b.GetRect(2, 0)
	want = [4]float64{17, 147, 47, 167}
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("translated rect mismatch (-want +got):\n%s", d)
	}
}

func TestRectRoundTrip(t *testing.T) {
	for _, rot := range []int{0, 90, 180, 270} {
		b := &Base{
			PageDimensions:  [2]float64{600, 800},
			PageTranslation: [2]float64{10, 20},
			Rotation:        rot,
			X:               0.4,
			Y:               0.5,
			Width:           0.125,
			Height:          0.0625,
		}
		r := b.GetRect(0, 0)
		if r[0] > r[2] || r[1] > r[3] {
			t.Errorf("rotation %d: rect %v is not normalized", rot, r)
		}

		x, y, w, h := b.rectInCurrentCoords(r)
		got := [4]float64{x / 600, y / 800, w / 600, h / 800}
		want := [4]float64{b.X, b.Y, b.Width, b.Height}
		if d := cmp.Diff(want, got, approx); d != "" {
			t.Errorf("rotation %d: geometry mismatch (-want +got):\n%s", rot, d)
		}
	}
}

func TestRotatePoint(t *testing.T) {
	cases := []struct {
		angle        int
		wantX, wantY float64
	}{
		{0, 1, 2},
		{90, 2, -1},
		{180, -1, -2},
		{270, -2, 1},
		{-90, -2, 1},
		{450, 2, -1},
	}
	for _, c := range cases {
		x, y := rotatePoint(1, 2, c.angle)
		if x != c.wantX || y != c.wantY {
			t.Errorf("rotatePoint(1, 2, %d) = (%g, %g), want (%g, %g)",
				c.angle, x, y, c.wantX, c.wantY)
		}
	}
}

func TestResize(t *testing.T) {
	type geom struct{ X, Y, W, H float64 }
	cases := []struct {
		name   string
		handle Handle
		dx, dy float64
		want   geom
	}{
		{"corner", BottomRight, 10, 0, geom{0.1, 0.1, 0.255, 0.255}},
		{"right edge", MiddleRight, 10, 0, geom{0.1, 0.1, 0.3, 0.2}},
		{"left edge", MiddleLeft, -10, 0, geom{0, 0.1, 0.3, 0.2}},
		{"bottom edge", BottomMiddle, 0, 5, geom{0.1, 0.1, 0.2, 0.25}},
		{"minimum width", MiddleRight, -19, 0, geom{0.1, 0.1, 0.16, 0.2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &Base{
				PageDimensions: [2]float64{100, 100},
				X:              0.1,
				Y:              0.1,
				Width:          0.2,
				Height:         0.2,
			}
			if !b.Resize(c.handle, c.dx, c.dy) {
				t.Fatal("geometry unchanged")
			}
			got := geom{b.X, b.Y, b.Width, b.Height}
			if d := cmp.Diff(c.want, got, approx); d != "" {
				t.Errorf("geometry mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestResizeRotated(t *testing.T) {
	type geom struct{ X, Y, W, H float64 }
	cases := []struct {
		rotation int
		page     [2]float64
		dx, dy   float64
		want     geom
	}{
		{180, [2]float64{100, 100}, -10, 0, geom{0.5, 0.5, 0.3, 0.2}},
		{90, [2]float64{100, 200}, 0, -20, geom{0.5, 0.5, 0.4, 0.1}},
		{90, [2]float64{100, 200}, 0, 20, geom{0.5, 0.5, 0.16, 0.1}},
	}
	for _, c := range cases {
		b := &Base{
			PageDimensions: c.page,
			Rotation:       c.rotation,
			X:              0.5,
			Y:              0.5,
			Width:          0.2,
			Height:         0.2,
		}
		if c.rotation == 90 {
			b.Height = 0.1
		}
		if !b.Resize(MiddleRight, c.dx, c.dy) {
			t.Fatalf("rotation %d: geometry unchanged", c.rotation)
		}
		got := geom{b.X, b.Y, b.Width, b.Height}
		if d := cmp.Diff(c.want, got, approx); d != "" {
			t.Errorf("rotation %d: geometry mismatch (-want +got):\n%s", c.rotation, d)
		}
	}
}

func TestResizeAspectRatio(t *testing.T) {
	b := &Base{
		PageDimensions:  [2]float64{100, 100},
		X:               0.1,
		Y:               0.1,
		Width:           0.2,
		Height:          0.1,
		keepAspectRatio: true,
	}
	if n := len(b.Handles()); n != 4 {
		t.Errorf("got %d handles, want 4", n)
	}
	if b.Resize(MiddleRight, 10, 0) {
		t.Error("edge handle resized an editor with fixed aspect ratio")
	}
	if !b.Resize(TopLeft, -10, -5) {
		t.Fatal("corner handle did not resize")
	}
	if r := b.Width / b.Height; r < 1.99 || r > 2.01 {
		t.Errorf("aspect ratio changed to %g", r)
	}

	b.keepAspectRatio = false
	if n := len(b.Handles()); n != 8 {
		t.Errorf("got %d handles, want 8", n)
	}
}

func TestResizeUndo(t *testing.T) {
	ui, l := newTestLayer(t)
	e := newSpy(l, false)
	l.Add(e)

	before := [4]float64{e.X, e.Y, e.Width, e.Height}
	if !e.Resize(TopLeft, -30, -30) {
		t.Fatal("geometry unchanged")
	}
	if !ui.HasSomethingToUndo() {
		t.Fatal("resize was not recorded")
	}
	ui.Undo()
	after := [4]float64{e.X, e.Y, e.Width, e.Height}
	if d := cmp.Diff(before, after, approx); d != "" {
		t.Errorf("undo did not restore the geometry (-want +got):\n%s", d)
	}
}

func TestCommitOrRemoveEmpty(t *testing.T) {
	ui, l := newTestLayer(t)
	e := newSpy(l, true)
	l.Add(e)

	if _, ok := e.Serialize(false); ok {
		t.Error("empty editor was serialized")
	}
	e.CommitOrRemove()
	if e.removes != 1 || e.commits != 0 {
		t.Errorf("got %d removes and %d commits, want 1 and 0", e.removes, e.commits)
	}
	if len(l.Editors()) != 0 || ui.GetEditor(e.ID()) != nil {
		t.Error("editor was not removed")
	}
	if ui.Storage().Size() != 0 {
		t.Error("empty editor was stored")
	}
}

func TestCommitOrRemoveNonEmpty(t *testing.T) {
	ui, l := newTestLayer(t)
	e := newSpy(l, false)
	l.Add(e)

	e.CommitOrRemove()
	if e.removes != 0 || e.commits != 1 {
		t.Errorf("got %d removes and %d commits, want 0 and 1", e.removes, e.commits)
	}
	if !ui.Storage().Has(e.ID()) {
		t.Error("editor is not in the annotation storage")
	}
}

func TestDragToNextPage(t *testing.T) {
	ui, l0 := newTestLayer(t)
	l1 := NewLayer(1, ui, LayerOptions{PageWidth: 600, PageHeight: 800, Scale: 1})
	e := newSpy(l0, false)
	l0.Add(e)

	e.Drag(0, 760)
	if e.Parent() != l1 || e.PageIndex != 1 {
		t.Fatalf("editor is on page %d, want 1", e.PageIndex)
	}
	if e.Y < 0 || e.Y >= 1 {
		t.Errorf("Y = %g is outside the page", e.Y)
	}
	if len(l0.Editors()) != 0 || len(l1.Editors()) != 1 {
		t.Errorf("got %d and %d editors, want 0 and 1", len(l0.Editors()), len(l1.Editors()))
	}
}
