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
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/outline"
)

var testBoxes = []outline.Box{{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05}}

func newHighlightForTest(t *testing.T) (*UIManager, *Layer, *HighlightEditor) {
	t.Helper()
	ui, l := newTestLayer(t)
	ed, ok := ui.HighlightSelection(0, testBoxes).(*HighlightEditor)
	if !ok {
		t.Fatal("no highlight created")
	}
	return ui, l, ed
}

func TestHighlightGeometry(t *testing.T) {
	ui, l, ed := newHighlightForTest(t)

	if ui.GetMode() != ModeHighlight {
		t.Errorf("mode is %s, want highlight", ui.GetMode())
	}
	got := [4]float64{ed.X, ed.Y, ed.Width, ed.Height}
	want := [4]float64{0.099, 0.099, 0.202, 0.052}
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", d)
	}
	if ed.Rotation != 0 {
		t.Errorf("rotation %d, want 0", ed.Rotation)
	}
	if l.DrawLayer().Len() != 1 {
		t.Errorf("draw layer has %d items, want 1", l.DrawLayer().Len())
	}
	if !ui.Storage().Has(ed.ID()) {
		t.Error("highlight is not stored")
	}
}

func TestHighlightSerialize(t *testing.T) {
	ui, l, ed := newHighlightForTest(t)

	rec, ok := ed.Serialize(false)
	if !ok {
		t.Fatal("highlight was not serialized")
	}
	r := rec.(*annotation.HighlightRecord)
	wantQuad := []float32{60, 680, 180, 680, 60, 720, 180, 720}
	if d := cmp.Diff(wantQuad, r.QuadPoints, approx); d != "" {
		t.Errorf("quad points mismatch (-want +got):\n%s", d)
	}
	if len(r.Outlines) != 1 || len(r.Outlines[0]) < 8 {
		t.Errorf("unexpected outlines %v", r.Outlines)
	}
	if r.Color != ui.Settings().HighlightColor {
		t.Errorf("color %s, want %s", r.Color.Hex(), ui.Settings().HighlightColor.Hex())
	}

	ed2, err := Deserialize(r, l, ui)
	if err != nil {
		t.Fatal(err)
	}
	hl := ed2.(*HighlightEditor)
	if d := cmp.Diff(testBoxes, hl.Boxes(), approx); d != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", d)
	}
	got := [4]float64{hl.X, hl.Y, hl.Width, hl.Height}
	want := [4]float64{ed.X, ed.Y, ed.Width, ed.Height}
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", d)
	}
}

func TestHighlightColorUndo(t *testing.T) {
	ui, l, ed := newHighlightForTest(t)
	orig := ed.Color()

	ui.SetSelected(ed)
	ui.UpdateParams(ParamHighlightColor, "#ff0000")
	if ed.Color() != (annotation.Color{0xff, 0, 0}) {
		t.Errorf("color %s, want #ff0000", ed.Color().Hex())
	}

	dst := image.NewRGBA(image.Rect(0, 0, 600, 800))
	l.DrawLayer().Composite(dst)
	if c := dst.RGBAAt(120, 100); c.R < 250 || c.G > 5 || c.A < 250 {
		t.Errorf("highlight pixel has color %v", c)
	}

	ui.Undo()
	if ed.Color() != orig {
		t.Errorf("after undo: color %s, want %s", ed.Color().Hex(), orig.Hex())
	}
}

func TestHighlightDeleteUndo(t *testing.T) {
	ui, l, ed := newHighlightForTest(t)

	ui.SetSelected(ed)
	ui.Delete()
	if l.DrawLayer().Len() != 0 {
		t.Error("outline was not removed from the draw layer")
	}
	if ui.Storage().Has(ed.ID()) || ui.GetEditor(ed.ID()) != nil {
		t.Error("deleted highlight is still registered")
	}

	ui.Undo()
	if l.DrawLayer().Len() != 1 {
		t.Errorf("draw layer has %d items after undo, want 1", l.DrawLayer().Len())
	}
	if !ui.Storage().Has(ed.ID()) || !ed.IsAttached() {
		t.Error("highlight was not restored")
	}
}

func TestDrawLayerRasterize(t *testing.T) {
	d := NewDrawLayer()
	o := outline.New(testBoxes, highlightBorder, 0, true).Outlines()
	id := d.Draw(o, annotation.Color{}, 1)

	img := d.Rasterize(600, 800)
	if a := img.AlphaAt(120, 100).A; a < 250 {
		t.Errorf("inside pixel has alpha %d", a)
	}
	if a := img.AlphaAt(10, 10).A; a != 0 {
		t.Errorf("outside pixel has alpha %d", a)
	}

	d.Hide(id)
	img = d.Rasterize(600, 800)
	if a := img.AlphaAt(120, 100).A; a != 0 {
		t.Errorf("hidden outline was drawn, alpha %d", a)
	}

	d.Show(id)
	d.Remove(id)
	if d.Len() != 0 {
		t.Errorf("got %d items, want 0", d.Len())
	}
	if _, ok := d.Box(id); ok {
		t.Error("removed item still has a box")
	}
}

func TestDrawLayerHole(t *testing.T) {
	// a ring around (0.3, 0.6)-(0.4, 0.7), next to a separate box
	boxes := []outline.Box{
		{X: 0.2, Y: 0.0, Width: 0.3, Height: 0.2},
		{X: 0.2, Y: 0.5, Width: 0.1, Height: 0.4},
		{X: 0.3, Y: 0.4, Width: 0.3, Height: 0.2},
		{X: 0.4, Y: 0.6, Width: 0.1, Height: 0.4},
		{X: 0.0, Y: 0.7, Width: 0.4, Height: 0.3},
		{X: 0.1, Y: 0.7, Width: 0.1, Height: 0.2},
	}
	d := NewDrawLayer()
	d.Draw(outline.New(boxes, 0, 0, true).Outlines(), annotation.Color{}, 1)

	img := d.Rasterize(100, 100)
	cases := []struct {
		x, y   int
		inside bool
	}{
		{35, 65, false}, // hole
		{55, 55, true},  // ring
		{15, 85, true},  // ring
		{35, 15, true},  // separate box
		{75, 85, false}, // outside
	}
	for _, c := range cases {
		a := img.AlphaAt(c.x, c.y).A
		if c.inside && a < 250 || !c.inside && a > 5 {
			t.Errorf("pixel (%d,%d) has alpha %d, inside=%t", c.x, c.y, a, c.inside)
		}
	}
}
