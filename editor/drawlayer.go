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
	"image/color"
	"image/draw"
	"maps"
	"slices"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/outline"
)

// DrawLayer holds the filled outlines shown below the editors of a page,
// for example the outlines of highlights.
//
// Boxes are given as fractions of the page size, with the y-axis pointing
// down.
type DrawLayer struct {
	next  int
	items map[int]*drawItem
}

type drawItem struct {
	outlines *outline.Outlines
	box      rect.Rect
	color    annotation.Color
	opacity  float64
	hidden   bool
}

// NewDrawLayer allocates an empty draw layer.
func NewDrawLayer() *DrawLayer {
	return &DrawLayer{items: make(map[int]*drawItem)}
}

// Draw adds a filled outline and returns its id.
func (d *DrawLayer) Draw(o *outline.Outlines, c annotation.Color, opacity float64) int {
	id := d.next
	d.next++
	d.items[id] = &drawItem{
		outlines: o,
		box:      o.BBox,
		color:    c,
		opacity:  opacity,
	}
	return id
}

// Update replaces the outline for id.
func (d *DrawLayer) Update(id int, o *outline.Outlines) {
	if it, ok := d.items[id]; ok {
		it.outlines = o
		it.box = o.BBox
	}
}

// SetBox moves the outline for id into the given box.
func (d *DrawLayer) SetBox(id int, box rect.Rect) {
	if it, ok := d.items[id]; ok {
		it.box = box
	}
}

// ChangeColor sets the fill color for id.
func (d *DrawLayer) ChangeColor(id int, c annotation.Color) {
	if it, ok := d.items[id]; ok {
		it.color = c
	}
}

// ChangeOpacity sets the opacity for id.
func (d *DrawLayer) ChangeOpacity(id int, opacity float64) {
	if it, ok := d.items[id]; ok {
		it.opacity = opacity
	}
}

// Remove deletes the outline for id.
func (d *DrawLayer) Remove(id int) {
	delete(d.items, id)
}

// Show makes the outline for id visible.
func (d *DrawLayer) Show(id int) {
	if it, ok := d.items[id]; ok {
		it.hidden = false
	}
}

// Hide makes the outline for id invisible.
func (d *DrawLayer) Hide(id int) {
	if it, ok := d.items[id]; ok {
		it.hidden = true
	}
}

// Len returns the number of outlines, including hidden ones.
func (d *DrawLayer) Len() int {
	return len(d.items)
}

// Box returns the box of the outline for id.
func (d *DrawLayer) Box(id int) (rect.Rect, bool) {
	it, ok := d.items[id]
	if !ok {
		return rect.Rect{}, false
	}
	return it.box, true
}

// Rasterize returns the coverage of all visible outlines, for a page of
// w×h pixels.
func (d *DrawLayer) Rasterize(w, h int) *image.Alpha {
	res := image.NewAlpha(image.Rect(0, 0, w, h))
	for _, id := range d.ids() {
		it := d.items[id]
		if it.hidden {
			continue
		}
		z := it.rasterizer(w, h)
		z.Draw(res, res.Bounds(), image.Opaque, image.Point{})
	}
	return res
}

// Composite paints all visible outlines onto dst, in the order they were
// added.  The bounds of dst correspond to the whole page.
func (d *DrawLayer) Composite(dst *image.RGBA) {
	b := dst.Bounds()
	for _, id := range d.ids() {
		it := d.items[id]
		if it.hidden || it.opacity <= 0 {
			continue
		}
		z := it.rasterizer(b.Dx(), b.Dy())
		src := image.NewUniform(color.NRGBA{
			R: it.color[0],
			G: it.color[1],
			B: it.color[2],
			A: uint8(clamp(it.opacity, 0, 1)*255 + 0.5),
		})
		z.DrawOp = draw.Over
		z.Draw(dst, b, src, image.Point{})
	}
}

func (d *DrawLayer) ids() []int {
	return slices.Sorted(maps.Keys(d.items))
}

func (it *drawItem) rasterizer(w, h int) *vector.Rasterizer {
	z := vector.NewRasterizer(w, h)
	bw, bh := it.box.Dx(), it.box.Dy()
	for _, poly := range it.outlines.Polygons {
		for i, p := range poly {
			x := float32((it.box.LLx + p.X*bw) * float64(w))
			y := float32((it.box.LLy + p.Y*bh) * float64(h))
			if i == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	}
	return z
}
