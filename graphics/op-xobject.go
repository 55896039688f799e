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

package graphics

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics/content"
)

// This file implements the image and form operations.

var unitSquare = rect.Rect{URx: 1, URy: 1}

// opPaintImageXObject draws an image into the unit square of user space.
// Missing images are skipped with a warning.
//
// This implements the "paintImageXObject" opcode.
func opPaintImageXObject(c *Canvas, p *content.ArgParser) error {
	id := p.GetString()
	if err := p.Check(); err != nil {
		return err
	}
	img, ok := c.lookupImage(id)
	if !ok {
		return nil
	}
	c.drawImage(img)
	return nil
}

// opPaintImageMaskXObject paints the fill colour through a stencil mask.
// The alpha channel of the image object is used as the mask.
//
// This implements the "paintImageMaskXObject" opcode.
func opPaintImageMaskXObject(c *Canvas, p *content.ArgParser) error {
	id := p.GetString()
	if err := p.Check(); err != nil {
		return err
	}
	mask, ok := c.lookupImage(id)
	if !ok {
		return nil
	}
	b := mask.Bounds()
	colored := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.DrawMask(colored, colored.Bounds(), image.NewUniform(c.cur.FillColor),
		image.Point{}, mask, b.Min, draw.Src)
	c.drawImage(colored)
	return nil
}

func (c *Canvas) lookupImage(id string) (image.Image, bool) {
	obj, err := c.objs.Get(id)
	if err == nil {
		img, ok := obj.(image.Image)
		if ok && !img.Bounds().Empty() {
			return img, true
		}
		err = fmt.Errorf("object %q is not an image", id)
	}
	pdfview.Logger().Warn("skipping image", "image", id, "error", err)
	return nil, false
}

func (c *Canvas) drawImage(img image.Image) {
	dirty := intersectBox(transformBox(c.cur.CTM, unitSquare), c.cur.ClipBox)
	if c.cur.Visible && c.contentVisible() {
		b := img.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		m := matrix.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
			Mul(matrix.Matrix{1 / w, 0, 0, -1 / h, 0, 1}).
			Mul(c.cur.CTM)
		c.surface.SetGlobalAlpha(c.cur.FillAlpha)
		c.surface.DrawImage(img, m)
	}
	c.compose(dirty)
}

// opPaintFormXObjectBegin starts a form XObject.  The arguments are the
// form matrix and the form bounding box; both may be null.
//
// This implements the "paintFormXObjectBegin" opcode.
func opPaintFormXObjectBegin(c *Canvas, p *content.ArgParser) error {
	m, err := optNumbers(p.GetAny(), 6)
	if err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	bbox, err := optNumbers(p.GetAny(), 4)
	if err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if err := p.Check(); err != nil {
		return err
	}

	c.save()
	if m != nil {
		var mm matrix.Matrix
		copy(mm[:], m)
		c.transform(mm)
	}
	if bbox != nil {
		c.clipRect(bbox[0], bbox[1], bbox[2]-bbox[0], bbox[3]-bbox[1])
	}
	return nil
}

func opPaintFormXObjectEnd(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.restore()
	return nil
}

// clipRect intersects the clipping region with a rectangle in user space.
// Any pending path is discarded.
func (c *Canvas) clipRect(x, y, w, h float64) {
	for _, s := range c.targets() {
		s.BeginPath()
	}
	c.cur.resetPathBox()
	c.rectangle(x, y, w, h)
	c.pendingClip = clipNonZero
	c.consumePath(emptyBox())
}

// optNumbers converts an optional array of n numbers.  A nil value gives
// a nil slice.
func optNumbers(v any, n int) ([]float64, error) {
	if v == nil {
		return nil, nil
	}
	q := content.NewArgParser(content.Args{v})
	res := q.GetNumbers(n)
	return res, q.Check()
}
