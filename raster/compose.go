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

package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"seehuhn.de/go/pdfview/graphics"
)

// Compositor implements [graphics.Compositor] for surfaces of this
// package.  Other surface types are accessed through their Image method.
type Compositor struct{}

var _ graphics.Compositor = Compositor{}

// Compose implements the [graphics.Compositor] interface.
//
// For luminosity masks, every mask pixel is first composited over the
// backdrop colour.  The luminance of the result is then used as the
// coverage.  For alpha masks, the alpha channel of the mask is used.
func (Compositor) Compose(dst, src, mask graphics.Surface, subtype graphics.SMaskSubtype, backdrop color.NRGBA, dirty image.Rectangle) {
	d, s, m := dst.Image(), src.Image(), mask.Image()
	dirty = dirty.Intersect(d.Bounds()).Intersect(s.Bounds()).Intersect(m.Bounds())
	if dirty.Empty() {
		return
	}

	br, bg, bb := uint32(backdrop.R), uint32(backdrop.G), uint32(backdrop.B)
	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			mi := m.PixOffset(x, y)
			var cov uint32
			if subtype == graphics.SMaskAlpha {
				cov = uint32(m.Pix[mi+3])
			} else {
				// premultiplied mask colour over the opaque backdrop
				inv := 255 - uint32(m.Pix[mi+3])
				r := uint32(m.Pix[mi]) + br*inv/255
				g := uint32(m.Pix[mi+1]) + bg*inv/255
				b := uint32(m.Pix[mi+2]) + bb*inv/255
				cov = (77*r + 152*g + 28*b) >> 8
			}
			if cov == 0 {
				continue
			}

			si := s.PixOffset(x, y)
			sa := uint32(s.Pix[si+3]) * cov / 255
			if sa == 0 {
				continue
			}
			di := d.PixOffset(x, y)
			inv := 255 - sa
			for k := 0; k < 3; k++ {
				sc := uint32(s.Pix[si+k]) * cov / 255
				d.Pix[di+k] = uint8(sc + uint32(d.Pix[di+k])*inv/255)
			}
			d.Pix[di+3] = uint8(sa + uint32(d.Pix[di+3])*inv/255)
		}
	}
}

// Paint implements the [graphics.Compositor] interface.
// If dst is a [*Surface], its clipping region is respected.
func (Compositor) Paint(dst, src graphics.Surface, alpha float64) {
	d, s := dst.Image(), src.Image()
	r := d.Bounds().Intersect(s.Bounds())
	a := uint8(min(max(alpha, 0), 1)*255 + 0.5)

	var mask image.Image = image.NewUniform(color.Alpha{A: a})
	if ds, ok := dst.(*Surface); ok && ds.cur.clip != nil {
		clip := ds.cur.clip
		scaled := image.NewAlpha(clip.Bounds())
		for i, c := range clip.Pix {
			scaled.Pix[i] = uint8(uint32(c) * uint32(a) / 255)
		}
		mask = scaled
	}
	draw.DrawMask(d, r, s, r.Min, mask, r.Min, draw.Over)
}
