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

// Package raster implements [graphics.Surface] on top of an in-memory RGBA
// image.
//
// Paths are transformed to device space when they are constructed and are
// painted with github.com/fogleman/gg.  The transformation of the gg
// context always stays the identity.  Images and glyphs are drawn with
// affine transformations from golang.org/x/image/draw.
//
// The gg context does not restore its clipping mask on Pop, so a [Surface]
// keeps its own stack of drawing states.  The clipping region is stored
// there as an alpha mask.
package raster
