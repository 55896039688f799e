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
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/pdfview"
)

var (
	goRegularOnce sync.Once
	goRegular     *truetype.Font
)

func defaultFont() *truetype.Font {
	goRegularOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic(err) // the embedded font is known to be valid
		}
		goRegular = f
	})
	return goRegular
}

// faceCache holds the fallback faces of a surface, by pixel size.
type faceCache struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[int]font.Face
}

func newFaceCache(ttf []byte) *faceCache {
	c := &faceCache{faces: make(map[int]font.Face)}
	if ttf != nil {
		f, err := truetype.Parse(ttf)
		if err != nil {
			pdfview.Logger().Warn("invalid fallback font, using Go Regular", "error", err)
		} else {
			c.font = f
		}
	}
	return c
}

func (c *faceCache) get(size float64) font.Face {
	px := int(math.Round(size))
	if px < 1 {
		return basicfont.Face7x13
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if face, ok := c.faces[px]; ok {
		return face
	}
	f := c.font
	if f == nil {
		f = defaultFont()
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[px] = face
	return face
}
