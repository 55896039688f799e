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
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register image decoders
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
)

// maxStampRatio limits the initial size of a stamp, relative to the page.
const maxStampRatio = 0.75

// StampEditor is an editor for image stamps.
type StampEditor struct {
	Base

	bitmapID string
	bitmap   image.Image
	isSVG    bool
}

func init() {
	Register(annotation.Stamp, &Factory{
		New: func(l *Layer, p Params) Editor {
			return newStamp(l, p)
		},
		Deserialize:      deserializeStamp,
		CanCreateOnClick: true,
		PasteMIME: func(mime string) bool {
			return strings.HasPrefix(mime, "image/")
		},
	})
}

func newStamp(l *Layer, p Params) *StampEditor {
	if p.ID == "" {
		p.ID = l.ui.GetID()
	}
	e := &StampEditor{}
	e.init(e, l, p)
	e.keepAspectRatio = true

	switch {
	case p.Bitmap != nil:
		e.bitmap = p.Bitmap
		e.bitmapID = p.BitmapID
		if e.bitmapID == "" {
			e.bitmapID = "image_" + p.ID
		}
		l.ui.images.set(e.bitmapID, p.Bitmap, false)
	case p.BitmapData != nil:
		e.bitmapID, e.bitmap, e.isSVG = l.ui.images.add(p.BitmapID, p.BitmapData)
	case p.BitmapID != "":
		e.bitmapID = p.BitmapID
		e.bitmap, e.isSVG = l.ui.images.get(p.BitmapID)
	}
	return e
}

func deserializeStamp(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error) {
	r, ok := rec.(*annotation.StampRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrRecordType, rec)
	}
	e := newStamp(l, Params{BitmapID: r.BitmapID})
	e.deserializeCommon(r)
	if e.bitmap == nil {
		e.isSVG = r.IsSVG
	}
	return e, nil
}

// Type returns [annotation.Stamp].
func (e *StampEditor) Type() annotation.Type {
	return annotation.Stamp
}

// BitmapID returns the id of the image.
func (e *StampEditor) BitmapID() string {
	return e.bitmapID
}

// Bitmap returns the image of the stamp, or nil if the image is not
// available.
func (e *StampEditor) Bitmap() image.Image {
	return e.bitmap
}

// IsEmpty reports whether the stamp has no image.
func (e *StampEditor) IsEmpty() bool {
	return e.bitmapID == "" && e.bitmap == nil
}

// Render sizes a new stamp to its image.  Images which are larger than
// three quarters of the page are scaled down.
func (e *StampEditor) Render() {
	e.Base.Render()
	if e.Width != 0 || e.bitmap == nil {
		return
	}
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	if pw <= 0 || ph <= 0 {
		return
	}
	b := e.bitmap.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w > maxStampRatio*pw || h > maxStampRatio*ph {
		f := min(maxStampRatio*pw/w, maxStampRatio*ph/h)
		w *= f
		h *= f
	}
	e.Width = w / pw
	e.Height = h / ph
	e.FixAndSetPosition(e.Rotation)
}

// OnceAdded centers a stamp created from the keyboard.
func (e *StampEditor) OnceAdded() {
	if e.Width == 0 {
		e.self.Render()
	}
	if e.isCentered {
		e.center()
		e.isCentered = false
	}
}

// Serialize implements the [Editor] interface.
func (e *StampEditor) Serialize(isForCopying bool) (annotation.Record, bool) {
	if e.Deleted {
		return e.tombstone()
	}
	if e.IsEmpty() {
		return nil, false
	}
	rec := &annotation.StampRecord{
		BitmapID: e.bitmapID,
		IsSVG:    e.isSVG,
	}
	e.fillCommon(&rec.Common, isForCopying)
	if !isForCopying && e.unchanged(rec) {
		return nil, false
	}
	return rec, true
}

// imageManager caches decoded stamp images by bitmap id.
type imageManager struct {
	images map[string]*cachedImage
}

type cachedImage struct {
	img   image.Image
	isSVG bool
}

func newImageManager() *imageManager {
	return &imageManager{images: make(map[string]*cachedImage)}
}

// add decodes an image and stores it.  If id is empty, an id is derived
// from the image data.  Images which cannot be decoded are replaced by a
// blank image.
func (m *imageManager) add(id string, data []byte) (string, image.Image, bool) {
	if id == "" {
		sum := blake2b.Sum256(data)
		id = "image_" + hex.EncodeToString(sum[:8])
	}
	if c, ok := m.images[id]; ok && c.img != nil {
		return id, c.img, c.isSVG
	}
	if data == nil {
		return id, nil, false
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	isSVG := false
	if err != nil {
		isSVG = isSVGData(data)
		pdfview.Logger().Warn("cannot decode stamp image, using a blank image",
			"id", id, "svg", isSVG, "error", err)
		img = blankImage()
	} else {
		pdfview.Logger().Debug("decoded stamp image", "id", id, "format", format,
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	}
	m.images[id] = &cachedImage{img: img, isSVG: isSVG}
	return id, img, isSVG
}

func (m *imageManager) set(id string, img image.Image, isSVG bool) {
	m.images[id] = &cachedImage{img: img, isSVG: isSVG}
}

func (m *imageManager) get(id string) (image.Image, bool) {
	c, ok := m.images[id]
	if !ok {
		return nil, false
	}
	return c.img, c.isSVG
}

// isValidID reports whether an image with the given id is known.
func (m *imageManager) isValidID(id string) bool {
	_, ok := m.images[id]
	return ok
}

func isSVGData(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func blankImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{})
	return img
}
