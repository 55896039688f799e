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
	"errors"
	"fmt"
	"image"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/outline"
)

// ErrUnknownType is returned when no editor is registered for an
// annotation type.
var ErrUnknownType = errors.New("unknown editor type")

// ErrRecordType is returned when a record is passed to the wrong
// editor type.
var ErrRecordType = errors.New("unexpected record type")

// Params holds the arguments for creating a new editor.
type Params struct {
	ID string

	// X and Y give the position of the new editor on the layer, in screen
	// pixels.
	X, Y float64

	// IsCentered places the center of the editor at (X, Y).
	IsCentered bool

	// Boxes are the selection boxes of a new highlight, as fractions of the
	// page size.
	Boxes []outline.Box

	// BitmapID, Bitmap and BitmapData describe the image of a new stamp.
	BitmapID   string
	Bitmap     image.Image
	BitmapData []byte

	// Text is the initial content of a new FreeText editor.
	Text string
}

// Factory creates editors of one type.
type Factory struct {
	New func(l *Layer, p Params) Editor

	// Deserialize creates an editor from a record.  The editor is not yet
	// added to the layer.
	Deserialize func(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error)

	// DefaultProps lists the properties a toolbar shows for this editor
	// type.
	DefaultProps func(s *Settings) []ParamValue

	// CanCreateOnClick is set for types which create a new editor when the
	// user clicks on an empty part of the layer.
	CanCreateOnClick bool

	// CanCreateNewEmpty is set for types which can be created from the
	// keyboard, without any content.
	CanCreateNewEmpty bool

	// PasteMIME reports whether the editor can be created from clipboard
	// data of the given MIME type.
	PasteMIME func(mime string) bool
}

var registry = map[annotation.Type]*Factory{}

// Register makes an editor type available.
// Register must only be called from init functions.
func Register(t annotation.Type, f *Factory) {
	if _, dup := registry[t]; dup {
		panic("editor: duplicate registration for " + t.String())
	}
	registry[t] = f
}

// Lookup returns the factory for t.
func Lookup(t annotation.Type) (*Factory, bool) {
	f, ok := registry[t]
	return f, ok
}

// Deserialize creates an editor from a record.
func Deserialize(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error) {
	f, ok := registry[rec.AnnotationType()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, rec.AnnotationType())
	}
	if f.Deserialize == nil {
		return nil, fmt.Errorf("deserialize %s: %w", rec.AnnotationType(), pdfview.ErrAbstract)
	}
	return f.Deserialize(rec, l, ui)
}

// newEditor creates an editor of the given type on l.
func newEditor(t annotation.Type, l *Layer, p Params) (Editor, error) {
	f, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if f.New == nil {
		return nil, fmt.Errorf("new %s: %w", t, pdfview.ErrAbstract)
	}
	return f.New(l, p), nil
}
