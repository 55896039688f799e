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
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/unicode/norm"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/command"
)

// lineHeightFactor gives the distance between lines of a FreeText
// editor, relative to the font size.
const lineHeightFactor = 1.35

// FreeTextEditor is an editor for text annotations.
type FreeTextEditor struct {
	Base

	// content is the committed text, pending the text being typed.
	content string
	pending string

	fontSize float64
	color    annotation.Color
}

func init() {
	Register(annotation.FreeText, &Factory{
		New: func(l *Layer, p Params) Editor {
			return newFreeText(l, p)
		},
		Deserialize: deserializeFreeText,
		DefaultProps: func(s *Settings) []ParamValue {
			return []ParamValue{
				{Type: ParamFreeTextSize, Value: s.FreeTextSize},
				{Type: ParamFreeTextColor, Value: s.FreeTextColor},
			}
		},
		CanCreateOnClick:  true,
		CanCreateNewEmpty: true,
	})
}

func newFreeText(l *Layer, p Params) *FreeTextEditor {
	if p.ID == "" {
		p.ID = l.ui.GetID()
	}
	e := &FreeTextEditor{
		fontSize: l.ui.settings.FreeTextSize,
		color:    l.ui.settings.FreeTextColor,
	}
	e.init(e, l, p)
	if p.Text != "" {
		e.pending = norm.NFC.String(p.Text)
	}
	return e
}

func deserializeFreeText(rec annotation.Record, l *Layer, ui *UIManager) (Editor, error) {
	r, ok := rec.(*annotation.FreeTextRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrRecordType, rec)
	}
	e := newFreeText(l, Params{})
	e.deserializeCommon(r)
	e.fontSize = r.FontSize
	e.color = r.Color
	e.content = norm.NFC.String(r.Value)
	e.pending = e.content
	return e, nil
}

// Type returns [annotation.FreeText].
func (e *FreeTextEditor) Type() annotation.Type {
	return annotation.FreeText
}

// Text returns the committed text of the editor.
func (e *FreeTextEditor) Text() string {
	return e.content
}

// FontSize returns the font size in PDF units.
func (e *FreeTextEditor) FontSize() float64 {
	return e.fontSize
}

// Color returns the text color.
func (e *FreeTextEditor) Color() annotation.Color {
	return e.color
}

// SetText replaces the text being edited.  The text becomes the content
// of the editor on the next call to Commit.
func (e *FreeTextEditor) SetText(s string) {
	e.pending = norm.NFC.String(s)
}

// handlesKeyboard reports whether key events go to the text, rather than
// to the keyboard shortcuts.
func (e *FreeTextEditor) handlesKeyboard() bool {
	return e.IsInEditMode()
}

// IsEmpty reports whether the editor contains only white space.
func (e *FreeTextEditor) IsEmpty() bool {
	return strings.TrimSpace(e.pending) == ""
}

// OnceAdded starts editing a newly created editor.
func (e *FreeTextEditor) OnceAdded() {
	if e.Width != 0 {
		return
	}
	e.setDimensions()
	e.EnableEditMode()
	if e.isCentered {
		e.center()
		e.isCentered = false
	}
}

// Commit stores the typed text as the content of the editor.
// Calling Commit outside of edit mode has no effect.
func (e *FreeTextEditor) Commit() {
	if !e.IsInEditMode() {
		return
	}
	e.Base.Commit()
	e.DisableEditMode()

	saved := e.content
	e.content = strings.TrimRight(e.pending, " \t\r\n")
	newText := e.content
	if saved == newText {
		return
	}

	setText := func(text string) {
		e.content = text
		e.pending = text
		if text == "" {
			e.Remove()
			return
		}
		e.setDimensions()
		if e.ui != nil {
			e.ui.Rebuild(e)
		}
	}
	e.AddCommands(command.Cmd{
		Do:   func() { setText(newText) },
		Undo: func() { setText(saved) },
	})
	e.setDimensions()
}

// UpdateParams changes the font size or the color.
func (e *FreeTextEditor) UpdateParams(t ParamType, v any) {
	switch t {
	case ParamFreeTextSize:
		if x, ok := toFloat(v); ok && x > 0 {
			e.updateFontSize(x)
		}
	case ParamFreeTextColor:
		if c, ok := toColor(v); ok {
			e.updateColor(c)
		}
	}
}

func (e *FreeTextEditor) updateFontSize(size float64) {
	setSize := func(size float64) {
		e.Translate(0, -(size-e.fontSize)*e.ParentScale())
		e.fontSize = size
		e.setDimensions()
	}
	saved := e.fontSize
	e.AddCommands(command.Cmd{
		Do:                  func() { setSize(size) },
		Undo:                func() { setSize(saved) },
		Post:                e.updateUI,
		MustExec:            true,
		Type:                command.Type(ParamFreeTextSize),
		OverwriteIfSameType: true,
		KeepUndo:            true,
	})
}

func (e *FreeTextEditor) updateColor(c annotation.Color) {
	saved := e.color
	e.AddCommands(command.Cmd{
		Do:                  func() { e.color = c },
		Undo:                func() { e.color = saved },
		Post:                e.updateUI,
		MustExec:            true,
		Type:                command.Type(ParamFreeTextColor),
		OverwriteIfSameType: true,
		KeepUndo:            true,
	})
}

func (e *FreeTextEditor) updateUI() {
	if e.ui != nil {
		e.ui.updateUI(e)
	}
}

// PropertiesToUpdate implements the [Editor] interface.
func (e *FreeTextEditor) PropertiesToUpdate() []ParamValue {
	return []ParamValue{
		{Type: ParamFreeTextSize, Value: e.fontSize},
		{Type: ParamFreeTextColor, Value: e.color},
	}
}

// Serialize implements the [Editor] interface.
func (e *FreeTextEditor) Serialize(isForCopying bool) (annotation.Record, bool) {
	if e.Deleted {
		return e.tombstone()
	}
	if e.IsEmpty() {
		return nil, false
	}
	rec := &annotation.FreeTextRecord{
		FontSize: e.fontSize,
		Value:    e.content,
		Color:    e.color,
	}
	if e.IsInEditMode() || e.content == "" {
		rec.Value = strings.TrimRight(e.pending, " \t\r\n")
	}
	e.fillCommon(&rec.Common, isForCopying)
	if isForCopying {
		return rec, true
	}
	if e.unchanged(rec) {
		return nil, false
	}
	return rec, true
}

// setDimensions sizes the editor to fit its text.
func (e *FreeTextEditor) setDimensions() {
	pw, ph := e.PageDimensions[0], e.PageDimensions[1]
	if pw <= 0 || ph <= 0 {
		return
	}
	text := e.pending
	if text == "" {
		text = e.content
	}
	w, h := measureText(text, e.fontSize)
	if e.Rotation%180 != 0 {
		e.Width = h / pw
		e.Height = w / ph
	} else {
		e.Width = w / pw
		e.Height = h / ph
	}
	e.moved()
}

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// measureText returns the size of a block of text in PDF units.
// Every dimension is at least one em.
func measureText(text string, size float64) (float64, float64) {
	lines := strings.Split(text, "\n")
	h := max(float64(len(lines))*size*lineHeightFactor, size)

	f, err := goRegular()
	if err != nil {
		pdfview.Logger().Warn("cannot load text metrics", "error", err)
		return size, h
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72})
	defer face.Close()

	w := 0.0
	for _, line := range lines {
		adv := font.MeasureString(face, line)
		w = max(w, float64(adv)/64)
	}
	return max(w, size), h
}
