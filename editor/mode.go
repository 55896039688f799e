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

	"seehuhn.de/go/pdfview/annotation"
)

// Mode selects the kind of editor created by user gestures.
type Mode int

// These are the editing modes.  Apart from ModeDisable, the values
// coincide with the corresponding annotation types.
const (
	ModeDisable   Mode = -1
	ModeNone      Mode = Mode(annotation.None)
	ModeFreeText  Mode = Mode(annotation.FreeText)
	ModeHighlight Mode = Mode(annotation.Highlight)
	ModeStamp     Mode = Mode(annotation.Stamp)
	ModeInk       Mode = Mode(annotation.Ink)
)

func (m Mode) String() string {
	if m == ModeDisable {
		return "Disable"
	}
	return annotation.Type(m).String()
}

// ParamType identifies an editor property.
type ParamType int

// These are the editor properties which can be changed by the user.
const (
	ParamResize             ParamType = 1
	ParamCreate             ParamType = 2
	ParamFreeTextSize       ParamType = 11
	ParamFreeTextColor      ParamType = 12
	ParamInkColor           ParamType = 21
	ParamInkThickness       ParamType = 22
	ParamInkOpacity         ParamType = 23
	ParamHighlightColor     ParamType = 31
	ParamHighlightThickness ParamType = 33
)

func (p ParamType) String() string {
	switch p {
	case ParamResize:
		return "resize"
	case ParamCreate:
		return "create"
	case ParamFreeTextSize:
		return "freetext-size"
	case ParamFreeTextColor:
		return "freetext-color"
	case ParamInkColor:
		return "ink-color"
	case ParamInkThickness:
		return "ink-thickness"
	case ParamInkOpacity:
		return "ink-opacity"
	case ParamHighlightColor:
		return "highlight-color"
	case ParamHighlightThickness:
		return "highlight-thickness"
	}
	return fmt.Sprintf("ParamType(%d)", int(p))
}

// ParamValue is the value of an editor property.
type ParamValue struct {
	Type  ParamType
	Value any
}

// Settings holds the default properties of new editors.
type Settings struct {
	FreeTextSize  float64
	FreeTextColor annotation.Color

	InkColor     annotation.Color
	InkThickness float64
	InkOpacity   float64

	HighlightColor     annotation.Color
	HighlightThickness float64
	HighlightOpacity   float64

	// IsMac selects the macOS keyboard shortcuts.
	IsMac bool

	// RightToLeft is set for documents with right-to-left text.
	RightToLeft bool

	// UndoSize is the number of commands kept in the undo log.
	UndoSize int
}

// DefaultSettings returns the settings used when nothing else is
// configured.
func DefaultSettings() Settings {
	return Settings{
		FreeTextSize:       10,
		InkThickness:       1,
		InkOpacity:         1,
		HighlightColor:     annotation.Color{0xff, 0xff, 0x98},
		HighlightThickness: 12,
		HighlightOpacity:   1,
		UndoSize:           128,
	}
}

// update changes the default value for a property.
func (s *Settings) update(t ParamType, v any) {
	switch t {
	case ParamFreeTextSize:
		if x, ok := toFloat(v); ok && x > 0 {
			s.FreeTextSize = x
		}
	case ParamFreeTextColor:
		if c, ok := toColor(v); ok {
			s.FreeTextColor = c
		}
	case ParamInkColor:
		if c, ok := toColor(v); ok {
			s.InkColor = c
		}
	case ParamInkThickness:
		if x, ok := toFloat(v); ok && x > 0 {
			s.InkThickness = x
		}
	case ParamInkOpacity:
		if x, ok := toFloat(v); ok {
			s.InkOpacity = clamp(x, 0, 1)
		}
	case ParamHighlightColor:
		if c, ok := toColor(v); ok {
			s.HighlightColor = c
		}
	case ParamHighlightThickness:
		if x, ok := toFloat(v); ok && x > 0 {
			s.HighlightThickness = x
		}
	}
}

func toColor(v any) (annotation.Color, bool) {
	switch v := v.(type) {
	case annotation.Color:
		return v, true
	case string:
		c, err := annotation.ParseColor(v)
		return c, err == nil
	}
	return annotation.Color{}, false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(x, hi))
}
