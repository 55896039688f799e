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

package annotation

import "fmt"

// Type identifies the kind of an annotation record.
// The numeric values are used in the serialized form.
type Type int

// These are the supported annotation types.
const (
	None      Type = 0
	FreeText  Type = 3
	Highlight Type = 9
	Stamp     Type = 13
	Ink       Type = 15
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case FreeText:
		return "FreeText"
	case Highlight:
		return "Highlight"
	case Stamp:
		return "Stamp"
	case Ink:
		return "Ink"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Record is the serialized form of an annotation.
//
// Records must be pointer types, since the [Storage] compares values by
// identity.
type Record interface {
	// AnnotationType returns the type of the annotation.
	AnnotationType() Type

	// GetCommon returns the fields shared by all annotation types.
	// This is nil for a [Tombstone].
	GetCommon() *Common
}

var (
	_ Record = (*FreeTextRecord)(nil)
	_ Record = (*InkRecord)(nil)
	_ Record = (*HighlightRecord)(nil)
	_ Record = (*StampRecord)(nil)
	_ Record = (*Tombstone)(nil)
)

// Common contains the fields shared by all annotation records.
type Common struct {
	// AnnotationType is filled in when the record is encoded.
	AnnotationType Type `json:"annotationType"`

	// ID is the id of the editor which created the record, or the id of
	// the annotation element the record replaces.
	ID string `json:"id,omitempty"`

	PageIndex int `json:"pageIndex"`

	// Rect is the bounding box of the annotation in PDF user space,
	// in the order x1, y1, x2, y2.
	Rect [4]float64 `json:"rect"`

	// Rotation is the rotation of the page, in degrees.
	Rotation int `json:"rotation"`

	// AnnotationElementID refers to the annotation in the PDF file which
	// this record replaces, if any.
	AnnotationElementID string `json:"annotationElementId,omitempty"`

	// IsCopy is set for records which are placed on the clipboard.
	IsCopy bool `json:"isCopy,omitempty"`
}

// GetCommon returns the common fields.
// This, together with the AnnotationType method of the embedding type,
// implements the [Record] interface.
func (c *Common) GetCommon() *Common {
	return c
}

// Color is an RGB color with 8 bits per channel.
type Color [3]uint8

// Hex returns the color in the form "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// ParseColor parses a color in the form "#rrggbb" or "#rgb".
func ParseColor(s string) (Color, error) {
	var c Color
	switch len(s) {
	case 7:
		_, err := fmt.Sscanf(s, "#%02x%02x%02x", &c[0], &c[1], &c[2])
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
	case 4:
		_, err := fmt.Sscanf(s, "#%1x%1x%1x", &c[0], &c[1], &c[2])
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		for i := range c {
			c[i] *= 17
		}
	default:
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// FreeTextRecord is the serialized form of a free text annotation.
type FreeTextRecord struct {
	Common

	// FontSize is the font size in PDF units.
	FontSize float64 `json:"fontSize"`

	// Value is the text content.
	Value string `json:"value"`

	Color Color `json:"color"`
}

// AnnotationType returns [FreeText].
// This implements the [Record] interface.
func (r *FreeTextRecord) AnnotationType() Type {
	return FreeText
}

// InkPath is one stroke of an ink annotation.
type InkPath struct {
	// Bezier is a sequence of cubic Bézier segments.  The first two numbers
	// give the start point, followed by six numbers per segment.
	Bezier []float64 `json:"bezier"`

	// Points contains the points the user drew, as x, y pairs.
	Points []float64 `json:"points"`
}

// InkRecord is the serialized form of an ink annotation.
type InkRecord struct {
	Common

	Paths     []InkPath `json:"paths"`
	Color     Color     `json:"color"`
	Thickness float64   `json:"thickness"`
	Opacity   float64   `json:"opacity"`
}

// AnnotationType returns [Ink].
// This implements the [Record] interface.
func (r *InkRecord) AnnotationType() Type {
	return Ink
}

// HighlightRecord is the serialized form of a highlight annotation.
type HighlightRecord struct {
	Common

	// QuadPoints contains 8 numbers for each highlighted box.
	QuadPoints []float32 `json:"quadPoints"`

	// Outlines contains the outline polygons in PDF user space, as
	// alternating x and y coordinates.
	Outlines [][]float64 `json:"outlines"`

	Color     Color   `json:"color"`
	Opacity   float64 `json:"opacity"`
	Thickness float64 `json:"thickness"`
}

// AnnotationType returns [Highlight].
// This implements the [Record] interface.
func (r *HighlightRecord) AnnotationType() Type {
	return Highlight
}

// StampRecord is the serialized form of a stamp annotation.
type StampRecord struct {
	Common

	// BitmapID identifies the image of the stamp.
	BitmapID string `json:"bitmapId"`

	IsSVG bool `json:"isSvg,omitempty"`
}

// AnnotationType returns [Stamp].
// This implements the [Record] interface.
func (r *StampRecord) AnnotationType() Type {
	return Stamp
}

// Tombstone marks an annotation which has been deleted.
type Tombstone struct {
	ID        string `json:"id"`
	PageIndex int    `json:"pageIndex"`
	Deleted   bool   `json:"deleted"`
}

// NewTombstone returns the record for a deleted annotation.
func NewTombstone(id string, pageIndex int) *Tombstone {
	return &Tombstone{ID: id, PageIndex: pageIndex, Deleted: true}
}

// AnnotationType returns [None].
// This implements the [Record] interface.
func (r *Tombstone) AnnotationType() Type {
	return None
}

// GetCommon returns nil, since tombstones carry no geometry.
// This implements the [Record] interface.
func (r *Tombstone) GetCommon() *Common {
	return nil
}
