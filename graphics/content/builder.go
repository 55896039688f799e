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

package content

// Builder constructs operator lists using a type-safe API.
//
// All methods return the builder, so that calls can be chained:
//
//	list := content.NewBuilder().
//		Save().
//		SetFillRGBColor(1, 0, 0).
//		Rectangle(10, 10, 100, 50).
//		Fill().
//		Restore().
//		List(true)
type Builder struct {
	list List
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Op appends an arbitrary operation.
func (b *Builder) Op(op OpCode, args ...any) *Builder {
	b.list.Add(op, args...)
	return b
}

// Save appends a Save operation.
func (b *Builder) Save() *Builder { return b.Op(Save) }

// Restore appends a Restore operation.
func (b *Builder) Restore() *Builder { return b.Op(Restore) }

// Transform appends a Transform operation.
func (b *Builder) Transform(m [6]float64) *Builder {
	return b.Op(Transform, m[0], m[1], m[2], m[3], m[4], m[5])
}

// SetLineWidth appends a SetLineWidth operation.
func (b *Builder) SetLineWidth(w float64) *Builder { return b.Op(SetLineWidth, w) }

// SetDash appends a SetDash operation.
func (b *Builder) SetDash(pattern []float64, phase float64) *Builder {
	return b.Op(SetDash, pattern, phase)
}

// SetGState appends a SetGState operation.
func (b *Builder) SetGState(params map[string]any) *Builder {
	return b.Op(SetGState, params)
}

// MoveTo appends a MoveTo operation.
func (b *Builder) MoveTo(x, y float64) *Builder { return b.Op(MoveTo, x, y) }

// LineTo appends a LineTo operation.
func (b *Builder) LineTo(x, y float64) *Builder { return b.Op(LineTo, x, y) }

// CurveTo appends a CurveTo operation.
func (b *Builder) CurveTo(x1, y1, x2, y2, x3, y3 float64) *Builder {
	return b.Op(CurveTo, x1, y1, x2, y2, x3, y3)
}

// Rectangle appends a Rectangle operation.
func (b *Builder) Rectangle(x, y, w, h float64) *Builder {
	return b.Op(Rectangle, x, y, w, h)
}

// ClosePath appends a ClosePath operation.
func (b *Builder) ClosePath() *Builder { return b.Op(ClosePath) }

// Fill appends a Fill operation.
func (b *Builder) Fill() *Builder { return b.Op(Fill) }

// Stroke appends a Stroke operation.
func (b *Builder) Stroke() *Builder { return b.Op(Stroke) }

// EndPath appends an EndPath operation.
func (b *Builder) EndPath() *Builder { return b.Op(EndPath) }

// Clip appends a Clip operation.
func (b *Builder) Clip() *Builder { return b.Op(Clip) }

// SetFillRGBColor appends a SetFillRGBColor operation.
// The components are in the range [0, 1].
func (b *Builder) SetFillRGBColor(r, g, bl float64) *Builder {
	return b.Op(SetFillRGBColor, r, g, bl)
}

// SetStrokeRGBColor appends a SetStrokeRGBColor operation.
func (b *Builder) SetStrokeRGBColor(r, g, bl float64) *Builder {
	return b.Op(SetStrokeRGBColor, r, g, bl)
}

// SetFillGray appends a SetFillGray operation.
func (b *Builder) SetFillGray(g float64) *Builder { return b.Op(SetFillGray, g) }

// BeginText appends a BeginText operation.
func (b *Builder) BeginText() *Builder { return b.Op(BeginText) }

// EndText appends an EndText operation.
func (b *Builder) EndText() *Builder { return b.Op(EndText) }

// SetFont appends a SetFont operation.
func (b *Builder) SetFont(fontID string, size float64) *Builder {
	return b.Op(SetFont, fontID, size)
}

// MoveText appends a MoveText operation.
func (b *Builder) MoveText(tx, ty float64) *Builder { return b.Op(MoveText, tx, ty) }

// ShowText appends a ShowText operation for a single string.
func (b *Builder) ShowText(s string) *Builder {
	return b.Op(ShowText, []any{s})
}

// PaintImage appends a PaintImageXObject operation.
func (b *Builder) PaintImage(objID string) *Builder {
	return b.Op(PaintImageXObject, objID)
}

// BeginGroup appends a BeginGroup operation.
func (b *Builder) BeginGroup(group map[string]any) *Builder {
	return b.Op(BeginGroup, group)
}

// EndGroup appends an EndGroup operation.
func (b *Builder) EndGroup() *Builder { return b.Op(EndGroup) }

// Dependency appends a Dependency operation.
func (b *Builder) Dependency(objID string) *Builder { return b.Op(Dependency, objID) }

// Len returns the number of operations built so far.
func (b *Builder) Len() int {
	return b.list.Len()
}

// List returns the operations built so far as a list.
func (b *Builder) List(lastChunk bool) *List {
	res := &List{
		FnArray:   append([]OpCode(nil), b.list.FnArray...),
		ArgsArray: append([]Args(nil), b.list.ArgsArray...),
		LastChunk: lastChunk,
	}
	return res
}

// Chunk returns the operations built so far as a chunk, and resets the
// builder.
func (b *Builder) Chunk(lastChunk bool) Chunk {
	c := Chunk{
		FnArray:   b.list.FnArray,
		ArgsArray: b.list.ArgsArray,
		LastChunk: lastChunk,
	}
	b.list = List{}
	return c
}
