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

import (
	"fmt"
	"strconv"
)

// OpCode identifies an operation in an operator list.
type OpCode uint8

// These are the opcodes understood by the graphics interpreter.
// The argument layout of each opcode is given in the comment.
const (
	opInvalid OpCode = iota

	// General graphics state
	Save           // (none)
	Restore        // (none)
	Transform      // a b c d e f
	SetLineWidth   // width
	SetLineCap     // cap
	SetLineJoin    // join
	SetMiterLimit  // limit
	SetDash        // [dash array] phase
	SetGState      // {key: value, ...}
	SetFillAlpha   // alpha
	SetStrokeAlpha // alpha

	// Path construction
	MoveTo        // x y
	LineTo        // x y
	CurveTo       // x1 y1 x2 y2 x3 y3
	CurveTo2      // x2 y2 x3 y3 (first control point is the current point)
	CurveTo3      // x1 y1 x3 y3 (second control point is the end point)
	Rectangle     // x y width height
	ClosePath     // (none)
	ConstructPath // [opcodes] [coordinates]

	// Path painting
	Stroke            // (none)
	CloseStroke       // (none)
	Fill              // (none)
	EOFill            // (none)
	FillStroke        // (none)
	EOFillStroke      // (none)
	CloseFillStroke   // (none)
	CloseEOFillStroke // (none)
	EndPath           // (none)
	Clip              // (none)
	EOClip            // (none)

	// Colour
	SetFillRGBColor   // r g b, or "#rrggbb"
	SetStrokeRGBColor // r g b, or "#rrggbb"
	SetFillGray       // gray
	SetStrokeGray     // gray

	// Text
	BeginText            // (none)
	EndText              // (none)
	SetCharSpacing       // spacing
	SetWordSpacing       // spacing
	SetHScale            // scale in percent
	SetLeading           // leading
	SetFont              // fontID size
	SetTextRenderingMode // mode
	SetTextRise          // rise
	MoveText             // tx ty
	SetLeadingMoveText   // tx ty
	SetTextMatrix        // a b c d e f
	NextLine             // (none)
	ShowText             // [string or number, ...]

	// Images
	PaintImageXObject     // objID
	PaintImageMaskXObject // objID

	// Groups, forms and soft masks
	BeginGroup            // {bbox, matrix, isolated, knockout, smask}
	EndGroup              // (none)
	PaintFormXObjectBegin // [matrix] [bbox]
	PaintFormXObjectEnd   // (none)
	BeginSMaskMode        // (none)
	EndSMaskMode          // (none)

	// Marked content
	BeginMarkedContent      // tag
	BeginMarkedContentProps // tag {properties}
	EndMarkedContent        // (none)

	// Annotations
	BeginAnnotation // id [rect] [matrix]
	EndAnnotation   // (none)

	// Dependency announces an object which must be resolved before
	// rendering starts.
	Dependency // objID

	opEnd
)

var opNames = [...]string{
	Save:           "save",
	Restore:        "restore",
	Transform:      "transform",
	SetLineWidth:   "setLineWidth",
	SetLineCap:     "setLineCap",
	SetLineJoin:    "setLineJoin",
	SetMiterLimit:  "setMiterLimit",
	SetDash:        "setDash",
	SetGState:      "setGState",
	SetFillAlpha:   "setFillAlpha",
	SetStrokeAlpha: "setStrokeAlpha",

	MoveTo:        "moveTo",
	LineTo:        "lineTo",
	CurveTo:       "curveTo",
	CurveTo2:      "curveTo2",
	CurveTo3:      "curveTo3",
	Rectangle:     "rectangle",
	ClosePath:     "closePath",
	ConstructPath: "constructPath",

	Stroke:            "stroke",
	CloseStroke:       "closeStroke",
	Fill:              "fill",
	EOFill:            "eoFill",
	FillStroke:        "fillStroke",
	EOFillStroke:      "eoFillStroke",
	CloseFillStroke:   "closeFillStroke",
	CloseEOFillStroke: "closeEOFillStroke",
	EndPath:           "endPath",
	Clip:              "clip",
	EOClip:            "eoClip",

	SetFillRGBColor:   "setFillRGBColor",
	SetStrokeRGBColor: "setStrokeRGBColor",
	SetFillGray:       "setFillGray",
	SetStrokeGray:     "setStrokeGray",

	BeginText:            "beginText",
	EndText:              "endText",
	SetCharSpacing:       "setCharSpacing",
	SetWordSpacing:       "setWordSpacing",
	SetHScale:            "setHScale",
	SetLeading:           "setLeading",
	SetFont:              "setFont",
	SetTextRenderingMode: "setTextRenderingMode",
	SetTextRise:          "setTextRise",
	MoveText:             "moveText",
	SetLeadingMoveText:   "setLeadingMoveText",
	SetTextMatrix:        "setTextMatrix",
	NextLine:             "nextLine",
	ShowText:             "showText",

	PaintImageXObject:     "paintImageXObject",
	PaintImageMaskXObject: "paintImageMaskXObject",

	BeginGroup:            "beginGroup",
	EndGroup:              "endGroup",
	PaintFormXObjectBegin: "paintFormXObjectBegin",
	PaintFormXObjectEnd:   "paintFormXObjectEnd",
	BeginSMaskMode:        "beginSMaskMode",
	EndSMaskMode:          "endSMaskMode",

	BeginMarkedContent:      "beginMarkedContent",
	BeginMarkedContentProps: "beginMarkedContentProps",
	EndMarkedContent:        "endMarkedContent",

	BeginAnnotation: "beginAnnotation",
	EndAnnotation:   "endAnnotation",

	Dependency: "dependency",
}

var opByName map[string]OpCode

func init() {
	opByName = make(map[string]OpCode, len(opNames))
	for op, name := range opNames {
		if name != "" {
			opByName[name] = OpCode(op)
		}
	}
}

// IsValid reports whether op is a known opcode.
func (op OpCode) IsValid() bool {
	return op > opInvalid && op < opEnd
}

func (op OpCode) String() string {
	if op.IsValid() {
		return opNames[op]
	}
	return "OpCode(" + strconv.Itoa(int(op)) + ")"
}

// ParseOpCode returns the opcode with the given name.
func ParseOpCode(name string) (OpCode, error) {
	op, ok := opByName[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return op, nil
}

// IsPathPainting reports whether op consumes the current path.
func (op OpCode) IsPathPainting() bool {
	return op >= Stroke && op <= EndPath
}
