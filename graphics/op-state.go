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

package graphics

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics/content"
)

// This file implements the operations which change the graphics state.

type opHandler func(c *Canvas, p *content.ArgParser) error

var handlers [256]opHandler

func init() {
	handlers[content.Save] = opSave
	handlers[content.Restore] = opRestore
	handlers[content.Transform] = opTransform
	handlers[content.SetLineWidth] = opSetLineWidth
	handlers[content.SetLineCap] = opSetLineCap
	handlers[content.SetLineJoin] = opSetLineJoin
	handlers[content.SetMiterLimit] = opSetMiterLimit
	handlers[content.SetDash] = opSetDash
	handlers[content.SetGState] = opSetGState
	handlers[content.SetFillAlpha] = opSetFillAlpha
	handlers[content.SetStrokeAlpha] = opSetStrokeAlpha

	handlers[content.MoveTo] = opMoveTo
	handlers[content.LineTo] = opLineTo
	handlers[content.CurveTo] = opCurveTo
	handlers[content.CurveTo2] = opCurveTo2
	handlers[content.CurveTo3] = opCurveTo3
	handlers[content.Rectangle] = opRectangle
	handlers[content.ClosePath] = opClosePath
	handlers[content.ConstructPath] = opConstructPath

	handlers[content.Stroke] = opStroke
	handlers[content.CloseStroke] = opCloseStroke
	handlers[content.Fill] = opFill
	handlers[content.EOFill] = opEOFill
	handlers[content.FillStroke] = opFillStroke
	handlers[content.EOFillStroke] = opEOFillStroke
	handlers[content.CloseFillStroke] = opCloseFillStroke
	handlers[content.CloseEOFillStroke] = opCloseEOFillStroke
	handlers[content.EndPath] = opEndPath
	handlers[content.Clip] = opClip
	handlers[content.EOClip] = opEOClip

	handlers[content.SetFillRGBColor] = opSetFillRGBColor
	handlers[content.SetStrokeRGBColor] = opSetStrokeRGBColor
	handlers[content.SetFillGray] = opSetFillGray
	handlers[content.SetStrokeGray] = opSetStrokeGray

	handlers[content.BeginText] = opBeginText
	handlers[content.EndText] = opEndText
	handlers[content.SetCharSpacing] = opSetCharSpacing
	handlers[content.SetWordSpacing] = opSetWordSpacing
	handlers[content.SetHScale] = opSetHScale
	handlers[content.SetLeading] = opSetLeading
	handlers[content.SetFont] = opSetFont
	handlers[content.SetTextRenderingMode] = opSetTextRenderingMode
	handlers[content.SetTextRise] = opSetTextRise
	handlers[content.MoveText] = opMoveText
	handlers[content.SetLeadingMoveText] = opSetLeadingMoveText
	handlers[content.SetTextMatrix] = opSetTextMatrix
	handlers[content.NextLine] = opNextLine
	handlers[content.ShowText] = opShowText

	handlers[content.PaintImageXObject] = opPaintImageXObject
	handlers[content.PaintImageMaskXObject] = opPaintImageMaskXObject

	handlers[content.BeginGroup] = opBeginGroup
	handlers[content.EndGroup] = opEndGroup
	handlers[content.PaintFormXObjectBegin] = opPaintFormXObjectBegin
	handlers[content.PaintFormXObjectEnd] = opPaintFormXObjectEnd
	handlers[content.BeginSMaskMode] = opBeginSMaskMode
	handlers[content.EndSMaskMode] = opEndSMaskMode

	handlers[content.BeginMarkedContent] = opBeginMarkedContent
	handlers[content.BeginMarkedContentProps] = opBeginMarkedContentProps
	handlers[content.EndMarkedContent] = opEndMarkedContent

	handlers[content.BeginAnnotation] = opBeginAnnotation
	handlers[content.EndAnnotation] = opEndAnnotation
}

// opSave pushes a copy of the graphics state.
//
// This implements the "save" opcode.
func opSave(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.save()
	return nil
}

func (c *Canvas) save() {
	for _, s := range c.targets() {
		s.Save()
	}
	c.stack = append(c.stack, c.cur)
	c.cur = c.cur.Clone()
}

// opRestore pops the graphics state.  Restoring with an empty stack does
// nothing.
//
// This implements the "restore" opcode.
func opRestore(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.restore()
	return nil
}

func (c *Canvas) restore() {
	if len(c.stack) == 0 {
		if c.suspended != nil {
			c.endSMaskMode()
		}
		return
	}
	c.cur = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	for _, s := range c.targets() {
		s.Restore()
	}
	c.pendingClip = clipNone
	c.cur.Visible = c.contentVisible()
	c.checkSMaskState()
}

// opTransform modifies the current transformation matrix.
//
// This implements the "transform" opcode.
func opTransform(c *Canvas, p *content.ArgParser) error {
	var m matrix.Matrix
	for i := range m {
		m[i] = p.GetFloat()
	}
	if err := p.Check(); err != nil {
		return err
	}
	c.transform(m)
	return nil
}

func (c *Canvas) transform(m matrix.Matrix) {
	c.cur.CTM = m.Mul(c.cur.CTM)
	for _, s := range c.targets() {
		s.SetTransform(c.cur.CTM)
	}
}

func opSetLineWidth(c *Canvas, p *content.ArgParser) error {
	w := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.setLineWidth(w)
	return nil
}

func (c *Canvas) setLineWidth(w float64) {
	if w < 0 {
		w = 0
	}
	c.cur.LineWidth = w
	c.surface.SetLineWidth(w)
}

func opSetLineCap(c *Canvas, p *content.ArgParser) error {
	lc := p.GetInt()
	if err := p.Check(); err != nil {
		return err
	}
	return c.setLineCap(lc)
}

func (c *Canvas) setLineCap(lc int) error {
	if lc < 0 || lc > 2 {
		return fmt.Errorf("invalid line cap %d", lc)
	}
	c.cur.LineCap = LineCap(lc)
	c.surface.SetLineCap(c.cur.LineCap)
	return nil
}

func opSetLineJoin(c *Canvas, p *content.ArgParser) error {
	join := p.GetInt()
	if err := p.Check(); err != nil {
		return err
	}
	return c.setLineJoin(join)
}

func (c *Canvas) setLineJoin(join int) error {
	if join < 0 || join > 2 {
		return fmt.Errorf("invalid line join %d", join)
	}
	c.cur.LineJoin = LineJoin(join)
	c.surface.SetLineJoin(c.cur.LineJoin)
	return nil
}

func opSetMiterLimit(c *Canvas, p *content.ArgParser) error {
	limit := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.MiterLimit = limit
	c.surface.SetMiterLimit(limit)
	return nil
}

func opSetDash(c *Canvas, p *content.ArgParser) error {
	pattern := p.GetNumbers(-1)
	phase := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	return c.setDash(pattern, phase)
}

func (c *Canvas) setDash(pattern []float64, phase float64) error {
	allZero := true
	for _, x := range pattern {
		if x < 0 {
			return errors.New("negative dash length")
		}
		if x != 0 {
			allZero = false
		}
	}
	if allZero {
		pattern = nil
	}
	c.cur.Dash = pattern
	c.cur.DashPhase = phase
	c.surface.SetDash(pattern, phase)
	return nil
}

func opSetFillAlpha(c *Canvas, p *content.ArgParser) error {
	a := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.FillAlpha = clamp01(a)
	return nil
}

func opSetStrokeAlpha(c *Canvas, p *content.ArgParser) error {
	a := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.StrokeAlpha = clamp01(a)
	return nil
}

// opSetGState sets several graphics state parameters at once.
// The argument is a dictionary with keys as in a PDF ExtGState dictionary.
//
// This implements the "setGState" opcode.
func opSetGState(c *Canvas, p *content.ArgParser) error {
	params := p.GetDict()
	if err := p.Check(); err != nil {
		return err
	}

	var errs []error
	for key, val := range params {
		q := content.NewArgParser(content.Args{val})
		switch key {
		case "LW":
			if lw := q.GetFloat(); q.Err() == nil {
				c.setLineWidth(lw)
			}
		case "LC":
			if lc := q.GetInt(); q.Err() == nil {
				errs = append(errs, c.setLineCap(lc))
			}
		case "LJ":
			if join := q.GetInt(); q.Err() == nil {
				errs = append(errs, c.setLineJoin(join))
			}
		case "ML":
			if ml := q.GetFloat(); q.Err() == nil {
				c.cur.MiterLimit = ml
				c.surface.SetMiterLimit(ml)
			}
		case "D":
			d := content.NewArgParser(q.GetArray())
			pattern := d.GetNumbers(-1)
			phase := d.GetFloat()
			if err := d.Check(); err != nil {
				errs = append(errs, fmt.Errorf("D: %w", err))
				continue
			}
			errs = append(errs, c.setDash(pattern, phase))
		case "CA":
			if a := q.GetFloat(); q.Err() == nil {
				c.cur.StrokeAlpha = clamp01(a)
			}
		case "ca":
			if a := q.GetFloat(); q.Err() == nil {
				c.cur.FillAlpha = clamp01(a)
			}
		case "Font":
			f := content.NewArgParser(q.GetArray())
			id := f.GetString()
			size := f.GetFloat()
			if err := f.Check(); err != nil {
				errs = append(errs, fmt.Errorf("Font: %w", err))
				continue
			}
			c.setFont(id, size)
		case "SMask":
			active := val != nil && val != false
			if active {
				c.cur.ActiveSMask = c.tempSMask
			} else {
				c.cur.ActiveSMask = nil
			}
			c.tempSMask = nil
			c.checkSMaskState()
		case "BM":
			if mode, _ := val.(string); mode != "" && mode != "Normal" {
				pdfview.Logger().Debug("unsupported blend mode", "mode", mode)
			}
		default:
			pdfview.Logger().Debug("unsupported graphics state parameter", "key", key)
		}
		if err := q.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// opSetFillRGBColor sets the fill colour.
//
// This implements the "setFillRGBColor" opcode.
func opSetFillRGBColor(c *Canvas, p *content.ArgParser) error {
	col, err := parseRGB(p)
	if err != nil {
		return err
	}
	c.setFillColor(col)
	return nil
}

func opSetStrokeRGBColor(c *Canvas, p *content.ArgParser) error {
	col, err := parseRGB(p)
	if err != nil {
		return err
	}
	c.setStrokeColor(col)
	return nil
}

func opSetFillGray(c *Canvas, p *content.ArgParser) error {
	g := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	v := to8(g)
	c.setFillColor(color.NRGBA{R: v, G: v, B: v, A: 255})
	return nil
}

func opSetStrokeGray(c *Canvas, p *content.ArgParser) error {
	g := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	v := to8(g)
	c.setStrokeColor(color.NRGBA{R: v, G: v, B: v, A: 255})
	return nil
}

func (c *Canvas) setFillColor(col color.NRGBA) {
	col = c.mapColor(col)
	c.cur.FillColor = col
	c.surface.SetFillColor(col)
}

func (c *Canvas) setStrokeColor(col color.NRGBA) {
	col = c.mapColor(col)
	c.cur.StrokeColor = col
	c.surface.SetStrokeColor(col)
}

// parseRGB reads either three numbers in the range [0, 1] or a single
// string of the form "#rrggbb".
func parseRGB(p *content.ArgParser) (color.NRGBA, error) {
	if p.Remaining() == 1 {
		s := p.GetString()
		if err := p.Check(); err != nil {
			return color.NRGBA{}, err
		}
		return parseHexColor(s)
	}
	r := p.GetFloat()
	g := p.GetFloat()
	b := p.GetFloat()
	if err := p.Check(); err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func to8(x float64) uint8 {
	return uint8(math.Round(clamp01(x) * 255))
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
