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
	"fmt"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview/graphics/content"
)

// This file implements the path construction and path painting operations.
// Path segments are sent to all target surfaces, so that a clipping path
// constructed in soft mask mode also applies to the suspended page.

func opMoveTo(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	y := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.moveTo(x, y)
	return nil
}

func (c *Canvas) moveTo(x, y float64) {
	for _, s := range c.targets() {
		s.MoveTo(x, y)
	}
	c.curX, c.curY = x, y
	c.startX, c.startY = x, y
	c.cur.updatePathBox(x, y)
}

func opLineTo(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	y := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.lineTo(x, y)
	return nil
}

func (c *Canvas) lineTo(x, y float64) {
	for _, s := range c.targets() {
		s.LineTo(x, y)
	}
	c.curX, c.curY = x, y
	c.cur.updatePathBox(x, y)
}

// opCurveTo appends a cubic Bézier curve.
//
// This implements the "curveTo" opcode.
func opCurveTo(c *Canvas, p *content.ArgParser) error {
	x1 := p.GetFloat()
	y1 := p.GetFloat()
	x2 := p.GetFloat()
	y2 := p.GetFloat()
	x3 := p.GetFloat()
	y3 := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.curveTo(x1, y1, x2, y2, x3, y3)
	return nil
}

// opCurveTo2 appends a Bézier curve whose first control point is the
// current point.
//
// This implements the "curveTo2" opcode.
func opCurveTo2(c *Canvas, p *content.ArgParser) error {
	x2 := p.GetFloat()
	y2 := p.GetFloat()
	x3 := p.GetFloat()
	y3 := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.curveTo(c.curX, c.curY, x2, y2, x3, y3)
	return nil
}

// opCurveTo3 appends a Bézier curve whose second control point is the
// end point.
//
// This implements the "curveTo3" opcode.
func opCurveTo3(c *Canvas, p *content.ArgParser) error {
	x1 := p.GetFloat()
	y1 := p.GetFloat()
	x3 := p.GetFloat()
	y3 := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.curveTo(x1, y1, x3, y3, x3, y3)
	return nil
}

func (c *Canvas) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	for _, s := range c.targets() {
		s.CurveTo(x1, y1, x2, y2, x3, y3)
	}
	c.cur.updatePathBox(x1, y1)
	c.cur.updatePathBox(x2, y2)
	c.cur.updatePathBox(x3, y3)
	c.curX, c.curY = x3, y3
}

func opRectangle(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	y := p.GetFloat()
	w := p.GetFloat()
	h := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.rectangle(x, y, w, h)
	return nil
}

func (c *Canvas) rectangle(x, y, w, h float64) {
	c.moveTo(x, y)
	c.lineTo(x+w, y)
	c.lineTo(x+w, y+h)
	c.lineTo(x, y+h)
	c.closePath()
}

func opClosePath(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.closePath()
	return nil
}

func (c *Canvas) closePath() {
	for _, s := range c.targets() {
		s.ClosePath()
	}
	c.curX, c.curY = c.startX, c.startY
}

// opConstructPath appends several path segments at once.  The first
// argument lists the path opcodes, the second argument holds all
// coordinates in one flat array.
//
// This implements the "constructPath" opcode.
func opConstructPath(c *Canvas, p *content.ArgParser) error {
	ops := p.GetArray()
	coords := p.GetNumbers(-1)
	if err := p.Check(); err != nil {
		return err
	}

	j := 0
	take := func(n int) ([]float64, error) {
		if j+n > len(coords) {
			return nil, fmt.Errorf("constructPath: not enough coordinates")
		}
		res := coords[j : j+n]
		j += n
		return res, nil
	}
	for _, raw := range ops {
		op, err := pathOpCode(raw)
		if err != nil {
			return err
		}
		switch op {
		case content.MoveTo:
			v, err := take(2)
			if err != nil {
				return err
			}
			c.moveTo(v[0], v[1])
		case content.LineTo:
			v, err := take(2)
			if err != nil {
				return err
			}
			c.lineTo(v[0], v[1])
		case content.CurveTo:
			v, err := take(6)
			if err != nil {
				return err
			}
			c.curveTo(v[0], v[1], v[2], v[3], v[4], v[5])
		case content.CurveTo2:
			v, err := take(4)
			if err != nil {
				return err
			}
			c.curveTo(c.curX, c.curY, v[0], v[1], v[2], v[3])
		case content.CurveTo3:
			v, err := take(4)
			if err != nil {
				return err
			}
			c.curveTo(v[0], v[1], v[2], v[3], v[2], v[3])
		case content.Rectangle:
			v, err := take(4)
			if err != nil {
				return err
			}
			c.rectangle(v[0], v[1], v[2], v[3])
		case content.ClosePath:
			c.closePath()
		default:
			return fmt.Errorf("constructPath: unexpected %s", op)
		}
	}
	return nil
}

func pathOpCode(raw any) (content.OpCode, error) {
	switch x := raw.(type) {
	case string:
		return content.ParseOpCode(x)
	case float64:
		return content.OpCode(x), nil
	case int:
		return content.OpCode(x), nil
	}
	return 0, fmt.Errorf("constructPath: invalid opcode %v", raw)
}

// paint fills and/or strokes the current path and then ends the path.
func (c *Canvas) paint(fill, evenOdd, stroke bool) {
	dirty := c.cur.paintBox(stroke)
	if c.cur.Visible && c.contentVisible() {
		s := c.surface
		if fill {
			s.SetGlobalAlpha(c.cur.FillAlpha)
			s.Fill(evenOdd)
		}
		if stroke {
			s.SetGlobalAlpha(c.cur.StrokeAlpha)
			s.Stroke()
			s.SetGlobalAlpha(c.cur.FillAlpha)
		}
	}
	c.consumePath(dirty)
}

// consumePath ends the current path.  A pending clipping path is applied
// at this point.
func (c *Canvas) consumePath(dirty rect.Rect) {
	if c.pendingClip != clipNone {
		evenOdd := c.pendingClip == clipEvenOdd
		for _, s := range c.targets() {
			s.Clip(evenOdd)
		}
		c.cur.ClipBox = intersectBox(c.cur.ClipBox, c.cur.PathBox)
		c.pendingClip = clipNone
	}
	c.compose(dirty)
	for _, s := range c.targets() {
		s.BeginPath()
	}
	c.cur.resetPathBox()
}

func opStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.paint(false, false, true)
	return nil
}

func opCloseStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.closePath()
	c.paint(false, false, true)
	return nil
}

func opFill(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.paint(true, false, false)
	return nil
}

func opEOFill(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.paint(true, true, false)
	return nil
}

func opFillStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.paint(true, false, true)
	return nil
}

func opEOFillStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.paint(true, true, true)
	return nil
}

func opCloseFillStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.closePath()
	c.paint(true, false, true)
	return nil
}

func opCloseEOFillStroke(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.closePath()
	c.paint(true, true, true)
	return nil
}

// opEndPath ends the path without painting it.  This is used to apply
// a clipping path.
//
// This implements the "endPath" opcode.
func opEndPath(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.consumePath(emptyBox())
	return nil
}

// opClip marks the current path to be used as a clipping path.  The clipping
// path takes effect when the path is ended by the next painting operation.
//
// This implements the "clip" opcode.
func opClip(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.pendingClip = clipNonZero
	return nil
}

func opEOClip(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.pendingClip = clipEvenOdd
	return nil
}
