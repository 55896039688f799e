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
	"math"

	"golang.org/x/image/font"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics/content"
)

// This file implements the text operations.

// opBeginText starts a text object.  The text matrix and the text line
// matrix are reset to the identity.
//
// This implements the "beginText" opcode.
func opBeginText(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	t := &c.cur.Text
	c.textStack = append(c.textStack, textFrame{tm: t.Tm, tlm: t.Tlm})
	t.Tm = matrix.Identity
	t.Tlm = matrix.Identity
	return nil
}

// opEndText ends a text object.
//
// This implements the "endText" opcode.
func opEndText(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	if len(c.textStack) == 0 {
		return nil
	}
	f := c.textStack[len(c.textStack)-1]
	c.textStack = c.textStack[:len(c.textStack)-1]
	c.cur.Text.Tm = f.tm
	c.cur.Text.Tlm = f.tlm
	return nil
}

func opSetCharSpacing(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.CharSpacing = x
	return nil
}

func opSetWordSpacing(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.WordSpacing = x
	return nil
}

// opSetHScale sets the horizontal scaling.  The argument is in percent.
func opSetHScale(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.HScale = x / 100
	return nil
}

func opSetLeading(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.Leading = x
	return nil
}

// opSetFont selects the font and the font size.
//
// This implements the "setFont" opcode.
func opSetFont(c *Canvas, p *content.ArgParser) error {
	id := p.GetString()
	size := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.setFont(id, size)
	return nil
}

// setFont looks up the font object.  If the font is not available, a
// warning is logged once per font and text is drawn with the surface's
// default face.
func (c *Canvas) setFont(id string, size float64) {
	t := &c.cur.Text
	t.FontID = id
	t.FontSize = size
	t.Font = nil

	obj, err := c.objs.Get(id)
	if err == nil {
		f, ok := obj.(Font)
		if ok {
			t.Font = f
			return
		}
		err = fmt.Errorf("object %q is not a font", id)
	}
	if !c.badFonts[id] {
		c.badFonts[id] = true
		pdfview.Logger().Warn("font not available, using fallback",
			"font", id, "error", err)
	}
}

func opSetTextRenderingMode(c *Canvas, p *content.ArgParser) error {
	mode := p.GetInt()
	if err := p.Check(); err != nil {
		return err
	}
	if mode < 0 || mode > 7 {
		return fmt.Errorf("invalid text rendering mode %d", mode)
	}
	if mode >= 4 {
		pdfview.Logger().Debug("text clipping is not supported", "mode", mode)
	}
	c.cur.Text.Mode = mode
	return nil
}

func opSetTextRise(c *Canvas, p *content.ArgParser) error {
	x := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.Rise = x
	return nil
}

// opMoveText starts a new line, offset from the start of the current line.
//
// This implements the "moveText" opcode.
func opMoveText(c *Canvas, p *content.ArgParser) error {
	tx := p.GetFloat()
	ty := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.moveText(tx, ty)
	return nil
}

func (c *Canvas) moveText(tx, ty float64) {
	t := &c.cur.Text
	t.Tlm = matrix.Translate(tx, ty).Mul(t.Tlm)
	t.Tm = t.Tlm
}

// opSetLeadingMoveText is like moveText, but also sets the leading to -ty.
func opSetLeadingMoveText(c *Canvas, p *content.ArgParser) error {
	tx := p.GetFloat()
	ty := p.GetFloat()
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.Leading = -ty
	c.moveText(tx, ty)
	return nil
}

func opSetTextMatrix(c *Canvas, p *content.ArgParser) error {
	var m matrix.Matrix
	for i := range m {
		m[i] = p.GetFloat()
	}
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.Text.Tm = m
	c.cur.Text.Tlm = m
	return nil
}

func opNextLine(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.moveText(0, -c.cur.Text.Leading)
	return nil
}

// opShowText draws text.  The argument is an array of strings and numbers.
// Numbers adjust the position, in thousandths of text space units.
//
// This implements the "showText" opcode.
func opShowText(c *Canvas, p *content.ArgParser) error {
	var items []any
	switch arg := p.GetAny().(type) {
	case string:
		items = []any{arg}
	case []any:
		items = arg
	default:
		return fmt.Errorf("expected array, got %T", arg)
	}
	if err := p.Check(); err != nil {
		return err
	}

	t := &c.cur.Text
	visible := c.cur.Visible && c.contentVisible() && t.Mode != 3 && t.Mode != 7
	strokeOnly := t.Mode == 1 || t.Mode == 5
	if visible {
		c.surface.SetGlobalAlpha(c.cur.FillAlpha)
		if strokeOnly {
			c.surface.SetGlobalAlpha(c.cur.StrokeAlpha)
			c.surface.SetFillColor(c.cur.StrokeColor)
		}
	}

	for _, item := range items {
		switch x := item.(type) {
		case string:
			c.showString(x, visible)
		case float64:
			t.Tm = matrix.Translate(-x/1000*t.FontSize*t.HScale, 0).Mul(t.Tm)
		case int:
			t.Tm = matrix.Translate(-float64(x)/1000*t.FontSize*t.HScale, 0).Mul(t.Tm)
		case nil:
			// skip
		default:
			return fmt.Errorf("unexpected %T in text array", item)
		}
	}

	if visible && strokeOnly {
		c.surface.SetFillColor(c.cur.FillColor)
		c.surface.SetGlobalAlpha(c.cur.FillAlpha)
	}
	c.compose(c.cur.ClipBox)
	return nil
}

func (c *Canvas) showString(s string, visible bool) {
	t := &c.cur.Text
	if t.FontSize == 0 {
		return
	}

	trm := matrix.Matrix{t.FontSize * t.HScale, 0, 0, t.FontSize, 0, t.Rise}.Mul(t.Tm).Mul(c.cur.CTM)
	px := scaleFactor(trm)
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return
	}
	face, facePx := c.face(px)

	// text space units per pixel of the face, along the baseline
	unit := t.FontSize / facePx
	faceToDevice := matrix.Scale(1/facePx, 1/facePx)

	for _, r := range s {
		if visible {
			trm := matrix.Matrix{t.FontSize * t.HScale, 0, 0, t.FontSize, 0, t.Rise}.Mul(t.Tm).Mul(c.cur.CTM)
			c.surface.FillText(string(r), face, faceToDevice.Mul(trm))
		}
		adv, ok := face.GlyphAdvance(r)
		w0 := 0.0
		if ok {
			w0 = float64(adv) / 64
		}
		tx := w0 * unit
		tx += t.CharSpacing
		if r == ' ' {
			tx += t.WordSpacing
		}
		t.Tm = matrix.Translate(tx*t.HScale, 0).Mul(t.Tm)
	}
}

// face returns the face for the current font at the given pixel size,
// together with the size actually used.
func (c *Canvas) face(px float64) (font.Face, float64) {
	t := &c.cur.Text
	size := max(int(math.Round(px)), 1)
	key := faceKey{font: t.FontID, size: size}
	if f, ok := c.faces[key]; ok {
		return f, float64(size)
	}

	var f font.Face
	if t.Font != nil {
		var err error
		f, err = t.Font.Face(float64(size))
		if err != nil && !c.badFonts[t.FontID] {
			c.badFonts[t.FontID] = true
			pdfview.Logger().Warn("cannot load font face, using fallback",
				"font", t.FontID, "error", err)
		}
	}
	if f == nil {
		f = c.surface.DefaultFace(float64(size))
	}
	c.faces[key] = f
	return f, float64(size)
}
