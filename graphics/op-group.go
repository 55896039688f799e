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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics/content"
)

// This file implements transparency groups and soft masks.

// opBeginGroup starts a transparency group.  The argument is a dictionary
// with the optional keys "bbox", "matrix", "isolated", "knockout" and
// "smask".  If "smask" is present, the group defines a soft mask which
// becomes available to the next setGState operation.
//
// This implements the "beginGroup" opcode.
func opBeginGroup(c *Canvas, p *content.ArgParser) error {
	g := p.GetDict()
	if err := p.Check(); err != nil {
		return err
	}
	if c.factory == nil {
		return errors.New("no surface factory for transparency groups")
	}

	var m []float64
	var bbox []float64
	var err error
	if m, err = optNumbers(g["matrix"], 6); err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	if bbox, err = optNumbers(g["bbox"], 4); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	isolated, _ := g["isolated"].(bool)
	knockout, _ := g["knockout"].(bool)

	var smask *SMask
	if sm, ok := g["smask"].(map[string]any); ok {
		smask = &SMask{Backdrop: color.NRGBA{A: 255}}
		if sub, _ := sm["subtype"].(string); sub == "Alpha" {
			smask.Subtype = SMaskAlpha
		}
		if bd, ok := content.Floats(sm, "backdrop"); ok && len(bd) == 3 {
			smask.Backdrop = color.NRGBA{R: to8(bd[0]), G: to8(bd[1]), B: to8(bd[2]), A: 255}
		}
	}

	if c.suspended != nil {
		c.endSMaskMode()
		c.cur.ActiveSMask = nil
	}
	c.save()
	if m != nil {
		var mm matrix.Matrix
		copy(mm[:], m)
		c.transform(mm)
	}

	bounds := c.cur.ClipBox
	if bbox != nil {
		box := rect.Rect{LLx: bbox[0], LLy: bbox[1], URx: bbox[2], URy: bbox[3]}
		bounds = intersectBox(transformBox(c.cur.CTM, box), bounds)
	}

	if knockout {
		pdfview.Logger().Debug("knockout groups are not supported")
	}
	if !isolated && smask == nil {
		pdfview.Logger().Debug("non-isolated group drawn as isolated")
	}

	scratch := c.factory.NewScratch(c.w, c.h)
	c.applyStyle(scratch)
	scratch.SetGlobalAlpha(1)
	if bbox != nil {
		scratch.BeginPath()
		scratch.MoveTo(bbox[0], bbox[1])
		scratch.LineTo(bbox[2], bbox[1])
		scratch.LineTo(bbox[2], bbox[3])
		scratch.LineTo(bbox[0], bbox[3])
		scratch.ClosePath()
		scratch.Clip(false)
		scratch.BeginPath()
		c.cur.ClipBox = bounds
	}

	c.groupStack = append(c.groupStack, groupFrame{
		prev:     c.surface,
		scratch:  scratch,
		depth:    len(c.stack),
		alpha:    c.cur.FillAlpha,
		isolated: isolated,
		knockout: knockout,
		smask:    smask,
		bounds:   bounds,
	})
	c.cur.FillAlpha = 1
	c.cur.StrokeAlpha = 1
	c.surface = scratch
	return nil
}

// opEndGroup ends a transparency group.  Ordinary groups are painted onto
// the enclosing surface, soft mask groups are kept for the next
// setGState operation.
//
// This implements the "endGroup" opcode.
func opEndGroup(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	if len(c.groupStack) == 0 {
		return errors.New("endGroup without beginGroup")
	}
	g := c.groupStack[len(c.groupStack)-1]
	c.groupStack = c.groupStack[:len(c.groupStack)-1]

	if c.suspended != nil {
		c.endSMaskMode()
	}
	for len(c.stack) > g.depth {
		c.restore()
	}
	c.surface = g.prev
	c.restore()

	if g.smask != nil {
		g.smask.Surface = g.scratch
		c.tempSMask = g.smask
		return nil
	}
	if c.comp != nil {
		c.comp.Paint(c.surface, g.scratch, g.alpha)
	}
	c.compose(g.bounds)
	return nil
}

func opBeginSMaskMode(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	if c.tempSMask == nil {
		return errors.New("no soft mask defined")
	}
	c.cur.ActiveSMask = c.tempSMask
	c.checkSMaskState()
	return nil
}

func opEndSMaskMode(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.cur.ActiveSMask = nil
	c.checkSMaskState()
	return nil
}

// checkSMaskState enters or leaves soft mask mode, depending on whether
// the graphics state has an active soft mask.
func (c *Canvas) checkSMaskState() {
	inSMaskMode := c.suspended != nil
	if c.cur.ActiveSMask != nil && !inSMaskMode {
		c.beginSMaskMode()
	} else if c.cur.ActiveSMask == nil && inSMaskMode {
		c.endSMaskMode()
	}
}

// beginSMaskMode redirects drawing to an off-screen surface.  The page
// surface is suspended until endSMaskMode is called.
func (c *Canvas) beginSMaskMode() {
	if c.suspended != nil || c.factory == nil {
		return
	}
	scratch := c.factory.NewScratch(c.w, c.h)
	c.suspended = c.surface
	c.surface = scratch
	c.applyStyle(scratch)
}

func (c *Canvas) endSMaskMode() {
	if c.suspended == nil {
		return
	}
	c.surface = c.suspended
	c.suspended = nil
	c.applyStyle(c.surface)
}

// opBeginMarkedContent starts a marked content sequence.
//
// This implements the "beginMarkedContent" opcode.
func opBeginMarkedContent(c *Canvas, p *content.ArgParser) error {
	p.GetString()
	if err := p.Check(); err != nil {
		return err
	}
	c.markedStack = append(c.markedStack, true)
	c.cur.Visible = c.contentVisible()
	return nil
}

// opBeginMarkedContentProps starts a marked content sequence with a
// property list.  For optional content (tag "OC"), the property "id" names
// the optional content group which decides the visibility of the content.
//
// This implements the "beginMarkedContentProps" opcode.
func opBeginMarkedContentProps(c *Canvas, p *content.ArgParser) error {
	tag := p.GetString()
	props := p.GetDict()
	if err := p.Check(); err != nil {
		return err
	}
	visible := true
	if tag == "OC" && c.opts.OptionalContent != nil {
		if id, ok := props["id"].(string); ok {
			visible = c.opts.OptionalContent.IsVisible(id)
		}
	}
	c.markedStack = append(c.markedStack, visible)
	c.cur.Visible = c.contentVisible()
	return nil
}

func opEndMarkedContent(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	if len(c.markedStack) > 0 {
		c.markedStack = c.markedStack[:len(c.markedStack)-1]
	}
	c.cur.Visible = c.contentVisible()
	return nil
}

// opBeginAnnotation starts drawing the appearance of an annotation.
// The arguments are the annotation id, the annotation rectangle in the
// coordinate system of the page and the matrix which maps the appearance
// stream into that rectangle.
//
// This implements the "beginAnnotation" opcode.
func opBeginAnnotation(c *Canvas, p *content.ArgParser) error {
	id := p.GetString()
	r, err := optNumbers(p.GetAny(), 4)
	if err != nil {
		return fmt.Errorf("rect: %w", err)
	}
	m, err := optNumbers(p.GetAny(), 6)
	if err != nil {
		return fmt.Errorf("matrix: %w", err)
	}
	if err := p.Check(); err != nil {
		return err
	}

	pdfview.Logger().Debug("drawing annotation", "id", id)
	c.save()
	c.cur.CTM = c.baseMatrix
	for _, s := range c.targets() {
		s.SetTransform(c.cur.CTM)
	}
	if r != nil {
		c.clipRect(r[0], r[1], r[2]-r[0], r[3]-r[1])
	}
	if m != nil {
		var mm matrix.Matrix
		copy(mm[:], m)
		c.transform(mm)
	}
	return nil
}

func opEndAnnotation(c *Canvas, p *content.ArgParser) error {
	if err := p.Check(); err != nil {
		return err
	}
	c.restore()
	return nil
}
