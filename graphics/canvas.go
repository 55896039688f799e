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
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/font"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics/content"
)

// Default values for [CanvasOptions].
const (
	DefaultTimeBudget   = 15 * time.Millisecond
	DefaultStepInterval = 10
)

// OptionalContent decides the visibility of optional content groups.
type OptionalContent interface {
	IsVisible(group string) bool
}

// Stepper is a debugging hook which can interrupt execution at given
// operator indices.
type Stepper interface {
	// NextBreakPoint returns the index of the next operation where
	// execution should stop, or -1.
	NextBreakPoint() int

	// BreakIt is called when execution stops at index i.  Calling cont
	// resumes execution.
	BreakIt(i int, cont func())

	// UpdateOperatorList is called when more operations become available.
	UpdateOperatorList(l *content.List)
}

// PageColors forces the foreground and background colours of a page,
// for example for a high contrast mode.
type PageColors struct {
	Foreground color.NRGBA
	Background color.NRGBA
}

// CanvasOptions configures a [Canvas].
type CanvasOptions struct {
	// Compositor is used for soft masks and transparency groups.
	Compositor Compositor

	// CommonObjs holds objects shared between pages.  Ids of such objects
	// start with "g_".  If this is nil, all objects are looked up in the
	// page objects.
	CommonObjs Resolver

	OptionalContent OptionalContent
	PageColors      *PageColors

	// TimeBudget is the maximum time spent in a single call to
	// ExecuteOperatorList, if a continuation function is given.
	// The default is [DefaultTimeBudget].
	TimeBudget time.Duration

	// StepInterval is the number of operations executed between checks of
	// the time budget.  The default is [DefaultStepInterval].
	StepInterval int

	// Now returns the current time.  The default is time.Now.
	Now func() time.Time
}

type clipRule uint8

const (
	clipNone clipRule = iota
	clipNonZero
	clipEvenOdd
)

type textFrame struct {
	tm, tlm matrix.Matrix
}

type groupFrame struct {
	prev     Surface
	scratch  Surface
	depth    int
	alpha    float64
	isolated bool
	knockout bool
	smask    *SMask
	bounds   rect.Rect
}

type faceKey struct {
	font string
	size int
}

// Canvas executes operator lists against a [Surface].
type Canvas struct {
	page    Surface
	surface Surface
	factory SurfaceFactory
	comp    Compositor
	objs    pools
	opts    CanvasOptions
	w, h    int

	cur   *State
	stack []*State

	textStack   []textFrame
	groupStack  []groupFrame
	markedStack []bool

	curX, curY     float64
	startX, startY float64
	pendingClip    clipRule

	suspended Surface
	tempSMask *SMask

	pendingDep string
	skipDeps   map[string]bool

	faces      map[faceKey]font.Face
	badFonts   map[string]bool
	started    bool
	ended      bool
	drawDepth  int
	baseMatrix matrix.Matrix
}

// NewCanvas allocates a new interpreter which draws onto surface.
func NewCanvas(surface Surface, factory SurfaceFactory, objs Resolver, opts CanvasOptions) *Canvas {
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = DefaultStepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	w, h := surface.Size()
	return &Canvas{
		page:     surface,
		surface:  surface,
		factory:  factory,
		comp:     opts.Compositor,
		objs:     pools{objs: objs, common: opts.CommonObjs},
		opts:     opts,
		w:        w,
		h:        h,
		cur:      NewState(w, h),
		skipDeps: make(map[string]bool),
		faces:    make(map[faceKey]font.Face),
		badFonts: make(map[string]bool),
	}
}

// BeginDrawing prepares the surface for rendering a page.
//
// The surface is filled with the background colour, unless the colour is
// fully transparent.  The page is mapped onto the surface using the
// viewport transformation, followed by transform.
func (c *Canvas) BeginDrawing(transform matrix.Matrix, vp Viewport, background color.NRGBA) {
	if c.started {
		return
	}
	c.started = true

	if c.opts.PageColors != nil && background.A != 0 {
		background = c.opts.PageColors.Background
	}
	if background.A != 0 {
		s := c.surface
		s.Save()
		s.SetTransform(matrix.Identity)
		s.SetGlobalAlpha(1)
		s.SetFillColor(background)
		s.BeginPath()
		s.MoveTo(0, 0)
		s.LineTo(float64(c.w), 0)
		s.LineTo(float64(c.w), float64(c.h))
		s.LineTo(0, float64(c.h))
		s.ClosePath()
		s.Fill(false)
		s.BeginPath()
		s.Restore()
	}

	c.surface.Save()
	c.drawDepth = 1
	c.cur.CTM = vp.Transform.Mul(transform)
	c.baseMatrix = c.cur.CTM
	c.applyStyle(c.surface)
}

// EndDrawing finishes rendering.  Outstanding soft masks and groups are
// dropped, the state stack is unwound and temporary surfaces are released.
// EndDrawing can be called more than once; only the first call has an
// effect.
func (c *Canvas) EndDrawing() {
	if c.ended {
		return
	}
	c.ended = true

	if c.suspended != nil {
		c.surface = c.suspended
		c.suspended = nil
	}
	for len(c.groupStack) > 0 {
		g := c.groupStack[len(c.groupStack)-1]
		c.groupStack = c.groupStack[:len(c.groupStack)-1]
		c.surface = g.prev
	}
	for len(c.stack) > 0 {
		c.cur = c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		c.surface.Restore()
	}
	for ; c.drawDepth > 0; c.drawDepth-- {
		c.surface.Restore()
	}

	c.tempSMask = nil
	c.cur.ActiveSMask = nil
	c.textStack = nil
	c.markedStack = nil
	clear(c.faces)
}

// Depth returns the number of saved graphics states.
func (c *Canvas) Depth() int {
	return len(c.stack)
}

// TextDepth returns the nesting depth of text objects.
func (c *Canvas) TextDepth() int {
	return len(c.textStack)
}

// ClipBox returns the bounding box of the current clipping region, in
// device space.
func (c *Canvas) ClipBox() rect.Rect {
	return c.cur.ClipBox
}

// State returns the current graphics state.
// The returned value must not be modified.
func (c *Canvas) State() *State {
	return c.cur
}

// InSMaskMode reports whether a soft mask is active.
func (c *Canvas) InSMaskMode() bool {
	return c.suspended != nil
}

// PendingDependency returns the id of the object execution is waiting for,
// or "" if execution is not blocked.
func (c *Canvas) PendingDependency() string {
	return c.pendingDep
}

// SkipDependency makes execution proceed past a dependency which cannot be
// resolved.
func (c *Canvas) SkipDependency(id string) {
	c.skipDeps[id] = true
	if c.pendingDep == id {
		c.pendingDep = ""
	}
}

// ExecuteOperatorList executes operations from l, starting at index start.
// The return value is the index of the first operation which has not been
// executed.  This is never smaller than start.
//
// Execution stops in the following cases:
//   - All available operations have been executed.
//   - cont is not nil and the time budget is exhausted.  In this case
//     cont is called before returning.
//   - A Dependency operation refers to an object which is not yet
//     resolved.  [Canvas.PendingDependency] returns the object id.
//   - stepper is not nil and the next operation is a break point.  The
//     stepper's BreakIt method is called with cont.
func (c *Canvas) ExecuteOperatorList(l *content.List, start int, cont func(), stepper Stepper) int {
	i := start
	n := l.Len()
	if i >= n {
		return i
	}

	chunked := cont != nil && n-i > c.opts.StepInterval
	var endTime time.Time
	if chunked {
		endTime = c.opts.Now().Add(c.opts.TimeBudget)
	}
	steps := 0

	for {
		if stepper != nil && i == stepper.NextBreakPoint() {
			stepper.BreakIt(i, cont)
			return i
		}

		op := l.FnArray[i]
		if op == content.Dependency {
			if !c.dependencyReady(l.ArgsArray[i]) {
				return i
			}
		} else {
			c.execute(i, op, l.ArgsArray[i])
		}

		i++
		if i == n {
			return i
		}

		if chunked {
			steps++
			if steps > c.opts.StepInterval {
				if c.opts.Now().After(endTime) {
					cont()
					return i
				}
				steps = 0
			}
		}
	}
}

func (c *Canvas) dependencyReady(args content.Args) bool {
	for _, arg := range args {
		id, ok := arg.(string)
		if !ok || c.skipDeps[id] {
			continue
		}
		if !c.objs.Has(id) {
			c.pendingDep = id
			return false
		}
	}
	c.pendingDep = ""
	return true
}

func (c *Canvas) execute(i int, op content.OpCode, args content.Args) {
	var h opHandler
	if int(op) < len(handlers) {
		h = handlers[op]
	}
	if h == nil {
		pdfview.Logger().Warn("skipping unknown operation",
			"index", i, "op", op.String())
		return
	}
	p := content.NewArgParser(args)
	if err := h(c, p); err != nil {
		pdfview.Logger().Warn("skipping malformed operation",
			"error", &pdfview.MalformedOperatorError{Index: i, Op: op.String(), Err: err})
	}
}

// targets returns the surfaces which receive structural operations.
// In soft mask mode, this includes the suspended page surface.
func (c *Canvas) targets() []Surface {
	if c.suspended != nil {
		return []Surface{c.surface, c.suspended}
	}
	return []Surface{c.surface}
}

// applyStyle copies the drawing parameters from the graphics state to s.
func (c *Canvas) applyStyle(s Surface) {
	st := c.cur
	s.SetTransform(st.CTM)
	s.SetFillColor(st.FillColor)
	s.SetStrokeColor(st.StrokeColor)
	s.SetLineWidth(st.LineWidth)
	s.SetLineCap(st.LineCap)
	s.SetLineJoin(st.LineJoin)
	s.SetMiterLimit(st.MiterLimit)
	s.SetDash(st.Dash, st.DashPhase)
	s.SetGlobalAlpha(st.FillAlpha)
}

func (c *Canvas) contentVisible() bool {
	for _, v := range c.markedStack {
		if !v {
			return false
		}
	}
	return true
}

// mapColor applies the forced page colours, if any.
func (c *Canvas) mapColor(col color.NRGBA) color.NRGBA {
	pc := c.opts.PageColors
	if pc == nil {
		return col
	}
	lum := (0.2126*float64(col.R) + 0.7152*float64(col.G) + 0.0722*float64(col.B)) / 255
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*lum))
	}
	return color.NRGBA{
		R: mix(pc.Foreground.R, pc.Background.R),
		G: mix(pc.Foreground.G, pc.Background.G),
		B: mix(pc.Foreground.B, pc.Background.B),
		A: col.A,
	}
}

// deviceRect converts a device space box to a pixel rectangle, clipped to
// the surface.
func (c *Canvas) deviceRect(r rect.Rect) image.Rectangle {
	if isEmptyBox(r) {
		return image.Rectangle{}
	}
	res := image.Rect(
		int(math.Floor(r.LLx)), int(math.Floor(r.LLy)),
		int(math.Ceil(r.URx)), int(math.Ceil(r.URy)))
	return res.Intersect(image.Rect(0, 0, c.w, c.h))
}

// compose blends the soft mask surface onto the page, within dirty.
func (c *Canvas) compose(dirty rect.Rect) {
	mask := c.cur.ActiveSMask
	if c.suspended == nil || mask == nil || c.comp == nil {
		return
	}
	r := c.deviceRect(dirty)
	if r.Empty() {
		return
	}
	c.comp.Compose(c.suspended, c.surface, mask.Surface, mask.Subtype, mask.Backdrop, r)
	c.surface.Clear(r)
}
