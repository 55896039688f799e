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

package render

import (
	"context"
	"errors"
	"image/color"
	"io"
	"time"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/graphics"
	"seehuhn.de/go/pdfview/graphics/content"
)

// Default values for [Options].
const (
	DefaultGracePeriod = 100 * time.Millisecond
	DefaultFontRetries = 10
)

// maxExtraDelay bounds the extra delay of a cancelled task.  Longer
// delays are ignored.
const maxExtraDelay = time.Second

var errPageDestroyed = errors.New("page has been destroyed")

// Options configures a [Page].
type Options struct {
	// GracePeriod is the time an operator list stream is kept open after
	// the last task using it has been cancelled.
	GracePeriod time.Duration

	// TimeBudget and StepInterval are passed on to the interpreter.
	TimeBudget   time.Duration
	StepInterval int

	// FontRetries is the number of frames a task waits for an unresolved
	// object before rendering continues without it.
	FontRetries int

	// CommonObjs holds the objects shared between pages.
	CommonObjs graphics.Resolver
}

// RenderParams describes a render request.
type RenderParams struct {
	// Surface is the drawing target.  A surface can only be used by one
	// task at a time.
	Surface graphics.Surface

	// Factory allocates off-screen surfaces for soft masks and groups.
	Factory graphics.SurfaceFactory

	// Compositor combines off-screen surfaces with the page.
	Compositor graphics.Compositor

	Viewport graphics.Viewport

	// Intent is one of "display", "print" or "any".  The empty string
	// means "display".
	Intent string

	// AnnotationMode selects the annotations to render.  The zero value
	// disables annotations.
	AnnotationMode pdfview.AnnotationMode

	// Transform, if set, is applied after the viewport transformation.
	Transform *matrix.Matrix

	// Background is the page colour.  If this is fully transparent, the
	// surface is not cleared.
	Background color.NRGBA

	OptionalContent graphics.OptionalContent
	PageColors      *graphics.PageColors

	// PrintStorage is a frozen annotation storage for printing.  If this
	// is nil, the page's storage is used.
	PrintStorage *annotation.PrintStorage

	IsEditing bool

	// Stepper, if set, allows to stop rendering at break points.
	Stepper graphics.Stepper
}

// Page renders the operator lists of one page.
type Page struct {
	index   int
	src     ChunkSource
	objs    graphics.Resolver
	storage *annotation.Storage
	sched   Scheduler
	leases  *Leases
	opts    Options

	intents        map[IntentKey]*intentState
	pendingCleanup bool
	destroyed      bool
}

// intentState holds the operator list shared by all tasks with the same
// intent key.
type intentState struct {
	key   IntentKey
	list  *content.List
	tasks []*Task

	streaming  bool
	aborted    bool
	cancel     context.CancelFunc
	graceTimer Timer
	waiters    []func(error)
}

// NewPage allocates a new page.  If leases is nil, a private lease
// registry is used.
func NewPage(index int, src ChunkSource, objs graphics.Resolver, storage *annotation.Storage, sched Scheduler, leases *Leases, opts Options) *Page {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = graphics.DefaultTimeBudget
	}
	if opts.StepInterval <= 0 {
		opts.StepInterval = graphics.DefaultStepInterval
	}
	if opts.FontRetries < 0 {
		opts.FontRetries = 0
	} else if opts.FontRetries == 0 {
		opts.FontRetries = DefaultFontRetries
	}
	if objs == nil {
		objs = graphics.NewObjects()
	}
	if leases == nil {
		leases = NewLeases()
	}
	return &Page{
		index:   index,
		src:     src,
		objs:    objs,
		storage: storage,
		sched:   sched,
		leases:  leases,
		opts:    opts,
		intents: make(map[IntentKey]*intentState),
	}
}

// Index returns the zero-based page number.
func (p *Page) Index() int {
	return p.index
}

// Render starts rendering the page onto params.Surface.
//
// An error is returned if the surface is in use by another task, or if
// the page has been destroyed.  All other errors are reported by the
// returned task.
func (p *Page) Render(params RenderParams) (*Task, error) {
	if p.destroyed {
		return nil, errPageDestroyed
	}
	if params.Surface == nil {
		return nil, errors.New("missing surface")
	}
	if params.Intent == "" {
		params.Intent = "display"
	}
	ri, err := pdfview.ParseIntent(params.Intent)
	if err != nil {
		return nil, err
	}
	ri = pdfview.Combine(ri, params.AnnotationMode, params.IsEditing)

	var src annotation.Source
	if params.PrintStorage != nil && ri&pdfview.IntentPrint != 0 {
		src = params.PrintStorage
	} else if p.storage != nil {
		src = p.storage
	}
	key := makeIntentKey(p.index, ri, src)

	lease, err := p.leases.Acquire(params.Surface)
	if err != nil {
		return nil, err
	}

	st := p.intentState(key)
	p.pendingCleanup = false

	t := &Task{
		page:      p,
		st:        st,
		params:    params,
		lease:     lease,
		useFrames: ri&pdfview.IntentDisplay != 0,
		done:      make(chan struct{}),
	}
	st.tasks = append(st.tasks, t)

	if st.list == nil || !st.list.LastChunk {
		t.status = Accumulating
		p.ensureStream(st)
	}

	pdfview.Logger().Debug("render task created",
		"page", p.index, "intent", ri.String(), "key", key.CacheKey)

	p.sched.Microtask(func() {
		if t.finished {
			return
		}
		t.initializeGraphics()
		t.operatorListChanged()
	})
	return t, nil
}

// GetOperatorList returns the complete operator list for the given
// intent, waiting for the stream to finish if needed.
// The returned list must not be modified.
//
// Unlike the other methods of Page, GetOperatorList can be called from
// any goroutine except the one running the scheduler.
func (p *Page) GetOperatorList(ctx context.Context, intent string, mode pdfview.AnnotationMode) (*content.List, error) {
	if intent == "" {
		intent = "display"
	}
	ri, err := pdfview.ParseIntent(intent)
	if err != nil {
		return nil, err
	}
	ri = pdfview.Combine(ri, mode, false) | pdfview.IntentOpList

	type result struct {
		list *content.List
		err  error
	}
	ch := make(chan result, 1)
	p.sched.Microtask(func() {
		if p.destroyed {
			ch <- result{err: errPageDestroyed}
			return
		}
		var src annotation.Source
		if p.storage != nil {
			src = p.storage
		}
		st := p.intentState(makeIntentKey(p.index, ri, src))
		if st.list != nil && st.list.LastChunk {
			ch <- result{list: st.list}
			return
		}
		st.waiters = append(st.waiters, func(err error) {
			if err != nil {
				ch <- result{err: err}
			} else {
				ch <- result{list: st.list}
			}
		})
		p.ensureStream(st)
	})

	select {
	case r := <-ch:
		return r.list, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cleanup drops all cached operator lists and page objects.  If tasks are
// still running, nothing is dropped and false is returned; the cleanup
// then happens once the last task has finished.
func (p *Page) Cleanup() bool {
	for _, st := range p.intents {
		if len(st.tasks) > 0 || st.streaming {
			p.pendingCleanup = true
			return false
		}
	}
	clear(p.intents)
	if c, ok := p.objs.(interface{ Clear() }); ok {
		c.Clear()
	}
	p.pendingCleanup = false
	return true
}

func (p *Page) tryCleanup() {
	if p.pendingCleanup {
		p.Cleanup()
	}
}

// Destroy cancels all tasks and aborts all streams immediately.
// The page cannot be used afterwards.
func (p *Page) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	reason := pdfview.Cancelled("page destroyed", 0)
	for _, st := range p.intents {
		for _, t := range append([]*Task(nil), st.tasks...) {
			t.cancelWith(reason)
		}
		p.abortOperatorList(st, reason, true)
	}
	clear(p.intents)
	p.pendingCleanup = false
}

func (p *Page) intentState(key IntentKey) *intentState {
	st, ok := p.intents[key]
	if !ok {
		st = &intentState{key: key}
		p.intents[key] = st
	}
	if st.graceTimer != nil {
		st.graceTimer.Stop()
		st.graceTimer = nil
	}
	return st
}

// ensureStream starts reading the operator list, if this has not happened
// yet.
func (p *Page) ensureStream(st *intentState) {
	if st.list != nil {
		return
	}
	st.list = &content.List{}

	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	st.streaming = true
	go p.pump(ctx, st)
}

// pump reads chunks and hands them to the scheduler.
func (p *Page) pump(ctx context.Context, st *intentState) {
	r, err := p.src.Stream(ctx, st.key)
	if err != nil {
		p.sched.Microtask(func() { p.streamFailed(st, err) })
		return
	}
	for {
		chunk, err := r.Next(ctx)
		if err == io.EOF {
			p.sched.Microtask(func() {
				p.chunkArrived(st, content.Chunk{LastChunk: true})
			})
			return
		} else if err != nil {
			p.sched.Microtask(func() { p.streamFailed(st, err) })
			return
		}
		p.sched.Microtask(func() { p.chunkArrived(st, chunk) })
		if chunk.LastChunk {
			return
		}
	}
}

func (p *Page) chunkArrived(st *intentState, chunk content.Chunk) {
	if st.aborted || !st.streaming {
		return
	}
	err := st.list.AddChunk(chunk)
	if err != nil {
		pdfview.Logger().Warn("invalid operator list chunk",
			"page", p.index, "error", err)
		if len(chunk.FnArray) == len(chunk.ArgsArray) {
			return
		}
		st.list.LastChunk = chunk.LastChunk
	}

	for _, t := range append([]*Task(nil), st.tasks...) {
		t.operatorListChanged()
	}

	if st.list.LastChunk {
		st.streaming = false
		st.cancel()
		for _, w := range st.waiters {
			w(nil)
		}
		st.waiters = nil
		p.tryCleanup()
	}
}

func (p *Page) streamFailed(st *intentState, err error) {
	if st.aborted || !st.streaming {
		return
	}
	pdfview.Logger().Warn("operator list stream failed",
		"page", p.index, "error", err)

	st.streaming = false
	st.aborted = true
	st.cancel()
	if p.intents[st.key] == st {
		delete(p.intents, st.key)
	}
	for _, t := range append([]*Task(nil), st.tasks...) {
		t.fail(err)
	}
	for _, w := range st.waiters {
		w(err)
	}
	st.waiters = nil
	p.tryCleanup()
}

// taskDone is called exactly once for every task.
func (p *Page) taskDone(t *Task, err error) {
	st := t.st
	for i, other := range st.tasks {
		if other == t {
			st.tasks = append(st.tasks[:i], st.tasks[i+1:]...)
			break
		}
	}
	if err != nil {
		p.abortOperatorList(st, err, p.destroyed)
	}
	p.tryCleanup()
}

// abortOperatorList stops the stream of st.  Unless force is set, this
// only happens once no task uses the stream any more, and after a grace
// period if the last task was cancelled.
func (p *Page) abortOperatorList(st *intentState, reason error, force bool) {
	if !st.streaming {
		return
	}
	if st.graceTimer != nil {
		st.graceTimer.Stop()
		st.graceTimer = nil
	}

	if !force {
		if len(st.tasks) > 0 || len(st.waiters) > 0 {
			return
		}
		var ce *pdfview.RenderingCancelledError
		if errors.As(reason, &ce) {
			delay := p.opts.GracePeriod
			if ce.ExtraDelay > 0 && ce.ExtraDelay < maxExtraDelay {
				delay += ce.ExtraDelay
			}
			// A timer which has already fired cannot be stopped, so the
			// callback checks that the stream is still unused.
			var timer Timer
			timer = p.sched.After(delay, func() {
				if st.graceTimer != timer || len(st.tasks) > 0 || len(st.waiters) > 0 {
					return
				}
				st.graceTimer = nil
				p.abortOperatorList(st, reason, true)
			})
			st.graceTimer = timer
			return
		}
	}

	pdfview.Logger().Debug("operator list stream aborted",
		"page", p.index, "key", st.key.CacheKey, "reason", reason)

	st.streaming = false
	st.aborted = true
	st.cancel()
	for _, w := range st.waiters {
		w(reason)
	}
	st.waiters = nil
	if p.intents[st.key] == st {
		delete(p.intents, st.key)
	}
	p.tryCleanup()
}
