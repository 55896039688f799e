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
	"fmt"
	"time"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics"
)

// TaskState describes the progress of a [Task].
type TaskState int

// These are the possible states of a task.
const (
	Idle TaskState = iota
	Accumulating
	GraphicsReady
	Running
	Paused
	Completed
	Cancelled
)

func (s TaskState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case GraphicsReady:
		return "graphics-ready"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// Task is a single render request.
type Task struct {
	// OnContinue, if set, is called instead of scheduling the next slice
	// of work.  The function must eventually call cont, or cancel the task.
	OnContinue func(cont func())

	page   *Page
	st     *intentState
	params RenderParams
	lease  *Lease
	canvas *graphics.Canvas

	status    TaskState
	idx       int
	running   bool
	cancelled bool
	useFrames bool

	depID    string
	depTries int

	finished bool
	done     chan struct{}
	err      error
}

// Done returns a channel which is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the outcome of the task, once Done is closed.  A cancelled
// task reports a [*pdfview.RenderingCancelledError].
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// State returns the current state of the task.
func (t *Task) State() TaskState {
	return t.status
}

// OperatorListIndex returns the number of operations executed so far.
func (t *Task) OperatorListIndex() int {
	return t.idx
}

// Cancel stops the task.  The surface is released immediately.  If no
// other task uses the operator list, the stream is aborted after the
// page's grace period plus extraDelay.
func (t *Task) Cancel(extraDelay time.Duration) {
	t.cancelWith(pdfview.Cancelled("rendering cancelled", extraDelay))
}

func (t *Task) cancelWith(reason error) {
	if t.finished {
		return
	}
	t.cancelled = true
	t.running = false
	t.status = Cancelled
	t.endDrawing()
	t.complete(reason)
}

func (t *Task) initializeGraphics() {
	p := t.page
	opts := graphics.CanvasOptions{
		Compositor:      t.params.Compositor,
		CommonObjs:      p.opts.CommonObjs,
		OptionalContent: t.params.OptionalContent,
		PageColors:      t.params.PageColors,
		TimeBudget:      p.opts.TimeBudget,
		StepInterval:    p.opts.StepInterval,
		Now:             p.sched.Now,
	}
	t.canvas = graphics.NewCanvas(t.params.Surface, t.params.Factory, p.objs, opts)

	transform := matrix.Identity
	if t.params.Transform != nil {
		transform = *t.params.Transform
	}
	t.canvas.BeginDrawing(transform, t.params.Viewport, t.params.Background)
	if t.status == Idle || t.status == Accumulating {
		t.status = GraphicsReady
	}
	if t.params.Stepper != nil && t.st.list != nil {
		t.params.Stepper.UpdateOperatorList(t.st.list)
	}
}

// operatorListChanged is called when new operations are available.
func (t *Task) operatorListChanged() {
	if t.canvas == nil || t.finished {
		return
	}
	if t.params.Stepper != nil {
		t.params.Stepper.UpdateOperatorList(t.st.list)
	}
	if t.running {
		return
	}
	t.resume()
}

// resume schedules the next slice of work.
func (t *Task) resume() {
	t.running = true
	if t.cancelled {
		return
	}
	if t.OnContinue != nil {
		t.OnContinue(t.schedule)
	} else {
		t.schedule()
	}
}

func (t *Task) schedule() {
	if t.finished {
		return
	}
	if t.useFrames {
		t.page.sched.RequestFrame(t.next)
	} else {
		t.page.sched.Microtask(t.next)
	}
}

// next executes one slice of the operator list.
func (t *Task) next() {
	if t.cancelled || t.finished {
		return
	}
	t.status = Running

	list := t.st.list
	idx, err := t.execute()
	if err != nil {
		t.fail(err)
		return
	}
	t.idx = idx

	if idx == list.Len() {
		t.running = false
		if list.LastChunk {
			t.finish()
		} else {
			t.status = Accumulating
		}
		return
	}

	if dep := t.canvas.PendingDependency(); dep != "" {
		t.waitFor(dep)
		return
	}

	if t.params.Stepper != nil && idx == t.params.Stepper.NextBreakPoint() {
		t.status = Paused
	}
}

// waitFor polls for an unresolved object once per frame.  After
// FontRetries frames, rendering continues without the object.
func (t *Task) waitFor(id string) {
	if id != t.depID {
		t.depID = id
		t.depTries = 0
	}
	p := t.page
	if t.depTries < p.opts.FontRetries {
		t.depTries++
		p.sched.RequestFrame(t.next)
		return
	}
	pdfview.Logger().Warn("object not available, continuing without it",
		"page", p.index, "id", id)
	t.canvas.SkipDependency(id)
	t.schedule()
}

// execute runs the interpreter, converting a panic into an error.
func (t *Task) execute() (idx int, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = t.idx
			err = fmt.Errorf("rendering page %d: %v", t.page.index, r)
		}
	}()
	return t.canvas.ExecuteOperatorList(t.st.list, t.idx, t.resume, t.params.Stepper), nil
}

func (t *Task) finish() {
	t.status = Completed
	t.endDrawing()
	t.complete(nil)
}

func (t *Task) fail(err error) {
	if t.finished {
		return
	}
	pdfview.Logger().Warn("render task failed",
		"page", t.page.index, "error", err)
	t.running = false
	t.status = Completed
	t.endDrawing()
	t.complete(err)
}

// endDrawing releases the canvas and the surface.  The lease is released
// even if the surface misbehaves.
func (t *Task) endDrawing() {
	defer t.lease.Release()
	if t.canvas == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			pdfview.Logger().Warn("cannot finish drawing",
				"page", t.page.index, "error", r)
		}
	}()
	t.canvas.EndDrawing()
}

// complete delivers the outcome of the task.  Only the first call has an
// effect.
func (t *Task) complete(err error) {
	if t.finished {
		return
	}
	t.finished = true
	t.err = err
	close(t.done)

	pdfview.Logger().Debug("render task finished",
		"page", t.page.index, "state", t.status.String(), "error", err)
	t.page.taskDone(t, err)
}
