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
	"bytes"
	"context"
	"errors"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/graphics"
	"seehuhn.de/go/pdfview/graphics/content"
	"seehuhn.de/go/pdfview/raster"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// chanSource delivers chunks sent by the test.
type chanSource struct {
	ch chan content.Chunk

	mu    sync.Mutex
	opens int
	ctxs  []context.Context
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan content.Chunk)}
}

func (s *chanSource) Stream(ctx context.Context, key IntentKey) (ChunkReader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	s.ctxs = append(s.ctxs, ctx)
	return chanReader{s.ch}, nil
}

func (s *chanSource) numOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

func (s *chanSource) aborted(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctxs[i].Err() != nil
}

// send hands a chunk to the stream and runs the scheduler until the
// chunk has been processed.
func (s *chanSource) send(t *testing.T, sched *ManualScheduler, c content.Chunk) {
	t.Helper()
	sched.RunUntilIdle()
	select {
	case s.ch <- c:
	case <-time.After(time.Second):
		t.Fatal("stream is not being read")
	}
	if !sched.WaitPending(time.Second) {
		t.Fatal("chunk was not delivered")
	}
	sched.RunUntilIdle()
}

type chanReader struct {
	ch chan content.Chunk
}

func (r chanReader) Next(ctx context.Context) (content.Chunk, error) {
	select {
	case c := <-r.ch:
		return c, nil
	case <-ctx.Done():
		return content.Chunk{}, ctx.Err()
	}
}

type errSource struct {
	err error
}

func (s errSource) Stream(ctx context.Context, key IntentKey) (ChunkReader, error) {
	return s, nil
}

func (s errSource) Next(ctx context.Context) (content.Chunk, error) {
	return content.Chunk{}, s.err
}

type panicSurface struct {
	*raster.Surface
}

func (s panicSurface) Fill(evenOdd bool) {
	panic("broken surface")
}

func redSquare() *content.Builder {
	return content.NewBuilder().
		SetFillRGBColor(1, 0, 0).
		Rectangle(0, 0, 20, 20).
		Fill()
}

func params(s graphics.Surface) RenderParams {
	return RenderParams{
		Surface:    s,
		Factory:    raster.Factory{},
		Compositor: raster.Compositor{},
		Viewport:   graphics.NewViewport(rect.Rect{URx: 20, URy: 20}, 1, 0),
	}
}

// waitDone drives the scheduler until the task has finished.
func waitDone(t *testing.T, sched *ManualScheduler, task *Task) {
	t.Helper()
	for {
		sched.RunUntilIdle()
		select {
		case <-task.Done():
			return
		default:
		}
		if !sched.WaitPending(time.Second) {
			t.Fatalf("task stuck in state %s", task.State())
		}
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	pdfview.SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { pdfview.SetLogger(nil) })
	return buf
}

func TestRenderComplete(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := NewMemorySource(redSquare().List(true))
	page := NewPage(0, src, nil, nil, sched, nil, Options{})

	s := raster.New(20, 20, raster.Options{})
	task, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, sched, task)

	if err := task.Err(); err != nil {
		t.Fatal(err)
	}
	if task.State() != Completed {
		t.Errorf("state: got %s, want completed", task.State())
	}
	if task.OperatorListIndex() != 4 {
		t.Errorf("index: got %d, want 4", task.OperatorListIndex())
	}
	got := s.Image().RGBAAt(10, 10)
	if got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

func TestSurfaceInUse(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := NewMemorySource(redSquare().List(true))
	page := NewPage(0, src, nil, nil, sched, nil, Options{})
	s := raster.New(20, 20, raster.Options{})

	t1, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	_, err = page.Render(params(s))
	if !errors.Is(err, pdfview.ErrSurfaceInUse) {
		t.Fatalf("got %v, want ErrSurfaceInUse", err)
	}
	var inUse *pdfview.SurfaceInUseError
	if !errors.As(err, &inUse) {
		t.Errorf("wrong error type %T", err)
	}

	waitDone(t, sched, t1)
	t2, err := page.Render(params(s))
	if err != nil {
		t.Fatalf("surface not released: %v", err)
	}
	waitDone(t, sched, t2)
}

func TestCancelGracePeriod(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := newChanSource()
	leases := NewLeases()
	page := NewPage(0, src, nil, nil, sched, leases, Options{GracePeriod: 100 * time.Millisecond})
	s := raster.New(20, 20, raster.Options{})

	task, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))
	if task.OperatorListIndex() != 4 {
		t.Fatalf("index: got %d, want 4", task.OperatorListIndex())
	}
	if task.State() != Accumulating {
		t.Errorf("state: got %s, want accumulating", task.State())
	}

	task.Cancel(0)
	select {
	case <-task.Done():
	default:
		t.Fatal("cancelled task is not done")
	}
	if !pdfview.IsCancelled(task.Err()) {
		t.Errorf("got %v, want cancellation", task.Err())
	}
	if leases.InUse(s) {
		t.Fatal("surface still in use")
	}

	// A second release must not affect a new lease.
	lease, err := leases.Acquire(s)
	if err != nil {
		t.Fatal(err)
	}
	task.Cancel(0)
	if !leases.InUse(s) {
		t.Error("lease released twice")
	}
	lease.Release()

	sched.Advance(99 * time.Millisecond)
	if src.aborted(0) {
		t.Fatal("stream aborted before the grace period")
	}
	sched.Advance(time.Millisecond)
	if !src.aborted(0) {
		t.Fatal("stream not aborted after the grace period")
	}
}

func TestCancelExtraDelay(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := newChanSource()
	page := NewPage(0, src, nil, nil, sched, nil, Options{})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))
	task.Cancel(50 * time.Millisecond)

	sched.Advance(149 * time.Millisecond)
	if src.aborted(0) {
		t.Fatal("stream aborted too early")
	}
	sched.Advance(time.Millisecond)
	if !src.aborted(0) {
		t.Fatal("stream not aborted")
	}
}

func TestCancelReuseStream(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := newChanSource()
	page := NewPage(0, src, nil, nil, sched, nil, Options{})
	s := raster.New(20, 20, raster.Options{})

	t1, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))
	t1.Cancel(0)
	sched.Advance(50 * time.Millisecond)

	t2, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	sched.RunUntilIdle()
	if t2.OperatorListIndex() != 4 {
		t.Errorf("index: got %d, want 4", t2.OperatorListIndex())
	}

	sched.Advance(time.Second)
	if src.aborted(0) {
		t.Fatal("stream aborted while in use")
	}

	src.send(t, sched, content.NewBuilder().Save().Restore().Chunk(true))
	waitDone(t, sched, t2)
	if err := t2.Err(); err != nil {
		t.Fatal(err)
	}
	if t2.OperatorListIndex() != 6 {
		t.Errorf("index: got %d, want 6", t2.OperatorListIndex())
	}
	if n := src.numOpens(); n != 1 {
		t.Errorf("stream opened %d times", n)
	}
}

// lateStopScheduler hands out timers which cannot be stopped, as happens
// when a timer has fired but its callback is still queued.
type lateStopScheduler struct {
	*ManualScheduler
}

func (s lateStopScheduler) After(d time.Duration, fn func()) Timer {
	s.ManualScheduler.After(d, fn)
	return &lateTimer{}
}

type lateTimer struct{}

func (*lateTimer) Stop() bool { return false }

func TestCancelReuseStreamLateTimer(t *testing.T) {
	sched := lateStopScheduler{NewManualScheduler(t0)}
	src := newChanSource()
	leases := NewLeases()
	page := NewPage(0, src, nil, nil, sched, leases, Options{})
	s := raster.New(20, 20, raster.Options{})

	t1, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched.ManualScheduler, redSquare().Chunk(false))
	t1.Cancel(0)

	t2, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	sched.RunUntilIdle()

	sched.Advance(time.Second)
	if src.aborted(0) {
		t.Fatal("stream aborted while in use")
	}

	src.send(t, sched.ManualScheduler, content.NewBuilder().Save().Restore().Chunk(true))
	waitDone(t, sched.ManualScheduler, t2)
	if err := t2.Err(); err != nil {
		t.Fatal(err)
	}
	if leases.InUse(s) {
		t.Error("surface still in use")
	}
}

func TestSharedList(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := newChanSource()
	page := NewPage(0, src, nil, nil, sched, nil, Options{})

	t1, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	t2, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))
	if t1.OperatorListIndex() != 4 || t2.OperatorListIndex() != 4 {
		t.Fatalf("indices %d %d", t1.OperatorListIndex(), t2.OperatorListIndex())
	}

	t1.Cancel(0)
	sched.Advance(time.Second)
	if src.aborted(0) {
		t.Fatal("stream aborted while still in use")
	}

	src.send(t, sched, content.Chunk{LastChunk: true})
	waitDone(t, sched, t2)
	if err := t2.Err(); err != nil {
		t.Fatal(err)
	}
	if n := src.numOpens(); n != 1 {
		t.Errorf("stream opened %d times", n)
	}
}

func TestDestroy(t *testing.T) {
	sched := NewManualScheduler(t0)
	src := newChanSource()
	leases := NewLeases()
	page := NewPage(0, src, nil, nil, sched, leases, Options{})
	s := raster.New(20, 20, raster.Options{})

	task, err := page.Render(params(s))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))

	page.Destroy()
	if !pdfview.IsCancelled(task.Err()) {
		t.Errorf("got %v, want cancellation", task.Err())
	}
	if !src.aborted(0) {
		t.Error("stream not aborted immediately")
	}
	if leases.InUse(s) {
		t.Error("surface still in use")
	}
	if _, err := page.Render(params(s)); err == nil {
		t.Error("render after destroy succeeded")
	}
}

func TestPanicRecovered(t *testing.T) {
	captureLog(t)
	sched := NewManualScheduler(t0)
	src := NewMemorySource(redSquare().List(true))
	leases := NewLeases()
	page := NewPage(0, src, nil, nil, sched, leases, Options{})

	bad := panicSurface{raster.New(20, 20, raster.Options{})}
	good := raster.New(20, 20, raster.Options{})
	t1, err := page.Render(params(bad))
	if err != nil {
		t.Fatal(err)
	}
	t2, err := page.Render(params(good))
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, sched, t1)
	waitDone(t, sched, t2)

	if err := t1.Err(); err == nil || pdfview.IsCancelled(err) {
		t.Errorf("broken surface: got %v", err)
	}
	if leases.InUse(bad) {
		t.Error("broken surface still in use")
	}
	if err := t2.Err(); err != nil {
		t.Errorf("other task failed: %v", err)
	}
}

func TestStreamError(t *testing.T) {
	captureLog(t)
	sched := NewManualScheduler(t0)
	streamErr := errors.New("connection lost")
	page := NewPage(0, errSource{streamErr}, nil, nil, sched, nil, Options{})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, sched, task)
	if !errors.Is(task.Err(), streamErr) {
		t.Errorf("got %v, want %v", task.Err(), streamErr)
	}
}

func TestDependencyPolling(t *testing.T) {
	buf := captureLog(t)
	sched := NewManualScheduler(t0)
	list := content.NewBuilder().Dependency("f1").Op(content.Save).Op(content.Restore).List(true)
	page := NewPage(0, NewMemorySource(list), nil, nil, sched, nil, Options{FontRetries: 3})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, sched, task)
	if err := task.Err(); err != nil {
		t.Fatal(err)
	}
	if sched.Frames < 4 {
		t.Errorf("only %d frames", sched.Frames)
	}
	if !strings.Contains(buf.String(), "object not available") {
		t.Error("missing warning")
	}
	if task.OperatorListIndex() != 3 {
		t.Errorf("index: got %d, want 3", task.OperatorListIndex())
	}
}

func TestDependencyResolved(t *testing.T) {
	buf := captureLog(t)
	sched := NewManualScheduler(t0)
	objs := graphics.NewObjects()
	list := content.NewBuilder().Dependency("f1").Op(content.Save).Op(content.Restore).List(true)
	page := NewPage(0, NewMemorySource(list), objs, nil, sched, nil, Options{FontRetries: 100})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		sched.WaitPending(time.Second)
		sched.Step()
	}
	objs.Resolve("f1", "font data")
	waitDone(t, sched, task)
	if err := task.Err(); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "object not available") {
		t.Error("unexpected warning")
	}
}

func TestOnContinue(t *testing.T) {
	sched := NewManualScheduler(t0)
	page := NewPage(0, NewMemorySource(redSquare().List(true)), nil, nil, sched, nil, Options{})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	var conts []func()
	task.OnContinue = func(cont func()) {
		conts = append(conts, cont)
	}

	for len(conts) == 0 {
		if !sched.WaitPending(time.Second) {
			t.Fatal("OnContinue not called")
		}
		sched.RunUntilIdle()
	}
	select {
	case <-task.Done():
		t.Fatal("task finished without continuing")
	default:
	}

	for len(conts) > 0 {
		cont := conts[0]
		conts = conts[1:]
		cont()
		waitDone(t, sched, task)
	}
	if err := task.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestCleanup(t *testing.T) {
	sched := NewManualScheduler(t0)
	objs := graphics.NewObjects()
	objs.Resolve("img", "data")
	src := newChanSource()
	page := NewPage(0, src, objs, nil, sched, nil, Options{})

	task, err := page.Render(params(raster.New(20, 20, raster.Options{})))
	if err != nil {
		t.Fatal(err)
	}
	src.send(t, sched, redSquare().Chunk(false))
	if page.Cleanup() {
		t.Fatal("cleanup while rendering")
	}
	if !objs.Has("img") {
		t.Fatal("objects dropped while rendering")
	}

	src.send(t, sched, content.Chunk{LastChunk: true})
	waitDone(t, sched, task)
	if len(page.intents) != 0 {
		t.Errorf("%d intents left after delayed cleanup", len(page.intents))
	}
	if objs.Has("img") {
		t.Error("objects not dropped")
	}
}

func TestIntentKey(t *testing.T) {
	storage := annotation.NewStorage()
	display := pdfview.Combine(pdfview.IntentDisplay, pdfview.AnnotationModeEnable, false)
	withStorage := pdfview.Combine(pdfview.IntentDisplay, pdfview.AnnotationModeEnableStorage, false)

	k1 := makeIntentKey(0, display, storage)
	k2 := makeIntentKey(0, display, storage)
	if k1 != k2 {
		t.Fatal("key is not deterministic")
	}
	s1 := makeIntentKey(0, withStorage, storage)
	if s1 == k1 {
		t.Error("intent flags not part of the key")
	}

	storage.SetValue("ink_1", annotation.RawValue(&annotation.InkRecord{
		Common:    annotation.Common{PageIndex: 0, Rect: [4]float64{0, 0, 10, 10}},
		Thickness: 1,
		Opacity:   1,
	}))
	if makeIntentKey(0, display, storage) != k1 {
		t.Error("storage content changed a key which does not use it")
	}
	if makeIntentKey(0, withStorage, storage) == s1 {
		t.Error("storage content not part of the key")
	}
	if makeIntentKey(1, display, storage) == k1 {
		t.Error("page index not part of the key")
	}
}

func TestGetOperatorList(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Close()

	list := redSquare().List(true)
	page := NewPage(0, NewMemorySource(list), nil, nil, loop, nil, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := page.GetOperatorList(ctx, "display", pdfview.AnnotationModeEnable)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(list.FnArray, got.FnArray); d != "" {
		t.Errorf("opcodes (-want +got):\n%s", d)
	}
	if !got.LastChunk {
		t.Error("list not complete")
	}

	_, err = page.GetOperatorList(ctx, "screen", pdfview.AnnotationModeEnable)
	if err == nil {
		t.Error("invalid intent accepted")
	}
}

func TestRenderOnLoop(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Close()

	page := NewPage(0, NewMemorySource(redSquare().List(true)), nil, nil, loop, nil, Options{})
	s := raster.New(20, 20, raster.Options{})

	taskC := make(chan *Task, 1)
	loop.Post(func() {
		task, err := page.Render(params(s))
		if err != nil {
			t.Error(err)
		}
		taskC <- task
	})
	task := <-taskC
	if task == nil {
		t.FailNow()
	}
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
	if err := task.Err(); err != nil {
		t.Fatal(err)
	}
	if got := s.Image().RGBAAt(5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel: got %v", got)
	}
}
