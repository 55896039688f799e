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
	"slices"
	"sync"
	"time"
)

// Scheduler runs the callbacks of render tasks.
//
// Microtask and RequestFrame must be safe for concurrent use.  All
// callbacks are run one at a time, on the same goroutine.
type Scheduler interface {
	// RequestFrame runs fn before the next frame is drawn.
	RequestFrame(fn func())

	// Microtask runs fn as soon as possible, after the currently running
	// callback has returned.
	Microtask(fn func())

	// After runs fn once the given duration has passed.
	After(d time.Duration, fn func()) Timer

	// Now returns the current time.
	Now() time.Time
}

// Timer is returned by [Scheduler.After].
type Timer interface {
	// Stop prevents the timer from firing.  The return value is false if
	// the timer has already fired or been stopped.
	Stop() bool
}

// DefaultFrameInterval is the frame rate of a [Loop].
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is a [Scheduler] which runs all callbacks on a single goroutine.
type Loop struct {
	// FrameInterval is the time between frames.  This must be set before
	// Run is called.
	FrameInterval time.Duration

	mu     sync.Mutex
	queue  []func()
	frames []func()
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewLoop allocates a new event loop.  Callbacks are only run while
// [Loop.Run] is active.
func NewLoop() *Loop {
	return &Loop{
		FrameInterval: DefaultFrameInterval,
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Post queues fn for execution on the loop goroutine.
// Post can be called from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Microtask implements the [Scheduler] interface.
func (l *Loop) Microtask(fn func()) {
	l.Post(fn)
}

// RequestFrame implements the [Scheduler] interface.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// After implements the [Scheduler] interface.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Now implements the [Scheduler] interface.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Run executes callbacks until Close is called.
func (l *Loop) Run() {
	ticker := time.NewTicker(l.FrameInterval)
	defer ticker.Stop()

	for {
		l.mu.Lock()
		queue := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range queue {
			select {
			case <-l.done:
				return
			default:
			}
			fn()
		}
		if len(queue) > 0 {
			continue
		}

		select {
		case <-l.done:
			return
		case <-l.wake:
		case <-ticker.C:
			l.mu.Lock()
			frames := l.frames
			l.frames = nil
			l.mu.Unlock()
			for _, fn := range frames {
				fn()
			}
		}
	}
}

// Close stops the loop.  Callbacks which have not yet run are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// ManualScheduler is a [Scheduler] for tests.  Callbacks only run when
// Step, RunUntilIdle or Advance is called, and time only passes when
// Advance is called.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	micro  []func()
	frames []func()
	timers []*manualTimer
	seq    int
	notify chan struct{}

	// Frames counts the frame callbacks run so far.
	Frames int
}

type manualTimer struct {
	s    *ManualScheduler
	when time.Time
	seq  int
	fn   func()
	done bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// NewManualScheduler allocates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		now:    start,
		notify: make(chan struct{}, 1),
	}
}

func (s *ManualScheduler) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Microtask implements the [Scheduler] interface.
func (s *ManualScheduler) Microtask(fn func()) {
	s.mu.Lock()
	s.micro = append(s.micro, fn)
	s.mu.Unlock()
	s.signal()
}

// RequestFrame implements the [Scheduler] interface.
func (s *ManualScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.frames = append(s.frames, fn)
	s.mu.Unlock()
	s.signal()
}

// After implements the [Scheduler] interface.
func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, when: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now implements the [Scheduler] interface.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Step runs one queued callback.  Microtasks run before frame callbacks.
// The return value is false if nothing was queued.
func (s *ManualScheduler) Step() bool {
	s.mu.Lock()
	var fn func()
	switch {
	case len(s.micro) > 0:
		fn = s.micro[0]
		s.micro = s.micro[1:]
	case len(s.frames) > 0:
		fn = s.frames[0]
		s.frames = s.frames[1:]
		s.Frames++
	}
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// RunUntilIdle runs callbacks until no more are queued, and returns the
// number of callbacks run.  Timers do not fire.
func (s *ManualScheduler) RunUntilIdle() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}

// Advance moves the clock forward by d.  Timers which become due fire in
// order, and all queued callbacks are run after each timer.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	s.RunUntilIdle()
	for {
		s.mu.Lock()
		s.timers = slices.DeleteFunc(s.timers, func(t *manualTimer) bool { return t.done })
		var next *manualTimer
		for _, t := range s.timers {
			if t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) || t.when.Equal(next.when) && t.seq < next.seq {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			break
		}
		next.done = true
		if next.when.After(s.now) {
			s.now = next.when
		}
		s.mu.Unlock()

		next.fn()
		s.RunUntilIdle()
	}
}

// WaitPending blocks until a callback is queued, or until the timeout
// expires.  This is used to wait for chunks delivered by another
// goroutine.
func (s *ManualScheduler) WaitPending(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		s.mu.Lock()
		pending := len(s.micro)+len(s.frames) > 0
		s.mu.Unlock()
		if pending {
			return true
		}
		select {
		case <-s.notify:
		case <-deadline.C:
			return false
		}
	}
}
