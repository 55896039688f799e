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
	"strings"
	"sync"

	"golang.org/x/image/font"

	"seehuhn.de/go/pdfview"
)

// Resolver gives access to the objects (fonts, images) referenced by an
// operator list.
type Resolver interface {
	// Get returns the object with the given id.  If the object has not yet
	// been resolved, an error wrapping [pdfview.ErrNotResolved] is
	// returned.
	Get(id string) (any, error)

	// Has reports whether the object with the given id has been resolved.
	Has(id string) bool
}

// Font is a font object, as returned by a [Resolver].
type Font interface {
	Name() string

	// Face returns a face for rendering the font at the given size in
	// device pixels.
	Face(size float64) (font.Face, error)
}

// Objects is the default [Resolver] implementation.
// Objects is safe for concurrent use.
type Objects struct {
	mu      sync.Mutex
	data    map[string]any
	waiters map[string]chan struct{}
}

// NewObjects allocates an empty object store.
func NewObjects() *Objects {
	return &Objects{
		data:    make(map[string]any),
		waiters: make(map[string]chan struct{}),
	}
}

// Get implements the [Resolver] interface.
func (o *Objects) Get(id string) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.data[id]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", id, pdfview.ErrNotResolved)
	}
	return v, nil
}

// Has implements the [Resolver] interface.
func (o *Objects) Has(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.data[id]
	return ok
}

// Resolve stores an object and wakes up everybody waiting for it.
// Resolving an id a second time replaces the object.
func (o *Objects) Resolve(id string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[id] = v
	if ch, ok := o.waiters[id]; ok {
		close(ch)
		delete(o.waiters, id)
	}
}

// WhenResolved returns a channel which is closed once the object with
// the given id has been resolved.
func (o *Objects) WhenResolved(id string) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.data[id]; ok {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	ch, ok := o.waiters[id]
	if !ok {
		ch = make(chan struct{})
		o.waiters[id] = ch
	}
	return ch
}

// Clear removes all objects.  Pending waiters stay registered.
func (o *Objects) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.data)
}

// pools selects between page objects and objects shared between pages.
// Ids of shared objects start with "g_".
type pools struct {
	objs   Resolver
	common Resolver
}

func (p pools) pick(id string) Resolver {
	if p.common != nil && strings.HasPrefix(id, "g_") {
		return p.common
	}
	return p.objs
}

func (p pools) Get(id string) (any, error) {
	r := p.pick(id)
	if r == nil {
		return nil, fmt.Errorf("object %q: %w", id, pdfview.ErrNotResolved)
	}
	return r.Get(id)
}

func (p pools) Has(id string) bool {
	r := p.pick(id)
	return r != nil && r.Has(id)
}
