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

// Package keyboard maps key combinations to actions.
//
// Key combinations are written as modifiers followed by a key name, joined
// by "+", for example "ctrl+z" or "ctrl+shift+ArrowLeft".  The recognised
// modifiers are "alt", "ctrl", "meta" and "shift".  A combination starting
// with "mac+" is only used on macOS, and combinations without this prefix
// are only used on other systems.
package keyboard

import (
	"strings"
)

// KeyEvent describes a key press.
type KeyEvent struct {
	// Key is the name of the key, for example "a", "Escape" or "ArrowUp".
	Key string

	Alt, Ctrl, Meta, Shift bool
}

// String returns the canonical name of the key combination.
func (ev KeyEvent) String() string {
	var b strings.Builder
	if ev.Alt {
		b.WriteString("alt+")
	}
	if ev.Ctrl {
		b.WriteString("ctrl+")
	}
	if ev.Meta {
		b.WriteString("meta+")
	}
	if ev.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(ev.Key)
	return b.String()
}

// Shortcut binds a list of key combinations to an action.
type Shortcut[T any] struct {
	Keys   []string
	Action func(target T, ev KeyEvent)

	// Checker, if set, is consulted before the action is run.
	// The shortcut is ignored if Checker returns false.
	Checker func(target T, ev KeyEvent) bool

	// Bubbles indicates that the key event should be passed on to other
	// handlers after the action has run.
	Bubbles bool
}

// Manager dispatches key events to shortcuts.
type Manager[T any] struct {
	shortcuts map[string]*Shortcut[T]
	allKeys   map[string]bool
}

// New creates a Manager for the given shortcuts.
// If isMac is set, only the "mac+" combinations are used.
func New[T any](shortcuts []Shortcut[T], isMac bool) *Manager[T] {
	m := &Manager[T]{
		shortcuts: make(map[string]*Shortcut[T]),
		allKeys:   make(map[string]bool),
	}
	for i := range shortcuts {
		s := &shortcuts[i]
		for _, key := range s.Keys {
			isMacKey := strings.HasPrefix(key, "mac+")
			if isMacKey != isMac {
				continue
			}
			ev := parse(strings.TrimPrefix(key, "mac+"))
			m.shortcuts[ev.String()] = s
			m.allKeys[ev.Key] = true
		}
	}
	return m
}

// parse converts a key combination into a KeyEvent.
func parse(combo string) KeyEvent {
	var ev KeyEvent
	parts := strings.Split(combo, "+")
	// The last part is the key, so that "ctrl++" can be used for the
	// plus key.
	if strings.HasSuffix(combo, "++") {
		parts = append(strings.Split(strings.TrimSuffix(combo, "++"), "+"), "+")
	}
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "alt":
			ev.Alt = true
		case "ctrl":
			ev.Ctrl = true
		case "meta":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		}
	}
	ev.Key = parts[len(parts)-1]
	return ev
}

// Exec runs the action bound to the key combination of ev, if any.
//
// The return value handled indicates whether an action was run.  The
// return value stop indicates whether the event should not be passed on
// to other handlers.
func (m *Manager[T]) Exec(target T, ev KeyEvent) (handled, stop bool) {
	if !m.allKeys[ev.Key] {
		return false, false
	}
	s := m.shortcuts[ev.String()]
	if s == nil {
		return false, false
	}
	if s.Checker != nil && !s.Checker(target, ev) {
		return false, false
	}
	s.Action(target, ev)
	return true, !s.Bubbles
}
