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

// Package command implements a bounded undo/redo log.
package command

import (
	"seehuhn.de/go/pdfview"
)

// DefaultSize is the number of commands kept when no size is given.
const DefaultSize = 128

// Type identifies a kind of command for coalescing.
// The zero Type never coalesces.
type Type int

// Cmd is an undoable action.
type Cmd struct {
	Do   func()
	Undo func()

	// Post, if set, is called after Do and after Undo.
	Post func()

	Type Type

	// MustExec causes Do to be called when the command is added.
	MustExec bool

	// OverwriteIfSameType replaces the most recent command, instead of
	// adding a new one, if both have the same non-zero Type.
	OverwriteIfSameType bool

	// KeepUndo, together with OverwriteIfSameType, keeps the Undo function
	// of the replaced command.  A sequence of coalesced commands can then be
	// undone in a single step.
	KeepUndo bool
}

// Manager keeps a list of commands and a position in this list.
// Commands before and at the position can be undone, commands after the
// position can be redone.
type Manager struct {
	commands []Cmd
	pos      int // index of the last executed command, -1 if none
	maxSize  int
	locked   bool
}

// New allocates a new Manager which keeps at most maxSize commands.
// If maxSize is not positive, DefaultSize is used.
func New(maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &Manager{
		pos:     -1,
		maxSize: maxSize,
	}
}

// Add records a new command.
//
// Commands added while an undo or redo is in progress are ignored, since
// these are caused by replaying the log.
func (m *Manager) Add(c Cmd) {
	if c.MustExec && c.Do != nil {
		c.Do()
	}
	if m.locked {
		return
	}

	if m.pos >= 0 && c.OverwriteIfSameType && c.Type != 0 && m.commands[m.pos].Type == c.Type {
		if c.KeepUndo {
			c.Undo = m.commands[m.pos].Undo
		}
		m.commands[m.pos] = c
		m.commands = m.commands[:m.pos+1]
		return
	}

	m.commands = m.commands[:m.pos+1]
	if len(m.commands) == m.maxSize {
		copy(m.commands, m.commands[1:])
		m.commands = m.commands[:len(m.commands)-1]
		pdfview.Logger().Debug("undo log full, dropping oldest command",
			"size", m.maxSize)
	}
	m.commands = append(m.commands, c)
	m.pos = len(m.commands) - 1
}

// Undo reverts the most recent command.
// The return value indicates whether a command was undone.
func (m *Manager) Undo() bool {
	if m.pos < 0 || m.locked {
		return false
	}
	c := m.commands[m.pos]
	m.locked = true
	if c.Undo != nil {
		c.Undo()
	}
	if c.Post != nil {
		c.Post()
	}
	m.locked = false
	m.pos--
	return true
}

// Redo re-executes the most recently undone command.
// The return value indicates whether a command was redone.
func (m *Manager) Redo() bool {
	if m.pos >= len(m.commands)-1 || m.locked {
		return false
	}
	m.pos++
	c := m.commands[m.pos]
	m.locked = true
	if c.Do != nil {
		c.Do()
	}
	if c.Post != nil {
		c.Post()
	}
	m.locked = false
	return true
}

// HasSomethingToUndo reports whether Undo would do anything.
func (m *Manager) HasSomethingToUndo() bool {
	return m.pos >= 0
}

// HasSomethingToRedo reports whether Redo would do anything.
func (m *Manager) HasSomethingToRedo() bool {
	return m.pos < len(m.commands)-1
}

// Len returns the number of commands which can currently be undone.
func (m *Manager) Len() int {
	return m.pos + 1
}

// CleanType removes the trailing run of commands of type t, up to the
// current position.
func (m *Manager) CleanType(t Type) {
	i := m.pos
	for i >= 0 && m.commands[i].Type == t {
		i--
	}
	m.commands = m.commands[:i+1]
	m.pos = i
}

// Destroy discards all commands.
func (m *Manager) Destroy() {
	m.commands = nil
	m.pos = -1
}
