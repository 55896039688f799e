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

package content

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknown is returned when an opcode is not recognized.
	ErrUnknown = errors.New("unknown opcode")

	// ErrClosed is returned when a chunk is added to a list which has
	// already received its last chunk.
	ErrClosed = errors.New("operator list is closed")
)

// Args holds the arguments of one operation.
type Args []any

// SeparateAnnots describes which annotations are rendered separately from
// the page content.
type SeparateAnnots struct {
	Form   bool `json:"form"`
	Canvas bool `json:"canvas"`
}

// Chunk is a part of an operator list, as delivered by a stream.
type Chunk struct {
	FnArray        []OpCode
	ArgsArray      []Args
	LastChunk      bool
	SeparateAnnots *SeparateAnnots
}

// List is an operator list.
//
// The arrays FnArray and ArgsArray always have the same length.  They are
// only ever extended, never truncated.
type List struct {
	FnArray        []OpCode
	ArgsArray      []Args
	LastChunk      bool
	SeparateAnnots *SeparateAnnots
}

// Len returns the number of operations in the list.
func (l *List) Len() int {
	return len(l.FnArray)
}

// Add appends a single operation to the list.
func (l *List) Add(op OpCode, args ...any) {
	l.FnArray = append(l.FnArray, op)
	l.ArgsArray = append(l.ArgsArray, Args(args))
}

// AddChunk appends the operations of a chunk to the list.
func (l *List) AddChunk(c Chunk) error {
	if l.LastChunk {
		return ErrClosed
	}
	if len(c.FnArray) != len(c.ArgsArray) {
		return fmt.Errorf("chunk has %d opcodes but %d argument lists",
			len(c.FnArray), len(c.ArgsArray))
	}
	l.FnArray = append(l.FnArray, c.FnArray...)
	l.ArgsArray = append(l.ArgsArray, c.ArgsArray...)
	if c.SeparateAnnots != nil {
		l.SeparateAnnots = c.SeparateAnnots
	}
	l.LastChunk = c.LastChunk
	return nil
}

// Chunk returns the content of the list as a single chunk.
func (l *List) Chunk() Chunk {
	return Chunk{
		FnArray:        l.FnArray,
		ArgsArray:      l.ArgsArray,
		LastChunk:      l.LastChunk,
		SeparateAnnots: l.SeparateAnnots,
	}
}

// Dependencies returns the object ids announced by Dependency operations,
// in order of first appearance.
func (l *List) Dependencies() []string {
	var res []string
	seen := make(map[string]bool)
	for i, op := range l.FnArray {
		if op != Dependency {
			continue
		}
		p := NewArgParser(l.ArgsArray[i])
		id := p.GetString()
		if p.Err() != nil || seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	return res
}
