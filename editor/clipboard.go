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

package editor

import (
	"errors"

	"golang.org/x/exp/maps"
)

// MimeType is the clipboard type used for copied editors.
// The data is a JSON array of annotation records.
const MimeType = "application/pdfjs"

// ClipboardData maps MIME types to clipboard content.
type ClipboardData map[string]string

// Clipboard gives access to a clipboard.
type Clipboard interface {
	Read() (ClipboardData, error)
	Write(data ClipboardData) error
}

// ErrClipboardEmpty is returned by [MemoryClipboard.Read] when nothing has
// been written yet.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// MemoryClipboard is a process-local [Clipboard].
type MemoryClipboard struct {
	data ClipboardData
}

// Read implements the [Clipboard] interface.
func (c *MemoryClipboard) Read() (ClipboardData, error) {
	if c.data == nil {
		return nil, ErrClipboardEmpty
	}
	return maps.Clone(c.data), nil
}

// Write implements the [Clipboard] interface.
func (c *MemoryClipboard) Write(data ClipboardData) error {
	c.data = maps.Clone(data)
	if c.data == nil {
		c.data = ClipboardData{}
	}
	return nil
}
