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

// Package content implements operator lists, the linear form of a page
// content stream which is consumed by the graphics interpreter.
//
// An operator list consists of two parallel arrays: opcodes and their
// arguments.  Lists are built incrementally from chunks delivered by a
// stream; once a chunk with LastChunk set has been added, the list is
// closed and further chunks are rejected with [ErrClosed].
//
// Arguments are stored as untyped values, using the same representation
// as encoding/json: numbers are float64, strings and names are string,
// arrays are []any (or []float64 when built in Go code), and dictionaries
// are map[string]any.  [ArgParser] converts arguments to typed values.
//
// The chunks can be read from JSON using [DecodeChunk] and [DecodeChunks].
// Opcodes may be given either by name (for example "moveTo") or by number.
package content
