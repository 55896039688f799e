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

// Package render schedules the rendering of pages.
//
// A [Page] receives operator lists as a stream of chunks from a
// [ChunkSource].  All render requests for the same page, rendering intent
// and annotation state share one operator list.  Each call to
// [Page.Render] creates a [Task], which executes the list on a
// [graphics.Canvas] in time-limited slices and yields to a [Scheduler]
// between slices.
//
// Page and Task are not safe for concurrent use.  Their methods must be
// called from the goroutine which runs the scheduler, for example from a
// function passed to [Loop.Post].  The exception is
// [Page.GetOperatorList], which may be called from any goroutine.
// Chunks are read on a separate goroutine and handed to the scheduler.
package render
