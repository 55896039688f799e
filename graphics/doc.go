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

// Package graphics implements the interpreter which executes operator
// lists against a 2D drawing [Surface].
//
// A [Canvas] keeps the graphics state stack, the current path together with
// its bounding box, and the stacks for text objects, transparency groups
// and marked content.  All of this state is kept between calls to
// [Canvas.ExecuteOperatorList], so that a long operator list can be
// executed in slices: the interpreter checks a time budget every few
// operations and returns the index where it stopped.  The caller resumes
// execution later, starting at that index.
//
// Errors in individual operations (unknown opcodes, malformed arguments,
// missing fonts or images) are logged as warnings and the operation is
// skipped.  A single bad operation never aborts rendering of a page.
//
// Soft masks are implemented by drawing into an off-screen surface.  While
// a soft mask is active, changes of the transformation, the clipping path
// and the save/restore stack are applied to both the off-screen surface
// and the suspended page surface.  After every painting operation, the
// affected region is composited onto the page surface through the mask.
package graphics
