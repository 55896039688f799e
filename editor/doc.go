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

// Package editor implements the annotation editing overlay.
//
// A [UIManager] coordinates the editing of annotations across all pages of
// a document.  Each page has a [Layer], which owns the editors placed on
// that page.  Editors are created by user gestures, or from existing
// annotations of the document, and write their state into an
// [annotation.Storage].
//
// The package is headless: pointer and keyboard input is delivered by the
// host as [PointerEvent] and [keyboard.KeyEvent] values, and the host
// decides how editors are drawn.  Editor geometry is kept as fractions of
// the page size, so that it does not depend on the zoom level.
//
// Every change a user can see is recorded in an undo log.  None of the
// types in this package are safe for concurrent use.
package editor
