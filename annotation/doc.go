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

// Package annotation holds the annotation values which are shared between
// the annotation editors, the renderer and the code which saves a document.
//
// Values are kept in a [Storage], keyed by editor id or by the id of an
// existing annotation element.  A value is either a serialized [Record] or
// a live editor, which is serialized on demand.  The records are
// [FreeTextRecord], [InkRecord], [HighlightRecord] and [StampRecord].
// A [Tombstone] marks a deleted annotation.
//
// Records are encoded as JSON using [MarshalRecords].  This format is used
// for the clipboard and for handing the annotations to the save path.
package annotation
