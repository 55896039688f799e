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

// Package pdfview turns PDF operator lists into pixels and maintains an
// editable annotation overlay on top of the rendered pages.
//
// The work is split over several packages:
//
//   - [seehuhn.de/go/pdfview/graphics/content] holds operator lists, as
//     produced by a content stream evaluator.
//   - [seehuhn.de/go/pdfview/graphics] interprets operator lists against a
//     [graphics.Surface].
//   - [seehuhn.de/go/pdfview/raster] provides a raster surface.
//   - [seehuhn.de/go/pdfview/render] schedules resumable render tasks for
//     the pages of a document.
//   - [seehuhn.de/go/pdfview/editor] implements the annotation editors,
//     the per-page editor layers and the cross-page UI manager.
//   - [seehuhn.de/go/pdfview/annotation] stores the annotation values
//     which are shared between the editors, the renderer and the save path.
//
// This package contains the error types and the logger shared by all of
// these, together with the rendering intent and annotation mode flags.
//
// By default nothing is logged.  Use [SetLogger] to see warnings about
// malformed operator lists:
//
//	pdfview.SetLogger(slog.Default())
package pdfview
