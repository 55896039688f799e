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

package main

import (
	"github.com/atotto/clipboard"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/editor"
)

// systemClipboard is an [editor.Clipboard] backed by the system clipboard.
// The system clipboard only holds text, so copied editors are stored as
// their JSON records.
type systemClipboard struct{}

func (systemClipboard) Read() (editor.ClipboardData, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return nil, err
	}
	if _, err := annotation.UnmarshalRecords([]byte(s)); err == nil {
		return editor.ClipboardData{editor.MimeType: s}, nil
	}
	return editor.ClipboardData{"text/plain": s}, nil
}

func (systemClipboard) Write(data editor.ClipboardData) error {
	if s, ok := data[editor.MimeType]; ok {
		return clipboard.WriteAll(s)
	}
	return clipboard.WriteAll(data["text/plain"])
}
