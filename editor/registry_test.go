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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pdfview/annotation"
)

func TestRegistry(t *testing.T) {
	for _, typ := range []annotation.Type{
		annotation.FreeText, annotation.Highlight, annotation.Stamp, annotation.Ink,
	} {
		f, ok := Lookup(typ)
		if !ok || f.New == nil || f.Deserialize == nil {
			t.Errorf("%s: incomplete registration", typ)
		}
	}
	if _, ok := Lookup(annotation.None); ok {
		t.Error("editor registered for type None")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	Register(annotation.Ink, &Factory{})
}

func TestDeserializeErrors(t *testing.T) {
	ui, l := newTestLayer(t)

	_, err := Deserialize(annotation.NewTombstone("1R", 0), l, ui)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("got %v, want ErrUnknownType", err)
	}

	_, err = deserializeInk(&annotation.FreeTextRecord{}, l, ui)
	if !errors.Is(err, ErrRecordType) {
		t.Errorf("got %v, want ErrRecordType", err)
	}
}

func TestDefaultProps(t *testing.T) {
	s := DefaultSettings()
	f, _ := Lookup(annotation.FreeText)
	want := []ParamValue{
		{Type: ParamFreeTextSize, Value: 10.0},
		{Type: ParamFreeTextColor, Value: annotation.Color{}},
	}
	if d := cmp.Diff(want, f.DefaultProps(&s)); d != "" {
		t.Errorf("default properties mismatch (-want +got):\n%s", d)
	}
}
