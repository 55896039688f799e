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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOpCodeNames(t *testing.T) {
	for op := opInvalid + 1; op < opEnd; op++ {
		name := op.String()
		if name == "" || strings.HasPrefix(name, "OpCode(") {
			t.Errorf("opcode %d has no name", op)
			continue
		}
		got, err := ParseOpCode(name)
		if err != nil {
			t.Error(err)
		} else if got != op {
			t.Errorf("%s: got %d, want %d", name, got, op)
		}
	}
	if _, err := ParseOpCode("frobnicate"); !errors.Is(err, ErrUnknown) {
		t.Errorf("unexpected error %v", err)
	}
	if s := OpCode(250).String(); s != "OpCode(250)" {
		t.Errorf("got %q", s)
	}
}

func TestList_AddChunk(t *testing.T) {
	l := &List{}
	b := NewBuilder()
	err := l.AddChunk(b.Save().MoveTo(1, 2).Chunk(false))
	if err != nil {
		t.Fatal(err)
	}
	err = l.AddChunk(b.LineTo(3, 4).Stroke().Restore().Chunk(true))
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 5 || len(l.ArgsArray) != 5 || !l.LastChunk {
		t.Fatalf("unexpected list %#v", l)
	}
	want := []OpCode{Save, MoveTo, LineTo, Stroke, Restore}
	if d := cmp.Diff(want, l.FnArray); d != "" {
		t.Error(d)
	}

	err = l.AddChunk(b.Save().Chunk(true))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
	if l.Len() != 5 {
		t.Error("closed list was extended")
	}
}

func TestList_AddChunkMismatch(t *testing.T) {
	l := &List{}
	err := l.AddChunk(Chunk{FnArray: []OpCode{Save}})
	if err == nil {
		t.Error("missing error")
	}
}

func TestDecodeChunk(t *testing.T) {
	in := `{
		"fnArray": ["save", "moveTo", 15, "fill", "restore"],
		"argsArray": [null, [1, 2.5], [3, 4], [], null],
		"lastChunk": true,
		"separateAnnots": {"form": true, "canvas": false}
	}`
	c, err := DecodeChunk(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := Chunk{
		FnArray:        []OpCode{Save, MoveTo, OpCode(15), Fill, Restore},
		ArgsArray:      []Args{nil, {1.0, 2.5}, {3.0, 4.0}, {}, nil},
		LastChunk:      true,
		SeparateAnnots: &SeparateAnnots{Form: true},
	}
	if d := cmp.Diff(want, c); d != "" {
		t.Errorf("chunk (-want +got):\n%s", d)
	}
}

func TestDecodeChunks(t *testing.T) {
	b := NewBuilder()
	c1 := b.Save().Rectangle(0, 0, 10, 10).Chunk(false)
	c2 := b.Fill().Restore().Chunk(true)

	buf := &bytes.Buffer{}
	buf.WriteString("[")
	if err := EncodeChunk(buf, c1); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(",")
	if err := EncodeChunk(buf, c2); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("]")

	chunks, err := DecodeChunks(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	l := &List{}
	for _, c := range chunks {
		if err := l.AddChunk(c); err != nil {
			t.Fatal(err)
		}
	}
	want := []OpCode{Save, Rectangle, Fill, Restore}
	if d := cmp.Diff(want, l.FnArray); d != "" {
		t.Error(d)
	}
	if !l.LastChunk {
		t.Error("last chunk not set")
	}

	// a single object is accepted as well
	single, err := DecodeChunks(strings.NewReader(` {"fnArray":["save"],"argsArray":[null]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(single) != 1 || single[0].FnArray[0] != Save {
		t.Errorf("unexpected result %#v", single)
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser(Args{1.0, "F1", []any{1.0, 2.0}, map[string]any{"a": 1.0}, true})
	x := p.GetFloat()
	name := p.GetString()
	nums := p.GetNumbers(2)
	dict := p.GetDict()
	flag := p.GetBool()
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
	if x != 1 || name != "F1" || len(nums) != 2 || dict["a"] != 1.0 || !flag {
		t.Errorf("unexpected values %v %v %v %v %v", x, name, nums, dict, flag)
	}

	p = NewArgParser(Args{"x"})
	p.GetFloat()
	if p.Err() == nil {
		t.Error("missing type error")
	}

	p = NewArgParser(Args{1.5})
	p.GetInt()
	if p.Err() == nil {
		t.Error("missing integer error")
	}

	p = NewArgParser(Args{1.0, 2.0})
	p.GetFloat()
	if p.Check() == nil {
		t.Error("missing error for extra arguments")
	}

	p = NewArgParser(nil)
	p.GetFloat()
	p.GetFloat()
	if p.Err() == nil || p.Err().Error() != "not enough arguments" {
		t.Errorf("got %v", p.Err())
	}
}

func TestDependencies(t *testing.T) {
	l := NewBuilder().
		Dependency("g_font_1").
		Save().
		Dependency("img_2").
		Dependency("g_font_1").
		Restore().
		List(true)
	want := []string{"g_font_1", "img_2"}
	if d := cmp.Diff(want, l.Dependencies()); d != "" {
		t.Error(d)
	}
}
