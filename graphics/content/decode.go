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
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type jsonChunk struct {
	FnArray        []json.RawMessage `json:"fnArray"`
	ArgsArray      []json.RawMessage `json:"argsArray"`
	LastChunk      bool              `json:"lastChunk"`
	SeparateAnnots *SeparateAnnots   `json:"separateAnnots,omitempty"`
}

// DecodeChunk reads a single chunk in JSON format from r.
func DecodeChunk(r io.Reader) (Chunk, error) {
	var jc jsonChunk
	if err := json.NewDecoder(r).Decode(&jc); err != nil {
		return Chunk{}, err
	}
	return jc.decode()
}

// DecodeChunks reads either a single chunk or a JSON array of chunks.
func DecodeChunks(r io.Reader) ([]Chunk, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, err
	}
	if first != '[' {
		c, err := DecodeChunk(br)
		if err != nil {
			return nil, err
		}
		return []Chunk{c}, nil
	}

	var jcs []jsonChunk
	if err := json.NewDecoder(br).Decode(&jcs); err != nil {
		return nil, err
	}
	res := make([]Chunk, len(jcs))
	for i := range jcs {
		c, err := jcs[i].decode()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		res[i] = c
	}
	return res, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func (jc *jsonChunk) decode() (Chunk, error) {
	if len(jc.FnArray) != len(jc.ArgsArray) {
		return Chunk{}, fmt.Errorf("fnArray has %d entries but argsArray has %d",
			len(jc.FnArray), len(jc.ArgsArray))
	}

	c := Chunk{
		FnArray:        make([]OpCode, len(jc.FnArray)),
		ArgsArray:      make([]Args, len(jc.ArgsArray)),
		LastChunk:      jc.LastChunk,
		SeparateAnnots: jc.SeparateAnnots,
	}
	for i, raw := range jc.FnArray {
		op, err := decodeOpCode(raw)
		if err != nil {
			return Chunk{}, fmt.Errorf("operation %d: %w", i, err)
		}
		c.FnArray[i] = op
	}
	for i, raw := range jc.ArgsArray {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var args []any
		if err := json.Unmarshal(raw, &args); err != nil {
			return Chunk{}, fmt.Errorf("arguments of operation %d: %w", i, err)
		}
		c.ArgsArray[i] = args
	}
	return c, nil
}

// decodeOpCode accepts an opcode name or number.  Unknown numbers are
// kept, so that the interpreter can report and skip them.
func decodeOpCode(raw json.RawMessage) (OpCode, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return ParseOpCode(name)
	}
	n, err := strconv.ParseUint(string(bytes.TrimSpace(raw)), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid opcode %s", raw)
	}
	return OpCode(n), nil
}

// EncodeChunk writes a chunk in the JSON format read by [DecodeChunk].
// Opcodes are written by name.
func EncodeChunk(w io.Writer, c Chunk) error {
	out := struct {
		FnArray        []string        `json:"fnArray"`
		ArgsArray      []Args          `json:"argsArray"`
		LastChunk      bool            `json:"lastChunk"`
		SeparateAnnots *SeparateAnnots `json:"separateAnnots,omitempty"`
	}{
		FnArray:        make([]string, len(c.FnArray)),
		ArgsArray:      c.ArgsArray,
		LastChunk:      c.LastChunk,
		SeparateAnnots: c.SeparateAnnots,
	}
	for i, op := range c.FnArray {
		out.FnArray[i] = op.String()
	}
	return json.NewEncoder(w).Encode(out)
}
