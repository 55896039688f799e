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
	"errors"
	"fmt"
	"math"
)

// ArgParser provides a scanner-style API for reading operation arguments.
//
// The first error encountered is stored, and all later calls return
// zero values.  Use [ArgParser.Err] or [ArgParser.Check] to retrieve it.
type ArgParser struct {
	args Args
	err  error
}

// NewArgParser returns a parser for the given arguments.
func NewArgParser(args Args) *ArgParser {
	return &ArgParser{args: args}
}

func (p *ArgParser) next() (any, bool) {
	if p.err != nil {
		return nil, false
	}
	if len(p.args) == 0 {
		p.err = errors.New("not enough arguments")
		return nil, false
	}
	arg := p.args[0]
	p.args = p.args[1:]
	return arg, true
}

// Remaining returns the number of unread arguments.
func (p *ArgParser) Remaining() int {
	return len(p.args)
}

// GetFloat reads a number.
func (p *ArgParser) GetFloat() float64 {
	arg, ok := p.next()
	if !ok {
		return 0
	}
	x, ok := toFloat(arg)
	if !ok {
		p.err = fmt.Errorf("expected number, got %T", arg)
		return 0
	}
	return x
}

// GetInt reads a number with integer value.
func (p *ArgParser) GetInt() int {
	x := p.GetFloat()
	if p.err != nil {
		return 0
	}
	if x != math.Trunc(x) {
		p.err = fmt.Errorf("expected integer, got %g", x)
		return 0
	}
	return int(x)
}

// GetBool reads a boolean.
func (p *ArgParser) GetBool() bool {
	arg, ok := p.next()
	if !ok {
		return false
	}
	b, ok := arg.(bool)
	if !ok {
		p.err = fmt.Errorf("expected bool, got %T", arg)
		return false
	}
	return b
}

// GetString reads a string or name.
func (p *ArgParser) GetString() string {
	arg, ok := p.next()
	if !ok {
		return ""
	}
	s, ok := arg.(string)
	if !ok {
		p.err = fmt.Errorf("expected string, got %T", arg)
		return ""
	}
	return s
}

// GetNumbers reads an array of numbers.
// If n >= 0, the array must have exactly n elements.
func (p *ArgParser) GetNumbers(n int) []float64 {
	arg, ok := p.next()
	if !ok {
		return nil
	}
	res, ok := toFloats(arg)
	if !ok {
		p.err = fmt.Errorf("expected array of numbers, got %T", arg)
		return nil
	}
	if n >= 0 && len(res) != n {
		p.err = fmt.Errorf("expected %d numbers, got %d", n, len(res))
		return nil
	}
	return res
}

// GetArray reads an array of arbitrary values.
func (p *ArgParser) GetArray() []any {
	arg, ok := p.next()
	if !ok {
		return nil
	}
	switch a := arg.(type) {
	case []any:
		return a
	case []float64:
		res := make([]any, len(a))
		for i, x := range a {
			res[i] = x
		}
		return res
	case []string:
		res := make([]any, len(a))
		for i, x := range a {
			res[i] = x
		}
		return res
	}
	p.err = fmt.Errorf("expected array, got %T", arg)
	return nil
}

// GetDict reads a dictionary.  A null value gives a nil map.
func (p *ArgParser) GetDict() map[string]any {
	arg, ok := p.next()
	if !ok {
		return nil
	}
	if arg == nil {
		return nil
	}
	d, ok := arg.(map[string]any)
	if !ok {
		p.err = fmt.Errorf("expected dictionary, got %T", arg)
		return nil
	}
	return d
}

// GetAny reads an argument of any type.
func (p *ArgParser) GetAny() any {
	arg, _ := p.next()
	return arg
}

// Err returns the first error encountered.
func (p *ArgParser) Err() error {
	return p.err
}

// Check returns the first error encountered, or an error if there are
// unread arguments.
func (p *ArgParser) Check() error {
	if p.err != nil {
		return p.err
	}
	if len(p.args) > 0 {
		return errors.New("too many arguments")
	}
	return nil
}

func toFloat(arg any) (float64, bool) {
	switch x := arg.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toFloats(arg any) ([]float64, bool) {
	switch a := arg.(type) {
	case []float64:
		return a, true
	case []float32:
		res := make([]float64, len(a))
		for i, x := range a {
			res[i] = float64(x)
		}
		return res, true
	case []any:
		res := make([]float64, len(a))
		for i, x := range a {
			f, ok := toFloat(x)
			if !ok {
				return nil, false
			}
			res[i] = f
		}
		return res, true
	}
	return nil, false
}

// Float returns the value of a numeric dictionary entry.
func Float(d map[string]any, key string) (float64, bool) {
	return toFloat(d[key])
}

// Floats returns the value of a dictionary entry which is an array of
// numbers.
func Floats(d map[string]any, key string) ([]float64, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, false
	}
	return toFloats(v)
}
