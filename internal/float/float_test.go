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

package float

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	cases := []struct {
		x      float64
		digits int
		want   float64
	}{
		{0.1 - 0.001, 4, 0.099},
		{0.3 + 0.001, 4, 0.301},
		{0.15 + 0.001, 4, 0.151},
		{1.23456, 2, 1.23},
		{-0.00001, 4, 0},
		{12, 0, 12},
	}
	for _, c := range cases {
		got := Round(c.x, c.digits)
		if got != c.want {
			t.Errorf("Round(%g, %d) = %g, want %g", c.x, c.digits, got, c.want)
		}
		if math.Signbit(got) && got == 0 {
			t.Errorf("Round(%g, %d) returned -0", c.x, c.digits)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		x      float64
		digits int
		want   string
	}{
		{1, 3, "1"},
		{0.5, 3, "0.5"},
		{0.12345, 3, "0.123"},
		{-2.5, 1, "-2.5"},
		{100, 2, "100"},
	}
	for _, c := range cases {
		got := Format(c.x, c.digits)
		if got != c.want {
			t.Errorf("Format(%g, %d) = %q, want %q", c.x, c.digits, got, c.want)
		}
	}
}
