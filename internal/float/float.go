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

// Package float provides fixed-precision rounding for geometry values.
package float

import (
	"math"
	"regexp"
	"strconv"
)

var pow10 = [...]float64{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8}

// Round rounds x to the given number of decimal digits.
// The result is the float64 closest to the decimal representation,
// so that for example Round(0.0990000001, 4) == 0.099.
func Round(x float64, digits int) float64 {
	if digits < 0 || digits >= len(pow10) || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	p := pow10[digits]
	r := math.Round(x*p) / p
	if r == 0 {
		return 0 // avoid -0
	}
	return r
}

// RoundAll rounds all elements of xx in place.
func RoundAll(xx []float64, digits int) []float64 {
	for i, x := range xx {
		xx[i] = Round(x, digits)
	}
	return xx
}

// Format formats x with at most the given number of decimal digits.
// Trailing zeros are removed.
func Format(x float64, digits int) string {
	out := strconv.FormatFloat(Round(x, digits), 'f', digits, 64)
	if m := tailRegexp.FindStringSubmatchIndex(out); m != nil {
		if m[2] > 0 {
			out = out[:m[2]]
		} else if m[4] > 0 {
			out = out[:m[4]]
		}
	}
	return out
}

var tailRegexp = regexp.MustCompile(`(?:\..*[1-9](0+)|(\.0+))$`)
