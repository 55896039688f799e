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

// Package outline computes the outlines of unions of axis-aligned boxes.
//
// This is used to draw a single continuous highlight around the boxes of a
// text selection.  The boxes are converted into vertical edges, which are
// swept from left to right while an ordered set of the currently open
// intervals is maintained.  The parts of the edges which are not covered
// by open intervals form the boundary of the union.  The boundary fragments
// are then joined by horizontal connectors into closed polygons.
package outline

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfview/internal/float"
)

// Digits is the number of decimal digits coordinates are rounded to.
const Digits = 4

// Box is an axis-aligned rectangle.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// An Outliner converts a set of boxes into outline polygons.
type Outliner struct {
	edges     []edge
	bbox      rect.Rect
	lastPoint vec.Vec2

	// intervals holds the y-ranges of all boxes which are open at the
	// current sweep position, sorted by the lower end.
	intervals []interval
}

type edge struct {
	x, y1, y2 float64
	isLeft    bool
}

type interval struct {
	y1, y2 float64
}

// New prepares the outline computation for the given boxes.
//
// Every box is enlarged by borderWidth on all sides before the union is
// formed, the final bounding box is enlarged by innerMargin.  If isLTR is
// true, the last point is the top right corner of the last box, otherwise
// it is the top left corner.
func New(boxes []Box, borderWidth, innerMargin float64, isLTR bool) *Outliner {
	o := &Outliner{
		edges: make([]edge, 0, 2*len(boxes)),
	}
	if len(boxes) == 0 {
		return o
	}

	minX, minY := math.Inf(+1), math.Inf(+1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		x1 := float.Round(b.X-borderWidth, Digits)
		x2 := float.Round(b.X+b.Width+borderWidth, Digits)
		y1 := float.Round(b.Y-borderWidth, Digits)
		y2 := float.Round(b.Y+b.Height+borderWidth, Digits)
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		o.edges = append(o.edges,
			edge{x: x1, y1: y1, y2: y2, isLeft: true},
			edge{x: x2, y1: y1, y2: y2})
		minX = min(minX, x1)
		maxX = max(maxX, x2)
		minY = min(minY, y1)
		maxY = max(maxY, y2)
	}
	if len(o.edges) == 0 {
		return o
	}

	o.bbox = rect.Rect{
		LLx: minX - innerMargin,
		LLy: minY - innerMargin,
		URx: maxX + innerMargin,
		URy: maxY + innerMargin,
	}

	last := o.edges[len(o.edges)-1]
	if !isLTR {
		last = o.edges[len(o.edges)-2]
	}
	o.lastPoint = vec.Vec2{X: last.x, Y: last.y2}

	return o
}

// Outlines runs the sweep and returns the resulting polygons.
func (o *Outliner) Outlines() *Outlines {
	res := &Outlines{
		BBox:      o.bbox,
		LastPoint: o.lastPoint,
	}
	if len(o.edges) == 0 {
		return res
	}

	edges := slices.Clone(o.edges)
	// At equal x, left edges are processed first so that boxes which
	// touch along an edge are merged.
	slices.SortFunc(edges, func(a, b edge) int {
		if c := cmp.Compare(a.x, b.x); c != 0 {
			return c
		}
		if a.isLeft != b.isLeft {
			if a.isLeft {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.y1, b.y1); c != 0 {
			return c
		}
		return cmp.Compare(a.y2, b.y2)
	})

	o.intervals = o.intervals[:0]
	var frags []*fragment
	for _, e := range edges {
		if e.isLeft {
			frags = o.appendUncovered(frags, e)
			o.insert(e)
		} else {
			o.remove(e)
			frags = o.appendUncovered(frags, e)
		}
	}

	frags = mergeFragments(frags)
	for _, f := range frags {
		h := f.y2 - f.y1
		if f.isLeft {
			res.area -= f.x * h
		} else {
			res.area += f.x * h
		}
	}

	res.Raw = joinFragments(frags)
	res.Polygons = make([][]vec.Vec2, len(res.Raw))
	w, h := o.bbox.Dx(), o.bbox.Dy()
	for i, poly := range res.Raw {
		norm := make([]vec.Vec2, len(poly))
		for j, p := range poly {
			norm[j] = vec.Vec2{
				X: (p.X - o.bbox.LLx) / w,
				Y: (p.Y - o.bbox.LLy) / h,
			}
		}
		res.Polygons[i] = norm
	}
	return res
}

func (o *Outliner) search(y float64) int {
	idx, _ := slices.BinarySearchFunc(o.intervals, y, func(iv interval, y float64) int {
		return cmp.Compare(iv.y1, y)
	})
	return idx
}

func (o *Outliner) insert(e edge) {
	idx := o.search(e.y1)
	o.intervals = slices.Insert(o.intervals, idx, interval{e.y1, e.y2})
}

func (o *Outliner) remove(e edge) {
	for i := o.search(e.y1); i < len(o.intervals); i++ {
		iv := o.intervals[i]
		if iv.y1 != e.y1 {
			break
		}
		if iv.y2 == e.y2 {
			o.intervals = slices.Delete(o.intervals, i, i+1)
			return
		}
	}
}

// appendUncovered subtracts all open intervals from e and appends the
// remaining pieces of e to frags.
func (o *Outliner) appendUncovered(frags []*fragment, e edge) []*fragment {
	pieces := []interval{{e.y1, e.y2}}
	end := o.search(e.y2)
	for _, iv := range o.intervals[:end] {
		var next []interval
		for _, p := range pieces {
			if iv.y2 <= p.y1 || p.y2 <= iv.y1 {
				next = append(next, p)
				continue
			}
			if p.y1 < iv.y1 {
				next = append(next, interval{p.y1, iv.y1})
			}
			if iv.y2 < p.y2 {
				next = append(next, interval{iv.y2, p.y2})
			}
		}
		pieces = next
		if len(pieces) == 0 {
			return frags
		}
	}
	for _, p := range pieces {
		frags = append(frags, &fragment{x: e.x, y1: p.y1, y2: p.y2, isLeft: e.isLeft})
	}
	return frags
}

// A fragment is a vertical piece of the boundary of the union.
type fragment struct {
	x, y1, y2 float64
	isLeft    bool

	// next[0] is the fragment connected at y1, next[1] the one at y2.
	next [2]*fragment
	done bool
}

// mergeFragments joins collinear fragments of the same kind which
// touch end to end.
func mergeFragments(frags []*fragment) []*fragment {
	slices.SortFunc(frags, func(a, b *fragment) int {
		if c := cmp.Compare(a.x, b.x); c != 0 {
			return c
		}
		if a.isLeft != b.isLeft {
			if a.isLeft {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.y1, b.y1)
	})
	var res []*fragment
	for _, f := range frags {
		if n := len(res); n > 0 {
			prev := res[n-1]
			if prev.x == f.x && prev.isLeft == f.isLeft && prev.y2 == f.y1 {
				prev.y2 = f.y2
				continue
			}
		}
		res = append(res, f)
	}
	return res
}

type vertex struct {
	x, y float64
	f    *fragment
	end  int // 0 for the lower end, 1 for the upper end
}

// joinFragments pairs up fragment end points at the same height and walks
// the resulting cycles.  Where the boundary touches itself at a corner,
// the corner vertex occurs twice in the same loop.
func joinFragments(frags []*fragment) [][]vec.Vec2 {
	vv := make([]vertex, 0, 2*len(frags))
	for _, f := range frags {
		vv = append(vv,
			vertex{x: f.x, y: f.y1, f: f, end: 0},
			vertex{x: f.x, y: f.y2, f: f, end: 1})
	}
	// Where two fragments meet in a single point, the right edge comes
	// first.  This separates boxes which only touch at a corner.
	slices.SortStableFunc(vv, func(a, b vertex) int {
		if c := cmp.Compare(a.y, b.y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.x, b.x); c != 0 {
			return c
		}
		if a.f.isLeft != b.f.isLeft {
			if a.f.isLeft {
				return 1
			}
			return -1
		}
		return 0
	})
	for i := 0; i+1 < len(vv); i += 2 {
		a, b := vv[i], vv[i+1]
		a.f.next[a.end] = b.f
		b.f.next[b.end] = a.f
	}

	var res [][]vec.Vec2
	for _, v := range vv {
		start := v.f
		if start.done {
			continue
		}

		// Left fragments are walked downwards and right fragments upwards,
		// so that holes wind the opposite way to the outer loops.  Each
		// fragment contributes the end point where it is entered and the
		// end point where it is left.
		var poly []vec.Vec2
		var atEnd int
		if start.isLeft {
			poly = []vec.Vec2{{X: start.x, Y: start.y2}, {X: start.x, Y: start.y1}}
		} else {
			poly = []vec.Vec2{{X: start.x, Y: start.y1}, {X: start.x, Y: start.y2}}
			atEnd = 1
		}
		start.done = true
		cur := start
		for {
			nb := cur.next[atEnd]
			if nb == nil || nb.done {
				break
			}
			nb.done = true
			y := cur.y1
			if atEnd == 1 {
				y = cur.y2
			}
			if nb.y1 == y {
				poly = append(poly, vec.Vec2{X: nb.x, Y: nb.y1}, vec.Vec2{X: nb.x, Y: nb.y2})
				atEnd = 1
			} else {
				poly = append(poly, vec.Vec2{X: nb.x, Y: nb.y2}, vec.Vec2{X: nb.x, Y: nb.y1})
				atEnd = 0
			}
			cur = nb
		}
		res = append(res, poly)
	}
	return res
}

// Outlines is the result of an outline computation.
type Outlines struct {
	// Polygons contains the outline polygons, relative to the bounding box.
	// The bounding box is mapped to the unit square.  Holes wind the
	// opposite way to outer loops, so that a non-zero fill leaves them
	// empty.
	Polygons [][]vec.Vec2

	// Raw contains the same polygons in the coordinates of the input
	// boxes.
	Raw [][]vec.Vec2

	// BBox is the bounding box of the outlines, including the inner margin.
	BBox rect.Rect

	// LastPoint is the point where a toolbar for the outline should be
	// anchored.
	LastPoint vec.Vec2

	area float64
}

// Area returns the area enclosed by the outlines.
func (o *Outlines) Area() float64 {
	return o.area
}

// Serialize maps the normalized polygons into the rectangle r, which is
// given in PDF user space.  The polygons use y-down coordinates, rotation
// is the rotation of the page in degrees.
func (o *Outlines) Serialize(r rect.Rect, rotation int) [][]float64 {
	res := make([][]float64, 0, len(o.Polygons))
	w, h := r.Dx(), r.Dy()
	for _, poly := range o.Polygons {
		pts := make([]float64, 0, 2*len(poly))
		for _, p := range poly {
			u, v := rotateUnit(p.X, p.Y, rotation)
			pts = append(pts,
				float.Round(r.LLx+u*w, Digits),
				float.Round(r.URy-v*h, Digits))
		}
		res = append(res, pts)
	}
	return res
}

// rotateUnit rotates a point of the unit square about the center of
// the square.
func rotateUnit(u, v float64, rotation int) (float64, float64) {
	switch ((rotation % 360) + 360) % 360 {
	case 90:
		return v, 1 - u
	case 180:
		return 1 - u, 1 - v
	case 270:
		return 1 - v, u
	default:
		return u, v
	}
}
