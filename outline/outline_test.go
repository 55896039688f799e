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

package outline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

const eps = 1e-9

func TestOutliner_Empty(t *testing.T) {
	res := New(nil, 0.001, 0, true).Outlines()
	if len(res.Polygons) != 0 || len(res.Raw) != 0 {
		t.Errorf("got %d polygons, want 0", len(res.Polygons))
	}
	if !res.BBox.IsZero() {
		t.Errorf("got bbox %v, want zero", res.BBox)
	}
	if res.Area() != 0 {
		t.Errorf("got area %g, want 0", res.Area())
	}
}

func TestOutliner_HighlightBox(t *testing.T) {
	boxes := []Box{{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05}}
	res := New(boxes, 0.001, 0, true).Outlines()

	if len(res.Polygons) != 1 {
		t.Fatalf("got %d outlines, want 1", len(res.Polygons))
	}
	approx := cmpopts.EquateApprox(0, eps)
	got := []float64{res.BBox.LLx, res.BBox.LLy, res.BBox.Dx(), res.BBox.Dy()}
	want := []float64{0.099, 0.099, 0.202, 0.052}
	if d := cmp.Diff(want, got, approx); d != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", d)
	}

	wantPoly := []vec.Vec2{{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	if d := cmp.Diff(wantPoly, res.Polygons[0], approx); d != "" {
		t.Errorf("polygon mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(vec.Vec2{X: 0.301, Y: 0.151}, res.LastPoint, approx); d != "" {
		t.Errorf("last point mismatch (-want +got):\n%s", d)
	}
}

func TestOutliner_LastPointRTL(t *testing.T) {
	boxes := []Box{
		{X: 0.5, Y: 0.1, Width: 0.2, Height: 0.1},
		{X: 0.3, Y: 0.2, Width: 0.4, Height: 0.1},
	}
	res := New(boxes, 0, 0, false).Outlines()
	want := vec.Vec2{X: 0.3, Y: 0.3}
	if d := cmp.Diff(want, res.LastPoint, cmpopts.EquateApprox(0, eps)); d != "" {
		t.Errorf("last point mismatch (-want +got):\n%s", d)
	}
}

func TestOutliner_InnerMargin(t *testing.T) {
	boxes := []Box{{X: 1, Y: 2, Width: 3, Height: 4}}
	res := New(boxes, 0, 0.5, true).Outlines()
	want := rect.Rect{LLx: 0.5, LLy: 1.5, URx: 4.5, URy: 6.5}
	if d := cmp.Diff(want, res.BBox); d != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", d)
	}
	// the polygon no longer fills the unit square
	for _, p := range res.Polygons[0] {
		if p.X <= 0 || p.X >= 1 || p.Y <= 0 || p.Y >= 1 {
			t.Errorf("vertex %v outside the inner area", p)
		}
	}
}

func TestOutliner_Regions(t *testing.T) {
	cases := []struct {
		name     string
		boxes    []Box
		polygons int
		area     float64
		vertices []int
	}{
		{
			name: "two lines of text",
			boxes: []Box{
				{X: 0, Y: 0, Width: 0.5, Height: 0.1},
				{X: 0, Y: 0.1, Width: 0.3, Height: 0.1},
			},
			polygons: 1,
			area:     0.08,
			vertices: []int{6},
		},
		{
			name: "touching along an edge",
			boxes: []Box{
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 1, Y: 0.5, Width: 1, Height: 1},
			},
			polygons: 1,
			area:     2,
			vertices: []int{8},
		},
		{
			name: "touching at a corner",
			boxes: []Box{
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 1, Y: 1, Width: 1, Height: 1},
			},
			polygons: 2,
			area:     2,
			vertices: []int{4, 4},
		},
		{
			name: "overlapping",
			boxes: []Box{
				{X: 0, Y: 0, Width: 2, Height: 2},
				{X: 1, Y: 1, Width: 2, Height: 2},
			},
			polygons: 1,
			area:     7,
			vertices: []int{8},
		},
		{
			name: "contained",
			boxes: []Box{
				{X: 0, Y: 0, Width: 4, Height: 4},
				{X: 1, Y: 1, Width: 1, Height: 1},
			},
			polygons: 1,
			area:     16,
			vertices: []int{4},
		},
		{
			name: "frame with hole",
			boxes: []Box{
				{X: 0, Y: 0, Width: 3, Height: 1},
				{X: 0, Y: 2, Width: 3, Height: 1},
				{X: 0, Y: 1, Width: 1, Height: 1},
				{X: 2, Y: 1, Width: 1, Height: 1},
			},
			polygons: 2,
			area:     8,
			vertices: []int{4, 4},
		},
		{
			name: "disjoint",
			boxes: []Box{
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 5, Y: 0, Width: 2, Height: 1},
				{X: 0, Y: 5, Width: 1, Height: 3},
			},
			polygons: 3,
			area:     6,
			vertices: []int{4, 4, 4},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := New(c.boxes, 0, 0, true).Outlines()
			if len(res.Raw) != c.polygons {
				t.Fatalf("got %d polygons, want %d", len(res.Raw), c.polygons)
			}
			if math.Abs(res.Area()-c.area) > eps {
				t.Errorf("got area %g, want %g", res.Area(), c.area)
			}
			var vertices []int
			for _, poly := range res.Raw {
				vertices = append(vertices, len(poly))
				checkRectilinear(t, poly)
			}
			if d := cmp.Diff(c.vertices, vertices); d != "" {
				t.Errorf("vertex counts (-want +got):\n%s", d)
			}
		})
	}
}

// checkRectilinear verifies that poly is a closed loop of alternating
// vertical and horizontal segments.
func checkRectilinear(t *testing.T, poly []vec.Vec2) {
	t.Helper()
	n := len(poly)
	if n < 4 || n%2 != 0 {
		t.Errorf("polygon with %d vertices", n)
		return
	}
	for i := range poly {
		p, q := poly[i], poly[(i+1)%n]
		if i%2 == 0 && p.X != q.X {
			t.Errorf("segment %d from %v to %v is not vertical", i, p, q)
		}
		if i%2 == 1 && p.Y != q.Y {
			t.Errorf("segment %d from %v to %v is not horizontal", i, p, q)
		}
		if p == q {
			t.Errorf("segment %d has zero length", i)
		}
	}
}

func randomBoxes(rng *rand.Rand, n int) []Box {
	boxes := make([]Box, n)
	for i := range boxes {
		boxes[i] = Box{
			X:      float64(rng.Intn(20)) / 10,
			Y:      float64(rng.Intn(20)) / 10,
			Width:  float64(1+rng.Intn(10)) / 10,
			Height: float64(1+rng.Intn(10)) / 10,
		}
	}
	return boxes
}

func TestOutliner_AreaBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		boxes := randomBoxes(rng, 1+rng.Intn(8))
		res := New(boxes, 0, 0, true).Outlines()

		var sum, largest float64
		for _, b := range boxes {
			a := b.Width * b.Height
			sum += a
			largest = max(largest, a)
		}
		area := res.Area()
		if area > sum+1e-6 || area < largest-1e-6 {
			t.Fatalf("%v: area %g outside [%g, %g]", boxes, area, largest, sum)
		}
		for _, poly := range res.Raw {
			checkRectilinear(t, poly)
		}
	}
}

func TestOutliner_DisjointArea(t *testing.T) {
	// boxes on a grid with gaps never overlap
	var boxes []Box
	var sum float64
	for i := 0; i < 5; i++ {
		for j := 0; j < 3; j++ {
			b := Box{X: float64(i) * 0.2, Y: float64(j) * 0.3, Width: 0.1, Height: 0.05 * float64(j+1)}
			boxes = append(boxes, b)
			sum += b.Width * b.Height
		}
	}
	res := New(boxes, 0, 0, true).Outlines()
	if len(res.Raw) != len(boxes) {
		t.Errorf("got %d polygons, want %d", len(res.Raw), len(boxes))
	}
	if math.Abs(res.Area()-sum) > 1e-6 {
		t.Errorf("got area %g, want %g", res.Area(), sum)
	}
}

func TestOutliner_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 50; trial++ {
		boxes := randomBoxes(rng, 2+rng.Intn(6))
		first := New(boxes, 0.001, 0, true).Outlines()

		shuffled := append([]Box(nil), boxes...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		second := New(shuffled, 0.001, 0, true).Outlines()

		if d := cmp.Diff(first.Raw, second.Raw); d != "" {
			t.Fatalf("outlines depend on box order (-first +second):\n%s", d)
		}
		if first.BBox != second.BBox {
			t.Fatalf("bbox depends on box order: %v != %v", first.BBox, second.BBox)
		}
	}
}

func TestOutlines_Serialize(t *testing.T) {
	boxes := []Box{{X: 0, Y: 0, Width: 1, Height: 1}}
	res := New(boxes, 0, 0, true).Outlines()
	r := rect.Rect{LLx: 10, LLy: 20, URx: 30, URy: 60}

	got := res.Serialize(r, 0)
	want := [][]float64{{10, 20, 10, 60, 30, 60, 30, 20}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("rotation 0 (-want +got):\n%s", d)
	}

	got = res.Serialize(r, 180)
	want = [][]float64{{30, 60, 30, 20, 10, 20, 10, 60}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("rotation 180 (-want +got):\n%s", d)
	}
}

// signedArea returns the shoelace area of a closed polygon.
func signedArea(poly []vec.Vec2) float64 {
	var sum float64
	n := len(poly)
	for i, p := range poly {
		q := poly[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func TestOutliner_HoleOrientation(t *testing.T) {
	cases := []struct {
		name  string
		boxes []Box
		areas []float64
	}{
		{
			name: "frame",
			boxes: []Box{
				{X: 0, Y: 0, Width: 3, Height: 1},
				{X: 0, Y: 2, Width: 3, Height: 1},
				{X: 0, Y: 1, Width: 1, Height: 1},
				{X: 2, Y: 1, Width: 1, Height: 1},
			},
			areas: []float64{9, -1},
		},
		{
			name: "ring and separate box",
			boxes: []Box{
				{X: 2, Y: 0, Width: 3, Height: 2},
				{X: 2, Y: 5, Width: 1, Height: 4},
				{X: 3, Y: 4, Width: 3, Height: 2},
				{X: 4, Y: 6, Width: 1, Height: 4},
				{X: 0, Y: 7, Width: 4, Height: 3},
				{X: 1, Y: 7, Width: 1, Height: 2},
			},
			areas: []float64{6, 25, -1},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := New(c.boxes, 0, 0, true).Outlines()
			var areas []float64
			var total float64
			for _, poly := range res.Raw {
				a := signedArea(poly)
				areas = append(areas, a)
				total += a
			}
			if d := cmp.Diff(c.areas, areas, cmpopts.EquateApprox(0, eps)); d != "" {
				t.Errorf("signed areas (-want +got):\n%s", d)
			}
			if math.Abs(total-res.Area()) > eps {
				t.Errorf("signed area sum %g, Area() %g", total, res.Area())
			}
		})
	}
}

func TestOutliner_CornerPinch(t *testing.T) {
	// The hole at (1,1)-(2,2) touches the notch at (2,2)-(3,3) in a
	// single corner.  The boundary is one loop which visits (2,2) twice.
	boxes := []Box{
		{X: 0, Y: 0, Width: 3, Height: 1},
		{X: 0, Y: 1, Width: 1, Height: 2},
		{X: 2, Y: 1, Width: 1, Height: 1},
		{X: 1, Y: 2, Width: 1, Height: 1},
	}
	res := New(boxes, 0, 0, true).Outlines()

	want := [][]vec.Vec2{{
		{X: 0, Y: 3}, {X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 2}, {X: 2, Y: 2},
		{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 3},
	}}
	if d := cmp.Diff(want, res.Raw); d != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", d)
	}
	checkRectilinear(t, res.Raw[0])
	if a := signedArea(res.Raw[0]); math.Abs(a-7) > eps {
		t.Errorf("signed area %g, want 7", a)
	}

	// Regions which only touch at corners become separate loops, which
	// share the corner vertex.
	boxes = []Box{
		{X: 0, Y: 0, Width: 2, Height: 1},
		{X: 0, Y: 1, Width: 1, Height: 1},
		{X: 1, Y: 2, Width: 1, Height: 1},
		{X: 2, Y: 1, Width: 1, Height: 1},
	}
	res = New(boxes, 0, 0, true).Outlines()
	if len(res.Raw) != 3 {
		t.Fatalf("got %d polygons, want 3", len(res.Raw))
	}
	for _, poly := range res.Raw {
		checkRectilinear(t, poly)
		if a := signedArea(poly); a <= 0 {
			t.Errorf("polygon %v has signed area %g", poly, a)
		}
	}
}
