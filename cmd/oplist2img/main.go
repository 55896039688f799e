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

// Oplist2img renders operator lists to a PNG image.
//
// Usage:
//
//	oplist2img [flags] chunk.json... > page.png
//
// Every input file holds one chunk, or a JSON array of chunks, in the
// format written by [content.EncodeChunk].  The chunks of all files are
// concatenated into a single operator list.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/term"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/graphics"
	"seehuhn.de/go/pdfview/graphics/content"
	"seehuhn.de/go/pdfview/raster"
	"seehuhn.de/go/pdfview/render"
)

// imageFlags collects the -image arguments.
type imageFlags map[string]string

func (f imageFlags) String() string {
	var parts []string
	for id, fname := range f {
		parts = append(parts, id+"="+fname)
	}
	return strings.Join(parts, ",")
}

func (f imageFlags) Set(s string) error {
	id, fname, ok := strings.Cut(s, "=")
	if !ok || id == "" || fname == "" {
		return fmt.Errorf("expected id=file, got %q", s)
	}
	f[id] = fname
	return nil
}

func main() {
	images := imageFlags{}
	outName := flag.String("o", "-", "output file name")
	width := flag.Float64("w", 612, "page width in PDF points")
	height := flag.Float64("h", 792, "page height in PDF points")
	dpi := flag.Float64("dpi", 72, "output resolution")
	rotate := flag.Int("rotate", 0, "page rotation in degrees")
	budget := flag.Duration("budget", graphics.DefaultTimeBudget, "time slice for the interpreter")
	intent := flag.String("intent", "display", "rendering intent (display, print or any)")
	verbose := flag.Bool("v", false, "log debug messages")
	flag.Var(images, "image", "resolve object `id=file` to an image")
	flag.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage: %s [flags] chunk.json...\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	pdfview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *outName == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "refusing to write PNG data to a terminal, use -o")
		os.Exit(1)
	}

	list, err := readList(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	objs := graphics.NewObjects()
	for id, fname := range images {
		img, err := readImage(fname)
		if err != nil {
			fmt.Fprintf(os.Stderr, "image %q: %v\n", id, err)
			os.Exit(1)
		}
		objs.Resolve(id, img)
	}

	page := rect.Rect{URx: *width, URy: *height}
	vp := graphics.NewViewport(page, *dpi/72, *rotate)
	surface := raster.New(int(math.Ceil(vp.Width)), int(math.Ceil(vp.Height)), raster.Options{})

	err = renderList(list, objs, surface, vp, *intent, *budget)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outName != "-" {
		fd, err := os.Create(*outName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer fd.Close()
		out = fd
	}
	err = surface.EncodePNG(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readList(fnames []string) (*content.List, error) {
	list := &content.List{}
	for _, fname := range fnames {
		fd, err := os.Open(fname)
		if err != nil {
			return nil, err
		}
		chunks, err := content.DecodeChunks(fd)
		fd.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
		for _, c := range chunks {
			c.LastChunk = false
			err = list.AddChunk(c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fname, err)
			}
		}
	}
	return list, nil
}

func readImage(fname string) (image.Image, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	img, _, err := image.Decode(fd)
	return img, err
}

// renderList renders the list onto the surface and waits for the render
// task to finish.
func renderList(list *content.List, objs *graphics.Objects, surface *raster.Surface, vp graphics.Viewport, intent string, budget time.Duration) error {
	loop := render.NewLoop()
	go loop.Run()
	defer loop.Close()

	p := render.NewPage(0, render.NewMemorySource(list), objs, nil, loop, nil, render.Options{
		TimeBudget: budget,
	})

	type result struct {
		task *render.Task
		err  error
	}
	started := make(chan result, 1)
	loop.Post(func() {
		task, err := p.Render(render.RenderParams{
			Surface:    surface,
			Factory:    raster.Factory{},
			Compositor: raster.Compositor{},
			Viewport:   vp,
			Intent:     intent,
			Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		})
		started <- result{task, err}
	})
	r := <-started
	if r.err != nil {
		return r.err
	}
	<-r.task.Done()
	loop.Post(p.Destroy)
	return r.task.Err()
}
