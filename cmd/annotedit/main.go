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

// Annotedit is a terminal front-end for the annotation editor.
//
// The page is shown as a grid of character cells.  A cursor selects the
// position of pointer events, and the keys below drive the editor:
//
//	t, i, h, n     switch to FreeText, ink, highlight or no editing
//	arrows         move the cursor
//	shift+arrows   move the selected editors
//	space          press or release the pointer at the cursor
//	tab            select the next editor
//	u, r           undo and redo
//	x              delete the selected editors
//	ctrl+c, ctrl+v copy and paste
//	q              quit and print the annotation storage as JSON
//
// While a FreeText editor is being edited, typed characters go to the
// editor and escape ends editing.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"seehuhn.de/go/pdfview"
	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/editor"
	"seehuhn.de/go/pdfview/keyboard"
	"seehuhn.de/go/pdfview/outline"
)

func main() {
	width := flag.Float64("w", 612, "page width in PDF points")
	height := flag.Float64("h", 792, "page height in PDF points")
	cols := flag.Int("cols", 60, "number of grid columns")
	rows := flag.Int("rows", 30, "number of grid rows")
	local := flag.Bool("local", false, "use a private clipboard instead of the system clipboard")
	logFile := flag.String("log", "", "write debug messages to `file`")
	flag.Parse()

	if *logFile != "" {
		fd, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer fd.Close()
		pdfview.SetLogger(slog.New(slog.NewTextHandler(fd, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var clip editor.Clipboard = systemClipboard{}
	if *local {
		clip = &editor.MemoryClipboard{}
	}

	m := newModel(*width, *height, *cols, *rows, clip)
	defer m.ui.Destroy()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m.ui.CommitOrRemove()
	snap := m.storage.Serializable()
	keys := slices.Sorted(maps.Keys(snap.Map))
	recs := make([]annotation.Record, len(keys))
	for i, key := range keys {
		recs[i] = snap.Map[key]
	}
	data, err := annotation.MarshalRecords(recs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
	fmt.Println()
}

type model struct {
	storage *annotation.Storage
	ui      *editor.UIManager
	layer   *editor.Layer

	cols, rows int
	cellW      float64
	cellH      float64

	cursorX, cursorY int
	pointerDown      bool

	// anchor is the start of a highlight selection, or nil.
	anchor *[2]int

	message string
}

func newModel(pageW, pageH float64, cols, rows int, clip editor.Clipboard) *model {
	storage := annotation.NewStorage()
	m := &model{
		storage: storage,
		cols:    cols,
		rows:    rows,
		cellW:   pageW / float64(cols),
		cellH:   pageH / float64(rows),
	}
	bus := editor.NewBus()
	bus.Subscribe(m.onEvent)
	m.ui = editor.NewUIManager(storage, editor.DefaultSettings(), clip, bus)
	m.layer = editor.NewLayer(0, m.ui, editor.LayerOptions{
		PageWidth:  pageW,
		PageHeight: pageH,
		Scale:      1,
	})
	m.ui.UpdateMode(editor.ModeNone, "", false)
	return m
}

func (m *model) onEvent(ev editor.Event) {
	if ev, ok := ev.(editor.ModeChanged); ok {
		m.message = "mode: " + ev.Mode.String()
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.message = ""

	if ed := m.typingEditor(); ed != nil {
		m.typeInto(ed, key)
		return m, nil
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "t":
		m.setMode(editor.ModeFreeText)
	case "i":
		m.setMode(editor.ModeInk)
	case "h":
		m.setMode(editor.ModeHighlight)
	case "n":
		m.setMode(editor.ModeNone)
	case "up":
		m.moveCursor(0, -1)
	case "down":
		m.moveCursor(0, 1)
	case "left":
		m.moveCursor(-1, 0)
	case "right":
		m.moveCursor(1, 0)
	case " ":
		m.togglePointer()
	case "tab":
		m.selectNext()
	case "u":
		m.ui.Undo()
	case "r":
		m.ui.Redo()
	case "x":
		m.ui.Delete()
	case "ctrl+c":
		if err := m.ui.CopyToClipboard(); err != nil {
			m.message = err.Error()
		}
	case "ctrl+v":
		ok, err := m.ui.PasteFromClipboard()
		if err != nil {
			m.message = err.Error()
		} else if !ok {
			m.message = "nothing to paste"
		}
	default:
		if ev, ok := keyEvent(key); ok {
			m.ui.Keydown(ev)
		}
	}
	return m, nil
}

func (m *model) setMode(mode editor.Mode) {
	m.anchor = nil
	m.pointerDown = false
	m.ui.UpdateMode(mode, "", false)
}

// typingEditor returns the FreeText editor which receives typed text.
func (m *model) typingEditor() *editor.FreeTextEditor {
	ed, ok := m.ui.GetActive().(*editor.FreeTextEditor)
	if !ok || !ed.IsInEditMode() {
		return nil
	}
	return ed
}

func (m *model) typeInto(ed *editor.FreeTextEditor, key tea.KeyMsg) {
	text := []rune(ed.Text())
	switch key.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.ui.CommitOrRemove()
		return
	case tea.KeyEnter:
		text = append(text, '\n')
	case tea.KeyBackspace:
		if len(text) > 0 {
			text = text[:len(text)-1]
		}
	case tea.KeySpace:
		text = append(text, ' ')
	case tea.KeyRunes:
		text = append(text, key.Runes...)
	default:
		return
	}
	ed.SetText(string(text))
}

func (m *model) moveCursor(dx, dy int) {
	m.cursorX = min(max(m.cursorX+dx, 0), m.cols-1)
	m.cursorY = min(max(m.cursorY+dy, 0), m.rows-1)
	if m.pointerDown {
		m.layer.PointerMove(m.pointerEvent())
	}
}

// pointerEvent returns an event at the center of the cursor cell.
func (m *model) pointerEvent() editor.PointerEvent {
	return editor.PointerEvent{
		X:        (float64(m.cursorX) + 0.5) * m.cellW,
		Y:        (float64(m.cursorY) + 0.5) * m.cellH,
		OnEditor: m.editorAt(m.cursorX, m.cursorY) != nil && m.ui.GetMode() != editor.ModeInk,
	}
}

func (m *model) togglePointer() {
	if m.ui.GetMode() == editor.ModeHighlight {
		m.toggleHighlight()
		return
	}

	ev := m.pointerEvent()
	if ev.OnEditor && !m.pointerDown {
		m.ui.SetSelected(m.editorAt(m.cursorX, m.cursorY))
		return
	}
	if !m.pointerDown {
		m.layer.PointerDown(ev)
	} else {
		m.layer.PointerUp(ev)
	}
	m.pointerDown = !m.pointerDown
}

// toggleHighlight starts or ends a text selection.  The selected cells
// are highlighted when the selection ends.
func (m *model) toggleHighlight() {
	if m.anchor == nil {
		m.anchor = &[2]int{m.cursorX, m.cursorY}
		m.message = "selecting"
		return
	}
	x0, x1 := min(m.anchor[0], m.cursorX), max(m.anchor[0], m.cursorX)+1
	y0, y1 := min(m.anchor[1], m.cursorY), max(m.anchor[1], m.cursorY)+1
	m.anchor = nil

	// one box per text line
	cols, rows := float64(m.cols), float64(m.rows)
	var boxes []outline.Box
	for y := y0; y < y1; y++ {
		boxes = append(boxes, outline.Box{
			X:      float64(x0) / cols,
			Y:      float64(y) / rows,
			Width:  float64(x1-x0) / cols,
			Height: 1 / rows,
		})
	}
	m.ui.HighlightSelection(m.layer.PageIndex(), boxes)
}

func (m *model) selectNext() {
	editors := m.layer.Editors()
	if len(editors) == 0 {
		return
	}
	next := 0
	for i, ed := range editors {
		if m.ui.IsSelected(ed) {
			next = (i + 1) % len(editors)
		}
	}
	m.ui.SetSelected(editors[next])
}

// editorAt returns the topmost editor covering the given cell.
func (m *model) editorAt(col, row int) editor.Editor {
	editors := m.layer.Editors()
	for i := len(editors) - 1; i >= 0; i-- {
		x0, y0, x1, y1 := m.cells(editors[i].GetBase())
		if col >= x0 && col < x1 && row >= y0 && row < y1 {
			return editors[i]
		}
	}
	return nil
}

// cells returns the range of grid cells covered by an editor.
func (m *model) cells(b *editor.Base) (x0, y0, x1, y1 int) {
	cols, rows := float64(m.cols), float64(m.rows)
	x0 = int(b.X * cols)
	y0 = int(b.Y * rows)
	x1 = max(int(b.X*cols+b.Width*cols+0.5), x0+1)
	y1 = max(int(b.Y*rows+b.Height*rows+0.5), y0+1)
	return x0, y0, min(x1, m.cols), min(y1, m.rows)
}

// keyEvent converts the keys used by the editor shortcuts.
func keyEvent(key tea.KeyMsg) (keyboard.KeyEvent, bool) {
	var ev keyboard.KeyEvent
	switch key.Type {
	case tea.KeyShiftUp:
		ev.Key = "ArrowUp"
	case tea.KeyShiftDown:
		ev.Key = "ArrowDown"
	case tea.KeyShiftLeft:
		ev.Key = "ArrowLeft"
	case tea.KeyShiftRight:
		ev.Key = "ArrowRight"
	case tea.KeyCtrlShiftUp:
		ev.Key, ev.Ctrl = "ArrowUp", true
	case tea.KeyCtrlShiftDown:
		ev.Key, ev.Ctrl = "ArrowDown", true
	case tea.KeyCtrlShiftLeft:
		ev.Key, ev.Ctrl = "ArrowLeft", true
	case tea.KeyCtrlShiftRight:
		ev.Key, ev.Ctrl = "ArrowRight", true
	case tea.KeyBackspace:
		ev.Key = "Backspace"
	case tea.KeyDelete:
		ev.Key = "Delete"
	case tea.KeyEnter:
		ev.Key = "Enter"
	case tea.KeyEsc:
		ev.Key = "Escape"
	case tea.KeyCtrlA:
		ev.Key, ev.Ctrl = "a", true
	case tea.KeyCtrlZ:
		ev.Key, ev.Ctrl = "z", true
	case tea.KeyCtrlY:
		ev.Key, ev.Ctrl = "y", true
	default:
		return ev, false
	}
	return ev, true
}
