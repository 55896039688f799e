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

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"seehuhn.de/go/pdfview/annotation"
	"seehuhn.de/go/pdfview/editor"
)

var (
	pageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	editingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	anchorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("228"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// cell is one character of the page grid.
type cell struct {
	ch    rune
	style *lipgloss.Style
}

func (m *model) View() string {
	grid := make([][]cell, m.rows)
	for y := range grid {
		grid[y] = make([]cell, m.cols)
		for x := range grid[y] {
			grid[y][x].ch = '·'
		}
	}

	for _, ed := range m.layer.Editors() {
		b := ed.GetBase()
		if b.Deleted {
			continue
		}
		var style *lipgloss.Style
		switch {
		case ed.IsInEditMode():
			style = &editingStyle
		case m.ui.IsSelected(ed):
			style = &selectedStyle
		}
		x0, y0, x1, y1 := m.cells(b)
		fill := []rune(label(ed))
		i := 0
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = cell{ch: fill[i%len(fill)], style: style}
				i++
			}
		}
	}

	if m.anchor != nil {
		grid[m.anchor[1]][m.anchor[0]].style = &anchorStyle
	}
	grid[m.cursorY][m.cursorX].style = &cursorStyle

	var page strings.Builder
	for y, row := range grid {
		if y > 0 {
			page.WriteByte('\n')
		}
		for _, c := range row {
			if c.style != nil {
				page.WriteString(c.style.Render(string(c.ch)))
			} else {
				page.WriteRune(c.ch)
			}
		}
	}

	status := fmt.Sprintf("mode %s  editors %d  undo %t  redo %t",
		m.ui.GetMode(), len(m.layer.Editors()),
		m.ui.HasSomethingToUndo(), m.ui.HasSomethingToRedo())
	if m.pointerDown {
		status += "  [pointer down]"
	}
	if m.message != "" {
		status += "  " + m.message
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		pageStyle.Render(page.String()),
		statusStyle.Render(status),
		statusStyle.Render("t/i/h/n mode · space pointer · tab select · u/r undo/redo · x delete · q quit"))
}

// label returns the text used to fill the area of an editor.
func label(ed editor.Editor) string {
	switch ed := ed.(type) {
	case *editor.FreeTextEditor:
		if s := strings.ReplaceAll(ed.Text(), "\n", " "); s != "" {
			return s
		}
		return "_"
	case *editor.InkEditor:
		return "~"
	}
	switch ed.Type() {
	case annotation.Highlight:
		return "▒"
	case annotation.Stamp:
		return "S"
	}
	return "?"
}
