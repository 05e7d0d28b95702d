package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	helpHeight   = 3
	listPercent  = 60
	detailSplit  = 60
	searchHeight = 1
)

type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// inner is r without its border.
func (r rect) inner() rect {
	return rect{X: r.X + 1, Y: r.Y + 1, W: max(r.W-2, 0), H: max(r.H-2, 0)}
}

// layout places the panels for a terminal of a given size. The list takes
// the left side above the help bar; the preview takes the right side, split
// with the git panel when one is shown.
type layout struct {
	List    rect
	Results rect
	Preview rect
	Git     rect
	Help    rect
	ShowGit bool
}

func computeLayout(width, height int, showGit bool) layout {
	bodyH := max(height-helpHeight, 0)
	listW := width * listPercent / 100
	l := layout{
		List:    rect{X: 0, Y: 0, W: listW, H: bodyH},
		Help:    rect{X: 0, Y: bodyH, W: width, H: min(helpHeight, height)},
		ShowGit: showGit,
	}
	in := l.List.inner()
	l.Results = rect{X: in.X, Y: in.Y + searchHeight, W: in.W, H: max(in.H-searchHeight, 0)}

	detail := rect{X: listW, Y: 0, W: width - listW, H: bodyH}
	if showGit {
		previewH := bodyH * detailSplit / 100
		l.Preview = rect{X: detail.X, Y: 0, W: detail.W, H: previewH}
		l.Git = rect{X: detail.X, Y: previewH, W: detail.W, H: bodyH - previewH}
	} else {
		l.Preview = detail
	}
	return l
}

// renderPanel draws a rounded box of w by h cells with title set into the
// top border. Lines beyond the box are dropped and long lines are cut.
func renderPanel(title string, lines []string, w, h int, focused bool) string {
	if w < 2 || h < 2 {
		return ""
	}
	border := lipgloss.RoundedBorder()
	bs, ts := BorderStyle, TitleStyle
	if focused {
		bs, ts = BorderFocusedStyle, TitleFocusedStyle
	}
	innerW := w - 2

	title = ansi.Truncate(title, innerW, "")
	titleW := ansi.StringWidth(title)

	rows := make([]string, 0, h)
	rows = append(rows, bs.Render(border.TopLeft)+ts.Render(title)+
		bs.Render(strings.Repeat(border.Top, innerW-titleW)+border.TopRight))

	for i := 0; i < h-2; i++ {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], innerW, "")
		}
		pad := innerW - ansi.StringWidth(line)
		rows = append(rows, bs.Render(border.Left)+line+strings.Repeat(" ", max(pad, 0))+bs.Render(border.Right))
	}

	rows = append(rows, bs.Render(border.BottomLeft+strings.Repeat(border.Bottom, innerW)+border.BottomRight))
	return strings.Join(rows, "\n")
}
