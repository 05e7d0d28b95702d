package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/navgator/navgator/internal/fsmeta"
	"github.com/navgator/navgator/internal/match"
	"github.com/navgator/navgator/internal/preview"
)

const (
	// dateWidth is the width of the date column of a list row.
	dateWidth = 16

	noMatches      = "No matches"
	noSelection    = "No selection"
	loadingPreview = "Loading preview..."
	loadingGit     = "Loading git info..."
	focusMarker    = "* "
)

// refreshPanels sizes the preview and git viewports and loads their
// content. Scroll offsets carry over and are clamped to the new content.
func (m *Model) refreshPanels() {
	pin := m.lay.Preview.inner()
	m.previewVP.Width, m.previewVP.Height = pin.W, pin.H
	lines, inputRow := m.previewLines(pin.W)
	m.previewVP.SetContent(strings.Join(lines, "\n"))
	if inputRow >= 0 && pin.H > 0 {
		switch {
		case inputRow < m.previewVP.YOffset:
			m.previewVP.SetYOffset(inputRow)
		case inputRow >= m.previewVP.YOffset+pin.H:
			m.previewVP.SetYOffset(inputRow - pin.H + 1)
		}
	}

	gin := m.lay.Git.inner()
	m.gitVP.Width, m.gitVP.Height = gin.W, gin.H
	m.gitVP.SetContent(strings.Join(m.gitLines(gin.W), "\n"))
}

// previewLines composes the preview panel: the tags (or the tag editor), a
// blank line, then the preview text. The second value is the row of the
// tag input, or -1.
func (m *Model) previewLines(width int) ([]string, int) {
	if m.previewPath == "" {
		return []string{DimStyle.Render(noSelection)}, -1
	}

	var lines []string
	inputRow := -1
	if m.focus == FocusTagEdit && m.editor != nil {
		lines = append(lines, WrapTagPills(m.editor.Tags, width)...)
		inputRow = len(lines)
		m.tagInput.Width = max(width-lipgloss.Width(m.tagInput.Prompt)-1, 1)
		lines = append(lines, m.tagInput.View())
		if s := m.suggestionLine(width); s != "" {
			lines = append(lines, s)
		}
		lines = append(lines, "")
	} else if list, ok := m.sched.TagsFor(m.previewPath); ok && len(list) > 0 {
		lines = append(lines, WrapTagPills(list, width)...)
		lines = append(lines, "")
	}

	if m.previewLoading {
		lines = append(lines, fitLines(m.previewPath, width, PreviewPathStyle)...)
		lines = append(lines, "", PreviewLoadingStyle.Render(loadingPreview))
		return lines, inputRow
	}
	for _, line := range strings.Split(m.preview, "\n") {
		switch line {
		case preview.ContentsHeading:
			lines = append(lines, PreviewHeaderStyle.Render(line))
		case preview.NotADirectory, preview.Unavailable:
			lines = append(lines, DimStyle.Render(line))
		default:
			lines = append(lines, ansi.Truncate(line, width, ""))
		}
	}
	return lines, inputRow
}

func (m *Model) gitLines(width int) []string {
	if m.previewLoading {
		return []string{PreviewLoadingStyle.Render(loadingGit)}
	}
	var lines []string
	for i, sec := range m.vcs.Sections() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, PreviewHeaderStyle.Render(ansi.Truncate(sec.Heading, width, "")))
		for _, l := range sec.Lines {
			lines = append(lines, ansi.Truncate(l, width, ""))
		}
	}
	return lines
}

// fitLines hard-wraps s into lines of width cells.
func fitLines(s string, width int, style lipgloss.Style) []string {
	if width <= 0 {
		return nil
	}
	wrapped := ansi.Hardwrap(s, width, true)
	out := strings.Split(wrapped, "\n")
	for i, l := range out {
		out[i] = style.Render(l)
	}
	return out
}

// View renders the session.
func (m *Model) View() string {
	if m.quitting || m.width <= 0 || m.height <= 0 {
		return ""
	}
	themeMu.RLock()
	defer themeMu.RUnlock()

	list := m.renderList()
	detail := m.renderDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	help := renderPanel("Keys", []string{m.helpLine()}, m.lay.Help.W, m.lay.Help.H, false)
	if m.lay.List.H < 2 {
		return help
	}
	return body + "\n" + help
}

func (m *Model) renderList() string {
	lay := m.lay
	title := fmt.Sprintf("Results %d/%d", len(m.filtered), len(m.items))
	if m.focus == FocusSearch {
		title = focusMarker + title
	}
	m.query.Width = max(lay.Results.W-lipgloss.Width(m.query.Prompt)-1, 1)
	lines := []string{m.query.View()}
	lines = append(lines, m.resultRows(lay.Results.W, lay.Results.H)...)
	return renderPanel(title, lines, lay.List.W, lay.List.H, m.focus == FocusSearch)
}

// resultRows renders the visible window of the filtered list.
func (m *Model) resultRows(width, height int) []string {
	if len(m.filtered) == 0 || height <= 0 {
		return []string{DimStyle.Render(noMatches)}
	}
	elapsed := m.now.Sub(m.start).Milliseconds()
	end := min(m.offset+height, len(m.filtered))
	rows := make([]string, 0, end-m.offset)
	for pos := m.offset; pos < end; pos++ {
		path := m.items[m.filtered[pos]]
		date, ok := m.sched.Date(path)
		if !ok {
			date = fsmeta.Placeholder
		}
		list, _ := m.sched.TagsFor(path)
		rows = append(rows, renderRow(path, date, list, m.tokens, width, elapsed, pos == m.selected))
	}
	return rows
}

// renderRow lays out one list row: the leaf name on the left, then the tag
// pills and the date column on the right.
func renderRow(path, date string, list []string, tokens match.Tokens, width int, elapsedMs int64, selected bool) string {
	base := lipgloss.NewStyle()
	entry, dateStyle := EntryStyle, DateStyle
	if selected {
		base, entry, dateStyle = HighlightStyle, HighlightStyle, HighlightStyle
	}

	date = formatDate(date)
	dateLen := runewidth.StringWidth(date)
	name := truncateWithEllipsis(match.LeafName(path), max(width-dateLen-1, 0))
	nameLen := runewidth.StringWidth(name)

	tagSpace := width - nameLen - dateLen - 2
	pills, pillLen := "", 0
	if tagSpace > 0 {
		pills, pillLen = RenderTagPills(list, tokens, tagSpace, elapsedMs, base)
	}

	right := dateStyle.Render(date)
	rightLen := dateLen
	if pillLen > 0 {
		right = pills + base.Render(" ") + right
		rightLen += pillLen + 1
	}
	pad := max(width-nameLen-rightLen, 1)
	return entry.Render(name) + base.Render(strings.Repeat(" ", pad)) + right
}

// formatDate right-aligns a date in the date column.
func formatDate(date string) string {
	if runewidth.StringWidth(date) > dateWidth {
		return runewidth.Truncate(date, dateWidth, "")
	}
	return runewidth.FillLeft(date, dateWidth)
}

func truncateWithEllipsis(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 3 {
		return runewidth.Truncate(s, limit, "")
	}
	return runewidth.Truncate(s, limit, "...")
}

func (m *Model) renderDetail() string {
	lay := m.lay
	title := "Preview"
	if m.previewPath != "" {
		title = match.LeafName(m.previewPath)
	}
	previewFocused := m.focus == FocusPreview || m.focus == FocusTagEdit
	if previewFocused {
		title = focusMarker + title
	}
	out := renderPanel(title, strings.Split(m.previewVP.View(), "\n"), lay.Preview.W, lay.Preview.H, previewFocused)
	if !lay.ShowGit {
		return out
	}
	gitTitle := "Git"
	if m.focus == FocusGit {
		gitTitle = focusMarker + gitTitle
	}
	return out + "\n" + renderPanel(gitTitle, strings.Split(m.gitVP.View(), "\n"), lay.Git.W, lay.Git.H, m.focus == FocusGit)
}
