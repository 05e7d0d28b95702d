package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpItem struct {
	key   string
	label string
}

func bindingHelp(b key.Binding, label string) helpItem {
	if label == "" {
		label = b.Help().Desc
	}
	return helpItem{key: b.Help().Key, label: label}
}

// helpItems lists the keys that do something in the current state.
func (m *Model) helpItems() []helpItem {
	k := m.keys
	var items []helpItem
	switch m.focus {
	case FocusSearch:
		if m.cursorAtEnd() {
			items = append(items, bindingHelp(k.Right, "preview"))
		}
		items = append(items,
			bindingHelp(k.EditTags, ""),
			bindingHelp(k.CycleSort, m.mode.Label()),
			bindingHelp(k.ClearQuery, ""),
		)
	case FocusPreview:
		items = append(items, bindingHelp(k.Left, "search"))
		if m.showGit() {
			items = append(items, bindingHelp(k.Right, "git"))
		}
		items = append(items, bindingHelp(k.EditTags, ""))
		if m.previewVP.AtTop() {
			items = append(items, bindingHelp(k.Up, "search"))
		}
		if m.showGit() && m.previewVP.AtBottom() {
			items = append(items, bindingHelp(k.Down, "git"))
		}
	case FocusGit:
		items = append(items,
			bindingHelp(k.Left, "search"),
			bindingHelp(k.Right, "preview"),
			bindingHelp(k.EditTags, ""),
		)
		if m.gitVP.AtTop() {
			items = append(items, bindingHelp(k.Up, "preview"))
		}
	case FocusTagEdit:
		done := "done"
		if strings.TrimSpace(m.tagInput.Value()) != "" {
			done = "add+done"
		}
		items = append(items, bindingHelp(k.AddTag, ""), bindingHelp(k.Select, done))
	}
	return items
}

// helpLine renders the focus label and its keys, followed by the last error
// or status message.
func (m *Model) helpLine() string {
	var b strings.Builder
	b.WriteString(HelpKeyStyle.Render(m.focus.String()))
	for _, item := range m.helpItems() {
		b.WriteString("  ")
		b.WriteString(HelpKeyStyle.Render(item.key))
		b.WriteString(HelpLabelStyle.Render(" " + item.label))
	}
	switch {
	case m.err != nil:
		b.WriteString("  ")
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString("  ")
		b.WriteString(StatusStyle.Render(m.status))
	}
	return b.String()
}
