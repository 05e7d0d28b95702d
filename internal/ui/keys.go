package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Cancel     key.Binding
	Select     key.Binding
	CycleSort  key.Binding
	EditTags   key.Binding
	ClearQuery key.Binding
	CopyPath   key.Binding

	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	AddTag    key.Binding
	Backspace key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Cancel:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("Esc", "cancel")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "select")),
		CycleSort:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "sort")),
		EditTags:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("Ctrl+T", "tag")),
		ClearQuery: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("Ctrl+U", "clear")),
		CopyPath:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("Ctrl+Y", "copy")),

		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("Up", "")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("Down", "")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("Left", "")),
		Right:    key.NewBinding(key.WithKeys("right"), key.WithHelp("Right", "")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "")),
		Home:     key.NewBinding(key.WithKeys("home"), key.WithHelp("Home", "")),
		End:      key.NewBinding(key.WithKeys("end"), key.WithHelp("End", "")),

		AddTag:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "add")),
		Backspace: key.NewBinding(key.WithKeys("backspace")),
	}
}
