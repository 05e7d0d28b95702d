package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

type palette struct {
	Bg, Surface, Border, Text, TextDim  lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Red, Comment                        lipgloss.Color
}

// Dark Theme - Tokyo Night
var darkColors = palette{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Purple:  lipgloss.Color("#bb9af7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = palette{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Purple:  lipgloss.Color("#7847bd"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorSurface lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorPurple  lipgloss.Color
	ColorCyan    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorComment lipgloss.Color
)

// themeMu protects global color/style variables during live theme switches.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	p := darkColors
	currentTheme = ThemeDark
	if theme == string(ThemeLight) {
		p = lightColors
		currentTheme = ThemeLight
	}
	ColorBg = p.Bg
	ColorSurface = p.Surface
	ColorBorder = p.Border
	ColorText = p.Text
	ColorTextDim = p.TextDim
	ColorAccent = p.Accent
	ColorPurple = p.Purple
	ColorCyan = p.Cyan
	ColorGreen = p.Green
	ColorYellow = p.Yellow
	ColorRed = p.Red
	ColorComment = p.Comment
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme("dark")
}

// Panel Styles
var (
	BorderStyle        lipgloss.Style
	BorderFocusedStyle lipgloss.Style
	TitleStyle         lipgloss.Style
	TitleFocusedStyle  lipgloss.Style
)

// List Styles
var (
	EntryStyle     lipgloss.Style
	HighlightStyle lipgloss.Style
	DateStyle      lipgloss.Style
	TagMoreStyle   lipgloss.Style
	DimStyle       lipgloss.Style
)

// Preview Styles
var (
	PreviewPathStyle     lipgloss.Style
	PreviewHeaderStyle   lipgloss.Style
	PreviewLoadingStyle  lipgloss.Style
	PreviewTextStyle     lipgloss.Style
	TagInputStyle        lipgloss.Style
	SuggestionStyle      lipgloss.Style
	SuggestionMatchStyle lipgloss.Style
)

// Help Bar Styles
var (
	HelpKeyStyle   lipgloss.Style
	HelpLabelStyle lipgloss.Style
	ErrorStyle     lipgloss.Style
	StatusStyle    lipgloss.Style
)

// initStyles initializes all style variables with current theme colors.
// Called by InitTheme after color variables are set.
func initStyles() {
	BorderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
	BorderFocusedStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	TitleStyle = lipgloss.NewStyle().Foreground(ColorText)
	TitleFocusedStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	EntryStyle = lipgloss.NewStyle().Foreground(ColorText)
	HighlightStyle = lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorYellow).
		Bold(true)
	DateStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
	TagMoreStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Italic(true)
	DimStyle = lipgloss.NewStyle().Foreground(ColorComment)

	PreviewPathStyle = lipgloss.NewStyle().Foreground(ColorText)
	PreviewHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)
	PreviewLoadingStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)
	PreviewTextStyle = lipgloss.NewStyle().Foreground(ColorText)
	TagInputStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Underline(true)
	SuggestionStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
	SuggestionMatchStyle = lipgloss.NewStyle().
		Foreground(ColorPurple).
		Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)
	HelpLabelStyle = lipgloss.NewStyle().Foreground(ColorText)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true)
	StatusStyle = lipgloss.NewStyle().Foreground(ColorGreen)
}
